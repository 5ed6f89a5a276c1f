package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"institute-system/internal/entities"
	"institute-system/internal/workflow"
	"institute-system/pkg/treestore"
)

func seedRequests(t *testing.T) (treestore.Store, *workflow.Engine) {
	t.Helper()
	store := treestore.NewMemoryStore()
	engine := workflow.NewEngine(store, zap.NewNop())
	ctx := context.Background()

	librarian := workflow.Actor{ID: "10", Name: "Библиотекарь", Role: "librarian"}
	plumber := workflow.Actor{ID: "11", Name: "Сантехник", Role: "plumber"}
	asstStore := workflow.Actor{ID: "20", Name: "Кладовщик", Role: "asst_store"}

	qty := 1
	libReq, err := engine.Create(ctx, workflow.CreationInput{
		InstituteID: 1, Type: entities.TypeLibraryStock,
		Title: "Книги", Description: "...", Category: "books", Priority: "low", Quantity: &qty,
	}, librarian)
	require.NoError(t, err)

	_, err = engine.Create(ctx, workflow.CreationInput{
		InstituteID: 1, Type: entities.TypePlumbingStock,
		Title: "Кран", Description: "...", Category: "plumbing", Priority: "urgent",
	}, plumber)
	require.NoError(t, err)

	// Книжная заявка отклоняется кладовщиком.
	_, err = engine.Reject(ctx, libReq, asstStore, "Дубликат")
	require.NoError(t, err)

	return store, engine
}

func TestDashboardService_ListForApprover(t *testing.T) {
	store, _ := seedRequests(t)
	svc := NewDashboardService(store, zap.NewNop())
	ctx := context.Background()

	// У техника одна актуальная заявка (сантехническая).
	list, err := svc.ListForApprover(ctx, 1, "technician")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, entities.TypePlumbingStock, list[0].Type)

	// У кладовщика ничего: книжная заявка уже отклонена.
	list, err = svc.ListForApprover(ctx, 1, "asst_store")
	require.NoError(t, err)
	assert.Empty(t, list)

	// Чужой институт пуст.
	list, err = svc.ListForApprover(ctx, 2, "technician")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestDashboardService_ListMySubmissions(t *testing.T) {
	store, _ := seedRequests(t)
	svc := NewDashboardService(store, zap.NewNop())

	list, err := svc.ListMySubmissions(context.Background(), 1, "10")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "rejected", list[0].Status.Encode(),
		"поданные заявки видны в любом статусе")
}

func TestDashboardService_Stats(t *testing.T) {
	store, _ := seedRequests(t)
	svc := NewDashboardService(store, zap.NewNop())

	// Сантехник: его заявка ещё в работе, чужих на рассмотрение нет.
	stats, err := svc.Stats(context.Background(), 1, "plumber", "11")
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Actionable)
	assert.Equal(t, 1, stats.InFlight)
	assert.Equal(t, 0, stats.Rejected)

	// Библиотекарь: заявка отклонена.
	stats, err = svc.Stats(context.Background(), 1, "librarian", "10")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Rejected)
	assert.Equal(t, 0, stats.InFlight)
}
