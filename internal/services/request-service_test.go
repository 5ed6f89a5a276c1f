package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"institute-system/internal/dto"
	"institute-system/internal/workflow"
	"institute-system/pkg/eventbus"
	apperrors "institute-system/pkg/errors"
	"institute-system/pkg/treestore"
)

func newRequestService() RequestServiceInterface {
	store := treestore.NewMemoryStore()
	logger := zap.NewNop()
	engine := workflow.NewEngine(store, logger)
	return NewRequestService(engine, store, eventbus.New(logger), logger)
}

func TestRequestService_CreateAndFind(t *testing.T) {
	svc := newRequestService()
	ctx := context.Background()
	clerk := workflow.Actor{ID: "40", Name: "Делопроизводитель", Role: "clerk"}

	req, err := svc.Create(ctx, 1, clerk, dto.CreateRequestDTO{
		Type:        "document",
		Title:       "Справка",
		Description: "Об обучении",
		Category:    "certificate",
		Priority:    "medium",
	})
	require.NoError(t, err)

	// Документная заявка ищется по владельцу.
	found, err := svc.Find(ctx, 1, "document", "40", req.ID)
	require.NoError(t, err)
	assert.Equal(t, req.ID, found.ID)

	_, err = svc.Find(ctx, 1, "document", "40", "no-such-id")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRequestService_ApproveWithVersion(t *testing.T) {
	svc := newRequestService()
	ctx := context.Background()
	librarian := workflow.Actor{ID: "10", Name: "Библиотекарь", Role: "librarian"}
	asstStore := workflow.Actor{ID: "20", Name: "Кладовщик", Role: "asst_store"}

	req, err := svc.Create(ctx, 1, librarian, dto.CreateRequestDTO{
		Type: "library_stock", Title: "Атласы", Description: "...",
		Category: "books", Priority: "low",
	})
	require.NoError(t, err)

	// Устаревшая версия с дашборда отклоняется до применения.
	_, err = svc.Approve(ctx, 1, asstStore, req.ID,
		dto.ActionRequestDTO{Type: "library_stock", Version: 5})
	var staleErr *apperrors.StaleStateError
	require.ErrorAs(t, err, &staleErr)

	updated, err := svc.Approve(ctx, 1, asstStore, req.ID,
		dto.ActionRequestDTO{Type: "library_stock", Version: req.Version})
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated.Version)
}

func TestRequestService_RejectReason(t *testing.T) {
	svc := newRequestService()
	ctx := context.Background()
	electrician := workflow.Actor{ID: "12", Name: "Электрик", Role: "electrician"}
	technician := workflow.Actor{ID: "13", Name: "Техник", Role: "technician"}

	req, err := svc.Create(ctx, 1, electrician, dto.CreateRequestDTO{
		Type: "electrical_maintenance", Title: "Замена проводки",
		Description: "Кабинет 204", Category: "electrical", Priority: "urgent",
	})
	require.NoError(t, err)

	updated, err := svc.Reject(ctx, 1, technician, req.ID, dto.ActionRequestDTO{
		Type: "electrical_maintenance", Version: req.Version, Reason: "Уже выполнено",
	})
	require.NoError(t, err)
	assert.Equal(t, "rejected", updated.Status.Encode())
	assert.Equal(t, "Уже выполнено", updated.Notes)

	timeline, err := svc.Timeline(ctx, 1, "electrical_maintenance", "", req.ID)
	require.NoError(t, err)
	require.Len(t, timeline.Events, 2)
	assert.Equal(t, "rejected", timeline.Events[1].Action)
}
