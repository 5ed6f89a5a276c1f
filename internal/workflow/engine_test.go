package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"institute-system/internal/entities"
	apperrors "institute-system/pkg/errors"
	"institute-system/pkg/treestore"
)

func newTestEngine() (*Engine, *treestore.MemoryStore) {
	store := treestore.NewMemoryStore()
	return NewEngine(store, zap.NewNop()), store
}

func libraryInput() CreationInput {
	qty := 5
	return CreationInput{
		InstituteID: 1,
		Type:        entities.TypeLibraryStock,
		Title:       "Учебники по физике",
		Description: "Комплект для 10 класса",
		Category:    "books",
		Priority:    "medium",
		Quantity:    &qty,
	}
}

var (
	librarian = Actor{ID: "10", Name: "Библиотекарь И.", Role: "librarian"}
	asstStore = Actor{ID: "20", Name: "Кладовщик С.", Role: "asst_store"}
	registrar = Actor{ID: "30", Name: "Регистратор Р.", Role: "registrar"}
	clerk     = Actor{ID: "40", Name: "Делопроизводитель Д.", Role: "clerk"}
	principal = Actor{ID: "50", Name: "Директор В.", Role: "principal"}
)

func TestEngine_Create(t *testing.T) {
	engine, _ := newTestEngine()

	req, err := engine.Create(context.Background(), libraryInput(), librarian)
	require.NoError(t, err)

	assert.NotEmpty(t, req.ID)
	assert.Equal(t, "pending", req.Status.Encode())
	// Заявитель — первая роль цепочки, действовать должна вторая.
	assert.Equal(t, entities.Role("asst_store"), req.CurrentApproverRole)
	assert.Equal(t, []entities.Role{"librarian", "asst_store", "registrar"}, req.ApprovalFlow)
	assert.Equal(t, int64(1), req.Version)

	require.Len(t, req.History, 1, "при создании должна быть ровно одна запись аудита")
	assert.Equal(t, entities.ActionCreated, req.History[0].Action)
	assert.Equal(t, entities.Role("librarian"), req.History[0].Role)
	assert.Equal(t, "10", req.History[0].By)
}

func TestEngine_Create_WrongRequesterRole(t *testing.T) {
	engine, _ := newTestEngine()

	_, err := engine.Create(context.Background(), libraryInput(), asstStore)

	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Violations, "role")
}

func TestEngine_Create_CollectsAllViolations(t *testing.T) {
	engine, _ := newTestEngine()

	qty := -1
	cost := -100.0
	input := CreationInput{
		InstituteID:   1,
		Type:          entities.TypeLibraryStock,
		Priority:      "extreme",
		Quantity:      &qty,
		EstimatedCost: &cost,
	}

	_, err := engine.Create(context.Background(), input, librarian)

	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	// Все нарушения сразу, а не до первого.
	assert.Contains(t, verr.Violations, "title")
	assert.Contains(t, verr.Violations, "description")
	assert.Contains(t, verr.Violations, "category")
	assert.Contains(t, verr.Violations, "priority")
	assert.Contains(t, verr.Violations, "quantity")
	assert.Contains(t, verr.Violations, "estimatedCost")
}

func TestEngine_ApproveChain_ToTerminal(t *testing.T) {
	engine, _ := newTestEngine()
	ctx := context.Background()

	req, err := engine.Create(ctx, libraryInput(), librarian)
	require.NoError(t, err)

	// asst_store — промежуточная роль: заявка продвигается к регистратору.
	req, err = engine.Approve(ctx, req, asstStore)
	require.NoError(t, err)
	assert.Equal(t, "forwarded", req.Status.Encode())
	assert.Equal(t, entities.Role("registrar"), req.CurrentApproverRole)
	assert.Equal(t, int64(2), req.Version)
	require.Len(t, req.History, 2)
	assert.Equal(t, entities.Role("asst_store"), req.History[1].Role,
		"в аудите — роль, которая действовала, а не следующая")

	// registrar — финальная роль: заявка согласована терминально.
	req, err = engine.Approve(ctx, req, registrar)
	require.NoError(t, err)
	assert.Equal(t, "approved", req.Status.Encode())
	assert.True(t, req.Status.IsTerminal())
	assert.Equal(t, entities.Role("registrar"), req.CurrentApproverRole,
		"согласующая роль замораживается на терминальном статусе")
	assert.Equal(t, int64(3), req.Version)
	require.Len(t, req.History, 3)
}

func TestEngine_WrongRole_StateUnchanged(t *testing.T) {
	engine, store := newTestEngine()
	ctx := context.Background()

	req, err := engine.Create(ctx, libraryInput(), librarian)
	require.NoError(t, err)

	_, err = engine.Approve(ctx, req, registrar)

	var transitionErr *apperrors.InvalidTransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, "registrar", transitionErr.ActingRole)
	assert.Equal(t, "asst_store", transitionErr.ExpectedRole)

	// Состояние в хранилище не изменилось.
	path, err := RequestPath(req)
	require.NoError(t, err)
	stored := &entities.Request{}
	require.NoError(t, store.Get(ctx, path, stored))
	assert.Equal(t, int64(1), stored.Version)
	assert.Len(t, stored.History, 1)
	assert.Equal(t, "pending", stored.Status.Encode())
}

func TestEngine_DoubleApprove_TerminalState(t *testing.T) {
	engine, _ := newTestEngine()
	ctx := context.Background()

	req, err := engine.Create(ctx, libraryInput(), librarian)
	require.NoError(t, err)
	req, err = engine.Approve(ctx, req, asstStore)
	require.NoError(t, err)
	req, err = engine.Approve(ctx, req, registrar)
	require.NoError(t, err)

	_, err = engine.Approve(ctx, req, registrar)

	var terminalErr *apperrors.TerminalStateError
	require.ErrorAs(t, err, &terminalErr)
	assert.Equal(t, "approved", terminalErr.Status)
}

func TestEngine_Reject_TerminalFromAnyPosition(t *testing.T) {
	engine, _ := newTestEngine()
	ctx := context.Background()

	req, err := engine.Create(ctx, libraryInput(), librarian)
	require.NoError(t, err)

	// Первая же согласующая роль отклоняет — заявка закрыта одним переходом.
	req, err = engine.Reject(ctx, req, asstStore, "Нет бюджета в этом квартале")
	require.NoError(t, err)

	assert.Equal(t, "rejected", req.Status.Encode())
	assert.True(t, req.Status.IsTerminal())
	assert.Equal(t, "Нет бюджета в этом квартале", req.Notes,
		"причина отклонения попадает в заметки заявки")
	require.Len(t, req.History, 2)
	assert.Equal(t, entities.ActionRejected, req.History[1].Action)

	_, err = engine.Approve(ctx, req, registrar)
	var terminalErr *apperrors.TerminalStateError
	require.ErrorAs(t, err, &terminalErr)
}

func TestEngine_Forward_Intermediate(t *testing.T) {
	engine, _ := newTestEngine()
	ctx := context.Background()

	req, err := engine.Create(ctx, libraryInput(), librarian)
	require.NoError(t, err)

	req, err = engine.Forward(ctx, req, asstStore)
	require.NoError(t, err)
	assert.Equal(t, "forwarded", req.Status.Encode())
	assert.Equal(t, entities.Role("registrar"), req.CurrentApproverRole)
	assert.Equal(t, entities.ActionForwarded, req.History[1].Action)
}

func TestEngine_Forward_FinalRoleRefused(t *testing.T) {
	engine, _ := newTestEngine()
	ctx := context.Background()

	req, err := engine.Create(ctx, libraryInput(), librarian)
	require.NoError(t, err)
	req, err = engine.Forward(ctx, req, asstStore)
	require.NoError(t, err)

	_, err = engine.Forward(ctx, req, registrar)

	var inputErr *apperrors.InvalidInputError
	require.ErrorAs(t, err, &inputErr)
}

func TestEngine_StaleState(t *testing.T) {
	engine, _ := newTestEngine()
	ctx := context.Background()

	req, err := engine.Create(ctx, libraryInput(), librarian)
	require.NoError(t, err)

	// Два оператора видят версию 1; первый успевает раньше.
	seenByFirst := req.Clone()
	seenBySecond := req.Clone()

	_, err = engine.Approve(ctx, seenByFirst, asstStore)
	require.NoError(t, err)

	_, err = engine.Approve(ctx, seenBySecond, asstStore)

	var staleErr *apperrors.StaleStateError
	require.ErrorAs(t, err, &staleErr)
	assert.Equal(t, int64(1), staleErr.SeenVersion)
	assert.Equal(t, int64(2), staleErr.ActualVersion)
}

func TestEngine_DocumentFlow_SuffixedStatuses(t *testing.T) {
	engine, _ := newTestEngine()
	ctx := context.Background()

	input := CreationInput{
		InstituteID: 1,
		Type:        entities.TypeDocument,
		Title:       "Справка об обучении",
		Description: "Для военкомата",
		Category:    "certificate",
		Priority:    "high",
	}

	req, err := engine.Create(ctx, input, clerk)
	require.NoError(t, err)
	assert.Equal(t, "pending", req.Status.Encode())
	assert.Equal(t, entities.Role("registrar"), req.CurrentApproverRole)

	// Документные статусы несут суффикс роли.
	req, err = engine.Approve(ctx, req, registrar)
	require.NoError(t, err)
	assert.Equal(t, "forwarded_to_principal", req.Status.Encode())

	req, err = engine.Approve(ctx, req, principal)
	require.NoError(t, err)
	assert.Equal(t, "approved_by_principal", req.Status.Encode())
}

func TestEngine_HistoryAppendOnly(t *testing.T) {
	engine, _ := newTestEngine()
	ctx := context.Background()

	req, err := engine.Create(ctx, libraryInput(), librarian)
	require.NoError(t, err)

	firstEntry := req.History[0]

	req, err = engine.Forward(ctx, req, asstStore)
	require.NoError(t, err)
	req, err = engine.Reject(ctx, req, registrar, "Дубликат заявки")
	require.NoError(t, err)

	// Ранние записи не переписываются и не переупорядочиваются.
	require.Len(t, req.History, 3)
	assert.Equal(t, firstEntry, req.History[0])
	assert.Equal(t, entities.ActionForwarded, req.History[1].Action)
	assert.Equal(t, entities.ActionRejected, req.History[2].Action)
}
