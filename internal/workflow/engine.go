package workflow

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"institute-system/internal/entities"
	apperrors "institute-system/pkg/errors"
	"institute-system/pkg/treestore"
)

// Engine — единственная точка мутации статуса/согласующего/истории
// заявки. Каждый переход — одно чтение-изменение-запись по пути заявки.
// Хранилище не даёт compare-and-swap, поэтому движок перечитывает узел
// непосредственно перед применением и отклоняет устаревшее состояние
// через StaleStateError (явная монотонная версия на записи).
type Engine struct {
	store  treestore.Store
	logger *zap.Logger
	now    func() time.Time
}

func NewEngine(store treestore.Store, logger *zap.Logger) *Engine {
	return &Engine{store: store, logger: logger, now: time.Now}
}

// Create валидирует входные данные, получает идентификатор у хранилища
// и записывает заявку с активной первой согласующей ролью.
func (e *Engine) Create(ctx context.Context, input CreationInput, requester Actor) (*entities.Request, error) {
	policy, err := PolicyFor(input.Type)
	if err != nil {
		return nil, err
	}

	id, err := e.store.Push(ctx, CollectionPath(input.InstituteID, policy.Collection))
	if err != nil {
		return nil, err
	}

	req, err := ValidateCreation(input, requester, id, e.now().UTC())
	if err != nil {
		return nil, err
	}

	path, err := RequestPath(req)
	if err != nil {
		return nil, err
	}
	if err := e.store.Set(ctx, path, req); err != nil {
		return nil, err
	}

	e.logger.Info("Заявка создана",
		zap.String("request_id", req.ID),
		zap.String("type", string(req.Type)),
		zap.String("approver_role", string(req.CurrentApproverRole)),
	)
	return req, nil
}

// Approve: если действует последняя роль цепочки — терминальное
// согласование, иначе заявка продвигается к следующей роли.
func (e *Engine) Approve(ctx context.Context, seen *entities.Request, actor Actor) (*entities.Request, error) {
	return e.applyTransition(ctx, seen, actor, entities.ActionApproved, "")
}

// Reject закрывает заявку с любой позиции цепочки. Причина сохраняется
// в поле Notes заявки, в запись аудита она не попадает.
func (e *Engine) Reject(ctx context.Context, seen *entities.Request, actor Actor, reason string) (*entities.Request, error) {
	return e.applyTransition(ctx, seen, actor, entities.ActionRejected, reason)
}

// Forward — явное продвижение без семантики одобрения. Механика та же,
// что у нетерминальной ветки Approve.
func (e *Engine) Forward(ctx context.Context, seen *entities.Request, actor Actor) (*entities.Request, error) {
	return e.applyTransition(ctx, seen, actor, entities.ActionForwarded, "")
}

func (e *Engine) applyTransition(ctx context.Context, seen *entities.Request, actor Actor, action, reason string) (*entities.Request, error) {
	path, err := RequestPath(seen)
	if err != nil {
		return nil, err
	}

	// Перечитываем непосредственно перед применением: два оператора под
	// одной ролью — редкая, но реальная гонка потерянного обновления.
	fresh := &entities.Request{}
	if err := e.store.Get(ctx, path, fresh); err != nil {
		if errors.Is(err, treestore.ErrNodeNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}

	if fresh.Version != seen.Version ||
		fresh.Status != seen.Status ||
		fresh.CurrentApproverRole != seen.CurrentApproverRole {
		return nil, &apperrors.StaleStateError{
			RequestID:     seen.ID,
			SeenVersion:   seen.Version,
			ActualVersion: fresh.Version,
		}
	}

	if fresh.Status.IsTerminal() {
		return nil, &apperrors.TerminalStateError{RequestID: fresh.ID, Status: fresh.Status.Encode()}
	}
	if actor.Role != fresh.CurrentApproverRole {
		return nil, &apperrors.InvalidTransitionError{
			RequestID:    fresh.ID,
			ActingRole:   string(actor.Role),
			ExpectedRole: string(fresh.CurrentApproverRole),
		}
	}

	actingRole := fresh.CurrentApproverRole
	updated := fresh.Clone()
	now := e.now().UTC()

	switch action {
	case entities.ActionApproved:
		if e.isFinalRole(updated, actingRole) {
			updated.Status = entities.Status{
				Outcome:  entities.OutcomeApproved,
				Role:     actingRole,
				Suffixed: updated.Status.Suffixed,
			}
			// Согласующая роль замораживается на последнем значении.
		} else if err := e.advance(updated, actingRole); err != nil {
			return nil, err
		}

	case entities.ActionForwarded:
		if e.isFinalRole(updated, actingRole) {
			return nil, apperrors.NewInvalidInputError(
				"финальная роль цепочки не пересылает заявку: только approve или reject")
		}
		if err := e.advance(updated, actingRole); err != nil {
			return nil, err
		}

	case entities.ActionRejected:
		updated.Status = entities.Status{
			Outcome:  entities.OutcomeRejected,
			Role:     actingRole,
			Suffixed: updated.Status.Suffixed,
		}
		if reason != "" {
			updated.Notes = reason
		}
	}

	// Ровно одна запись аудита на переход; роль — кто действовал.
	updated.History = append(updated.History, entities.HistoryEntry{
		Action: action,
		By:     actor.ID,
		ByName: actor.Name,
		Role:   actingRole,
		At:     now,
	})
	updated.Version++
	updated.UpdatedAt = now

	if err := e.store.Set(ctx, path, updated); err != nil {
		return nil, err
	}

	e.logger.Info("Переход заявки применён",
		zap.String("request_id", updated.ID),
		zap.String("action", action),
		zap.String("acting_role", string(actingRole)),
		zap.String("status", updated.Status.Encode()),
		zap.Int64("version", updated.Version),
	)
	return updated, nil
}

func (e *Engine) isFinalRole(req *entities.Request, role entities.Role) bool {
	return len(req.ApprovalFlow) > 0 && req.ApprovalFlow[len(req.ApprovalFlow)-1] == role
}

// advance двигает согласующую роль строго вперёд по цепочке.
func (e *Engine) advance(req *entities.Request, actingRole entities.Role) error {
	idx := roleIndex(req.ApprovalFlow, actingRole)
	if idx < 0 || idx+1 >= len(req.ApprovalFlow) {
		return &apperrors.InvalidTransitionError{
			RequestID:    req.ID,
			ActingRole:   string(actingRole),
			ExpectedRole: string(req.CurrentApproverRole),
		}
	}
	next := req.ApprovalFlow[idx+1]
	req.Status = entities.Status{
		Outcome:  entities.OutcomeForwarded,
		Role:     next,
		Suffixed: req.Status.Suffixed,
	}
	req.CurrentApproverRole = next
	return nil
}
