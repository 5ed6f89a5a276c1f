package services

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"institute-system/internal/dto"
	"institute-system/internal/entities"
	"institute-system/internal/events"
	"institute-system/internal/workflow"
	"institute-system/pkg/eventbus"
	apperrors "institute-system/pkg/errors"
	"institute-system/pkg/treestore"
)

type RequestServiceInterface interface {
	Create(ctx context.Context, instituteID uint64, actor workflow.Actor, payload dto.CreateRequestDTO) (*entities.Request, error)
	Find(ctx context.Context, instituteID uint64, reqType, ownerID, id string) (*entities.Request, error)
	Timeline(ctx context.Context, instituteID uint64, reqType, ownerID, id string) (*dto.RequestTimelineDTO, error)
	Approve(ctx context.Context, instituteID uint64, actor workflow.Actor, id string, payload dto.ActionRequestDTO) (*entities.Request, error)
	Reject(ctx context.Context, instituteID uint64, actor workflow.Actor, id string, payload dto.ActionRequestDTO) (*entities.Request, error)
	Forward(ctx context.Context, instituteID uint64, actor workflow.Actor, id string, payload dto.ActionRequestDTO) (*entities.Request, error)
}

// RequestService — прикладная обвязка над движком согласования:
// разбор DTO, поиск заявки по пути и публикация событий для
// уведомлений. Сами правила переходов живут в workflow.
type RequestService struct {
	engine *workflow.Engine
	store  treestore.Store
	bus    *eventbus.Bus
	logger *zap.Logger
}

func NewRequestService(
	engine *workflow.Engine,
	store treestore.Store,
	bus *eventbus.Bus,
	logger *zap.Logger,
) RequestServiceInterface {
	return &RequestService{engine: engine, store: store, bus: bus, logger: logger}
}

func (s *RequestService) Create(ctx context.Context, instituteID uint64, actor workflow.Actor, payload dto.CreateRequestDTO) (*entities.Request, error) {
	input := workflow.CreationInput{
		InstituteID:   instituteID,
		Type:          entities.RequestType(payload.Type),
		Title:         payload.Title,
		Description:   payload.Description,
		Category:      payload.Category,
		Priority:      payload.Priority,
		Quantity:      payload.Quantity,
		EstimatedCost: payload.EstimatedCost,
		Reason:        payload.Reason,
	}

	req, err := s.engine.Create(ctx, input, actor)
	if err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, events.RequestCreated{Request: req, ActorName: actor.Name})
	return req, nil
}

func (s *RequestService) Find(ctx context.Context, instituteID uint64, reqType, ownerID, id string) (*entities.Request, error) {
	path, err := requestPath(instituteID, reqType, ownerID, id)
	if err != nil {
		return nil, err
	}

	req := &entities.Request{}
	if err := s.store.Get(ctx, path, req); err != nil {
		if errors.Is(err, treestore.ErrNodeNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return req, nil
}

func (s *RequestService) Timeline(ctx context.Context, instituteID uint64, reqType, ownerID, id string) (*dto.RequestTimelineDTO, error) {
	req, err := s.Find(ctx, instituteID, reqType, ownerID, id)
	if err != nil {
		return nil, err
	}
	return dto.TimelineFromRequest(req), nil
}

func (s *RequestService) Approve(ctx context.Context, instituteID uint64, actor workflow.Actor, id string, payload dto.ActionRequestDTO) (*entities.Request, error) {
	return s.transition(ctx, instituteID, actor, id, payload, entities.ActionApproved)
}

func (s *RequestService) Reject(ctx context.Context, instituteID uint64, actor workflow.Actor, id string, payload dto.ActionRequestDTO) (*entities.Request, error) {
	return s.transition(ctx, instituteID, actor, id, payload, entities.ActionRejected)
}

func (s *RequestService) Forward(ctx context.Context, instituteID uint64, actor workflow.Actor, id string, payload dto.ActionRequestDTO) (*entities.Request, error) {
	return s.transition(ctx, instituteID, actor, id, payload, entities.ActionForwarded)
}

func (s *RequestService) transition(ctx context.Context, instituteID uint64, actor workflow.Actor, id string, payload dto.ActionRequestDTO, action string) (*entities.Request, error) {
	seen, err := s.Find(ctx, instituteID, payload.Type, payload.OwnerID, id)
	if err != nil {
		return nil, err
	}

	// Версия с дашборда сверяется до применения: если с момента
	// отображения заявку уже кто-то обработал, действие отклоняется.
	if seen.Version != payload.Version {
		return nil, &apperrors.StaleStateError{
			RequestID:     id,
			SeenVersion:   payload.Version,
			ActualVersion: seen.Version,
		}
	}

	var updated *entities.Request
	switch action {
	case entities.ActionApproved:
		updated, err = s.engine.Approve(ctx, seen, actor)
	case entities.ActionRejected:
		updated, err = s.engine.Reject(ctx, seen, actor, payload.Reason)
	case entities.ActionForwarded:
		updated, err = s.engine.Forward(ctx, seen, actor)
	default:
		return nil, apperrors.NewInvalidInputError("неизвестное действие: %q", action)
	}
	if err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, events.RequestTransitioned{
		Request:   updated,
		Action:    action,
		ActorName: actor.Name,
	})
	return updated, nil
}

// requestPath строит путь узла заявки из параметров запроса, не читая
// сам узел. Для документных заявок обязателен владелец.
func requestPath(instituteID uint64, reqType, ownerID, id string) (string, error) {
	probe := &entities.Request{
		ID:          id,
		InstituteID: instituteID,
		Type:        entities.RequestType(reqType),
		CreatedBy:   ownerID,
	}
	return workflow.RequestPath(probe)
}
