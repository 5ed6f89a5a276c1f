package services

import (
	"context"
	"encoding/json"
	"sort"

	"go.uber.org/zap"

	"institute-system/internal/dto"
	"institute-system/internal/entities"
	"institute-system/internal/workflow"
	"institute-system/pkg/treestore"
)

type DashboardServiceInterface interface {
	ListForApprover(ctx context.Context, instituteID uint64, role entities.Role) ([]entities.Request, error)
	ListMySubmissions(ctx context.Context, instituteID uint64, userID string) ([]entities.Request, error)
	Stats(ctx context.Context, instituteID uint64, role entities.Role, userID string) (*dto.DashboardStatsDTO, error)
}

// DashboardService строит ролевые проекции поверх дерева заявок.
// Хранилище не умеет запросов по полям, поэтому проекция — полный обход
// коллекций института с фильтрацией в памяти.
type DashboardService struct {
	store  treestore.Store
	logger *zap.Logger
}

func NewDashboardService(store treestore.Store, logger *zap.Logger) DashboardServiceInterface {
	return &DashboardService{store: store, logger: logger}
}

// ListForApprover — заявки, ожидающие действия указанной роли:
// нетерминальные и с совпадающей текущей согласующей ролью.
func (s *DashboardService) ListForApprover(ctx context.Context, instituteID uint64, role entities.Role) ([]entities.Request, error) {
	all, err := s.collectAll(ctx, instituteID)
	if err != nil {
		return nil, err
	}

	result := make([]entities.Request, 0)
	for _, req := range all {
		if workflow.CanTransition(&req, role) {
			result = append(result, req)
		}
	}
	sortNewestFirst(result)
	return result, nil
}

// ListMySubmissions — все заявки, поданные пользователем, в любом статусе.
func (s *DashboardService) ListMySubmissions(ctx context.Context, instituteID uint64, userID string) ([]entities.Request, error) {
	all, err := s.collectAll(ctx, instituteID)
	if err != nil {
		return nil, err
	}

	result := make([]entities.Request, 0)
	for _, req := range all {
		if req.CreatedBy == userID {
			result = append(result, req)
		}
	}
	sortNewestFirst(result)
	return result, nil
}

func (s *DashboardService) Stats(ctx context.Context, instituteID uint64, role entities.Role, userID string) (*dto.DashboardStatsDTO, error) {
	all, err := s.collectAll(ctx, instituteID)
	if err != nil {
		return nil, err
	}

	stats := &dto.DashboardStatsDTO{}
	for _, req := range all {
		if workflow.CanTransition(&req, role) {
			stats.Actionable++
		}
		if req.CreatedBy != userID {
			continue
		}
		switch req.Status.Outcome {
		case entities.OutcomeApproved:
			stats.Approved++
		case entities.OutcomeRejected:
			stats.Rejected++
		default:
			stats.InFlight++
		}
	}
	return stats, nil
}

// collectAll обходит все коллекции заявок института. Узлы, которые не
// парсятся как заявка, пропускаются с предупреждением: чужие данные в
// общем дереве не должны ломать дашборд целиком.
func (s *DashboardService) collectAll(ctx context.Context, instituteID uint64) ([]entities.Request, error) {
	all := make([]entities.Request, 0)
	for _, collection := range workflow.Collections() {
		root := workflow.CollectionPath(instituteID, collection)
		children, err := s.store.Children(ctx, root)
		if err != nil {
			return nil, err
		}
		for relPath, raw := range children {
			var req entities.Request
			if err := json.Unmarshal(raw, &req); err != nil {
				s.logger.Warn("Нечитаемый узел в коллекции заявок",
					zap.String("path", treestore.JoinPath(root, relPath)),
					zap.Error(err),
				)
				continue
			}
			all = append(all, req)
		}
	}
	return all, nil
}

func sortNewestFirst(reqs []entities.Request) {
	sort.Slice(reqs, func(i, j int) bool {
		return reqs[i].CreatedAt.After(reqs[j].CreatedAt)
	})
}
