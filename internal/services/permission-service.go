package services

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"institute-system/internal/repositories"
)

const permissionsCacheKeyPrefix = "permissions:role:"

type PermissionServiceInterface interface {
	GetRolePermissions(ctx context.Context, roleCode string) ([]string, error)
	HasPermission(ctx context.Context, roleCode, permissionCode string) (bool, error)
	InvalidateRole(ctx context.Context, roleCode string) error
}

// PermissionService отдаёт права роли через Redis-кеш: набор прав
// читается при каждом защищённом запросе, а меняется редко.
type PermissionService struct {
	permissionRepo repositories.PermissionRepositoryInterface
	cacheRepo      repositories.CacheRepositoryInterface
	cacheTTL       time.Duration
	logger         *zap.Logger
}

func NewPermissionService(
	permissionRepo repositories.PermissionRepositoryInterface,
	cacheRepo repositories.CacheRepositoryInterface,
	cacheTTL time.Duration,
	logger *zap.Logger,
) PermissionServiceInterface {
	return &PermissionService{
		permissionRepo: permissionRepo,
		cacheRepo:      cacheRepo,
		cacheTTL:       cacheTTL,
		logger:         logger,
	}
}

func (s *PermissionService) GetRolePermissions(ctx context.Context, roleCode string) ([]string, error) {
	cacheKey := permissionsCacheKeyPrefix + roleCode

	if cached, err := s.cacheRepo.Get(ctx, cacheKey); err == nil {
		var codes []string
		if err := json.Unmarshal([]byte(cached), &codes); err == nil {
			return codes, nil
		}
		// Битый кеш перечитываем из БД.
		s.logger.Warn("Повреждённый кеш прав роли", zap.String("role", roleCode))
	}

	codes, err := s.permissionRepo.GetPermissionsByRoleCode(ctx, roleCode)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(codes); err == nil {
		if err := s.cacheRepo.Set(ctx, cacheKey, string(raw), s.cacheTTL); err != nil {
			// Кеш — оптимизация, не отказываем запросу из-за него.
			s.logger.Warn("Не удалось закешировать права роли",
				zap.String("role", roleCode), zap.Error(err))
		}
	}
	return codes, nil
}

func (s *PermissionService) HasPermission(ctx context.Context, roleCode, permissionCode string) (bool, error) {
	codes, err := s.GetRolePermissions(ctx, roleCode)
	if err != nil {
		return false, err
	}
	for _, c := range codes {
		if c == permissionCode {
			return true, nil
		}
	}
	return false, nil
}

func (s *PermissionService) InvalidateRole(ctx context.Context, roleCode string) error {
	return s.cacheRepo.Del(ctx, permissionsCacheKeyPrefix+roleCode)
}
