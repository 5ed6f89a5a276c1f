package middleware

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"institute-system/internal/services"
	apperrors "institute-system/pkg/errors"
	"institute-system/pkg/utils"
)

// PermissionMiddleware пропускает запрос, только если у роли
// пользователя есть указанное право (набор прав кешируется в Redis).
type PermissionMiddleware struct {
	permissionService services.PermissionServiceInterface
	logger            *zap.Logger
}

func NewPermissionMiddleware(
	permissionService services.PermissionServiceInterface,
	logger *zap.Logger,
) *PermissionMiddleware {
	return &PermissionMiddleware{permissionService: permissionService, logger: logger}
}

func (m *PermissionMiddleware) Require(permissionCode string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			roleCode, err := utils.GetUserRoleFromCtx(c.Request().Context())
			if err != nil {
				return utils.ErrorResponse(c, apperrors.ErrUnauthorized, m.logger)
			}

			ok, err := m.permissionService.HasPermission(c.Request().Context(), roleCode, permissionCode)
			if err != nil {
				return utils.ErrorResponse(c, err, m.logger)
			}
			if !ok {
				m.logger.Warn("Отказ в доступе",
					zap.String("role", roleCode),
					zap.String("permission", permissionCode),
				)
				return utils.ErrorResponse(c, apperrors.ErrForbidden, m.logger)
			}
			return next(c)
		}
	}
}
