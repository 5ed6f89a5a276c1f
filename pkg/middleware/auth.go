package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"institute-system/internal/repositories"
	"institute-system/pkg/contextkeys"
	apperrors "institute-system/pkg/errors"
	"institute-system/pkg/service"
	"institute-system/pkg/utils"
)

// AuthMiddleware проверяет Bearer-токен и кладёт данные пользователя
// в контекст запроса. Пользователь перечитывается из БД на каждый
// запрос: роль могла измениться после выдачи токена.
type AuthMiddleware struct {
	jwtService service.JWTService
	userRepo   repositories.UserRepositoryInterface
	logger     *zap.Logger
}

func NewAuthMiddleware(
	jwtService service.JWTService,
	userRepo repositories.UserRepositoryInterface,
	logger *zap.Logger,
) *AuthMiddleware {
	return &AuthMiddleware{jwtService: jwtService, userRepo: userRepo, logger: logger}
}

func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		if header == "" {
			return utils.ErrorResponse(c, apperrors.ErrEmptyAuthHeader, m.logger)
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return utils.ErrorResponse(c, apperrors.ErrInvalidAuthHeader, m.logger)
		}

		claims, err := m.jwtService.ValidateToken(parts[1])
		if err != nil {
			return utils.ErrorResponse(c, err, m.logger)
		}
		if claims.IsRefreshToken {
			return utils.ErrorResponse(c, apperrors.ErrTokenIsNotAccess, m.logger)
		}

		user, err := m.userRepo.FindUserByID(c.Request().Context(), uint64(claims.UserID))
		if err != nil {
			return utils.ErrorResponse(c, apperrors.ErrUnauthorized, m.logger)
		}

		ctx := c.Request().Context()
		ctx = context.WithValue(ctx, contextkeys.UserIDKey, user.ID)
		ctx = context.WithValue(ctx, contextkeys.UserRoleKey, user.RoleCode)
		ctx = context.WithValue(ctx, contextkeys.UserNameKey, user.Fio)
		ctx = context.WithValue(ctx, contextkeys.InstituteIDKey, user.InstituteID)
		c.SetRequest(c.Request().WithContext(ctx))

		return next(c)
	}
}
