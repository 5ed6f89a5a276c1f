package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"institute-system/internal/services"
	"institute-system/pkg/utils"
)

type DashboardController struct {
	dashboardService services.DashboardServiceInterface
	logger           *zap.Logger
}

func NewDashboardController(dashboardService services.DashboardServiceInterface, logger *zap.Logger) *DashboardController {
	return &DashboardController{dashboardService: dashboardService, logger: logger}
}

// Inbox — заявки, ожидающие решения роли текущего пользователя.
func (ctrl *DashboardController) Inbox(c echo.Context) error {
	actor, instituteID, err := actorFromCtx(c)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	list, err := ctrl.dashboardService.ListForApprover(c.Request().Context(), instituteID, actor.Role)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, list, "Заявки на рассмотрении", http.StatusOK, uint64(len(list)))
}

// MySubmissions — заявки, поданные текущим пользователем.
func (ctrl *DashboardController) MySubmissions(c echo.Context) error {
	actor, instituteID, err := actorFromCtx(c)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	list, err := ctrl.dashboardService.ListMySubmissions(c.Request().Context(), instituteID, actor.ID)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, list, "Мои заявки", http.StatusOK, uint64(len(list)))
}

func (ctrl *DashboardController) Stats(c echo.Context) error {
	actor, instituteID, err := actorFromCtx(c)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	stats, err := ctrl.dashboardService.Stats(c.Request().Context(), instituteID, actor.Role, actor.ID)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, stats, "Статистика дашборда", http.StatusOK)
}
