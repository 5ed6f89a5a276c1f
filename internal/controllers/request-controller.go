package controllers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"institute-system/internal/dto"
	"institute-system/internal/entities"
	"institute-system/internal/services"
	"institute-system/internal/workflow"
	apperrors "institute-system/pkg/errors"
	"institute-system/pkg/utils"
)

type RequestController struct {
	requestService services.RequestServiceInterface
	logger         *zap.Logger
}

func NewRequestController(requestService services.RequestServiceInterface, logger *zap.Logger) *RequestController {
	return &RequestController{requestService: requestService, logger: logger}
}

// actorFromCtx собирает исполнителя действия из контекста запроса.
func actorFromCtx(c echo.Context) (workflow.Actor, uint64, error) {
	ctx := c.Request().Context()

	userID, err := utils.GetUserIDFromCtx(ctx)
	if err != nil {
		return workflow.Actor{}, 0, err
	}
	role, err := utils.GetUserRoleFromCtx(ctx)
	if err != nil {
		return workflow.Actor{}, 0, err
	}
	name, err := utils.GetUserNameFromCtx(ctx)
	if err != nil {
		return workflow.Actor{}, 0, err
	}
	instituteID, err := utils.GetInstituteIDFromCtx(ctx)
	if err != nil {
		return workflow.Actor{}, 0, err
	}

	return workflow.Actor{
		ID:   strconv.FormatUint(userID, 10),
		Name: name,
		Role: entities.Role(role),
	}, instituteID, nil
}

func (ctrl *RequestController) Create(c echo.Context) error {
	actor, instituteID, err := actorFromCtx(c)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	var payload dto.CreateRequestDTO
	if err := c.Bind(&payload); err != nil {
		return utils.ErrorResponse(c, apperrors.ErrBadRequest, ctrl.logger)
	}
	if err := c.Validate(&payload); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	req, err := ctrl.requestService.Create(c.Request().Context(), instituteID, actor, payload)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, req, "Заявка создана", http.StatusCreated)
}

func (ctrl *RequestController) Find(c echo.Context) error {
	_, instituteID, err := actorFromCtx(c)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	req, err := ctrl.requestService.Find(c.Request().Context(), instituteID,
		c.QueryParam("type"), c.QueryParam("ownerId"), c.Param("id"))
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, req, "Заявка", http.StatusOK)
}

func (ctrl *RequestController) Timeline(c echo.Context) error {
	_, instituteID, err := actorFromCtx(c)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	timeline, err := ctrl.requestService.Timeline(c.Request().Context(), instituteID,
		c.QueryParam("type"), c.QueryParam("ownerId"), c.Param("id"))
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, timeline, "История заявки", http.StatusOK)
}

func (ctrl *RequestController) Approve(c echo.Context) error {
	return ctrl.act(c, entities.ActionApproved, "Заявка согласована")
}

func (ctrl *RequestController) Reject(c echo.Context) error {
	return ctrl.act(c, entities.ActionRejected, "Заявка отклонена")
}

func (ctrl *RequestController) Forward(c echo.Context) error {
	return ctrl.act(c, entities.ActionForwarded, "Заявка переслана")
}

func (ctrl *RequestController) act(c echo.Context, action, message string) error {
	actor, instituteID, err := actorFromCtx(c)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	var payload dto.ActionRequestDTO
	if err := c.Bind(&payload); err != nil {
		return utils.ErrorResponse(c, apperrors.ErrBadRequest, ctrl.logger)
	}
	if err := c.Validate(&payload); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	ctx := c.Request().Context()
	id := c.Param("id")

	var req *entities.Request
	switch action {
	case entities.ActionApproved:
		req, err = ctrl.requestService.Approve(ctx, instituteID, actor, id, payload)
	case entities.ActionRejected:
		req, err = ctrl.requestService.Reject(ctx, instituteID, actor, id, payload)
	case entities.ActionForwarded:
		req, err = ctrl.requestService.Forward(ctx, instituteID, actor, id, payload)
	}
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, req, message, http.StatusOK)
}
