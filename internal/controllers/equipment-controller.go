package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"institute-system/internal/services"
	apperrors "institute-system/pkg/errors"
	"institute-system/pkg/utils"
)

type EquipmentController struct {
	equipmentService services.EquipmentServiceInterface
	logger           *zap.Logger
}

func NewEquipmentController(equipmentService services.EquipmentServiceInterface, logger *zap.Logger) *EquipmentController {
	return &EquipmentController{equipmentService: equipmentService, logger: logger}
}

func (ctrl *EquipmentController) GetEquipments(c echo.Context) error {
	instituteID, err := utils.GetInstituteIDFromCtx(c.Request().Context())
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	filter := utils.ParseFilterFromQuery(c.Request().URL.Query())
	items, total, err := ctrl.equipmentService.GetEquipments(c.Request().Context(), instituteID, filter)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, items, "Список инвентаря", http.StatusOK, total)
}

// ImportEquipments принимает multipart-файл "file" в формате XLSX.
func (ctrl *EquipmentController) ImportEquipments(c echo.Context) error {
	instituteID, err := utils.GetInstituteIDFromCtx(c.Request().Context())
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return utils.ErrorResponse(c, apperrors.NewInvalidInputError("не передан файл 'file'"), ctrl.logger)
	}

	src, err := fileHeader.Open()
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	defer src.Close()

	result, err := ctrl.equipmentService.ImportFromXLSX(c.Request().Context(), instituteID, src)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, result, "Импорт завершён", http.StatusOK)
}
