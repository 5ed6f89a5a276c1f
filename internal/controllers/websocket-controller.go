package controllers

import (
	"net/http"

	gorilla "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"institute-system/pkg/utils"
	"institute-system/pkg/websocket"
)

var upgrader = gorilla.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Фронтенд живёт на другом origin; доступ ограничен JWT-middleware.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WebSocketController struct {
	hub    *websocket.Hub
	logger *zap.Logger
}

func NewWebSocketController(hub *websocket.Hub, logger *zap.Logger) *WebSocketController {
	return &WebSocketController{hub: hub, logger: logger}
}

// Connect апгрейдит соединение и регистрирует клиента в хабе под его ролью.
func (ctrl *WebSocketController) Connect(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := utils.GetUserIDFromCtx(ctx)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	role, err := utils.GetUserRoleFromCtx(ctx)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		ctrl.logger.Error("Ошибка апгрейда WebSocket-соединения", zap.Error(err))
		return err
	}

	client := websocket.NewClient(ctrl.hub, conn, userID, role)
	ctrl.hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
	return nil
}
