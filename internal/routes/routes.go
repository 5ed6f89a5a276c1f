package routes

import (
	"github.com/labstack/echo/v4"

	"institute-system/internal/controllers"
	"institute-system/pkg/middleware"
)

type Controllers struct {
	Auth      *controllers.AuthController
	Request   *controllers.RequestController
	Dashboard *controllers.DashboardController
	User      *controllers.UserController
	Equipment *controllers.EquipmentController
	WebSocket *controllers.WebSocketController
}

func InitRouter(
	e *echo.Echo,
	ctrls Controllers,
	authMW *middleware.AuthMiddleware,
	permMW *middleware.PermissionMiddleware,
) {
	api := e.Group("/api/v1")

	auth := api.Group("/auth")
	auth.POST("/login", ctrls.Auth.Login)
	auth.POST("/refresh", ctrls.Auth.Refresh)
	auth.GET("/me", ctrls.Auth.Me, authMW.Authenticate)

	requests := api.Group("/requests", authMW.Authenticate)
	requests.POST("", ctrls.Request.Create, permMW.Require("requests:create"))
	requests.GET("/:id", ctrls.Request.Find)
	requests.GET("/:id/timeline", ctrls.Request.Timeline)
	requests.POST("/:id/approve", ctrls.Request.Approve, permMW.Require("requests:act"))
	requests.POST("/:id/reject", ctrls.Request.Reject, permMW.Require("requests:act"))
	requests.POST("/:id/forward", ctrls.Request.Forward, permMW.Require("requests:act"))

	dashboard := api.Group("/dashboard", authMW.Authenticate)
	dashboard.GET("/inbox", ctrls.Dashboard.Inbox)
	dashboard.GET("/my", ctrls.Dashboard.MySubmissions)
	dashboard.GET("/stats", ctrls.Dashboard.Stats)

	users := api.Group("/users", authMW.Authenticate, permMW.Require("users:manage"))
	users.GET("", ctrls.User.GetUsers)
	users.GET("/:id", ctrls.User.FindUser)
	users.POST("", ctrls.User.CreateUser)
	users.PUT("/:id", ctrls.User.UpdateUser)
	users.DELETE("/:id", ctrls.User.DeleteUser)

	equipments := api.Group("/equipments", authMW.Authenticate)
	equipments.GET("", ctrls.Equipment.GetEquipments)
	equipments.POST("/import", ctrls.Equipment.ImportEquipments, permMW.Require("equipments:import"))

	api.GET("/ws", ctrls.WebSocket.Connect, authMW.Authenticate)
}
