package main

import (
	"context"
	"net/http"

	"institute-system/internal/controllers"
	"institute-system/internal/listeners"
	"institute-system/internal/repositories"
	"institute-system/internal/routes"
	"institute-system/internal/services"
	"institute-system/internal/workflow"
	"institute-system/migrations"
	"institute-system/pkg/config"
	"institute-system/pkg/customvalidator"
	"institute-system/pkg/database/postgresql"
	apperrors "institute-system/pkg/errors"
	"institute-system/pkg/eventbus"
	applogger "institute-system/pkg/logger"
	appmiddleware "institute-system/pkg/middleware"
	"institute-system/pkg/service"
	"institute-system/pkg/treestore"
	"institute-system/pkg/utils"
	"institute-system/pkg/websocket"

	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func main() {
	e := echo.New()
	logger := applogger.NewLogger()
	defer logger.Sync()

	cfg := config.New()

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		DisableStackAll: true,
		StackSize:       1 << 10,
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			logger.Error("!!! ОБНАРУЖЕНА ПАНИКА (PANIC) !!!",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Error(err),
				zap.String("stack", string(stack)),
			)
			if !c.Response().Committed {
				httpErr := apperrors.NewHttpError(http.StatusInternalServerError, "Внутренняя ошибка сервера", err, nil)
				utils.ErrorResponse(c, httpErr, logger)
			}
			return err
		},
	}))

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOriginFunc: func(origin string) (bool, error) {
			allowedOrigins := []string{"http://localhost:5173"}
			for _, o := range allowedOrigins {
				if origin == o {
					return true, nil
				}
			}
			return false, nil
		},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
		ExposeHeaders:    []string{"Content-Disposition"},
	}))

	v := validator.New()
	if err := customvalidator.RegisterCustomValidations(v); err != nil {
		logger.Fatal("Ошибка регистрации кастомных правил валидации", zap.Error(err))
	}
	e.Validator = utils.NewValidator(v)

	dbConn := postgresql.ConnectDB(cfg.Postgres.DSN)
	defer dbConn.Close()

	if err := postgresql.RunMigrations(cfg.Postgres.DSN, migrations.FS); err != nil {
		logger.Fatal("Ошибка применения миграций", zap.Error(err))
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       0,
	})
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		logger.Fatal("не удалось подключиться к Redis",
			zap.Error(err), zap.String("address", cfg.Redis.Address))
	}

	jwtSvc := service.NewJWTService(cfg.JWT.SecretKey, cfg.JWT.AccessTokenTTL, cfg.JWT.RefreshTokenTTL, logger)

	// Хранилища.
	store := treestore.NewRedisStore(redisClient, logger)
	txMgr := repositories.NewTxManager(dbConn)
	userRepo := repositories.NewUserRepository(dbConn, logger)
	permissionRepo := repositories.NewPermissionRepository(dbConn)
	equipmentRepo := repositories.NewEquipmentRepository(dbConn)
	cacheRepo := repositories.NewRedisCacheRepository(redisClient)

	// Шина событий и WebSocket-хаб для ролевых уведомлений.
	hub := websocket.NewHub()
	go hub.Run()
	bus := eventbus.New(logger)
	listeners.NewNotificationListener(hub, logger).Register(bus)

	// Сервисы.
	engine := workflow.NewEngine(store, logger)
	authService := services.NewAuthService(userRepo, jwtSvc, logger)
	permissionService := services.NewPermissionService(permissionRepo, cacheRepo, cfg.Workflow.PermissionsCacheTTL, logger)
	userService := services.NewUserService(userRepo, txMgr, logger)
	requestService := services.NewRequestService(engine, store, bus, logger)
	dashboardService := services.NewDashboardService(store, logger)
	equipmentService := services.NewEquipmentService(equipmentRepo, txMgr, logger)

	authMW := appmiddleware.NewAuthMiddleware(jwtSvc, userRepo, logger)
	permMW := appmiddleware.NewPermissionMiddleware(permissionService, logger)

	routes.InitRouter(e, routes.Controllers{
		Auth:      controllers.NewAuthController(authService, logger),
		Request:   controllers.NewRequestController(requestService, logger),
		Dashboard: controllers.NewDashboardController(dashboardService, logger),
		User:      controllers.NewUserController(userService, logger),
		Equipment: controllers.NewEquipmentController(equipmentService, logger),
		WebSocket: controllers.NewWebSocketController(hub, logger),
	}, authMW, permMW)

	logger.Info("🚀 Сервер запущен", zap.String("port", cfg.Server.Port))
	if err := e.Start(":" + cfg.Server.Port); err != nil {
		logger.Fatal("Ошибка запуска сервера", zap.Error(err))
	}
}
