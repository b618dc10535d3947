package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/labstack/echo/v4"

	"clientdesk/docs"
	"clientdesk/internal/auth"
	"clientdesk/internal/cache"
	"clientdesk/internal/config"
	"clientdesk/internal/db"
	"clientdesk/internal/handler"
	"clientdesk/internal/logger"
	"clientdesk/internal/repository"
	"clientdesk/internal/router"
	"clientdesk/internal/service"
	"clientdesk/internal/validation"
)

// @title Clientdesk API
// @version 1.0
// @description Client and manager administration with role-scoped access.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		bootLog := logger.Init(logger.Options{})
		bootLog.Fatal().Err(err).Msg("load config")
	}
	log := logger.Init(logger.Options{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})

	gormDB, err := db.NewMySQL(cfg.MySQL)
	if err != nil {
		log.Fatal().Err(err).Msg("database init")
	}
	if cfg.ResetDB {
		log.Warn().Msg("RESET_DB=true detected, dropping all tables")
	}
	if err := db.Migrate(gormDB, cfg.ResetDB); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatal().Err(err).Msg("database pool")
	}
	defer sqlDB.Close()

	cacheClient := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	defer cacheClient.Close()

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	clientRepo := repository.NewClientRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Initialize services
	validate := validation.New()
	managerService := service.NewManagerService(userRepo, cacheClient, validate, cfg.PageSize, log)
	clientService := service.NewClientService(clientRepo, userRepo, managerService, validate, cfg.PageSize)
	dashboardService := service.NewDashboardService(clientRepo, userRepo)
	authService := service.NewAuthService(userRepo, jwtService, tokenStore)

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "http://"), "https://")
	}

	e := echo.New()
	router.Register(e, log, jwtService.Secret(), managerService, router.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		Clients:   handler.NewClientHandler(clientService),
		Managers:  handler.NewManagerHandler(managerService),
		Dashboard: handler.NewDashboardHandler(dashboardService),
		Health: handler.NewHealthHandler(map[string]handler.Check{
			"mysql": sqlDB.PingContext,
			"redis": cacheClient.Ping,
		}),
	})

	go func() {
		addr := ":" + cfg.ServerPort
		log.Info().Str("addr", addr).Str("swagger", "/swagger/index.html").Msg("http server listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server start")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown")
	}
}
