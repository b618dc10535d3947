package router

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"clientdesk/internal/handler"
	"clientdesk/internal/middleware"
	"clientdesk/internal/validation"
)

// Handlers groups the HTTP handlers mounted by Register.
type Handlers struct {
	Auth      *handler.AuthHandler
	Clients   *handler.ClientHandler
	Managers  *handler.ManagerHandler
	Dashboard *handler.DashboardHandler
	Health    *handler.HealthHandler
}

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	log zerolog.Logger,
	jwtSecret []byte,
	users middleware.UserResolver,
	h Handlers,
) {
	e.HideBanner = true
	e.Validator = validation.New()
	e.HTTPErrorHandler = handler.NewHTTPErrorHandler(log)

	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(log))
	e.Use(echomiddleware.Recover())
	e.Use(echoprometheus.NewMiddleware("clientdesk"))

	e.GET("/healthz", h.Health.Liveness)
	e.GET("/readyz", h.Health.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/login", h.Auth.Login)
	api.POST("/auth/refresh", h.Auth.Refresh)
	api.POST("/auth/logout", h.Auth.Logout)

	// Secured routes: valid token and a user that still exists
	secured := api.Group("", middleware.JWT(jwtSecret), middleware.Actor(users))

	secured.GET("/me", h.Auth.Me)
	secured.GET("/dashboard", h.Dashboard.Statistics)

	secured.GET("/clients", h.Clients.ListClients)
	secured.POST("/clients", h.Clients.CreateClient)
	secured.GET("/clients/:id", h.Clients.GetClient)
	secured.PUT("/clients/:id", h.Clients.UpdateClient)
	secured.DELETE("/clients/:id", h.Clients.DeleteClient)
	secured.POST("/clients/:id/change-manager", h.Clients.ChangeManager)

	secured.GET("/managers", h.Managers.ListManagers)
	secured.GET("/managers/options", h.Managers.Options)
	secured.POST("/managers", h.Managers.CreateManager)
	secured.GET("/managers/:id", h.Managers.GetManager)
	secured.PUT("/managers/:id", h.Managers.UpdateManager)
	secured.DELETE("/managers/:id", h.Managers.DeleteManager)
	secured.POST("/managers/:id/change-password", h.Managers.ChangePassword)
	secured.POST("/managers/:id/toggle-active", h.Managers.ToggleActive)
}

// requestLogger writes one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			event := log.Info()
			if v.Status >= 500 {
				event = log.Error().Err(v.Error)
			}
			event.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
