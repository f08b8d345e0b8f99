package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/userhub/identity-api/docs"
	"github.com/userhub/identity-api/internal/api/handler"
	"github.com/userhub/identity-api/internal/api/middleware"
	"github.com/userhub/identity-api/internal/core/domain"
	"github.com/userhub/identity-api/internal/core/ports"
	"github.com/userhub/identity-api/internal/infrastructure/http/handlers"
)

// Dependencies is everything the HTTP layer needs, built once in main.
type Dependencies struct {
	Auth  ports.AuthService
	Users ports.UserService
	Codec ports.TokenCodec
	// Limiter throttles failed logins; nil disables throttling.
	Limiter ports.LoginLimiter
	// Pingers are checked by /health/ready.
	Pingers []handlers.Pinger
	Log     zerolog.Logger
	// Registerer receives the HTTP request metrics. Defaults to the global registry.
	Registerer prometheus.Registerer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "identity",
		Registerer: d.Registerer,
	}))

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(d.Auth, d.Limiter, d.Log)
	userHandler := handler.NewUserHandler(d.Users)
	authMiddleware := middleware.Auth(d.Codec)
	adminOnly := middleware.RBAC(domain.RoleAdmin)

	// --- Public routes ---
	api := e.Group("/api")
	api.POST("/auth/login", authHandler.Login)
	api.POST("/users", userHandler.Register)

	// --- Authenticated routes ---
	secured := api.Group("", authMiddleware)
	secured.GET("/auth/me", authHandler.Me)
	secured.GET("/users", userHandler.List)
	secured.GET("/users/:username", userHandler.Get)
	secured.PUT("/users/:username", userHandler.Update)
	secured.PUT("/users/:username/deactivate", userHandler.Deactivate)
	secured.PUT("/users/:username/activate", userHandler.Activate)
	secured.DELETE("/users/:id", userHandler.Delete)
	secured.GET("/countries/:name/users", userHandler.ListByCountry, adminOnly)

	// --- Health probes (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(d.Pingers...)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Operational ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// requestLogger writes one access log line per request through zerolog.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			event := log.Info()
			if v.Status >= 500 {
				event = log.Error().Err(v.Error)
			}
			event.
				Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}
