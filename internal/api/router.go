package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/lairbnb/lairs-api/docs"
	"github.com/lairbnb/lairs-api/internal/api/handler"
	"github.com/lairbnb/lairs-api/internal/api/middleware"
	"github.com/lairbnb/lairs-api/internal/core/domain"
	"github.com/lairbnb/lairs-api/internal/core/ports"
)

// Dependencies are the services the router wires into handlers.
type Dependencies struct {
	Logger      zerolog.Logger
	Realm       string
	Gate        ports.Authenticator
	AuthService ports.AuthService
	LairService ports.LairService
	Readiness   map[string]handler.DependencyCheck

	// Registry receives the HTTP request metrics and backs /metrics.
	// Defaults to the global Prometheus registry.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger, deps.Realm)

	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if deps.Registry != nil {
		registerer, gatherer = deps.Registry, deps.Registry
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "http",
		Registerer: registerer,
	}))

	auth := middleware.Auth(deps.Gate)

	// --- Account routes ---
	authHandler := handler.NewAuthHandler(deps.AuthService)
	e.POST("/user", authHandler.Register)
	e.POST("/user/login", authHandler.Login)
	e.POST("/user/logout", authHandler.Logout, auth, middleware.RequireScheme(domain.SchemeBearer, domain.SchemeLegacy))

	// --- Lair routes ---
	lairHandler := handler.NewLairHandler(deps.LairService)
	e.POST("/lair", lairHandler.Create, auth)
	e.GET("/lair/:id", lairHandler.Get)
	e.DELETE("/lair/:id", lairHandler.Delete, auth)

	// --- Health probes (no auth required) ---
	e.GET("/health", handler.NewHealthHandler().Liveness)
	e.GET("/health/ready", handler.NewReadinessHandler(deps.Readiness).Readiness)

	// --- Operational endpoints ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// requestLogger writes one zerolog entry per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		HandleError:  true,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/health" || c.Path() == "/metrics"
		},
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			log.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
