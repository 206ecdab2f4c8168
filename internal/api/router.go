package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/dailymood/mood-tracker/docs"
	"github.com/dailymood/mood-tracker/internal/api/handler"
	"github.com/dailymood/mood-tracker/internal/api/middleware"
	"github.com/dailymood/mood-tracker/internal/core/ports"
	"github.com/dailymood/mood-tracker/internal/infrastructure/realtime"
	"github.com/dailymood/mood-tracker/internal/pkg/ulids"
	"github.com/dailymood/mood-tracker/pkg/logger"
)

// Deps are the collaborators the HTTP layer is built from.
type Deps struct {
	Log           zerolog.Logger
	JWTSecret     string
	AuthService   ports.AuthService
	RecordService ports.RecordService
	Hub           *realtime.Hub
	HealthChecks  map[string]handler.HealthCheck
	// AuthLimiter throttles the unauthenticated auth routes; nil disables it.
	AuthLimiter *middleware.RateLimiter
	// Registerer receives the HTTP request collectors; nil means the default registry.
	Registerer prometheus.Registerer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: ulids.Monotonic(),
	}))
	e.Use(requestLogger(d.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "moodtracker",
		Registerer: d.Registerer,
	}))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.AuthService)
	userHandler := handler.NewUserHandler(d.AuthService)
	recordHandler := handler.NewRecordHandler(d.RecordService)
	progressHandler := handler.NewProgressHandler(d.RecordService)
	realtimeHandler := handler.NewRealtimeHandler(d.Hub, d.Log)
	healthHandler := handler.NewHealthHandler(d.HealthChecks)

	v1 := e.Group("/v1")

	// --- Auth routes (public, rate limited) ---
	auth := v1.Group("/auth")
	if d.AuthLimiter != nil {
		auth.Use(d.AuthLimiter.Middleware())
	}
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	// --- Authenticated routes ---
	authMiddleware := middleware.Auth(d.JWTSecret)
	secured := v1.Group("", authMiddleware)

	secured.GET("/users/me", userHandler.Me)

	secured.PUT("/records/day", recordHandler.UpsertDay)
	secured.GET("/records/day", recordHandler.GetDay)
	secured.POST("/records/day/activities/:activity/toggle", recordHandler.ToggleActivity)
	secured.GET("/records", recordHandler.List)
	secured.PATCH("/records/:id", recordHandler.Patch)

	secured.GET("/progress", progressHandler.Get)

	secured.GET("/ws", realtimeHandler.Stream)

	// --- Health probes (no auth required) ---
	e.GET("/health", healthHandler.Liveness)        // liveness  – is the process alive?
	e.GET("/health/ready", healthHandler.Readiness) // readiness – are dependencies up?

	// --- Ops ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// requestLogger writes one zerolog line per request and stores a child
// logger carrying the request ID in the request context.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	attach := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			reqLog := log.With().
				Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
				Logger()
			req := c.Request()
			c.SetRequest(req.WithContext(logger.WithContext(req.Context(), reqLog)))
			return next(c)
		}
	}

	access := echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			l := logger.FromContext(c.Request().Context())
			var ev *zerolog.Event
			if v.Error != nil {
				ev = l.Warn().Err(v.Error)
			} else {
				ev = l.Info()
			}
			ev.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return attach(access(next))
	}
}
