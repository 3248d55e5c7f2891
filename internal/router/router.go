package router

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"crmbridge/internal/handler"
	"crmbridge/internal/observability/metrics"
	"crmbridge/internal/service"
)

// Register wires routes and middleware. authMiddleware guards every route
// except registration, login and the probes.
func Register(
	e *echo.Echo,
	logger *slog.Logger,
	authMiddleware echo.MiddlewareFunc,
	authHandler *handler.AuthHandler,
	contactHandler *handler.ContactHandler,
	companyHandler *handler.CompanyHandler,
	dealHandler *handler.DealHandler,
	healthHandler *handler.HealthHandler,
) {
	e.Use(middleware.RequestID())
	e.Use(requestLogger(logger))
	e.Use(middleware.Recover())
	e.Use(metrics.Middleware())
	e.Use(echo.WrapMiddleware(otelhttp.NewMiddleware("crmbridge")))

	e.Validator = &CustomValidator{}

	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api")

	// Public routes
	api.GET("/health", healthHandler.Health)
	api.GET("/ready", healthHandler.Ready)
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	// Secured routes
	secured := api.Group("", authMiddleware)

	secured.POST("/auth/logout", authHandler.Logout)
	secured.GET("/auth/me", authHandler.Me)

	// Contact routes
	secured.GET("/contacts", contactHandler.List)
	secured.POST("/contacts", contactHandler.Create)
	secured.GET("/contacts/:id", contactHandler.Get)
	secured.PUT("/contacts/:id", contactHandler.Update)
	secured.DELETE("/contacts/:id", contactHandler.Delete)

	// Company routes
	secured.GET("/companies", companyHandler.List)
	secured.POST("/companies", companyHandler.Create)
	secured.GET("/companies/:id", companyHandler.Get)
	secured.PUT("/companies/:id", companyHandler.Update)
	secured.DELETE("/companies/:id", companyHandler.Delete)
	secured.GET("/companies/:id/contacts", companyHandler.ListContacts)

	// Deal routes
	secured.GET("/deals", dealHandler.List)
	secured.POST("/deals", dealHandler.Create)
	secured.GET("/deals/:id", dealHandler.Get)
	secured.PUT("/deals/:id", dealHandler.Update)
	secured.DELETE("/deals/:id", dealHandler.Delete)
}

func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("request_id", v.RequestID),
			}
			level := slog.LevelInfo
			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
				if v.Status >= 500 {
					level = slog.LevelError
				}
			}
			logger.LogAttrs(c.Request().Context(), level, "request", attrs...)
			return nil
		},
	})
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct{}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return service.Validate(i)
}
