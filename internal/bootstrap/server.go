package bootstrap

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	httpecho "github.com/mohammadpnp/outreach-import/internal/interfaces/http/echo"
)

func NewHTTPServer(c *Container) *echo.Echo {
	server := echo.New()
	server.HideBanner = true

	server.Use(middleware.Recover())
	server.Use(middleware.RequestID())
	server.Use(middleware.BodyLimit("1M"))
	server.Use(requestLogger(c.Logger))

	importHandler := httpecho.NewImportHandler(c.StartImport, c.Advance, c.Runner)
	jobHandler := httpecho.NewJobHandler(c.GetJob, c.ListItems)

	httpecho.RegisterRoutes(server, importHandler, jobHandler)

	server.GET("/healthz", func(ctx echo.Context) error {
		if err := c.Pool.Ping(ctx.Request().Context()); err != nil {
			return ctx.JSON(http.StatusServiceUnavailable, map[string]string{"status": "db_unavailable"})
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	if c.Config == nil || c.Config.Metrics {
		server.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	}

	return server
}

func requestLogger(logger *logrus.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			entry := logger.WithFields(logrus.Fields{
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency_ms": v.Latency.Round(time.Millisecond).Milliseconds(),
				"request_id": v.RequestID,
			})
			if v.Error != nil {
				entry.WithError(v.Error).Warn("request failed")
				return nil
			}
			entry.Info("request handled")
			return nil
		},
	})
}
