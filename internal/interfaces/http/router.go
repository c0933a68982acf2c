package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/druglike/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/druglike/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/druglike/internal/interfaces/http/handlers"
	"github.com/turtacn/druglike/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handler and middleware dependencies of the
// route tree.  Nil handlers are skipped.
type RouterConfig struct {
	// Mode is the gin mode: debug, release or test.
	Mode string

	ScreeningHandler *handlers.ScreeningHandler
	DashboardHandler *handlers.DashboardHandler
	HealthHandler    *handlers.HealthHandler

	CORS    *middleware.CORSConfig
	Logging middleware.LoggingConfig

	Logger           logging.Logger
	Metrics          *prometheus.AppMetrics
	MetricsCollector prometheus.MetricsCollector
}

// NewRouter builds the gin engine: global middleware, health routes, /metrics, the
// dashboard at / and the JSON API under /api/v1.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}
	r := gin.New()
	r.HandleMethodNotAllowed = true

	// Recovery runs first so a panic in any later middleware is caught.
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestID())
	if cfg.CORS != nil {
		r.Use(middleware.CORS(*cfg.CORS))
	}
	r.Use(middleware.RequestLogging(cfg.Logger, cfg.Logging))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}

	root := r.Group("")
	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterRoutes(root)
	}
	if cfg.MetricsCollector != nil {
		r.GET("/metrics", gin.WrapH(cfg.MetricsCollector.Handler()))
	}
	if cfg.DashboardHandler != nil {
		cfg.DashboardHandler.RegisterRoutes(root)
	}

	api := r.Group("/api/v1")
	if cfg.ScreeningHandler != nil {
		cfg.ScreeningHandler.RegisterRoutes(api)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found", "path": c.Request.URL.Path})
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed", "method": c.Request.Method})
	})
	return r
}
