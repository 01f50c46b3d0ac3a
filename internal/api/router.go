package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"lora/internal"
)

// Pinger is implemented by cache backends that can report their health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouterConfig aggregates what the route tree needs. Metrics and Health are
// optional.
type RouterConfig struct {
	Handler *Handler
	Metrics *Metrics
	Health  Pinger
	Logger  *internal.Logger
}

// NewRouter builds the gin engine: health and metrics at the root, the
// session API under /api/v1.
func NewRouter(cfg RouterConfig) *gin.Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = internal.DefaultLogger
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(logger.With("http")))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	r.GET("/healthz", healthz(cfg.Health))

	v1 := r.Group("/api/v1")
	{
		v1.POST("/sessions", cfg.Handler.CreateSession)

		s := v1.Group("/sessions/:session")
		s.POST("/normalize", cfg.Handler.Normalize)
		s.POST("/enrichment", cfg.Handler.Enrich)
		s.GET("/enrichment", cfg.Handler.Latest)
		s.GET("/enrichment/workbook", cfg.Handler.Workbook)
		s.GET("/enrichment/summary", cfg.Handler.Summary)
	}

	return r
}

func healthz(p Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if p != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := p.Ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "cache": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

func requestLogger(logger *internal.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("%s %s %d %s", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start).Round(time.Microsecond))
	}
}
