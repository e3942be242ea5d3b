package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/pagewalk/api/handler"
	"github.com/use-agent/pagewalk/api/middleware"
	"github.com/use-agent/pagewalk/cache"
	"github.com/use-agent/pagewalk/cleaner"
	"github.com/use-agent/pagewalk/config"
)

// NewRouter wires every pagewalk endpoint under /api/v1.
//
//	all routes:      Recovery, Logger
//	all but health:  Auth (when enabled), RateLimit
func NewRouter(sc handler.Service, cl *cleaner.Cleaner, cc *cache.Cache, cfg *config.Config, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")

	// Health is public.
	v1.GET("/health", handler.Health(sc, startTime))

	// Everything else sits behind auth and the rate limiter.
	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	protected.POST("/paginate", handler.Paginate(sc))
	protected.POST("/table", handler.Table(sc))
	protected.POST("/screenshot", handler.Screenshot(sc))
	protected.POST("/pdf", handler.PDF(sc))
	protected.POST("/script", handler.Script(sc))
	protected.POST("/content", handler.Content(sc, cl, cc))

	return r
}
