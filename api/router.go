package api

import (
	"github.com/gin-gonic/gin"
	"github.com/molistry/rendertron/api/handler"
	"github.com/molistry/rendertron/api/middleware"
	"github.com/molistry/rendertron/cache"
	"github.com/molistry/rendertron/config"
	"github.com/molistry/rendertron/content"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled) → RateLimit
//
// Health endpoint is intentionally outside auth so monitoring probes always work.
func NewRouter(eng handler.Engine, st handler.StatusSource, cfg *config.Config, cc *cache.Cache, conv *content.Converter) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	// Health — no auth required.
	r.GET("/healthz", handler.Health(st))

	// Protected group — auth + rate limit.
	protected := r.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	protected.GET("/render", handler.Render(eng, cc, conv))
	protected.GET("/preview", handler.Preview(eng))
	protected.GET("/screenshot", handler.Screenshot(eng))

	return r
}
