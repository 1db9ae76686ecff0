package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/newsgrab/api/handler"
	"github.com/use-agent/newsgrab/api/middleware"
	"github.com/use-agent/newsgrab/cache"
	"github.com/use-agent/newsgrab/config"
	"github.com/use-agent/newsgrab/store"
)

// Deps are the services the routes call into.
type Deps struct {
	Capturer    handler.Capturer
	Jobs        *handler.Jobs
	Cache       *cache.Cache // optional
	RateLimiter *middleware.RateLimiter
	Store       *store.Store
	NewModel    handler.ModelFactory
	Prompt      string
}

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled) → RateLimit
//
// Health stays outside auth so monitoring probes always work.
func NewRouter(deps Deps, cfg *config.Config, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")
	v1.GET("/health", handler.Health(deps.Capturer, startTime))

	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	if deps.RateLimiter != nil {
		protected.Use(deps.RateLimiter.Middleware())
	}

	protected.POST("/capture", handler.Capture(deps.Capturer, deps.Cache))

	protected.POST("/batch", handler.PostBatch(deps.Jobs))
	protected.GET("/batch/:id", handler.GetBatch(deps.Jobs))

	if deps.NewModel != nil && deps.Store != nil {
		protected.POST("/code", handler.Code(deps.NewModel, deps.Prompt, deps.Store))
	}

	return r
}
