package http

import (
	"github.com/gin-gonic/gin"

	"github.com/turtacn/cyclome/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/cyclome/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/cyclome/internal/interfaces/http/handlers"
	"github.com/turtacn/cyclome/internal/interfaces/http/middleware"
)

// RouterConfig aggregates all handler and middleware dependencies required
// to construct the complete HTTP route tree.  Nil fields are skipped.
type RouterConfig struct {
	// Handlers
	StructureHandler  *handlers.StructureHandler
	SimilarityHandler *handlers.SimilarityHandler
	MetaHandler       *handlers.MetaHandler
	HealthHandler     *handlers.HealthHandler

	// Middleware
	CORS            *middleware.CORSConfig
	RateLimiter     middleware.RateLimiter
	RateLimitConfig middleware.RateLimitConfig
	LoggingConfig   middleware.LoggingConfig
	MaxBodySize     int64

	// Infrastructure
	Logger           logging.Logger
	Metrics          *prometheus.AppMetrics
	MetricsCollector prometheus.MetricsCollector
	MetricsPath      string
}

// NewRouter constructs the complete HTTP route tree from the given configuration.
func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()

	// --- Global middleware (applied to every request) ---
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	if cfg.Logger != nil {
		r.Use(middleware.RequestLogging(cfg.Logger, cfg.LoggingConfig))
	}
	if cfg.CORS != nil {
		r.Use(middleware.CORS(*cfg.CORS))
	}
	if cfg.RateLimiter != nil {
		r.Use(middleware.RateLimit(cfg.RateLimiter, cfg.RateLimitConfig, cfg.Metrics))
	}
	if cfg.MaxBodySize > 0 {
		r.Use(middleware.BodyLimit(cfg.MaxBodySize))
	}

	// --- Health and metrics ---
	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterRoutes(r)
	}
	if cfg.MetricsCollector != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(cfg.MetricsCollector.Handler()))
	}

	// --- API ---
	api := r.Group("/api")
	if cfg.StructureHandler != nil {
		cfg.StructureHandler.RegisterRoutes(api.Group("/pdb"))
	}
	if cfg.SimilarityHandler != nil {
		cfg.SimilarityHandler.RegisterRoutes(api.Group("/similarity"))
	}
	if cfg.MetaHandler != nil {
		cfg.MetaHandler.RegisterRoutes(api.Group("/meta"))
	}

	return r
}

//Personal.AI order the ending
