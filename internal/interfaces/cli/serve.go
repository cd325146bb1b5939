package cli

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/turtacn/cyclome/internal/application/catalog"
	"github.com/turtacn/cyclome/internal/config"
	"github.com/turtacn/cyclome/internal/infrastructure/database/redis"
	"github.com/turtacn/cyclome/internal/infrastructure/dataset"
	"github.com/turtacn/cyclome/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/cyclome/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/cyclome/internal/infrastructure/storage/localfs"
	"github.com/turtacn/cyclome/internal/infrastructure/storage/minio"
	grpcapi "github.com/turtacn/cyclome/internal/interfaces/grpc"
	httpapi "github.com/turtacn/cyclome/internal/interfaces/http"
	"github.com/turtacn/cyclome/internal/interfaces/http/handlers"
	"github.com/turtacn/cyclome/internal/interfaces/http/middleware"
	"github.com/turtacn/cyclome/pkg/errors"
)

// readinessInterval is how often the gRPC health status re-reads catalog
// readiness.
const readinessInterval = 5 * time.Second

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	var (
		port     int
		grpcPort int
		dir      string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Index the structure source and serve the HTTP API",
		Long: "serve builds the identifier index from the configured source, then serves\n" +
			"the HTTP API (and the gRPC health service when server.grpc_port is set)\n" +
			"until SIGINT or SIGTERM.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			cfg := cliCtx.Config
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			if cmd.Flags().Changed("grpc-port") {
				cfg.Server.GRPCPort = grpcPort
			}
			if cmd.Flags().Changed("dir") {
				cfg.Catalog.StructureDir = dir
			}

			logger, err := NewServiceLogger(cfg, cliCtx.LogLevel)
			if err != nil {
				return err
			}
			logging.SetDefault(logger)

			if cliCtx.ConfigPath != "" {
				watchLogLevel(cliCtx.ConfigPath, logger)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, err := NewApp(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer app.Close()
			return app.Run(ctx)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "HTTP port (overrides server.port)")
	cmd.Flags().IntVar(&grpcPort, "grpc-port", 0, "gRPC health port, 0 disables (overrides server.grpc_port)")
	cmd.Flags().StringVar(&dir, "dir", "", "structure directory (overrides catalog.structure_dir)")
	return cmd
}

// NewServiceLogger builds the server logger from the log section at level,
// the level already resolved from --verbose, --log-level and log.level.
func NewServiceLogger(cfg *config.Config, level string) (logging.Logger, error) {
	logCfg := logging.LogConfig{
		Level:  level,
		Format: cfg.Log.Format,
	}
	if out := strings.TrimSpace(cfg.Log.Output); out != "" {
		logCfg.OutputPaths = []string{out}
	}
	return logging.NewLogger(logCfg)
}

// watchLogLevel applies log.level edits of the config file to logger.
func watchLogLevel(path string, logger logging.Logger) {
	setter, ok := logger.(logging.LevelSetter)
	if !ok {
		return
	}
	config.Watch(path, func(cfg *config.Config) {
		setter.SetLevel(cfg.Log.Level)
		logger.Info("log level reloaded", logging.String("level", cfg.Log.Level))
	})
}

// ─────────────────────────────────────────────────────────────────────────────
// App
// ─────────────────────────────────────────────────────────────────────────────

// App is a fully wired server: catalog service, HTTP router and the optional
// gRPC health server.
type App struct {
	Service catalog.Service
	Router  *gin.Engine

	cfg     *config.Config
	logger  logging.Logger
	http    *httpapi.Server
	grpc    *grpcapi.Server
	closers []func() error
}

// NewApp opens the structure source and the optional cache, builds the
// catalog and wires the servers.  Nothing listens until Run.
func NewApp(ctx context.Context, cfg *config.Config, logger logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	a := &App{cfg: cfg, logger: logger}

	var (
		collector prometheus.MetricsCollector
		metrics   *prometheus.AppMetrics
	)
	if cfg.Metrics.Enabled {
		var err error
		collector, err = prometheus.NewMetricsCollector(prometheus.CollectorConfig{
			Namespace:            cfg.Metrics.Namespace,
			EnableProcessMetrics: true,
			EnableGoMetrics:      true,
		}, logger)
		if err != nil {
			return nil, err
		}
		metrics = prometheus.NewAppMetrics(collector)
	}

	source, checkers, err := a.openSource(cfg, logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	cache, cacheChecker := a.openCache(cfg, logger)
	if cacheChecker != nil {
		checkers = append(checkers, cacheChecker)
	}

	a.Service = catalog.NewService(ctx, CatalogConfig(cfg), catalog.Dependencies{
		Source:     source,
		Metadata:   datasetLoader(cfg.Catalog.MetadataPath),
		Similarity: datasetLoader(cfg.Similarity.DatasetPath),
		Cache:      cache,
		Metrics:    metrics,
		Logger:     logger,
	})
	checkers = append([]handlers.HealthChecker{handlers.ReadyChecker("catalog", a.Service.Ready)}, checkers...)

	a.Router = httpapi.NewRouter(routerConfig(cfg, a.Service, checkers, logger, metrics, collector))
	a.http = httpapi.NewServer(httpapi.ServerConfig{
		Port:            cfg.Server.Port,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, a.Router, logger)

	if cfg.Server.GRPCPort > 0 {
		a.grpc, err = grpcapi.NewServer(grpcapi.Config{Port: cfg.Server.GRPCPort},
			grpcapi.WithLogger(logger),
			grpcapi.WithMetrics(metrics),
			grpcapi.WithGracefulTimeout(cfg.Server.ShutdownTimeout),
			grpcapi.WithReadiness(a.Service.Ready, readinessInterval),
		)
		if err != nil {
			a.Close()
			return nil, err
		}
	}

	return a, nil
}

// CatalogConfig maps the configuration sections onto the service limits.
func CatalogConfig(cfg *config.Config) catalog.Config {
	return catalog.Config{
		Extension:            cfg.Catalog.Extension,
		SimilarityPath:       cfg.Similarity.DatasetPath,
		SearchDefaultLimit:   cfg.Search.DefaultLimit,
		SearchMaxLimit:       cfg.Search.MaxLimit,
		SequenceDefaultLimit: cfg.Search.SequenceDefaultLimit,
		SequenceMaxLimit:     cfg.Search.SequenceMaxLimit,
		SequenceMinLength:    cfg.Search.SequenceMinLength,
		MaxSequenceBatch:     cfg.Search.MaxSequenceBatch,
		MaxBatchIDs:          cfg.Similarity.MaxBatchSize,
		MaxBatchNeighbors:    cfg.Similarity.MaxBatchNeighbors,
		CacheTTL:             cfg.Redis.DefaultTTL,
	}
}

func datasetLoader(path string) catalog.RowLoader {
	if path == "" {
		return nil
	}
	return func() ([]map[string]interface{}, error) {
		return dataset.ReadFile(path)
	}
}

// openSource returns the configured structure source and its health checks.
func (a *App) openSource(cfg *config.Config, logger logging.Logger) (catalog.Source, []handlers.HealthChecker, error) {
	if cfg.Catalog.Source != "minio" {
		return localfs.NewSource(cfg.Catalog.StructureDir), nil, nil
	}

	mc, err := minio.NewMinIOClient(&minio.MinIOConfig{
		Endpoint:        cfg.MinIO.Endpoint,
		AccessKeyID:     cfg.MinIO.AccessKey,
		SecretAccessKey: cfg.MinIO.SecretKey,
		UseSSL:          cfg.MinIO.UseSSL,
		Region:          cfg.MinIO.Region,
		Bucket:          cfg.MinIO.Bucket,
		Prefix:          cfg.MinIO.Prefix,
	}, logger)
	if err != nil {
		return nil, nil, err
	}
	a.closers = append(a.closers, mc.Close)

	checker := handlers.NewCheckerFunc("minio", func(ctx context.Context) error {
		_, err := mc.HealthCheck(ctx)
		return err
	})
	return minio.NewSource(mc), []handlers.HealthChecker{checker}, nil
}

// openCache connects the optional response cache.  An unreachable redis is
// logged and the server runs uncached.
func (a *App) openCache(cfg *config.Config, logger logging.Logger) (redis.Cache, handlers.HealthChecker) {
	if !cfg.Redis.Enabled {
		return nil, nil
	}

	rc, err := redis.NewClient(&redis.RedisConfig{
		Addr:         cfg.Redis.Addr,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	}, logger)
	if err != nil {
		logger.Warn("redis unavailable, similarity responses will not be cached",
			logging.String("addr", cfg.Redis.Addr), logging.Err(err))
		return nil, nil
	}
	a.closers = append(a.closers, rc.Close)

	cache := redis.NewRedisCache(rc, logger,
		redis.WithPrefix(cfg.Redis.KeyPrefix),
		redis.WithDefaultTTL(cfg.Redis.DefaultTTL),
	)
	return cache, handlers.NewCheckerFunc("redis", rc.Ping)
}

func routerConfig(
	cfg *config.Config,
	svc catalog.Service,
	checkers []handlers.HealthChecker,
	logger logging.Logger,
	metrics *prometheus.AppMetrics,
	collector prometheus.MetricsCollector,
) httpapi.RouterConfig {
	rc := httpapi.RouterConfig{
		StructureHandler:  handlers.NewStructureHandler(svc, logger),
		SimilarityHandler: handlers.NewSimilarityHandler(svc, logger),
		MetaHandler:       handlers.NewMetaHandler(svc, logger),
		HealthHandler:     handlers.NewHealthHandler(Version, checkers...),
		LoggingConfig:     middleware.DefaultLoggingConfig(),
		MaxBodySize:       cfg.Server.MaxBodySize,
		Logger:            logger,
		Metrics:           metrics,
		MetricsCollector:  collector,
		MetricsPath:       cfg.Metrics.Path,
	}

	cors := middleware.DefaultCORSConfig()
	if len(cfg.CORS.AllowedOrigins) > 0 {
		cors.AllowedOrigins = cfg.CORS.AllowedOrigins
	}
	if cfg.CORS.MaxAge > 0 {
		cors.MaxAge = cfg.CORS.MaxAge
	}
	rc.CORS = &cors

	if cfg.RateLimit.Enabled {
		rl := middleware.DefaultRateLimitConfig()
		rl.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		rl.BurstSize = cfg.RateLimit.Burst
		rl.IdleTTL = cfg.RateLimit.IdleTTL
		if cfg.Metrics.Path != "" {
			rl.SkipPaths = append(rl.SkipPaths, cfg.Metrics.Path)
		}
		rc.RateLimitConfig = rl
		rc.RateLimiter = middleware.NewClientLimiter(rl.RequestsPerSecond, rl.BurstSize, rl.IdleTTL)
	}
	return rc
}

// Run serves until ctx is done or a server fails, then stops both servers
// within the shutdown timeout.
func (a *App) Run(ctx context.Context) error {
	return a.run(ctx, a.http.Start)
}

func (a *App) run(ctx context.Context, serveHTTP func() error) error {
	a.logger.Info("cyclome server starting",
		logging.String("version", Version),
		logging.Int("port", a.cfg.Server.Port),
		logging.Int("grpc_port", a.cfg.Server.GRPCPort),
		logging.String("source", a.Service.Stats(ctx).Source),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(serveHTTP)
	if a.grpc != nil {
		g.Go(a.grpc.Start)
	}
	g.Go(func() error {
		<-gctx.Done()
		return a.shutdown()
	})

	if err := g.Wait(); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "server stopped with error")
	}
	a.logger.Info("cyclome server stopped")
	return nil
}

func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	var firstErr error
	if a.grpc != nil {
		if err := a.grpc.Stop(ctx); err != nil {
			firstErr = err
		}
	}
	if err := a.http.Stop(ctx); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// Close releases the source and cache clients.
func (a *App) Close() error {
	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	a.closers = nil
	return firstErr
}

//Personal.AI order the ending
