package config

import "time"

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultServerPort     = 5174
	DefaultGRPCPort       = 0
	DefaultServerMode     = "release"
	DefaultReadTimeout    = 15 * time.Second
	DefaultWriteTimeout   = 60 * time.Second
	DefaultShutdownWait   = 10 * time.Second
	DefaultMaxBodySize    = 1 << 20
	DefaultCatalogSource  = "local"
	DefaultStructureDir   = "data/pdb"
	DefaultExtension      = ".pdb"
	DefaultMetadataPath   = "data/metadata.json"
	DefaultSimilarityPath = "data/similarity.json"

	DefaultMaxBatchSize      = 500
	DefaultMaxBatchNeighbors = 20000

	DefaultSearchLimit          = 20
	DefaultSearchMaxLimit       = 200
	DefaultSequenceLimit        = 5
	DefaultSequenceMaxLimit     = 50
	DefaultSequenceMinLength    = 5
	DefaultMaxSequenceBatchSize = 500

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisTTL       = 10 * time.Minute
	DefaultRedisKeyPrefix = "cyclome:"

	DefaultRateLimitRPS   = 50
	DefaultRateLimitBurst = 100
	DefaultRateLimitIdle  = 5 * time.Minute

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultMetricsPath      = "/metrics"
	DefaultMetricsNamespace = "cyclome"
)

// NewDefaultConfig returns a Config with every field at its default.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	cfg.Metrics.Enabled = true
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills every zero-value field in cfg with the service default.
// Explicitly set fields are left unchanged.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Server ────────────────────────────────────────────────────────────────
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownWait
	}
	if cfg.Server.MaxBodySize == 0 {
		cfg.Server.MaxBodySize = DefaultMaxBodySize
	}

	// ── Catalog ───────────────────────────────────────────────────────────────
	if cfg.Catalog.Source == "" {
		cfg.Catalog.Source = DefaultCatalogSource
	}
	if cfg.Catalog.StructureDir == "" {
		cfg.Catalog.StructureDir = DefaultStructureDir
	}
	if cfg.Catalog.Extension == "" {
		cfg.Catalog.Extension = DefaultExtension
	}
	if cfg.Catalog.MetadataPath == "" {
		cfg.Catalog.MetadataPath = DefaultMetadataPath
	}

	// ── Similarity ────────────────────────────────────────────────────────────
	if cfg.Similarity.DatasetPath == "" {
		cfg.Similarity.DatasetPath = DefaultSimilarityPath
	}
	if cfg.Similarity.MaxBatchSize == 0 {
		cfg.Similarity.MaxBatchSize = DefaultMaxBatchSize
	}
	if cfg.Similarity.MaxBatchNeighbors == 0 {
		cfg.Similarity.MaxBatchNeighbors = DefaultMaxBatchNeighbors
	}

	// ── Search ────────────────────────────────────────────────────────────────
	if cfg.Search.DefaultLimit == 0 {
		cfg.Search.DefaultLimit = DefaultSearchLimit
	}
	if cfg.Search.MaxLimit == 0 {
		cfg.Search.MaxLimit = DefaultSearchMaxLimit
	}
	if cfg.Search.SequenceDefaultLimit == 0 {
		cfg.Search.SequenceDefaultLimit = DefaultSequenceLimit
	}
	if cfg.Search.SequenceMaxLimit == 0 {
		cfg.Search.SequenceMaxLimit = DefaultSequenceMaxLimit
	}
	if cfg.Search.SequenceMinLength == 0 {
		cfg.Search.SequenceMinLength = DefaultSequenceMinLength
	}
	if cfg.Search.MaxSequenceBatch == 0 {
		cfg.Search.MaxSequenceBatch = DefaultMaxSequenceBatchSize
	}

	// ── Redis ─────────────────────────────────────────────────────────────────
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.DefaultTTL == 0 {
		cfg.Redis.DefaultTTL = DefaultRedisTTL
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}

	// ── Rate limit ────────────────────────────────────────────────────────────
	if cfg.RateLimit.RequestsPerSecond == 0 {
		cfg.RateLimit.RequestsPerSecond = DefaultRateLimitRPS
	}
	if cfg.RateLimit.Burst == 0 {
		cfg.RateLimit.Burst = DefaultRateLimitBurst
	}
	if cfg.RateLimit.IdleTTL == 0 {
		cfg.RateLimit.IdleTTL = DefaultRateLimitIdle
	}

	// ── CORS ──────────────────────────────────────────────────────────────────
	if len(cfg.CORS.AllowedOrigins) == 0 {
		cfg.CORS.AllowedOrigins = []string{"*"}
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	// ── Metrics ───────────────────────────────────────────────────────────────
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
}

//Personal.AI order the ending
