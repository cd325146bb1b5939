// Package config defines the configuration structures of the cyclome catalog
// service.  No I/O lives in this file; only plain data types and validation.
package config

import (
	"fmt"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP and gRPC server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	GRPCPort        int           `mapstructure:"grpc_port"` // 0 disables the gRPC health server
	Mode            string        `mapstructure:"mode"`      // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// CatalogConfig selects where structure files are listed from and where the
// metadata dataset lives.
type CatalogConfig struct {
	Source       string `mapstructure:"source"` // "local" | "minio"
	StructureDir string `mapstructure:"structure_dir"`
	Extension    string `mapstructure:"extension"`
	MetadataPath string `mapstructure:"metadata_path"`
}

// SimilarityConfig holds the similarity dataset location and batch bounds.
type SimilarityConfig struct {
	DatasetPath       string `mapstructure:"dataset_path"`
	MaxBatchSize      int    `mapstructure:"max_batch_size"`
	MaxBatchNeighbors int    `mapstructure:"max_batch_neighbors"`
}

// SearchConfig holds default and maximum result counts per query kind.
type SearchConfig struct {
	DefaultLimit         int `mapstructure:"default_limit"`
	MaxLimit             int `mapstructure:"max_limit"`
	SequenceDefaultLimit int `mapstructure:"sequence_default_limit"`
	SequenceMaxLimit     int `mapstructure:"sequence_max_limit"`
	SequenceMinLength    int `mapstructure:"sequence_min_length"`
	MaxSequenceBatch     int `mapstructure:"max_sequence_batch"`
}

// RedisConfig holds the optional response-cache connection parameters.
type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	DefaultTTL   time.Duration `mapstructure:"default_ttl"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// MinIOConfig holds the bucket-backed structure source parameters.  Used only
// when catalog.source is "minio".
type MinIOConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	Prefix    string `mapstructure:"prefix"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Region    string `mapstructure:"region"`
}

// RateLimitConfig holds per-client token bucket parameters.
type RateLimitConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
	IdleTTL           time.Duration `mapstructure:"idle_ttl"`
}

// CORSConfig holds cross-origin settings for the HTTP API.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	MaxAge         int      `mapstructure:"max_age"`
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format string `mapstructure:"format"` // "json" | "console"
	Output string `mapstructure:"output"`
}

// MetricsConfig controls the Prometheus exposition endpoint.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Path      string `mapstructure:"path"`
	Namespace string `mapstructure:"namespace"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Catalog    CatalogConfig    `mapstructure:"catalog"`
	Similarity SimilarityConfig `mapstructure:"similarity"`
	Search     SearchConfig     `mapstructure:"search"`
	Redis      RedisConfig      `mapstructure:"redis"`
	MinIO      MinIOConfig      `mapstructure:"minio"`
	RateLimit  RateLimitConfig  `mapstructure:"ratelimit"`
	CORS       CORSConfig       `mapstructure:"cors"`
	Log        LogConfig        `mapstructure:"log"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of a fully-populated Config and
// returns the first problem found.  A missing structure directory or dataset
// file is not a validation error: the service starts with empty indexes.
// Result caps may be lowered but never raised above their defaults.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	if c.Server.GRPCPort < 0 || c.Server.GRPCPort > 65535 {
		return fmt.Errorf("config: server.grpc_port %d is out of range [0, 65535]", c.Server.GRPCPort)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}

	switch c.Catalog.Source {
	case "local":
	case "minio":
		if c.MinIO.Endpoint == "" || c.MinIO.Bucket == "" {
			return fmt.Errorf("config: minio.endpoint and minio.bucket are required when catalog.source is minio")
		}
	default:
		return fmt.Errorf("config: catalog.source %q is invalid; expected local|minio", c.Catalog.Source)
	}

	if c.Similarity.MaxBatchSize < 1 || c.Similarity.MaxBatchSize > DefaultMaxBatchSize {
		return fmt.Errorf("config: similarity.max_batch_size %d is out of range [1, %d]",
			c.Similarity.MaxBatchSize, DefaultMaxBatchSize)
	}
	if c.Similarity.MaxBatchNeighbors < 1 {
		return fmt.Errorf("config: similarity.max_batch_neighbors must be ≥ 1, got %d", c.Similarity.MaxBatchNeighbors)
	}

	if c.Search.MaxLimit < 1 || c.Search.MaxLimit > DefaultSearchMaxLimit {
		return fmt.Errorf("config: search.max_limit %d is out of range [1, %d]", c.Search.MaxLimit, DefaultSearchMaxLimit)
	}
	if c.Search.SequenceMaxLimit < 1 || c.Search.SequenceMaxLimit > DefaultSequenceMaxLimit {
		return fmt.Errorf("config: search.sequence_max_limit %d is out of range [1, %d]",
			c.Search.SequenceMaxLimit, DefaultSequenceMaxLimit)
	}
	if c.Search.DefaultLimit < 1 || c.Search.DefaultLimit > c.Search.MaxLimit {
		return fmt.Errorf("config: search.default_limit %d must be in [1, %d]", c.Search.DefaultLimit, c.Search.MaxLimit)
	}
	if c.Search.SequenceDefaultLimit < 1 || c.Search.SequenceDefaultLimit > c.Search.SequenceMaxLimit {
		return fmt.Errorf("config: search.sequence_default_limit %d must be in [1, %d]",
			c.Search.SequenceDefaultLimit, c.Search.SequenceMaxLimit)
	}

	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("config: redis.addr is required when redis is enabled")
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("config: redis.db must be ≥ 0, got %d", c.Redis.DB)
	}

	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst < 1) {
		return fmt.Errorf("config: ratelimit requires requests_per_second > 0 and burst ≥ 1")
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	return nil
}

//Personal.AI order the ending
