package config

import (
	"time"

	"github.com/turtacn/druglike/internal/application/screening"
	"github.com/turtacn/druglike/internal/infrastructure/database/redis"
	"github.com/turtacn/druglike/internal/infrastructure/datasource"
)

const (
	DefaultServerHost     = "0.0.0.0"
	DefaultServerPort     = 8080
	DefaultGRPCPort       = 9090
	DefaultServerMode     = "release"
	DefaultReadTimeout    = 15 * time.Second
	DefaultWriteTimeout   = 2 * time.Minute
	DefaultShutdownPeriod = 10 * time.Second

	DefaultDatasetTimeout = 60 * time.Second
	DefaultUserAgent      = "druglike/1.0"

	DefaultMinIOEndpoint = "localhost:9000"

	DefaultWorkers = 1

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultMetricsNamespace = "druglike"
)

// defaultValues lists every key with a default.  Seeding viper with them is
// also what makes DRUGLIKE_* variables visible to Unmarshal when no config
// file mentions the key.
func defaultValues() map[string]interface{} {
	return map[string]interface{}{
		"server.host":             DefaultServerHost,
		"server.port":             DefaultServerPort,
		"server.grpc_port":        DefaultGRPCPort,
		"server.mode":             DefaultServerMode,
		"server.read_timeout":     DefaultReadTimeout,
		"server.write_timeout":    DefaultWriteTimeout,
		"server.shutdown_timeout": DefaultShutdownPeriod,
		"server.cors_origins":     []string{},

		"dataset.source":     string(datasource.KindHTTP),
		"dataset.url":        datasource.DefaultURL,
		"dataset.path":       "",
		"dataset.object_key": "",
		"dataset.timeout":    DefaultDatasetTimeout,
		"dataset.user_agent": DefaultUserAgent,

		"minio.endpoint":          DefaultMinIOEndpoint,
		"minio.access_key_id":     "",
		"minio.secret_access_key": "",
		"minio.use_ssl":           false,
		"minio.region":            "",
		"minio.bucket":            "",

		"redis.enabled":    false,
		"redis.mode":       redis.ModeStandalone,
		"redis.addr":       "localhost:6379",
		"redis.password":   "",
		"redis.db":         0,
		"redis.key_prefix": redis.DefaultKeyPrefix,
		"redis.ttl":        redis.DefaultDescriptorTTL,

		"screening.workers":        DefaultWorkers,
		"screening.image_template": screening.DefaultImageTemplate,

		"log.level":  DefaultLogLevel,
		"log.format": DefaultLogFormat,

		"metrics.enabled":         true,
		"metrics.namespace":       DefaultMetricsNamespace,
		"metrics.process_metrics": true,
		"metrics.go_metrics":      true,
	}
}

// ApplyDefaults fills zero-value fields in cfg.  Explicit values always win.
// Load already seeds viper with the same values; ApplyDefaults covers
// configs built in code.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Server.Host == "" {
		cfg.Server.Host = DefaultServerHost
	}
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
		cfg.Server.ShutdownTimeout = DefaultShutdownPeriod
	}

	if cfg.Dataset.Source == "" {
		cfg.Dataset.Source = datasource.KindHTTP
	}
	if cfg.Dataset.Source == datasource.KindHTTP && cfg.Dataset.URL == "" {
		cfg.Dataset.URL = datasource.DefaultURL
	}
	if cfg.Dataset.Timeout == 0 {
		cfg.Dataset.Timeout = DefaultDatasetTimeout
	}
	if cfg.Dataset.UserAgent == "" {
		cfg.Dataset.UserAgent = DefaultUserAgent
	}

	if cfg.MinIO.Endpoint == "" {
		cfg.MinIO.Endpoint = DefaultMinIOEndpoint
	}

	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = redis.DefaultKeyPrefix
	}
	if cfg.Redis.TTL == 0 {
		cfg.Redis.TTL = redis.DefaultDescriptorTTL
	}

	if cfg.Screening.Workers == 0 {
		cfg.Screening.Workers = DefaultWorkers
	}
	if cfg.Screening.ImageTemplate == "" {
		cfg.Screening.ImageTemplate = screening.DefaultImageTemplate
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
}
