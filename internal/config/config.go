// Package config defines the configuration tree of druglike.  Sections that
// belong to an infrastructure component reuse that component's own config
// type so the YAML keys and the constructor arguments never drift apart.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/turtacn/druglike/internal/application/screening"
	"github.com/turtacn/druglike/internal/infrastructure/database/redis"
	"github.com/turtacn/druglike/internal/infrastructure/datasource"
	"github.com/turtacn/druglike/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/druglike/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/druglike/internal/infrastructure/storage/minio"
)

// ServerConfig holds HTTP and gRPC listener tunables.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	GRPCPort        int           `mapstructure:"grpc_port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
}

// Addr returns the HTTP listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// GRPCAddr returns the gRPC listen address.  A zero port disables gRPC.
func (s ServerConfig) GRPCAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.GRPCPort)
}

// ScreeningConfig tunes the annotation pass and the two rule panels.
// Cutoff maps are keyed by descriptor name (MW, LogP, NumHDonors, ...).
type ScreeningConfig struct {
	Workers       int                `mapstructure:"workers"`
	ImageTemplate string             `mapstructure:"image_template"`
	RuleOfFive    map[string]float64 `mapstructure:"ro5"`
	RuleOfThree   map[string]float64 `mapstructure:"ro3"`
}

// Config is the root configuration structure.
type Config struct {
	Server    ServerConfig               `mapstructure:"server"`
	Dataset   datasource.Config          `mapstructure:"dataset"`
	MinIO     minio.MinIOConfig          `mapstructure:"minio"`
	Redis     redis.RedisConfig          `mapstructure:"redis"`
	Screening ScreeningConfig            `mapstructure:"screening"`
	Log       logging.LogConfig          `mapstructure:"log"`
	Metrics   prometheus.CollectorConfig `mapstructure:"metrics"`
}

// Rules builds the two screening rules with the configured default cutoffs.
// Keys are matched case-insensitively against descriptor names; unknown
// keys were already rejected by Validate.
func (c *Config) Rules() ([]*screening.Rule, error) {
	ro5, err := withConfigured(screening.RuleOfFive(), c.Screening.RuleOfFive)
	if err != nil {
		return nil, err
	}
	ro3, err := withConfigured(screening.RuleOfThree(), c.Screening.RuleOfThree)
	if err != nil {
		return nil, err
	}
	return []*screening.Rule{ro5, ro3}, nil
}

func withConfigured(rule *screening.Rule, raw map[string]float64) (*screening.Rule, error) {
	if len(raw) == 0 {
		return rule, nil
	}
	cutoffs, err := cutoffsFromConfig(raw)
	if err != nil {
		return nil, err
	}
	return rule.WithDefaults(cutoffs)
}

// cutoffsFromConfig maps config keys onto descriptor kinds.  viper lowercases
// every key, so the match is case-insensitive.
func cutoffsFromConfig(raw map[string]float64) (screening.Cutoffs, error) {
	out := make(screening.Cutoffs, len(raw))
	for k, v := range raw {
		kind, err := screening.ParseKind(k)
		if err != nil {
			return nil, fmt.Errorf("config: unknown descriptor %q in screening cutoffs", k)
		}
		out[kind] = v
	}
	return out, nil
}

// Validate performs semantic validation of the fully-populated Config.  It
// returns the first error encountered.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	if c.Server.GRPCPort < 0 || c.Server.GRPCPort > 65535 {
		return fmt.Errorf("config: server.grpc_port %d is out of range [0, 65535]", c.Server.GRPCPort)
	}
	if c.Server.GRPCPort != 0 && c.Server.GRPCPort == c.Server.Port {
		return fmt.Errorf("config: server.grpc_port must differ from server.port")
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}

	switch c.Dataset.Source {
	case datasource.KindHTTP:
		if c.Dataset.URL == "" {
			return fmt.Errorf("config: dataset.url is required for http source")
		}
	case datasource.KindFile:
		if c.Dataset.Path == "" {
			return fmt.Errorf("config: dataset.path is required for file source")
		}
	case datasource.KindMinIO:
		if c.Dataset.ObjectKey == "" {
			return fmt.Errorf("config: dataset.object_key is required for minio source")
		}
		if c.MinIO.Endpoint == "" {
			return fmt.Errorf("config: minio.endpoint is required for minio source")
		}
	default:
		return fmt.Errorf("config: dataset.source %q is invalid; expected http|file|minio", c.Dataset.Source)
	}
	if c.Dataset.Timeout <= 0 {
		return fmt.Errorf("config: dataset.timeout must be positive")
	}

	if c.Redis.Enabled {
		if c.Redis.DB < 0 {
			return fmt.Errorf("config: redis.db must be >= 0, got %d", c.Redis.DB)
		}
		if c.Redis.TTL < 0 {
			return fmt.Errorf("config: redis.ttl must not be negative")
		}
	}

	if c.Screening.Workers < 1 {
		return fmt.Errorf("config: screening.workers must be >= 1, got %d", c.Screening.Workers)
	}
	if !strings.Contains(c.Screening.ImageTemplate, "{{smiles}}") {
		return fmt.Errorf("config: screening.image_template must contain {{smiles}}")
	}
	if _, err := c.Rules(); err != nil {
		return err
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	if c.Metrics.Enabled && c.Metrics.Namespace == "" {
		return fmt.Errorf("config: metrics.namespace is required when metrics are enabled")
	}
	return nil
}
