package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/druglike/internal/application/screening"
	"github.com/turtacn/druglike/internal/domain/molecule"
	"github.com/turtacn/druglike/internal/infrastructure/datasource"
)

func validConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

func TestApplyDefaults(t *testing.T) {
	cfg := validConfig()

	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, datasource.KindHTTP, cfg.Dataset.Source)
	assert.Equal(t, datasource.DefaultURL, cfg.Dataset.URL)
	assert.Equal(t, DefaultDatasetTimeout, cfg.Dataset.Timeout)
	assert.Equal(t, DefaultWorkers, cfg.Screening.Workers)
	assert.Equal(t, screening.DefaultImageTemplate, cfg.Screening.ImageTemplate)
	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
	assert.NoError(t, cfg.Validate())

	ApplyDefaults(nil)
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.Server.Port = 9000
	cfg.Dataset.Source = datasource.KindFile
	cfg.Dataset.Path = "drugs.txt"
	ApplyDefaults(cfg)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Empty(t, cfg.Dataset.URL)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errSub string
	}{
		{"port", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"grpc clash", func(c *Config) { c.Server.GRPCPort = c.Server.Port }, "grpc_port"},
		{"mode", func(c *Config) { c.Server.Mode = "prod" }, "server.mode"},
		{"source", func(c *Config) { c.Dataset.Source = "ftp" }, "dataset.source"},
		{"file path", func(c *Config) { c.Dataset.Source = datasource.KindFile }, "dataset.path"},
		{"minio key", func(c *Config) { c.Dataset.Source = datasource.KindMinIO }, "dataset.object_key"},
		{"timeout", func(c *Config) { c.Dataset.Timeout = -1 }, "dataset.timeout"},
		{"redis db", func(c *Config) { c.Redis.Enabled = true; c.Redis.DB = -1 }, "redis.db"},
		{"workers", func(c *Config) { c.Screening.Workers = 0 }, "screening.workers"},
		{"template", func(c *Config) { c.Screening.ImageTemplate = "https://x/" }, "image_template"},
		{"cutoff key", func(c *Config) { c.Screening.RuleOfFive = map[string]float64{"tpsa": 140} }, "unknown descriptor"},
		{"cutoff range", func(c *Config) { c.Screening.RuleOfThree = map[string]float64{"mw": 5000} }, "cutoff"},
		{"log level", func(c *Config) { c.Log.Level = "trace" }, "log.level"},
		{"log format", func(c *Config) { c.Log.Format = "text" }, "log.format"},
		{"metrics namespace", func(c *Config) { c.Metrics.Enabled = true; c.Metrics.Namespace = "" }, "metrics.namespace"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSub)
		})
	}
}

func TestRules_DefaultsAndOverrides(t *testing.T) {
	cfg := validConfig()
	rules, err := cfg.Rules()
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, screening.RuleFive, rules[0].Name)
	assert.Equal(t, 500.0, rules[0].Defaults[molecule.KindMolWt])

	cfg.Screening.RuleOfFive = map[string]float64{"mw": 450, "LOGP": 4}
	rules, err = cfg.Rules()
	require.NoError(t, err)
	assert.Equal(t, 450.0, rules[0].Defaults[molecule.KindMolWt])
	assert.Equal(t, 4.0, rules[0].Defaults[molecule.KindLogP])
	assert.Equal(t, 5.0, rules[0].Defaults[molecule.KindHBondDonors])
	assert.Equal(t, 300.0, rules[1].Defaults[molecule.KindMolWt])
}

func TestServerAddrs(t *testing.T) {
	s := ServerConfig{Host: "127.0.0.1", Port: 8080, GRPCPort: 9090}
	assert.Equal(t, "127.0.0.1:8080", s.Addr())
	assert.Equal(t, "127.0.0.1:9090", s.GRPCAddr())
}
