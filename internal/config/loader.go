package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

const envPrefix = "DRUGLIKE"

// newViper returns a YAML reader seeded with defaultValues.  Nested keys map
// to upper-case variables joined by underscores: dataset.source is read from
// DRUGLIKE_DATASET_SOURCE.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for k, val := range defaultValues() {
		v.SetDefault(k, val)
	}
	return v
}

func readFile(path string) (*viper.Viper, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}
	return v, nil
}

// Load returns the settings in configPath with environment overrides on
// top.  With no path, only the environment and defaults are consulted.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		return LoadFromEnv()
	}
	v, err := readFile(configPath)
	if err != nil {
		return nil, err
	}
	return decode(v)
}

// LoadFromEnv is Load without a file, e.g. DRUGLIKE_REDIS_ADDR=cache:6379.
func LoadFromEnv() (*Config, error) {
	return decode(newViper())
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	ApplyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}
	return &cfg, nil
}

// Watch calls onChange with a freshly decoded Config each time configPath is
// written.  An edit that does not decode or validate goes to onError and the
// previous settings stay in force.
func Watch(configPath string, onChange func(*Config), onError func(error)) error {
	v, err := readFile(configPath)
	if err != nil {
		return err
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := decode(v)
		switch {
		case err == nil:
			onChange(cfg)
		case onError != nil:
			onError(err)
		}
	})
	v.WatchConfig()
	return nil
}

// MustLoad panics when Load fails.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(err)
	}
	return cfg
}
