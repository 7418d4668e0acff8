// Package config loads the indicator engine configuration from an optional
// YAML file and COVIND_* environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/snow-ghost/covindicator/pkg/cache"
	"github.com/snow-ghost/covindicator/pkg/logging"
	"github.com/snow-ghost/covindicator/pkg/tracing"
)

const envPrefix = "COVIND"

// Config holds every setting of the engine.
type Config struct {
	Log       logging.Config  `mapstructure:"log"`
	Cache     cache.Config    `mapstructure:"cache"`
	Tracing   tracing.Config  `mapstructure:"tracing"`
	Valuation ValuationConfig `mapstructure:"valuation"`
}

type ValuationConfig struct {
	// StrictTraces fails a valuation when a covered id lacks its count.
	StrictTraces bool `mapstructure:"strict_traces"`
	Workers      int  `mapstructure:"workers"`
}

// newViper returns a viper instance with YAML type, the COVIND_ env prefix and
// a "." → "_" key replacer, so "cache.size" resolves to COVIND_CACHE_SIZE.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	log := logging.DefaultConfig()
	v.SetDefault("log.level", log.Level)
	v.SetDefault("log.format", log.Format)
	v.SetDefault("log.output", log.Output)
	v.SetDefault("log.add_caller", log.AddCaller)
	v.SetDefault("log.add_stack", log.AddStack)

	c := cache.DefaultConfig()
	v.SetDefault("cache.enabled", c.Enabled)
	v.SetDefault("cache.size", c.MaxSize)

	v.SetDefault("tracing.service_name", "covindicator")
	v.SetDefault("tracing.service_version", "dev")
	v.SetDefault("tracing.jaeger_endpoint", "")
	v.SetDefault("tracing.environment", "local")

	v.SetDefault("valuation.strict_traces", true)
	v.SetDefault("valuation.workers", 4)
}

// Load reads the YAML file at path, if any, and merges environment overrides
// and defaults. An empty path loads from the environment only.
func Load(path string) (*Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: failed to read config file %q: %w", path, err)
		}
	}
	return unmarshalAndValidate(v)
}

// LoadBytes parses YAML content; used by tests and embedded defaults.
func LoadBytes(data []byte) (*Config, error) {
	v := newViper()
	if err := v.ReadConfig(strings.NewReader(string(data))); err != nil {
		return nil, fmt.Errorf("config: failed to parse config: %w", err)
	}
	return unmarshalAndValidate(v)
}

func unmarshalAndValidate(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("log.format %q is not json or console", c.Log.Format)
	}
	if c.Cache.Enabled && c.Cache.MaxSize <= 0 {
		return fmt.Errorf("cache.size must be positive when the cache is enabled")
	}
	if c.Valuation.Workers < 1 {
		return fmt.Errorf("valuation.workers must be at least 1")
	}
	return nil
}
