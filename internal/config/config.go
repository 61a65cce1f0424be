package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/cockroachdb/errors"
)

// Config holds runtime configuration for the server.
type Config struct {
	Port    string    `env:"PORT" envDefault:"4000"`
	Log     LogConfig `envPrefix:"LOG_"`
	Backend BackendConfig
	Query   QueryConfig
	Metrics MetricsConfig
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"text"`
}

// Load reads configuration from environment variables with sensible defaults.
// Non-positive intervals fall back to their defaults; unparseable values are an error.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "parse environment")
	}
	cfg.Backend = cfg.Backend.normalize()
	cfg.Query = cfg.Query.normalize()
	return cfg, nil
}

func positiveOr(value, fallback time.Duration) time.Duration {
	if value <= 0 {
		return fallback
	}
	return value
}
