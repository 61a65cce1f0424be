package config

import (
	"strings"
	"time"
)

const (
	defaultBackendTimeout = 10 * time.Second
	defaultRateLimit      = 5.0
	defaultRateBurst      = 10
)

// BackendConfig controls how we talk to the cricket backend API.
// An empty BaseURL means same-origin: every request fails as a network error
// and the resolvers serve fixture data.
type BackendConfig struct {
	BaseURL   string        `env:"API_BASE_URL"`
	Timeout   time.Duration `env:"API_TIMEOUT" envDefault:"10s"`
	RateLimit float64       `env:"API_RATE_LIMIT" envDefault:"5"`
	RateBurst int           `env:"API_RATE_BURST" envDefault:"10"`
	MockDelay time.Duration `env:"MOCK_DELAY" envDefault:"0s"`
}

func (c BackendConfig) normalize() BackendConfig {
	c.BaseURL = strings.TrimSuffix(strings.TrimSpace(c.BaseURL), "/")
	c.Timeout = positiveOr(c.Timeout, defaultBackendTimeout)
	if c.RateLimit <= 0 {
		c.RateLimit = defaultRateLimit
	}
	if c.RateBurst <= 0 {
		c.RateBurst = defaultRateBurst
	}
	if c.MockDelay < 0 {
		c.MockDelay = 0
	}
	return c
}
