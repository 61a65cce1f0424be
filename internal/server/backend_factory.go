package server

import (
	"context"
	"log/slog"

	"github.com/preston-bernstein/cricket-data-service/internal/config"
	"github.com/preston-bernstein/cricket-data-service/internal/logging"
	"github.com/preston-bernstein/cricket-data-service/internal/metrics"
	"github.com/preston-bernstein/cricket-data-service/internal/providers"
	"github.com/preston-bernstein/cricket-data-service/internal/providers/backend"
	"github.com/preston-bernstein/cricket-data-service/internal/providers/fixture"
)

// backendFactory assembles the backend client and the resolver that falls back from it.
type backendFactory struct {
	logger  *slog.Logger
	metrics *metrics.Recorder
}

func newBackendFactory(logger *slog.Logger, metrics *metrics.Recorder) backendFactory {
	return backendFactory{logger: logger, metrics: metrics}
}

func (f backendFactory) client(cfg config.BackendConfig) *backend.Client {
	if cfg.BaseURL == "" {
		logging.Warn(f.logger, "API_BASE_URL not set; backend requests will fail and fall back to fixture data")
	}
	return backend.NewClient(backend.Config{
		BaseURL:   cfg.BaseURL,
		Timeout:   cfg.Timeout,
		RateLimit: cfg.RateLimit,
		RateBurst: cfg.RateBurst,
		Metrics:   f.metrics,
	})
}

func (f backendFactory) resolver(cfg config.BackendConfig, b providers.Backend) *providers.Resolver {
	return providers.NewResolver(b, fixture.New(fixture.WithDelay(cfg.MockDelay)), f.logger, f.metrics)
}

type healthChecker interface {
	Health(ctx context.Context) bool
}

// backendCheck asks b when it can report its own health, otherwise the client.
func backendCheck(b providers.Backend, client *backend.Client) func(context.Context) bool {
	if hc, ok := b.(healthChecker); ok {
		return hc.Health
	}
	return client.Health
}
