package testutil

import (
	"log/slog"
	"testing"
	"time"

	"github.com/preston-bernstein/cricket-data-service/internal/app/matches"
	"github.com/preston-bernstein/cricket-data-service/internal/app/news"
	"github.com/preston-bernstein/cricket-data-service/internal/app/waitlist"
	"github.com/preston-bernstein/cricket-data-service/internal/metrics"
	"github.com/preston-bernstein/cricket-data-service/internal/providers"
	"github.com/preston-bernstein/cricket-data-service/internal/providers/fixture"
	"github.com/preston-bernstein/cricket-data-service/internal/query"
)

// Services bundles the application services over a shared cache.
type Services struct {
	Cache    *query.Cache
	Metrics  *metrics.Recorder
	Resolver *providers.Resolver
	Matches  *matches.Service
	News     *news.Service
	Waitlist *waitlist.Service
}

// NewServices wires b through a resolver with fixture fallbacks into fresh services.
// Retries are single and fast; the cache closes when the test ends.
func NewServices(t *testing.T, b *StubBackend, logger *slog.Logger) Services {
	t.Helper()
	rec := metrics.NewRecorder()
	cache := query.New(query.Config{
		Logger:          logger,
		Metrics:         rec,
		Retry:           &query.RetryPolicy{MaxRetries: 1, InitialInterval: time.Millisecond, MaxInterval: time.Millisecond},
		JanitorInterval: -1,
	})
	t.Cleanup(cache.Close)

	resolver := providers.NewResolver(b, fixture.New(), logger, rec)
	intervals := matches.Intervals{Live: 10 * time.Millisecond, Detail: 10 * time.Millisecond, Scorecard: 10 * time.Millisecond}
	return Services{
		Cache:    cache,
		Metrics:  rec,
		Resolver: resolver,
		Matches:  matches.NewService(resolver, cache, intervals, logger),
		News:     news.NewService(resolver, cache),
		Waitlist: waitlist.NewService(b, logger),
	}
}
