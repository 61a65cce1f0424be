package providers

import (
	"context"
	"log/slog"

	"github.com/cockroachdb/errors"

	"github.com/preston-bernstein/cricket-data-service/internal/logging"
	"github.com/preston-bernstein/cricket-data-service/internal/metrics"
)

// Step is one source in a fallback chain.
type Step[T any] struct {
	Name  string
	Fetch func(ctx context.Context) (T, error)
}

// Outcome reports which step answered.
type Outcome struct {
	Step      string
	Fallbacks int
}

// Fallback carries the observability hooks used while walking a chain.
type Fallback struct {
	Logger  *slog.Logger
	Metrics *metrics.Recorder
}

// Resolve tries steps in order and returns the first success. Failures are logged and
// counted, then swallowed. Only when every step fails does the caller see an error.
func Resolve[T any](ctx context.Context, fb Fallback, resource string, steps ...Step[T]) (T, Outcome, error) {
	var (
		zero    T
		lastErr error
	)
	for i, step := range steps {
		value, err := step.Fetch(ctx)
		if err == nil {
			return value, Outcome{Step: step.Name, Fallbacks: i}, nil
		}
		lastErr = err
		logWithProvider(ctx, logging.FromContext(ctx, fb.Logger), slog.LevelWarn, step.Name, "fallback step failed",
			slog.String(logging.FieldResource, resource),
			slog.Int(logging.FieldStep, i+1),
			slog.Any("err", err),
		)
		fb.Metrics.RecordFallback(resource, step.Name)
	}
	if lastErr == nil {
		return zero, Outcome{}, errors.Wrapf(ErrExhausted, "%s: no steps", resource)
	}
	return zero, Outcome{}, errors.Mark(errors.Wrapf(lastErr, "%s", resource), ErrExhausted)
}
