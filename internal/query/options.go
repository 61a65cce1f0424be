package query

import "time"

// IntervalFunc computes the polling interval from the last known data for a key.
// Zero or negative disables polling until the data changes. It is re-evaluated on
// every scheduling decision. data is nil before the first success.
type IntervalFunc func(data any) time.Duration

// Every polls at a fixed cadence regardless of data.
func Every(d time.Duration) IntervalFunc {
	return func(any) time.Duration { return d }
}

// Never disables polling.
func Never() IntervalFunc {
	return func(any) time.Duration { return 0 }
}

// Liveness is implemented by data whose polling depends on whether it is in progress.
type Liveness interface {
	IsLive() bool
}

// WhileLive polls every d while the data reports itself live and stops otherwise.
func WhileLive(d time.Duration) IntervalFunc {
	return func(data any) time.Duration {
		if l, ok := data.(Liveness); ok && l.IsLive() {
			return d
		}
		return 0
	}
}

// Options controls caching behaviour for one key.
type Options struct {
	// StaleTime is how long a successful result is served without a new request.
	StaleTime time.Duration
	// RefetchInterval enables polling while the key has subscribers.
	RefetchInterval IntervalFunc
	// Retry overrides the cache's default retry policy.
	Retry *RetryPolicy
	// GCTime is how long an unused entry survives. Zero uses the cache default.
	GCTime time.Duration
}

func (o Options) interval(data any) time.Duration {
	if o.RefetchInterval == nil {
		return 0
	}
	return o.RefetchInterval(data)
}
