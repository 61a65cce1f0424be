package metrics

import (
	"sync"
	"time"
)

type providerStats struct {
	calls           int
	errors          int
	rateLimitHits   int
	lastRetryAfter  time.Duration
	lastCallLatency time.Duration
}

type queryStats struct {
	fetches   int
	failures  int
	cacheHits int
	misses    int
}

// Recorder captures lightweight, in-memory metrics about backend calls, fallbacks and
// cache activity, and forwards them to OpenTelemetry instruments when configured.
// A nil Recorder is valid and records nothing.
type Recorder struct {
	mu        sync.Mutex
	stats     map[string]*providerStats
	fallbacks map[string]int
	queries   map[string]*queryStats
	otel      *otelInstruments
}

func NewRecorder() *Recorder {
	return newRecorder(nil)
}

func newRecorder(otel *otelInstruments) *Recorder {
	return &Recorder{
		stats:     make(map[string]*providerStats),
		fallbacks: make(map[string]int),
		queries:   make(map[string]*queryStats),
		otel:      otel,
	}
}

// RecordProviderAttempt increments counters for a backend call and stores the last observed latency.
func (r *Recorder) RecordProviderAttempt(endpoint string, duration time.Duration, err error) {
	if r == nil {
		return
	}

	r.mu.Lock()
	stats := r.ensureStats(endpoint)
	stats.calls++
	stats.lastCallLatency = duration
	if err != nil {
		stats.errors++
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordProviderAttempt(endpoint, duration, err)
	}
}

// RecordRateLimit tracks that a backend response hit a rate limit and stores the last Retry-After.
func (r *Recorder) RecordRateLimit(endpoint string, retryAfter time.Duration) {
	if r == nil {
		return
	}

	r.mu.Lock()
	stats := r.ensureStats(endpoint)
	stats.rateLimitHits++
	if retryAfter > 0 {
		stats.lastRetryAfter = retryAfter
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordRateLimit(endpoint, retryAfter)
	}
}

// RecordFallback counts a failed step in a fallback chain.
func (r *Recorder) RecordFallback(resource, step string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.fallbacks[resource]++
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordFallback(resource, step)
	}
}

// RecordQueryFetch tracks one settled cache fetch (after retries) for a query kind.
func (r *Recorder) RecordQueryFetch(kind string, duration time.Duration, err error) {
	if r == nil {
		return
	}
	r.mu.Lock()
	stats := r.ensureQuery(kind)
	stats.fetches++
	if err != nil {
		stats.failures++
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordQueryFetch(kind, duration, err)
	}
}

// RecordCacheRead tracks whether a read was served from fresh cache.
func (r *Recorder) RecordCacheRead(kind string, hit bool) {
	if r == nil {
		return
	}
	r.mu.Lock()
	stats := r.ensureQuery(kind)
	if hit {
		stats.cacheHits++
	} else {
		stats.misses++
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordCacheRead(kind, hit)
	}
}

// ProviderCalls returns the total attempts recorded for an endpoint.
func (r *Recorder) ProviderCalls(endpoint string) int {
	return r.Snapshot(endpoint).Calls
}

// ProviderErrors returns the total failed attempts recorded for an endpoint.
func (r *Recorder) ProviderErrors(endpoint string) int {
	return r.Snapshot(endpoint).Errors
}

// RateLimitHits returns the number of rate limit responses seen for an endpoint.
func (r *Recorder) RateLimitHits(endpoint string) int {
	return r.Snapshot(endpoint).RateLimitHits
}

// LastRetryAfter returns the most recent Retry-After recorded for an endpoint.
func (r *Recorder) LastRetryAfter(endpoint string) time.Duration {
	return r.Snapshot(endpoint).LastRetryAfter
}

// LastCallLatency returns the last recorded latency for an endpoint call.
func (r *Recorder) LastCallLatency(endpoint string) time.Duration {
	return r.Snapshot(endpoint).LastCallLatency
}

// Fallbacks returns how many fallback steps failed for a resource.
func (r *Recorder) Fallbacks(resource string) int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fallbacks[resource]
}

// Snapshot returns a copy of the current stats for an endpoint.
type Snapshot struct {
	Calls           int
	Errors          int
	RateLimitHits   int
	LastRetryAfter  time.Duration
	LastCallLatency time.Duration
}

func (r *Recorder) Snapshot(endpoint string) Snapshot {
	if r == nil {
		return Snapshot{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	stats, ok := r.stats[endpoint]
	if !ok || stats == nil {
		return Snapshot{}
	}
	return Snapshot{
		Calls:           stats.calls,
		Errors:          stats.errors,
		RateLimitHits:   stats.rateLimitHits,
		LastRetryAfter:  stats.lastRetryAfter,
		LastCallLatency: stats.lastCallLatency,
	}
}

// QuerySnapshot is a copy of cache stats for a query kind.
type QuerySnapshot struct {
	Fetches   int
	Failures  int
	CacheHits int
	Misses    int
}

func (r *Recorder) QuerySnapshot(kind string) QuerySnapshot {
	if r == nil {
		return QuerySnapshot{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	stats, ok := r.queries[kind]
	if !ok || stats == nil {
		return QuerySnapshot{}
	}
	return QuerySnapshot{
		Fetches:   stats.fetches,
		Failures:  stats.failures,
		CacheHits: stats.cacheHits,
		Misses:    stats.misses,
	}
}

// RecordHTTPRequest tracks basic HTTP metrics.
func (r *Recorder) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if r == nil || r.otel == nil {
		return
	}
	r.otel.recordHTTPRequest(method, path, status, duration)
}

// RecordPollerCycle tracks poller cycles and errors.
func (r *Recorder) RecordPollerCycle(duration time.Duration, err error) {
	if r == nil || r.otel == nil {
		return
	}
	r.otel.recordPoller(duration, err)
}

// ensureStats and ensureQuery expect r.mu to be held.
func (r *Recorder) ensureStats(endpoint string) *providerStats {
	stats, ok := r.stats[endpoint]
	if !ok {
		stats = &providerStats{}
		r.stats[endpoint] = stats
	}
	return stats
}

func (r *Recorder) ensureQuery(kind string) *queryStats {
	stats, ok := r.queries[kind]
	if !ok {
		stats = &queryStats{}
		r.queries[kind] = stats
	}
	return stats
}
