package query

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/preston-bernstein/cricket-data-service/internal/logging"
	"github.com/preston-bernstein/cricket-data-service/internal/metrics"
	"github.com/preston-bernstein/cricket-data-service/internal/poller"
)

const (
	defaultGCTime          = 5 * time.Minute
	defaultJanitorInterval = time.Minute
)

// FetchFunc loads the data for one key.
type FetchFunc func(ctx context.Context) (any, error)

// Config configures a Cache.
type Config struct {
	Logger  *slog.Logger
	Metrics *metrics.Recorder
	// Retry is the default policy for keys that do not set their own.
	Retry *RetryPolicy
	// GCTime is the default time an unused entry is kept.
	GCTime time.Duration
	// JanitorInterval is how often unused entries are pruned. Negative disables the janitor.
	JanitorInterval time.Duration
	// Now overrides the clock used for staleness and GC.
	Now func() time.Time
}

// Cache holds the latest result per key, deduplicates concurrent requests, discards
// out-of-order completions, and polls keys that have subscribers.
type Cache struct {
	logger  *slog.Logger
	metrics *metrics.Recorder
	retry   RetryPolicy
	gcTime  time.Duration
	now     func() time.Time

	ctx     context.Context
	cancel  context.CancelFunc
	janitor *poller.Poller

	mu      sync.Mutex
	entries map[Key]*entry
	closed  bool
}

type entry struct {
	key         Key
	fetch       FetchFunc
	opts        Options
	state       State
	settled     bool
	seq         uint64
	inflight    *call
	subscribers map[*Subscription]struct{}
	poller      *poller.Poller
	lastUsed    time.Time
}

// call is one issued request. done closes once the request settles, whether or not
// its result was applied.
type call struct {
	seq  uint64
	done chan struct{}
}

// New constructs a Cache and starts its janitor.
func New(cfg Config) *Cache {
	retry := DefaultRetryPolicy()
	if cfg.Retry != nil {
		retry = *cfg.Retry
	}
	gcTime := cfg.GCTime
	if gcTime <= 0 {
		gcTime = defaultGCTime
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Cache{
		logger:  cfg.Logger,
		metrics: cfg.Metrics,
		retry:   retry,
		gcTime:  gcTime,
		now:     now,
		ctx:     ctx,
		cancel:  cancel,
		entries: make(map[Key]*entry),
	}

	interval := cfg.JanitorInterval
	if interval == 0 {
		interval = defaultJanitorInterval
	}
	if interval > 0 {
		c.janitor = poller.New(func(context.Context) error {
			if n := c.Prune(); n > 0 {
				logging.Debug(c.logger, "pruned unused queries", slog.Int(logging.FieldCount, n))
			}
			return nil
		}, poller.Fixed(interval), cfg.Logger, nil, poller.WithName("query.janitor"))
		c.janitor.Start(ctx)
	}
	return c
}

// Fetch returns the state for key, loading it with fn when needed.
//
// Fresh data is returned without a request. Stale data is returned immediately while a
// background refresh runs. Without data the call waits for the pending request. The
// returned error is ctx's error if the wait was abandoned, or the fetch error when no
// data is available.
func (c *Cache) Fetch(ctx context.Context, key Key, opts Options, fn FetchFunc) (State, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return State{}, ErrClosed
	}
	e := c.ensureLocked(key, opts, fn)
	now := c.now()
	e.lastUsed = now

	if e.state.HasData() {
		fresh := c.isFreshLocked(e, opts.StaleTime, now)
		c.metrics.RecordCacheRead(key.Kind, fresh)
		if !fresh {
			c.startLocked(e, false)
		}
		st := e.state
		c.mu.Unlock()
		return st, nil
	}

	c.metrics.RecordCacheRead(key.Kind, false)
	cl := c.startLocked(e, false)
	c.mu.Unlock()

	return c.await(ctx, e, cl)
}

// Refetch issues a new request for a key that has been fetched before, ignoring
// staleness. Any request already in flight is superseded and its result discarded.
func (c *Cache) Refetch(ctx context.Context, key Key) (State, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return State{}, ErrClosed
	}
	e, ok := c.entries[key]
	if !ok {
		c.mu.Unlock()
		return State{}, ErrUnknownKey
	}
	e.lastUsed = c.now()
	cl := c.startLocked(e, true)
	c.mu.Unlock()

	return c.await(ctx, e, cl)
}

// Prefetch starts loading key in the background unless fresh data is already cached.
// It reports whether a request was started or joined.
func (c *Cache) Prefetch(key Key, opts Options, fn FetchFunc) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	e := c.ensureLocked(key, opts, fn)
	now := c.now()
	e.lastUsed = now
	if e.state.HasData() && c.isFreshLocked(e, opts.StaleTime, now) {
		return false
	}
	c.startLocked(e, false)
	return true
}

// State returns the current state for key without triggering a request.
func (c *Cache) State(key Key) (State, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return State{}, false
	}
	return e.state, true
}

// Keys returns every key currently held.
func (c *Cache) Keys() []Key {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]Key, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	return keys
}

// Remove drops key, stops its polling and closes its subscriptions.
func (c *Cache) Remove(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		c.dropLocked(e)
	}
}

// Prune drops entries that have no subscribers, no request in flight, and have not
// been used within their GC time. It returns the number of entries removed.
func (c *Cache) Prune() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for _, e := range c.entries {
		if len(e.subscribers) > 0 || e.inflight != nil {
			continue
		}
		gc := e.opts.GCTime
		if gc <= 0 {
			gc = c.gcTime
		}
		if now.Sub(e.lastUsed) >= gc {
			c.dropLocked(e)
			removed++
		}
	}
	return removed
}

// Clear drops every entry. Requests still in flight finish but their results are discarded.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		c.dropLocked(e)
	}
}

// Close clears the cache, cancels in-flight requests and stops the janitor.
func (c *Cache) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	for _, e := range c.entries {
		c.dropLocked(e)
	}
	c.mu.Unlock()

	if c.janitor != nil {
		_ = c.janitor.Stop(context.Background())
	}
	c.cancel()
}

// ensureLocked returns the entry for key, creating it if needed. Options of an entry
// with subscribers are left as the subscribers set them.
func (c *Cache) ensureLocked(key Key, opts Options, fn FetchFunc) *entry {
	e, ok := c.entries[key]
	if !ok {
		e = &entry{key: key, subscribers: make(map[*Subscription]struct{})}
		c.entries[key] = e
	}
	e.fetch = fn
	if len(e.subscribers) == 0 {
		e.opts = opts
	}
	return e
}

func (c *Cache) isFreshLocked(e *entry, staleTime time.Duration, now time.Time) bool {
	return staleTime > 0 && now.Sub(e.state.UpdatedAt) < staleTime
}

// startLocked issues a request for e. Unless force is set an in-flight request is
// joined instead of starting another.
func (c *Cache) startLocked(e *entry, force bool) *call {
	if e.inflight != nil && !force {
		return e.inflight
	}
	e.seq++
	cl := &call{seq: e.seq, done: make(chan struct{})}
	e.inflight = cl
	e.state.IsFetching = true
	e.state.IsLoading = !e.settled
	c.publishLocked(e)

	retry := c.retry
	if e.opts.Retry != nil {
		retry = *e.opts.Retry
	}
	go c.run(e, cl, e.fetch, retry)
	return cl
}

func (c *Cache) run(e *entry, cl *call, fn FetchFunc, retry RetryPolicy) {
	start := time.Now()
	data, failures, err := retry.run(c.ctx, fn, func(err error, wait time.Duration, attempt int) {
		logging.Warn(c.logger, "query fetch failed; retrying",
			slog.String(logging.FieldQueryKey, e.key.String()),
			slog.Int(logging.FieldAttempt, attempt),
			slog.Int64(logging.FieldDurationMS, wait.Milliseconds()),
			slog.Any("err", err),
		)
	})
	c.metrics.RecordQueryFetch(e.key.Kind, time.Since(start), err)

	c.mu.Lock()
	defer c.mu.Unlock()
	defer close(cl.done)

	if c.entries[e.key] != e || e.seq != cl.seq {
		logging.Debug(c.logger, "discarding superseded query result",
			slog.String(logging.FieldQueryKey, e.key.String()),
		)
		return
	}

	now := c.now()
	e.inflight = nil
	e.settled = true
	e.state.IsFetching = false
	e.state.IsLoading = false
	e.state.FailureCount = failures
	if err != nil {
		e.state.Err = err
		e.state.ErrorUpdatedAt = now
		logging.Error(c.logger, "query fetch failed", err,
			slog.String(logging.FieldQueryKey, e.key.String()),
			slog.Int(logging.FieldAttempt, failures),
		)
	} else {
		e.state.Data = data
		e.state.Err = nil
		e.state.UpdatedAt = now
	}
	c.publishLocked(e)
	if e.poller != nil {
		e.poller.Wake()
	}
}

// await blocks until the newest request for e settles. A request superseded while
// waiting hands the wait over to its successor.
func (c *Cache) await(ctx context.Context, e *entry, cl *call) (State, error) {
	for {
		select {
		case <-ctx.Done():
			c.mu.Lock()
			st := e.state
			c.mu.Unlock()
			return st, ctx.Err()
		case <-cl.done:
		}

		c.mu.Lock()
		if c.entries[e.key] != e {
			c.mu.Unlock()
			if c.isClosed() {
				return State{}, ErrClosed
			}
			return State{}, ErrRemoved
		}
		if e.inflight != nil && e.inflight.seq > cl.seq && !e.state.HasData() {
			cl = e.inflight
			c.mu.Unlock()
			continue
		}
		st := e.state
		c.mu.Unlock()

		if !st.HasData() && st.Err != nil {
			return st, st.Err
		}
		return st, nil
	}
}

func (c *Cache) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Cache) dropLocked(e *entry) {
	if e.poller != nil {
		_ = e.poller.Stop(context.Background())
		e.poller = nil
	}
	for sub := range e.subscribers {
		sub.closeLocked()
	}
	e.subscribers = nil
	delete(c.entries, e.key)
}

func (c *Cache) publishLocked(e *entry) {
	for sub := range e.subscribers {
		sub.deliver(e.state)
	}
}
