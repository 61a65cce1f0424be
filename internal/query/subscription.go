package query

import (
	"context"
	"log/slog"
	"time"

	"github.com/preston-bernstein/cricket-data-service/internal/logging"
	"github.com/preston-bernstein/cricket-data-service/internal/poller"
)

// Subscription keeps a key active. While any subscription is open the key is polled
// according to its RefetchInterval.
type Subscription struct {
	cache   *Cache
	key     Key
	updates chan State
	closed  bool
}

// Subscribe registers interest in key, starts loading it if needed and starts polling
// when opts carries a RefetchInterval. The subscription must be closed to stop polling.
func (c *Cache) Subscribe(key Key, opts Options, fn FetchFunc) (*Subscription, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClosed
	}

	e := c.ensureLocked(key, opts, fn)
	now := c.now()
	e.lastUsed = now

	sub := &Subscription{cache: c, key: key, updates: make(chan State, 1)}
	e.subscribers[sub] = struct{}{}
	sub.deliver(e.state)

	if !e.state.HasData() || !c.isFreshLocked(e, e.opts.StaleTime, now) {
		c.startLocked(e, false)
	}
	if e.poller == nil && e.opts.RefetchInterval != nil {
		e.poller = c.newPoller(e)
		e.poller.Start(c.ctx)
	}
	return sub, nil
}

func (c *Cache) newPoller(e *entry) *poller.Poller {
	interval := func() time.Duration {
		c.mu.Lock()
		opts, data := e.opts, e.state.Data
		c.mu.Unlock()
		return opts.interval(data)
	}
	fetch := func(ctx context.Context) error {
		c.mu.Lock()
		if c.entries[e.key] != e {
			c.mu.Unlock()
			return nil
		}
		cl := c.startLocked(e, false)
		c.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-cl.done:
		}
		c.mu.Lock()
		defer c.mu.Unlock()
		return e.state.Err
	}
	logging.Debug(c.logger, "polling query", slog.String(logging.FieldQueryKey, e.key.String()))
	return poller.New(fetch, interval, c.logger, c.metrics, poller.WithName(e.key.String()))
}

// Key returns the subscribed key.
func (s *Subscription) Key() Key {
	return s.key
}

// State returns the current state of the subscribed key.
func (s *Subscription) State() State {
	st, _ := s.cache.State(s.key)
	return st
}

// Updates delivers the latest state after every change. Intermediate states may be
// skipped when the reader is slow. The channel closes when the subscription ends.
func (s *Subscription) Updates() <-chan State {
	return s.updates
}

// PollStatus reports the health of the key's poller, if polling is active.
func (s *Subscription) PollStatus() (poller.Status, bool) {
	s.cache.mu.Lock()
	defer s.cache.mu.Unlock()
	e, ok := s.cache.entries[s.key]
	if !ok || e.poller == nil {
		return poller.Status{}, false
	}
	return e.poller.Status(), true
}

// Close ends the subscription. Polling stops when the last subscription for a key closes.
func (s *Subscription) Close() {
	c := s.cache
	c.mu.Lock()
	defer c.mu.Unlock()
	if s.closed {
		return
	}
	e, ok := c.entries[s.key]
	if ok {
		delete(e.subscribers, s)
		e.lastUsed = c.now()
		if len(e.subscribers) == 0 && e.poller != nil {
			_ = e.poller.Stop(context.Background())
			e.poller = nil
		}
	}
	s.closeLocked()
}

// deliver replaces any undelivered state with st. Called with the cache lock held.
func (s *Subscription) deliver(st State) {
	if s.closed {
		return
	}
	select {
	case <-s.updates:
	default:
	}
	s.updates <- st
}

func (s *Subscription) closeLocked() {
	if s.closed {
		return
	}
	s.closed = true
	close(s.updates)
}
