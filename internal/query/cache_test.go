package query

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/preston-bernstein/cricket-data-service/internal/metrics"
)

var fastRetry = &RetryPolicy{MaxRetries: 2, InitialInterval: time.Millisecond, MaxInterval: 2 * time.Millisecond}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func newTestCache(t *testing.T, clock *fakeClock) *Cache {
	t.Helper()
	cfg := Config{Retry: fastRetry, JanitorInterval: -1}
	if clock != nil {
		cfg.Now = clock.Now
	}
	c := New(cfg)
	t.Cleanup(c.Close)
	return c
}

type liveValue struct {
	live bool
}

func (v liveValue) IsLive() bool { return v.live }

func counter(value any) (FetchFunc, *atomic.Int32) {
	var calls atomic.Int32
	return func(context.Context) (any, error) {
		calls.Add(1)
		return value, nil
	}, &calls
}

func TestFetchLoadsAndCaches(t *testing.T) {
	clock := newFakeClock()
	c := newTestCache(t, clock)
	fn, calls := counter("matches")
	key := Key{Kind: "matches"}
	opts := Options{StaleTime: 5 * time.Second}

	st, err := c.Fetch(context.Background(), key, opts, fn)
	require.NoError(t, err)
	assert.Equal(t, "matches", st.Data)
	assert.False(t, st.IsLoading)
	assert.False(t, st.IsFetching)
	assert.Equal(t, clock.Now(), st.UpdatedAt)

	clock.Advance(4 * time.Second)
	st, err = c.Fetch(context.Background(), key, opts, fn)
	require.NoError(t, err)
	assert.Equal(t, "matches", st.Data)
	assert.EqualValues(t, 1, calls.Load(), "fresh read must not issue a request")
}

func TestFetchServesStaleWhileRevalidating(t *testing.T) {
	clock := newFakeClock()
	c := newTestCache(t, clock)
	key := Key{Kind: "news"}
	opts := Options{StaleTime: time.Second}

	var version atomic.Int32
	release := make(chan struct{})
	fn := func(context.Context) (any, error) {
		n := version.Add(1)
		if n > 1 {
			<-release
		}
		return n, nil
	}

	st, err := c.Fetch(context.Background(), key, opts, fn)
	require.NoError(t, err)
	assert.EqualValues(t, 1, st.Data)

	clock.Advance(2 * time.Second)
	st, err = c.Fetch(context.Background(), key, opts, fn)
	require.NoError(t, err)
	assert.EqualValues(t, 1, st.Data, "stale data is served immediately")
	assert.True(t, st.IsFetching)
	assert.False(t, st.IsLoading)

	close(release)
	require.Eventually(t, func() bool {
		st, _ := c.State(key)
		return st.Data == int32(2) && !st.IsFetching
	}, time.Second, 5*time.Millisecond)
}

func TestFetchDeduplicatesConcurrentRequests(t *testing.T) {
	c := newTestCache(t, nil)
	key := Key{Kind: "matches", ID: "live"}

	var calls atomic.Int32
	release := make(chan struct{})
	fn := func(context.Context) (any, error) {
		calls.Add(1)
		<-release
		return "ok", nil
	}

	var wg sync.WaitGroup
	results := make([]State, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			st, err := c.Fetch(context.Background(), key, Options{}, fn)
			assert.NoError(t, err)
			results[i] = st
		}(i)
	}

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(10 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.EqualValues(t, 1, calls.Load())
	for _, st := range results {
		assert.Equal(t, "ok", st.Data)
	}
}

func TestRefetchDiscardsSupersededCompletion(t *testing.T) {
	c := newTestCache(t, nil)
	key := Key{Kind: "matches", ID: "detail"}

	first := make(chan struct{})
	var n atomic.Int32
	fn := func(context.Context) (any, error) {
		if n.Add(1) == 1 {
			<-first
			return "first", nil
		}
		return "second", nil
	}

	require.True(t, c.Prefetch(key, Options{}, fn))
	require.Eventually(t, func() bool { return n.Load() == 1 }, time.Second, time.Millisecond)

	st, err := c.Refetch(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, "second", st.Data)

	close(first)
	time.Sleep(20 * time.Millisecond)

	st, ok := c.State(key)
	require.True(t, ok)
	assert.Equal(t, "second", st.Data, "older request must not overwrite newer result")
	assert.False(t, st.IsFetching)
}

func TestFetchRetriesThenFails(t *testing.T) {
	rec := metrics.NewRecorder()
	c := New(Config{Retry: fastRetry, JanitorInterval: -1, Metrics: rec})
	t.Cleanup(c.Close)

	boom := errors.New("boom")
	var calls atomic.Int32
	fn := func(context.Context) (any, error) {
		calls.Add(1)
		return nil, boom
	}

	st, err := c.Fetch(context.Background(), Key{Kind: "scorecard", ID: "1"}, Options{}, fn)
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
	assert.EqualValues(t, 3, calls.Load(), "initial attempt plus two retries")
	assert.Equal(t, 3, st.FailureCount)
	assert.False(t, st.HasData())
	assert.False(t, st.ErrorUpdatedAt.IsZero())

	snap := rec.QuerySnapshot("scorecard")
	assert.Equal(t, 1, snap.Fetches)
	assert.Equal(t, 1, snap.Failures)
	assert.Equal(t, 1, snap.Misses)
}

func TestFetchRetrySucceedsAfterFailure(t *testing.T) {
	c := newTestCache(t, nil)
	var calls atomic.Int32
	fn := func(context.Context) (any, error) {
		if calls.Add(1) == 1 {
			return nil, errors.New("transient")
		}
		return "ok", nil
	}

	st, err := c.Fetch(context.Background(), Key{Kind: "commentary"}, Options{}, fn)
	require.NoError(t, err)
	assert.Equal(t, "ok", st.Data)
	assert.Equal(t, 1, st.FailureCount)
	assert.NoError(t, st.Err)
}

func TestNoRetryPolicy(t *testing.T) {
	c := newTestCache(t, nil)
	var calls atomic.Int32
	fn := func(context.Context) (any, error) {
		calls.Add(1)
		return nil, errors.New("down")
	}

	_, err := c.Fetch(context.Background(), Key{Kind: "x"}, Options{Retry: NoRetry()}, fn)
	require.Error(t, err)
	assert.EqualValues(t, 1, calls.Load())
}

func TestFailedRefreshKeepsData(t *testing.T) {
	clock := newFakeClock()
	c := newTestCache(t, clock)
	key := Key{Kind: "matches"}
	opts := Options{StaleTime: time.Second, Retry: NoRetry()}

	var fail atomic.Bool
	fn := func(context.Context) (any, error) {
		if fail.Load() {
			return nil, errors.New("down")
		}
		return "cached", nil
	}

	_, err := c.Fetch(context.Background(), key, opts, fn)
	require.NoError(t, err)

	fail.Store(true)
	clock.Advance(2 * time.Second)
	st, err := c.Refetch(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, "cached", st.Data)
	assert.Error(t, st.Err)
}

func TestFetchHonoursContext(t *testing.T) {
	c := newTestCache(t, nil)
	release := make(chan struct{})
	defer close(release)
	fn := func(context.Context) (any, error) {
		<-release
		return "late", nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	st, err := c.Fetch(ctx, Key{Kind: "slow"}, Options{}, fn)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, st.IsLoading)
}

func TestRefetchUnknownKey(t *testing.T) {
	c := newTestCache(t, nil)
	_, err := c.Refetch(context.Background(), Key{Kind: "missing"})
	assert.True(t, errors.Is(err, ErrUnknownKey))
}

func TestPrefetchSkipsFreshData(t *testing.T) {
	clock := newFakeClock()
	c := newTestCache(t, clock)
	fn, calls := counter("detail")
	key := Key{Kind: "matches.detail", ID: "66709"}
	opts := Options{StaleTime: 10 * time.Second}

	_, err := c.Fetch(context.Background(), key, opts, fn)
	require.NoError(t, err)
	assert.False(t, c.Prefetch(key, opts, fn))

	clock.Advance(11 * time.Second)
	assert.True(t, c.Prefetch(key, opts, fn))
	require.Eventually(t, func() bool { return calls.Load() == 2 }, time.Second, time.Millisecond)
}

func TestNoPollingWithoutSubscribers(t *testing.T) {
	c := newTestCache(t, nil)
	fn, calls := counter("live")
	opts := Options{RefetchInterval: Every(5 * time.Millisecond)}

	_, err := c.Fetch(context.Background(), Key{Kind: "matches.live"}, opts, fn)
	require.NoError(t, err)
	time.Sleep(40 * time.Millisecond)
	assert.EqualValues(t, 1, calls.Load())
}

func TestSubscriptionPollsUntilClosed(t *testing.T) {
	c := newTestCache(t, nil)
	fn, calls := counter("live")
	key := Key{Kind: "matches.live"}

	sub, err := c.Subscribe(key, Options{RefetchInterval: Every(5 * time.Millisecond)}, fn)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, time.Millisecond)

	status, ok := sub.PollStatus()
	require.True(t, ok)
	assert.False(t, status.LastAttempt.IsZero())

	sub.Close()
	time.Sleep(10 * time.Millisecond)
	after := calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, calls.Load(), "closing the last subscriber stops polling")

	_, ok = sub.PollStatus()
	assert.False(t, ok)
	_, open := <-sub.Updates()
	for open {
		_, open = <-sub.Updates()
	}
}

func TestPollingStopsWhenMatchFinishes(t *testing.T) {
	c := newTestCache(t, nil)
	var calls atomic.Int32
	fn := func(context.Context) (any, error) {
		n := calls.Add(1)
		return liveValue{live: n < 3}, nil
	}

	sub, err := c.Subscribe(Key{Kind: "matches.detail", ID: "1"}, Options{RefetchInterval: WhileLive(5 * time.Millisecond)}, fn)
	require.NoError(t, err)
	defer sub.Close()

	require.Eventually(t, func() bool { return calls.Load() == 3 }, time.Second, time.Millisecond)
	time.Sleep(40 * time.Millisecond)
	assert.EqualValues(t, 3, calls.Load())
	assert.Equal(t, liveValue{live: false}, sub.State().Data)
}

func TestPrefetchKeepsSubscriberPolling(t *testing.T) {
	c := newTestCache(t, nil)
	fn, calls := counter("detail")
	key := Key{Kind: "matches.detail", ID: "9"}

	sub, err := c.Subscribe(key, Options{RefetchInterval: Every(5 * time.Millisecond)}, fn)
	require.NoError(t, err)
	defer sub.Close()
	require.Eventually(t, func() bool { return calls.Load() >= 1 }, time.Second, time.Millisecond)

	c.Prefetch(key, Options{StaleTime: time.Hour}, fn)
	before := calls.Load()
	require.Eventually(t, func() bool { return calls.Load() >= before+2 }, time.Second, time.Millisecond)
}

func TestSubscriptionDeliversUpdates(t *testing.T) {
	c := newTestCache(t, nil)
	fn, _ := counter("payload")

	sub, err := c.Subscribe(Key{Kind: "news"}, Options{}, fn)
	require.NoError(t, err)
	defer sub.Close()

	deadline := time.After(time.Second)
	for {
		select {
		case st := <-sub.Updates():
			if st.HasData() {
				assert.Equal(t, "payload", st.Data)
				return
			}
		case <-deadline:
			t.Fatal("no update with data")
		}
	}
}

func TestClearDropsEntriesAndDiscardsInflight(t *testing.T) {
	c := newTestCache(t, nil)
	release := make(chan struct{})
	fn := func(context.Context) (any, error) {
		<-release
		return "late", nil
	}
	key := Key{Kind: "matches"}
	require.True(t, c.Prefetch(key, Options{}, fn))

	c.Clear()
	close(release)
	time.Sleep(10 * time.Millisecond)

	_, ok := c.State(key)
	assert.False(t, ok)
	assert.Empty(t, c.Keys())
}

func TestPruneRemovesUnusedEntries(t *testing.T) {
	clock := newFakeClock()
	c := New(Config{GCTime: time.Minute, JanitorInterval: -1, Now: clock.Now})
	t.Cleanup(c.Close)

	fn, _ := counter("x")
	_, err := c.Fetch(context.Background(), Key{Kind: "old"}, Options{}, fn)
	require.NoError(t, err)
	sub, err := c.Subscribe(Key{Kind: "watched"}, Options{}, fn)
	require.NoError(t, err)
	defer sub.Close()
	require.Eventually(t, func() bool { return sub.State().HasData() }, time.Second, time.Millisecond)

	clock.Advance(2 * time.Minute)
	assert.Equal(t, 1, c.Prune())
	_, ok := c.State(Key{Kind: "old"})
	assert.False(t, ok)
	_, ok = c.State(Key{Kind: "watched"})
	assert.True(t, ok)
}

func TestClosedCacheRejectsCalls(t *testing.T) {
	c := New(Config{JanitorInterval: -1})
	c.Close()
	c.Close()

	fn, _ := counter("x")
	_, err := c.Fetch(context.Background(), Key{Kind: "k"}, Options{}, fn)
	assert.True(t, errors.Is(err, ErrClosed))
	_, err = c.Subscribe(Key{Kind: "k"}, Options{}, fn)
	assert.True(t, errors.Is(err, ErrClosed))
	assert.False(t, c.Prefetch(Key{Kind: "k"}, Options{}, fn))
}

func TestGetTyped(t *testing.T) {
	c := newTestCache(t, nil)
	v, st, err := Get(context.Background(), c, Key{Kind: "n"}, Options{}, func(context.Context) ([]int, error) {
		return []int{1, 2}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, v)
	assert.True(t, st.HasData())
}
