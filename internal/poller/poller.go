package poller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/preston-bernstein/cricket-data-service/internal/logging"
	"github.com/preston-bernstein/cricket-data-service/internal/metrics"
)

// readyFailureThreshold is the number of consecutive failures after which the poller reports unready.
const readyFailureThreshold = 3

// FetchFunc performs one poll cycle.
type FetchFunc func(ctx context.Context) error

// IntervalFunc returns how long to wait before the next cycle. It is called before
// every wait, so the cadence can follow the latest data. A non-positive result parks
// the loop until Wake is called.
type IntervalFunc func() time.Duration

// Fixed returns an IntervalFunc that always yields d.
func Fixed(d time.Duration) IntervalFunc {
	return func() time.Duration { return d }
}

// Option configures a Poller.
type Option func(*Poller)

// WithImmediateFetch runs one cycle as soon as the poller starts.
func WithImmediateFetch() Option {
	return func(p *Poller) { p.immediate = true }
}

// WithName labels log lines from this poller.
func WithName(name string) Option {
	return func(p *Poller) { p.name = name }
}

// Poller runs a fetch function on a dynamic interval until stopped.
type Poller struct {
	fetch     FetchFunc
	interval  IntervalFunc
	logger    *slog.Logger
	metrics   *metrics.Recorder
	name      string
	immediate bool

	wake     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	startMu  sync.Mutex
	started  bool

	statusMu sync.RWMutex
	status   Status
}

// Status describes the recent health of the poller loop.
type Status struct {
	ConsecutiveFailures int
	LastError           string
	LastAttempt         time.Time
	LastSuccess         time.Time
}

// IsReady reports whether the poller has had a recent success and is not failing repeatedly.
func (s Status) IsReady() bool {
	if s.LastSuccess.IsZero() {
		return false
	}
	return s.ConsecutiveFailures < readyFailureThreshold
}

// New constructs a Poller. A nil interval parks the loop until Wake.
func New(fetch FetchFunc, interval IntervalFunc, logger *slog.Logger, recorder *metrics.Recorder, opts ...Option) *Poller {
	if interval == nil {
		interval = Fixed(0)
	}
	p := &Poller{
		fetch:    fetch,
		interval: interval,
		logger:   logger,
		metrics:  recorder,
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start begins polling until the context is cancelled or Stop is called.
func (p *Poller) Start(ctx context.Context) {
	p.startMu.Lock()
	if p.started {
		p.startMu.Unlock()
		return
	}
	p.started = true
	p.startMu.Unlock()

	go p.run(ctx)
}

func (p *Poller) run(ctx context.Context) {
	logging.Debug(p.logger, "poller started", slog.String(logging.FieldQueryKey, p.name))
	defer logging.Debug(p.logger, "poller stopped", slog.String(logging.FieldQueryKey, p.name))

	if p.immediate {
		p.fetchOnce(ctx)
	}

	for {
		var (
			timer  *time.Timer
			expiry <-chan time.Time
		)
		if d := p.interval(); d > 0 {
			timer = time.NewTimer(d)
			expiry = timer.C
		}

		select {
		case <-ctx.Done():
			stopTimer(timer)
			return
		case <-p.done:
			stopTimer(timer)
			return
		case <-p.wake:
			stopTimer(timer)
		case <-expiry:
			p.fetchOnce(ctx)
		}
	}
}

func stopTimer(t *time.Timer) {
	if t != nil {
		t.Stop()
	}
}

// Wake makes the loop re-evaluate its interval now. It never blocks.
func (p *Poller) Wake() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// Stop halts the polling loop. An in-flight cycle is allowed to finish.
func (p *Poller) Stop(ctx context.Context) error {
	_ = ctx
	p.stopOnce.Do(func() {
		close(p.done)
	})
	return nil
}

func (p *Poller) fetchOnce(ctx context.Context) {
	start := time.Now()
	p.recordAttempt(start)
	err := p.fetch(ctx)
	p.metrics.RecordPollerCycle(time.Since(start), err)
	if err != nil {
		logging.Warn(p.logger, "poll cycle failed",
			slog.String(logging.FieldQueryKey, p.name),
			slog.Int64(logging.FieldDurationMS, time.Since(start).Milliseconds()),
			slog.Any("err", err),
		)
		p.recordFailure(err, start)
		return
	}
	p.recordSuccess(start)
	logging.Debug(p.logger, "poll cycle complete",
		slog.String(logging.FieldQueryKey, p.name),
		slog.Int64(logging.FieldDurationMS, time.Since(start).Milliseconds()),
	)
}

func (p *Poller) recordAttempt(at time.Time) {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	p.status.LastAttempt = at
}

func (p *Poller) recordSuccess(at time.Time) {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	p.status.ConsecutiveFailures = 0
	p.status.LastError = ""
	p.status.LastSuccess = at
}

func (p *Poller) recordFailure(err error, at time.Time) {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	p.status.ConsecutiveFailures++
	if err != nil {
		p.status.LastError = err.Error()
	}
	p.status.LastAttempt = at
}

// Status returns a snapshot of the poller's recent health.
func (p *Poller) Status() Status {
	p.statusMu.RLock()
	defer p.statusMu.RUnlock()
	return p.status
}
