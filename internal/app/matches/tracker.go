package matches

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/sourcegraph/conc/pool"

	domainmatches "github.com/preston-bernstein/cricket-data-service/internal/domain/matches"
	"github.com/preston-bernstein/cricket-data-service/internal/logging"
	"github.com/preston-bernstein/cricket-data-service/internal/poller"
	"github.com/preston-bernstein/cricket-data-service/internal/query"
)

const defaultWarmConcurrency = 4

// Tracker follows the live list. For every live match it keeps the detail, live delta,
// commentary, events and scorecard subscribed so they are polled while the match is live.
type Tracker struct {
	svc         *Service
	logger      *slog.Logger
	concurrency int

	mu      sync.Mutex
	live    *query.Subscription
	details map[string]*trackedMatch
}

// trackedMatch holds the subscriptions kept open for one live match.
type trackedMatch struct {
	detail *query.Subscription
	feeds  []*query.Subscription
}

func (m *trackedMatch) close() {
	m.detail.Close()
	for _, sub := range m.feeds {
		sub.Close()
	}
	m.feeds = nil
}

// NewTracker constructs a Tracker. concurrency bounds parallel warm-up fetches.
func NewTracker(svc *Service, logger *slog.Logger, concurrency int) *Tracker {
	if concurrency <= 0 {
		concurrency = defaultWarmConcurrency
	}
	return &Tracker{
		svc:         svc,
		logger:      logger,
		concurrency: concurrency,
		details:     make(map[string]*trackedMatch),
	}
}

// Run subscribes to the live list and syncs detail subscriptions on every update
// until ctx is cancelled or the subscription ends.
func (t *Tracker) Run(ctx context.Context) error {
	sub, err := t.svc.SubscribeLiveMatches()
	if err != nil {
		return err
	}
	t.mu.Lock()
	t.live = sub
	t.mu.Unlock()
	defer t.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case st, ok := <-sub.Updates():
			if !ok {
				return nil
			}
			if list, ok := query.Typed[[]domainmatches.Match](st); ok {
				t.Sync(ctx, list)
			}
		}
	}
}

// Sync opens subscriptions for live matches not yet tracked and closes those for
// matches no longer live.
func (t *Tracker) Sync(ctx context.Context, live []domainmatches.Match) {
	want := make(map[string]struct{}, len(live))
	for _, m := range live {
		if m.IsLive() {
			want[m.ID] = struct{}{}
		}
	}

	var added []string
	t.mu.Lock()
	for id, tracked := range t.details {
		if _, ok := want[id]; !ok {
			tracked.close()
			delete(t.details, id)
			logging.Debug(t.logger, "stopped tracking match", slog.String(logging.FieldMatchID, id))
		}
	}
	for id := range want {
		if _, ok := t.details[id]; ok {
			continue
		}
		sub, err := t.svc.SubscribeMatch(id)
		if err != nil {
			logging.Warn(t.logger, "could not track match", slog.String(logging.FieldMatchID, id), slog.Any("err", err))
			continue
		}
		t.details[id] = &trackedMatch{detail: sub}
		added = append(added, id)
	}
	t.mu.Unlock()

	if len(added) > 0 {
		t.warm(ctx, added)
	}
}

// warm waits for the detail of each newly tracked match, so the feed intervals can see
// its status, then opens the per-match feed subscriptions.
func (t *Tracker) warm(ctx context.Context, ids []string) {
	p := pool.New().WithErrors().WithContext(ctx).WithMaxGoroutines(t.concurrency)
	for _, id := range ids {
		id := id
		p.Go(func(ctx context.Context) error {
			_, _, err := t.svc.Match(ctx, id)
			t.openFeeds(id)
			return err
		})
	}
	if err := p.Wait(); err != nil {
		logging.Warn(t.logger, "warming live matches failed", slog.Int(logging.FieldCount, len(ids)), slog.Any("err", err))
	}
}

func (t *Tracker) openFeeds(id string) {
	subscribe := []func(string) (*query.Subscription, error){
		t.svc.SubscribeLiveMatch,
		t.svc.SubscribeCommentary,
		t.svc.SubscribeEvents,
		t.svc.SubscribeScorecard,
	}
	feeds := make([]*query.Subscription, 0, len(subscribe))
	for _, open := range subscribe {
		sub, err := open(id)
		if err != nil {
			logging.Warn(t.logger, "could not subscribe match feed", slog.String(logging.FieldMatchID, id), slog.Any("err", err))
			continue
		}
		feeds = append(feeds, sub)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	tracked, ok := t.details[id]
	if !ok {
		for _, sub := range feeds {
			sub.Close()
		}
		return
	}
	tracked.feeds = append(tracked.feeds, feeds...)
}

// Tracked returns the ids of matches with open detail subscriptions, sorted.
func (t *Tracker) Tracked() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	ids := make([]string, 0, len(t.details))
	for id := range t.details {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// LiveStatus reports the live-list poller health once Run has subscribed.
func (t *Tracker) LiveStatus() (poller.Status, bool) {
	t.mu.Lock()
	sub := t.live
	t.mu.Unlock()
	if sub == nil {
		return poller.Status{}, false
	}
	return sub.PollStatus()
}

// Close ends every subscription held by the tracker.
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for id, tracked := range t.details {
		tracked.close()
		delete(t.details, id)
	}
	if t.live != nil {
		t.live.Close()
		t.live = nil
	}
}
