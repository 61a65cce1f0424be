package matches

import (
	"context"
	"log/slog"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/sourcegraph/conc"

	"github.com/preston-bernstein/cricket-data-service/internal/domain/commentary"
	domainmatches "github.com/preston-bernstein/cricket-data-service/internal/domain/matches"
	"github.com/preston-bernstein/cricket-data-service/internal/domain/scorecard"
	"github.com/preston-bernstein/cricket-data-service/internal/logging"
	"github.com/preston-bernstein/cricket-data-service/internal/providers/backend"
	"github.com/preston-bernstein/cricket-data-service/internal/query"
)

const (
	liveStaleTime       = 5 * time.Second
	upcomingStaleTime   = time.Minute
	allStaleTime        = 5 * time.Second
	schedulesStaleTime  = time.Minute
	detailStaleTime     = 3 * time.Second
	commentaryStaleTime = 3 * time.Second
	scorecardStaleTime  = 10 * time.Second
	prefetchStaleTime   = 10 * time.Second
)

// Source resolves match data. *providers.Resolver satisfies it.
type Source interface {
	LiveMatches(ctx context.Context) ([]domainmatches.Match, error)
	UpcomingMatches(ctx context.Context) ([]domainmatches.Match, error)
	Matches(ctx context.Context) ([]domainmatches.Match, error)
	Schedules(ctx context.Context, filter backend.ScheduleFilter) ([]domainmatches.Match, error)
	Match(ctx context.Context, id string, known []domainmatches.Match) (domainmatches.Match, bool, error)
	LiveMatch(ctx context.Context, id string) (*backend.LiveMatchResponse, error)
	Commentary(ctx context.Context, matchID string) ([]commentary.Ball, error)
	Events(ctx context.Context, matchID string) ([]commentary.Event, error)
	Scorecard(ctx context.Context, matchID string) (*scorecard.FullScorecard, error)
}

// Intervals are the polling cadences for live data.
type Intervals struct {
	Live      time.Duration
	Detail    time.Duration
	Scorecard time.Duration
}

// DefaultIntervals polls live lists every 10s, match detail every 5s and scorecards every 30s.
func DefaultIntervals() Intervals {
	return Intervals{Live: 10 * time.Second, Detail: 5 * time.Second, Scorecard: 30 * time.Second}
}

// Detail is the cached result of a single-match lookup. Found is false when no source knows the id.
type Detail struct {
	domainmatches.Match
	Found bool
}

// Combined is the live and upcoming lists merged for display.
type Combined struct {
	Matches  []domainmatches.Match
	Live     []domainmatches.Match
	Upcoming []domainmatches.Match
}

// Service exposes match data through the query cache.
type Service struct {
	source    Source
	cache     *query.Cache
	intervals Intervals
	logger    *slog.Logger
}

// NewService constructs a Service. Zero intervals fall back to DefaultIntervals.
func NewService(source Source, cache *query.Cache, intervals Intervals, logger *slog.Logger) *Service {
	def := DefaultIntervals()
	if intervals.Live <= 0 {
		intervals.Live = def.Live
	}
	if intervals.Detail <= 0 {
		intervals.Detail = def.Detail
	}
	if intervals.Scorecard <= 0 {
		intervals.Scorecard = def.Scorecard
	}
	return &Service{source: source, cache: cache, intervals: intervals, logger: logger}
}

// LiveMatches returns matches currently in progress.
func (s *Service) LiveMatches(ctx context.Context) ([]domainmatches.Match, query.State, error) {
	return query.Get(ctx, s.cache, LiveKey, s.liveOptions(), s.source.LiveMatches)
}

// UpcomingMatches returns scheduled matches.
func (s *Service) UpcomingMatches(ctx context.Context) ([]domainmatches.Match, query.State, error) {
	return query.Get(ctx, s.cache, UpcomingKey, query.Options{StaleTime: upcomingStaleTime}, s.source.UpcomingMatches)
}

// AllMatches loads the live and upcoming lists concurrently and merges them, live first.
// Whatever loaded is returned even when one list failed; the error reports the failures.
func (s *Service) AllMatches(ctx context.Context) (Combined, error) {
	var (
		live, upcoming    []domainmatches.Match
		liveErr, upcomErr error
		wg                conc.WaitGroup
	)
	wg.Go(func() { live, _, liveErr = s.LiveMatches(ctx) })
	wg.Go(func() { upcoming, _, upcomErr = s.UpcomingMatches(ctx) })
	wg.Wait()

	return combine(live, upcoming), errors.CombineErrors(liveErr, upcomErr)
}

func combine(live, upcoming []domainmatches.Match) Combined {
	merged := make([]domainmatches.Match, 0, len(live)+len(upcoming))
	merged = append(merged, live...)
	merged = append(merged, upcoming...)
	return Combined{
		Matches:  domainmatches.SortForDisplay(merged),
		Live:     nonNil(live),
		Upcoming: nonNil(upcoming),
	}
}

// Matches returns the resolved all-matches list.
func (s *Service) Matches(ctx context.Context) ([]domainmatches.Match, query.State, error) {
	return query.Get(ctx, s.cache, AllKey, query.Options{StaleTime: allStaleTime}, s.source.Matches)
}

// Schedules returns schedule rows matching filter.
func (s *Service) Schedules(ctx context.Context, filter backend.ScheduleFilter) ([]domainmatches.Match, query.State, error) {
	return query.Get(ctx, s.cache, SchedulesKey(filter), query.Options{StaleTime: schedulesStaleTime},
		func(ctx context.Context) ([]domainmatches.Match, error) {
			return s.source.Schedules(ctx, filter)
		})
}

// Match resolves a single match. Polling of a subscribed match follows its status.
func (s *Service) Match(ctx context.Context, id string) (Detail, query.State, error) {
	return query.Get(ctx, s.cache, DetailKey(id), s.detailOptions(detailStaleTime), s.loadDetail(id))
}

// PrefetchMatch warms the detail entry for id without waiting.
func (s *Service) PrefetchMatch(id string) bool {
	started := s.cache.Prefetch(DetailKey(id), s.detailOptions(prefetchStaleTime), query.Loader(s.loadDetail(id)))
	if started {
		logging.Debug(s.logger, "prefetching match", slog.String(logging.FieldMatchID, id))
	}
	return started
}

// SubscribeMatch keeps the detail for id polled while it is live.
func (s *Service) SubscribeMatch(id string) (*query.Subscription, error) {
	return s.cache.Subscribe(DetailKey(id), s.detailOptions(detailStaleTime), query.Loader(s.loadDetail(id)))
}

// SubscribeLiveMatches keeps the live list polled.
func (s *Service) SubscribeLiveMatches() (*query.Subscription, error) {
	return s.cache.Subscribe(LiveKey, s.liveOptions(), query.Loader(s.source.LiveMatches))
}

// LiveMatch returns the raw live delta for a match. Nil means no live data.
func (s *Service) LiveMatch(ctx context.Context, id string) (*backend.LiveMatchResponse, query.State, error) {
	return query.Get(ctx, s.cache, LiveDetailKey(id), s.liveDetailOptions(), s.loadLiveMatch(id))
}

// Commentary returns ball-by-ball commentary, newest first.
func (s *Service) Commentary(ctx context.Context, id string) ([]commentary.Ball, query.State, error) {
	return query.Get(ctx, s.cache, CommentaryKey(id), s.feedOptions(id, commentaryStaleTime, s.intervals.Detail), s.loadCommentary(id))
}

// Events returns notable match events.
func (s *Service) Events(ctx context.Context, id string) ([]commentary.Event, query.State, error) {
	return query.Get(ctx, s.cache, EventsKey(id), s.feedOptions(id, commentaryStaleTime, s.intervals.Detail), s.loadEvents(id))
}

// Scorecard returns the full scorecard. Nil means the scorecard is not available yet.
func (s *Service) Scorecard(ctx context.Context, id string) (*scorecard.FullScorecard, query.State, error) {
	return query.Get(ctx, s.cache, ScorecardKey(id), s.feedOptions(id, scorecardStaleTime, s.intervals.Scorecard), s.loadScorecard(id))
}

// SubscribeLiveMatch keeps the live delta for id polled.
func (s *Service) SubscribeLiveMatch(id string) (*query.Subscription, error) {
	return s.cache.Subscribe(LiveDetailKey(id), s.liveDetailOptions(), query.Loader(s.loadLiveMatch(id)))
}

// SubscribeCommentary keeps commentary for id polled while the cached detail reports it live.
func (s *Service) SubscribeCommentary(id string) (*query.Subscription, error) {
	opts := s.feedOptions(id, commentaryStaleTime, s.intervals.Detail)
	return s.cache.Subscribe(CommentaryKey(id), opts, query.Loader(s.loadCommentary(id)))
}

// SubscribeEvents keeps match events for id polled while the match is live.
func (s *Service) SubscribeEvents(id string) (*query.Subscription, error) {
	opts := s.feedOptions(id, commentaryStaleTime, s.intervals.Detail)
	return s.cache.Subscribe(EventsKey(id), opts, query.Loader(s.loadEvents(id)))
}

// SubscribeScorecard keeps the scorecard for id polled while the match is live.
func (s *Service) SubscribeScorecard(id string) (*query.Subscription, error) {
	opts := s.feedOptions(id, scorecardStaleTime, s.intervals.Scorecard)
	return s.cache.Subscribe(ScorecardKey(id), opts, query.Loader(s.loadScorecard(id)))
}

// RefreshAll refetches the live and upcoming lists, ignoring staleness, and merges them.
// Failures are reported like AllMatches, alongside whatever data is cached.
func (s *Service) RefreshAll(ctx context.Context) (Combined, error) {
	var (
		liveSt, upcomSt   query.State
		liveErr, upcomErr error
		wg                conc.WaitGroup
	)
	wg.Go(func() {
		liveSt, liveErr = s.refresh(ctx, LiveKey, s.liveOptions(), query.Loader(s.source.LiveMatches))
	})
	wg.Go(func() {
		upcomSt, upcomErr = s.refresh(ctx, UpcomingKey, query.Options{StaleTime: upcomingStaleTime}, query.Loader(s.source.UpcomingMatches))
	})
	wg.Wait()

	live, _ := query.Typed[[]domainmatches.Match](liveSt)
	upcoming, _ := query.Typed[[]domainmatches.Match](upcomSt)
	return combine(live, upcoming), errors.CombineErrors(liveErr, upcomErr)
}

// RefreshMatch refetches the detail for id, ignoring staleness. When the request fails
// the previously cached detail, if any, is returned with the error.
func (s *Service) RefreshMatch(ctx context.Context, id string) (Detail, error) {
	st, err := s.refresh(ctx, DetailKey(id), s.detailOptions(detailStaleTime), query.Loader(s.loadDetail(id)))
	detail, _ := query.Typed[Detail](st)
	return detail, err
}

// refresh forces a new request for key, loading it for the first time when it was
// never fetched. A failed request is reported even when older data is still cached.
func (s *Service) refresh(ctx context.Context, key query.Key, opts query.Options, fn query.FetchFunc) (query.State, error) {
	st, err := s.cache.Refetch(ctx, key)
	if errors.Is(err, query.ErrUnknownKey) {
		st, err = s.cache.Fetch(ctx, key, opts, fn)
	}
	if err != nil {
		return st, err
	}
	if st.Err != nil {
		return st, st.Err
	}
	return st, nil
}

func (s *Service) liveOptions() query.Options {
	return query.Options{StaleTime: liveStaleTime, RefetchInterval: query.Every(s.intervals.Live)}
}

func (s *Service) detailOptions(stale time.Duration) query.Options {
	return query.Options{StaleTime: stale, RefetchInterval: query.WhileLive(s.intervals.Detail)}
}

func (s *Service) liveDetailOptions() query.Options {
	return query.Options{StaleTime: liveStaleTime, RefetchInterval: query.Every(s.intervals.Live)}
}

func (s *Service) feedOptions(id string, stale, every time.Duration) query.Options {
	return query.Options{StaleTime: stale, RefetchInterval: s.whileMatchLive(id, every)}
}

func (s *Service) loadLiveMatch(id string) func(context.Context) (*backend.LiveMatchResponse, error) {
	return func(ctx context.Context) (*backend.LiveMatchResponse, error) {
		return s.source.LiveMatch(ctx, id)
	}
}

func (s *Service) loadCommentary(id string) func(context.Context) ([]commentary.Ball, error) {
	return func(ctx context.Context) ([]commentary.Ball, error) {
		return s.source.Commentary(ctx, id)
	}
}

func (s *Service) loadEvents(id string) func(context.Context) ([]commentary.Event, error) {
	return func(ctx context.Context) ([]commentary.Event, error) {
		return s.source.Events(ctx, id)
	}
}

func (s *Service) loadScorecard(id string) func(context.Context) (*scorecard.FullScorecard, error) {
	return func(ctx context.Context) (*scorecard.FullScorecard, error) {
		return s.source.Scorecard(ctx, id)
	}
}

func (s *Service) loadDetail(id string) func(context.Context) (Detail, error) {
	return func(ctx context.Context) (Detail, error) {
		known, _, err := s.Matches(ctx)
		if err != nil {
			logging.Warn(logging.FromContext(ctx, s.logger), "match list unavailable for detail lookup",
				slog.String(logging.FieldMatchID, id),
				slog.Any("err", err),
			)
		}
		m, found, err := s.source.Match(ctx, id, known)
		if err != nil {
			return Detail{}, err
		}
		return Detail{Match: m, Found: found}, nil
	}
}

// whileMatchLive polls every d while the cached detail for id reports the match live.
func (s *Service) whileMatchLive(id string, d time.Duration) query.IntervalFunc {
	return func(any) time.Duration {
		st, ok := s.cache.State(DetailKey(id))
		if !ok {
			return 0
		}
		if detail, ok := query.Typed[Detail](st); ok && detail.IsLive() {
			return d
		}
		return 0
	}
}

func nonNil(list []domainmatches.Match) []domainmatches.Match {
	if list == nil {
		return []domainmatches.Match{}
	}
	return list
}
