package matches

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/preston-bernstein/cricket-data-service/internal/domain/commentary"
	domainmatches "github.com/preston-bernstein/cricket-data-service/internal/domain/matches"
	"github.com/preston-bernstein/cricket-data-service/internal/domain/scorecard"
	"github.com/preston-bernstein/cricket-data-service/internal/domain/teams"
	"github.com/preston-bernstein/cricket-data-service/internal/providers/backend"
	"github.com/preston-bernstein/cricket-data-service/internal/query"
)

type stubSource struct {
	mu sync.Mutex

	live        []domainmatches.Match
	liveErr     error
	upcoming    []domainmatches.Match
	upcomingErr error
	all         []domainmatches.Match
	schedules   []domainmatches.Match
	detail      domainmatches.Match
	found       bool
	scorecard   *scorecard.FullScorecard

	calls      map[string]int
	lastFilter backend.ScheduleFilter
	lastKnown  []domainmatches.Match
}

func (s *stubSource) hit(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.calls == nil {
		s.calls = map[string]int{}
	}
	s.calls[name]++
}

func (s *stubSource) count(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[name]
}

func (s *stubSource) LiveMatches(context.Context) ([]domainmatches.Match, error) {
	s.hit("live")
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live, s.liveErr
}

func (s *stubSource) UpcomingMatches(context.Context) ([]domainmatches.Match, error) {
	s.hit("upcoming")
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.upcoming, s.upcomingErr
}

func (s *stubSource) Matches(context.Context) ([]domainmatches.Match, error) {
	s.hit("all")
	return s.all, nil
}

func (s *stubSource) Schedules(_ context.Context, f backend.ScheduleFilter) ([]domainmatches.Match, error) {
	s.hit("schedules")
	s.mu.Lock()
	s.lastFilter = f
	s.mu.Unlock()
	return s.schedules, nil
}

func (s *stubSource) Match(_ context.Context, _ string, known []domainmatches.Match) (domainmatches.Match, bool, error) {
	s.hit("detail")
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastKnown = known
	return s.detail, s.found, nil
}

func (s *stubSource) LiveMatch(context.Context, string) (*backend.LiveMatchResponse, error) {
	s.hit("live_detail")
	return &backend.LiveMatchResponse{Status: "LIVE"}, nil
}

func (s *stubSource) Commentary(context.Context, string) ([]commentary.Ball, error) {
	s.hit("commentary")
	return []commentary.Ball{{ID: "b1"}}, nil
}

func (s *stubSource) Events(context.Context, string) ([]commentary.Event, error) {
	s.hit("events")
	return []commentary.Event{}, nil
}

func (s *stubSource) Scorecard(context.Context, string) (*scorecard.FullScorecard, error) {
	s.hit("scorecard")
	return s.scorecard, nil
}

func newTestService(t *testing.T, src Source) *Service {
	t.Helper()
	cache := query.New(query.Config{
		Retry:           &query.RetryPolicy{MaxRetries: 1, InitialInterval: time.Millisecond, MaxInterval: time.Millisecond},
		JanitorInterval: -1,
	})
	t.Cleanup(cache.Close)
	return NewService(src, cache, Intervals{Live: 5 * time.Millisecond, Detail: 5 * time.Millisecond, Scorecard: 5 * time.Millisecond}, nil)
}

func match(id string, status domainmatches.Status, start string) domainmatches.Match {
	return domainmatches.Match{ID: id, Status: status, StartTime: start}
}

func TestLiveMatchesCachedWithinStaleTime(t *testing.T) {
	src := &stubSource{live: []domainmatches.Match{match("1", domainmatches.StatusLive, "")}}
	svc := newTestService(t, src)

	list, _, err := svc.LiveMatches(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)

	_, _, err = svc.LiveMatches(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, src.count("live"))
}

func TestAllMatchesMergesAndSorts(t *testing.T) {
	src := &stubSource{
		live: []domainmatches.Match{match("live", domainmatches.StatusLive, "2024-01-15T12:00:00Z")},
		upcoming: []domainmatches.Match{
			match("later", domainmatches.StatusUpcoming, "2024-01-17T08:00:00Z"),
			match("sooner", domainmatches.StatusUpcoming, "2024-01-16T08:00:00Z"),
		},
	}
	svc := newTestService(t, src)

	combined, err := svc.AllMatches(context.Background())
	require.NoError(t, err)
	ids := make([]string, 0, len(combined.Matches))
	for _, m := range combined.Matches {
		ids = append(ids, m.ID)
	}
	assert.Equal(t, []string{"live", "sooner", "later"}, ids)
	assert.Len(t, combined.Live, 1)
	assert.Len(t, combined.Upcoming, 2)
}

func TestAllMatchesKeepsPartialResults(t *testing.T) {
	boom := errors.New("live down")
	src := &stubSource{
		liveErr:  boom,
		upcoming: []domainmatches.Match{match("u", domainmatches.StatusUpcoming, "")},
	}
	svc := newTestService(t, src)

	combined, err := svc.AllMatches(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
	assert.Len(t, combined.Matches, 1)
	assert.NotNil(t, combined.Live)
	assert.Empty(t, combined.Live)
}

func TestMatchPassesKnownListToSource(t *testing.T) {
	known := []domainmatches.Match{match("7", domainmatches.StatusFinished, "")}
	src := &stubSource{all: known, detail: match("7", domainmatches.StatusFinished, ""), found: true}
	svc := newTestService(t, src)

	detail, _, err := svc.Match(context.Background(), "7")
	require.NoError(t, err)
	assert.True(t, detail.Found)
	assert.Equal(t, "7", detail.ID)
	src.mu.Lock()
	assert.Equal(t, known, src.lastKnown)
	src.mu.Unlock()
}

func TestMatchAbsent(t *testing.T) {
	svc := newTestService(t, &stubSource{})

	detail, st, err := svc.Match(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, detail.Found)
	assert.True(t, st.HasData())
}

func TestSubscribeMatchPollsOnlyWhileLive(t *testing.T) {
	src := &stubSource{detail: match("1", domainmatches.StatusLive, ""), found: true}
	svc := newTestService(t, src)

	sub, err := svc.SubscribeMatch("1")
	require.NoError(t, err)
	defer sub.Close()
	require.Eventually(t, func() bool { return src.count("detail") >= 3 }, time.Second, time.Millisecond)

	src.mu.Lock()
	src.detail = match("1", domainmatches.StatusFinished, "")
	src.mu.Unlock()

	require.Eventually(t, func() bool {
		d, ok := query.Typed[Detail](sub.State())
		return ok && d.Status == domainmatches.StatusFinished
	}, time.Second, time.Millisecond)
	settled := src.count("detail")
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, settled, src.count("detail"))
}

func TestPrefetchMatch(t *testing.T) {
	src := &stubSource{detail: match("3", domainmatches.StatusUpcoming, ""), found: true}
	svc := newTestService(t, src)

	assert.True(t, svc.PrefetchMatch("3"))
	require.Eventually(t, func() bool {
		st, ok := svc.cache.State(DetailKey("3"))
		return ok && st.HasData()
	}, time.Second, time.Millisecond)
	assert.False(t, svc.PrefetchMatch("3"), "fresh prefetch is a no-op")

	detail, _, err := svc.Match(context.Background(), "3")
	require.NoError(t, err)
	assert.Equal(t, "3", detail.ID)
	assert.Equal(t, 1, src.count("detail"))
}

func TestSchedulesKeyedByFilter(t *testing.T) {
	src := &stubSource{schedules: []domainmatches.Match{match("s", domainmatches.StatusUpcoming, "")}}
	svc := newTestService(t, src)

	filter := backend.ScheduleFilter{Status: "UPCOMING", LeagueID: "ipl"}
	_, _, err := svc.Schedules(context.Background(), filter)
	require.NoError(t, err)
	_, _, err = svc.Schedules(context.Background(), backend.ScheduleFilter{})
	require.NoError(t, err)

	assert.Equal(t, 2, src.count("schedules"))
	_, ok := svc.cache.State(SchedulesKey(filter))
	assert.True(t, ok)
}

func TestScorecardAbsentIsNil(t *testing.T) {
	svc := newTestService(t, &stubSource{})

	card, st, err := svc.Scorecard(context.Background(), "1")
	require.NoError(t, err)
	assert.Nil(t, card)
	assert.True(t, st.HasData())
}

func TestRefreshMatchRefetchesFreshDetail(t *testing.T) {
	src := &stubSource{detail: match("5", domainmatches.StatusUpcoming, ""), found: true}
	svc := newTestService(t, src)

	_, _, err := svc.Match(context.Background(), "5")
	require.NoError(t, err)
	require.Equal(t, 1, src.count("detail"))

	src.mu.Lock()
	src.detail = match("5", domainmatches.StatusLive, "")
	src.mu.Unlock()

	detail, err := svc.RefreshMatch(context.Background(), "5")
	require.NoError(t, err)
	assert.Equal(t, domainmatches.StatusLive, detail.Status)
	assert.Equal(t, 2, src.count("detail"))
}

func TestRefreshMatchLoadsUnknownKey(t *testing.T) {
	src := &stubSource{detail: match("6", domainmatches.StatusFinished, ""), found: true}
	svc := newTestService(t, src)

	detail, err := svc.RefreshMatch(context.Background(), "6")
	require.NoError(t, err)
	assert.True(t, detail.Found)
	assert.Equal(t, 1, src.count("detail"))
}

func TestRefreshAllBypassesStaleTime(t *testing.T) {
	src := &stubSource{
		live:     []domainmatches.Match{match("l", domainmatches.StatusLive, "")},
		upcoming: []domainmatches.Match{match("u", domainmatches.StatusUpcoming, "")},
	}
	svc := newTestService(t, src)

	_, err := svc.AllMatches(context.Background())
	require.NoError(t, err)
	combined, err := svc.RefreshAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, combined.Matches, 2)
	assert.Equal(t, 2, src.count("live"))
	assert.Equal(t, 2, src.count("upcoming"))
}

func TestRefreshAllReportsFailureWithCachedData(t *testing.T) {
	src := &stubSource{
		live:     []domainmatches.Match{match("l", domainmatches.StatusLive, "")},
		upcoming: []domainmatches.Match{match("u", domainmatches.StatusUpcoming, "")},
	}
	svc := newTestService(t, src)
	_, err := svc.AllMatches(context.Background())
	require.NoError(t, err)

	boom := errors.New("upstream down")
	src.mu.Lock()
	src.upcomingErr = boom
	src.mu.Unlock()

	combined, err := svc.RefreshAll(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
	assert.Len(t, combined.Live, 1)
	assert.Len(t, combined.Upcoming, 1, "cached upcoming list is kept")
}

func TestFilterByTeam(t *testing.T) {
	list := []domainmatches.Match{
		{ID: "1", Team1: teams.Team{ID: "thunder", Name: "Sydney Thunder", ShortName: "THU"}, Team2: teams.Team{Name: "Perth Scorchers", ShortName: "SCO"}},
		{ID: "2", Team1: teams.Team{Name: "India", ShortName: "IND"}, Team2: teams.Team{Name: "Australia", ShortName: "AUS"}},
	}

	assert.Len(t, FilterByTeam(list, ""), 2)
	assert.Equal(t, "1", FilterByTeam(list, "scorchers")[0].ID)
	assert.Equal(t, "2", FilterByTeam(list, "aus")[0].ID)
	assert.Equal(t, "1", FilterByTeam(list, "thunder")[0].ID)
	assert.Empty(t, FilterByTeam(list, "england"))
}

func TestFilterByStatus(t *testing.T) {
	list := []domainmatches.Match{match("1", domainmatches.StatusLive, ""), match("2", domainmatches.StatusFinished, "")}
	assert.Len(t, FilterByStatus(list, ""), 2)
	got := FilterByStatus(list, domainmatches.StatusFinished)
	require.Len(t, got, 1)
	assert.Equal(t, "2", got[0].ID)
}
