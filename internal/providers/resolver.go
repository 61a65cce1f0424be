package providers

import (
	"context"
	"log/slog"

	"github.com/preston-bernstein/cricket-data-service/internal/domain/commentary"
	"github.com/preston-bernstein/cricket-data-service/internal/domain/matches"
	"github.com/preston-bernstein/cricket-data-service/internal/domain/news"
	"github.com/preston-bernstein/cricket-data-service/internal/domain/scorecard"
	"github.com/preston-bernstein/cricket-data-service/internal/logging"
	"github.com/preston-bernstein/cricket-data-service/internal/metrics"
	"github.com/preston-bernstein/cricket-data-service/internal/providers/backend"
	"github.com/preston-bernstein/cricket-data-service/internal/providers/fixture"
)

// Resource names used in fallback logs and metrics.
const (
	ResourceMatches    = "matches"
	ResourceLive       = "matches.live"
	ResourceUpcoming   = "matches.upcoming"
	ResourceSchedules  = "schedules"
	ResourceMatch      = "match"
	ResourceCommentary = "commentary"
	ResourceEvents     = "events"
	ResourceScorecard  = "scorecard"
	ResourceNews       = "news"
)

const (
	stepMatches   = "matches"
	stepSchedules = "schedules"
	stepDetail    = "match_detail"
	stepBackend   = "backend"
)

// Resolver turns raw backend calls into domain data, falling back to fixture data so
// callers always have something to show.
type Resolver struct {
	backend  Backend
	fixture  *fixture.Provider
	fallback Fallback
}

// NewResolver wires a backend and fixture data together.
func NewResolver(b Backend, f *fixture.Provider, logger *slog.Logger, rec *metrics.Recorder) *Resolver {
	if f == nil {
		f = fixture.New()
	}
	return &Resolver{
		backend:  b,
		fixture:  f,
		fallback: Fallback{Logger: logger, Metrics: rec},
	}
}

// LiveMatches returns /matches/live. There is no fallback; errors reach the caller so
// the cache can retry and report them.
func (r *Resolver) LiveMatches(ctx context.Context) ([]matches.Match, error) {
	return r.list(ctx, ResourceLive, r.backend.LiveMatches)
}

// UpcomingMatches returns /matches/upcoming without fallback.
func (r *Resolver) UpcomingMatches(ctx context.Context) ([]matches.Match, error) {
	return r.list(ctx, ResourceUpcoming, r.backend.UpcomingMatches)
}

func (r *Resolver) list(ctx context.Context, resource string, fetch func(context.Context) ([]backend.MatchItem, error)) ([]matches.Match, error) {
	items, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	list, report := backend.AdaptMatchItems(items)
	r.logReport(ctx, resource, report)
	return list, nil
}

// Matches resolves the all-matches list: /matches, then /schedules, then fixture data.
func (r *Resolver) Matches(ctx context.Context) ([]matches.Match, error) {
	list, _, err := Resolve(ctx, r.fallback, ResourceMatches,
		Step[[]matches.Match]{Name: stepMatches, Fetch: r.fromMatches},
		Step[[]matches.Match]{Name: stepSchedules, Fetch: func(ctx context.Context) ([]matches.Match, error) {
			return r.fromSchedules(ctx, backend.ScheduleFilter{})
		}},
		Step[[]matches.Match]{Name: fixture.Name, Fetch: r.fixtureMatches},
	)
	return list, err
}

// Schedules resolves /schedules with the filter, falling back to fixture matches
// narrowed by the filter's status.
func (r *Resolver) Schedules(ctx context.Context, filter backend.ScheduleFilter) ([]matches.Match, error) {
	list, _, err := Resolve(ctx, r.fallback, ResourceSchedules,
		Step[[]matches.Match]{Name: stepSchedules, Fetch: func(ctx context.Context) ([]matches.Match, error) {
			return r.fromSchedules(ctx, filter)
		}},
		Step[[]matches.Match]{Name: fixture.Name, Fetch: func(ctx context.Context) ([]matches.Match, error) {
			return filterByStatus(r.fixture.Matches(ctx), filter.Status), nil
		}},
	)
	return list, err
}

// Match resolves a single match. The id is looked up in known first, then in fixture
// data, then via /matches/{id}. A match found in known or via the backend is enhanced
// with /matches/{id}/live; if that fails the base match is returned. The bool is false
// when no source knows the id.
func (r *Resolver) Match(ctx context.Context, id string, known []matches.Match) (matches.Match, bool, error) {
	if base, ok := matches.FindByID(known, id); ok {
		return r.enhance(ctx, base), true, nil
	}
	if mock, ok := r.fixture.MatchByID(ctx, id); ok {
		return mock, true, nil
	}

	item, err := r.backend.MatchByID(ctx, id)
	if err != nil {
		r.logStepFailure(ctx, ResourceMatch, stepDetail, id, err)
		return matches.Match{}, false, nil
	}
	if item == nil {
		return matches.Match{}, false, nil
	}
	base, err := backend.AdaptMatchItemToMatch(*item)
	if err != nil {
		r.logStepFailure(ctx, ResourceMatch, stepDetail, id, err)
		return matches.Match{}, false, nil
	}
	r.warnUnknownStatuses(ctx, ResourceMatch, []string{item.Status})
	return r.enhance(ctx, base), true, nil
}

func (r *Resolver) enhance(ctx context.Context, base matches.Match) matches.Match {
	live, err := r.backend.LiveMatch(ctx, base.ID)
	if err != nil {
		r.logStepFailure(ctx, ResourceMatch, backend.EndpointLiveMatch, base.ID, err)
		return base
	}
	if live == nil {
		return base
	}
	if !backend.BattingTeamKnown(base, *live) {
		logging.Warn(logging.FromContext(ctx, r.fallback.Logger), "live batting team matches neither side; attributing innings to team2",
			slog.String(logging.FieldMatchID, base.ID),
			slog.String("batting_team_id", live.CurrentInnings.BattingTeamID.String()),
		)
	}
	r.warnUnknownStatuses(ctx, ResourceMatch, []string{live.Status})
	return backend.EnhanceMatchWithLiveData(base, *live)
}

// LiveMatch returns the raw live delta for a match without merging it.
func (r *Resolver) LiveMatch(ctx context.Context, id string) (*backend.LiveMatchResponse, error) {
	return r.backend.LiveMatch(ctx, id)
}

// Commentary resolves ball-by-ball commentary, falling back to fixture commentary.
func (r *Resolver) Commentary(ctx context.Context, matchID string) ([]commentary.Ball, error) {
	balls, _, err := Resolve(ctx, r.fallback, ResourceCommentary,
		Step[[]commentary.Ball]{Name: stepBackend, Fetch: func(ctx context.Context) ([]commentary.Ball, error) {
			items, err := r.backend.Commentary(ctx, matchID)
			if err != nil {
				return nil, err
			}
			if items == nil {
				return nil, ErrMissingPayload
			}
			return backend.AdaptCommentary(items), nil
		}},
		Step[[]commentary.Ball]{Name: fixture.Name, Fetch: func(ctx context.Context) ([]commentary.Ball, error) {
			return r.fixture.Commentary(ctx, matchID), nil
		}},
	)
	return balls, err
}

// Events resolves notable match events, falling back to the fixture's empty feed.
func (r *Resolver) Events(ctx context.Context, matchID string) ([]commentary.Event, error) {
	events, _, err := Resolve(ctx, r.fallback, ResourceEvents,
		Step[[]commentary.Event]{Name: stepBackend, Fetch: func(ctx context.Context) ([]commentary.Event, error) {
			items, err := r.backend.Events(ctx, matchID)
			if err != nil {
				return nil, err
			}
			return backend.AdaptEvents(items), nil
		}},
		Step[[]commentary.Event]{Name: fixture.Name, Fetch: func(ctx context.Context) ([]commentary.Event, error) {
			return r.fixture.Events(ctx, matchID), nil
		}},
	)
	return events, err
}

// Scorecard resolves a scorecard. A backend 404 means "not generated yet" and is
// reported as absent rather than replaced with fixture data.
func (r *Resolver) Scorecard(ctx context.Context, matchID string) (*scorecard.FullScorecard, error) {
	card, _, err := Resolve(ctx, r.fallback, ResourceScorecard,
		Step[*scorecard.FullScorecard]{Name: stepBackend, Fetch: func(ctx context.Context) (*scorecard.FullScorecard, error) {
			raw, err := r.backend.Scorecard(ctx, matchID)
			if err != nil || raw == nil {
				return nil, err
			}
			card := backend.AdaptScorecard(*raw)
			return &card, nil
		}},
		Step[*scorecard.FullScorecard]{Name: fixture.Name, Fetch: func(ctx context.Context) (*scorecard.FullScorecard, error) {
			card := r.fixture.Scorecard(ctx, matchID)
			return &card, nil
		}},
	)
	return card, err
}

// TrendingNews resolves the news feed, falling back to fixture stories.
func (r *Resolver) TrendingNews(ctx context.Context) ([]news.Item, error) {
	items, _, err := Resolve(ctx, r.fallback, ResourceNews,
		Step[[]news.Item]{Name: stepBackend, Fetch: func(ctx context.Context) ([]news.Item, error) {
			raw, err := r.backend.TrendingNews(ctx)
			if err != nil {
				return nil, err
			}
			if raw == nil {
				return nil, ErrMissingPayload
			}
			return backend.AdaptNewsItems(raw), nil
		}},
		Step[[]news.Item]{Name: fixture.Name, Fetch: func(ctx context.Context) ([]news.Item, error) {
			return r.fixture.TrendingNews(ctx), nil
		}},
	)
	return items, err
}

// Discussions returns fan posts. The backend has no discussion route, so fixture data is the only source.
func (r *Resolver) Discussions(ctx context.Context, matchID string) ([]news.Discussion, error) {
	return r.fixture.Discussions(ctx, matchID), nil
}

func (r *Resolver) fromMatches(ctx context.Context) ([]matches.Match, error) {
	resp, err := r.backend.Matches(ctx)
	if err != nil {
		return nil, err
	}
	if resp.Matches == nil {
		return nil, ErrMissingPayload
	}
	list, report := backend.AdaptMatchItems(resp.Matches)
	r.logReport(ctx, ResourceMatches, report)
	return list, nil
}

func (r *Resolver) fromSchedules(ctx context.Context, filter backend.ScheduleFilter) ([]matches.Match, error) {
	resp, err := r.backend.Schedules(ctx, filter)
	if err != nil {
		return nil, err
	}
	if resp.Schedules == nil {
		return nil, ErrMissingPayload
	}
	list, report := backend.AdaptSchedules(resp.Schedules)
	r.logReport(ctx, ResourceSchedules, report)
	return list, nil
}

func (r *Resolver) fixtureMatches(ctx context.Context) ([]matches.Match, error) {
	return r.fixture.Matches(ctx), nil
}

func filterByStatus(list []matches.Match, status string) []matches.Match {
	if status == "" {
		return list
	}
	out := make([]matches.Match, 0, len(list))
	for _, m := range list {
		if string(m.Status) == status {
			out = append(out, m)
		}
	}
	return out
}

func (r *Resolver) logReport(ctx context.Context, resource string, report backend.AdaptReport) {
	logger := logging.FromContext(ctx, r.fallback.Logger)
	if report.Skipped > 0 {
		logging.Warn(logger, "skipped rows without match id",
			slog.String(logging.FieldResource, resource),
			slog.Int(logging.FieldCount, report.Skipped),
		)
	}
	r.warnUnknownStatuses(ctx, resource, report.UnknownStatuses)
}

func (r *Resolver) warnUnknownStatuses(ctx context.Context, resource string, statuses []string) {
	logger := logging.FromContext(ctx, r.fallback.Logger)
	for _, raw := range statuses {
		if backend.IsKnownStatus(raw) {
			continue
		}
		logging.Warn(logger, "unknown match status; defaulting to UPCOMING",
			slog.String(logging.FieldResource, resource),
			slog.String("status", raw),
		)
	}
}

func (r *Resolver) logStepFailure(ctx context.Context, resource, step, matchID string, err error) {
	logWithProvider(ctx, logging.FromContext(ctx, r.fallback.Logger), slog.LevelWarn, step, "fallback step failed",
		slog.String(logging.FieldResource, resource),
		slog.String(logging.FieldMatchID, matchID),
		slog.Any("err", err),
	)
	r.fallback.Metrics.RecordFallback(resource, step)
}
