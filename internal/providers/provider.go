package providers

import (
	"context"

	"github.com/preston-bernstein/cricket-data-service/internal/providers/backend"
)

// Backend is the raw endpoint surface the resolver falls back from.
// *backend.Client satisfies it.
type Backend interface {
	LiveMatches(ctx context.Context) ([]backend.MatchItem, error)
	UpcomingMatches(ctx context.Context) ([]backend.MatchItem, error)
	Matches(ctx context.Context) (backend.MatchesResponse, error)
	Schedules(ctx context.Context, filter backend.ScheduleFilter) (backend.SchedulesResponse, error)
	MatchByID(ctx context.Context, id string) (*backend.MatchItem, error)
	LiveMatch(ctx context.Context, id string) (*backend.LiveMatchResponse, error)
	Commentary(ctx context.Context, id string) ([]backend.CommentaryItem, error)
	Events(ctx context.Context, id string) ([]backend.EventItem, error)
	Scorecard(ctx context.Context, id string) (*backend.ScorecardResponse, error)
	TrendingNews(ctx context.Context) ([]backend.NewsItem, error)
}

var _ Backend = (*backend.Client)(nil)
