package fixture

import (
	"context"
	"time"

	"github.com/preston-bernstein/cricket-data-service/internal/domain/commentary"
	"github.com/preston-bernstein/cricket-data-service/internal/domain/matches"
	"github.com/preston-bernstein/cricket-data-service/internal/domain/news"
	"github.com/preston-bernstein/cricket-data-service/internal/domain/scorecard"
	"github.com/preston-bernstein/cricket-data-service/internal/timeutil"
)

// Name identifies fixture data in logs and metrics.
const Name = "fixture"

// Provider serves a static set of cricket data used when the backend is unreachable
// and for local development. It never fails.
type Provider struct {
	now   func() time.Time
	delay time.Duration
}

// Option configures a Provider.
type Option func(*Provider)

// WithDelay makes every call wait d before answering, mimicking network latency.
func WithDelay(d time.Duration) Option {
	return func(p *Provider) {
		if d > 0 {
			p.delay = d
		}
	}
}

// WithClock overrides the time source used for relative timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Provider) {
		if now != nil {
			p.now = now
		}
	}
}

// New creates a fixture provider.
func New(opts ...Option) *Provider {
	p := &Provider{now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// wait sleeps for the configured delay or until ctx is done, whichever comes first.
func (p *Provider) wait(ctx context.Context) {
	if p.delay <= 0 {
		return
	}
	timer := time.NewTimer(p.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

func (p *Provider) ago(d time.Duration) string {
	return timeutil.FormatInstant(p.now().Add(-d))
}

// Matches returns the fallback match list.
func (p *Provider) Matches(ctx context.Context) []matches.Match {
	p.wait(ctx)
	return []matches.Match{
		{
			ID:         "66709",
			Tournament: "Big Bash League",
			MatchType:  "T20",
			Venue:      "Sydney Showground Stadium",
			Status:     matches.StatusLive,
			StatusText: "2nd Innings",
			StartTime:  p.ago(0),
			Team1:      thunder,
			Team2:      scorchers,
			Innings:    []matches.InningsScore{},
			Importance: matches.ImportanceMedium,
		},
	}
}

// MatchByID returns the fixture match with id, if any.
func (p *Provider) MatchByID(ctx context.Context, id string) (matches.Match, bool) {
	return matches.FindByID(p.Matches(ctx), id)
}

// TrendingNews returns the fallback news list, newest first.
func (p *Provider) TrendingNews(ctx context.Context) []news.Item {
	p.wait(ctx)
	items := make([]news.Item, 0, len(newsSeeds))
	for _, seed := range newsSeeds {
		item := seed.item
		item.PublishedAt = p.ago(seed.age)
		items = append(items, item)
	}
	return items
}

// Discussions returns fan posts, filtered to matchID when it is non-empty.
func (p *Provider) Discussions(ctx context.Context, matchID string) []news.Discussion {
	p.wait(ctx)
	posts := make([]news.Discussion, 0, len(discussionSeeds))
	for _, seed := range discussionSeeds {
		post := seed.post
		post.CreatedAt = p.ago(seed.age)
		posts = append(posts, post)
	}
	return news.FilterDiscussions(posts, matchID)
}

// Commentary returns ball-by-ball commentary, latest delivery first. The same feed serves every match.
func (p *Provider) Commentary(ctx context.Context, matchID string) []commentary.Ball {
	p.wait(ctx)
	now := p.ago(0)
	balls := make([]commentary.Ball, len(commentarySeeds))
	copy(balls, commentarySeeds)
	for i := range balls {
		balls[i].Timestamp = now
	}
	return balls
}

// Events returns no events; the fixture feed only carries commentary.
func (p *Provider) Events(ctx context.Context, matchID string) []commentary.Event {
	p.wait(ctx)
	return []commentary.Event{}
}

// Scorecard returns a completed first-innings scorecard. The same card serves every match.
func (p *Provider) Scorecard(ctx context.Context, matchID string) scorecard.FullScorecard {
	p.wait(ctx)
	card := australiaScorecard
	card.Batting = append([]scorecard.Entry(nil), australiaScorecard.Batting...)
	card.Bowling = append([]scorecard.BowlingFigures(nil), australiaScorecard.Bowling...)
	card.FallOfWickets = append([]string(nil), australiaScorecard.FallOfWickets...)
	return card
}
