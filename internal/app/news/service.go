package news

import (
	"context"
	"time"

	domainnews "github.com/preston-bernstein/cricket-data-service/internal/domain/news"
	"github.com/preston-bernstein/cricket-data-service/internal/query"
)

const (
	KindTrending    = "news.trending"
	KindDiscussions = "discussions"

	trendingStaleTime    = time.Minute
	discussionsStaleTime = time.Minute
)

// Source resolves news and discussions. *providers.Resolver satisfies it.
type Source interface {
	TrendingNews(ctx context.Context) ([]domainnews.Item, error)
	Discussions(ctx context.Context, matchID string) ([]domainnews.Discussion, error)
}

// Service exposes news data through the query cache.
type Service struct {
	source Source
	cache  *query.Cache
}

// NewService constructs a Service.
func NewService(source Source, cache *query.Cache) *Service {
	return &Service{source: source, cache: cache}
}

// TrendingNews returns the latest articles.
func (s *Service) TrendingNews(ctx context.Context) ([]domainnews.Item, query.State, error) {
	return query.Get(ctx, s.cache, query.Key{Kind: KindTrending}, query.Options{StaleTime: trendingStaleTime}, s.source.TrendingNews)
}

// Discussions returns fan posts, optionally narrowed to one match.
func (s *Service) Discussions(ctx context.Context, matchID string) ([]domainnews.Discussion, query.State, error) {
	key := query.Key{Kind: KindDiscussions, ID: matchID}
	return query.Get(ctx, s.cache, key, query.Options{StaleTime: discussionsStaleTime},
		func(ctx context.Context) ([]domainnews.Discussion, error) {
			return s.source.Discussions(ctx, matchID)
		})
}
