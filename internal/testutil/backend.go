package testutil

import (
	"context"
	"sync"

	"github.com/preston-bernstein/cricket-data-service/internal/providers/backend"
)

// ErrUnreachable is the error StubBackend returns when Down is set.
var ErrUnreachable = &backend.APIError{Kind: backend.KindNetwork, Message: "Network error: Unable to connect to server"}

// StubBackend serves canned payloads for every backend route. When Down is set every
// read fails with ErrUnreachable, which sends the resolver to its fallbacks.
type StubBackend struct {
	mu sync.Mutex

	Down            bool
	LiveItems       []backend.MatchItem
	UpcomingItems   []backend.MatchItem
	MatchItems      []backend.MatchItem
	ScheduleItems   []backend.ScheduleItem
	CommentaryItems []backend.CommentaryItem
	EventItems      []backend.EventItem
	ScorecardResp   *backend.ScorecardResponse
	NewsItems       []backend.NewsItem

	WaitlistErr error
	Emails      []string

	calls map[string]int
}

// Calls reports how many times the named route was hit.
func (s *StubBackend) Calls(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[name]
}

// SetDown toggles the unreachable state.
func (s *StubBackend) SetDown(down bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Down = down
}

func (s *StubBackend) hit(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.calls == nil {
		s.calls = map[string]int{}
	}
	s.calls[name]++
	return s.Down
}

func (s *StubBackend) LiveMatches(context.Context) ([]backend.MatchItem, error) {
	if s.hit(backend.EndpointLiveMatches) {
		return nil, ErrUnreachable
	}
	return nonNil(s.LiveItems), nil
}

func (s *StubBackend) UpcomingMatches(context.Context) ([]backend.MatchItem, error) {
	if s.hit(backend.EndpointUpcomingMatches) {
		return nil, ErrUnreachable
	}
	return nonNil(s.UpcomingItems), nil
}

func (s *StubBackend) Matches(context.Context) (backend.MatchesResponse, error) {
	if s.hit(backend.EndpointMatches) {
		return backend.MatchesResponse{}, ErrUnreachable
	}
	return backend.MatchesResponse{Matches: nonNil(s.MatchItems)}, nil
}

func (s *StubBackend) Schedules(context.Context, backend.ScheduleFilter) (backend.SchedulesResponse, error) {
	if s.hit(backend.EndpointSchedules) {
		return backend.SchedulesResponse{}, ErrUnreachable
	}
	return backend.SchedulesResponse{Schedules: s.ScheduleItems}, nil
}

func (s *StubBackend) MatchByID(_ context.Context, id string) (*backend.MatchItem, error) {
	if s.hit(backend.EndpointMatchByID) {
		return nil, ErrUnreachable
	}
	for _, m := range s.MatchItems {
		if string(m.MatchID) == id {
			found := m
			return &found, nil
		}
	}
	return nil, nil
}

func (s *StubBackend) LiveMatch(context.Context, string) (*backend.LiveMatchResponse, error) {
	if s.hit(backend.EndpointLiveMatch) {
		return nil, ErrUnreachable
	}
	return nil, nil
}

func (s *StubBackend) Commentary(context.Context, string) ([]backend.CommentaryItem, error) {
	if s.hit(backend.EndpointCommentary) {
		return nil, ErrUnreachable
	}
	if s.CommentaryItems == nil {
		return []backend.CommentaryItem{}, nil
	}
	return s.CommentaryItems, nil
}

func (s *StubBackend) Events(context.Context, string) ([]backend.EventItem, error) {
	if s.hit(backend.EndpointEvents) {
		return nil, ErrUnreachable
	}
	return s.EventItems, nil
}

func (s *StubBackend) Scorecard(context.Context, string) (*backend.ScorecardResponse, error) {
	if s.hit(backend.EndpointScorecard) {
		return nil, ErrUnreachable
	}
	return s.ScorecardResp, nil
}

func (s *StubBackend) TrendingNews(context.Context) ([]backend.NewsItem, error) {
	if s.hit(backend.EndpointTrendingNews) {
		return nil, ErrUnreachable
	}
	if s.NewsItems == nil {
		return []backend.NewsItem{}, nil
	}
	return s.NewsItems, nil
}

func (s *StubBackend) SubmitWaitlistEmail(_ context.Context, email string) (backend.WaitlistResponse, error) {
	s.hit(backend.EndpointWaitlist)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.WaitlistErr != nil {
		return backend.WaitlistResponse{}, s.WaitlistErr
	}
	s.Emails = append(s.Emails, email)
	return backend.WaitlistResponse{Success: true, Message: "You're on the list!"}, nil
}

func nonNil(list []backend.MatchItem) []backend.MatchItem {
	if list == nil {
		return []backend.MatchItem{}
	}
	return list
}
