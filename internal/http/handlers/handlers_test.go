package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/preston-bernstein/cricket-data-service/internal/domain/matches"
	"github.com/preston-bernstein/cricket-data-service/internal/domain/news"
	"github.com/preston-bernstein/cricket-data-service/internal/poller"
	"github.com/preston-bernstein/cricket-data-service/internal/providers/backend"
	"github.com/preston-bernstein/cricket-data-service/internal/testutil"
)

func newTestHandler(t *testing.T, b *testutil.StubBackend, statusFn StatusFunc) *Handler {
	t.Helper()
	logger, _ := testutil.NewBufferLogger()
	svc := testutil.NewServices(t, b, logger)
	return NewHandler(svc.Matches, svc.News, svc.Waitlist, logger, statusFn)
}

// withMatchID routes req as if chi had matched {id}.
func withMatchID(req *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func serveMatch(h http.HandlerFunc, method, id string) *httptest.ResponseRecorder {
	req := withMatchID(httptest.NewRequest(method, "/api/matches/test", nil), id)
	return testutil.ServeRequest(h, req)
}

func TestHealth(t *testing.T) {
	h := newTestHandler(t, &testutil.StubBackend{}, nil)

	rr := testutil.Serve(http.HandlerFunc(h.Health), http.MethodGet, "/health", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)

	var resp map[string]string
	testutil.DecodeJSON(t, rr, &resp)
	if resp["status"] != "ok" {
		t.Fatalf("expected status ok, got %s", resp["status"])
	}
}

func TestHealthReportsBackendReachability(t *testing.T) {
	for _, reachable := range []bool{true, false} {
		h := newTestHandler(t, &testutil.StubBackend{}, nil).
			WithBackendCheck(func(context.Context) bool { return reachable })

		rr := testutil.Serve(http.HandlerFunc(h.Health), http.MethodGet, "/health", nil)
		testutil.AssertStatus(t, rr, http.StatusOK)

		var resp map[string]string
		testutil.DecodeJSON(t, rr, &resp)
		want := "unreachable"
		if reachable {
			want = "reachable"
		}
		if resp["backend"] != want {
			t.Fatalf("expected backend %s, got %q", want, resp["backend"])
		}
	}
}

func TestHealthShuttingDownReturnsServiceUnavailable(t *testing.T) {
	h := newTestHandler(t, &testutil.StubBackend{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	ctx, cancel := context.WithCancel(req.Context())
	cancel()
	rr := testutil.ServeRequest(http.HandlerFunc(h.Health), req.WithContext(ctx))

	testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
	var resp map[string]string
	testutil.DecodeJSON(t, rr, &resp)
	if resp["error"] != "shutting down" {
		t.Fatalf("unexpected error %q", resp["error"])
	}
}

func TestReady(t *testing.T) {
	tests := []struct {
		name     string
		statusFn StatusFunc
		want     int
		wantErr  string
	}{
		{name: "no poller", statusFn: nil, want: http.StatusOK},
		{
			name:     "not started",
			statusFn: func() (poller.Status, bool) { return poller.Status{}, false },
			want:     http.StatusServiceUnavailable,
			wantErr:  "not ready",
		},
		{
			name: "healthy",
			statusFn: func() (poller.Status, bool) {
				return poller.Status{LastSuccess: time.Now()}, true
			},
			want: http.StatusOK,
		},
		{
			name: "failing",
			statusFn: func() (poller.Status, bool) {
				return poller.Status{ConsecutiveFailures: 5, LastError: "upstream down"}, true
			},
			want:    http.StatusServiceUnavailable,
			wantErr: "upstream down",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t, &testutil.StubBackend{}, tt.statusFn)
			rr := testutil.Serve(http.HandlerFunc(h.Ready), http.MethodGet, "/ready", nil)
			testutil.AssertStatus(t, rr, tt.want)
			if tt.wantErr == "" {
				return
			}
			var body map[string]any
			testutil.DecodeJSON(t, rr, &body)
			if body["error"] != tt.wantErr {
				t.Fatalf("expected error %q, got %v", tt.wantErr, body["error"])
			}
		})
	}
}

func TestLiveMatchesEmptyListIsJSONArray(t *testing.T) {
	h := newTestHandler(t, &testutil.StubBackend{}, nil)

	rr := testutil.Serve(http.HandlerFunc(h.LiveMatches), http.MethodGet, "/api/matches/live", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)
	if got := strings.TrimSpace(rr.Body.String()); got != "[]" {
		t.Fatalf("expected empty array, got %s", got)
	}
}

func TestLiveMatchesUpstreamDownIsRetryable(t *testing.T) {
	h := newTestHandler(t, &testutil.StubBackend{Down: true}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/matches/live", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rr := testutil.ServeRequest(http.HandlerFunc(h.LiveMatches), req)

	testutil.AssertStatus(t, rr, http.StatusBadGateway)
	var body errorBody
	testutil.DecodeJSON(t, rr, &body)
	if !body.Retryable {
		t.Fatalf("expected retryable error")
	}
	if body.RequestID != "req-42" {
		t.Fatalf("expected request id echoed, got %q", body.RequestID)
	}
	if body.Error != testutil.ErrUnreachable.Message {
		t.Fatalf("expected upstream message, got %q", body.Error)
	}
}

func TestMatchesFallsBackToFixtures(t *testing.T) {
	h := newTestHandler(t, &testutil.StubBackend{Down: true}, nil)

	rr := testutil.Serve(http.HandlerFunc(h.Matches), http.MethodGet, "/api/matches", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)
	var list []matches.Match
	testutil.DecodeJSON(t, rr, &list)
	if len(list) == 0 {
		t.Fatalf("expected fixture matches")
	}
}

func TestMatchesFilters(t *testing.T) {
	b := &testutil.StubBackend{MatchItems: []backend.MatchItem{
		testutil.SampleMatchItem("1", "LIVE"),
		testutil.SampleMatchItem("2", "FINISHED"),
	}}
	h := newTestHandler(t, b, nil)

	rr := testutil.Serve(http.HandlerFunc(h.Matches), http.MethodGet, "/api/matches?status=finished&team=ind", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)
	var list []matches.Match
	testutil.DecodeJSON(t, rr, &list)
	if len(list) != 1 || list[0].ID != "2" {
		t.Fatalf("expected only finished match, got %+v", list)
	}

	rr = testutil.Serve(http.HandlerFunc(h.Matches), http.MethodGet, "/api/matches?status=paused", nil)
	testutil.AssertStatus(t, rr, http.StatusBadRequest)
}

func TestAllMatchesCombinesLists(t *testing.T) {
	b := &testutil.StubBackend{
		LiveItems:     []backend.MatchItem{testutil.SampleMatchItem("1", "LIVE")},
		UpcomingItems: []backend.MatchItem{testutil.SampleMatchItem("2", "UPCOMING")},
	}
	h := newTestHandler(t, b, nil)

	rr := testutil.Serve(http.HandlerFunc(h.AllMatches), http.MethodGet, "/api/matches/all", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)
	var resp combinedResponse
	testutil.DecodeJSON(t, rr, &resp)
	if len(resp.Matches) != 2 || resp.Matches[0].ID != "1" {
		t.Fatalf("expected live match first, got %+v", resp.Matches)
	}
	if len(resp.Live) != 1 || len(resp.Upcoming) != 1 {
		t.Fatalf("unexpected split lists %+v", resp)
	}
}

func TestAllMatchesAllFailedIsBadGateway(t *testing.T) {
	h := newTestHandler(t, &testutil.StubBackend{Down: true}, nil)

	rr := testutil.Serve(http.HandlerFunc(h.AllMatches), http.MethodGet, "/api/matches/all", nil)
	testutil.AssertStatus(t, rr, http.StatusBadGateway)
}

func TestRefreshMatchesRefetchesLists(t *testing.T) {
	b := &testutil.StubBackend{
		LiveItems:     []backend.MatchItem{testutil.SampleMatchItem("1", "LIVE")},
		UpcomingItems: []backend.MatchItem{testutil.SampleMatchItem("2", "UPCOMING")},
	}
	h := newTestHandler(t, b, nil)

	rr := testutil.Serve(http.HandlerFunc(h.AllMatches), http.MethodGet, "/api/matches/all", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)
	rr = testutil.Serve(http.HandlerFunc(h.AllMatches), http.MethodGet, "/api/matches/all", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)
	if got := b.Calls(backend.EndpointLiveMatches); got != 1 {
		t.Fatalf("expected cached live list, got %d calls", got)
	}

	rr = testutil.Serve(http.HandlerFunc(h.RefreshMatches), http.MethodPost, "/api/matches/refresh", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)
	var resp combinedResponse
	testutil.DecodeJSON(t, rr, &resp)
	if len(resp.Matches) != 2 {
		t.Fatalf("expected both lists, got %+v", resp.Matches)
	}
	if got := b.Calls(backend.EndpointLiveMatches); got != 2 {
		t.Fatalf("expected refresh to refetch live list, got %d calls", got)
	}
	if got := b.Calls(backend.EndpointUpcomingMatches); got != 2 {
		t.Fatalf("expected refresh to refetch upcoming list, got %d calls", got)
	}
}

func TestRefreshMatchesWithoutDataIsBadGateway(t *testing.T) {
	h := newTestHandler(t, &testutil.StubBackend{Down: true}, nil)

	rr := testutil.Serve(http.HandlerFunc(h.RefreshMatches), http.MethodPost, "/api/matches/refresh", nil)
	testutil.AssertStatus(t, rr, http.StatusBadGateway)
}

func TestRefreshMatchesKeepsCachedListOnFailure(t *testing.T) {
	b := &testutil.StubBackend{
		LiveItems:     []backend.MatchItem{testutil.SampleMatchItem("1", "LIVE")},
		UpcomingItems: []backend.MatchItem{testutil.SampleMatchItem("2", "UPCOMING")},
	}
	h := newTestHandler(t, b, nil)
	rr := testutil.Serve(http.HandlerFunc(h.AllMatches), http.MethodGet, "/api/matches/all", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)

	b.SetDown(true)
	rr = testutil.Serve(http.HandlerFunc(h.RefreshMatches), http.MethodPost, "/api/matches/refresh", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)
	var resp combinedResponse
	testutil.DecodeJSON(t, rr, &resp)
	if len(resp.Matches) != 2 {
		t.Fatalf("expected cached lists, got %+v", resp.Matches)
	}
}

func TestRefreshMatch(t *testing.T) {
	b := &testutil.StubBackend{MatchItems: []backend.MatchItem{testutil.SampleMatchItem("10", "UPCOMING")}}
	h := newTestHandler(t, b, nil)

	rr := serveMatch(h.MatchByID, http.MethodGet, "10")
	testutil.AssertStatus(t, rr, http.StatusOK)
	before := b.Calls(backend.EndpointLiveMatch)

	rr = serveMatch(h.RefreshMatch, http.MethodPost, "10")
	testutil.AssertStatus(t, rr, http.StatusOK)
	var m matches.Match
	testutil.DecodeJSON(t, rr, &m)
	if m.ID != "10" {
		t.Fatalf("unexpected match %+v", m)
	}
	if got := b.Calls(backend.EndpointLiveMatch); got != before+1 {
		t.Fatalf("expected refresh to bypass the cache, live calls %d -> %d", before, got)
	}

	rr = serveMatch(h.RefreshMatch, http.MethodPost, "404404")
	testutil.AssertJSONError(t, rr, http.StatusNotFound, "match not found")

	rr = serveMatch(h.RefreshMatch, http.MethodPost, " ")
	testutil.AssertStatus(t, rr, http.StatusBadRequest)
}

func TestSchedulesValidatesQuery(t *testing.T) {
	h := newTestHandler(t, &testutil.StubBackend{}, nil)

	rr := testutil.Serve(http.HandlerFunc(h.Schedules), http.MethodGet, "/api/schedules?date_from=15-01-2024", nil)
	testutil.AssertStatus(t, rr, http.StatusBadRequest)

	rr = testutil.Serve(http.HandlerFunc(h.Schedules), http.MethodGet, "/api/schedules?status=nope", nil)
	testutil.AssertStatus(t, rr, http.StatusBadRequest)

	rr = testutil.Serve(http.HandlerFunc(h.Schedules), http.MethodGet, "/api/schedules?date_from=2024-01-15&status=live", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)
}

func TestMatchByID(t *testing.T) {
	b := &testutil.StubBackend{MatchItems: []backend.MatchItem{testutil.SampleMatchItem("10", "UPCOMING")}}
	h := newTestHandler(t, b, nil)

	rr := serveMatch(h.MatchByID, http.MethodGet, "10")
	testutil.AssertStatus(t, rr, http.StatusOK)
	var m matches.Match
	testutil.DecodeJSON(t, rr, &m)
	if m.ID != "10" || m.Status != matches.StatusUpcoming {
		t.Fatalf("unexpected match %+v", m)
	}

	rr = serveMatch(h.MatchByID, http.MethodGet, "404404")
	testutil.AssertJSONError(t, rr, http.StatusNotFound, "match not found")
}

func TestMatchIDValidation(t *testing.T) {
	h := newTestHandler(t, &testutil.StubBackend{}, nil)

	rr := serveMatch(h.MatchByID, http.MethodGet, " ")
	testutil.AssertJSONError(t, rr, http.StatusBadRequest, "invalid match id")
}

func TestLiveMatchAbsentIsNotFound(t *testing.T) {
	h := newTestHandler(t, &testutil.StubBackend{}, nil)

	rr := serveMatch(h.LiveMatch, http.MethodGet, "1")
	testutil.AssertStatus(t, rr, http.StatusNotFound)
}

func TestScorecardAbsentIsNotFound(t *testing.T) {
	h := newTestHandler(t, &testutil.StubBackend{}, nil)

	rr := serveMatch(h.Scorecard, http.MethodGet, "1")
	testutil.AssertJSONError(t, rr, http.StatusNotFound, "scorecard not available")
}

func TestCommentaryAndEventsFallBack(t *testing.T) {
	h := newTestHandler(t, &testutil.StubBackend{Down: true}, nil)

	rr := serveMatch(h.Commentary, http.MethodGet, "66709")
	testutil.AssertStatus(t, rr, http.StatusOK)
	var balls []map[string]any
	testutil.DecodeJSON(t, rr, &balls)
	if len(balls) == 0 {
		t.Fatalf("expected fixture commentary")
	}

	rr = serveMatch(h.Events, http.MethodGet, "66709")
	testutil.AssertStatus(t, rr, http.StatusOK)
	if got := strings.TrimSpace(rr.Body.String()); got != "[]" {
		t.Fatalf("expected empty events array, got %s", got)
	}
}

func TestPrefetchAccepted(t *testing.T) {
	h := newTestHandler(t, &testutil.StubBackend{}, nil)

	rr := serveMatch(h.Prefetch, http.MethodPost, "66709")
	testutil.AssertStatus(t, rr, http.StatusAccepted)
	var body map[string]bool
	testutil.DecodeJSON(t, rr, &body)
	if !body["started"] {
		t.Fatalf("expected prefetch to start")
	}
}

func TestTrendingNewsAndDiscussions(t *testing.T) {
	h := newTestHandler(t, &testutil.StubBackend{Down: true}, nil)

	rr := testutil.Serve(http.HandlerFunc(h.TrendingNews), http.MethodGet, "/api/news/trending", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)
	var items []news.Item
	testutil.DecodeJSON(t, rr, &items)
	if len(items) == 0 {
		t.Fatalf("expected fixture news")
	}

	rr = testutil.Serve(http.HandlerFunc(h.Discussions), http.MethodGet, "/api/discussions?match_id=66709", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)
	var posts []news.Discussion
	testutil.DecodeJSON(t, rr, &posts)
	for _, p := range posts {
		if p.MatchID != "66709" {
			t.Fatalf("expected discussions for 66709 only, got %+v", p)
		}
	}
}

func TestJoinWaitlist(t *testing.T) {
	b := &testutil.StubBackend{}
	h := newTestHandler(t, b, nil)

	rr := testutil.Serve(http.HandlerFunc(h.JoinWaitlist), http.MethodPost, "/api/waitlist", strings.NewReader(`{"email":" fan@example.com "}`))
	testutil.AssertStatus(t, rr, http.StatusOK)
	if len(b.Emails) != 1 || b.Emails[0] != "fan@example.com" {
		t.Fatalf("expected trimmed email submitted, got %v", b.Emails)
	}

	rr = testutil.Serve(http.HandlerFunc(h.JoinWaitlist), http.MethodPost, "/api/waitlist", strings.NewReader(`{"email":"nope"}`))
	testutil.AssertJSONError(t, rr, http.StatusBadRequest, "invalid email address")

	rr = testutil.Serve(http.HandlerFunc(h.JoinWaitlist), http.MethodPost, "/api/waitlist", strings.NewReader(`{`))
	testutil.AssertStatus(t, rr, http.StatusBadRequest)
}

func TestJoinWaitlistBackendErrors(t *testing.T) {
	b := &testutil.StubBackend{WaitlistErr: &backend.APIError{Kind: backend.KindHTTP, Status: http.StatusConflict, Message: "already registered"}}
	h := newTestHandler(t, b, nil)

	rr := testutil.Serve(http.HandlerFunc(h.JoinWaitlist), http.MethodPost, "/api/waitlist", strings.NewReader(`{"email":"fan@example.com"}`))
	testutil.AssertStatus(t, rr, http.StatusConflict)

	b.WaitlistErr = testutil.ErrUnreachable
	rr = testutil.Serve(http.HandlerFunc(h.JoinWaitlist), http.MethodPost, "/api/waitlist", strings.NewReader(`{"email":"fan@example.com"}`))
	testutil.AssertStatus(t, rr, http.StatusBadGateway)
}

func TestNotFoundAndMethodNotAllowed(t *testing.T) {
	h := newTestHandler(t, &testutil.StubBackend{}, nil)

	rr := testutil.Serve(http.HandlerFunc(h.NotFound), http.MethodGet, "/nope", nil)
	testutil.AssertStatus(t, rr, http.StatusNotFound)
	rr = testutil.Serve(http.HandlerFunc(h.MethodNotAllowed), http.MethodDelete, "/health", nil)
	testutil.AssertStatus(t, rr, http.StatusMethodNotAllowed)
}
