package backend

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"

	"github.com/preston-bernstein/cricket-data-service/internal/metrics"
)

// Config controls how the client reaches the cricket backend.
type Config struct {
	// BaseURL is prefixed to every route. Empty means same origin.
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
	// RateLimit caps outbound requests per second; zero disables limiting.
	RateLimit float64
	RateBurst int
	Metrics   *metrics.Recorder
}

// Client issues requests against the cricket backend REST API and returns raw payloads.
type Client struct {
	baseURL    string
	httpClient httpDoer
	metrics    *metrics.Recorder
}

// NewClient constructs a backend client with the provided configuration.
func NewClient(cfg Config) *Client {
	return &Client{
		baseURL:    normalizeBaseURL(cfg.BaseURL),
		httpClient: withRateLimit(resolveHTTPClient(cfg.HTTPClient, cfg.Timeout), cfg.RateLimit, cfg.RateBurst),
		metrics:    cfg.Metrics,
	}
}

// Name identifies the client in logs and metrics.
func (c *Client) Name() string {
	return providerName
}

// LiveMatches fetches GET /matches/live.
func (c *Client) LiveMatches(ctx context.Context) ([]MatchItem, error) {
	var out []MatchItem
	_, err := c.request(ctx, EndpointLiveMatches, http.MethodGet, "/matches/live", nil, &out)
	return out, err
}

// UpcomingMatches fetches GET /matches/upcoming.
func (c *Client) UpcomingMatches(ctx context.Context) ([]MatchItem, error) {
	var out []MatchItem
	_, err := c.request(ctx, EndpointUpcomingMatches, http.MethodGet, "/matches/upcoming", nil, &out)
	return out, err
}

// Matches fetches GET /matches.
func (c *Client) Matches(ctx context.Context) (MatchesResponse, error) {
	var out MatchesResponse
	_, err := c.request(ctx, EndpointMatches, http.MethodGet, "/matches", nil, &out)
	return out, err
}

// Schedules fetches GET /schedules with the filter encoded as query parameters.
func (c *Client) Schedules(ctx context.Context, filter ScheduleFilter) (SchedulesResponse, error) {
	path := "/schedules"
	if q := filter.Values().Encode(); q != "" {
		path += "?" + q
	}
	var out SchedulesResponse
	_, err := c.request(ctx, EndpointSchedules, http.MethodGet, path, nil, &out)
	return out, err
}

// MatchByID fetches GET /matches/{id}. A 404 or empty body yields nil without error.
func (c *Client) MatchByID(ctx context.Context, id string) (*MatchItem, error) {
	var out MatchItem
	found, err := c.request(ctx, EndpointMatchByID, http.MethodGet, matchPath(id, ""), nil, &out)
	if IsNotFound(err) {
		return nil, nil
	}
	if err != nil || !found {
		return nil, err
	}
	return &out, nil
}

// LiveMatch fetches GET /matches/{id}/live. An empty body yields nil without error.
func (c *Client) LiveMatch(ctx context.Context, id string) (*LiveMatchResponse, error) {
	var out LiveMatchResponse
	found, err := c.request(ctx, EndpointLiveMatch, http.MethodGet, matchPath(id, "/live"), nil, &out)
	if err != nil || !found {
		return nil, err
	}
	return &out, nil
}

// Commentary fetches GET /matches/{id}/commentary.
func (c *Client) Commentary(ctx context.Context, id string) ([]CommentaryItem, error) {
	var out []CommentaryItem
	_, err := c.request(ctx, EndpointCommentary, http.MethodGet, matchPath(id, "/commentary"), nil, &out)
	return out, err
}

// Events fetches GET /matches/{id}/events.
func (c *Client) Events(ctx context.Context, id string) ([]EventItem, error) {
	var out []EventItem
	_, err := c.request(ctx, EndpointEvents, http.MethodGet, matchPath(id, "/events"), nil, &out)
	return out, err
}

// Scorecard fetches GET /matches/{id}/scorecard. A 404 or empty body yields nil without error.
func (c *Client) Scorecard(ctx context.Context, id string) (*ScorecardResponse, error) {
	var out ScorecardResponse
	found, err := c.request(ctx, EndpointScorecard, http.MethodGet, matchPath(id, "/scorecard"), nil, &out)
	if IsNotFound(err) {
		return nil, nil
	}
	if err != nil || !found {
		return nil, err
	}
	return &out, nil
}

// TrendingNews fetches GET /news/trending.
func (c *Client) TrendingNews(ctx context.Context) ([]NewsItem, error) {
	var out []NewsItem
	_, err := c.request(ctx, EndpointTrendingNews, http.MethodGet, "/news/trending", nil, &out)
	return out, err
}

// SubmitWaitlistEmail posts the email to /waitlist/email.
func (c *Client) SubmitWaitlistEmail(ctx context.Context, email string) (WaitlistResponse, error) {
	var out WaitlistResponse
	_, err := c.request(ctx, EndpointWaitlist, http.MethodPost, "/waitlist/email", WaitlistRequest{Email: email}, &out)
	return out, err
}

// Health sends HEAD /health. Any response, error statuses included, means the backend
// is reachable; only a network failure reports false.
func (c *Client) Health(ctx context.Context) bool {
	_, err := c.request(ctx, EndpointHealth, http.MethodHead, "/health", nil, nil)
	return !IsNetwork(err)
}

func matchPath(id, suffix string) string {
	return "/matches/" + url.PathEscape(id) + suffix
}

// request performs one call and decodes the body into out.
// It reports false with a nil error when the successful response body is empty.
func (c *Client) request(ctx context.Context, endpoint, method, path string, body, out any) (bool, error) {
	start := time.Now()
	found, err := c.do(ctx, method, path, body, out)
	c.metrics.RecordProviderAttempt(endpoint, time.Since(start), err)
	if apiErr, ok := AsAPIError(err); ok && apiErr.Status == http.StatusTooManyRequests {
		c.metrics.RecordRateLimit(endpoint, apiErr.RetryAfter)
	}
	return found, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) (bool, error) {
	var reader io.Reader
	if body != nil {
		payload, err := sonic.Marshal(body)
		if err != nil {
			return false, errors.Wrapf(err, "encode %s %s", method, path)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return false, newNetworkError(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, newNetworkError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		httpErr := newHTTPError(resp.StatusCode, string(bytes.TrimSpace(text)))
		if resp.StatusCode == http.StatusTooManyRequests {
			httpErr.RetryAfter = parseRetryAfter(resp.Header.Get("Retry-After"))
		}
		return false, httpErr
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, newNetworkError(err)
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return false, nil
	}
	if out == nil {
		return true, nil
	}
	if err := sonic.Unmarshal(trimmed, out); err != nil {
		return false, newDecodeError(err)
	}
	return true, nil
}
