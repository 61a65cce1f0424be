package backend

import (
	"bytes"
	"net/url"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"

	"github.com/preston-bernstein/cricket-data-service/internal/domain/scorecard"
)

// ID accepts identifiers encoded as JSON strings or numbers.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := sonic.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	if _, err := strconv.ParseFloat(string(data), 64); err != nil {
		return errors.Newf("invalid id %q", data)
	}
	*id = ID(data)
	return nil
}

func (id ID) String() string {
	return string(id)
}

// TeamPayload is the raw team object embedded in match and schedule items.
type TeamPayload struct {
	ID        ID     `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"short_name,omitempty"`
	LogoURL   string `json:"logo_url,omitempty"`
}

// TeamsPayload pairs the home and away sides.
type TeamsPayload struct {
	Home TeamPayload `json:"home"`
	Away TeamPayload `json:"away"`
}

type LeaguePayload struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

type VenuePayload struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
	City string `json:"city,omitempty"`
}

// ScheduleItem is one row of GET /schedules.
type ScheduleItem struct {
	MatchID   ID            `json:"match_id"`
	SeasonID  ID            `json:"season_id"`
	League    LeaguePayload `json:"league"`
	StartTime string        `json:"start_time"`
	Venue     VenuePayload  `json:"venue"`
	Teams     TeamsPayload  `json:"teams"`
	Status    string        `json:"status"`
	Format    string        `json:"format"`
	Stage     string        `json:"stage,omitempty"`
}

// MatchItem is the shape returned by the match list and detail routes.
type MatchItem struct {
	MatchID   ID           `json:"match_id"`
	Teams     TeamsPayload `json:"teams"`
	Status    string       `json:"status"`
	Result    string       `json:"result,omitempty"`
	StartTime string       `json:"start_time"`
	Format    string       `json:"format"`
}

type MatchesResponse struct {
	Matches []MatchItem `json:"matches"`
}

type SchedulesResponse struct {
	Schedules []ScheduleItem `json:"schedules"`
}

type LiveScore struct {
	Runs    int     `json:"runs"`
	Wickets int     `json:"wickets"`
	Overs   float64 `json:"overs"`
}

// CurrentInnings is the in-progress innings carried by a live update.
type CurrentInnings struct {
	BattingTeamID   ID        `json:"batting_team_id"`
	Score           LiveScore `json:"score"`
	RunRate         float64   `json:"run_rate"`
	Target          *int      `json:"target,omitempty"`
	RequiredRunRate *float64  `json:"required_run_rate,omitempty"`
}

// LiveMatchResponse is the delta returned by GET /matches/{id}/live.
type LiveMatchResponse struct {
	MatchID        ID              `json:"match_id,omitempty"`
	Status         string          `json:"status"`
	Stage          string          `json:"stage,omitempty"`
	CurrentInnings *CurrentInnings `json:"current_innings,omitempty"`
}

type NewsItem struct {
	NewsID      ID     `json:"news_id"`
	Title       string `json:"title"`
	Summary     string `json:"summary"`
	Source      string `json:"source"`
	PublishedAt string `json:"published_at"`
	ImageURL    string `json:"image_url,omitempty"`
}

// CommentaryItem is one delivery as the backend reports it.
// Runs is only set when the backend supplies an explicit value.
type CommentaryItem struct {
	CommentaryID ID     `json:"commentary_id"`
	Over         string `json:"over"`
	EventType    string `json:"event_type"`
	Text         string `json:"text"`
	Timestamp    string `json:"timestamp"`
	Runs         *int   `json:"runs,omitempty"`
}

type EventItem struct {
	EventID   ID     `json:"event_id"`
	Type      string `json:"type"`
	TeamID    ID     `json:"team_id"`
	PlayerID  ID     `json:"player_id"`
	Over      string `json:"over"`
	Timestamp string `json:"timestamp"`
}

// ScorecardResponse is served by the backend already in display shape.
type ScorecardResponse scorecard.FullScorecard

type WaitlistRequest struct {
	Email string `json:"email"`
}

type WaitlistResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ScheduleFilter narrows GET /schedules. Empty fields are omitted.
type ScheduleFilter struct {
	DateFrom string
	DateTo   string
	LeagueID string
	TeamID   string
	Status   string
}

// Values encodes the filter as query parameters.
func (f ScheduleFilter) Values() url.Values {
	v := url.Values{}
	set := func(key, value string) {
		if value != "" {
			v.Set(key, value)
		}
	}
	set("date_from", f.DateFrom)
	set("date_to", f.DateTo)
	set("league_id", f.LeagueID)
	set("team_id", f.TeamID)
	set("status", f.Status)
	return v
}

// IsZero reports whether no filter field is set.
func (f ScheduleFilter) IsZero() bool {
	return f == ScheduleFilter{}
}
