package matches

import (
	"sort"

	"github.com/preston-bernstein/cricket-data-service/internal/domain/teams"
	"github.com/preston-bernstein/cricket-data-service/internal/timeutil"
)

// Status mirrors the closed set of match lifecycle states.
type Status string

const (
	StatusLive     Status = "LIVE"
	StatusUpcoming Status = "UPCOMING"
	StatusFinished Status = "FINISHED"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusLive, StatusUpcoming, StatusFinished:
		return true
	default:
		return false
	}
}

// Importance ranks how prominently a match should be shown.
type Importance string

const (
	ImportanceHigh   Importance = "HIGH"
	ImportanceMedium Importance = "MEDIUM"
	ImportanceLow    Importance = "LOW"
)

// InningsScore is one team's score for a single innings.
// Overs uses "<over>.<ball>" notation where the fractional part counts balls (0-5).
type InningsScore struct {
	Team     teams.Team `json:"team"`
	Runs     int        `json:"runs"`
	Wickets  int        `json:"wickets"`
	Overs    string     `json:"overs"`
	RunRate  float64    `json:"runRate"`
	Declared bool       `json:"declared,omitempty"`
}

// BatsmanStats describes a batter currently at the crease.
type BatsmanStats struct {
	Name       string  `json:"name"`
	Runs       int     `json:"runs"`
	Balls      int     `json:"balls"`
	Fours      int     `json:"fours"`
	Sixes      int     `json:"sixes"`
	StrikeRate float64 `json:"strikeRate"`
	IsOnStrike bool    `json:"isOnStrike"`
}

// BowlerStats describes the bowler currently in operation.
type BowlerStats struct {
	Name    string  `json:"name"`
	Overs   string  `json:"overs"`
	Maidens int     `json:"maidens"`
	Runs    int     `json:"runs"`
	Wickets int     `json:"wickets"`
	Economy float64 `json:"economy"`
}

// Match is the canonical match shape exposed by the service.
// Innings is ordered chronologically.
type Match struct {
	ID             string         `json:"id"`
	Tournament     string         `json:"tournament"`
	MatchType      string         `json:"matchType"`
	Venue          string         `json:"venue"`
	Status         Status         `json:"status"`
	StatusText     string         `json:"statusText"`
	StartTime      string         `json:"startTime"`
	Team1          teams.Team     `json:"team1"`
	Team2          teams.Team     `json:"team2"`
	Innings        []InningsScore `json:"innings"`
	CurrentBatsmen []BatsmanStats `json:"currentBatsmen,omitempty"`
	CurrentBowler  *BowlerStats   `json:"currentBowler,omitempty"`
	RecentOvers    string         `json:"recentOvers,omitempty"`
	Importance     Importance     `json:"importance,omitempty"`
	Context        string         `json:"context,omitempty"`
}

// IsLive reports whether the match is in progress.
func (m Match) IsLive() bool {
	return m.Status == StatusLive
}

// FindByID returns the match with the given id from list.
func FindByID(list []Match, id string) (Match, bool) {
	for _, m := range list {
		if m.ID == id {
			return m, true
		}
	}
	return Match{}, false
}

// SortForDisplay orders live matches first, then everything else by start time.
// Unparseable start times sort last. The input slice is not modified.
func SortForDisplay(list []Match) []Match {
	sorted := make([]Match, len(list))
	copy(sorted, list)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.IsLive() != b.IsLive() {
			return a.IsLive()
		}
		return startsBefore(a.StartTime, b.StartTime)
	})
	return sorted
}

func startsBefore(a, b string) bool {
	ta, errA := timeutil.ParseInstant(a)
	tb, errB := timeutil.ParseInstant(b)
	switch {
	case errA != nil && errB != nil:
		return false
	case errA != nil:
		return false
	case errB != nil:
		return true
	}
	return ta.Before(tb)
}
