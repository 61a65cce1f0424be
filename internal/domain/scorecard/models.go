package scorecard

import (
	"strings"

	"github.com/preston-bernstein/cricket-data-service/internal/domain/teams"
)

const dismissalDidNotBat = "did not bat"

// Entry is one batter's line on the scorecard.
type Entry struct {
	Batsman    string  `json:"batsman"`
	Dismissal  string  `json:"dismissal"`
	Runs       int     `json:"runs"`
	Balls      int     `json:"balls"`
	Fours      int     `json:"fours"`
	Sixes      int     `json:"sixes"`
	StrikeRate float64 `json:"strikeRate"`
}

// DidNotBat reports whether the entry is a placeholder for a batter who never came in.
// Such rows stay in the data but are skipped when rendering.
func (e Entry) DidNotBat() bool {
	return strings.EqualFold(strings.TrimSpace(e.Dismissal), dismissalDidNotBat)
}

// BowlingFigures is one bowler's line, in order of use.
type BowlingFigures struct {
	Bowler  string  `json:"bowler"`
	Overs   string  `json:"overs"`
	Maidens int     `json:"maidens"`
	Runs    int     `json:"runs"`
	Wickets int     `json:"wickets"`
	Economy float64 `json:"economy"`
	Wides   int     `json:"wides"`
	NoBalls int     `json:"noBalls"`
}

// Extras breaks down runs not scored off the bat.
type Extras struct {
	Byes      int `json:"byes"`
	LegByes   int `json:"legByes"`
	Wides     int `json:"wides"`
	NoBalls   int `json:"noBalls"`
	Penalties int `json:"penalties"`
	Total     int `json:"total"`
}

// Sum returns byes + leg-byes + wides + no-balls + penalties.
func (e Extras) Sum() int {
	return e.Byes + e.LegByes + e.Wides + e.NoBalls + e.Penalties
}

// Normalize returns a copy whose Total equals Sum.
func (e Extras) Normalize() Extras {
	e.Total = e.Sum()
	return e
}

// Total is the aggregate for an innings.
type Total struct {
	Runs    int    `json:"runs"`
	Wickets int    `json:"wickets"`
	Overs   string `json:"overs"`
}

// FullScorecard is the complete scorecard for one team's innings.
type FullScorecard struct {
	Innings       int              `json:"innings"`
	Team          teams.Team       `json:"team"`
	Batting       []Entry          `json:"batting"`
	Bowling       []BowlingFigures `json:"bowling"`
	Extras        Extras           `json:"extras"`
	Total         Total            `json:"total"`
	FallOfWickets []string         `json:"fallOfWickets"`
}

// BattedEntries returns the batting entries excluding "did not bat" rows.
func (s FullScorecard) BattedEntries() []Entry {
	out := make([]Entry, 0, len(s.Batting))
	for _, e := range s.Batting {
		if !e.DidNotBat() {
			out = append(out, e)
		}
	}
	return out
}
