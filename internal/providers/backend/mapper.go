package backend

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/preston-bernstein/cricket-data-service/internal/domain/commentary"
	"github.com/preston-bernstein/cricket-data-service/internal/domain/matches"
	"github.com/preston-bernstein/cricket-data-service/internal/domain/news"
	"github.com/preston-bernstein/cricket-data-service/internal/domain/scorecard"
	"github.com/preston-bernstein/cricket-data-service/internal/domain/teams"
)

// ErrMissingIdentity is returned when a payload lacks its match id.
var ErrMissingIdentity = errors.New("backend: payload missing match id")

// AdaptReport summarizes a list conversion.
type AdaptReport struct {
	Skipped         int
	UnknownStatuses []string
}

func (r *AdaptReport) observe(raw string) {
	if !IsKnownStatus(raw) {
		r.UnknownStatuses = append(r.UnknownStatuses, raw)
	}
}

// AdaptTeam maps a raw team to the normalized shape.
func AdaptTeam(t TeamPayload) teams.Team {
	short := t.ShortName
	if short == "" {
		short = teams.ShortNameFor(t.Name)
	}
	return teams.Team{
		ID:        t.ID.String(),
		Name:      t.Name,
		ShortName: short,
		FlagURL:   t.LogoURL,
	}
}

// IsKnownStatus reports whether raw is one of the three status strings the backend should send.
func IsKnownStatus(raw string) bool {
	return matches.Status(raw).Valid()
}

// AdaptStatus maps a backend status string onto the closed set. Anything unknown is UPCOMING.
func AdaptStatus(raw string) matches.Status {
	if s := matches.Status(raw); s.Valid() {
		return s
	}
	return matches.StatusUpcoming
}

// AdaptScheduleToMatch maps a schedule row.
func AdaptScheduleToMatch(s ScheduleItem) (matches.Match, error) {
	if s.MatchID == "" {
		return matches.Match{}, ErrMissingIdentity
	}
	statusText := s.Status
	if s.Status == string(matches.StatusLive) {
		statusText = inProgressText
	}
	return matches.Match{
		ID:         s.MatchID.String(),
		Tournament: s.League.Name,
		MatchType:  s.Format,
		Venue:      s.Venue.Name,
		Status:     AdaptStatus(s.Status),
		StatusText: statusText,
		StartTime:  s.StartTime,
		Team1:      AdaptTeam(s.Teams.Home),
		Team2:      AdaptTeam(s.Teams.Away),
		Innings:    []matches.InningsScore{},
		Importance: matches.ImportanceMedium,
		Context:    s.Stage,
	}, nil
}

// AdaptMatchItemToMatch maps a match-list row. Tournament and venue are not carried by this shape.
func AdaptMatchItemToMatch(m MatchItem) (matches.Match, error) {
	if m.MatchID == "" {
		return matches.Match{}, ErrMissingIdentity
	}
	statusText := m.Result
	if statusText == "" {
		statusText = m.Status
	}
	return matches.Match{
		ID:         m.MatchID.String(),
		MatchType:  m.Format,
		Status:     AdaptStatus(m.Status),
		StatusText: statusText,
		StartTime:  m.StartTime,
		Team1:      AdaptTeam(m.Teams.Home),
		Team2:      AdaptTeam(m.Teams.Away),
		Innings:    []matches.InningsScore{},
		Importance: matches.ImportanceMedium,
	}, nil
}

// AdaptMatchItems maps a list, skipping rows without an id.
func AdaptMatchItems(items []MatchItem) ([]matches.Match, AdaptReport) {
	var report AdaptReport
	out := make([]matches.Match, 0, len(items))
	for _, item := range items {
		m, err := AdaptMatchItemToMatch(item)
		if err != nil {
			report.Skipped++
			continue
		}
		report.observe(item.Status)
		out = append(out, m)
	}
	return out, report
}

// AdaptSchedules maps schedule rows, skipping rows without an id.
func AdaptSchedules(items []ScheduleItem) ([]matches.Match, AdaptReport) {
	var report AdaptReport
	out := make([]matches.Match, 0, len(items))
	for _, item := range items {
		m, err := AdaptScheduleToMatch(item)
		if err != nil {
			report.Skipped++
			continue
		}
		report.observe(item.Status)
		out = append(out, m)
	}
	return out, report
}

// BattingTeamKnown reports whether the live payload's batting team id matches either side.
// When it does not, EnhanceMatchWithLiveData attributes the innings to team2.
func BattingTeamKnown(m matches.Match, live LiveMatchResponse) bool {
	if live.CurrentInnings == nil {
		return true
	}
	id := live.CurrentInnings.BattingTeamID.String()
	return id == m.Team1.ID || id == m.Team2.ID
}

// EnhanceMatchWithLiveData overlays a live update onto m and returns the merged copy.
// Without a current innings only status and statusText change. With one, the batting
// team's innings entry is replaced in place or appended; other entries are kept.
func EnhanceMatchWithLiveData(m matches.Match, live LiveMatchResponse) matches.Match {
	out := m
	out.Status = AdaptStatus(live.Status)

	cur := live.CurrentInnings
	if cur == nil {
		if live.Stage != "" {
			out.StatusText = live.Stage
		}
		return out
	}

	batting := m.Team2
	if cur.BattingTeamID.String() == m.Team1.ID {
		batting = m.Team1
	}
	score := matches.InningsScore{
		Team:    batting,
		Runs:    cur.Score.Runs,
		Wickets: cur.Score.Wickets,
		Overs:   strconv.FormatFloat(cur.Score.Overs, 'f', -1, 64),
		RunRate: cur.RunRate,
	}

	innings := make([]matches.InningsScore, len(m.Innings), len(m.Innings)+1)
	copy(innings, m.Innings)
	replaced := false
	for i := range innings {
		if innings[i].Team.ID == batting.ID {
			innings[i] = score
			replaced = true
			break
		}
	}
	if !replaced {
		innings = append(innings, score)
	}
	out.Innings = innings

	out.StatusText = live.Stage
	if out.StatusText == "" {
		out.StatusText = inProgressText
	}
	if cur.Target != nil && *cur.Target != 0 {
		out.Context = fmt.Sprintf("Target: %d", *cur.Target)
		if cur.RequiredRunRate != nil && *cur.RequiredRunRate != 0 {
			out.Context += fmt.Sprintf(" (RRR: %.2f)", *cur.RequiredRunRate)
		}
	}
	return out
}

// AdaptNewsItem maps a trending news row. The backend provides no link or category.
func AdaptNewsItem(n NewsItem) news.Item {
	return news.Item{
		ID:          n.NewsID.String(),
		Title:       n.Title,
		Summary:     n.Summary,
		Source:      n.Source,
		URL:         "#",
		PublishedAt: n.PublishedAt,
		ImageURL:    n.ImageURL,
		Category:    news.CategoryNews,
	}
}

// AdaptNewsItems maps a list of news rows.
func AdaptNewsItems(items []NewsItem) []news.Item {
	out := make([]news.Item, 0, len(items))
	for _, item := range items {
		out = append(out, AdaptNewsItem(item))
	}
	return out
}

// AdaptCommentaryItem maps one delivery. Runs falls back to 6/4/0 from the event type
// only when the backend omits an explicit value.
func AdaptCommentaryItem(c CommentaryItem) commentary.Ball {
	eventType := strings.ToUpper(strings.TrimSpace(c.EventType))
	isSix := eventType == "SIX"
	isFour := eventType == "FOUR"

	runs := 0
	switch {
	case c.Runs != nil:
		runs = *c.Runs
	case isSix:
		runs = 6
	case isFour:
		runs = 4
	}

	return commentary.Ball{
		ID:          c.CommentaryID.String(),
		Over:        c.Over,
		Ball:        ballInOver(c.Over),
		Runs:        runs,
		IsWicket:    eventType == "WICKET",
		IsBoundary:  isFour,
		IsSix:       isSix,
		Description: c.Text,
		Timestamp:   c.Timestamp,
	}
}

// AdaptCommentary maps a commentary list preserving order.
func AdaptCommentary(items []CommentaryItem) []commentary.Ball {
	out := make([]commentary.Ball, 0, len(items))
	for _, item := range items {
		out = append(out, AdaptCommentaryItem(item))
	}
	return out
}

// ballInOver parses the leading digits after the dot in "<over>.<ball>"; 0 when absent.
func ballInOver(over string) int {
	_, frac, ok := strings.Cut(over, ".")
	if !ok {
		return 0
	}
	end := 0
	for end < len(frac) && frac[end] >= '0' && frac[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(frac[:end])
	if err != nil {
		return 0
	}
	return n
}

// AdaptEventItem maps a match event; the type is lower-cased.
func AdaptEventItem(e EventItem) commentary.Event {
	return commentary.Event{
		ID:        e.EventID.String(),
		Type:      strings.ToLower(e.Type),
		TeamID:    e.TeamID.String(),
		PlayerID:  e.PlayerID.String(),
		Over:      e.Over,
		Timestamp: e.Timestamp,
	}
}

// AdaptEvents maps a list of events preserving order.
func AdaptEvents(items []EventItem) []commentary.Event {
	out := make([]commentary.Event, 0, len(items))
	for _, item := range items {
		out = append(out, AdaptEventItem(item))
	}
	return out
}

// AdaptScorecard normalizes a scorecard: extras total is recomputed and nil lists become empty.
func AdaptScorecard(s ScorecardResponse) scorecard.FullScorecard {
	out := scorecard.FullScorecard(s)
	out.Extras = out.Extras.Normalize()
	if out.Team.ShortName == "" {
		out.Team.ShortName = teams.ShortNameFor(out.Team.Name)
	}
	if out.Batting == nil {
		out.Batting = []scorecard.Entry{}
	}
	if out.Bowling == nil {
		out.Bowling = []scorecard.BowlingFigures{}
	}
	if out.FallOfWickets == nil {
		out.FallOfWickets = []string{}
	}
	return out
}
