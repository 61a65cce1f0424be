package matches

import (
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	domainmatches "github.com/preston-bernstein/cricket-data-service/internal/domain/matches"
	"github.com/preston-bernstein/cricket-data-service/internal/domain/teams"
)

// FilterByTeam keeps matches where either side fuzzily matches term by name, short name or id.
// An empty term returns list unchanged.
func FilterByTeam(list []domainmatches.Match, term string) []domainmatches.Match {
	term = strings.TrimSpace(term)
	if term == "" {
		return list
	}
	out := make([]domainmatches.Match, 0, len(list))
	for _, m := range list {
		if teamMatches(m.Team1, term) || teamMatches(m.Team2, term) {
			out = append(out, m)
		}
	}
	return out
}

func teamMatches(t teams.Team, term string) bool {
	if strings.EqualFold(t.ID, term) || strings.EqualFold(t.ShortName, term) {
		return true
	}
	return t.Name != "" && fuzzy.MatchNormalizedFold(term, t.Name)
}

// FilterByStatus keeps matches with the given status. An empty status returns list unchanged.
func FilterByStatus(list []domainmatches.Match, status domainmatches.Status) []domainmatches.Match {
	if status == "" {
		return list
	}
	out := make([]domainmatches.Match, 0, len(list))
	for _, m := range list {
		if m.Status == status {
			out = append(out, m)
		}
	}
	return out
}
