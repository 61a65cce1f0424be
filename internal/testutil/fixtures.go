package testutil

import (
	"github.com/preston-bernstein/cricket-data-service/internal/domain/matches"
	"github.com/preston-bernstein/cricket-data-service/internal/domain/teams"
	"github.com/preston-bernstein/cricket-data-service/internal/providers/backend"
)

// SampleMatch returns a minimal match fixture with the provided id and status.
func SampleMatch(id string, status matches.Status) matches.Match {
	return matches.Match{
		ID:         id,
		Tournament: "Test Series",
		MatchType:  "TEST",
		Status:     status,
		StartTime:  "2024-01-15T10:00:00Z",
		Team1:      teams.Team{ID: "1", Name: "India", ShortName: "IND"},
		Team2:      teams.Team{ID: "2", Name: "Australia", ShortName: "AUS"},
		Innings:    []matches.InningsScore{},
		Importance: matches.ImportanceMedium,
	}
}

// SampleMatchItem returns a raw backend match with the provided id and status.
func SampleMatchItem(id string, status string) backend.MatchItem {
	return backend.MatchItem{
		MatchID: backend.ID(id),
		Teams: backend.TeamsPayload{
			Home: backend.TeamPayload{ID: "1", Name: "India", ShortName: "IND"},
			Away: backend.TeamPayload{ID: "2", Name: "Australia", ShortName: "AUS"},
		},
		Status:    status,
		StartTime: "2024-01-15T10:00:00Z",
		Format:    "TEST",
	}
}
