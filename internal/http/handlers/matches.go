package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/preston-bernstein/cricket-data-service/internal/app/matches"
	domainmatches "github.com/preston-bernstein/cricket-data-service/internal/domain/matches"
	"github.com/preston-bernstein/cricket-data-service/internal/logging"
	"github.com/preston-bernstein/cricket-data-service/internal/providers/backend"
)

const dateLayout = "2006-01-02"

type combinedResponse struct {
	Matches  []domainmatches.Match `json:"matches"`
	Live     []domainmatches.Match `json:"live"`
	Upcoming []domainmatches.Match `json:"upcoming"`
}

// Matches returns the resolved match list, optionally filtered by ?team= and ?status=.
func (h *Handler) Matches(w http.ResponseWriter, r *http.Request) {
	status, ok := h.statusParam(w, r)
	if !ok {
		return
	}
	list, _, err := h.matches.Matches(r.Context())
	if err != nil {
		writeFetchError(w, r, err, h.logger)
		return
	}
	list = matches.FilterByStatus(list, status)
	list = matches.FilterByTeam(list, r.URL.Query().Get("team"))
	h.writeList(w, r, list)
}

// AllMatches returns live and upcoming matches merged for display.
func (h *Handler) AllMatches(w http.ResponseWriter, r *http.Request) {
	combined, err := h.matches.AllMatches(r.Context())
	h.writeCombined(w, r, combined, err)
}

// RefreshMatches refetches the live and upcoming lists and returns them merged.
func (h *Handler) RefreshMatches(w http.ResponseWriter, r *http.Request) {
	combined, err := h.matches.RefreshAll(r.Context())
	h.writeCombined(w, r, combined, err)
}

func (h *Handler) writeCombined(w http.ResponseWriter, r *http.Request, combined matches.Combined, err error) {
	if err != nil {
		if len(combined.Matches) == 0 {
			writeFetchError(w, r, err, h.logger)
			return
		}
		logging.Warn(loggerFromContext(r, h.logger), "serving partial match lists", slog.Any("err", err))
	}
	writeJSON(w, http.StatusOK, combinedResponse{
		Matches:  nonNil(combined.Matches),
		Live:     nonNil(combined.Live),
		Upcoming: nonNil(combined.Upcoming),
	}, h.logger)
}

// LiveMatches returns matches in progress.
func (h *Handler) LiveMatches(w http.ResponseWriter, r *http.Request) {
	list, _, err := h.matches.LiveMatches(r.Context())
	if err != nil {
		writeFetchError(w, r, err, h.logger)
		return
	}
	h.writeList(w, r, list)
}

// UpcomingMatches returns scheduled matches.
func (h *Handler) UpcomingMatches(w http.ResponseWriter, r *http.Request) {
	list, _, err := h.matches.UpcomingMatches(r.Context())
	if err != nil {
		writeFetchError(w, r, err, h.logger)
		return
	}
	h.writeList(w, r, list)
}

// Schedules returns schedule rows narrowed by date_from, date_to, league_id, team_id and status.
func (h *Handler) Schedules(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := backend.ScheduleFilter{
		DateFrom: strings.TrimSpace(q.Get("date_from")),
		DateTo:   strings.TrimSpace(q.Get("date_to")),
		LeagueID: strings.TrimSpace(q.Get("league_id")),
		TeamID:   strings.TrimSpace(q.Get("team_id")),
	}
	for _, d := range []string{filter.DateFrom, filter.DateTo} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(dateLayout, d); err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid date format (expected YYYY-MM-DD)", h.logger)
			return
		}
	}
	status, ok := h.statusParam(w, r)
	if !ok {
		return
	}
	filter.Status = string(status)

	list, _, err := h.matches.Schedules(r.Context(), filter)
	if err != nil {
		writeFetchError(w, r, err, h.logger)
		return
	}
	h.writeList(w, r, list)
}

// MatchByID returns a single match, 404 when no source knows it.
func (h *Handler) MatchByID(w http.ResponseWriter, r *http.Request) {
	id, ok := h.matchID(w, r)
	if !ok {
		return
	}
	detail, _, err := h.matches.Match(r.Context(), id)
	if err != nil {
		writeFetchError(w, r, err, h.logger)
		return
	}
	if !detail.Found {
		writeError(w, r, http.StatusNotFound, "match not found", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, detail.Match, h.logger)
}

// RefreshMatch refetches a single match, serving the cached copy with a warning when
// the request fails.
func (h *Handler) RefreshMatch(w http.ResponseWriter, r *http.Request) {
	id, ok := h.matchID(w, r)
	if !ok {
		return
	}
	detail, err := h.matches.RefreshMatch(r.Context(), id)
	if err != nil {
		if !detail.Found {
			writeFetchError(w, r, err, h.logger)
			return
		}
		logging.Warn(loggerFromContext(r, h.logger), "refresh failed; serving cached match",
			slog.String(logging.FieldMatchID, id),
			slog.Any("err", err),
		)
	}
	if !detail.Found {
		writeError(w, r, http.StatusNotFound, "match not found", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, detail.Match, h.logger)
}

// LiveMatch returns the raw live delta for a match.
func (h *Handler) LiveMatch(w http.ResponseWriter, r *http.Request) {
	id, ok := h.matchID(w, r)
	if !ok {
		return
	}
	live, _, err := h.matches.LiveMatch(r.Context(), id)
	if err != nil {
		writeFetchError(w, r, err, h.logger)
		return
	}
	if live == nil {
		writeError(w, r, http.StatusNotFound, "live data not available", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, live, h.logger)
}

// Commentary returns ball-by-ball commentary for a match.
func (h *Handler) Commentary(w http.ResponseWriter, r *http.Request) {
	id, ok := h.matchID(w, r)
	if !ok {
		return
	}
	balls, _, err := h.matches.Commentary(r.Context(), id)
	if err != nil {
		writeFetchError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(balls), h.logger)
}

// Events returns notable events for a match.
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	id, ok := h.matchID(w, r)
	if !ok {
		return
	}
	events, _, err := h.matches.Events(r.Context(), id)
	if err != nil {
		writeFetchError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(events), h.logger)
}

// Scorecard returns the full scorecard, 404 while it is not yet available.
func (h *Handler) Scorecard(w http.ResponseWriter, r *http.Request) {
	id, ok := h.matchID(w, r)
	if !ok {
		return
	}
	card, _, err := h.matches.Scorecard(r.Context(), id)
	if err != nil {
		writeFetchError(w, r, err, h.logger)
		return
	}
	if card == nil {
		writeError(w, r, http.StatusNotFound, "scorecard not available", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, card, h.logger)
}

// Prefetch warms a match detail in the background.
func (h *Handler) Prefetch(w http.ResponseWriter, r *http.Request) {
	id, ok := h.matchID(w, r)
	if !ok {
		return
	}
	started := h.matches.PrefetchMatch(id)
	writeJSON(w, http.StatusAccepted, map[string]bool{"started": started}, h.logger)
}

func (h *Handler) statusParam(w http.ResponseWriter, r *http.Request) (domainmatches.Status, bool) {
	raw := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("status")))
	if raw == "" {
		return "", true
	}
	status := domainmatches.Status(raw)
	if !status.Valid() {
		writeError(w, r, http.StatusBadRequest, "invalid status (expected LIVE, UPCOMING or FINISHED)", h.logger)
		return "", false
	}
	return status, true
}

func (h *Handler) writeList(w http.ResponseWriter, r *http.Request, list []domainmatches.Match) {
	logging.Debug(loggerFromContext(r, h.logger), "served matches", slog.Int(logging.FieldCount, len(list)))
	writeJSON(w, http.StatusOK, nonNil(list), h.logger)
}

func nonNil[T any](list []T) []T {
	if list == nil {
		return []T{}
	}
	return list
}
