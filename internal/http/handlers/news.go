package handlers

import (
	"net/http"
	"strings"
)

// TrendingNews returns the latest articles.
func (h *Handler) TrendingNews(w http.ResponseWriter, r *http.Request) {
	items, _, err := h.news.TrendingNews(r.Context())
	if err != nil {
		writeFetchError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(items), h.logger)
}

// Discussions returns fan posts, optionally for ?match_id=.
func (h *Handler) Discussions(w http.ResponseWriter, r *http.Request) {
	matchID := strings.TrimSpace(r.URL.Query().Get("match_id"))
	posts, _, err := h.news.Discussions(r.Context(), matchID)
	if err != nil {
		writeFetchError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(posts), h.logger)
}
