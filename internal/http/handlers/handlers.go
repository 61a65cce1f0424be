package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/preston-bernstein/cricket-data-service/internal/app/matches"
	"github.com/preston-bernstein/cricket-data-service/internal/app/news"
	"github.com/preston-bernstein/cricket-data-service/internal/app/waitlist"
	"github.com/preston-bernstein/cricket-data-service/internal/poller"
)

const backendCheckTimeout = 2 * time.Second

// BackendCheck reports whether the upstream backend answers at all.
type BackendCheck func(ctx context.Context) bool

// StatusFunc reports the health of the live-list poller. ok is false until polling has started.
type StatusFunc func() (status poller.Status, ok bool)

// Handler wires HTTP routes to the application services.
type Handler struct {
	matches  *matches.Service
	news     *news.Service
	waitlist *waitlist.Service
	logger   *slog.Logger
	statusFn StatusFunc
	backend  BackendCheck
}

// NewHandler constructs a Handler. A nil statusFn always reports ready.
func NewHandler(matchSvc *matches.Service, newsSvc *news.Service, waitlistSvc *waitlist.Service, logger *slog.Logger, statusFn StatusFunc) *Handler {
	return &Handler{
		matches:  matchSvc,
		news:     newsSvc,
		waitlist: waitlistSvc,
		logger:   logger,
		statusFn: statusFn,
	}
}

// WithBackendCheck makes Health report upstream reachability.
func (h *Handler) WithBackendCheck(check BackendCheck) *Handler {
	h.backend = check
	return h
}

// Health reports the service health. The service stays healthy while the backend is
// unreachable since reads fall back to fixture data.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := r.Context().Err(); err != nil {
		writeError(w, r, http.StatusServiceUnavailable, "shutting down", h.logger)
		return
	}
	resp := map[string]string{"status": "ok"}
	if h.backend != nil {
		ctx, cancel := context.WithTimeout(r.Context(), backendCheckTimeout)
		defer cancel()
		resp["backend"] = "reachable"
		if !h.backend(ctx) {
			resp["backend"] = "unreachable"
		}
	}
	writeJSON(w, http.StatusOK, resp, h.logger)
}

// Ready reports readiness for traffic (e.g., for Kubernetes readiness checks).
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.statusFn == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"}, h.logger)
		return
	}
	status, ok := h.statusFn()
	if ok && status.IsReady() {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"}, h.logger)
		return
	}
	msg := status.LastError
	if msg == "" {
		msg = "not ready"
	}
	writeError(w, r, http.StatusServiceUnavailable, msg, h.logger)
}

// NotFound is the router's fallback for unknown paths.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusNotFound, "not found", h.logger)
}

// MethodNotAllowed is the router's fallback for known paths with the wrong method.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed", h.logger)
}

// matchID reads and validates the {id} route parameter, writing a 400 when invalid.
func (h *Handler) matchID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" || strings.ContainsAny(id, " \t/") {
		writeError(w, r, http.StatusBadRequest, "invalid match id", h.logger)
		return "", false
	}
	return id, true
}
