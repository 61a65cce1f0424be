package handlers

import (
	"net/http"

	"github.com/cockroachdb/errors"

	"github.com/preston-bernstein/cricket-data-service/internal/app/waitlist"
	"github.com/preston-bernstein/cricket-data-service/internal/providers/backend"
)

type waitlistRequest struct {
	Email string `json:"email"`
}

// JoinWaitlist submits an email address to the waitlist.
func (h *Handler) JoinWaitlist(w http.ResponseWriter, r *http.Request) {
	var req waitlistRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}

	resp, err := h.waitlist.Submit(r.Context(), req.Email)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, resp, h.logger)
	case errors.Is(err, waitlist.ErrInvalidEmail):
		writeError(w, r, http.StatusBadRequest, "invalid email address", h.logger)
	default:
		if apiErr, ok := backend.AsAPIError(err); ok && apiErr.Kind == backend.KindHTTP && apiErr.Status < http.StatusInternalServerError {
			writeError(w, r, apiErr.Status, apiErr.Message, h.logger)
			return
		}
		writeJSON(w, http.StatusBadGateway, errorBody{Error: "waitlist submission failed", RequestID: requestID(r)}, h.logger)
	}
}
