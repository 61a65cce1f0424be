package handlers

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"

	"github.com/preston-bernstein/cricket-data-service/internal/http/middleware"
	"github.com/preston-bernstein/cricket-data-service/internal/http/requestutil"
	"github.com/preston-bernstein/cricket-data-service/internal/logging"
	"github.com/preston-bernstein/cricket-data-service/internal/providers/backend"
	"github.com/preston-bernstein/cricket-data-service/internal/query"
)

const (
	upstreamUnavailableMessage = "upstream unavailable"
	maxBodyBytes               = 1 << 16
)

type errorBody struct {
	Error     string `json:"error"`
	Retryable bool   `json:"retryable,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any, logger *slog.Logger) {
	body, err := sonic.Marshal(payload)
	if err != nil {
		logging.Error(logger, "failed to encode response", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string, logger *slog.Logger) {
	writeJSON(w, status, errorBody{Error: message, RequestID: requestID(r)}, logger)
}

// writeFetchError reports a read that failed after retries. The client may retry.
func writeFetchError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	if errors.Is(err, query.ErrClosed) {
		writeError(w, r, http.StatusServiceUnavailable, "shutting down", logger)
		return
	}
	if errors.Is(err, context.Canceled) && r.Context().Err() != nil {
		return
	}

	message := upstreamUnavailableMessage
	if apiErr, ok := backend.AsAPIError(err); ok && apiErr.Message != "" {
		message = apiErr.Message
	}
	logging.Warn(loggerFromContext(r, logger), "serving fetch error", slog.Any("err", err))
	writeJSON(w, http.StatusBadGateway, errorBody{Error: message, Retryable: true, RequestID: requestID(r)}, logger)
}

func requestID(r *http.Request) string {
	if r == nil {
		return ""
	}
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		return id
	}
	return r.Header.Get(requestutil.HeaderRequestID)
}

func loggerFromContext(r *http.Request, fallback *slog.Logger) *slog.Logger {
	if r == nil {
		return fallback
	}
	return logging.FromContext(r.Context(), fallback)
}

func decodeJSON(r *http.Request, dest any) error {
	if r.Body == nil {
		return errors.New("empty body")
	}
	return sonic.ConfigDefault.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(dest)
}
