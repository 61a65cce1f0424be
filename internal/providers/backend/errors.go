package backend

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// ErrorKind classifies transport failures.
type ErrorKind string

const (
	// KindNetwork means no response was received. Status is always 0.
	KindNetwork ErrorKind = "network"
	// KindHTTP means the server answered with a non-2xx status.
	KindHTTP ErrorKind = "http"
	// KindDecode means a successful response carried malformed JSON. Status is always 500.
	KindDecode ErrorKind = "decode"
)

// APIError is the typed failure raised by every backend call.
type APIError struct {
	Kind    ErrorKind
	Status  int
	Message string
	// RetryAfter is set from the Retry-After header on 429 responses.
	RetryAfter time.Duration
	cause      error
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.cause
}

func newNetworkError(cause error) *APIError {
	return &APIError{Kind: KindNetwork, Status: 0, Message: networkErrorMessage, cause: cause}
}

func newDecodeError(cause error) *APIError {
	return &APIError{Kind: KindDecode, Status: http.StatusInternalServerError, Message: decodeErrorMessage, cause: cause}
}

func newHTTPError(status int, body string) *APIError {
	msg := body
	if msg == "" {
		msg = fmt.Sprintf("HTTP Error: %d %s", status, http.StatusText(status))
	}
	return &APIError{Kind: KindHTTP, Status: status, Message: msg}
}

// AsAPIError attempts to unwrap an error into an APIError.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsNetwork reports whether err means the backend could not be reached at all.
func IsNetwork(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Kind == KindNetwork
}

// IsNotFound reports whether err is an HTTP 404 from the backend.
func IsNotFound(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Kind == KindHTTP && apiErr.Status == http.StatusNotFound
}

// parseRetryAfter reads a Retry-After header given in seconds. Dates are ignored.
func parseRetryAfter(raw string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
