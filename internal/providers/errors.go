package providers

import "github.com/cockroachdb/errors"

var (
	// ErrExhausted is returned when every fallback step failed.
	ErrExhausted = errors.New("all fallback steps failed")
	// ErrMissingPayload marks a successful response that carried no usable body.
	ErrMissingPayload = errors.New("response carried no payload")
)
