package query

import "github.com/cockroachdb/errors"

var (
	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("query cache closed")
	// ErrUnknownKey is returned by Refetch for a key that was never fetched.
	ErrUnknownKey = errors.New("query key not registered")
	// ErrRemoved is returned to callers waiting on a key that was removed or cleared.
	ErrRemoved = errors.New("query removed")
)
