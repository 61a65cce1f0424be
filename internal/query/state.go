package query

import (
	"fmt"
	"time"
)

// Key identifies a cache entry. Kind groups keys for metrics; ID narrows to one resource.
type Key struct {
	Kind string
	ID   string
}

func (k Key) String() string {
	if k.ID == "" {
		return k.Kind
	}
	return fmt.Sprintf("%s:%s", k.Kind, k.ID)
}

// State is the read model for one key.
type State struct {
	Data any
	Err  error
	// IsLoading is true only while the first request for the key is pending.
	IsLoading bool
	// IsFetching is true whenever a request is pending, including background refreshes.
	IsFetching     bool
	UpdatedAt      time.Time
	ErrorUpdatedAt time.Time
	// FailureCount is the number of failed attempts in the most recent settled request.
	FailureCount int
}

// HasData reports whether a request for the key has ever succeeded.
func (s State) HasData() bool {
	return !s.UpdatedAt.IsZero()
}

// Typed extracts Data as T.
func Typed[T any](s State) (T, bool) {
	v, ok := s.Data.(T)
	return v, ok
}
