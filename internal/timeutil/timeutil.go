package timeutil

import (
	"time"

	"github.com/cockroachdb/errors"
)

// DateLayout defines the canonical date format (YYYY-MM-DD).
const DateLayout = "2006-01-02"

// instantLayouts lists the timestamp shapes the backend is known to emit.
// Naive timestamps (no offset) are interpreted as UTC.
var instantLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseDate parses a YYYY-MM-DD date string.
func ParseDate(value string) (time.Time, error) {
	return time.Parse(DateLayout, value)
}

// FormatDate formats a time as YYYY-MM-DD in its current location.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseInstant parses an ISO-8601 instant in any of the accepted layouts.
func ParseInstant(value string) (time.Time, error) {
	for _, layout := range instantLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, errors.Newf("unrecognized timestamp %q", value)
}

// FormatInstant formats t as an RFC3339 UTC instant.
func FormatInstant(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
