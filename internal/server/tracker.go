package server

import (
	"context"

	"github.com/preston-bernstein/cricket-data-service/internal/poller"
)

// Tracker keeps live data polled in the background. *matches.Tracker satisfies it.
type Tracker interface {
	Run(ctx context.Context) error
	LiveStatus() (poller.Status, bool)
	Close()
}
