// Package handler provides the trivial simulated work handler that ships
// with the core (spec.md §1: "the trivial simulated work handler" is an
// external collaborator, not part of the specified surface, but the core
// needs a reference implementation to actually run).
package handler

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SleepHandler simulates job work by sleeping for a fixed duration,
// observing ctx's deadline. It never looks up a payload, matching
// original_source's SleepJobHandler, and its only error is ctx.Err() when
// ctx is done before the sleep elapses.
type SleepHandler struct {
	Sleep time.Duration
}

// NewSleepHandler builds a SleepHandler with the given simulated work
// duration.
func NewSleepHandler(sleep time.Duration) *SleepHandler {
	return &SleepHandler{Sleep: sleep}
}

// Execute blocks for Sleep or until ctx is done, whichever comes first.
func (h *SleepHandler) Execute(ctx context.Context, _ uuid.UUID) error {
	timer := time.NewTimer(h.Sleep)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
