// Package jobevents provides read-only helpers over a job's audit log.
// spec.md treats JobEvent as write-only from the core's perspective but
// never forbids reading it back; this package makes the trail actually
// observable without touching the transition/admission logic (see
// SPEC_FULL.md §9).
package jobevents

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"oss.nandlabs.io/jobctl/internal/domain"
	"oss.nandlabs.io/jobctl/internal/store"
)

// History is a job's audit trail, oldest first.
type History struct {
	JobID  uuid.UUID
	Events []domain.JobEvent
}

// Fetch loads a job's full audit trail via the repository's FetchEvents.
func Fetch(ctx context.Context, repo store.JobRepository, id uuid.UUID) (History, error) {
	events, err := repo.FetchEvents(ctx, id)
	if err != nil {
		return History{}, err
	}
	return History{JobID: id, Events: events}, nil
}

// LatestTransition returns the most recent event, or false if the job has
// no recorded history.
func (h History) LatestTransition() (domain.JobEvent, bool) {
	if len(h.Events) == 0 {
		return domain.JobEvent{}, false
	}
	return h.Events[len(h.Events)-1], true
}

// Summary renders a one-line human-readable description of the trail,
// suitable for operator-facing log lines.
func (h History) Summary() string {
	if len(h.Events) == 0 {
		return fmt.Sprintf("job %s: no recorded events", h.JobID)
	}
	latest, _ := h.LatestTransition()
	return fmt.Sprintf("job %s: %d event(s), currently %s (last: %s -> %s, %q)",
		h.JobID, len(h.Events), latest.ToState, latest.FromState, latest.ToState, latest.Reason)
}
