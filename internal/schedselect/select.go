// Package schedselect implements the scheduler's pure selection function.
// It has no dependency on the store or executor packages, and performs no
// I/O, no clock reads, and no randomness: given the same input it always
// produces the same output.
package schedselect

import (
	"sort"

	"github.com/google/uuid"

	"oss.nandlabs.io/jobctl/internal/domain"
)

// Decision is the result of a single scheduling pass.
type Decision struct {
	// SelectedIDs is the ordered set of job ids admitted this tick. The
	// order matches the priority/FIFO sort, not the input order.
	SelectedIDs []uuid.UUID
	// RemainingCapacity is the free capacity left after the selection,
	// always >= 0.
	RemainingCapacity int
}

// Select decides which queued jobs to admit this tick.
//
// capacity = max(0, maxConcurrency - runningCount). queued is filtered to
// jobs whose State is literally Queued (defensive against a stale
// snapshot), sorted by priority descending then CreatedAt ascending
// (FIFO within a priority band), and the first capacity entries are
// taken. The sort is stable, so ties at equal CreatedAt preserve their
// relative order in the input slice.
func Select(queued []domain.Job, runningCount, maxConcurrency int) Decision {
	capacity := maxConcurrency - runningCount
	if capacity < 0 {
		capacity = 0
	}
	if capacity == 0 {
		return Decision{RemainingCapacity: 0}
	}

	candidates := make([]domain.Job, 0, len(queued))
	for _, job := range queued {
		if job.State == domain.Queued {
			candidates = append(candidates, job)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Priority != candidates[j].Priority {
			return candidates[i].Priority > candidates[j].Priority
		}
		return candidates[i].CreatedAt.Before(candidates[j].CreatedAt)
	})

	if capacity > len(candidates) {
		capacity = len(candidates)
	}

	selected := make([]uuid.UUID, capacity)
	for i := 0; i < capacity; i++ {
		selected[i] = candidates[i].ID
	}

	return Decision{
		SelectedIDs:       selected,
		RemainingCapacity: (maxConcurrency - runningCount) - len(selected),
	}
}
