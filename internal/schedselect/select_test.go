package schedselect

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"oss.nandlabs.io/jobctl/internal/domain"
	"oss.nandlabs.io/jobctl/testing/assert"
)

func queuedJob(id byte, priority int32, createdAt time.Time) domain.Job {
	return domain.Job{
		ID:        uuid.NewMD5(uuid.Nil, []byte{id}),
		Priority:  priority,
		State:     domain.Queued,
		CreatedAt: createdAt,
	}
}

// S1 — capacity respected.
func TestSelectCapacityRespected(t *testing.T) {
	base := time.Unix(0, 0)
	jobs := []domain.Job{
		queuedJob(1, 0, base),
		queuedJob(2, 0, base.Add(time.Second)),
		queuedJob(3, 0, base.Add(2*time.Second)),
	}

	decision := Select(jobs, 1, 2)

	assert.Equal(t, 1, len(decision.SelectedIDs))
	assert.Equal(t, 0, decision.RemainingCapacity)
}

// S2 — priority then FIFO.
func TestSelectPriorityThenFIFO(t *testing.T) {
	base := time.Unix(0, 0)
	job1 := queuedJob(1, 1, base.Add(10*time.Second))
	job2 := queuedJob(2, 2, base.Add(20*time.Second))
	job3 := queuedJob(3, 2, base.Add(5*time.Second))
	job4 := queuedJob(4, 1, base.Add(1*time.Second))

	decision := Select([]domain.Job{job1, job2, job3, job4}, 0, 10)

	want := []uuid.UUID{job3.ID, job2.ID, job4.ID, job1.ID}
	assert.Equal(t, want, decision.SelectedIDs)
	assert.Equal(t, 6, decision.RemainingCapacity)
}

// S3 — saturated.
func TestSelectSaturated(t *testing.T) {
	jobs := []domain.Job{queuedJob(1, 0, time.Unix(0, 0))}

	decision := Select(jobs, 5, 5)

	assert.Equal(t, 0, len(decision.SelectedIDs))
	assert.Equal(t, 0, decision.RemainingCapacity)
}

func TestSelectFiltersNonQueuedDefensively(t *testing.T) {
	base := time.Unix(0, 0)
	running := queuedJob(1, 10, base)
	running.State = domain.Running
	queued := queuedJob(2, 0, base.Add(time.Second))

	decision := Select([]domain.Job{running, queued}, 0, 10)

	assert.Equal(t, []uuid.UUID{queued.ID}, decision.SelectedIDs)
}

func TestSelectNegativeCapacityClampsToZero(t *testing.T) {
	jobs := []domain.Job{queuedJob(1, 0, time.Unix(0, 0))}

	decision := Select(jobs, 10, 5)

	assert.Equal(t, 0, len(decision.SelectedIDs))
	assert.Equal(t, 0, decision.RemainingCapacity)
}
