package recover

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"oss.nandlabs.io/jobctl/internal/domain"
	"oss.nandlabs.io/jobctl/internal/store"
	"oss.nandlabs.io/jobctl/testing/assert"
)

func jobWithState(id uuid.UUID, state domain.State) domain.Job {
	return domain.Job{ID: id, State: state, MaxAttempts: 1}
}

// S4 — recovery partition.
func TestReconcilePartitionsRunningJobs(t *testing.T) {
	id1, id2, id3, id4 := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	jobs := []domain.Job{
		jobWithState(id1, domain.Queued),
		jobWithState(id2, domain.Running),
		jobWithState(id3, domain.Succeeded),
		jobWithState(id4, domain.Running),
	}

	outcome := Reconcile(jobs)

	assert.Equal(t, []uuid.UUID{id2, id4}, outcome.ReconciledIDs)
	assert.Equal(t, []uuid.UUID{id1, id3}, outcome.SkippedIDs)
}

func TestReconcileIsIdempotent(t *testing.T) {
	id1, id2 := uuid.New(), uuid.New()
	jobs := []domain.Job{
		jobWithState(id1, domain.Running),
		jobWithState(id2, domain.Queued),
	}

	first := Reconcile(jobs)
	second := Reconcile(jobs)

	assert.Equal(t, first.ReconciledIDs, second.ReconciledIDs)
	assert.Equal(t, first.SkippedIDs, second.SkippedIDs)
}

func TestRunForceFailsReconciledJobs(t *testing.T) {
	ctx := context.Background()
	repo := store.NewMemoryRepository()

	job := domain.NewJob(nil, 0, 3)
	assert.NoError(t, repo.InsertJob(ctx, job))
	_, err := repo.UpdateState(ctx, job.ID, domain.Queued, domain.Running, nil)
	assert.NoError(t, err)

	outcome, err := Run(ctx, repo)
	assert.NoError(t, err)
	assert.Equal(t, []uuid.UUID{job.ID}, outcome.ReconciledIDs)

	running, err := repo.FetchRunning(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 0, len(running))

	events, err := repo.FetchEvents(ctx, job.ID)
	assert.NoError(t, err)
	last := events[len(events)-1]
	assert.Equal(t, domain.Running, last.FromState)
	assert.Equal(t, domain.Failed, last.ToState)
}

func TestForceFailIsSafeWhenJobAlreadyMoved(t *testing.T) {
	ctx := context.Background()
	repo := store.NewMemoryRepository()

	job := domain.NewJob(nil, 0, 3)
	assert.NoError(t, repo.InsertJob(ctx, job))
	_, err := repo.UpdateState(ctx, job.ID, domain.Queued, domain.Running, nil)
	assert.NoError(t, err)

	running, err := repo.FetchRunning(ctx)
	assert.NoError(t, err)

	// Job completes successfully between the snapshot read and recovery's
	// force-fail attempt.
	_, err = repo.UpdateState(ctx, job.ID, domain.Running, domain.Succeeded, nil)
	assert.NoError(t, err)

	outcome := Reconcile(running)
	assert.Equal(t, []uuid.UUID{job.ID}, outcome.ReconciledIDs)

	for _, id := range outcome.ReconciledIDs {
		result, err := repo.UpdateState(ctx, id, domain.Running, domain.Failed, domain.NewSystemFailure("stranded on restart"))
		assert.NoError(t, err)
		assert.Equal(t, store.LostRace, result)
	}
}
