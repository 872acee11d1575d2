package exec

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"oss.nandlabs.io/jobctl/internal/domain"
	"oss.nandlabs.io/jobctl/internal/store"
	"oss.nandlabs.io/jobctl/testing/assert"
)

type fakeHandler struct {
	execute func(ctx context.Context, id uuid.UUID) error
}

func (f *fakeHandler) Execute(ctx context.Context, id uuid.UUID) error {
	return f.execute(ctx, id)
}

func setupRunningJob(t *testing.T, repo *store.MemoryRepository) domain.Job {
	t.Helper()
	ctx := context.Background()
	job := domain.NewJob(nil, 0, 3)
	assert.NoError(t, repo.InsertJob(ctx, job))
	_, err := repo.UpdateState(ctx, job.ID, domain.Queued, domain.Running, nil)
	assert.NoError(t, err)
	return job
}

func waitForTerminal(t *testing.T, repo *store.MemoryRepository, id uuid.UUID) domain.Job {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		running, err := repo.FetchRunning(context.Background())
		assert.NoError(t, err)
		stillRunning := false
		for _, j := range running {
			if j.ID == id {
				stillRunning = true
			}
		}
		if !stillRunning {
			events, err := repo.FetchEvents(context.Background(), id)
			assert.NoError(t, err)
			return domain.Job{State: events[len(events)-1].ToState}
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %s did not reach a terminal state in time", id)
	return domain.Job{}
}

func TestExecutorSuccessTransitionsToSucceeded(t *testing.T) {
	repo := store.NewMemoryRepository()
	job := setupRunningJob(t, repo)

	handler := &fakeHandler{execute: func(ctx context.Context, id uuid.UUID) error { return nil }}
	executor := NewExecutor(repo, handler, time.Second)
	executor.Spawn(job.ID)

	final := waitForTerminal(t, repo, job.ID)
	assert.Equal(t, domain.Succeeded, final.State)
}

func TestExecutorHandlerErrorTransitionsToFailed(t *testing.T) {
	repo := store.NewMemoryRepository()
	job := setupRunningJob(t, repo)

	handler := &fakeHandler{execute: func(ctx context.Context, id uuid.UUID) error {
		return NewFailureError(domain.UserError, "bad payload")
	}}
	executor := NewExecutor(repo, handler, time.Second)
	executor.Spawn(job.ID)

	final := waitForTerminal(t, repo, job.ID)
	assert.Equal(t, domain.Failed, final.State)
}

// S5 — timeout path: handler never completes; executor times out quickly
// and the job's last audit event moves it to Failed. The Timeout failure
// and the attempt increment on a Failed transition are checked by the
// store tests.
func TestExecutorTimeoutPath(t *testing.T) {
	repo := store.NewMemoryRepository()
	job := setupRunningJob(t, repo)

	var wg sync.WaitGroup
	wg.Add(1)
	handler := &fakeHandler{execute: func(ctx context.Context, id uuid.UUID) error {
		defer wg.Done()
		<-ctx.Done()
		return ctx.Err()
	}}
	executor := NewExecutor(repo, handler, 50*time.Millisecond)
	executor.Spawn(job.ID)

	final := waitForTerminal(t, repo, job.ID)
	assert.Equal(t, domain.Failed, final.State)
	wg.Wait()

	events, err := repo.FetchEvents(context.Background(), job.ID)
	assert.NoError(t, err)
	assert.Equal(t, domain.Failed, events[len(events)-1].ToState)
}

func TestExecutorLostRaceIsTolerated(t *testing.T) {
	repo := store.NewMemoryRepository()
	job := setupRunningJob(t, repo)

	// Simulate an external cancel winning the race before the handler
	// finishes.
	_, err := repo.UpdateState(context.Background(), job.ID, domain.Running, domain.Cancelled, nil)
	assert.NoError(t, err)

	handler := &fakeHandler{execute: func(ctx context.Context, id uuid.UUID) error { return nil }}
	executor := NewExecutor(repo, handler, time.Second)
	executor.Spawn(job.ID)

	time.Sleep(50 * time.Millisecond)

	events, err := repo.FetchEvents(context.Background(), job.ID)
	assert.NoError(t, err)
	assert.Equal(t, domain.Cancelled, events[len(events)-1].ToState)
	assert.True(t, !errors.Is(err, context.DeadlineExceeded))
}
