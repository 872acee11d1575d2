package orchestrate

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"oss.nandlabs.io/jobctl/internal/domain"
	"oss.nandlabs.io/jobctl/internal/exec"
	"oss.nandlabs.io/jobctl/internal/store"
	"oss.nandlabs.io/jobctl/testing/assert"
)

type blockingHandler struct{}

func (blockingHandler) Execute(ctx context.Context, id uuid.UUID) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestTickAdmitsUpToCapacity(t *testing.T) {
	ctx := context.Background()
	repo := store.NewMemoryRepository()

	for i := 0; i < 3; i++ {
		job := domain.NewJob(nil, int32(i), 1)
		assert.NoError(t, repo.InsertJob(ctx, job))
	}

	executor := exec.NewExecutor(repo, blockingHandler{}, time.Minute)
	orchestrator := New(repo, executor, 2, time.Hour)

	assert.NoError(t, orchestrator.Tick(ctx))

	running, err := repo.FetchRunning(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 2, len(running))

	queued, err := repo.FetchQueued(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(queued))
}

func TestTickEmptySelectionIsNoop(t *testing.T) {
	ctx := context.Background()
	repo := store.NewMemoryRepository()
	executor := exec.NewExecutor(repo, blockingHandler{}, time.Minute)
	orchestrator := New(repo, executor, 5, time.Hour)

	assert.NoError(t, orchestrator.Tick(ctx))
}

// S6 — two orchestrator instances sharing one repository tick over the
// same queued job; only one admits it. The second tick sees the job
// already running and has no capacity left; the lost CAS itself is
// covered by the store's lost-race test.
func TestTickConcurrentOrchestratorsDoNotDoubleAdmit(t *testing.T) {
	ctx := context.Background()
	repo := store.NewMemoryRepository()
	job := domain.NewJob(nil, 0, 1)
	assert.NoError(t, repo.InsertJob(ctx, job))

	executor := exec.NewExecutor(repo, blockingHandler{}, time.Minute)
	a := New(repo, executor, 1, time.Hour)
	b := New(repo, executor, 1, time.Hour)

	assert.NoError(t, a.Tick(ctx))
	assert.NoError(t, b.Tick(ctx))

	running, err := repo.FetchRunning(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(running))
}
