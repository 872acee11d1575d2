package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"oss.nandlabs.io/jobctl/internal/domain"
)

// MemoryRepository is an in-memory JobRepository, suitable for tests and
// for single-instance deployments where persistence across restarts is
// not required. Modeled on the teacher's chrono.InMemoryStorage: a single
// RWMutex guards the job and event maps, and reads and writes copy Job
// values in or out. The copy is shallow: Payload and Failure are shared
// with the caller.
type MemoryRepository struct {
	mu     sync.RWMutex
	jobs   map[uuid.UUID]domain.Job
	events map[uuid.UUID][]domain.JobEvent
}

// NewMemoryRepository creates an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		jobs:   make(map[uuid.UUID]domain.Job),
		events: make(map[uuid.UUID][]domain.JobEvent),
	}
}

func (m *MemoryRepository) FetchQueued(_ context.Context) ([]domain.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var queued []domain.Job
	for _, job := range m.jobs {
		if job.State == domain.Queued {
			queued = append(queued, job)
		}
	}
	sort.SliceStable(queued, func(i, j int) bool {
		if queued[i].Priority != queued[j].Priority {
			return queued[i].Priority > queued[j].Priority
		}
		return queued[i].CreatedAt.Before(queued[j].CreatedAt)
	})
	return queued, nil
}

func (m *MemoryRepository) FetchRunning(_ context.Context) ([]domain.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var running []domain.Job
	for _, job := range m.jobs {
		if job.State == domain.Running {
			running = append(running, job)
		}
	}
	return running, nil
}

func (m *MemoryRepository) InsertJob(_ context.Context, job domain.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.jobs[job.ID]; exists {
		return wrapDBErr("insert_job", fmt.Errorf("job %s already exists", job.ID))
	}

	m.jobs[job.ID] = job
	m.events[job.ID] = append(m.events[job.ID], domain.JobEvent{
		JobID:      job.ID,
		FromState:  job.State,
		ToState:    job.State,
		Reason:     "job created",
		OccurredAt: job.CreatedAt,
	})
	return nil
}

func (m *MemoryRepository) UpdateState(_ context.Context, id uuid.UUID, from, to domain.State, failure *domain.Failure) (UpdateResult, error) {
	if err := domain.Transition(from, to, failure); err != nil {
		return Applied, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	job, exists := m.jobs[id]
	if !exists || job.State != from {
		return LostRace, nil
	}

	job.State = to
	job.UpdatedAt = time.Now().UTC()
	if to == domain.Failed {
		job.Attempt++
		job.Failure = failure
	} else {
		job.Failure = nil
	}
	m.jobs[id] = job

	m.events[id] = append(m.events[id], domain.JobEvent{
		JobID:      id,
		FromState:  from,
		ToState:    to,
		Reason:     "state transition",
		OccurredAt: job.UpdatedAt,
	})

	return Applied, nil
}

func (m *MemoryRepository) FetchEvents(_ context.Context, id uuid.UUID) ([]domain.JobEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	events := m.events[id]
	cp := make([]domain.JobEvent, len(events))
	copy(cp, events)
	return cp, nil
}
