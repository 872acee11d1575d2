// Package store defines the persistence contract for jobs and the
// audit-log of state transitions, plus two implementations: an in-memory
// map for tests and single-instance deployments, and a Postgres-backed
// implementation for production use.
package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"oss.nandlabs.io/jobctl/internal/domain"
)

// UpdateResult distinguishes a CAS write that actually changed a row from
// one that lost a race. A lost race is not an error: some other actor
// (another orchestrator instance, or an external cancel) already moved
// the row, and the caller should simply move on.
type UpdateResult int

const (
	// Applied means exactly one row matched (id, from) and was updated.
	Applied UpdateResult = iota
	// LostRace means zero rows matched: the row's current state was not
	// `from` by the time the conditional write executed.
	LostRace
)

// ErrDatabase wraps any error surfaced by the underlying driver. It is
// never hidden: both the orchestrator (per tick) and the executor (per
// job) catch it, log it, and carry on rather than terminate the process.
type ErrDatabase struct {
	Op  string
	Err error
}

func (e *ErrDatabase) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *ErrDatabase) Unwrap() error {
	return e.Err
}

func wrapDBErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &ErrDatabase{Op: op, Err: err}
}

// JobRepository is the persistence contract the core depends on.
// Implementations must be safe under concurrent callers, possibly across
// processes.
type JobRepository interface {
	// FetchQueued returns jobs whose state is Queued, ordered by priority
	// descending then CreatedAt ascending. Read-only; a non-locking
	// snapshot is acceptable.
	FetchQueued(ctx context.Context) ([]domain.Job, error)

	// FetchRunning returns jobs whose state is Running. Order is
	// unspecified.
	FetchRunning(ctx context.Context) ([]domain.Job, error)

	// InsertJob atomically writes the job row and a "created" audit
	// event (from == to == job.State). Fails with ErrDatabase if the id
	// conflicts or the store is unavailable.
	InsertJob(ctx context.Context, job domain.Job) error

	// UpdateState conditionally transitions a job: the write applies only
	// if the row's current state equals from. It is atomic with the
	// paired audit-event insert. If to == Failed, failure must be
	// non-nil and the row's attempt is incremented by exactly one in the
	// same statement; failure columns are cleared whenever to is not
	// Failed. UpdatedAt is set to the store's current wall-clock.
	//
	// A LostRace result is a distinguished success, not an error.
	UpdateState(ctx context.Context, id uuid.UUID, from, to domain.State, failure *domain.Failure) (UpdateResult, error)

	// FetchEvents returns the audit log for a single job, ordered by
	// OccurredAt ascending. Supplemental to the core admission/transition
	// path (see SPEC_FULL.md §9); read-only.
	FetchEvents(ctx context.Context, id uuid.UUID) ([]domain.JobEvent, error)
}
