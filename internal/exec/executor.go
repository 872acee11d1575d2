// Package exec launches at most one concurrent unit of work per admitted
// job, enforces a wall-clock timeout, and writes the terminal state
// transition. It owns no persistent state of its own.
package exec

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"oss.nandlabs.io/jobctl/internal/domain"
	"oss.nandlabs.io/jobctl/internal/store"
	"oss.nandlabs.io/jobctl/l3"
)

var logger = l3.Get()

// JobHandler performs a job's logical work. It looks up whatever payload
// it needs using the id (the core never passes the payload directly). A
// handler must observe ctx's deadline; when the deadline expires, its
// return value is discarded in favor of a synthesized Timeout failure.
// Idempotency is not required: recovery force-fails stranded jobs without
// re-invoking the handler, so the core never re-executes the same attempt.
type JobHandler interface {
	Execute(ctx context.Context, id uuid.UUID) error
}

// Failure is implemented by errors a JobHandler wants recorded with a
// specific FailureKind (e.g. a user-level validation error vs. a system
// error). A handler that returns a plain error is treated as SystemError.
type Failure interface {
	error
	FailureKind() domain.FailureKind
}

// NewFailureError wraps a reason string and kind as an error implementing
// Failure, for handlers to return from Execute.
func NewFailureError(kind domain.FailureKind, reason string) error {
	return &failureError{kind: kind, reason: reason}
}

type failureError struct {
	kind   domain.FailureKind
	reason string
}

func (f *failureError) Error() string               { return f.reason }
func (f *failureError) FailureKind() domain.FailureKind { return f.kind }

// Executor runs admitted jobs with a bounded wall-clock timeout and
// records their terminal outcome. Parameters are fixed at construction;
// Executor holds no mutable state of its own beyond what it was given.
type Executor struct {
	repo    store.JobRepository
	handler JobHandler
	timeout time.Duration
}

// NewExecutor constructs an Executor.
func NewExecutor(repo store.JobRepository, handler JobHandler, timeout time.Duration) *Executor {
	return &Executor{repo: repo, handler: handler, timeout: timeout}
}

// Spawn launches an asynchronous unit of work for id and returns
// immediately, without waiting for the job. The timeout is armed at the
// moment this goroutine begins, not at admission time.
func (e *Executor) Spawn(id uuid.UUID) {
	go e.run(id)
}

func (e *Executor) run(id uuid.UUID) {
	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()

	err := e.handler.Execute(ctx, id)

	var failure *domain.Failure
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		failure = domain.NewTimeoutFailure("job execution exceeded timeout")
	case err == nil:
		// success: falls through with failure == nil
	default:
		var typed Failure
		if errors.As(err, &typed) {
			failure = &domain.Failure{Kind: typed.FailureKind(), Reason: typed.Error()}
		} else {
			failure = domain.NewSystemFailure(err.Error())
		}
	}

	to := domain.Succeeded
	if failure != nil {
		to = domain.Failed
	}

	result, updateErr := e.repo.UpdateState(context.Background(), id, domain.Running, to, failure)
	if updateErr != nil {
		logger.ErrorF("executor: terminal update for job %s failed: %v", id, updateErr)
		return
	}
	if result == store.LostRace {
		logger.WarnF("executor: lost race transitioning job %s to %s, job was moved by another actor", id, to)
		return
	}
	logger.InfoF("executor: job %s reached terminal state %s", id, to)
}
