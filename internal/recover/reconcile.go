// Package recover implements the startup reconciliation pass: identifying
// jobs that were Running when the process previously died, and force-
// failing them so they do not sit stranded forever.
package recover

import (
	"context"

	"github.com/google/uuid"

	"oss.nandlabs.io/jobctl/internal/domain"
	"oss.nandlabs.io/jobctl/internal/store"
	"oss.nandlabs.io/jobctl/l3"
)

var logger = l3.Get()

// Outcome is the partition produced by Reconcile: every job's id ends up
// in exactly one of the two slices, and the partition is a total function
// of the input jobs' states. Running Reconcile again over the same
// snapshot yields the same partition (idempotent).
type Outcome struct {
	ReconciledIDs []uuid.UUID
	SkippedIDs    []uuid.UUID
}

// Reconcile partitions jobs into those that were stranded in Running
// (ReconciledIDs) and everything else (SkippedIDs). It is pure: it reads
// jobs and writes nothing.
func Reconcile(jobs []domain.Job) Outcome {
	var outcome Outcome
	for _, job := range jobs {
		if job.State == domain.Running {
			outcome.ReconciledIDs = append(outcome.ReconciledIDs, job.ID)
		} else {
			outcome.SkippedIDs = append(outcome.SkippedIDs, job.ID)
		}
	}
	return outcome
}

// Run performs the full startup reconciliation against a live repository:
// it fetches running jobs, partitions them, and force-fails each
// reconciled id via the same CAS primitive the rest of the core uses
// (which safely no-ops if the job has already moved). This resolves the
// wiring spec.md leaves as an open question — the core never calls this
// itself; a bootstrap entrypoint must call it once, before the
// orchestrator loop starts.
func Run(ctx context.Context, repo store.JobRepository) (Outcome, error) {
	running, err := repo.FetchRunning(ctx)
	if err != nil {
		return Outcome{}, err
	}

	outcome := Reconcile(running)

	failure := domain.NewSystemFailure("stranded on restart")
	for _, id := range outcome.ReconciledIDs {
		result, err := repo.UpdateState(ctx, id, domain.Running, domain.Failed, failure)
		if err != nil {
			logger.ErrorF("recovery: failed to force-fail stranded job %s: %v", id, err)
			continue
		}
		if result == store.LostRace {
			logger.WarnF("recovery: job %s already moved before force-fail could apply", id)
			continue
		}
		logger.InfoF("recovery: force-failed stranded job %s", id)
	}

	return outcome, nil
}
