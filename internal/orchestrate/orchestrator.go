// Package orchestrate wires the repository, scheduler, and executor
// together into a periodic admission loop.
package orchestrate

import (
	"context"
	"time"

	"oss.nandlabs.io/jobctl/internal/domain"
	"oss.nandlabs.io/jobctl/internal/exec"
	"oss.nandlabs.io/jobctl/internal/schedselect"
	"oss.nandlabs.io/jobctl/internal/store"
	"oss.nandlabs.io/jobctl/l3"
)

var logger = l3.Get()

// Orchestrator periodically inspects the repository, decides which
// queued jobs to admit, atomically transitions them to Running, and
// hands them to the executor. It never blocks on job completion;
// completion is signaled only through the repository.
type Orchestrator struct {
	repo           store.JobRepository
	executor       *exec.Executor
	maxConcurrency int
	tickInterval   time.Duration
}

// New constructs an Orchestrator.
func New(repo store.JobRepository, executor *exec.Executor, maxConcurrency int, tickInterval time.Duration) *Orchestrator {
	return &Orchestrator{
		repo:           repo,
		executor:       executor,
		maxConcurrency: maxConcurrency,
		tickInterval:   tickInterval,
	}
}

// Run loops forever: tick, then sleep tickInterval, until ctx is
// cancelled. A tick error is logged and does not stop the loop — the
// loop is self-healing across ticks (spec.md §7).
func (o *Orchestrator) Run(ctx context.Context) {
	ticker := time.NewTicker(o.tickInterval)
	defer ticker.Stop()

	for {
		if err := o.Tick(ctx); err != nil {
			logger.WarnF("orchestrator: tick failed: %v", err)
		}

		select {
		case <-ctx.Done():
			logger.InfoF("orchestrator: shutting down")
			return
		case <-ticker.C:
		}
	}
}

// Tick performs one iteration: snapshot queued and running jobs, compute
// a scheduling decision, admit the selected jobs via CAS (continuing past
// lost races), and hand each successfully-admitted job to the executor.
//
// The two reads are not one transaction: an eventually-consistent
// snapshot is acceptable because over-admission is prevented by the CAS
// in the admission step, and under-admission self-corrects on the next
// tick.
func (o *Orchestrator) Tick(ctx context.Context) error {
	queued, err := o.repo.FetchQueued(ctx)
	if err != nil {
		return err
	}
	running, err := o.repo.FetchRunning(ctx)
	if err != nil {
		return err
	}

	decision := schedselect.Select(queued, len(running), o.maxConcurrency)
	if len(decision.SelectedIDs) == 0 {
		return nil
	}

	logger.InfoF("orchestrator: scheduler selected %d job(s) (running=%d)", len(decision.SelectedIDs), len(running))

	for _, id := range decision.SelectedIDs {
		result, err := o.repo.UpdateState(ctx, id, domain.Queued, domain.Running, nil)
		if err != nil {
			return err
		}
		if result == store.LostRace {
			logger.WarnF("orchestrator: lost admission race for job %s, skipping", id)
			continue
		}
		o.executor.Spawn(id)
	}

	return nil
}
