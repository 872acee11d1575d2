// Package jobctl is a durable job orchestration engine: a persistent job
// store, a pure scheduler, a bounded-concurrency executor, and an
// orchestrator loop that admits queued jobs under a compare-and-swap
// discipline so that two orchestrator instances sharing one repository
// never double-admit the same job.
//
// The engine is organized as a set of internal packages, wired together
// by cmd/jobctl:
//
//	internal/domain      job, state machine, failure taxonomy
//	internal/store       JobRepository (in-memory and Postgres implementations)
//	internal/schedselect pure admission-candidate selection
//	internal/exec        bounded, timed-out job execution
//	internal/orchestrate the periodic admission loop
//	internal/recover     startup reconciliation of stranded jobs
//	internal/jobconfig   environment-driven configuration
//	internal/handler     the reference job handler
//	internal/jobevents   audit log read helpers
//
// See cmd/jobctl for the process entrypoint.
package jobctl
