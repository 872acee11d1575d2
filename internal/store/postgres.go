package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"oss.nandlabs.io/jobctl/internal/domain"
	"oss.nandlabs.io/jobctl/l3"
)

var logger = l3.Get()

// PostgresRepository is a JobRepository backed by a pgxpool.Pool. Schema
// and column names follow the original reference implementation's
// `jobs`/`job_events` tables (see DESIGN.md): the CAS write and its
// paired audit-event insert are issued inside one transaction, giving the
// atomicity spec.md §4.1 requires of UpdateState.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository wraps an already-configured pool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const fetchColumns = `id, payload, priority, state, attempt, max_attempts, failure_kind, failure_reason, created_at, updated_at`

func (p *PostgresRepository) FetchQueued(ctx context.Context) ([]domain.Job, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT `+fetchColumns+`
		FROM jobs
		WHERE state = 'queued'
		ORDER BY priority DESC, created_at ASC
	`)
	if err != nil {
		return nil, wrapDBErr("fetch_queued", err)
	}
	defer rows.Close()
	return scanJobs(rows)
}

func (p *PostgresRepository) FetchRunning(ctx context.Context) ([]domain.Job, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT `+fetchColumns+`
		FROM jobs
		WHERE state = 'running'
	`)
	if err != nil {
		return nil, wrapDBErr("fetch_running", err)
	}
	defer rows.Close()
	return scanJobs(rows)
}

func (p *PostgresRepository) InsertJob(ctx context.Context, job domain.Job) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return wrapDBErr("insert_job", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO jobs (id, payload, priority, state, attempt, max_attempts, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, job.ID, []byte(job.Payload), job.Priority, job.State.String(), job.Attempt, job.MaxAttempts, job.CreatedAt, job.UpdatedAt)
	if err != nil {
		return wrapDBErr("insert_job", err)
	}

	if err := insertEvent(ctx, tx, job.ID, job.State, job.State, "job created"); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return wrapDBErr("insert_job", err)
	}
	return nil
}

func (p *PostgresRepository) UpdateState(ctx context.Context, id uuid.UUID, from, to domain.State, failure *domain.Failure) (UpdateResult, error) {
	if err := domain.Transition(from, to, failure); err != nil {
		return Applied, err
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return Applied, wrapDBErr("update_state", err)
	}
	defer tx.Rollback(ctx)

	var failureKind, failureReason *string
	if to == domain.Failed {
		kind := failure.Kind.String()
		failureKind = &kind
		failureReason = &failure.Reason
	}

	tag, err := tx.Exec(ctx, `
		UPDATE jobs
		SET state = $1,
		    attempt = attempt + CASE WHEN $1 = 'failed' THEN 1 ELSE 0 END,
		    failure_kind = $2,
		    failure_reason = $3,
		    updated_at = now()
		WHERE id = $4 AND state = $5
	`, to.String(), failureKind, failureReason, id, from.String())
	if err != nil {
		return Applied, wrapDBErr("update_state", err)
	}

	if tag.RowsAffected() == 0 {
		return LostRace, nil
	}

	if err := insertEvent(ctx, tx, id, from, to, "state transition"); err != nil {
		return Applied, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Applied, wrapDBErr("update_state", err)
	}
	return Applied, nil
}

func (p *PostgresRepository) FetchEvents(ctx context.Context, id uuid.UUID) ([]domain.JobEvent, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT job_id, from_state, to_state, event_reason, occurred_at
		FROM job_events
		WHERE job_id = $1
		ORDER BY occurred_at ASC
	`, id)
	if err != nil {
		return nil, wrapDBErr("fetch_events", err)
	}
	defer rows.Close()

	var events []domain.JobEvent
	for rows.Next() {
		var (
			jobID            uuid.UUID
			fromStr, toStr   string
			reason           string
			occurredAt       time.Time
		)
		if err := rows.Scan(&jobID, &fromStr, &toStr, &reason, &occurredAt); err != nil {
			return nil, wrapDBErr("fetch_events", err)
		}
		from, ok := domain.ParseState(fromStr)
		if !ok {
			logger.WarnF("store: unrecognized from_state %q for job %s, treating as failed", fromStr, jobID)
		}
		to, ok := domain.ParseState(toStr)
		if !ok {
			logger.WarnF("store: unrecognized to_state %q for job %s, treating as failed", toStr, jobID)
		}
		events = append(events, domain.JobEvent{
			JobID:      jobID,
			FromState:  from,
			ToState:    to,
			Reason:     reason,
			OccurredAt: occurredAt,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr("fetch_events", err)
	}
	return events, nil
}

func insertEvent(ctx context.Context, tx pgx.Tx, jobID uuid.UUID, from, to domain.State, reason string) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO job_events (job_id, from_state, to_state, event_reason)
		VALUES ($1, $2, $3, $4)
	`, jobID, from.String(), to.String(), reason)
	if err != nil {
		return wrapDBErr("insert_event", err)
	}
	return nil
}

func scanJobs(rows pgx.Rows) ([]domain.Job, error) {
	var jobs []domain.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, wrapDBErr("scan_job", err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr("scan_job", err)
	}
	return jobs, nil
}

func scanJob(rows pgx.Rows) (domain.Job, error) {
	var (
		id                           uuid.UUID
		payload                      []byte
		priority                     int32
		stateStr                     string
		attempt, maxAttempts         uint32
		failureKind, failureReason   *string
		createdAt, updatedAt         time.Time
	)
	if err := rows.Scan(&id, &payload, &priority, &stateStr, &attempt, &maxAttempts, &failureKind, &failureReason, &createdAt, &updatedAt); err != nil {
		return domain.Job{}, err
	}

	state, ok := domain.ParseState(stateStr)
	if !ok {
		logger.WarnF("store: unrecognized state %q for job %s, treating as failed", stateStr, id)
	}

	job := domain.Job{
		ID:          id,
		Payload:     payload,
		Priority:    priority,
		State:       state,
		Attempt:     attempt,
		MaxAttempts: maxAttempts,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}

	if failureKind != nil {
		kind, ok := domain.ParseFailureKind(*failureKind)
		if !ok {
			logger.WarnF("store: unrecognized failure_kind %q for job %s, treating as system_error", *failureKind, id)
		}
		reason := ""
		if failureReason != nil {
			reason = *failureReason
		}
		job.Failure = &domain.Failure{Kind: kind, Reason: reason}
	}

	return job, nil
}
