package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Job is the core entity of the orchestration engine. The payload is
// opaque to the core; handlers look it up by id rather than receiving it
// directly (spec.md §3).
type Job struct {
	ID           uuid.UUID
	Payload      json.RawMessage
	Priority     int32
	State        State
	Attempt      uint32
	MaxAttempts  uint32
	Failure      *Failure
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CanRetry reports whether the job has attempts remaining. The core does
// not act on this itself (automatic retry is out of scope, per spec.md
// §9); it exists for an external policy layer to consult.
func (j Job) CanRetry() bool {
	return j.Attempt < j.MaxAttempts
}

// NewJob constructs a freshly Queued job with a generated id and
// CreatedAt/UpdatedAt both set to now.
func NewJob(payload json.RawMessage, priority int32, maxAttempts uint32) Job {
	now := time.Now().UTC()
	return Job{
		ID:          uuid.New(),
		Payload:     payload,
		Priority:    priority,
		State:       Queued,
		Attempt:     0,
		MaxAttempts: maxAttempts,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
