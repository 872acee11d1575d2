package domain

import (
	"time"

	"github.com/google/uuid"
)

// JobEvent is one row of the append-only audit log. The logical "created"
// event has FromState == ToState. Rows are written only by the store
// package, atomically with the paired state mutation, and are never
// mutated afterward.
type JobEvent struct {
	JobID      uuid.UUID
	FromState  State
	ToState    State
	Reason     string
	OccurredAt time.Time
}
