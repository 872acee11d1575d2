package domain

import "errors"

// State is one of the five job lifecycle states.
type State int

const (
	// Queued jobs are eligible for admission by the scheduler.
	Queued State = iota
	// Running jobs have been admitted and handed to the executor.
	Running
	// Succeeded is a terminal state: the handler completed without error.
	Succeeded
	// Failed is a terminal state: the handler errored, or the deadline
	// elapsed, or recovery force-failed a stranded job. Always paired with
	// a non-nil Failure.
	Failed
	// Cancelled is a terminal state reached via external cancellation.
	Cancelled
)

// String returns the wire representation used by the persistent schema.
func (s State) String() string {
	switch s {
	case Queued:
		return "queued"
	case Running:
		return "running"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	case Cancelled:
		return "cancelled"
	default:
		return "failed"
	}
}

// ParseState maps a persisted state string back to a State. An
// unrecognized value falls back to Failed, per the defensive-read rule;
// callers should log when ok is false.
func ParseState(s string) (state State, ok bool) {
	switch s {
	case "queued":
		return Queued, true
	case "running":
		return Running, true
	case "succeeded":
		return Succeeded, true
	case "failed":
		return Failed, true
	case "cancelled":
		return Cancelled, true
	default:
		return Failed, false
	}
}

// IsTerminal reports whether s has no outgoing transitions.
func (s State) IsTerminal() bool {
	switch s {
	case Succeeded, Failed, Cancelled:
		return true
	default:
		return false
	}
}

// ErrIllegalTransition is returned by Transition when (from, to) is not a
// legal edge in the state machine, or when to == Failed without a failure
// attached. The core never attempts such a transition in practice; a
// caller hitting this indicates a programming error and should treat it
// as fatal at the call site.
var ErrIllegalTransition = errors.New("domain: illegal state transition")

// Transition validates that moving from `from` to `to` is legal, given an
// optional failure descriptor. It does not mutate anything; the store
// package is responsible for applying the transition atomically and
// persisting it. Callers pass nil for failure unless to == Failed.
func Transition(from, to State, failure *Failure) error {
	var legal bool
	switch {
	case from == Queued && to == Running:
		legal = true
	case from == Queued && to == Cancelled:
		legal = true
	case from == Running && to == Succeeded:
		legal = true
	case from == Running && to == Failed:
		legal = true
	case from == Running && to == Cancelled:
		legal = true
	}
	if !legal {
		return ErrIllegalTransition
	}
	if to == Failed && failure == nil {
		return ErrIllegalTransition
	}
	return nil
}
