package domain

import (
	"testing"

	"oss.nandlabs.io/jobctl/testing/assert"
)

func TestTransitionLegalEdges(t *testing.T) {
	cases := []struct {
		from, to State
		failure  *Failure
	}{
		{Queued, Running, nil},
		{Queued, Cancelled, nil},
		{Running, Succeeded, nil},
		{Running, Failed, NewSystemFailure("boom")},
		{Running, Cancelled, nil},
	}
	for _, c := range cases {
		assert.NoError(t, Transition(c.from, c.to, c.failure))
	}
}

func TestTransitionIllegalEdges(t *testing.T) {
	cases := []struct {
		from, to State
		failure  *Failure
	}{
		{Queued, Succeeded, nil},
		{Succeeded, Running, nil},
		{Failed, Running, nil},
		{Cancelled, Running, nil},
		{Running, Queued, nil},
	}
	for _, c := range cases {
		assert.Error(t, Transition(c.from, c.to, c.failure))
	}
}

func TestTransitionToFailedRequiresFailure(t *testing.T) {
	assert.Error(t, Transition(Running, Failed, nil))
	assert.NoError(t, Transition(Running, Failed, NewTimeoutFailure("exceeded")))
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, Succeeded.IsTerminal())
	assert.True(t, Failed.IsTerminal())
	assert.True(t, Cancelled.IsTerminal())
	assert.False(t, Queued.IsTerminal())
	assert.False(t, Running.IsTerminal())
}

func TestStateRoundTrip(t *testing.T) {
	for _, s := range []State{Queued, Running, Succeeded, Failed, Cancelled} {
		parsed, ok := ParseState(s.String())
		assert.True(t, ok)
		assert.Equal(t, s, parsed)
	}
}

func TestParseStateUnrecognizedFallsBackToFailed(t *testing.T) {
	parsed, ok := ParseState("bogus")
	assert.False(t, ok)
	assert.Equal(t, Failed, parsed)
}

func TestParseFailureKindUnrecognizedFallsBackToSystemError(t *testing.T) {
	parsed, ok := ParseFailureKind("bogus")
	assert.False(t, ok)
	assert.Equal(t, SystemError, parsed)
}
