// Package chat drives advisor conversations: a prompt is submitted, then the
// session is polled with a bounded, linearly backed-off schedule until it
// succeeds, fails or runs out of attempts.
package chat

import (
	"time"

	"yieldScope/internal/process"
)

// State is a node of the polling state machine.
type State int

const (
	StateSent State = iota
	StatePolling
	StateSucceeded
	StateFailed
	StateTimedOut
)

func (s State) String() string {
	switch s {
	case StateSent:
		return "sent"
	case StatePolling:
		return "polling"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	case StateTimedOut:
		return "timed_out"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions happen from s.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed || s == StateTimedOut
}

// Policy bounds polling.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Step        time.Duration
}

// DefaultPolicy polls up to 10 times, waiting 1s, 2s, 3s and so on.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 10, BaseDelay: time.Second, Step: time.Second}
}

// Delay returns the wait before poll n, counting from zero.
func (p Policy) Delay(n int) time.Duration {
	if n < 0 {
		n = 0
	}
	return p.BaseDelay + time.Duration(n)*p.Step
}

// Transition returns the next state after observing resp at the given poll
// attempt. A nil resp stands for a failed round trip and counts as no answer.
func Transition(state State, resp process.Response, attempt, maxAttempts int) State {
	if state.Terminal() {
		return state
	}
	switch resp.(type) {
	case process.Success:
		return StateSucceeded
	case process.Error:
		return StateFailed
	}
	if attempt >= maxAttempts {
		return StateTimedOut
	}
	return StatePolling
}
