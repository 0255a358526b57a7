package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"yieldScope/internal/process"
	"yieldScope/internal/retry"
)

var (
	// ErrTimedOut is returned when the session is still pending after the last poll.
	ErrTimedOut = errors.New("chat timed out")
	// ErrFailed is returned when the backend reports an error.
	ErrFailed = errors.New("chat failed")
)

// Backend submits prompts and polls for their answers.
type Backend interface {
	Submit(ctx context.Context, prompt string) (process.Response, error)
	Poll(ctx context.Context, sessionID string) (process.Response, error)
}

// Step records one visited state.
type Step struct {
	State   State
	Attempt int
}

// Outcome is the result of one Ask.
type Outcome struct {
	State     State
	Attempts  int
	SessionID string
	Answer    string
	Reason    string
	Trace     []Step
}

func (o *Outcome) enter(state State, attempt int) {
	o.State = state
	o.Trace = append(o.Trace, Step{State: state, Attempt: attempt})
}

// Poller runs the state machine against a Backend.
type Poller struct {
	backend Backend
	policy  Policy
	logger  *zap.Logger
	sleep   func(ctx context.Context, d time.Duration) error
}

func NewPoller(backend Backend, policy Policy, logger *zap.Logger) *Poller {
	if logger == nil {
		logger = zap.NewNop()
	}
	if policy.MaxAttempts < 0 {
		policy.MaxAttempts = 0
	}
	return &Poller{backend: backend, policy: policy, logger: logger, sleep: retry.Wait}
}

// Ask submits prompt and polls until a terminal state. The returned error is
// nil only for StateSucceeded.
func (p *Poller) Ask(ctx context.Context, prompt string) (Outcome, error) {
	var out Outcome
	out.enter(StateSent, 0)

	resp, err := p.backend.Submit(ctx, prompt)
	if err != nil {
		out.enter(StateFailed, 0)
		out.Reason = err.Error()
		return out, fmt.Errorf("submit prompt: %w", err)
	}
	if pending, ok := resp.(process.Pending); ok {
		out.SessionID = pending.SessionID
	}
	if done, err := p.settle(&out, resp, 0); done {
		return out, err
	}

	for attempt := 1; attempt <= p.policy.MaxAttempts; attempt++ {
		if err := p.sleep(ctx, p.policy.Delay(attempt-1)); err != nil {
			out.enter(StateFailed, attempt)
			out.Reason = err.Error()
			return out, err
		}

		out.Attempts = attempt
		resp, err := p.backend.Poll(ctx, out.SessionID)
		if err != nil {
			if ctx.Err() != nil {
				out.enter(StateFailed, attempt)
				out.Reason = ctx.Err().Error()
				return out, ctx.Err()
			}
			p.logger.Warn("chat poll failed",
				zap.String("session_id", out.SessionID),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			resp = nil
		}
		if done, err := p.settle(&out, resp, attempt); done {
			return out, err
		}
	}

	out.enter(StateTimedOut, out.Attempts)
	return out, ErrTimedOut
}

// settle applies one transition and reports whether a terminal state was reached.
func (p *Poller) settle(out *Outcome, resp process.Response, attempt int) (bool, error) {
	next := Transition(out.State, resp, attempt, p.policy.MaxAttempts)
	out.enter(next, attempt)

	switch next {
	case StateSucceeded:
		out.Answer = resp.(process.Success).Data
		return true, nil
	case StateFailed:
		e := resp.(process.Error)
		out.Reason = e.Error()
		return true, fmt.Errorf("%w: %s", ErrFailed, e.Error())
	case StateTimedOut:
		out.Reason = ErrTimedOut.Error()
		return true, ErrTimedOut
	}
	return false, nil
}
