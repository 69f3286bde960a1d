// Package session owns the state of one authoring, responding or dashboard
// session. Sessions are created explicitly, passed by reference and
// discarded when the user leaves; nothing is shared process-wide.
package session

import (
	"context"
	"errors"
	"sync"
)

// ErrSubmitInProgress is returned when a submit is attempted while an earlier
// one has not resolved yet.
var ErrSubmitInProgress = errors.New("session: submission already in progress")

// SubmitState is the lifecycle of a submission.
type SubmitState int

const (
	Idle SubmitState = iota
	Submitting
	Succeeded
	Failed
)

func (s SubmitState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Submitting:
		return "submitting"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Submitter runs at most one submission at a time. There is no timeout of
// its own: a send that never returns keeps the submitter in Submitting until
// the caller's context ends it.
type Submitter struct {
	mu      sync.Mutex
	state   SubmitState
	lastErr error
}

// Do runs send unless another submission is in flight, in which case it
// returns ErrSubmitInProgress without calling send.
func (s *Submitter) Do(ctx context.Context, send func(context.Context) error) error {
	s.mu.Lock()
	if s.state == Submitting {
		s.mu.Unlock()
		return ErrSubmitInProgress
	}
	s.state = Submitting
	s.lastErr = nil
	s.mu.Unlock()

	err := send(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = Failed
		s.lastErr = err
		return err
	}
	s.state = Succeeded
	return nil
}

// State returns the current state and the error of the last failed attempt.
func (s *Submitter) State() (SubmitState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.lastErr
}

// Reset returns a resolved submitter to Idle. It has no effect while a
// submission is in flight.
func (s *Submitter) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Submitting {
		s.state = Idle
		s.lastErr = nil
	}
}
