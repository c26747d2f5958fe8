package strategist

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/viralstrategist/viralstrategist/internal/metrics"
)

// ErrBusy is returned when an action is already in flight.
var ErrBusy = errors.New("an action is already running")

// Runner performs one action.
type Runner interface {
	Run(ctx context.Context, mode Mode, params Params) (*Outcome, error)
}

// Session serialises actions and holds the most recent outcome.
//
// At most one action runs at a time; a concurrent Run fails fast with
// ErrBusy instead of queueing. Starting an action clears the current result.
type Session struct {
	runner Runner

	busy atomic.Bool

	mu      sync.RWMutex
	current *Outcome
}

// NewSession returns an idle session with no current result.
func NewSession(runner Runner) *Session {
	return &Session{runner: runner}
}

// Run validates params, then runs the action unless another one is in
// flight. The caller's cancellation does not reach the provider call: once
// dispatched an action runs to completion and its outcome is stored.
func (s *Session) Run(ctx context.Context, mode Mode, params Params) (*Outcome, error) {
	if err := Validate(mode, params.WithDefaults()); err != nil {
		return nil, err
	}
	if !s.busy.CompareAndSwap(false, true) {
		metrics.RecordActionRejected(string(mode), metrics.RejectBusy)
		return nil, ErrBusy
	}
	defer s.busy.Store(false)

	s.Clear()

	out, err := s.runner.Run(context.WithoutCancel(ctx), mode, params)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.current = out
	s.mu.Unlock()
	return out, nil
}

// Busy reports whether an action is in flight.
func (s *Session) Busy() bool {
	return s.busy.Load()
}

// Current returns the stored outcome, if any.
func (s *Session) Current() (*Outcome, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.current != nil
}

// Clear discards the stored outcome, e.g. on a mode switch.
func (s *Session) Clear() {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
}
