// Package lifecycle tracks the process-wide service state and sequences
// component startup and teardown.
package lifecycle

import (
	"sync"
)

// State is the process-wide lifecycle phase.
type State int

const (
	Initializing State = iota
	Accepting
	Draining
	Stopped
)

func (s State) String() string {
	switch s {
	case Initializing:
		return "initializing"
	case Accepting:
		return "accepting"
	case Draining:
		return "draining"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Tracker holds the current lifecycle state. Transitions are monotonic:
// the state only ever moves forward, never back to an earlier phase.
type Tracker struct {
	mu    sync.Mutex
	state State
}

// NewTracker starts a tracker in Initializing.
func NewTracker() *Tracker {
	return &Tracker{state: Initializing}
}

// Advance moves to next if next is strictly later than the current state.
// It reports whether the transition happened.
func (t *Tracker) Advance(next State) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if next <= t.state {
		return false
	}
	t.state = next
	return true
}

// Current returns the state at the time of the call.
func (t *Tracker) Current() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}
