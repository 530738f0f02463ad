package lifecycle

import (
	"context"
	"sync"
)

// Component is a unit of startup work with a matching teardown.
type Component struct {
	Name  string
	Start func(ctx context.Context) error
	Stop  func(ctx context.Context) error
}

// Sequencer starts registered components in order and stops them in
// reverse. A failure during startup unwinds the components that already
// started, so initialization is all-or-nothing.
type Sequencer struct {
	mu         sync.Mutex
	components []Component
	started    bool
}

// NewSequencer creates an empty sequencer.
func NewSequencer() *Sequencer {
	return &Sequencer{}
}

// Register adds a component. Registration is only allowed before Start.
func (s *Sequencer) Register(c Component) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		panic("lifecycle: cannot register component after start")
	}
	s.components = append(s.components, c)
}

// Start invokes each component's Start in registration order. On the first
// failure, already-started components are stopped in reverse order and the
// error is returned.
func (s *Sequencer) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = true
	comps := append([]Component(nil), s.components...)
	s.mu.Unlock()

	started := make([]Component, 0, len(comps))
	for _, c := range comps {
		if c.Start != nil {
			if err := c.Start(ctx); err != nil {
				for i := len(started) - 1; i >= 0; i-- {
					if started[i].Stop != nil {
						_ = started[i].Stop(ctx)
					}
				}
				return err
			}
		}
		started = append(started, c)
	}
	return nil
}

// Stop stops all components in reverse registration order, returning the
// first error encountered. Safe to call even if Start never ran.
func (s *Sequencer) Stop(ctx context.Context) error {
	s.mu.Lock()
	comps := append([]Component(nil), s.components...)
	s.started = false
	s.mu.Unlock()

	var firstErr error
	for i := len(comps) - 1; i >= 0; i-- {
		if comps[i].Stop == nil {
			continue
		}
		if err := comps[i].Stop(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
