// Package memory provides an in-memory audit store for tests and for running
// without a database.
package memory

import (
	"context"
	"sync"

	audit "mintgate/pkg/platform/audit"
)

// Store collects events in memory.
type Store struct {
	mu     sync.RWMutex
	events []audit.Event
	// failNext, when set, makes the next Append return the error. Used to
	// exercise fail-closed publisher behavior in tests.
	failNext error
}

// New creates an empty in-memory audit store.
func New() *Store {
	return &Store{}
}

// Append records the event.
func (s *Store) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failNext != nil {
		err := s.failNext
		s.failNext = nil
		return err
	}
	s.events = append(s.events, event)
	return nil
}

// Events returns a copy of all recorded events.
func (s *Store) Events() []audit.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Event{}, s.events...)
}

// Actions returns the recorded action names in order.
func (s *Store) Actions() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	actions := make([]string, len(s.events))
	for i, e := range s.events {
		actions[i] = e.Action
	}
	return actions
}

// FailNext makes the next Append call fail with err.
func (s *Store) FailNext(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = err
}
