package testutil

import (
	"context"
	"sync"

	"github.com/roach88/accord/internal/audit"
)

// RecordingSink captures audit events for assertions.
//
// Thread-safety: all methods are safe for concurrent use via internal mutex.
type RecordingSink struct {
	mu        sync.Mutex
	decisions []audit.DecisionEvent
	modifiers []audit.ModifierEvent
}

// NewRecordingSink creates an empty sink.
func NewRecordingSink() *RecordingSink {
	return &RecordingSink{}
}

// RecordDecision implements audit.Sink.
func (s *RecordingSink) RecordDecision(_ context.Context, ev audit.DecisionEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.decisions = append(s.decisions, ev)
}

// RecordModifier implements audit.Sink.
func (s *RecordingSink) RecordModifier(_ context.Context, ev audit.ModifierEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modifiers = append(s.modifiers, ev)
}

// Decisions returns a copy of the recorded decision events.
func (s *RecordingSink) Decisions() []audit.DecisionEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]audit.DecisionEvent(nil), s.decisions...)
}

// Modifiers returns a copy of the recorded modifier events.
func (s *RecordingSink) Modifiers() []audit.ModifierEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]audit.ModifierEvent(nil), s.modifiers...)
}
