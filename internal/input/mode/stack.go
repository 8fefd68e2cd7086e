package mode

import (
	"sync"

	"github.com/dshills/keyroute/internal/diag"
)

// Stack is the priority-ordered collection of active modes. The top of
// the stack receives events first. At most one instance of a mode id is
// active at a time.
type Stack struct {
	mu    sync.RWMutex
	modes []*Mode // priority descending; newest first among equals
	sink  diag.Sink
}

// NewStack creates an empty stack reporting to the given sink.
func NewStack(sink diag.Sink) *Stack {
	if sink == nil {
		sink = diag.Nop
	}
	return &Stack{sink: sink}
}

// Push activates a mode. If the mode is already on the stack it is
// moved to the top of its priority class without re-running OnEnter
// (idempotent re-entry); otherwise OnEnter runs and the mode is
// inserted sorted by priority descending.
//
// topChanged reports whether the top of the stack is a different mode
// than before; the dispatcher resets pending state when it is.
func (s *Stack) Push(m *Mode) (topChanged bool) {
	if m == nil {
		return false
	}

	s.mu.Lock()

	oldTop := s.topLocked()

	reentry := false
	for i, active := range s.modes {
		if active.ID == m.ID {
			s.modes = append(s.modes[:i], s.modes[i+1:]...)
			m = active
			reentry = true
			break
		}
	}

	// Insert before the first mode of equal or lower priority so the
	// newest arrival leads its priority class.
	idx := len(s.modes)
	for i, active := range s.modes {
		if active.Priority <= m.Priority {
			idx = i
			break
		}
	}
	s.modes = append(s.modes, nil)
	copy(s.modes[idx+1:], s.modes[idx:])
	s.modes[idx] = m

	newTop := s.topLocked()
	enter := m.OnEnter
	s.mu.Unlock()

	if !reentry && enter != nil {
		enter()
	}
	return oldTop != newTop
}

// Pop deactivates a mode by id, running its OnExit. Popping an id that
// is not on the stack is a no-op reported at debug level.
func (s *Stack) Pop(id string) (topChanged bool) {
	s.mu.Lock()

	oldTop := s.topLocked()
	var popped *Mode
	for i, active := range s.modes {
		if active.ID == id {
			popped = active
			s.modes = append(s.modes[:i], s.modes[i+1:]...)
			break
		}
	}
	newTop := s.topLocked()
	s.mu.Unlock()

	if popped == nil {
		diag.Debug(s.sink, diag.KindUnknownModePop,
			"pop of mode not on stack", diag.String("mode", id))
		return false
	}
	if popped.OnExit != nil {
		popped.OnExit()
	}
	return oldTop != newTop
}

// Top returns the mode on top of the stack, or nil when empty.
func (s *Stack) Top() *Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.topLocked()
}

func (s *Stack) topLocked() *Mode {
	if len(s.modes) == 0 {
		return nil
	}
	return s.modes[0]
}

// Contains reports whether a mode id is on the stack.
func (s *Stack) Contains(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.modes {
		if m.ID == id {
			return true
		}
	}
	return false
}

// Snapshot returns the active modes top-down. The slice is a copy; the
// modes are shared.
func (s *Stack) Snapshot() []*Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Mode, len(s.modes))
	copy(out, s.modes)
	return out
}

// Len returns the number of active modes.
func (s *Stack) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.modes)
}
