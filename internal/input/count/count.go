package count

import "github.com/dshills/keyroute/internal/input/key"

// MaxRepeat caps the repeat count a digit prefix can request. Counts
// above the cap are clamped, not rejected.
const MaxRepeat = 10000

// State tracks digit accumulation for one dispatch cycle.
type State struct {
	value  int
	active bool
}

// NewState creates an empty count state.
func NewState() *State {
	return &State{}
}

// Reset clears the accumulated count.
func (s *State) Reset() {
	s.value = 0
	s.active = false
}

// Active returns true if at least one digit has been accumulated.
func (s *State) Active() bool {
	return s.active
}

// Accumulate offers an event to the accumulator. It returns true if the
// event was consumed as a count digit: unmodified ASCII '1'-'9' always,
// '0' only once a leading digit already exists.
func (s *State) Accumulate(e key.Event) bool {
	d, ok := e.Digit()
	if !ok {
		return false
	}
	if !s.active && d == 0 {
		return false
	}

	s.active = true
	if s.value >= MaxRepeat {
		// Already clamped; swallow further digits.
		return true
	}
	s.value = s.value*10 + d
	if s.value > MaxRepeat {
		s.value = MaxRepeat
	}
	return true
}

// Get returns the effective count: 1 if no digits were accumulated,
// otherwise the accumulated value clamped to [1, MaxRepeat].
func (s *State) Get() int {
	if !s.active || s.value < 1 {
		return 1
	}
	if s.value > MaxRepeat {
		return MaxRepeat
	}
	return s.value
}
