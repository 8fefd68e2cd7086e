package input

import "time"

// Clock abstracts timer creation so tests can drive ambiguity
// resolution and replay delays deterministically.
type Clock interface {
	// AfterFunc schedules fn to run after d on its own goroutine.
	AfterFunc(d time.Duration, fn func()) Timer
}

// Timer is a cancellable scheduled call.
type Timer interface {
	// Stop cancels the timer; it reports false if the call already
	// fired or was stopped.
	Stop() bool
}

// realClock backs timers with the wall clock.
type realClock struct{}

// NewRealClock returns a Clock backed by time.AfterFunc.
func NewRealClock() Clock {
	return realClock{}
}

func (realClock) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}
