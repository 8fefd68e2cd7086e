package input

// Status is the outcome of feeding one event to the engine.
type Status uint8

const (
	// StatusUnhandled means no mode claimed the event; the host may
	// forward it to the native surface.
	StatusUnhandled Status = iota

	// StatusHandled means a mapping fired or an opaque mode swallowed
	// the event.
	StatusHandled

	// StatusPending means the event extended an in-progress sequence
	// or a repeat count; the engine is waiting for more input.
	StatusPending
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusUnhandled:
		return "unhandled"
	case StatusHandled:
		return "handled"
	case StatusPending:
		return "pending"
	default:
		return "unknown"
	}
}
