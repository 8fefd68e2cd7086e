package input

import (
	"sync/atomic"
	"time"
)

// Metrics tracks dispatch activity. All counters are safe for
// concurrent use; the timer goroutines record through the same
// instance.
type Metrics struct {
	keyEvents    atomic.Uint64
	commands     atomic.Uint64
	swallowed    atomic.Uint64
	unhandled    atomic.Uint64
	timeouts     atomic.Uint64
	replays      atomic.Uint64
	hookConsumed atomic.Uint64
	failures     atomic.Uint64

	peakLatency atomic.Int64 // nanoseconds

	enabled atomic.Bool
}

// NewMetrics creates an enabled metrics tracker.
func NewMetrics() *Metrics {
	m := &Metrics{}
	m.enabled.Store(true)
	return m
}

// SetEnabled turns collection on or off.
func (m *Metrics) SetEnabled(enabled bool) {
	m.enabled.Store(enabled)
}

func (m *Metrics) recordKey(latency time.Duration, status Status) {
	if !m.enabled.Load() {
		return
	}
	m.keyEvents.Add(1)
	if status == StatusUnhandled {
		m.unhandled.Add(1)
	}

	ns := latency.Nanoseconds()
	for {
		current := m.peakLatency.Load()
		if ns <= current || m.peakLatency.CompareAndSwap(current, ns) {
			break
		}
	}
}

func (m *Metrics) recordCommand() {
	if m.enabled.Load() {
		m.commands.Add(1)
	}
}

func (m *Metrics) recordSwallowed() {
	if m.enabled.Load() {
		m.swallowed.Add(1)
	}
}

func (m *Metrics) recordTimeout() {
	if m.enabled.Load() {
		m.timeouts.Add(1)
	}
}

func (m *Metrics) recordReplay() {
	if m.enabled.Load() {
		m.replays.Add(1)
	}
}

func (m *Metrics) recordHookConsumed() {
	if m.enabled.Load() {
		m.hookConsumed.Add(1)
	}
}

func (m *Metrics) recordFailure() {
	if m.enabled.Load() {
		m.failures.Add(1)
	}
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	KeyEvents    uint64
	Commands     uint64
	Swallowed    uint64
	Unhandled    uint64
	Timeouts     uint64
	Replays      uint64
	HookConsumed uint64
	Failures     uint64
	PeakLatency  time.Duration
}

// Snapshot returns the current counter values.
func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		KeyEvents:    m.keyEvents.Load(),
		Commands:     m.commands.Load(),
		Swallowed:    m.swallowed.Load(),
		Unhandled:    m.unhandled.Load(),
		Timeouts:     m.timeouts.Load(),
		Replays:      m.replays.Load(),
		HookConsumed: m.hookConsumed.Load(),
		Failures:     m.failures.Load(),
		PeakLatency:  time.Duration(m.peakLatency.Load()),
	}
}
