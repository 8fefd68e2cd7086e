package repeat

import (
	"sync"

	"github.com/dshills/keyroute/internal/input/key"
)

// Trace is the key sequence typed inside one sub-mode entered by a
// recorded command, tagged with the sub-mode's id.
type Trace struct {
	Mode     string
	Sequence *key.Sequence
}

// Entry is one recorded command: the base-mode sequence that fired it,
// its repeat count, and any sub-mode continuations.
type Entry struct {
	// Mode is the id of the mode that owned the mapping.
	Mode string

	// Sequence is the key sequence that matched the mapping.
	Sequence *key.Sequence

	// Count is the repeat count the command fired with.
	Count int

	// Traces holds one entry per sub-mode the action passed through,
	// in the order they were entered.
	Traces []Trace
}

// Clone returns a deep copy of the entry.
func (e *Entry) Clone() *Entry {
	if e == nil {
		return nil
	}
	out := &Entry{
		Mode:     e.Mode,
		Sequence: e.Sequence.Clone(),
		Count:    e.Count,
	}
	for _, tr := range e.Traces {
		out.Traces = append(out.Traces, Trace{
			Mode:     tr.Mode,
			Sequence: tr.Sequence.Clone(),
		})
	}
	return out
}

// Recorder captures the last repeatable command and its sub-mode
// continuations.
//
// After Record the capture window is armed: the next sub-mode push is
// appended as a trace and events dispatched in that sub-mode are
// captured until it pops. The engine closes the window when an
// unrelated command fires.
type Recorder struct {
	mu        sync.Mutex
	last      *Entry
	armed     bool
	capturing string
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Record commits a new last command and arms the capture window,
// replacing any previous entry.
func (r *Recorder) Record(mode string, seq *key.Sequence, count int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last = &Entry{
		Mode:     mode,
		Sequence: seq.Clone(),
		Count:    count,
	}
	r.armed = true
	r.capturing = ""
}

// Close disarms the capture window without touching the recorded entry.
// Called when a command unrelated to the recorded one fires.
func (r *Recorder) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.armed = false
	r.capturing = ""
}

// EnterSubMode registers a sub-mode entered while the capture window is
// armed. Returns true if a trace was opened.
func (r *Recorder) EnterSubMode(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.armed || r.capturing != "" || r.last == nil {
		return false
	}
	r.last.Traces = append(r.last.Traces, Trace{
		Mode:     id,
		Sequence: key.NewSequence(),
	})
	r.capturing = id
	return true
}

// CaptureEvent appends an event to the open trace for the given mode.
// Ignored unless that mode's trace is currently capturing.
func (r *Recorder) CaptureEvent(id string, e key.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.capturing != id || r.last == nil || len(r.last.Traces) == 0 {
		return
	}
	tr := &r.last.Traces[len(r.last.Traces)-1]
	if tr.Mode != id {
		return
	}
	tr.Sequence.Add(e)
}

// LeaveSubMode ends capture for the given mode. The window stays armed
// so a follow-on sub-mode can still be traced.
func (r *Recorder) LeaveSubMode(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.capturing == id {
		r.capturing = ""
	}
}

// Capturing returns the id of the sub-mode currently being traced, or
// the empty string.
func (r *Recorder) Capturing() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.capturing
}

// Last returns a deep copy of the recorded entry, or nil when nothing
// repeatable has fired yet.
func (r *Recorder) Last() *Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last.Clone()
}

// Clear discards the recorded entry and disarms capture.
func (r *Recorder) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last = nil
	r.armed = false
	r.capturing = ""
}
