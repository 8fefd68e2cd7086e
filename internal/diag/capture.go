package diag

import "sync"

// CaptureSink records diagnostics for inspection in tests.
type CaptureSink struct {
	mu      sync.Mutex
	entries []Diagnostic
}

// NewCaptureSink creates an empty capture sink.
func NewCaptureSink() *CaptureSink {
	return &CaptureSink{}
}

// Report records the diagnostic.
func (s *CaptureSink) Report(level Level, kind Kind, msg string, fields ...Field) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, Diagnostic{
		Level:  level,
		Kind:   kind,
		Msg:    msg,
		Fields: fields,
	})
}

// All returns a copy of every recorded diagnostic.
func (s *CaptureSink) All() []Diagnostic {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Diagnostic, len(s.entries))
	copy(out, s.entries)
	return out
}

// ByKind returns recorded diagnostics of the given kind.
func (s *CaptureSink) ByKind(kind Kind) []Diagnostic {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Diagnostic
	for _, d := range s.entries {
		if d.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}

// Count returns the number of diagnostics of the given kind.
func (s *CaptureSink) Count(kind Kind) int {
	return len(s.ByKind(kind))
}

// Reset discards all recorded diagnostics.
func (s *CaptureSink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
}
