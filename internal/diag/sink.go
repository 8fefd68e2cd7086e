package diag

import "fmt"

// Level indicates the severity of a diagnostic.
type Level uint8

const (
	// LevelDebug is for routine resolution paths (timeouts, no-op pops).
	LevelDebug Level = iota

	// LevelWarn is for recoverable configuration problems.
	LevelWarn

	// LevelError is for recovered handler failures.
	LevelError
)

// String returns the level name.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// Kind classifies a diagnostic for filtering and testing.
type Kind string

const (
	// KindMappingConflict is emitted when a mapping replaces an
	// identical pattern in the same mode.
	KindMappingConflict Kind = "mapping-conflict"

	// KindUnknownModePop is emitted when popping a mode id that is
	// not on the stack.
	KindUnknownModePop Kind = "unknown-mode-pop"

	// KindHandlerFailure is emitted when a command handler returns an
	// error or panics.
	KindHandlerFailure Kind = "handler-failure"

	// KindAmbiguityTimeout is emitted when a pending sequence is
	// resolved or discarded by the sequence timer. Routine.
	KindAmbiguityTimeout Kind = "ambiguity-timeout"

	// KindReplayDrop is emitted when a replayed token no longer
	// resolves against the current trie. Routine.
	KindReplayDrop Kind = "replay-drop"

	// KindConfigReload covers configuration load and reload events.
	KindConfigReload Kind = "config-reload"

	// KindScriptLoad covers binding-script load events.
	KindScriptLoad Kind = "script-load"
)

// Field is a key/value pair attached to a diagnostic.
type Field struct {
	Key   string
	Value any
}

// String creates a string field.
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

// Int creates an int field.
func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

// Err creates an error field.
func Err(err error) Field {
	return Field{Key: "error", Value: err}
}

// Any creates a field with an arbitrary value.
func Any(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Sink receives diagnostics from the engine.
//
// Implementations must be safe for concurrent use; the ambiguity timer
// and replay delays report from timer goroutines.
type Sink interface {
	Report(level Level, kind Kind, msg string, fields ...Field)
}

// Debug reports a debug-level diagnostic to the sink.
func Debug(s Sink, kind Kind, msg string, fields ...Field) {
	if s != nil {
		s.Report(LevelDebug, kind, msg, fields...)
	}
}

// Warn reports a warn-level diagnostic to the sink.
func Warn(s Sink, kind Kind, msg string, fields ...Field) {
	if s != nil {
		s.Report(LevelWarn, kind, msg, fields...)
	}
}

// Error reports an error-level diagnostic to the sink.
func Error(s Sink, kind Kind, msg string, fields ...Field) {
	if s != nil {
		s.Report(LevelError, kind, msg, fields...)
	}
}

// Nop is a sink that discards everything.
var Nop Sink = nopSink{}

type nopSink struct{}

func (nopSink) Report(Level, Kind, string, ...Field) {}

// Diagnostic is one recorded diagnostic, used by CaptureSink.
type Diagnostic struct {
	Level  Level
	Kind   Kind
	Msg    string
	Fields []Field
}

// String renders the diagnostic for test failure messages.
func (d Diagnostic) String() string {
	return fmt.Sprintf("[%s] %s: %s", d.Level, d.Kind, d.Msg)
}
