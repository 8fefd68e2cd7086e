package diag

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapSinkLevels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	sink := NewZapSink(zap.New(core))

	sink.Report(LevelDebug, KindAmbiguityTimeout, "resolved")
	sink.Report(LevelWarn, KindMappingConflict, "replaced")
	sink.Report(LevelError, KindHandlerFailure, "failed", Err(errors.New("boom")))

	entries := logs.All()
	if len(entries) != 3 {
		t.Fatalf("logged %d entries, want 3", len(entries))
	}

	wantLevels := []zapcore.Level{zapcore.DebugLevel, zapcore.WarnLevel, zapcore.ErrorLevel}
	for i, want := range wantLevels {
		if entries[i].Level != want {
			t.Errorf("entry %d level = %v, want %v", i, entries[i].Level, want)
		}
	}

	// Every entry carries its kind as a structured field.
	fields := entries[1].ContextMap()
	if fields["kind"] != string(KindMappingConflict) {
		t.Errorf("kind field = %v, want %s", fields["kind"], KindMappingConflict)
	}
}

func TestZapSinkNilLogger(t *testing.T) {
	sink := NewZapSink(nil)
	sink.Report(LevelError, KindHandlerFailure, "discarded")
}
