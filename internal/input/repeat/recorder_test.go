package repeat

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/keyroute/internal/input/key"
)

func TestRecordAndLast(t *testing.T) {
	r := NewRecorder()

	if r.Last() != nil {
		t.Fatal("a fresh recorder should have no entry")
	}

	r.Record("normal", key.MustParseSequence("dd"), 3)

	entry := r.Last()
	if entry == nil {
		t.Fatal("Last() returned nil after Record")
	}
	if entry.Mode != "normal" || entry.Count != 3 {
		t.Errorf("entry = %q/%d, want normal/3", entry.Mode, entry.Count)
	}
	if got := entry.Sequence.String(); got != "d d" {
		t.Errorf("sequence = %q, want %q", got, "d d")
	}
}

func TestRecordReplacesPrevious(t *testing.T) {
	r := NewRecorder()
	r.Record("normal", key.MustParseSequence("dd"), 3)
	r.Record("normal", key.MustParseSequence("x"), 1)

	entry := r.Last()
	if got := entry.Sequence.String(); got != "x" {
		t.Errorf("latest record should win, got %q", got)
	}
}

func TestSubModeCapture(t *testing.T) {
	r := NewRecorder()
	r.Record("normal", key.MustParseSequence("f"), 1)

	if !r.EnterSubMode("hint") {
		t.Fatal("EnterSubMode should open a trace while the window is armed")
	}
	if r.Capturing() != "hint" {
		t.Fatalf("Capturing() = %q, want hint", r.Capturing())
	}

	r.CaptureEvent("hint", key.MustParse("a"))
	r.CaptureEvent("hint", key.MustParse("b"))
	r.LeaveSubMode("hint")

	if r.Capturing() != "" {
		t.Error("LeaveSubMode should end capture")
	}

	entry := r.Last()
	if len(entry.Traces) != 1 {
		t.Fatalf("entry has %d traces, want 1", len(entry.Traces))
	}
	want := []string{"a", "b"}
	if diff := cmp.Diff(want, entry.Traces[0].Sequence.Tokens()); diff != "" {
		t.Errorf("trace tokens mismatch (-want +got):\n%s", diff)
	}
}

func TestFollowOnSubModeTraced(t *testing.T) {
	r := NewRecorder()
	r.Record("normal", key.MustParseSequence("f"), 1)

	r.EnterSubMode("hint")
	r.CaptureEvent("hint", key.MustParse("a"))
	r.LeaveSubMode("hint")

	// The window stays armed after the first sub-mode pops.
	if !r.EnterSubMode("confirm") {
		t.Fatal("a follow-on sub-mode should still be traced")
	}
	r.CaptureEvent("confirm", key.MustParse("y"))
	r.LeaveSubMode("confirm")

	entry := r.Last()
	if len(entry.Traces) != 2 {
		t.Fatalf("entry has %d traces, want 2", len(entry.Traces))
	}
	if entry.Traces[1].Mode != "confirm" {
		t.Errorf("second trace mode = %q, want confirm", entry.Traces[1].Mode)
	}
}

func TestCloseDisarmsWindow(t *testing.T) {
	r := NewRecorder()
	r.Record("normal", key.MustParseSequence("dd"), 1)
	r.Close()

	if r.EnterSubMode("hint") {
		t.Error("a closed window should not open traces")
	}
	if r.Last() == nil {
		t.Error("Close must keep the recorded entry")
	}
}

func TestNestedSubModeNotTraced(t *testing.T) {
	r := NewRecorder()
	r.Record("normal", key.MustParseSequence("f"), 1)

	r.EnterSubMode("hint")
	if r.EnterSubMode("inner") {
		t.Error("a push while another trace is open should not start a new trace")
	}
	if r.Capturing() != "hint" {
		t.Errorf("Capturing() = %q, want hint", r.Capturing())
	}
}

func TestCaptureEventIgnoredForWrongMode(t *testing.T) {
	r := NewRecorder()
	r.Record("normal", key.MustParseSequence("f"), 1)
	r.EnterSubMode("hint")

	r.CaptureEvent("other", key.MustParse("z"))

	entry := r.Last()
	if entry.Traces[0].Sequence.Len() != 0 {
		t.Error("events for a different mode must not be captured")
	}
}

func TestLastReturnsDeepCopy(t *testing.T) {
	r := NewRecorder()
	r.Record("normal", key.MustParseSequence("dd"), 2)

	first := r.Last()
	first.Sequence.Add(key.MustParse("x"))
	first.Count = 99

	second := r.Last()
	if second.Sequence.Len() != 2 || second.Count != 2 {
		t.Error("mutating a returned entry must not affect the recorder")
	}
}

func TestClear(t *testing.T) {
	r := NewRecorder()
	r.Record("normal", key.MustParseSequence("dd"), 1)
	r.Clear()

	if r.Last() != nil {
		t.Error("Clear should discard the entry")
	}
	if r.EnterSubMode("hint") {
		t.Error("Clear should disarm the window")
	}
}
