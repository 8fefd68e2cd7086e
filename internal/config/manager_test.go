package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/dshills/keyroute/internal/diag"
	"github.com/dshills/keyroute/internal/input"
	"github.com/dshills/keyroute/internal/input/key"
	"github.com/dshills/keyroute/internal/input/keymap"
)

type applyFixture struct {
	engine *input.Engine
	sink   *diag.CaptureSink

	mu    sync.Mutex
	fired []string
}

func newApplyFixture(t *testing.T) (*applyFixture, *Manager) {
	t.Helper()
	f := &applyFixture{sink: diag.NewCaptureSink()}
	f.engine = input.NewEngine(input.Config{Sink: f.sink})

	resolver := ResolverFunc(func(action string) (keymap.Command, error) {
		if action == "missing" {
			return MapResolver{}.Resolve(action)
		}
		return keymap.CommandFunc(func(keymap.Invocation) error {
			f.mu.Lock()
			f.fired = append(f.fired, action)
			f.mu.Unlock()
			return nil
		}), nil
	})

	return f, NewManager(f.engine, resolver, f.sink)
}

func (f *applyFixture) feed(t *testing.T, pattern string) input.Status {
	t.Helper()
	seq, err := key.ParseSequence(pattern)
	if err != nil {
		t.Fatalf("ParseSequence(%q): %v", pattern, err)
	}
	status := input.StatusUnhandled
	for _, ev := range seq.Events {
		status = f.engine.FeedKey(ev)
	}
	return status
}

func (f *applyFixture) firedActions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.fired...)
}

func TestApplyRegistersModesAndBindings(t *testing.T) {
	f, mgr := newApplyFixture(t)

	err := mgr.Apply(&File{
		Modes:    []ModeDef{{ID: "normal", Priority: 0}},
		Bindings: []BindingDef{{Mode: "normal", Keys: "dd", Action: "delete-line", Repeatable: true}},
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if err := f.engine.PushMode("normal"); err != nil {
		t.Fatal(err)
	}

	f.feed(t, "dd")
	got := f.firedActions()
	if len(got) != 1 || got[0] != "delete-line" {
		t.Errorf("fired = %v, want [delete-line]", got)
	}
}

func TestApplyRemovesStaleBindings(t *testing.T) {
	f, mgr := newApplyFixture(t)

	first := &File{
		Modes: []ModeDef{{ID: "normal"}},
		Bindings: []BindingDef{
			{Mode: "normal", Keys: "dd", Action: "delete-line"},
			{Mode: "normal", Keys: "x", Action: "delete-char"},
		},
	}
	if err := mgr.Apply(first); err != nil {
		t.Fatal(err)
	}
	if err := f.engine.PushMode("normal"); err != nil {
		t.Fatal(err)
	}

	// The reload drops the "x" binding.
	second := &File{
		Modes:    []ModeDef{{ID: "normal"}},
		Bindings: []BindingDef{{Mode: "normal", Keys: "dd", Action: "delete-line"}},
	}
	if err := mgr.Apply(second); err != nil {
		t.Fatal(err)
	}

	if status := f.feed(t, "x"); status != input.StatusUnhandled {
		t.Errorf("status = %v, want StatusUnhandled for the dropped binding", status)
	}
	f.feed(t, "dd")
	got := f.firedActions()
	if len(got) != 1 || got[0] != "delete-line" {
		t.Errorf("fired = %v, want the surviving binding only", got)
	}
}

func TestApplySkipsBadBindings(t *testing.T) {
	f, mgr := newApplyFixture(t)

	err := mgr.Apply(&File{
		Modes: []ModeDef{{ID: "normal"}},
		Bindings: []BindingDef{
			{Mode: "normal", Keys: "<Bogus>", Action: "delete-line"},
			{Mode: "normal", Keys: "a", Action: "missing"},
			{Mode: "normal", Keys: "x", Action: "delete-char"},
			{Mode: "ghost", Keys: "y", Action: "delete-char"},
		},
	})
	if err != nil {
		t.Fatalf("Apply should tolerate bad bindings, got %v", err)
	}
	if err := f.engine.PushMode("normal"); err != nil {
		t.Fatal(err)
	}

	// Three skips: unparseable keys, unresolvable action, unknown mode.
	if got := f.sink.Count(diag.KindConfigReload); got < 3 {
		t.Errorf("config diagnostics = %d, want at least 3 warnings", got)
	}

	f.feed(t, "x")
	got := f.firedActions()
	if len(got) != 1 || got[0] != "delete-char" {
		t.Errorf("fired = %v, want the good binding to survive", got)
	}
}

func TestApplyKeepsExistingModeInstances(t *testing.T) {
	f, mgr := newApplyFixture(t)

	file := &File{Modes: []ModeDef{{ID: "normal", Priority: 0}}}
	if err := mgr.Apply(file); err != nil {
		t.Fatal(err)
	}
	before := f.engine.Mode("normal")

	if err := mgr.Apply(file); err != nil {
		t.Fatal(err)
	}
	if f.engine.Mode("normal") != before {
		t.Error("re-applying must not replace a live mode instance")
	}
}

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "keys.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFileApplies(t *testing.T) {
	f, mgr := newApplyFixture(t)

	path := writeTempConfig(t, `
[[mode]]
id = "normal"

[[binding]]
mode = "normal"
keys = "gg"
action = "scroll-top"
`)
	if err := mgr.LoadFile(path); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if err := f.engine.PushMode("normal"); err != nil {
		t.Fatal(err)
	}

	f.feed(t, "gg")
	got := f.firedActions()
	if len(got) != 1 || got[0] != "scroll-top" {
		t.Errorf("fired = %v, want [scroll-top]", got)
	}
}
