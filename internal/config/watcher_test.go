package config

import (
	"os"
	"testing"
	"time"

	"github.com/dshills/keyroute/internal/input"
)

func TestWatcherReloadsOnWrite(t *testing.T) {
	f, mgr := newApplyFixture(t)

	path := writeTempConfig(t, `
[[mode]]
id = "normal"

[[binding]]
mode = "normal"
keys = "x"
action = "delete-char"
`)
	if err := mgr.LoadFile(path); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if err := f.engine.PushMode("normal"); err != nil {
		t.Fatal(err)
	}

	w, err := NewWatcher(mgr, path, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Stop()

	updated := `
[[mode]]
id = "normal"

[[binding]]
mode = "normal"
keys = "y"
action = "yank-line"
`
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		t.Fatal(err)
	}

	// Wait for the debounced reload to land: the new binding appears
	// and the old one is removed.
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if f.feed(t, "y") == input.StatusHandled {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}

	if f.feed(t, "y") != input.StatusHandled {
		t.Fatal("the rewritten binding never took effect")
	}
	if f.feed(t, "x") != input.StatusUnhandled {
		t.Error("the dropped binding should be unregistered after reload")
	}
}

func TestWatcherStopIsIdempotent(t *testing.T) {
	_, mgr := newApplyFixture(t)
	path := writeTempConfig(t, "")

	w, err := mgr.Watch(path)
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	w.Stop()
	w.Stop()
}
