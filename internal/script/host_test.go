package script

import (
	"testing"

	"github.com/dshills/keyroute/internal/diag"
	"github.com/dshills/keyroute/internal/input"
	"github.com/dshills/keyroute/internal/input/key"
	"github.com/dshills/keyroute/internal/input/mode"
)

type hostFixture struct {
	engine *input.Engine
	host   *Host
	sink   *diag.CaptureSink
}

func newHostFixture(t *testing.T) *hostFixture {
	t.Helper()
	f := &hostFixture{sink: diag.NewCaptureSink()}
	f.engine = input.NewEngine(input.Config{Sink: f.sink})

	if err := f.engine.RegisterMode(mode.New("normal", 0)); err != nil {
		t.Fatal(err)
	}
	if err := f.engine.PushMode("normal"); err != nil {
		t.Fatal(err)
	}

	f.host = NewHost(f.engine, f.sink)
	t.Cleanup(f.host.Close)
	return f
}

func (f *hostFixture) feed(t *testing.T, pattern string) {
	t.Helper()
	seq, err := key.ParseSequence(pattern)
	if err != nil {
		t.Fatalf("ParseSequence(%q): %v", pattern, err)
	}
	for _, ev := range seq.Events {
		f.engine.FeedKey(ev)
	}
}

// luaAssert runs an assertion inside the Lua state; a failed assert
// surfaces as a script error.
func (f *hostFixture) luaAssert(t *testing.T, expr string) {
	t.Helper()
	if err := f.host.LoadString("assert(" + expr + ")"); err != nil {
		t.Errorf("lua assertion %q failed: %v", expr, err)
	}
}

func TestLuaBindReceivesInvocation(t *testing.T) {
	f := newHostFixture(t)

	err := f.host.LoadString(`
		local kr = require("keyroute")
		hits = 0
		last = ""
		kr.bind("normal", "d d", function(inv)
			hits = hits + 1
			last = inv.mode .. ":" .. inv.count .. ":" .. inv.keys
		end, { repeatable = true })
	`)
	if err != nil {
		t.Fatalf("LoadString: %v", err)
	}

	f.feed(t, "3dd")
	f.luaAssert(t, `hits == 1`)
	f.luaAssert(t, `last == "normal:3:d d"`)

	// The repeatable option feeds the dot-repeat recorder.
	if err := f.engine.ReplayLast(); err != nil {
		t.Fatalf("ReplayLast: %v", err)
	}
	f.luaAssert(t, `hits == 2`)
	f.luaAssert(t, `last == "normal:3:d d"`)
}

func TestLuaDefineModeAndPush(t *testing.T) {
	f := newHostFixture(t)

	err := f.host.LoadString(`
		local kr = require("keyroute")
		kr.define_mode("insert", 10, { opaque = true, consumes_digits = true })
		kr.bind("normal", "i", function() kr.push_mode("insert") end)
		kr.bind("insert", "<Esc>", function() kr.pop_mode("insert") end)
	`)
	if err != nil {
		t.Fatalf("LoadString: %v", err)
	}

	m := f.engine.Mode("insert")
	if m == nil || !m.Opaque || !m.ConsumesDigits {
		t.Fatalf("insert mode not registered as declared: %+v", m)
	}

	f.feed(t, "i")
	if got := f.engine.ActiveMode(); got != "insert" {
		t.Errorf("ActiveMode() = %q, want insert", got)
	}

	f.feed(t, "<Esc>")
	if got := f.engine.ActiveMode(); got != "normal" {
		t.Errorf("ActiveMode() = %q, want normal after Escape", got)
	}
}

func TestLuaActiveMode(t *testing.T) {
	f := newHostFixture(t)
	f.luaAssert(t, `require("keyroute").active_mode() == "normal"`)
}

func TestLuaHandlerErrorReported(t *testing.T) {
	f := newHostFixture(t)

	err := f.host.LoadString(`
		local kr = require("keyroute")
		kr.bind("normal", "e", function() error("scripted failure") end)
	`)
	if err != nil {
		t.Fatalf("LoadString: %v", err)
	}

	f.feed(t, "e")
	if f.sink.Count(diag.KindHandlerFailure) != 1 {
		t.Error("a failing Lua handler should surface as a handler diagnostic")
	}
}

func TestLuaBindUnknownModeFails(t *testing.T) {
	f := newHostFixture(t)

	err := f.host.LoadString(`
		local kr = require("keyroute")
		kr.bind("ghost", "x", function() end)
	`)
	if err == nil {
		t.Error("binding into an unregistered mode should raise")
	}
}

func TestClosedHostRejectsCommands(t *testing.T) {
	f := newHostFixture(t)

	err := f.host.LoadString(`
		require("keyroute").bind("normal", "x", function() end)
	`)
	if err != nil {
		t.Fatalf("LoadString: %v", err)
	}

	f.host.Close()

	f.feed(t, "x")
	if f.sink.Count(diag.KindHandlerFailure) != 1 {
		t.Error("commands on a closed host should fail, not crash")
	}
	if err := f.host.LoadString("x = 1"); err == nil {
		t.Error("LoadString on a closed host should fail")
	}
}
