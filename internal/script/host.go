package script

import (
	"errors"
	"fmt"
	"sync"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/keyroute/internal/diag"
	"github.com/dshills/keyroute/internal/input"
	"github.com/dshills/keyroute/internal/input/keymap"
	"github.com/dshills/keyroute/internal/input/mode"
)

// ErrHostClosed is returned when a closed host is used.
var ErrHostClosed = errors.New("script: host is closed")

// Host owns a Lua state bound to one engine. All state access is
// serialized through the host's mutex; Lua handlers registered through
// bind() run on whichever goroutine dispatches the key.
type Host struct {
	engine *input.Engine
	sink   diag.Sink

	mu     sync.Mutex
	state  *lua.LState
	closed bool
}

// NewHost creates a host and preloads the "keyroute" module into its
// Lua state.
func NewHost(engine *input.Engine, sink diag.Sink) *Host {
	if sink == nil {
		sink = diag.Nop
	}
	h := &Host{
		engine: engine,
		sink:   sink,
		state:  lua.NewState(),
	}
	h.state.PreloadModule("keyroute", h.loader)
	return h
}

// Close releases the Lua state. Commands bound from Lua fail with
// ErrHostClosed afterwards.
func (h *Host) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	h.state.Close()
}

// LoadFile runs a script file. Bindings and modes it registers take
// effect immediately.
func (h *Host) LoadFile(path string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrHostClosed
	}
	if err := h.state.DoFile(path); err != nil {
		return fmt.Errorf("script: running %s: %w", path, err)
	}
	diag.Debug(h.sink, diag.KindScriptLoad, "script loaded",
		diag.String("path", path))
	return nil
}

// LoadString runs inline script source, mainly for tests.
func (h *Host) LoadString(src string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrHostClosed
	}
	if err := h.state.DoString(src); err != nil {
		return fmt.Errorf("script: %w", err)
	}
	return nil
}

// loader populates the keyroute module table.
func (h *Host) loader(L *lua.LState) int {
	mod := L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"bind":        h.luaBind,
		"define_mode": h.luaDefineMode,
		"push_mode":   h.luaPushMode,
		"pop_mode":    h.luaPopMode,
		"active_mode": h.luaActiveMode,
		"replay_last": h.luaReplayLast,
		"cancel":      h.luaCancel,
	})
	L.Push(mod)
	return 1
}

// luaBind implements keyroute.bind(mode, keys, fn [, opts]).
// opts is a table: { repeatable = true, description = "..." }.
func (h *Host) luaBind(L *lua.LState) int {
	modeID := L.CheckString(1)
	keys := L.CheckString(2)
	fn := L.CheckFunction(3)

	m, err := keymap.NewMapping(keys, h.command(fn))
	if err != nil {
		L.RaiseError("bind %s: %s", keys, err.Error())
		return 0
	}
	m.Source = "script"

	if opts, ok := L.Get(4).(*lua.LTable); ok {
		m.Repeatable = lua.LVAsBool(opts.RawGetString("repeatable"))
		if d, ok := opts.RawGetString("description").(lua.LString); ok {
			m.Description = string(d)
		}
	}

	if err := h.engine.AddMapping(modeID, m); err != nil {
		L.RaiseError("bind %s: %s", keys, err.Error())
	}
	return 0
}

// luaDefineMode implements keyroute.define_mode(id, priority [, opts]).
// opts is a table: { opaque = true, consumes_digits = true }.
func (h *Host) luaDefineMode(L *lua.LState) int {
	id := L.CheckString(1)
	priority := L.CheckInt(2)

	def := mode.New(id, priority)
	if opts, ok := L.Get(3).(*lua.LTable); ok {
		def.Opaque = lua.LVAsBool(opts.RawGetString("opaque"))
		def.ConsumesDigits = lua.LVAsBool(opts.RawGetString("consumes_digits"))
	}

	if err := h.engine.RegisterMode(def); err != nil {
		L.RaiseError("define_mode %s: %s", id, err.Error())
	}
	return 0
}

func (h *Host) luaPushMode(L *lua.LState) int {
	if err := h.engine.PushMode(L.CheckString(1)); err != nil {
		L.RaiseError("push_mode: %s", err.Error())
	}
	return 0
}

func (h *Host) luaPopMode(L *lua.LState) int {
	h.engine.PopMode(L.CheckString(1))
	return 0
}

func (h *Host) luaActiveMode(L *lua.LState) int {
	L.Push(lua.LString(h.engine.ActiveMode()))
	return 1
}

func (h *Host) luaReplayLast(L *lua.LState) int {
	err := h.engine.ReplayLast()
	if err != nil && !errors.Is(err, input.ErrNothingToReplay) {
		L.RaiseError("replay_last: %s", err.Error())
	}
	L.Push(lua.LBool(err == nil))
	return 1
}

func (h *Host) luaCancel(L *lua.LState) int {
	h.engine.Cancel()
	return 0
}

// command wraps a Lua function as an engine command. The invocation
// arrives as a table: { count, keys, mode }.
func (h *Host) command(fn *lua.LFunction) keymap.Command {
	return keymap.CommandFunc(func(inv keymap.Invocation) error {
		h.mu.Lock()
		defer h.mu.Unlock()
		if h.closed {
			return ErrHostClosed
		}

		tbl := h.state.NewTable()
		tbl.RawSetString("count", lua.LNumber(inv.Count))
		tbl.RawSetString("keys", lua.LString(inv.Sequence.String()))
		tbl.RawSetString("mode", lua.LString(inv.Mode))

		h.state.Push(fn)
		h.state.Push(tbl)
		if err := h.state.PCall(1, 0, nil); err != nil {
			return fmt.Errorf("script: handler: %w", err)
		}
		return nil
	})
}
