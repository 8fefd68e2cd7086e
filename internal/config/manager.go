package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/dshills/keyroute/internal/diag"
	"github.com/dshills/keyroute/internal/input"
	"github.com/dshills/keyroute/internal/input/keymap"
	"github.com/dshills/keyroute/internal/input/mode"
)

// Resolver turns a configured action name into a command.
type Resolver interface {
	Resolve(action string) (keymap.Command, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(action string) (keymap.Command, error)

// Resolve calls the function.
func (f ResolverFunc) Resolve(action string) (keymap.Command, error) {
	return f(action)
}

// MapResolver resolves actions from a fixed table.
type MapResolver map[string]keymap.Command

// Resolve looks the action up in the table.
func (m MapResolver) Resolve(action string) (keymap.Command, error) {
	cmd, ok := m[action]
	if !ok {
		return nil, fmt.Errorf("config: unknown action %q", action)
	}
	return cmd, nil
}

type appliedBinding struct {
	mode string
	keys string
}

// Manager keeps an engine's modes and bindings in sync with a
// configuration file, including removals across live reloads.
type Manager struct {
	engine   *input.Engine
	resolver Resolver
	sink     diag.Sink

	mu      sync.Mutex
	applied []appliedBinding
}

// NewManager creates a manager for the given engine and resolver.
func NewManager(engine *input.Engine, resolver Resolver, sink diag.Sink) *Manager {
	if sink == nil {
		sink = diag.Nop
	}
	return &Manager{
		engine:   engine,
		resolver: resolver,
		sink:     sink,
	}
}

// LoadFile parses a configuration file and applies it to the engine.
func (m *Manager) LoadFile(path string) error {
	f, err := Load(path)
	if err != nil {
		return err
	}
	return m.Apply(f)
}

// Apply registers the file's modes and bindings on the engine and
// unregisters bindings the previous application created that the new
// file no longer declares.
//
// Individual bindings that fail to parse or resolve are skipped with a
// warning so a typo in a reload cannot take the whole table down.
func (m *Manager) Apply(f *File) error {
	if f == nil {
		return fmt.Errorf("config: nil file")
	}

	if f.AmbiguityTimeoutMS > 0 {
		m.engine.SetAmbiguityTimeout(time.Duration(f.AmbiguityTimeoutMS) * time.Millisecond)
	}

	for _, md := range f.Modes {
		if md.ID == "" {
			diag.Warn(m.sink, diag.KindConfigReload, "skipping mode with empty id")
			continue
		}
		if m.engine.Mode(md.ID) != nil {
			// Modes survive reloads; only their bindings change.
			continue
		}
		def := mode.New(md.ID, md.Priority)
		def.Opaque = md.Opaque
		def.ConsumesDigits = md.ConsumesDigits
		if err := m.engine.RegisterMode(def); err != nil {
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	next := make([]appliedBinding, 0, len(f.Bindings))
	declared := make(map[appliedBinding]bool, len(f.Bindings))

	for _, b := range f.Bindings {
		mapping, err := keymap.NewMapping(b.Keys, nil)
		if err != nil {
			diag.Warn(m.sink, diag.KindConfigReload, "skipping unparseable binding",
				diag.String("mode", b.Mode),
				diag.String("keys", b.Keys),
				diag.Err(err))
			continue
		}
		cmd, err := m.resolver.Resolve(b.Action)
		if err != nil {
			diag.Warn(m.sink, diag.KindConfigReload, "skipping unresolvable binding",
				diag.String("mode", b.Mode),
				diag.String("keys", b.Keys),
				diag.String("action", b.Action),
				diag.Err(err))
			continue
		}

		mapping.Command = cmd
		mapping.Description = b.Description
		mapping.Repeatable = b.Repeatable
		mapping.Source = "config"

		if err := m.engine.AddMapping(b.Mode, mapping); err != nil {
			diag.Warn(m.sink, diag.KindConfigReload, "skipping binding",
				diag.String("mode", b.Mode),
				diag.String("keys", b.Keys),
				diag.Err(err))
			continue
		}

		ab := appliedBinding{mode: b.Mode, keys: b.Keys}
		next = append(next, ab)
		declared[ab] = true
	}

	// Remove bindings we applied earlier that the file dropped.
	for _, old := range m.applied {
		if declared[old] {
			continue
		}
		if err := m.engine.RemoveMapping(old.mode, old.keys); err != nil {
			diag.Warn(m.sink, diag.KindConfigReload, "removing stale binding",
				diag.String("mode", old.mode),
				diag.String("keys", old.keys),
				diag.Err(err))
		}
	}
	m.applied = next

	diag.Debug(m.sink, diag.KindConfigReload, "configuration applied",
		diag.Int("bindings", len(next)),
		diag.Int("modes", len(f.Modes)))
	return nil
}
