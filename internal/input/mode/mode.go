package mode

import (
	"github.com/dshills/keyroute/internal/input/key"
	"github.com/dshills/keyroute/internal/input/keymap"
)

// Mode is a named, prioritized, stackable key handler with its own
// mapping trie.
type Mode struct {
	// ID uniquely identifies the mode ("normal", "hint", "insert").
	ID string

	// Priority orders the stack; higher priorities sit above lower
	// ones and receive events first.
	Priority int

	// Opaque modes swallow every event while active, matched or not.
	Opaque bool

	// ConsumesDigits disables repeat-count accumulation while this
	// mode is on top (text-entry modes type digits literally).
	ConsumesDigits bool

	// OnEnter runs when the mode is first pushed onto the stack.
	OnEnter func()

	// OnExit runs when the mode is popped off the stack.
	OnExit func()

	// OnUnmapped, if set, receives events the mode swallowed without
	// a mapping match (an insert mode uses this to type the event).
	OnUnmapped func(e key.Event)

	trie *keymap.Trie
}

// New creates a mode with an empty trie.
func New(id string, priority int) *Mode {
	return &Mode{
		ID:       id,
		Priority: priority,
		trie:     keymap.NewTrie(),
	}
}

// AsOpaque marks the mode opaque.
func (m *Mode) AsOpaque() *Mode {
	m.Opaque = true
	return m
}

// WithDigits marks the mode as consuming literal digits.
func (m *Mode) WithDigits() *Mode {
	m.ConsumesDigits = true
	return m
}

// Trie returns the mode's mapping trie.
func (m *Mode) Trie() *keymap.Trie {
	return m.trie
}
