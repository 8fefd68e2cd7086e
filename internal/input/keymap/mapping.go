package keymap

import (
	"github.com/dshills/keyroute/internal/input/key"
)

// Invocation carries the arguments a command receives when it fires.
type Invocation struct {
	// Count is the repeat count parsed from a leading digit run.
	// Always >= 1.
	Count int

	// Sequence is the key sequence that matched the mapping.
	Sequence *key.Sequence

	// Trailing holds raw tokens fed after the match within the same
	// injection (programmatic replays may carry them). Usually empty
	// for live keyboard input.
	Trailing []key.Event

	// Mode is the id of the mode that owned the mapping.
	Mode string
}

// Command is the executable side of a mapping. Implementations must
// not block the dispatch loop; long work is handed off and resolved
// without depending on dispatcher state, which is reset before any
// continuation runs.
type Command interface {
	Execute(inv Invocation) error
}

// CommandFunc adapts a function to the Command interface.
type CommandFunc func(inv Invocation) error

// Execute calls the function.
func (f CommandFunc) Execute(inv Invocation) error {
	return f(inv)
}

// Mapping binds a key sequence, within one mode, to a command.
type Mapping struct {
	// Keys is the original pattern specification ("gg", "C-x C-s").
	Keys string

	// Sequence is the parsed pattern.
	Sequence *key.Sequence

	// Command executes when the pattern resolves.
	Command Command

	// Description documents the mapping for help overlays.
	Description string

	// Source indicates where the mapping was defined
	// ("default", "user", "script:hints.lua").
	Source string

	// Repeatable marks the mapping as eligible for dot-repeat.
	// Irreversible actions and the dot command itself opt out.
	Repeatable bool
}

// NewMapping creates a mapping from a pattern specification.
// The pattern must parse; use the trie's Add for registration.
func NewMapping(keys string, cmd Command) (*Mapping, error) {
	seq, err := key.ParseSequence(keys)
	if err != nil {
		return nil, err
	}
	return &Mapping{
		Keys:     keys,
		Sequence: seq,
		Command:  cmd,
	}, nil
}

// WithDescription sets the description.
func (m *Mapping) WithDescription(desc string) *Mapping {
	m.Description = desc
	return m
}

// WithSource sets the source.
func (m *Mapping) WithSource(source string) *Mapping {
	m.Source = source
	return m
}

// AsRepeatable marks the mapping as dot-repeatable.
func (m *Mapping) AsRepeatable() *Mapping {
	m.Repeatable = true
	return m
}
