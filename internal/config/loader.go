package config

import (
	"fmt"
	"io"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/keyroute/internal/input/key"
)

// ModeDef declares a mode in a configuration file.
type ModeDef struct {
	ID             string `toml:"id"`
	Priority       int    `toml:"priority"`
	Opaque         bool   `toml:"opaque"`
	ConsumesDigits bool   `toml:"consumes_digits"`
}

// BindingDef declares one key binding in a configuration file.
type BindingDef struct {
	Mode        string `toml:"mode"`
	Keys        string `toml:"keys"`
	Action      string `toml:"action"`
	Description string `toml:"description"`
	Repeatable  bool   `toml:"repeatable"`
}

// File is a parsed configuration file.
type File struct {
	// AmbiguityTimeoutMS overrides the engine's ambiguity window when
	// positive.
	AmbiguityTimeoutMS int `toml:"ambiguity_timeout_ms"`

	Modes    []ModeDef    `toml:"mode"`
	Bindings []BindingDef `toml:"binding"`
}

// Load reads and parses a configuration file. A missing file yields an
// empty configuration, not an error.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &File{}, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	return parse(data)
}

// LoadReader parses a configuration from a reader.
func LoadReader(r io.Reader) (*File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("config: reading: %w", err)
	}
	return parse(data)
}

func parse(data []byte) (*File, error) {
	var f File
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("config: parsing: %w", err)
	}
	return &f, nil
}

// Validate checks the file for structural problems: empty ids,
// unparseable patterns, bindings that reference undeclared modes.
func (f *File) Validate() error {
	ids := make(map[string]bool, len(f.Modes))
	for i, m := range f.Modes {
		if m.ID == "" {
			return fmt.Errorf("config: mode %d: empty id", i)
		}
		if ids[m.ID] {
			return fmt.Errorf("config: mode %q declared twice", m.ID)
		}
		ids[m.ID] = true
	}
	for i, b := range f.Bindings {
		if b.Mode == "" {
			return fmt.Errorf("config: binding %d: empty mode", i)
		}
		if b.Action == "" {
			return fmt.Errorf("config: binding %d (%s): empty action", i, b.Keys)
		}
		if _, err := key.ParseSequence(b.Keys); err != nil {
			return fmt.Errorf("config: binding %d (%s): %w", i, b.Keys, err)
		}
	}
	return nil
}
