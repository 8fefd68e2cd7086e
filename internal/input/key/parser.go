package key

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// Parse errors
var (
	ErrEmptySpec   = errors.New("empty key specification")
	ErrInvalidSpec = errors.New("invalid key specification")
)

// Parse parses a key specification string into an Event.
//
// Supported formats:
//   - Single character: "a", "A", "1", "@"
//   - Key names: "Enter", "Escape", "Tab", "Space"
//   - Modifier style: "Ctrl+S", "Alt+F4", "Ctrl+Shift+P"
//   - Hyphenated / canonical tokens: "C-x", "A-Enter", "S-Tab"
//   - Vim-style: "<C-s>", "<CR>", "<Esc>"
func Parse(spec string) (Event, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return Event{}, ErrEmptySpec
	}

	if strings.HasPrefix(spec, "<") && strings.HasSuffix(spec, ">") && len(spec) > 2 {
		return parseHyphenated(spec[1 : len(spec)-1])
	}

	if strings.Contains(spec, "+") && len(spec) > 1 {
		return parseModifierStyle(spec)
	}

	return parseHyphenated(spec)
}

// parseModifierStyle parses "Ctrl+Shift+P" style notation.
func parseModifierStyle(spec string) (Event, error) {
	parts := strings.Split(spec, "+")

	// A trailing empty part means the key itself is '+' ("Ctrl++").
	keyPart := parts[len(parts)-1]
	modParts := parts[:len(parts)-1]
	if keyPart == "" {
		keyPart = "+"
		if len(modParts) > 0 && modParts[len(modParts)-1] == "" {
			modParts = modParts[:len(modParts)-1]
		}
	}

	var mods Modifier
	for _, p := range modParts {
		mod := ModifierFromName(p)
		if mod == ModNone {
			return Event{}, fmt.Errorf("%w: unknown modifier %q", ErrInvalidSpec, p)
		}
		mods = mods.With(mod)
	}

	return parseKeyPart(keyPart, mods)
}

// parseHyphenated parses canonical tokens and Vim-style inner notation:
// "C-x", "A-Enter", "gg" is not valid here (single key only), "-" is
// the hyphen rune itself.
func parseHyphenated(s string) (Event, error) {
	if s == "" {
		return Event{}, ErrEmptySpec
	}

	keyPart := s
	var modStr string

	// A trailing hyphen means the key itself is '-' ("C--", "-").
	if strings.HasSuffix(s, "-") && len(s) > 1 {
		keyPart = "-"
		modStr = strings.TrimSuffix(s[:len(s)-1], "-")
	} else if idx := strings.LastIndex(s, "-"); idx > 0 {
		keyPart = s[idx+1:]
		modStr = s[:idx]
	}

	var mods Modifier
	if modStr != "" {
		for _, p := range strings.Split(modStr, "-") {
			mod := ModifierFromName(p)
			if mod == ModNone {
				// Not a modifier chain; treat the whole string
				// as a key name ("PageUp" has no hyphen but a
				// name like "KP-1" would land here).
				return parseKeyPart(s, ModNone)
			}
			mods = mods.With(mod)
		}
	}

	return parseKeyPart(keyPart, mods)
}

// parseKeyPart parses the key portion with already-known modifiers.
func parseKeyPart(keyPart string, mods Modifier) (Event, error) {
	keyPart = strings.TrimSpace(keyPart)
	if keyPart == "" {
		return Event{}, ErrEmptySpec
	}

	// Named special keys and common Vim aliases.
	if k := FromName(keyPart); k != KeyNone {
		return NewSpecialEvent(k, mods), nil
	}
	switch strings.ToLower(keyPart) {
	case "space":
		return NewRuneEvent(' ', mods), nil
	case "lt":
		return NewRuneEvent('<', mods), nil
	case "gt":
		return NewRuneEvent('>', mods), nil
	case "bar":
		return NewRuneEvent('|', mods), nil
	case "bslash":
		return NewRuneEvent('\\', mods), nil
	case "minus":
		return NewRuneEvent('-', mods), nil
	}

	runes := []rune(keyPart)
	if len(runes) != 1 {
		return Event{}, fmt.Errorf("%w: unknown key %q", ErrInvalidSpec, keyPart)
	}

	r := runes[0]
	if mods.Has(ModCtrl) {
		// Control combinations are case-insensitive on the letter.
		r = unicode.ToLower(r)
	} else if unicode.IsUpper(r) {
		// Uppercase letters carry implicit Shift.
		mods = mods.With(ModShift)
	}
	return NewRuneEvent(r, mods), nil
}

// MustParse parses a key specification and panics on error.
// Use only for known-valid specs in initialization code.
func MustParse(spec string) Event {
	e, err := Parse(spec)
	if err != nil {
		panic("key: invalid specification " + spec + ": " + err.Error())
	}
	return e
}
