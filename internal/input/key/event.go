package key

import (
	"fmt"
	"time"
	"unicode"
)

// Event represents a single key press.
type Event struct {
	// Key identifies the key pressed. KeyNone with modifiers set
	// represents a bare modifier press.
	Key Key

	// Rune is the character for KeyRune events. Shift-derived
	// characters carry the shifted rune ('A', '$', ...).
	Rune rune

	// Modifiers contains the active modifier keys.
	Modifiers Modifier

	// When is the event timestamp.
	When time.Time
}

// NewRuneEvent creates an event for a character key.
func NewRuneEvent(r rune, mods Modifier) Event {
	return Event{Key: KeyRune, Rune: r, Modifiers: mods, When: time.Now()}
}

// NewSpecialEvent creates an event for a special key.
func NewSpecialEvent(key Key, mods Modifier) Event {
	return Event{Key: key, Modifiers: mods, When: time.Now()}
}

// NewModifierEvent creates an event for a bare modifier press.
// Such events are not encodable and are ignored by the dispatcher.
func NewModifierEvent(mods Modifier) Event {
	return Event{Key: KeyNone, Modifiers: mods, When: time.Now()}
}

// IsRune returns true if this is a character key event.
func (e Event) IsRune() bool {
	return e.Key == KeyRune && e.Rune != 0
}

// IsModifierOnly returns true for bare modifier presses.
func (e Event) IsModifierOnly() bool {
	return e.Key == KeyNone
}

// IsModified returns true if a non-Shift modifier is pressed. For
// character events Shift is part of the character itself and does not
// count as a modifier.
func (e Event) IsModified() bool {
	if e.IsRune() {
		return e.Modifiers&(ModCtrl|ModAlt|ModMeta) != 0
	}
	return e.Modifiers != ModNone
}

// Digit returns the numeric value of an unmodified ASCII digit event.
// ok is false for anything else.
func (e Event) Digit() (n int, ok bool) {
	if !e.IsRune() || e.IsModified() {
		return 0, false
	}
	if e.Rune < '0' || e.Rune > '9' {
		return 0, false
	}
	return int(e.Rune - '0'), true
}

// IsEscape returns true if this is the Escape key with no modifiers.
func (e Event) IsEscape() bool {
	return e.Key == KeyEscape && e.Modifiers == ModNone
}

// IsEnter returns true if this is the Enter key with no modifiers.
func (e Event) IsEnter() bool {
	return e.Key == KeyEnter && e.Modifiers == ModNone
}

// Equals returns true if two events represent the same key press.
// Timestamps are not compared. Control combinations compare
// case-insensitively on the letter.
func (e Event) Equals(other Event) bool {
	a, aok := Encode(e)
	b, bok := Encode(other)
	if !aok || !bok {
		return aok == bok && e.Key == other.Key && e.Modifiers == other.Modifiers
	}
	return a == b
}

// normalizedRune returns the rune used for canonical encoding.
// Control combinations fold the letter to lowercase.
func (e Event) normalizedRune() rune {
	if e.Modifiers.Has(ModCtrl) {
		return unicode.ToLower(e.Rune)
	}
	return e.Rune
}

// GoString implements fmt.GoStringer for debugging.
func (e Event) GoString() string {
	return fmt.Sprintf("Event{Key: %s, Rune: %q, Modifiers: %s}",
		e.Key.String(), e.Rune, e.Modifiers.String())
}
