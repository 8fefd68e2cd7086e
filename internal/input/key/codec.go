package key

import "strings"

// Encode turns an event into its canonical token.
//
// Tokens look like "a", "A", "0", "Space", "Escape", "C-x", "A-Enter",
// "S-Tab". Letters keep shift-derived distinctness ("a" vs "A");
// control combinations are case-insensitive on the letter, so Ctrl+X
// and Ctrl+x both encode as "C-x". Shift appears explicitly only on
// special keys.
//
// ok is false for events that cannot be bound: bare modifier presses
// and empty events.
func Encode(e Event) (token string, ok bool) {
	if e.Key == KeyNone {
		return "", false
	}
	if e.Key == KeyRune && e.Rune == 0 {
		return "", false
	}

	var sb strings.Builder
	if e.Modifiers.Has(ModCtrl) {
		sb.WriteString("C-")
	}
	if e.Modifiers.Has(ModAlt) {
		sb.WriteString("A-")
	}
	if e.Modifiers.Has(ModMeta) {
		sb.WriteString("M-")
	}
	if e.Modifiers.Has(ModShift) && !e.IsRune() {
		sb.WriteString("S-")
	}

	switch {
	case e.Key == KeyRune && e.Rune == ' ':
		sb.WriteString("Space")
	case e.Key == KeyRune:
		sb.WriteRune(e.normalizedRune())
	default:
		sb.WriteString(e.Key.String())
	}

	return sb.String(), true
}

// DecodeToken parses a canonical token back into an event.
func DecodeToken(token string) (Event, error) {
	return parseHyphenated(token)
}

// Decode returns a display label for a canonical token, suitable for
// status lines and help overlays. Examples: "C-x" renders as "Ctrl+X",
// "A" as "A", "Escape" as "Escape".
func Decode(token string) string {
	e, err := DecodeToken(token)
	if err != nil {
		return token
	}

	var parts []string
	if e.Modifiers.Has(ModCtrl) {
		parts = append(parts, "Ctrl")
	}
	if e.Modifiers.Has(ModAlt) {
		parts = append(parts, "Alt")
	}
	if e.Modifiers.Has(ModMeta) {
		parts = append(parts, "Meta")
	}
	if e.Modifiers.Has(ModShift) && !e.IsRune() {
		parts = append(parts, "Shift")
	}

	switch {
	case e.Key == KeyRune && e.Rune == ' ':
		parts = append(parts, "Space")
	case e.Key == KeyRune && e.Modifiers.Has(ModCtrl):
		// Control letters display uppercase regardless of the
		// case-folded canonical form.
		parts = append(parts, strings.ToUpper(string(e.Rune)))
	case e.Key == KeyRune:
		parts = append(parts, string(e.Rune))
	default:
		parts = append(parts, e.Key.String())
	}

	return strings.Join(parts, "+")
}

// MustEncode encodes an event and panics if it is not bindable.
// Use only in initialization code with known-good events.
func MustEncode(e Event) string {
	token, ok := Encode(e)
	if !ok {
		panic("key: event is not encodable: " + e.GoString())
	}
	return token
}
