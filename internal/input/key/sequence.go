package key

import "strings"

// Sequence is an ordered series of key events forming a candidate or
// bound pattern. Examples: "gg" (scroll to top), "C-x C-s".
type Sequence struct {
	// Events contains the key events in order.
	Events []Event
}

// NewSequence creates an empty sequence.
func NewSequence() *Sequence {
	return &Sequence{Events: make([]Event, 0, 4)}
}

// NewSequenceFrom creates a sequence from the given events.
func NewSequenceFrom(events ...Event) *Sequence {
	return &Sequence{Events: events}
}

// Len returns the number of events in the sequence.
func (s *Sequence) Len() int {
	return len(s.Events)
}

// IsEmpty returns true if the sequence has no events.
func (s *Sequence) IsEmpty() bool {
	return len(s.Events) == 0
}

// Add appends an event to the sequence.
func (s *Sequence) Add(event Event) {
	s.Events = append(s.Events, event)
}

// Clear removes all events from the sequence.
func (s *Sequence) Clear() {
	s.Events = s.Events[:0]
}

// Tokens returns the canonical token for each event.
// Unencodable events render as "?".
func (s *Sequence) Tokens() []string {
	tokens := make([]string, len(s.Events))
	for i, e := range s.Events {
		token, ok := Encode(e)
		if !ok {
			token = "?"
		}
		tokens[i] = token
	}
	return tokens
}

// String returns the canonical tokens joined by spaces.
func (s *Sequence) String() string {
	return strings.Join(s.Tokens(), " ")
}

// Equals returns true if two sequences are identical.
func (s *Sequence) Equals(other *Sequence) bool {
	if s == nil || other == nil {
		return s == other
	}
	if len(s.Events) != len(other.Events) {
		return false
	}
	for i, e := range s.Events {
		if !e.Equals(other.Events[i]) {
			return false
		}
	}
	return true
}

// HasPrefix returns true if this sequence starts with the given prefix.
func (s *Sequence) HasPrefix(prefix *Sequence) bool {
	if prefix == nil || prefix.IsEmpty() {
		return true
	}
	if len(prefix.Events) > len(s.Events) {
		return false
	}
	for i, e := range prefix.Events {
		if !e.Equals(s.Events[i]) {
			return false
		}
	}
	return true
}

// Clone returns a copy of the sequence.
func (s *Sequence) Clone() *Sequence {
	if s == nil {
		return nil
	}
	events := make([]Event, len(s.Events))
	copy(events, s.Events)
	return &Sequence{Events: events}
}

// ParseSequence parses a pattern string into a Sequence. The string can
// contain space-separated key specs or a continuous Vim-style pattern.
// Examples: "g g", "C-x C-s", "<C-x><C-s>", "gg", "dd"
func ParseSequence(s string) (*Sequence, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return NewSequence(), nil
	}

	seq := NewSequence()

	if strings.Contains(s, " ") {
		for _, part := range strings.Fields(s) {
			e, err := Parse(part)
			if err != nil {
				return nil, err
			}
			seq.Add(e)
		}
		return seq, nil
	}

	runes := []rune(s)
	for i := 0; i < len(runes); {
		if runes[i] == '<' {
			end := -1
			for j := i + 1; j < len(runes); j++ {
				if runes[j] == '>' {
					end = j
					break
				}
			}
			if end == -1 || end == i+1 {
				// No closing '>' (or "<>"); literal '<'.
				seq.Add(NewRuneEvent('<', ModNone))
				i++
				continue
			}
			e, err := Parse(string(runes[i : end+1]))
			if err != nil {
				return nil, err
			}
			seq.Add(e)
			i = end + 1
			continue
		}

		r := runes[i]
		var mods Modifier
		if r >= 'A' && r <= 'Z' {
			mods = ModShift
		}
		seq.Add(NewRuneEvent(r, mods))
		i++
	}

	return seq, nil
}

// MustParseSequence parses a pattern string and panics on error.
// Use only for known-valid patterns in initialization code.
func MustParseSequence(s string) *Sequence {
	seq, err := ParseSequence(s)
	if err != nil {
		panic("key: invalid sequence " + s + ": " + err.Error())
	}
	return seq
}
