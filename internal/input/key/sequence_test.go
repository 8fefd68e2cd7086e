package key

import "testing"

func TestParseSequence(t *testing.T) {
	tests := []struct {
		pattern string
		tokens  []string
	}{
		{"gg", []string{"g", "g"}},
		{"dd", []string{"d", "d"}},
		{"g g", []string{"g", "g"}},
		{"C-x C-s", []string{"C-x", "C-s"}},
		{"<C-x><C-s>", []string{"C-x", "C-s"}},
		{"dG", []string{"d", "G"}},
		{"ciw", []string{"c", "i", "w"}},
		{"<Esc>", []string{"Escape"}},
		{"g<Enter>", []string{"g", "Enter"}},
		{"", nil},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			seq, err := ParseSequence(tt.pattern)
			if err != nil {
				t.Fatalf("ParseSequence(%q) error: %v", tt.pattern, err)
			}
			if seq.Len() != len(tt.tokens) {
				t.Fatalf("ParseSequence(%q) has %d events, want %d",
					tt.pattern, seq.Len(), len(tt.tokens))
			}
			for i, token := range seq.Tokens() {
				if token != tt.tokens[i] {
					t.Errorf("ParseSequence(%q) token %d = %q, want %q",
						tt.pattern, i, token, tt.tokens[i])
				}
			}
		})
	}
}

func TestParseSequenceLiteralAngle(t *testing.T) {
	// An unclosed '<' is the literal character.
	seq, err := ParseSequence("a<b")
	if err != nil {
		t.Fatalf("ParseSequence error: %v", err)
	}
	want := []string{"a", "<", "b"}
	got := seq.Tokens()
	if len(got) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSequenceEquals(t *testing.T) {
	a := MustParseSequence("gg")
	b := MustParseSequence("g g")
	c := MustParseSequence("gG")

	if !a.Equals(b) {
		t.Error("continuous and spaced forms of the same pattern should be equal")
	}
	if a.Equals(c) {
		t.Error("gg and gG should differ")
	}
}

func TestSequenceHasPrefix(t *testing.T) {
	full := MustParseSequence("C-x C-s")
	prefix := MustParseSequence("C-x")
	other := MustParseSequence("C-c")

	if !full.HasPrefix(prefix) {
		t.Error("C-x should prefix C-x C-s")
	}
	if full.HasPrefix(other) {
		t.Error("C-c should not prefix C-x C-s")
	}
	if !full.HasPrefix(NewSequence()) {
		t.Error("empty sequence should prefix everything")
	}
	if prefix.HasPrefix(full) {
		t.Error("a longer sequence cannot be a prefix")
	}
}

func TestSequenceClone(t *testing.T) {
	orig := MustParseSequence("dd")
	clone := orig.Clone()

	clone.Add(MustParse("x"))
	if orig.Len() != 2 {
		t.Errorf("mutating a clone changed the original: len = %d", orig.Len())
	}
	if clone.Len() != 3 {
		t.Errorf("clone len = %d, want 3", clone.Len())
	}
}

func TestSequenceString(t *testing.T) {
	seq := MustParseSequence("<C-x><C-s>")
	if got := seq.String(); got != "C-x C-s" {
		t.Errorf("String() = %q, want %q", got, "C-x C-s")
	}
}
