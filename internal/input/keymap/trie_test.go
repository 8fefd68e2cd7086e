package keymap

import (
	"testing"

	"github.com/dshills/keyroute/internal/input/key"
)

func noop(Invocation) error { return nil }

func mustMapping(t *testing.T, keys string) *Mapping {
	t.Helper()
	m, err := NewMapping(keys, CommandFunc(noop))
	if err != nil {
		t.Fatalf("NewMapping(%q) error: %v", keys, err)
	}
	return m
}

func TestTrieAddAndFind(t *testing.T) {
	trie := NewTrie()

	dd := mustMapping(t, "dd")
	if replaced := trie.Add(dd); replaced != nil {
		t.Fatalf("Add on empty trie replaced %v", replaced)
	}
	if trie.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", trie.Len())
	}

	if got := trie.Find(key.MustParseSequence("dd")); got != dd {
		t.Error("Find should return the registered mapping")
	}
	if got := trie.Find(key.MustParseSequence("d")); got != nil {
		t.Error("Find of a bare prefix should return nil")
	}
}

func TestTrieLastWriteWins(t *testing.T) {
	trie := NewTrie()

	first := mustMapping(t, "gg")
	second := mustMapping(t, "gg")

	trie.Add(first)
	replaced := trie.Add(second)

	if replaced != first {
		t.Errorf("Add should return the replaced mapping, got %v", replaced)
	}
	if trie.Len() != 1 {
		t.Errorf("Len() = %d, want 1 after replacement", trie.Len())
	}
	if got := trie.Find(key.MustParseSequence("gg")); got != second {
		t.Error("the later registration should win")
	}
}

func TestTrieStep(t *testing.T) {
	trie := NewTrie()
	trie.Add(mustMapping(t, "g g"))
	trie.Add(mustMapping(t, "g t"))
	trie.Add(mustMapping(t, "g"))

	g := key.MustParse("g")

	node, ok := trie.Step(nil, g)
	if !ok {
		t.Fatal("Step from root with 'g' should advance")
	}
	if !node.IsAmbiguous() {
		t.Error("'g' should be an ambiguous terminal (mapping plus children)")
	}

	node2, ok := trie.Step(node, g)
	if !ok {
		t.Fatal("Step with second 'g' should advance")
	}
	if node2.Mapping() == nil || node2.HasChildren() {
		t.Error("'gg' should be an unambiguous terminal")
	}

	if _, ok := trie.Step(node, key.MustParse("x")); ok {
		t.Error("'g x' continues no known sequence")
	}
}

func TestTrieStepCtrlCaseInsensitive(t *testing.T) {
	trie := NewTrie()
	trie.Add(mustMapping(t, "<C-x>"))

	if _, ok := trie.Step(nil, key.NewRuneEvent('X', key.ModCtrl|key.ModShift)); !ok {
		t.Error("Ctrl+Shift+X should match a C-x binding")
	}
}

func TestTrieRemove(t *testing.T) {
	trie := NewTrie()
	trie.Add(mustMapping(t, "g g"))
	trie.Add(mustMapping(t, "g t"))

	removed := trie.Remove(key.MustParseSequence("g g"))
	if removed == nil {
		t.Fatal("Remove should return the removed mapping")
	}
	if trie.Len() != 1 {
		t.Errorf("Len() = %d, want 1", trie.Len())
	}

	// The shared 'g' prefix must survive for the remaining mapping.
	if got := trie.Find(key.MustParseSequence("g t")); got == nil {
		t.Error("removing 'g g' must not disturb 'g t'")
	}

	// Removing the last child prunes the now-dead prefix.
	trie.Remove(key.MustParseSequence("g t"))
	if _, ok := trie.Step(nil, key.MustParse("g")); ok {
		t.Error("'g' subtree should be pruned once empty")
	}
}

func TestTrieRemoveMissing(t *testing.T) {
	trie := NewTrie()
	trie.Add(mustMapping(t, "dd"))

	if removed := trie.Remove(key.MustParseSequence("dw")); removed != nil {
		t.Error("removing an unbound pattern should return nil")
	}
	if removed := trie.Remove(key.MustParseSequence("d")); removed != nil {
		t.Error("removing a bare prefix should return nil")
	}
	if trie.Len() != 1 {
		t.Errorf("Len() = %d, want 1", trie.Len())
	}
}

func TestTrieWalk(t *testing.T) {
	trie := NewTrie()
	for _, p := range []string{"dd", "gg", "g t", "x"} {
		trie.Add(mustMapping(t, p))
	}

	seen := make(map[string]bool)
	trie.Walk(func(m *Mapping) { seen[m.Keys] = true })

	if len(seen) != 4 {
		t.Errorf("Walk visited %d mappings, want 4", len(seen))
	}
}
