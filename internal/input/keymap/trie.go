package keymap

import (
	"sync"

	"github.com/dshills/keyroute/internal/input/key"
)

// Trie maps canonical token sequences to mappings for one mode.
//
// Mutation and stepping are guarded so that a walk observes either the
// old or the new trie, never a half-applied change. Node pointers held
// across a Remove stay valid; they simply describe the tree as it was
// when the walk began.
type Trie struct {
	mu   sync.RWMutex
	root *Node
	size int
}

// Node is one position in the trie. The zero state is non-terminal;
// a node with a mapping and no children is an unambiguous terminal;
// a node with both is an ambiguous terminal.
type Node struct {
	children map[string]*Node
	mapping  *Mapping
}

// Mapping returns the mapping terminating at this node, or nil.
func (n *Node) Mapping() *Mapping {
	if n == nil {
		return nil
	}
	return n.mapping
}

// HasChildren reports whether longer sequences continue past this node.
func (n *Node) HasChildren() bool {
	return n != nil && len(n.children) > 0
}

// IsAmbiguous reports whether this node is both a complete mapping and
// a prefix of a longer one.
func (n *Node) IsAmbiguous() bool {
	return n != nil && n.mapping != nil && len(n.children) > 0
}

// NewTrie creates an empty trie.
func NewTrie() *Trie {
	return &Trie{root: &Node{}}
}

// Len returns the number of mappings in the trie.
func (t *Trie) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.size
}

// Add inserts a mapping along its sequence path. An existing terminal
// at the exact path is overwritten (last-write-wins) and returned so
// the caller can emit a conflict diagnostic; insertion never fails on
// conflict.
func (t *Trie) Add(m *Mapping) (replaced *Mapping) {
	if m == nil || m.Sequence == nil || m.Sequence.IsEmpty() {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	node := t.root
	for _, e := range m.Sequence.Events {
		token, ok := key.Encode(e)
		if !ok {
			return nil
		}
		if node.children == nil {
			node.children = make(map[string]*Node)
		}
		child, exists := node.children[token]
		if !exists {
			child = &Node{}
			node.children[token] = child
		}
		node = child
	}

	replaced = node.mapping
	node.mapping = m
	if replaced == nil {
		t.size++
	}
	return replaced
}

// Remove deletes the terminal at the exact sequence path and prunes
// now-dead nodes upward. Returns the removed mapping, or nil if the
// path held none.
func (t *Trie) Remove(seq *key.Sequence) *Mapping {
	if seq == nil || seq.IsEmpty() {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	// Walk down remembering the path for pruning.
	type step struct {
		parent *Node
		token  string
	}
	path := make([]step, 0, seq.Len())

	node := t.root
	for _, e := range seq.Events {
		token, ok := key.Encode(e)
		if !ok {
			return nil
		}
		child, exists := node.children[token]
		if !exists {
			return nil
		}
		path = append(path, step{parent: node, token: token})
		node = child
	}

	removed := node.mapping
	if removed == nil {
		return nil
	}
	node.mapping = nil
	t.size--

	// Prune upward: a node with no mapping and no children is dead.
	for i := len(path) - 1; i >= 0; i-- {
		child := path[i].parent.children[path[i].token]
		if child.mapping != nil || len(child.children) > 0 {
			break
		}
		delete(path[i].parent.children, path[i].token)
	}

	return removed
}

// Step advances one event from the given node (nil means the root).
// ok is false when the event continues no known sequence from here.
func (t *Trie) Step(from *Node, e key.Event) (next *Node, ok bool) {
	token, encodable := key.Encode(e)
	if !encodable {
		return nil, false
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	if from == nil {
		from = t.root
	}
	next, ok = from.children[token]
	return next, ok
}

// Find performs an exact lookup of a full sequence. Used for
// introspection and the dot-repeat fast path.
func (t *Trie) Find(seq *key.Sequence) *Mapping {
	if seq == nil || seq.IsEmpty() {
		return nil
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	node := t.root
	for _, e := range seq.Events {
		token, ok := key.Encode(e)
		if !ok {
			return nil
		}
		child, exists := node.children[token]
		if !exists {
			return nil
		}
		node = child
	}
	return node.mapping
}

// Walk visits every mapping in the trie. Visit order is unspecified.
func (t *Trie) Walk(fn func(m *Mapping)) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	walkNode(t.root, fn)
}

func walkNode(n *Node, fn func(m *Mapping)) {
	if n.mapping != nil {
		fn(n.mapping)
	}
	for _, child := range n.children {
		walkNode(child, fn)
	}
}
