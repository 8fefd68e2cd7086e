// Package mode defines interaction modes and the priority-ordered
// stack that routes dispatch between them.
//
// Each mode owns its own mapping trie and an enter/exit lifecycle.
// Opaque modes swallow every event while active, matched or not, which
// is how a text-entry mode keeps lower-priority shortcuts from leaking
// into typed text. Transparent modes let unmatched events fall through
// to the next mode on the stack.
package mode
