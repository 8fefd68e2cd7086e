// Package input implements the key dispatch engine.
//
// The Engine is the single entry point for raw key events. Per event it
// encodes the canonical token, diverts leading digits into the repeat
// count, walks the active mode's trie, and resolves ambiguity between a
// complete mapping and longer continuations with a cancellable timer.
// Modes stack by priority; opaque modes swallow everything while
// active, transparent modes fall through on no match, and events no
// mode claims are handed to the host's unhandled callback.
//
// Engines carry no hidden global state: every engine is independent,
// so several can coexist (one per embedded frame, or under test).
package input
