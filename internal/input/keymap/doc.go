// Package keymap defines mappings (a key sequence bound to a command
// within one mode) and the trie that resolves token sequences to them.
//
// A trie node is non-terminal, an unambiguous terminal (a mapping with
// no longer continuation), or an ambiguous terminal (a mapping that is
// also a prefix of a longer one, like "g" when "gg" is bound too).
// Step exposes both facts so the dispatcher can decide whether to fire
// immediately or wait out the ambiguity window.
package keymap
