// Package count implements repeat-count accumulation for digit-prefixed
// commands such as "3dd".
//
// Digits are diverted from the trie walk only while no sequence is
// pending: '1'-'9' always start or extend a count, '0' extends one but
// never starts it, so a lone "0" can remain a bindable key. The
// effective count defaults to 1 and is clamped to [1, MaxRepeat].
package count
