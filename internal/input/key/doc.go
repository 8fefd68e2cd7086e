// Package key defines the key event model and the canonical token codec.
//
// A physical keypress arrives as an Event (key identity, rune, and
// modifier set). Encode turns an Event into a canonical token string
// such as "a", "C-x", or "Escape"; bare modifier presses are not
// encodable. Decode turns a token back into a display label.
//
// Binding patterns are written as key specifications:
//
//   - Simple keys: "a", "A", "0", "Enter", "Escape"
//   - With modifiers: "Ctrl+S", "Alt+F4", "C-x"
//   - Vim-style: "<C-s>", "<CR>", "<Esc>"
//
// Multi-key patterns like "gg" or "g g" parse into a Sequence.
package key
