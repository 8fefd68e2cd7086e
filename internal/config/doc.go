// Package config loads declarative mode and binding tables from TOML
// and keeps a running engine in sync with them.
//
// A Manager applies a parsed file to an engine through a Resolver that
// turns action names into commands, and can watch the file for changes
// so edits take effect without restarting the host. Reload is
// tolerant: bindings that fail to parse or resolve are skipped with a
// diagnostic rather than aborting the reload.
package config
