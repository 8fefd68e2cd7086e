// Package script embeds a Lua interpreter so key bindings and modes
// can be defined from user scripts instead of Go code.
//
// A Host owns one Lua state and exposes the dispatch engine to it as
// the "keyroute" module. The state is not goroutine-safe; the host
// serializes all access, including handler invocations that arrive
// from the dispatch loop.
package script
