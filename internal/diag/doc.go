// Package diag provides the diagnostic sink used throughout the engine.
//
// The engine never surfaces routine dispatch failures to the user; it
// reports them to a Sink and carries on. Hosts plug in a sink of their
// choice: NewZapSink for production logging, NewCaptureSink for tests,
// or Nop to discard everything.
package diag
