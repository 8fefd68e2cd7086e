// Package repeat records the most recent repeatable command so it can
// be replayed on demand (dot-repeat).
//
// A recorded entry holds the base-mode key sequence and repeat count,
// plus a trace for each sub-mode the action entered while completing
// (selecting among on-screen targets, for example). Replay is driven by
// the engine; this package only captures and stores.
package repeat
