package input

import (
	"errors"
	"time"

	"github.com/dshills/keyroute/internal/diag"
	"github.com/dshills/keyroute/internal/input/key"
	"github.com/dshills/keyroute/internal/input/keymap"
	"github.com/dshills/keyroute/internal/input/repeat"
)

// ErrNothingToReplay is returned by ReplayLast when no repeatable
// command has been recorded yet.
var ErrNothingToReplay = errors.New("input: nothing to replay")

// feedSequence is the shared injection core behind FeedSequence and
// replay. Digits are literal; a trailing ambiguous terminal resolves
// immediately.
func (e *Engine) feedSequence(events []key.Event, forcedCount int, replaying bool) Status {
	opts := feedOpts{live: false, record: !replaying, forcedCount: forcedCount}

	status := StatusUnhandled
	for _, ev := range events {
		e.mu.Lock()
		st, exec := e.feedLocked(ev, opts)
		e.mu.Unlock()
		e.runExecution(exec)
		status = st
	}

	// Flush: injection never waits out the ambiguity window.
	e.mu.Lock()
	var exec *execution
	if e.pendingNode != nil {
		if m := e.pendingNode.Mapping(); m != nil {
			exec = e.prepareLocked(m, opts)
			status = StatusHandled
		} else {
			// Incomplete prefix; injected sequences either resolve
			// or are discarded.
			e.clearPendingLocked()
			e.counter.Reset()
			status = StatusUnhandled
		}
	}
	e.mu.Unlock()
	e.runExecution(exec)

	return status
}

// ReplayLast re-invokes the most recent repeatable command with its
// original repeat count: the top-level sequence goes back through the
// dispatch core, then each recorded sub-mode trace is injected
// directly into that sub-mode's trie after a short delay, giving the
// sub-mode's asynchronous setup time to complete.
//
// Replay against a changed target surface is best-effort: tokens that
// no longer resolve are dropped per token, never an error.
func (e *Engine) ReplayLast() error {
	entry := e.recorder.Last()
	if entry == nil {
		diag.Debug(e.sink, diag.KindReplayDrop, "dot-repeat with nothing recorded",
			diag.String("engine", e.id))
		return ErrNothingToReplay
	}

	e.metrics.recordReplay()

	e.mu.Lock()
	e.replayDepth++
	e.mu.Unlock()

	e.feedSequence(entry.Sequence.Events, entry.Count, true)

	e.mu.Lock()
	e.replayDepth += len(entry.Traces) - 1
	if e.replayDepth < 0 {
		e.replayDepth = 0
	}
	delay := e.cfg.ReplayDelay
	for i := range entry.Traces {
		tr := entry.Traces[i]
		t := e.clock.AfterFunc(delay*time.Duration(i+1), func() {
			e.injectTrace(tr)
			e.mu.Lock()
			if e.replayDepth > 0 {
				e.replayDepth--
			}
			e.mu.Unlock()
		})
		e.replayTimers = append(e.replayTimers, t)
	}
	e.mu.Unlock()

	return nil
}

// CancelReplay aborts any in-flight replay, stopping pending sub-mode
// injections.
func (e *Engine) CancelReplay() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, t := range e.replayTimers {
		t.Stop()
	}
	e.replayTimers = nil
	e.replayDepth = 0
}

// DotCommand returns the dot-repeat command. It is itself
// non-repeatable; bind it with Repeatable left false to avoid
// self-referential replay loops.
func (e *Engine) DotCommand() keymap.Command {
	return keymap.CommandFunc(func(keymap.Invocation) error {
		err := e.ReplayLast()
		if errors.Is(err, ErrNothingToReplay) {
			// Routine: the keystroke did nothing.
			return nil
		}
		return err
	})
}

// injectTrace walks a recorded sub-mode sequence directly against that
// mode's trie, bypassing stack routing: the active instance may not be
// addressable the same way at replay time.
func (e *Engine) injectTrace(tr repeat.Trace) {
	e.mu.Lock()
	m, ok := e.modes[tr.Mode]
	e.mu.Unlock()
	if !ok {
		diag.Debug(e.sink, diag.KindReplayDrop, "replay sub-mode no longer registered",
			diag.String("engine", e.id),
			diag.String("mode", tr.Mode))
		return
	}

	var node *keymap.Node
	walked := key.NewSequence()

	flush := func() {
		if mp := node.Mapping(); mp != nil {
			inv := keymap.Invocation{
				Count:    1,
				Sequence: walked.Clone(),
				Mode:     m.ID,
			}
			e.metrics.recordCommand()
			e.executeCommand(mp, inv)
		}
		node = nil
		walked.Clear()
	}

	for _, ev := range tr.Sequence.Events {
		next, ok := m.Trie().Step(node, ev)
		if !ok {
			// Changed surface or typed text: hand the token to the
			// mode's unmapped fallback, or drop it.
			if m.OnUnmapped != nil {
				m.OnUnmapped(ev)
			} else if token, enc := key.Encode(ev); enc {
				diag.Debug(e.sink, diag.KindReplayDrop, "replayed token no longer resolves",
					diag.String("engine", e.id),
					diag.String("mode", tr.Mode),
					diag.String("token", token))
			}
			node = nil
			walked.Clear()
			continue
		}
		node = next
		walked.Add(ev)
		if mp := node.Mapping(); mp != nil && !node.HasChildren() {
			flush()
		}
	}

	if node != nil {
		flush()
	}
}
