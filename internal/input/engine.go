package input

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/keyroute/internal/diag"
	"github.com/dshills/keyroute/internal/input/count"
	"github.com/dshills/keyroute/internal/input/key"
	"github.com/dshills/keyroute/internal/input/keymap"
	"github.com/dshills/keyroute/internal/input/mode"
	"github.com/dshills/keyroute/internal/input/repeat"
)

// Default timings.
const (
	// DefaultAmbiguityTimeout is how long the dispatcher waits for a
	// longer sequence before resolving an ambiguous terminal.
	DefaultAmbiguityTimeout = 1000 * time.Millisecond

	// DefaultReplayDelay is the pause before each replayed sub-mode
	// injection, giving the sub-mode's asynchronous setup time to
	// complete.
	DefaultReplayDelay = 100 * time.Millisecond
)

// Config configures an engine.
type Config struct {
	// AmbiguityTimeout bounds how long a pending sequence waits for
	// continuation. Zero selects DefaultAmbiguityTimeout.
	AmbiguityTimeout time.Duration

	// ReplayDelay is the per-sub-mode pause during dot-repeat replay.
	// Zero selects DefaultReplayDelay.
	ReplayDelay time.Duration

	// Clock drives the ambiguity timer and replay delays. Nil selects
	// the wall clock; tests plug in a fake.
	Clock Clock

	// Sink receives diagnostics. Nil discards them.
	Sink diag.Sink
}

// Engine is the key dispatch engine: the single entry point for raw
// key events and programmatic injections. Each engine is fully
// independent; hosts may run several side by side.
type Engine struct {
	mu sync.Mutex

	id    string
	cfg   Config
	clock Clock
	sink  diag.Sink

	modes map[string]*mode.Mode
	stack *mode.Stack

	pending     *key.Sequence
	pendingMode *mode.Mode
	pendingNode *keymap.Node
	counter     *count.State

	timer    Timer
	timerGen uint64

	recorder *repeat.Recorder
	hooks    *Hooks
	metrics  *Metrics

	onUnhandled func(key.Event)

	replayDepth  int
	replayTimers []Timer
}

// NewEngine creates an engine with no modes registered.
func NewEngine(cfg Config) *Engine {
	if cfg.AmbiguityTimeout <= 0 {
		cfg.AmbiguityTimeout = DefaultAmbiguityTimeout
	}
	if cfg.ReplayDelay <= 0 {
		cfg.ReplayDelay = DefaultReplayDelay
	}
	if cfg.Clock == nil {
		cfg.Clock = NewRealClock()
	}
	if cfg.Sink == nil {
		cfg.Sink = diag.Nop
	}

	return &Engine{
		id:       uuid.NewString(),
		cfg:      cfg,
		clock:    cfg.Clock,
		sink:     cfg.Sink,
		modes:    make(map[string]*mode.Mode),
		stack:    mode.NewStack(cfg.Sink),
		pending:  key.NewSequence(),
		counter:  count.NewState(),
		recorder: repeat.NewRecorder(),
		hooks:    NewHooks(),
		metrics:  NewMetrics(),
	}
}

// ID returns the engine's instance id, used to correlate diagnostics
// when several engines coexist.
func (e *Engine) ID() string {
	return e.id
}

// SetAmbiguityTimeout adjusts the ambiguity window for subsequent
// dispatches. Non-positive durations are ignored.
func (e *Engine) SetAmbiguityTimeout(d time.Duration) {
	if d <= 0 {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cfg.AmbiguityTimeout = d
}

// Hooks returns the engine's hook set.
func (e *Engine) Hooks() *Hooks {
	return e.hooks
}

// Metrics returns the engine's metrics tracker.
func (e *Engine) Metrics() *Metrics {
	return e.metrics
}

// OnUnhandled sets the callback invoked when no mode claims an event,
// letting the host forward it to the native surface.
func (e *Engine) OnUnhandled(fn func(key.Event)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onUnhandled = fn
}

// RegisterMode makes a mode available for pushing. Registering an id
// again replaces the previous definition for future pushes; an
// instance already on the stack is unaffected.
func (e *Engine) RegisterMode(m *mode.Mode) error {
	if m == nil || m.ID == "" {
		return fmt.Errorf("input: mode must have an id")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.modes[m.ID] = m
	return nil
}

// Mode returns a registered mode by id, or nil.
func (e *Engine) Mode(id string) *mode.Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.modes[id]
}

// PushMode activates a registered mode. Pushing an active mode moves
// it to the top of its priority class without re-running OnEnter.
func (e *Engine) PushMode(id string) error {
	e.mu.Lock()
	m, ok := e.modes[id]
	replaying := e.replayDepth > 0
	e.mu.Unlock()
	if !ok {
		return fmt.Errorf("input: unknown mode %q", id)
	}

	changed := e.stack.Push(m)

	e.mu.Lock()
	if changed {
		e.stopTimerLocked()
		e.clearPendingLocked()
		e.counter.Reset()
	}
	e.mu.Unlock()

	if !replaying {
		e.recorder.EnterSubMode(id)
	}
	return nil
}

// PopMode deactivates a mode by id. Popping an id not on the stack is
// a no-op reported at debug level.
func (e *Engine) PopMode(id string) {
	changed := e.stack.Pop(id)

	e.mu.Lock()
	if changed {
		e.stopTimerLocked()
		e.clearPendingLocked()
		e.counter.Reset()
	}
	e.mu.Unlock()

	e.recorder.LeaveSubMode(id)
}

// ActiveMode returns the id of the mode on top of the stack, or the
// empty string when the stack is empty.
func (e *Engine) ActiveMode() string {
	if top := e.stack.Top(); top != nil {
		return top.ID
	}
	return ""
}

// AddMapping registers a mapping in a mode. Re-registering an
// identical pattern replaces the prior mapping and emits a conflict
// diagnostic; it never fails on conflict.
func (e *Engine) AddMapping(modeID string, m *keymap.Mapping) error {
	target := e.Mode(modeID)
	if target == nil {
		return fmt.Errorf("input: unknown mode %q", modeID)
	}
	if m == nil || m.Sequence == nil || m.Sequence.IsEmpty() {
		return fmt.Errorf("input: mapping needs a non-empty sequence")
	}
	if m.Command == nil {
		return fmt.Errorf("input: mapping %q needs a command", m.Keys)
	}

	if replaced := target.Trie().Add(m); replaced != nil {
		diag.Warn(e.sink, diag.KindMappingConflict, "mapping replaced",
			diag.String("engine", e.id),
			diag.String("mode", modeID),
			diag.String("keys", m.Keys),
			diag.String("old_source", replaced.Source),
			diag.String("new_source", m.Source))
	}
	return nil
}

// Bind is a convenience for registering a non-repeatable mapping from
// a pattern specification.
func (e *Engine) Bind(modeID, keys string, cmd keymap.Command) error {
	m, err := keymap.NewMapping(keys, cmd)
	if err != nil {
		return fmt.Errorf("input: parsing %q: %w", keys, err)
	}
	return e.AddMapping(modeID, m)
}

// RemoveMapping deletes the mapping at the exact pattern in a mode.
func (e *Engine) RemoveMapping(modeID, keys string) error {
	target := e.Mode(modeID)
	if target == nil {
		return fmt.Errorf("input: unknown mode %q", modeID)
	}
	seq, err := key.ParseSequence(keys)
	if err != nil {
		return fmt.Errorf("input: parsing %q: %w", keys, err)
	}
	target.Trie().Remove(seq)
	return nil
}

// Pending returns the in-progress sequence as display tokens, for
// status lines. Empty when nothing is pending.
func (e *Engine) Pending() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pending.String()
}

// PendingCount returns the accumulated repeat count, or 0 when no
// digits are pending.
func (e *Engine) PendingCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.counter.Active() {
		return 0
	}
	return e.counter.Get()
}

// LastCommand returns a copy of the most recent repeatable command, or
// nil when nothing has been recorded.
func (e *Engine) LastCommand() *repeat.Entry {
	return e.recorder.Last()
}

// Cancel aborts the current dispatch cycle: pending sequence, repeat
// count, ambiguity timer, and any in-flight replay.
func (e *Engine) Cancel() {
	e.mu.Lock()
	e.stopTimerLocked()
	e.clearPendingLocked()
	e.counter.Reset()
	e.mu.Unlock()
	e.CancelReplay()
}

// FeedKey processes one raw key event from the host's input source.
func (e *Engine) FeedKey(ev key.Event) Status {
	start := time.Now()

	if e.hooks.runPre(ev) {
		e.metrics.recordHookConsumed()
		e.hooks.runPost(ev, StatusHandled)
		return StatusHandled
	}

	e.mu.Lock()
	status, exec := e.feedLocked(ev, feedOpts{live: true, record: true})
	e.mu.Unlock()

	e.runExecution(exec)
	e.metrics.recordKey(time.Since(start), status)
	e.hooks.runPost(ev, status)
	return status
}

// FeedSequence injects a token sequence programmatically: digits are
// literal keys (no repeat-count semantics) and a trailing ambiguous
// terminal resolves immediately instead of waiting out the ambiguity
// window. Used by replay and external simulation tooling.
func (e *Engine) FeedSequence(events ...key.Event) Status {
	return e.feedSequence(events, 0, false)
}

// feedOpts controls how one event moves through the dispatch core.
type feedOpts struct {
	// live events divert digits and arm the ambiguity timer;
	// programmatic injections do neither.
	live bool

	// record allows dot-repeat recording and trace capture.
	record bool

	// forcedCount overrides the repeat count during replay.
	forcedCount int
}

// execution is the work prepared under the engine lock and run outside
// it: a matched command, an opaque mode's unmapped fallback, or the
// unhandled callback.
type execution struct {
	mapping *keymap.Mapping
	inv     keymap.Invocation
	record  bool

	unmapped   func(key.Event)
	unmappedEv key.Event

	unhandledEv *key.Event
}

func (e *Engine) feedLocked(ev key.Event, opts feedOpts) (Status, *execution) {
	if _, ok := key.Encode(ev); !ok {
		// Bare modifier presses are not bindable; ignore.
		return StatusUnhandled, nil
	}

	// Capture sub-mode continuation keys for dot-repeat.
	if opts.record {
		if top := e.stack.Top(); top != nil && e.recorder.Capturing() == top.ID {
			e.recorder.CaptureEvent(top.ID, ev)
		}
	}

	// Leading digits divert into the repeat count unless the active
	// mode consumes literal digits.
	if opts.live && e.pendingNode == nil {
		if top := e.stack.Top(); top != nil && !top.ConsumesDigits {
			if e.counter.Accumulate(ev) {
				return StatusPending, nil
			}
		}
	}

	if e.pendingNode != nil {
		e.stopTimerLocked()
		next, ok := e.pendingMode.Trie().Step(e.pendingNode, ev)
		if ok {
			e.pending.Add(ev)
			e.pendingNode = next
			return e.resolveLocked(opts)
		}
		// The token continues no known prefix: discard the pending
		// sequence and route the token on its own. Routine, not an
		// error.
		e.clearPendingLocked()
		e.counter.Reset()
	}

	return e.routeLocked(ev, opts)
}

// routeLocked walks the mode stack top-down with a single token.
func (e *Engine) routeLocked(ev key.Event, opts feedOpts) (Status, *execution) {
	for _, m := range e.stack.Snapshot() {
		if node, ok := m.Trie().Step(nil, ev); ok {
			e.pendingMode = m
			e.pendingNode = node
			e.pending.Add(ev)
			return e.resolveLocked(opts)
		}
		if m.Opaque {
			// Swallowed, matched or not: nothing leaks below an
			// opaque mode.
			e.metrics.recordSwallowed()
			e.counter.Reset()
			exec := &execution{}
			if m.OnUnmapped != nil {
				exec.unmapped = m.OnUnmapped
				exec.unmappedEv = ev
			}
			return StatusHandled, exec
		}
	}

	e.counter.Reset()
	evCopy := ev
	return StatusUnhandled, &execution{unhandledEv: &evCopy}
}

// resolveLocked decides what the current pending node means.
func (e *Engine) resolveLocked(opts feedOpts) (Status, *execution) {
	node := e.pendingNode
	m := node.Mapping()

	if m != nil && !node.HasChildren() {
		// Unambiguous terminal: execute immediately.
		return StatusHandled, e.prepareLocked(m, opts)
	}

	// Ambiguous terminal or bare prefix: wait for more input. Live
	// input arms the timer; on timeout an ambiguous terminal fires
	// and a bare prefix is discarded.
	if opts.live {
		e.armTimerLocked()
	}
	return StatusPending, nil
}

// prepareLocked captures the invocation and resets dispatch state.
// The handler itself runs outside the lock.
func (e *Engine) prepareLocked(m *keymap.Mapping, opts feedOpts) *execution {
	cnt := e.counter.Get()
	if opts.forcedCount > 0 {
		cnt = opts.forcedCount
	}
	inv := keymap.Invocation{
		Count:    cnt,
		Sequence: e.pending.Clone(),
		Mode:     e.pendingMode.ID,
	}

	e.stopTimerLocked()
	e.clearPendingLocked()
	e.counter.Reset()

	return &execution{mapping: m, inv: inv, record: opts.record}
}

func (e *Engine) clearPendingLocked() {
	e.pending.Clear()
	e.pendingNode = nil
	e.pendingMode = nil
}

func (e *Engine) stopTimerLocked() {
	e.timerGen++
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}

func (e *Engine) armTimerLocked() {
	e.timerGen++
	gen := e.timerGen
	if e.timer != nil {
		e.timer.Stop()
	}
	e.timer = e.clock.AfterFunc(e.cfg.AmbiguityTimeout, func() {
		e.onTimeout(gen)
	})
}

// onTimeout resolves or discards the pending sequence when no further
// input arrived within the ambiguity window.
func (e *Engine) onTimeout(gen uint64) {
	e.mu.Lock()
	if gen != e.timerGen || e.pendingNode == nil {
		e.mu.Unlock()
		return
	}

	var exec *execution
	if m := e.pendingNode.Mapping(); m != nil {
		diag.Debug(e.sink, diag.KindAmbiguityTimeout, "ambiguous sequence resolved by timeout",
			diag.String("engine", e.id),
			diag.String("sequence", e.pending.String()),
			diag.String("mode", e.pendingMode.ID))
		exec = e.prepareLocked(m, feedOpts{live: true, record: true})
	} else {
		diag.Debug(e.sink, diag.KindAmbiguityTimeout, "pending sequence discarded by timeout",
			diag.String("engine", e.id),
			diag.String("sequence", e.pending.String()),
			diag.String("mode", e.pendingMode.ID))
		e.clearPendingLocked()
		e.counter.Reset()
	}
	e.metrics.recordTimeout()
	e.mu.Unlock()

	e.runExecution(exec)
}

// runExecution performs the work prepared under the lock. Handlers run
// here, outside the engine mutex, so they may push modes, register
// mappings, or trigger a replay without deadlocking.
func (e *Engine) runExecution(exec *execution) {
	if exec == nil {
		return
	}

	if exec.unmapped != nil {
		exec.unmapped(exec.unmappedEv)
		return
	}

	if exec.unhandledEv != nil {
		e.mu.Lock()
		cb := e.onUnhandled
		e.mu.Unlock()
		if cb != nil {
			cb(*exec.unhandledEv)
		}
		return
	}

	if exec.mapping == nil {
		return
	}

	if exec.record {
		if exec.mapping.Repeatable {
			e.recorder.Record(exec.inv.Mode, exec.inv.Sequence, exec.inv.Count)
		} else if e.recorder.Capturing() == "" {
			// An unrelated command fired: stop attributing sub-mode
			// entries to the previous recording.
			e.recorder.Close()
		}
	}

	e.metrics.recordCommand()
	e.executeCommand(exec.mapping, exec.inv)
}

// executeCommand runs a handler with failure containment: an error or
// panic is reported and the loop continues. Dispatch state was already
// reset before the handler runs.
func (e *Engine) executeCommand(m *keymap.Mapping, inv keymap.Invocation) {
	defer func() {
		if r := recover(); r != nil {
			e.metrics.recordFailure()
			diag.Error(e.sink, diag.KindHandlerFailure, "handler panicked",
				diag.String("engine", e.id),
				diag.String("keys", m.Keys),
				diag.String("mode", inv.Mode),
				diag.Any("panic", r))
		}
	}()

	if err := m.Command.Execute(inv); err != nil {
		e.metrics.recordFailure()
		diag.Error(e.sink, diag.KindHandlerFailure, "handler failed",
			diag.String("engine", e.id),
			diag.String("keys", m.Keys),
			diag.String("mode", inv.Mode),
			diag.Err(err))
	}
}
