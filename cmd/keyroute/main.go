// Package main is an interactive terminal harness for the dispatch
// engine: it wires modes, bindings, configuration reload, and Lua
// scripting, and shows pending state on a status line.
package main

import (
	"flag"
	"fmt"
	"os"
	"sync"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/dshills/keyroute/internal/config"
	"github.com/dshills/keyroute/internal/diag"
	"github.com/dshills/keyroute/internal/input"
	"github.com/dshills/keyroute/internal/input/key"
	"github.com/dshills/keyroute/internal/input/keymap"
	"github.com/dshills/keyroute/internal/input/mode"
	"github.com/dshills/keyroute/internal/input/tcellkey"
	"github.com/dshills/keyroute/internal/script"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

type options struct {
	configPath string
	scriptPath string
	logPath    string
}

func main() {
	os.Exit(run())
}

func run() int {
	var opts options
	var showVersion bool
	flag.StringVar(&opts.configPath, "config", "", "path to a TOML binding file (watched for changes)")
	flag.StringVar(&opts.scriptPath, "script", "", "path to a Lua binding script")
	flag.StringVar(&opts.logPath, "log", "", "path for the diagnostic log")
	flag.BoolVar(&showVersion, "version", false, "print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("keyroute %s (%s)\n", version, commit)
		return 0
	}

	logger, err := newLogger(opts.logPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: opening log: %v\n", err)
		return 1
	}
	defer logger.Sync()

	app, err := newDemo(opts, diag.NewZapSink(logger))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer app.close()

	if err := app.loop(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// newLogger builds a file-backed logger; logging to the terminal would
// fight the screen. No path means no log output.
func newLogger(path string) (*zap.Logger, error) {
	if path == "" {
		return zap.NewNop(), nil
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	return cfg.Build()
}

// demo is the harness state: one engine, one screen, a scrollback of
// action messages, and a small text buffer the insert mode types into.
type demo struct {
	engine  *input.Engine
	screen  tcell.Screen
	watcher *config.Watcher
	host    *script.Host

	// mu guards messages and text: timeout-resolved commands run on a
	// timer goroutine while the event loop draws.
	mu       sync.Mutex
	messages []string
	text     []rune

	quit     chan struct{}
	quitOnce sync.Once
}

func newDemo(opts options, sink diag.Sink) (*demo, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("creating screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("initializing screen: %w", err)
	}

	d := &demo{
		engine: input.NewEngine(input.Config{Sink: sink}),
		screen: screen,
		quit:   make(chan struct{}),
	}

	if err := d.setup(opts, sink); err != nil {
		screen.Fini()
		return nil, err
	}
	return d, nil
}

func (d *demo) setup(opts options, sink diag.Sink) error {
	normal := mode.New("normal", 0)
	insert := mode.New("insert", 10).AsOpaque().WithDigits()
	insert.OnUnmapped = func(ev key.Event) {
		if ev.IsRune() && !ev.IsModified() {
			d.mu.Lock()
			d.text = append(d.text, ev.Rune)
			d.mu.Unlock()
		}
	}
	hint := mode.New("hint", 20).AsOpaque()

	for _, m := range []*mode.Mode{normal, insert, hint} {
		if err := d.engine.RegisterMode(m); err != nil {
			return err
		}
	}

	bindings := []struct {
		mode, keys, action string
		repeatable         bool
	}{
		{"normal", "d d", "delete-line", true},
		{"normal", "g g", "scroll-top", false},
		{"normal", "g t", "next-tab", false},
		{"normal", "x", "delete-char", true},
		{"normal", "i", "enter-insert", false},
		{"normal", "f", "enter-hint", false},
		{"normal", "q", "quit", false},
		{"normal", "C-q", "quit", false},
		{"insert", "<Esc>", "leave-insert", false},
		{"hint", "<Esc>", "leave-hint", false},
	}
	for _, b := range bindings {
		cmd, err := d.actions().Resolve(b.action)
		if err != nil {
			return err
		}
		m, err := keymap.NewMapping(b.keys, cmd)
		if err != nil {
			return err
		}
		m.Repeatable = b.repeatable
		m.Source = "builtin"
		if err := d.engine.AddMapping(b.mode, m); err != nil {
			return err
		}
	}

	if err := d.engine.Bind("normal", ".", d.engine.DotCommand()); err != nil {
		return err
	}

	d.engine.OnUnhandled(func(ev key.Event) {
		d.note("unhandled: %s", key.MustEncode(ev))
	})

	if err := d.engine.PushMode("normal"); err != nil {
		return err
	}

	if opts.configPath != "" {
		mgr := config.NewManager(d.engine, d.actions(), sink)
		if err := mgr.LoadFile(opts.configPath); err != nil {
			return err
		}
		w, err := mgr.Watch(opts.configPath)
		if err != nil {
			return err
		}
		d.watcher = w
	}

	if opts.scriptPath != "" {
		d.host = script.NewHost(d.engine, sink)
		if err := d.host.LoadFile(opts.scriptPath); err != nil {
			return err
		}
	}

	return nil
}

// actions resolves the demo's built-in action names, shared by the
// hardcoded bindings and the configuration file.
func (d *demo) actions() config.MapResolver {
	note := func(format string) keymap.Command {
		return keymap.CommandFunc(func(inv keymap.Invocation) error {
			d.note(format, inv.Count)
			return nil
		})
	}
	push := func(id string) keymap.Command {
		return keymap.CommandFunc(func(keymap.Invocation) error {
			return d.engine.PushMode(id)
		})
	}
	pop := func(id string) keymap.Command {
		return keymap.CommandFunc(func(keymap.Invocation) error {
			d.engine.PopMode(id)
			return nil
		})
	}

	return config.MapResolver{
		"delete-line":  note("delete %d line(s)"),
		"scroll-top":   note("scroll to top (count %d)"),
		"next-tab":     note("next tab (count %d)"),
		"delete-char":  note("delete %d char(s)"),
		"enter-insert": push("insert"),
		"enter-hint":   push("hint"),
		"leave-insert": pop("insert"),
		"leave-hint":   pop("hint"),
		"quit": keymap.CommandFunc(func(keymap.Invocation) error {
			d.quitOnce.Do(func() { close(d.quit) })
			return nil
		}),
	}
}

func (d *demo) note(format string, args ...any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.messages = append(d.messages, fmt.Sprintf(format, args...))
	if len(d.messages) > 8 {
		d.messages = d.messages[len(d.messages)-8:]
	}
}

func (d *demo) loop() error {
	for {
		select {
		case <-d.quit:
			return nil
		default:
		}

		d.draw()

		switch ev := d.screen.PollEvent().(type) {
		case *tcell.EventKey:
			if kev, ok := tcellkey.FromEventKey(ev); ok {
				d.engine.FeedKey(kev)
			}
		case *tcell.EventResize:
			d.screen.Sync()
		case nil:
			return nil
		}
	}
}

func (d *demo) draw() {
	d.screen.Clear()
	_, h := d.screen.Size()

	d.mu.Lock()
	text := string(d.text)
	messages := append([]string(nil), d.messages...)
	d.mu.Unlock()

	d.drawLine(0, tcell.StyleDefault.Bold(true), "keyroute demo: dd/x repeatable, gg/gt ambiguous prefix, i insert, f hint, . repeat, q quit")
	d.drawLine(2, tcell.StyleDefault, "text: "+text)

	for i, msg := range messages {
		d.drawLine(4+i, tcell.StyleDefault, msg)
	}

	status := fmt.Sprintf(" -- %s --", d.engine.ActiveMode())
	if c := d.engine.PendingCount(); c > 0 {
		status += fmt.Sprintf("  count: %d", c)
	}
	if p := d.engine.Pending(); p != "" {
		status += "  pending: " + p
	}
	d.drawLine(h-1, tcell.StyleDefault.Reverse(true), status)

	d.screen.Show()
}

func (d *demo) drawLine(y int, style tcell.Style, s string) {
	w, h := d.screen.Size()
	if y < 0 || y >= h {
		return
	}
	x := 0
	for _, r := range s {
		if x >= w {
			break
		}
		d.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

func (d *demo) close() {
	if d.watcher != nil {
		d.watcher.Stop()
	}
	if d.host != nil {
		d.host.Close()
	}
	d.screen.Fini()
}
