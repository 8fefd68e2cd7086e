package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/keyroute/internal/diag"
)

// DefaultDebounce coalesces the burst of filesystem events editors
// produce for a single save.
const DefaultDebounce = 200 * time.Millisecond

// Watcher reloads a configuration file into a Manager whenever it
// changes on disk. It watches the file's directory rather than the
// file itself so atomic-rename saves keep working.
type Watcher struct {
	manager  *Manager
	path     string
	debounce time.Duration
	sink     diag.Sink

	fw   *fsnotify.Watcher
	done chan struct{}
	wg   sync.WaitGroup

	stopOnce sync.Once
}

// NewWatcher creates a watcher for the given file feeding the given
// manager. Zero debounce selects DefaultDebounce.
func NewWatcher(manager *Manager, path string, debounce time.Duration) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config: resolving %s: %w", path, err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config: creating watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("config: watching %s: %w", filepath.Dir(abs), err)
	}

	w := &Watcher{
		manager:  manager,
		path:     abs,
		debounce: debounce,
		sink:     manager.sink,
		fw:       fw,
		done:     make(chan struct{}),
	}

	w.wg.Add(1)
	go w.loop()
	return w, nil
}

// Stop shuts the watcher down and waits for its goroutine to exit.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.fw.Close()
		w.wg.Wait()
	})
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return

		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			w.reload()

		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			diag.Warn(w.sink, diag.KindConfigReload, "watch error",
				diag.String("path", w.path),
				diag.Err(err))
		}
	}
}

func (w *Watcher) reload() {
	if err := w.manager.LoadFile(w.path); err != nil {
		diag.Warn(w.sink, diag.KindConfigReload, "reload failed",
			diag.String("path", w.path),
			diag.Err(err))
		return
	}
	diag.Debug(w.sink, diag.KindConfigReload, "reloaded",
		diag.String("path", w.path))
}

// Watch is a convenience that starts watching path with the default
// debounce.
func (m *Manager) Watch(path string) (*Watcher, error) {
	return NewWatcher(m, path, 0)
}
