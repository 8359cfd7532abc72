// Package watch reports changes to a single file, debounced.
package watch

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches one file for changes. Bursts of events within the debounce
// window produce a single callback.
type Watcher struct {
	mu       sync.Mutex
	logger   *slog.Logger
	path     string
	debounce time.Duration

	watcher  *fsnotify.Watcher
	timer    *time.Timer
	onChange func()

	done    chan struct{}
	stopped chan struct{}
	running bool
}

// New creates a watcher for path. The callback runs on the watcher's own
// goroutine; callers that touch UI state must post it to their loop.
func New(path string, debounce time.Duration, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		logger:   logger,
		path:     filepath.Clean(path),
		debounce: debounce,
	}
}

// Path returns the watched file.
func (w *Watcher) Path() string {
	return w.path
}

// Start begins watching. It returns once the watch is established.
func (w *Watcher) Start(ctx context.Context, onChange func()) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	// Watch the directory containing the file; editors replace files on save.
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		_ = fw.Close()
		return err
	}

	w.watcher = fw
	w.onChange = onChange
	w.done = make(chan struct{})
	w.stopped = make(chan struct{})
	w.running = true

	go w.watch(ctx)

	w.logger.Debug("file watcher started", "path", w.path, "debounce", w.debounce)
	return nil
}

func (w *Watcher) watch(ctx context.Context) {
	defer close(w.stopped)

	name := filepath.Base(w.path)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				w.schedule()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watcher error", "path", w.path, "error", err)

		case <-ctx.Done():
			return
		case <-w.done:
			return
		}
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.fire)
}

func (w *Watcher) fire() {
	w.mu.Lock()
	cb := w.onChange
	running := w.running
	w.mu.Unlock()

	if running && cb != nil {
		w.logger.Debug("file changed", "path", w.path)
		cb()
	}
}

// Stop stops watching. Pending debounced callbacks are dropped.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	if w.timer != nil {
		w.timer.Stop()
	}
	close(w.done)
	fw := w.watcher
	w.mu.Unlock()

	err := fw.Close()
	<-w.stopped
	return err
}

// IsRunning returns whether the watcher is currently running.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}
