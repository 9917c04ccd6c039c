package schema

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period before a reload.
const DefaultDebounce = 250 * time.Millisecond

// ReloadFunc is called after every reload attempt.
type ReloadFunc func(LoadResult, error)

// Watcher reloads a Loader when files in its directory change.
// Bursts of events, as produced by editors writing a file, are coalesced
// into a single reload.
type Watcher struct {
	loader   *Loader
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	debounce *Debouncer
	onReload ReloadFunc

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewWatcher creates a watcher for the loader's directory.
func NewWatcher(loader *Loader, debounce time.Duration, onReload ReloadFunc, logger *slog.Logger) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}
	if onReload == nil {
		onReload = func(LoadResult, error) {}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		loader:   loader,
		watcher:  fsw,
		logger:   logger,
		debounce: NewDebouncer(debounce),
		onReload: onReload,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Watch processes file events until ctx is cancelled or Stop is called.
func (w *Watcher) Watch(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return errors.New("watcher already running")
	}
	w.running = true
	w.mu.Unlock()

	defer close(w.doneCh)

	if err := w.addDirectory(w.loader.Dir()); err != nil {
		return fmt.Errorf("failed to watch schema dir: %w", err)
	}
	w.logger.Info("schema watcher started", "dir", w.loader.Dir())

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("schema watcher stopped (context cancelled)")
			return nil

		case <-w.stopCh:
			w.logger.Info("schema watcher stopped")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return errors.New("watcher events channel closed")
			}
			if event.Op&fsnotify.Create == fsnotify.Create {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addDirectory(event.Name); err != nil {
						w.logger.Warn("failed to watch new directory", "path", event.Name, "error", err)
					}
					continue
				}
			}
			if !w.shouldProcess(event) {
				continue
			}

			w.logger.Debug("schema file event", "path", event.Name, "op", event.Op.String())
			w.debounce.Trigger(w.reload)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return errors.New("watcher errors channel closed")
			}
			w.logger.Error("schema watcher error", "error", err)
		}
	}
}

func (w *Watcher) reload() {
	res, err := w.loader.Load()
	if err != nil {
		w.logger.Error("schema reload failed", "error", err)
	} else {
		w.logger.Info("schema reloaded", "files", res.Files, "grids", res.Grids, "removed", res.Removed)
	}
	w.onReload(res, err)
}

// Stop stops the watcher and waits for Watch to return.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	running := w.running
	w.running = false
	w.mu.Unlock()

	if running {
		close(w.stopCh)
		<-w.doneCh
	}
	w.debounce.Stop()

	if err := w.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}
	return nil
}

func (w *Watcher) addDirectory(dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") && path != dir {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch directory %q: %w", path, err)
		}
		return nil
	})
}

func (w *Watcher) shouldProcess(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	if strings.HasPrefix(filepath.Base(event.Name), ".") {
		return false
	}
	return hasExtension(event.Name, w.loader.Extensions())
}

// Debouncer runs the most recent callback once no new trigger has arrived
// for the interval.
type Debouncer struct {
	interval time.Duration

	mu       sync.Mutex
	timer    *time.Timer
	callback func()
	stopped  bool
}

// NewDebouncer creates a new debouncer.
func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{interval: interval}
}

// Trigger schedules callback, replacing any pending one.
func (d *Debouncer) Trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.callback = callback
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, d.fire)
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	cb := d.callback
	if d.stopped {
		cb = nil
	}
	d.callback = nil
	d.mu.Unlock()

	if cb != nil {
		cb()
	}
}

// Stop cancels any pending callback. Later triggers are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.callback = nil
}
