package config

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/roelfdiedericks/trailmcp/internal/logging"
)

// DefaultDebounce is how long the watcher waits for writes to settle.
const DefaultDebounce = 500 * time.Millisecond

// Watcher reloads a config file when it changes and hands the new config
// to a callback. Reload errors are logged and the old config stays in use.
type Watcher struct {
	path     string
	debounce time.Duration
	onChange func(*Config)

	watcher *fsnotify.Watcher
	stopCh  chan struct{}
	done    chan struct{}

	mu           sync.Mutex
	pendingTimer *time.Timer
	stopped      bool
}

// NewWatcher watches the directory holding path, since editors often
// replace files by renaming over them.
func NewWatcher(path string, debounce time.Duration, onChange func(*Config)) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w := &Watcher{
		path:     abs,
		debounce: debounce,
		onChange: onChange,
		watcher:  fsw,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
	go w.run()
	logging.L_debug("config: watching", "path", abs)
	return w, nil
}

func (w *Watcher) run() {
	defer close(w.done)
	for {
		select {
		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			logging.L_trace("config: file event", "op", event.Op.String())
			w.trigger()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.L_warn("config: watcher error", "error", err)
		}
	}
}

func (w *Watcher) trigger() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return
	}
	if w.pendingTimer != nil {
		w.pendingTimer.Stop()
	}
	w.pendingTimer = time.AfterFunc(w.debounce, w.reload)
}

func (w *Watcher) reload() {
	w.mu.Lock()
	w.pendingTimer = nil
	stopped := w.stopped
	w.mu.Unlock()
	if stopped {
		return
	}

	cfg, _, err := Load(w.path)
	if err != nil {
		logging.L_warn("config: reload failed, keeping current settings", "path", w.path, "error", err)
		return
	}
	logging.L_info("config: reloaded", "path", w.path)
	if w.onChange != nil {
		w.onChange(cfg)
	}
}

// Stop stops watching. Safe to call more than once.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	if w.pendingTimer != nil {
		w.pendingTimer.Stop()
	}
	w.mu.Unlock()

	close(w.stopCh)
	err := w.watcher.Close()
	<-w.done
	return err
}
