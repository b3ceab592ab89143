package store

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatcherConfig contains configuration for the rule file watcher.
type WatcherConfig struct {
	// Path is the file or directory to watch.
	Path string

	// DebounceInterval is the time to wait after the last change before
	// triggering a reload, preventing reload storms while a file is being
	// written. Default: 250ms
	DebounceInterval time.Duration
}

// DefaultWatcherConfig returns the default watcher configuration.
func DefaultWatcherConfig(path string) *WatcherConfig {
	return &WatcherConfig{
		Path:             path,
		DebounceInterval: 250 * time.Millisecond,
	}
}

// Watcher watches rule files for changes and triggers reloads with
// debouncing.
type Watcher struct {
	watcher *fsnotify.Watcher
	config  *WatcherConfig
	logger  *slog.Logger

	mu    sync.Mutex
	timer *time.Timer
}

// NewWatcher creates a new rule file watcher.
func NewWatcher(config *WatcherConfig, logger *slog.Logger) (*Watcher, error) {
	if config == nil {
		return nil, fmt.Errorf("watcher config cannot be nil")
	}
	if config.DebounceInterval <= 0 {
		config.DebounceInterval = 250 * time.Millisecond
	}
	if logger == nil {
		logger = slog.Default()
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		watcher: fsWatcher,
		config:  config,
		logger:  logger.With("component", "rules.store.watcher"),
	}, nil
}

// Watch blocks, watching the configured path and invoking onReload after
// changes settle. It returns when the context is cancelled.
func (w *Watcher) Watch(ctx context.Context, onReload func() error) error {
	if err := w.addPaths(); err != nil {
		return err
	}

	w.logger.Info("watching rule files",
		"path", w.config.Path,
		"debounce", w.config.DebounceInterval,
	)

	for {
		select {
		case <-ctx.Done():
			return w.watcher.Close()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("rule file changed", "path", event.Name, "op", event.Op.String())
			w.scheduleReload(onReload)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("rule file watcher error", "error", err)
		}
	}
}

// addPaths registers the path (and, for directories, the directory itself)
// with the underlying watcher.
func (w *Watcher) addPaths() error {
	info, err := os.Stat(w.config.Path)
	if err != nil {
		return fmt.Errorf("failed to stat watch path %q: %w", w.config.Path, err)
	}

	if info.IsDir() {
		return w.watcher.Add(w.config.Path)
	}
	// Watch the containing directory so atomic rename-replace is seen.
	return w.watcher.Add(filepath.Dir(w.config.Path))
}

// relevant filters events down to YAML writes/creates/renames/removes.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	ext := filepath.Ext(event.Name)
	if ext != ".yaml" && ext != ".yml" {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0
}

// scheduleReload resets the debounce timer.
func (w *Watcher) scheduleReload(onReload func() error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.config.DebounceInterval, func() {
		if err := onReload(); err != nil {
			w.logger.Error("rule reload failed", "error", err)
			return
		}
		w.logger.Info("rules reloaded after file change")
	})
}
