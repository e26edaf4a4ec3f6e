package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const DefaultDebounce = 100 * time.Millisecond

// Watcher reruns a callback whenever one file changes.
type Watcher struct {
	path     string
	debounce time.Duration
	logger   *slog.Logger
}

func New(path string, debounce time.Duration, logger *slog.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{path: path, debounce: debounce, logger: logger}
}

// Run calls onChange once, then again after every burst of writes to the
// file, until ctx is cancelled. The parent directory is watched so that
// editors replacing the file are noticed. Errors from onChange are logged,
// not returned.
func (w *Watcher) Run(ctx context.Context, onChange func() error) error {
	abs, err := filepath.Abs(w.path)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", w.path, err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}
	w.logger.Info("watching file", "path", abs, "debounce_ms", w.debounce.Milliseconds())

	w.trigger(onChange)

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("watcher stopped", "path", abs)
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if filepath.Clean(event.Name) != abs || !event.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			w.logger.Debug("file event", "path", event.Name, "op", event.Op.String())
			timer.Reset(w.debounce)

		case <-timer.C:
			w.trigger(onChange)

		case err, ok := <-fsw.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error("watcher error", "error", err)
		}
	}
}

func (w *Watcher) trigger(onChange func() error) {
	if err := onChange(); err != nil {
		w.logger.Error("reload failed", "path", w.path, "error", err)
	}
}
