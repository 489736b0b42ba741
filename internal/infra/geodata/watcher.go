package geodata

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ReloadFunc rebuilds state from the changed file.
type ReloadFunc func(ctx context.Context) error

// Watcher reloads boundaries when the backing file changes.
type Watcher struct {
	path     string
	debounce time.Duration
	reload   ReloadFunc
	logger   *slog.Logger
}

// NewWatcher constructs a watcher for path.
func NewWatcher(path string, debounce time.Duration, reload ReloadFunc, logger *slog.Logger) *Watcher {
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	return &Watcher{
		path:     path,
		debounce: debounce,
		reload:   reload,
		logger:   logger.With("component", "geodata.watcher"),
	}
}

// Start watches the file's directory until ctx is done. Editors often replace
// files instead of writing them in place, so the directory is watched and
// events are filtered by name.
func (w *Watcher) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		_ = watcher.Close()
		return err
	}
	target := filepath.Clean(w.path)
	go func() {
		defer watcher.Close()
		var (
			timer *time.Timer
			fire  <-chan time.Time
		)
		for {
			select {
			case <-ctx.Done():
				if timer != nil {
					timer.Stop()
				}
				return
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(evt.Name) != target {
					continue
				}
				if evt.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				if timer == nil {
					timer = time.NewTimer(w.debounce)
				} else {
					timer.Reset(w.debounce)
				}
				fire = timer.C
			case <-fire:
				fire = nil
				if err := w.reload(ctx); err != nil {
					w.logger.Warn("boundary reload failed", "path", w.path, "error", err)
					continue
				}
				w.logger.Info("boundaries reloaded", "path", w.path)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				w.logger.Warn("watcher error", "error", err)
			}
		}
	}()
	return nil
}
