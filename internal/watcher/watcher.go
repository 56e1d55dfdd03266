// Package watcher reloads the config file while the server runs.
package watcher

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"usercontext/internal/config"
)

// Watcher watches a config file for changes
type Watcher struct {
	path     string
	onChange func(*config.Config)
	debounce time.Duration
	log      *slog.Logger
}

// New creates a config watcher. onChange receives the reloaded config;
// a file that fails to parse is logged and skipped.
func New(path string, onChange func(*config.Config), log *slog.Logger) *Watcher {
	if log == nil {
		log = slog.Default()
	}
	return &Watcher{
		path:     path,
		onChange: onChange,
		debounce: 500 * time.Millisecond,
		log:      log,
	}
}

// WithDebounce sets the debounce duration
func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	w.debounce = d
	return w
}

// Watch blocks until the context is cancelled or the watcher fails
func (w *Watcher) Watch(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	// Watch the directory so editors that replace the file are seen
	dir := filepath.Dir(w.path)
	filename := filepath.Base(w.path)
	if err := fw.Add(dir); err != nil {
		return err
	}

	w.log.Debug("watching config", "path", w.path)

	var timer *time.Timer
	for {
		select {
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != filename {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, w.reload)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("config watcher error", "error", err)

		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return ctx.Err()
		}
	}
}

func (w *Watcher) reload() {
	cfg, _, err := config.LoadFromPath(w.path)
	if err != nil {
		w.log.Warn("config reload failed", "path", w.path, "error", err)
		return
	}
	cfg.ApplyEnv()
	w.log.Info("config reloaded", "path", w.path)
	w.onChange(cfg)
}
