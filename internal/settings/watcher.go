package settings

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch starts an fsnotify watcher on the configuration file and calls
// reload after it changes, until ctx is cancelled. Events are debounced
// because editors tend to fire several writes per save, and the parent
// directory is watched rather than the file itself so that atomic
// write-then-rename saves keep being seen.
func Watch(ctx context.Context, configPath string, logger *slog.Logger, reload func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	dir := filepath.Dir(configPath)
	if err := w.Add(dir); err != nil {
		return err
	}
	target := filepath.Clean(configPath)

	logger.Info("settings watcher: started", slog.String("path", target))

	var debounce *time.Timer
	var debounceCh <-chan time.Time

	schedule := func() {
		if debounce == nil {
			debounce = time.NewTimer(200 * time.Millisecond)
			debounceCh = debounce.C
		} else {
			debounce.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			logger.Info("settings watcher: stopped")
			return nil

		case <-debounceCh:
			logger.Debug("settings watcher: reloading", slog.String("path", target))
			reload()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
				schedule()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("settings watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
