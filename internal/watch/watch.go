// Package watch re-runs an action whenever a configuration file changes.
// Used by "tkgel validate --watch" to keep a config checked while editing.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounce collapses the bursts of events editors emit on save.
const debounce = 500 * time.Millisecond

// File watches path and invokes fn after each change, debounced. The initial
// invocation is up to the caller. Blocks until ctx is cancelled.
func File(ctx context.Context, path string, log *slog.Logger, fn func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("watching %s: %w", path, err)
	}
	log.Info("watching config file", "path", path)

	var timer *time.Timer
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// Write and Create cover vim/nano-style saves.
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			log.Debug("config file changed", "op", event.Op.String())
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, fn)

			// Editors that replace the file drop the watch; re-add.
			if event.Has(fsnotify.Create) {
				_ = watcher.Add(path)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error("watcher error", "error", err)
		}
	}
}
