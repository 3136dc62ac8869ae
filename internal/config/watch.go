package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DebounceDelay is how long the config file must stay quiet before a reload.
const DebounceDelay = 500 * time.Millisecond

// Watch reloads the config once the file at path has been written or created
// and then left alone for DebounceDelay, and passes the result to fn. A burst
// of events such as truncate then write yields one reload of the final
// content. Reload errors are passed through as well.
// The directory is watched rather than the file so editors that replace the
// file on save keep triggering events. Watch blocks until ctx is done.
func Watch(ctx context.Context, path string, fn func(*Config, error)) error {
	return watch(ctx, path, DebounceDelay, fn)
}

func watch(ctx context.Context, path string, delay time.Duration, fn func(*Config, error)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer w.Close()

	dir := filepath.Dir(path)
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	// settled is nil while no reload is pending.
	var settle *time.Timer
	var settled <-chan time.Time
	defer func() {
		if settle != nil {
			settle.Stop()
		}
	}()

	target := filepath.Clean(path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if settle == nil {
				settle = time.NewTimer(delay)
			} else {
				settle.Reset(delay)
			}
			settled = settle.C
		case <-settled:
			settled = nil
			fn(Load(path))
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			fn(nil, fmt.Errorf("watch error: %w", err))
		}
	}
}
