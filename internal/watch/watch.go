// Package watch reruns a job when the contents of a directory change.
package watch

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the directory has to stay quiet before the
// job runs.
const DefaultDebounce = 300 * time.Millisecond

type Options struct {
	Debounce time.Duration
	// Ignore reports events the job itself causes, like its own output.
	Ignore func(name string) bool
	// Trigger schedules a rerun from outside the directory, e.g. a config
	// reload.
	Trigger <-chan struct{}
}

// Dir watches dir (not recursively) and calls onChange after every burst of
// events. It blocks until ctx is done and returns nil then. onChange runs
// on the calling goroutine; an error from it is logged and watching goes on.
func Dir(ctx context.Context, dir string, opts Options, onChange func() error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	log.Printf("[watch] listening for changes in %s", dir)

	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	timer := time.NewTimer(debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op == fsnotify.Chmod {
				continue
			}
			if opts.Ignore != nil && opts.Ignore(filepath.Base(event.Name)) {
				continue
			}
			log.Printf("[watch] %s", event)
			timer.Reset(debounce)
		case <-opts.Trigger:
			timer.Reset(debounce)
		case <-timer.C:
			if err := onChange(); err != nil {
				log.Printf("[watch] rerun failed: %v", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Println("watcher error:", err)
		}
	}
}
