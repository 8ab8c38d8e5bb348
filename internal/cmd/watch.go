package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/hoppxi/filekit/internal/manager"
	"github.com/hoppxi/filekit/internal/watch"
)

// runWatch reruns job on changes in dir or in the config file until ctx is
// cancelled.
func runWatch(ctx context.Context, out io.Writer, dir string, ignore func(string) bool, job func() error) error {
	reload := make(chan struct{}, 1)
	manager.Config.Watch(func() {
		select {
		case reload <- struct{}{}:
		default:
		}
	})

	fmt.Fprintf(out, "Watching %s for changes (Ctrl+C to stop)\n", dir)
	err := watch.Dir(ctx, dir, watch.Options{Ignore: ignore, Trigger: reload}, job)
	fmt.Fprintln(out, "Stopped watching")
	return err
}
