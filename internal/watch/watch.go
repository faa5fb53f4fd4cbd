// Package watch re-runs an action whenever one of a fixed set of files
// changes on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const DefaultDebounce = 200 * time.Millisecond

var ErrNoPaths = errors.New("nothing to watch")

// Action is called after a burst of changes settles. Errors are logged and
// do not stop the watch.
type Action func(ctx context.Context) error

// Watcher coalesces change events on the watched files into single calls.
type Watcher struct {
	Debounce time.Duration
	Logger   *slog.Logger
}

// Run blocks until ctx is cancelled or the underlying watcher fails.
// Directories are watched rather than files so that editors replacing a file
// by rename keep being noticed.
func (w *Watcher) Run(ctx context.Context, paths []string, fn Action) error {
	if len(paths) == 0 {
		return ErrNoPaths
	}
	log := w.Logger
	if log == nil {
		log = slog.Default()
	}
	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	watched := make(map[string]bool, len(paths))
	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("watch %s: %w", p, err)
		}
		watched[abs] = true
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := fw.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		dirs[dir] = true
	}
	log.Debug("watching", "files", len(watched), "dirs", len(dirs))

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			abs, _ := filepath.Abs(event.Name)
			if !watched[abs] {
				continue
			}
			log.Debug("change", "path", abs, "op", event.Op.String())
			timer.Reset(debounce)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch: %w", err)
		case <-timer.C:
			if err := fn(ctx); err != nil {
				log.Warn("re-run failed", "err", err)
			}
		}
	}
}
