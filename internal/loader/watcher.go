package loader

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period after the last event before a batch
// of changes is reported.
const DefaultDebounce = 300 * time.Millisecond

// WatchOptions configures Watch.
type WatchOptions struct {
	// Debounce is the quiet period; zero uses DefaultDebounce.
	Debounce time.Duration

	// Logger receives watch errors. Nil discards them.
	Logger *slog.Logger
}

// Watch monitors the root at path, a document or a directory of documents,
// and sends each debounced batch of changed paths on changes. It blocks
// until the context is cancelled.
func Watch(ctx context.Context, path string, changes chan<- []string, opts WatchOptions) error {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("watching %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	var (
		dir      *Dir
		relevant func(name string) bool
	)
	if info.IsDir() {
		if dir, err = OpenDir(abs); err != nil {
			return err
		}
		if err := addTree(watcher, dir, abs); err != nil {
			return fmt.Errorf("setting up watcher: %w", err)
		}
		relevant = func(name string) bool {
			return isSupportedFile(name) && !dir.Ignored(name, false)
		}
	} else {
		// Editors often replace files by rename, so the parent is watched.
		if err := watcher.Add(filepath.Dir(abs)); err != nil {
			return fmt.Errorf("setting up watcher: %w", err)
		}
		relevant = func(name string) bool { return name == abs }
	}

	changed := make(map[string]bool)
	batchTimer := time.NewTimer(opts.Debounce)
	batchTimer.Stop()
	defer batchTimer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			name := filepath.Clean(event.Name)

			if dir != nil && event.Has(fsnotify.Create) {
				if fi, err := os.Stat(name); err == nil && fi.IsDir() {
					if dir.Ignored(name, true) {
						continue
					}
					if err := addTree(watcher, dir, name); err != nil {
						logger.Warn("watching new directory", "path", name, "error", err)
					}
					changed[name] = true
					batchTimer.Reset(opts.Debounce)
					continue
				}
			}
			if !relevant(name) {
				continue
			}
			changed[name] = true
			batchTimer.Reset(opts.Debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "error", err)

		case <-batchTimer.C:
			if len(changed) == 0 {
				continue
			}
			batch := make([]string, 0, len(changed))
			for p := range changed {
				batch = append(batch, p)
			}
			sort.Strings(batch)
			changed = make(map[string]bool)

			select {
			case changes <- batch:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

// addTree watches start and every directory below it that the root does not
// ignore.
func addTree(w *fsnotify.Watcher, root *Dir, start string) error {
	return filepath.WalkDir(start, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if root.Ignored(path, true) {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}
