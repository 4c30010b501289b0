// Package watch triggers rebuilds when files under a directory tree change.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/yaklabco/htmlbundle/internal/logging"
)

// DefaultDebounce is how long the watcher waits for a burst of events to settle.
const DefaultDebounce = 200 * time.Millisecond

// ErrClosed is returned by Run after Close.
var ErrClosed = errors.New("watcher closed")

// Options configures a Watcher.
type Options struct {
	// Root is the directory watched recursively.
	Root string

	// Skip reports whether a path (file or directory) is ignored.
	// Hidden directories are always skipped.
	Skip func(path string) bool

	// Debounce defaults to DefaultDebounce.
	Debounce time.Duration
}

// Handler is called with the sorted set of paths that changed during one
// debounce window. Returning an error stops the watcher.
type Handler func(ctx context.Context, paths []string) error

// Watcher watches a directory tree with fsnotify.
type Watcher struct {
	root     string
	skip     func(string) bool
	debounce time.Duration
	fsw      *fsnotify.Watcher
}

// New creates a Watcher and registers every directory under opts.Root.
func New(opts Options) (*Watcher, error) {
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	w := &Watcher{
		root:     root,
		skip:     opts.Skip,
		debounce: opts.Debounce,
		fsw:      fsw,
	}
	if w.debounce <= 0 {
		w.debounce = DefaultDebounce
	}

	if err := w.addTree(root); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	return w, nil
}

// Close stops the underlying fsnotify watcher.
func (w *Watcher) Close() error {
	if err := w.fsw.Close(); err != nil {
		return fmt.Errorf("close watcher: %w", err)
	}
	return nil
}

// Watched returns the directories currently registered.
func (w *Watcher) Watched() []string {
	list := w.fsw.WatchList()
	sort.Strings(list)
	return list
}

// Run delivers debounced change sets to handle until ctx is done.
// It returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context, handle Handler) error {
	logger := logging.FromContext(ctx)

	pending := make(map[string]struct{})
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return ErrClosed
			}
			if !w.accept(ctx, event) {
				continue
			}
			logger.Debug("change detected", logging.FieldPath, event.Name, logging.FieldEvent, event.Op.String())
			pending[event.Name] = struct{}{}
			timer.Reset(w.debounce)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return ErrClosed
			}
			logger.Warn("watch error", logging.FieldError, err)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			paths := make([]string, 0, len(pending))
			for path := range pending {
				paths = append(paths, path)
			}
			sort.Strings(paths)
			clear(pending)

			if err := handle(ctx, paths); err != nil {
				return err
			}
		}
	}
}

// accept filters an event and registers newly created directories.
func (w *Watcher) accept(ctx context.Context, event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	if w.ignored(event.Name) {
		return false
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				logging.FromContext(ctx).Warn("watch new directory", logging.FieldPath, event.Name, logging.FieldError, err)
			}
		}
	}

	return true
}

// ignored reports whether path is hidden below the root or skipped by the caller.
func (w *Watcher) ignored(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return true
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if len(part) > 1 && strings.HasPrefix(part, ".") && part != ".." {
			return true
		}
	}
	return w.skip != nil && w.skip(path)
}

func (w *Watcher) addTree(dir string) error {
	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() {
			return nil
		}
		if path != w.root && w.ignored(path) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("register %s: %w", dir, err)
	}
	return nil
}
