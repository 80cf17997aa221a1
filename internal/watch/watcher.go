// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period used when Options.Debounce is not set.
const DefaultDebounce = 300 * time.Millisecond

// ErrAlreadyRunning is returned by a second call to Run.
var ErrAlreadyRunning = errors.New("watch: already running")

// defaultIgnores are never watched: VCS metadata, editor swap files and OS
// metadata files.
var defaultIgnores = []string{
	".git",
	"**/.git/**",
	"**/*.swp",
	"**/*.swx",
	"**/*~",
	"**/.DS_Store",
}

type (
	// Options configures a Watcher.
	Options struct {
		// Root is the directory watched recursively. Defaults to ".".
		Root string
		// Ignore holds extra doublestar patterns, relative to Root, for paths
		// that never trigger the callback. A pattern matching a directory
		// also stops the watcher from descending into it.
		Ignore []string
		// Debounce is the quiet period after the last event.
		Debounce time.Duration
		// Logger receives watcher status lines. Nil discards.
		Logger *log.Logger
		// OnChange receives the sorted, deduplicated changed paths relative
		// to Root. An error is logged and watching continues.
		OnChange func(ctx context.Context, changed []string) error
	}

	// Watcher monitors a directory tree. Run must be called once.
	Watcher struct {
		opts    Options
		root    string
		ignores []string
		logger  *log.Logger
		fsw     *fsnotify.Watcher
		ran     bool
	}
)

// New validates opts and registers every non-ignored directory under Root.
func New(opts Options) (*Watcher, error) {
	root := opts.Root
	if root == "" {
		root = "."
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve root: %w", err)
	}

	for _, pat := range opts.Ignore {
		if !doublestar.ValidatePattern(pat) {
			return nil, fmt.Errorf("watch: invalid ignore pattern %q", pat)
		}
	}

	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		opts:    opts,
		root:    absRoot,
		ignores: slices.Concat(defaultIgnores, opts.Ignore),
		logger:  logger,
		fsw:     fsw,
	}
	if err := w.addTree(absRoot); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// Run processes events until ctx is cancelled. It returns nil on
// cancellation and an error when the underlying watcher breaks.
func (w *Watcher) Run(ctx context.Context) error {
	if w.ran {
		return ErrAlreadyRunning
	}
	w.ran = true
	defer func() {
		if err := w.fsw.Close(); err != nil {
			w.logger.Warn("close watcher", "err", err)
		}
	}()

	pending := make(map[string]struct{})
	// Armed by the first relevant event.
	timer := time.NewTimer(w.opts.Debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watch: event channel closed")
			}
			rel, relevant := w.relevant(evt)
			if !relevant {
				continue
			}
			if evt.Has(fsnotify.Create) {
				w.addIfDir(evt.Name)
			}
			pending[rel] = struct{}{}
			timer.Reset(w.opts.Debounce)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			changed := slices.Sorted(maps.Keys(pending))
			clear(pending)
			w.logger.Debug("change detected", "paths", len(changed))
			if w.opts.OnChange != nil {
				if err := w.opts.OnChange(ctx, changed); err != nil {
					w.logger.Error("callback failed", "err", err)
				}
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watch: error channel closed")
			}
			if isFatalFsnotifyError(err) {
				return fmt.Errorf("watch: %w", err)
			}
			w.logger.Warn("watch error", "err", err)
		}
	}
}

// relevant filters an event and returns its path relative to the root.
func (w *Watcher) relevant(evt fsnotify.Event) (string, bool) {
	if evt.Op == fsnotify.Chmod {
		return "", false
	}
	rel, err := filepath.Rel(w.root, evt.Name)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	return rel, !w.ignored(rel)
}

func (w *Watcher) ignored(rel string) bool {
	for _, pat := range w.ignores {
		if ok, _ := doublestar.Match(pat, rel); ok {
			return true
		}
	}
	return false
}

func (w *Watcher) addTree(dir string) error {
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			w.logger.Warn("skipping unreadable path", "path", path, "err", err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(w.root, path)
		if relErr != nil {
			return nil
		}
		if rel != "." && w.ignored(filepath.ToSlash(rel)) {
			return filepath.SkipDir
		}
		if addErr := w.fsw.Add(path); addErr != nil {
			return fmt.Errorf("watch: add %s: %w", path, addErr)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("watch: register directories: %w", err)
	}
	return nil
}

// addIfDir extends the watch to a directory created after startup.
func (w *Watcher) addIfDir(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	if err := w.addTree(path); err != nil {
		w.logger.Warn("cannot watch new directory", "path", path, "err", err)
	}
}
