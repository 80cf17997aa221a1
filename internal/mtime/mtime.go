// SPDX-License-Identifier: MPL-2.0

// Package mtime bubbles modification times up a directory tree, so that a
// directory looks changed to make whenever anything beneath it changed.
package mtime

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// ErrNotDirectory is returned when the propagation root is not a directory.
var ErrNotDirectory = errors.New("not a directory")

type (
	// Options configures Propagate.
	Options struct {
		// Logger receives one debug line per update. Nil discards.
		Logger *log.Logger
	}

	// Update records one directory whose modification time was raised.
	Update struct {
		Dir  string
		From time.Time
		To   time.Time
		// Child is the entry whose time was copied.
		Child string
	}

	// Failure records an entry that could not be inspected or updated.
	Failure struct {
		Path string
		Err  error
	}

	// Report summarizes a propagation pass.
	Report struct {
		Updated  []Update
		Failures []Failure
	}

	// NotDirectoryError is returned when the root exists but is not a directory.
	NotDirectoryError struct {
		Path string
	}

	entry struct {
		path  string
		depth int
	}
)

// Error implements the error interface.
func (e *NotDirectoryError) Error() string {
	return fmt.Sprintf("%s is not a directory", e.Path)
}

// Unwrap returns ErrNotDirectory for errors.Is() compatibility.
func (e *NotDirectoryError) Unwrap() error { return ErrNotDirectory }

// Propagate walks root once and, deepest entries first, raises each parent
// directory's modification time to that of its newest child. Access times
// are left untouched. Afterwards every directory under root, root included,
// is at least as new as every entry beneath it.
//
// A missing root or one that is not a directory is an error. Entries that
// cannot be read or updated are reported in Report.Failures and skipped.
func Propagate(root string, opts Options) (*Report, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("propagate modification times: %w", err)
	}
	if !info.IsDir() {
		return nil, &NotDirectoryError{Path: root}
	}

	report := &Report{}
	entries := collect(root, report)

	// Deepest first; ties keep walk order.
	slices.SortStableFunc(entries, func(a, b entry) int { return b.depth - a.depth })

	for _, e := range entries {
		child, err := os.Lstat(e.path)
		if err != nil {
			report.Failures = append(report.Failures, Failure{Path: e.path, Err: err})
			continue
		}
		parentPath := filepath.Dir(e.path)
		parent, err := os.Stat(parentPath)
		if err != nil {
			report.Failures = append(report.Failures, Failure{Path: parentPath, Err: err})
			continue
		}
		if !child.ModTime().After(parent.ModTime()) {
			continue
		}
		if err := os.Chtimes(parentPath, time.Time{}, child.ModTime()); err != nil {
			logger.Warn("cannot update modification time", "dir", parentPath, "err", err)
			report.Failures = append(report.Failures, Failure{Path: parentPath, Err: err})
			continue
		}
		logger.Debug("raised modification time", "dir", parentPath, "to", child.ModTime().Format(time.RFC3339Nano), "from", e.path)
		report.Updated = append(report.Updated, Update{
			Dir:   parentPath,
			From:  parent.ModTime(),
			To:    child.ModTime(),
			Child: e.path,
		})
	}

	return report, nil
}

// collect lists every entry below root with its depth relative to root.
func collect(root string, report *Report) []entry {
	var entries []entry
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// An unreadable directory was already listed by its parent.
			report.Failures = append(report.Failures, Failure{Path: path, Err: err})
			return nil
		}
		if path == root {
			return nil
		}
		entries = append(entries, entry{path: path, depth: depth(root, path)})
		return nil
	})
	return entries
}

func depth(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return 0
	}
	return strings.Count(filepath.ToSlash(rel), "/") + 1
}
