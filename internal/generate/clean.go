// SPDX-License-Identifier: MPL-2.0

package generate

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/invowk/packmk/internal/issue"
)

type (
	// CleanResult describes a clean pass.
	CleanResult struct {
		// Removed lists deleted files, rule file first.
		Removed []string
		// Failures lists files that could not be removed.
		Failures []RemoveFailure
	}

	// RemoveFailure is a file Clean could not delete.
	RemoveFailure struct {
		Path string
		Err  error
	}
)

// Clean removes the rule file and every archive in the output directory.
// Missing files and a missing output directory are not errors, so cleaning
// twice is the same as cleaning once. Files that cannot be removed are
// reported in CleanResult.Failures and the rest are still removed.
func Clean(opts Options) (*CleanResult, error) {
	opts = opts.normalize()
	cfg := opts.Config
	result := &CleanResult{}

	rulesPath := resolve(opts.Root, cfg.RulesFile)
	result.remove(rulesPath)

	outputDir := resolve(opts.Root, cfg.OutputDir)
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return result, nil
		}
		return result, issue.WrapWithContext(err, "read output directory", outputDir)
	}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !cfg.BundleSuffix.Matches(name) && !cfg.SingleSuffix.Matches(name) {
			continue
		}
		result.remove(filepath.Join(outputDir, name))
	}
	opts.Logger.Debug("cleaned", "removed", len(result.Removed), "failed", len(result.Failures))

	return result, nil
}

func (r *CleanResult) remove(path string) {
	err := os.Remove(path)
	switch {
	case err == nil:
		r.Removed = append(r.Removed, path)
	case errors.Is(err, os.ErrNotExist):
	default:
		r.Failures = append(r.Failures, RemoveFailure{Path: path, Err: err})
	}
}
