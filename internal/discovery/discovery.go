// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/invowk/packmk/pkg/manifest"

	"github.com/bmatcuk/doublestar/v4"
	"mvdan.cc/sh/v3/syntax"
)

// unsafeNameChars cannot appear in a make target or prerequisite without
// escaping that make does not reliably support.
const unsafeNameChars = ":#$%=\\"

type (
	// Options configures a discovery pass.
	Options struct {
		// Root is the directory whose children are scanned.
		Root string
		// Descriptor is the file name that marks a package directory.
		// Defaults to manifest.DefaultFileName.
		Descriptor string
		// OutputDir is never treated as a package, whatever it contains.
		// Relative paths are resolved against Root.
		OutputDir string
		// Ignore holds doublestar patterns matched against directory names.
		Ignore []string
	}

	// DiscoveredPackage is a package directory with its parsed descriptor.
	DiscoveredPackage struct {
		// Name is the directory name, relative to the root.
		Name string
		// Dir is the directory path (Root joined with Name).
		Dir string
		// Manifest is the parsed descriptor, never nil.
		Manifest *manifest.Manifest
	}

	// Result is the outcome of a discovery pass.
	Result struct {
		// Packages holds every package with a valid descriptor, in discovery order.
		Packages []*DiscoveredPackage
		// DescriptorDirs names every top-level directory holding a descriptor,
		// parseable or not, in discovery order.
		DescriptorDirs []string
		// Diagnostics lists skipped entries and other non-fatal problems.
		Diagnostics []Diagnostic
	}
)

// Discover scans the direct children of opts.Root for package directories.
func Discover(ctx context.Context, opts Options) (*Result, error) {
	descriptor := opts.Descriptor
	if descriptor == "" {
		descriptor = manifest.DefaultFileName
	}

	entries, err := os.ReadDir(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to read root directory %s: %w", opts.Root, err)
	}

	result := &Result{}
	patterns := validPatterns(opts.Ignore, result)
	outputName := outputDirName(opts.Root, opts.OutputDir)

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("discovery canceled: %w", err)
		}

		name := entry.Name()
		dir := filepath.Join(opts.Root, name)

		isDir, statErr := isDirectory(entry, dir)
		if statErr != nil {
			result.Diagnostics = append(result.Diagnostics, Diagnostic{
				Severity: SeverityWarning,
				Code:     CodeEntryStatFailed,
				Message:  fmt.Sprintf("skipping %q: %v", name, statErr),
				Path:     dir,
				Cause:    statErr,
			})
			continue
		}
		if !isDir || name == outputName || ignored(patterns, name) {
			continue
		}

		descPath := filepath.Join(dir, descriptor)
		if info, err := os.Stat(descPath); err != nil || info.IsDir() {
			continue
		}

		if !SafeName(name) {
			result.Diagnostics = append(result.Diagnostics, Diagnostic{
				Severity: SeverityWarning,
				Code:     CodeUnsafeNameSkipped,
				Message:  fmt.Sprintf("skipping %q: name cannot be used as a make target", name),
				Path:     dir,
			})
			continue
		}

		result.DescriptorDirs = append(result.DescriptorDirs, name)

		m, err := manifest.Load(descPath)
		if err != nil {
			result.Diagnostics = append(result.Diagnostics, descriptorDiagnostic(name, descPath, err))
			continue
		}

		result.Packages = append(result.Packages, &DiscoveredPackage{
			Name:     name,
			Dir:      dir,
			Manifest: m,
		})
	}

	return result, nil
}

// SafeName reports whether a directory name can appear verbatim both in a
// make rule and in a shell recipe: no whitespace, none of : # $ % = or
// backslash, and nothing a POSIX shell would need quoted.
func SafeName(name string) bool {
	if name == "" {
		return false
	}
	if strings.ContainsAny(name, unsafeNameChars) {
		return false
	}
	if strings.ContainsFunc(name, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\v' || r == '\f'
	}) {
		return false
	}
	// The prefix keeps reserved words such as "done" from counting as unsafe.
	word := "_" + name
	quoted, err := syntax.Quote(word, syntax.LangPOSIX)
	return err == nil && quoted == word
}

func descriptorDiagnostic(name, descPath string, err error) Diagnostic {
	if errors.Is(err, manifest.ErrMalformedDescriptor) {
		return Diagnostic{
			Severity: SeverityError,
			Code:     CodeDescriptorMalformed,
			Message:  fmt.Sprintf("skipping package %q: %v", name, err),
			Path:     descPath,
			Cause:    err,
		}
	}
	return Diagnostic{
		Severity: SeverityError,
		Code:     CodeDescriptorUnreadable,
		Message:  fmt.Sprintf("skipping package %q: %v", name, err),
		Path:     descPath,
		Cause:    err,
	}
}

// isDirectory follows symlinks so a linked package directory is discovered.
func isDirectory(entry os.DirEntry, fullPath string) (bool, error) {
	if entry.IsDir() {
		return true, nil
	}
	if entry.Type()&os.ModeSymlink == 0 {
		return false, nil
	}
	info, err := os.Stat(fullPath)
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}

func validPatterns(patterns []string, result *Result) []string {
	valid := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			result.Diagnostics = append(result.Diagnostics, Diagnostic{
				Severity: SeverityWarning,
				Code:     CodeIgnorePatternInvalid,
				Message:  fmt.Sprintf("ignoring invalid pattern %q", p),
			})
			continue
		}
		valid = append(valid, p)
	}
	return valid
}

func ignored(patterns []string, name string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, name); ok {
			return true
		}
	}
	return false
}

// outputDirName returns the root child that holds the output directory, or ""
// when the output directory lies outside the root.
func outputDirName(root, outputDir string) string {
	if outputDir == "" {
		return ""
	}
	target := outputDir
	if !filepath.IsAbs(target) {
		target = filepath.Join(root, target)
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return ""
	}
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return ""
	}
	rel, err := filepath.Rel(absRoot, absTarget)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return ""
	}
	first, _, _ := strings.Cut(filepath.ToSlash(rel), "/")
	return path.Clean(first)
}
