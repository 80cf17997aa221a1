// SPDX-License-Identifier: MPL-2.0

package generate

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/invowk/packmk/internal/config"
	"github.com/invowk/packmk/internal/discovery"
	"github.com/invowk/packmk/internal/grouping"
	"github.com/invowk/packmk/internal/issue"
	"github.com/invowk/packmk/internal/makefile"
	"github.com/invowk/packmk/internal/mtime"
	"github.com/invowk/packmk/internal/rules"
	"github.com/invowk/packmk/pkg/platform"

	"github.com/charmbracelet/log"
)

type (
	// Options configures a generate or clean pass.
	Options struct {
		// Root is the directory holding the packages. Defaults to ".".
		Root string
		// Config supplies layout and behavior. Defaults to config.DefaultConfig().
		Config *config.Config
		// Logger receives debug output. Nil discards.
		Logger *log.Logger
	}

	// Result describes a completed generate pass.
	Result struct {
		// RulesPath is the rule file that was written.
		RulesPath string
		// OutputDir is the resolved output directory.
		OutputDir string
		// Packages are the discovered package names, in discovery order.
		Packages []string
		// Groups is the partition the rules were emitted from.
		Groups []grouping.Group
		// RuleSet is what was written.
		RuleSet *rules.RuleSet
		// MtimeUpdates counts directories whose modification time was raised.
		MtimeUpdates int
		// Diagnostics are non-fatal problems, in the order they were found.
		Diagnostics []discovery.Diagnostic
	}
)

func (o Options) normalize() Options {
	if o.Root == "" {
		o.Root = "."
	}
	if o.Config == nil {
		o.Config = config.DefaultConfig()
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	return o
}

// resolve returns p joined to root unless it is absolute.
func resolve(root, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}

// Run performs one generate pass.
func Run(ctx context.Context, opts Options) (*Result, error) {
	opts = opts.normalize()
	cfg := opts.Config

	found, err := discovery.Discover(ctx, discovery.Options{
		Root:       opts.Root,
		Descriptor: cfg.Descriptor,
		OutputDir:  cfg.OutputDir,
		Ignore:     cfg.Ignore,
	})
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("discover packages").
			WithIssue(issue.RootNotReadableId).
			WithResource(opts.Root).
			WithSuggestion("Check that the directory exists and is readable").
			Wrap(err).
			BuildError()
	}

	result := &Result{
		RulesPath:   resolve(opts.Root, cfg.RulesFile),
		OutputDir:   resolve(opts.Root, cfg.OutputDir),
		Diagnostics: append([]discovery.Diagnostic(nil), found.Diagnostics...),
	}

	// Every descriptor directory is propagated, malformed ones included.
	if cfg.PropagateMtime {
		for _, name := range found.DescriptorDirs {
			result.MtimeUpdates += propagate(filepath.Join(opts.Root, name), opts.Logger, result)
		}
	}
	opts.Logger.Debug("discovered packages", "descriptors", len(found.DescriptorDirs), "parsed", len(found.Packages))

	pkgs := make([]*grouping.Package, 0, len(found.Packages))
	for _, dp := range found.Packages {
		pkgs = append(pkgs, grouping.NewPackage(dp.Name, dp.Manifest))
		result.Packages = append(result.Packages, dp.Name)
	}

	grouped, err := grouping.Run(pkgs, grouping.Mode(cfg.Grouping))
	if err != nil {
		return nil, fmt.Errorf("group packages: %w", err)
	}
	for _, d := range grouped.Duplicates {
		result.Diagnostics = append(result.Diagnostics, discovery.Diagnostic{
			Severity: discovery.SeverityWarning,
			Code:     discovery.CodeDuplicateIdentity,
			Message:  fmt.Sprintf("identity %s is declared by both %q and %q; using %q", d.Token, d.Previous, d.Current, d.Current),
			Path:     d.Current,
		})
	}
	groups := grouped.Groups
	result.Groups = groups
	opts.Logger.Debug("grouped packages", "packages", len(pkgs), "identities", grouped.Index.Len(), "groups", len(groups), "mode", cfg.Grouping)

	rs, err := rules.Emit(groups, rules.Options{
		OutputDir:          cfg.OutputDir,
		Descriptor:         cfg.Descriptor,
		BundleSuffix:       cfg.BundleSuffix,
		SingleSuffix:       cfg.SingleSuffix,
		AggregateName:      cfg.AggregateName,
		AvoidReservedNames: platform.IsWindows(),
	})
	if err != nil {
		return nil, fmt.Errorf("emit rules: %w", err)
	}
	result.RuleSet = rs

	if err := os.MkdirAll(result.OutputDir, 0o755); err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("create output directory").
			WithIssue(issue.OutputDirNotWritableId).
			WithResource(result.OutputDir).
			WithSuggestion("Check that the parent directory is writable").
			WithSuggestion("Set output_dir in packmk.cue to a writable location").
			Wrap(err).
			BuildError()
	}

	if err := makefile.WriteFile(result.RulesPath, rs); err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("write rule file").
			WithIssue(issue.RulesFileNotWritableId).
			WithResource(result.RulesPath).
			WithSuggestion("Check that the directory is writable").
			WithSuggestion("Remove a read-only " + filepath.Base(result.RulesPath) + " if one exists").
			Wrap(err).
			BuildError()
	}
	opts.Logger.Debug("wrote rule file", "path", result.RulesPath, "rules", len(rs.Artifacts))

	return result, nil
}

// propagate raises modification times inside one package directory and
// turns problems into diagnostics. It returns the number of updates.
// A symlinked package directory is walked through its target.
func propagate(dir string, logger *log.Logger, result *Result) int {
	target, err := filepath.EvalSymlinks(dir)
	if err != nil {
		result.Diagnostics = append(result.Diagnostics, discovery.Diagnostic{
			Severity: discovery.SeverityError,
			Code:     discovery.CodeMtimeFailed,
			Message:  fmt.Sprintf("cannot resolve package directory: %v", err),
			Path:     dir,
			Cause:    err,
		})
		return 0
	}
	report, err := mtime.Propagate(target, mtime.Options{Logger: logger})
	if err != nil {
		result.Diagnostics = append(result.Diagnostics, discovery.Diagnostic{
			Severity: discovery.SeverityError,
			Code:     discovery.CodeMtimeFailed,
			Message:  fmt.Sprintf("cannot propagate modification times: %v", err),
			Path:     dir,
			Cause:    err,
		})
		return 0
	}
	for _, f := range report.Failures {
		result.Diagnostics = append(result.Diagnostics, discovery.Diagnostic{
			Severity: discovery.SeverityWarning,
			Code:     discovery.CodeMtimeFailed,
			Message:  fmt.Sprintf("cannot update modification time: %v", f.Err),
			Path:     f.Path,
			Cause:    f.Err,
		})
	}
	return len(report.Updated)
}
