// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/invowk/packmk/internal/config"
	"github.com/invowk/packmk/internal/generate"
	"github.com/invowk/packmk/internal/issue"
	"github.com/invowk/packmk/internal/watch"
	"github.com/invowk/packmk/pkg/types"

	"github.com/spf13/cobra"
)

type (
	// Dependencies are the collaborators an App is built from. Zero values
	// are replaced with production defaults by NewApp.
	Dependencies struct {
		Config config.Provider
		Stdout io.Writer
		Stderr io.Writer
	}

	// App is the composition root behind the root command.
	App struct {
		Config config.Provider
		stdout io.Writer
		stderr io.Writer
	}

	// rootFlags holds the parsed command-line flags of one invocation.
	rootFlags struct {
		generate   bool
		clean      bool
		watch      bool
		verbose    bool
		root       string
		configPath string
		grouping   string
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) (*App, error) {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}

	return &App{
		Config: deps.Config,
		stdout: deps.Stdout,
		stderr: deps.Stderr,
	}, nil
}

// run dispatches one invocation. Choosing neither mode, or both, prints
// usage and succeeds without touching the filesystem.
func (a *App) run(cmd *cobra.Command, flags *rootFlags) error {
	if flags.generate == flags.clean {
		fmt.Fprintln(a.stderr, WarningStyle.Render("Specify exactly one of --generate-makefile or --clean."))
		return cmd.Help()
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := a.loadConfig(ctx, cmd, flags)
	if err != nil {
		return a.fail(err, flags.verbose)
	}
	verbose := flags.verbose || cfg.UI.Verbose

	opts := generate.Options{
		Root:   flags.root,
		Config: cfg,
		Logger: newLogger(a.stderr, verbose),
	}

	if flags.clean {
		return a.clean(opts, verbose)
	}

	if err := a.generate(ctx, opts); err != nil {
		return a.fail(err, verbose)
	}
	if flags.watch {
		if err := a.watch(ctx, opts); err != nil {
			return a.fail(err, verbose)
		}
	}
	return nil
}

// loadConfig merges the configuration files and applies flag overrides.
func (a *App) loadConfig(ctx context.Context, cmd *cobra.Command, flags *rootFlags) (*config.Config, error) {
	cfg, err := a.Config.Load(ctx, config.LoadOptions{
		ConfigFilePath: flags.configPath,
		ProjectDir:     flags.root,
	})
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("grouping") {
		mode := config.GroupingMode(flags.grouping)
		if err := mode.Validate(); err != nil {
			return nil, issue.NewErrorContext().
				WithOperation("apply --grouping").
				WithIssue(issue.InvalidGroupingModeId).
				WithResource(flags.grouping).
				WithSuggestion("Use --grouping direct or --grouping transitive").
				Wrap(err).
				BuildError()
		}
		cfg.Grouping = mode
	}

	return cfg, nil
}

// generate runs one generate pass and reports it.
func (a *App) generate(ctx context.Context, opts generate.Options) error {
	res, err := generate.Run(ctx, opts)
	if err != nil {
		return err
	}

	logDiagnostics(opts.Logger, res.Diagnostics)
	for _, r := range res.RuleSet.Artifacts {
		opts.Logger.Debug("rule", "artifact", r.Artifact, "members", strings.Join(r.Members, " "))
	}
	if res.MtimeUpdates > 0 {
		opts.Logger.Debug("raised modification times", "dirs", res.MtimeUpdates)
	}

	fmt.Fprintf(a.stdout, "%s Wrote %s (%d packages, %d archives)\n",
		SuccessStyle.Render("✓"),
		PathStyle.Render(res.RulesPath),
		len(res.Packages),
		len(res.RuleSet.Artifacts))
	return nil
}

// clean removes generated files. Files that could not be removed are
// logged and turn the exit status non-zero.
func (a *App) clean(opts generate.Options, verbose bool) error {
	res, err := generate.Clean(opts)
	if err != nil {
		return a.fail(err, verbose)
	}

	for _, p := range res.Removed {
		opts.Logger.Debug("removed", "path", p)
	}
	for _, f := range res.Failures {
		opts.Logger.Error("cannot remove file", "path", f.Path, "err", f.Err)
	}

	fmt.Fprintf(a.stdout, "%s Removed %d files\n", SuccessStyle.Render("✓"), len(res.Removed))
	if len(res.Failures) > 0 {
		return &ExitError{Code: types.ExitFailure}
	}
	return nil
}

// watch regenerates whenever the tree under the root changes, until ctx
// is cancelled.
func (a *App) watch(ctx context.Context, opts generate.Options) error {
	w, err := watch.New(watch.Options{
		Root:   opts.Root,
		Ignore: watchIgnores(opts.Config),
		Logger: opts.Logger,
		OnChange: func(ctx context.Context, changed []string) error {
			opts.Logger.Info("regenerating", "changed", len(changed))
			return a.generate(ctx, opts)
		},
	})
	if err != nil {
		return issue.NewErrorContext().
			WithOperation("start watcher").
			WithIssue(issue.WatchFailedId).
			WithResource(opts.Root).
			WithSuggestion("Check the ignore patterns in packmk.cue").
			Wrap(err).
			BuildError()
	}

	opts.Logger.Info("watching for changes", "root", opts.Root)
	if err := w.Run(ctx); err != nil {
		return issue.NewErrorContext().
			WithOperation("watch").
			WithIssue(issue.WatchFailedId).
			WithResource(opts.Root).
			Wrap(err).
			BuildError()
	}
	return nil
}

// watchIgnores returns the root-relative patterns for files the generate
// pass itself writes, plus the configured ignores. Paths outside the root
// need no pattern.
func watchIgnores(cfg *config.Config) []string {
	var patterns []string
	if out, ok := underRoot(cfg.OutputDir); ok {
		patterns = append(patterns, out, path.Join(out, "**"))
	}
	if rules, ok := underRoot(cfg.RulesFile); ok {
		patterns = append(patterns, rules)
	}
	return append(patterns, cfg.Ignore...)
}

func underRoot(p string) (string, bool) {
	if p == "" || filepath.IsAbs(p) {
		return "", false
	}
	clean := filepath.ToSlash(filepath.Clean(p))
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", false
	}
	return clean, true
}

// fail renders err on stderr and converts it to an exit status.
func (a *App) fail(err error, verbose bool) error {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}
	fmt.Fprintln(a.stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))
	if verbose {
		a.renderIssue(err)
	}
	return &ExitError{Code: types.ExitFailure}
}

// renderIssue prints the catalog explanation linked to err, if any.
func (a *App) renderIssue(err error) {
	var ae *issue.ActionableError
	if !errors.As(err, &ae) || ae.Issue == 0 {
		return
	}
	entry := issue.Get(ae.Issue)
	if entry == nil {
		return
	}
	out, rerr := entry.Render(issue.DefaultStyle)
	if rerr != nil {
		return
	}
	fmt.Fprint(a.stderr, out)
}

// formatErrorForDisplay formats an error for user display.
// ActionableErrors list their suggestions, and with verbose set the chain.
func formatErrorForDisplay(err error, verbose bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verbose)
	}
	return err.Error()
}
