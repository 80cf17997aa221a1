// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/invowk/packmk/internal/config"
	"github.com/invowk/packmk/pkg/types"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the packmk command around app.
func NewRootCommand(app *App) *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:   config.AppName,
		Short: "Group dependent packs and generate make rules that bundle them",
		Long: TitleStyle.Render(config.AppName) + SubtitleStyle.Render(" - group dependent packs into archives") + `

packmk scans a directory for packs (subdirectories holding a manifest.json),
groups packs that depend on each other and writes a make rule file with one
archive per group plus a combined archive of every pack.

` + SubtitleStyle.Render("Examples:") + `
  packmk --generate-makefile            Write pack_rules.mk for the current directory
  packmk --generate-makefile --watch    Regenerate whenever a pack changes
  packmk --clean                        Remove pack_rules.mk and built archives
  make -f pack_rules.mk packs addon     Build the archives`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.run(cmd, flags)
		},
	}
	root.SetOut(app.stdout)
	root.SetErr(app.stderr)

	f := root.Flags()
	f.BoolVar(&flags.generate, "generate-makefile", false, "generate the pack rule file")
	f.BoolVar(&flags.clean, "clean", false, "remove the pack rule file and built archives")
	f.BoolVar(&flags.watch, "watch", false, "keep regenerating when packs change")
	f.BoolVarP(&flags.verbose, "verbose", "v", false, "enable verbose output")
	f.StringVarP(&flags.root, "root", "C", ".", "directory holding the packs")
	f.StringVar(&flags.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/packmk/config.cue)")
	f.StringVar(&flags.grouping, "grouping", string(config.GroupingDirect), "grouping mode: direct or transitive")

	root.MarkFlagsMutuallyExclusive("watch", "clean")
	_ = root.RegisterFlagCompletionFunc("grouping", cobra.FixedCompletions(
		[]string{string(config.GroupingDirect), string(config.GroupingTransitive)},
		cobra.ShellCompDirectiveNoFileComp,
	))
	_ = root.MarkFlagFilename("config", config.ConfigFileExt)
	_ = root.MarkFlagDirname("root")

	return root
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	app, err := NewApp(Dependencies{})
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+err.Error())
		os.Exit(int(types.ExitFailure))
	}

	// fang overrides root.Version, so the version goes through WithVersion.
	err = fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	)
	if code := exitCodeOf(err); !code.IsSuccess() {
		os.Exit(int(code))
	}
}

// exitCodeOf maps the error returned by the root command to a process exit
// code. Out-of-range or zero codes carried by an error become ExitFailure.
func exitCodeOf(err error) types.ExitCode {
	if err == nil {
		return types.ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Code.Validate() == nil && !exitErr.Code.IsSuccess() {
		return exitErr.Code
	}
	return types.ExitFailure
}
