// SPDX-License-Identifier: MPL-2.0

package rules

import (
	"fmt"
	"path"
	"strings"

	"github.com/invowk/packmk/internal/grouping"
	"github.com/invowk/packmk/pkg/manifest"
	"github.com/invowk/packmk/pkg/platform"
	"github.com/invowk/packmk/pkg/types"

	"mvdan.cc/sh/v3/syntax"
)

const (
	// OutputDirVar is the make variable holding the output directory.
	OutputDirVar = "OUTPUT_DIR"
	// PacksVar lists every per-group artifact.
	PacksVar = "PACKS"
	// AddonVar names the aggregate artifact.
	AddonVar = "ADDON"
	// PacksTarget is the phony target building every per-group artifact.
	PacksTarget = "packs"
	// AddonTarget is the phony target building the aggregate artifact.
	AddonTarget = "addon"
)

const (
	// KindBundle archives several package directories together.
	KindBundle Kind = "bundle"
	// KindSingle archives the contents of one package directory.
	KindSingle Kind = "single"
	// KindAggregate archives every descriptor directory.
	KindAggregate Kind = "aggregate"
)

type (
	// Kind says which recipe a Rule uses.
	Kind string

	// Options configures rule emission.
	Options struct {
		// OutputDir is the value of the OUTPUT_DIR variable.
		OutputDir string
		// Descriptor is the descriptor file name the aggregate rule looks for.
		Descriptor string
		// BundleSuffix names multi-package and aggregate artifacts.
		BundleSuffix types.FileSuffix
		// SingleSuffix names single-package artifacts.
		SingleSuffix types.FileSuffix
		// AggregateName is the base name of the aggregate artifact.
		AggregateName string
		// AvoidReservedNames skips artifact names Windows cannot create,
		// such as con.mcpack. Set by default only on Windows.
		AvoidReservedNames bool
	}

	// Rule is one target with its prerequisites and recipe lines.
	Rule struct {
		Kind Kind
		// Artifact is the file name inside the output directory.
		Artifact string
		// Target is the make target, "$(OUTPUT_DIR)/<Artifact>".
		Target string
		// Prerequisites are package directories, or a single $(shell ...)
		// expression for the aggregate rule.
		Prerequisites []string
		// Recipe lines, without the leading tab.
		Recipe []string
		// Members are the grouped package names; empty for the aggregate.
		Members []string
	}

	// RuleSet is everything a rule file contains.
	RuleSet struct {
		// OutputDir is the value of the OUTPUT_DIR variable.
		OutputDir string
		// Artifacts has one rule per group, in group order.
		Artifacts []Rule
		// Aggregate is the bundle-everything rule.
		Aggregate Rule
	}
)

// DefaultOptions returns the conventional output layout.
func DefaultOptions() Options {
	return Options{
		OutputDir:          "./packs",
		Descriptor:         manifest.DefaultFileName,
		BundleSuffix:       ".mcaddon",
		SingleSuffix:       ".mcpack",
		AggregateName:      "ALL_PACKS",
		AvoidReservedNames: platform.IsWindows(),
	}
}

// Targets returns the make targets of the per-group artifacts.
func (rs *RuleSet) Targets() []string {
	targets := make([]string, 0, len(rs.Artifacts))
	for _, r := range rs.Artifacts {
		targets = append(targets, r.Target)
	}
	return targets
}

// Emit builds the rule set for groups.
func Emit(groups []grouping.Group, opts Options) (*RuleSet, error) {
	if err := opts.BundleSuffix.Validate(); err != nil {
		return nil, fmt.Errorf("bundle suffix: %w", err)
	}
	if err := opts.SingleSuffix.Validate(); err != nil {
		return nil, fmt.Errorf("single suffix: %w", err)
	}

	q, err := newQuoter()
	if err != nil {
		return nil, err
	}

	aggregateArtifact := opts.AggregateName + string(opts.BundleSuffix)
	names := newNamer(opts.AvoidReservedNames, aggregateArtifact)
	rs := &RuleSet{
		OutputDir: opts.OutputDir,
		Artifacts: make([]Rule, 0, len(groups)),
	}

	for _, g := range groups {
		if len(g.Members) == 0 {
			continue
		}
		var rule Rule
		if g.Multi() {
			artifact := names.bundleName(g.Members, opts.BundleSuffix)
			rule = Rule{
				Kind:          KindBundle,
				Artifact:      artifact,
				Target:        target(artifact),
				Prerequisites: append([]string(nil), g.Members...),
				Recipe: []string{
					fmt.Sprintf(`@echo "Creating %s: $@"`, opts.BundleSuffix),
					"@mkdir -p " + ref(OutputDirVar),
					"@zip -rdc $@ $^ -x " + q.hidden,
				},
				Members: append([]string(nil), g.Members...),
			}
		} else {
			name := g.Members[0]
			artifact := names.singleName(name, opts.SingleSuffix)
			rule = Rule{
				Kind:          KindSingle,
				Artifact:      artifact,
				Target:        target(artifact),
				Prerequisites: []string{name},
				Recipe: []string{
					fmt.Sprintf(`@echo "Creating %s: $@"`, opts.SingleSuffix),
					"@mkdir -p " + ref(OutputDirVar),
					"@cd $< && zip -rdc $(abspath $@) .",
				},
				Members: []string{name},
			}
		}
		rs.Artifacts = append(rs.Artifacts, rule)
	}

	aggregate, err := aggregateRule(q, aggregateArtifact, opts)
	if err != nil {
		return nil, err
	}
	rs.Aggregate = aggregate

	return rs, nil
}

func aggregateRule(q *quoter, artifact string, opts Options) (Rule, error) {
	descriptor, err := q.quote("{}/" + opts.Descriptor)
	if err != nil {
		return Rule{}, fmt.Errorf("descriptor name %q: %w", opts.Descriptor, err)
	}
	outputExclude, err := q.quote(path.Clean(strings.TrimPrefix(opts.OutputDir, "./")) + "/*")
	if err != nil {
		return Rule{}, fmt.Errorf("output directory %q: %w", opts.OutputDir, err)
	}

	find := fmt.Sprintf(`$(shell find . -maxdepth 1 -type d -exec test -f %s %s -print | sed %s)`,
		descriptor, q.semicolon, q.stripDot)

	return Rule{
		Kind:          KindAggregate,
		Artifact:      artifact,
		Target:        target(artifact),
		Prerequisites: []string{find},
		Recipe: []string{
			fmt.Sprintf(`@echo "Creating combined %s: $@"`, opts.BundleSuffix),
			"@mkdir -p " + ref(OutputDirVar),
			"@zip -rdc $@ $^ -x " + q.hidden + " -x " + outputExclude,
		},
	}, nil
}

func target(artifact string) string {
	return ref(OutputDirVar) + "/" + artifact
}

func ref(variable string) string {
	return "$(" + variable + ")"
}

// quoter quotes shell words for recipes. make expands '$' before the shell
// runs, so quoted words have it doubled.
type quoter struct {
	hidden    string
	semicolon string
	stripDot  string
}

func newQuoter() (*quoter, error) {
	q := &quoter{}
	var err error
	if q.hidden, err = q.quote("*/.*"); err != nil {
		return nil, err
	}
	if q.semicolon, err = q.quote(";"); err != nil {
		return nil, err
	}
	if q.stripDot, err = q.quote(`s|^\./||`); err != nil {
		return nil, err
	}
	return q, nil
}

func (q *quoter) quote(word string) (string, error) {
	quoted, err := syntax.Quote(word, syntax.LangPOSIX)
	if err != nil {
		return "", fmt.Errorf("quote %q: %w", word, err)
	}
	return strings.ReplaceAll(quoted, "$", "$$"), nil
}
