// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/invowk/packmk/pkg/manifest"
	"github.com/invowk/packmk/pkg/types"
)

const (
	// GroupingDirect bundles a package with the packages it references
	// directly. Dependencies of dependencies are not pulled in.
	GroupingDirect GroupingMode = "direct"
	// GroupingTransitive bundles every package connected by identity
	// references, at any distance.
	GroupingTransitive GroupingMode = "transitive"
)

var (
	// ErrInvalidGroupingMode is returned when a GroupingMode is not recognized.
	ErrInvalidGroupingMode = errors.New("invalid grouping mode")
	// ErrInvalidConfig is the sentinel wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// GroupingMode selects how far identity references are followed when
	// packages are grouped into bundles.
	GroupingMode string

	// InvalidGroupingModeError is returned when a GroupingMode is not recognized.
	InvalidGroupingModeError struct {
		Value GroupingMode
	}

	// Config is the complete packmk configuration.
	Config struct {
		// OutputDir receives the archives; it is also the value of the
		// OUTPUT_DIR make variable.
		OutputDir string `json:"output_dir" mapstructure:"output_dir"`
		// RulesFile is the generated make fragment, relative to the root.
		RulesFile string `json:"rules_file" mapstructure:"rules_file"`
		// Descriptor is the file that marks a directory as a package.
		Descriptor string `json:"descriptor" mapstructure:"descriptor"`
		// BundleSuffix names multi-package archives and the aggregate archive.
		BundleSuffix types.FileSuffix `json:"bundle_suffix" mapstructure:"bundle_suffix"`
		// SingleSuffix names single-package archives.
		SingleSuffix types.FileSuffix `json:"single_suffix" mapstructure:"single_suffix"`
		// AggregateName is the base name of the bundle-everything archive.
		AggregateName string `json:"aggregate_name" mapstructure:"aggregate_name"`
		// Grouping selects direct or transitive grouping.
		Grouping GroupingMode `json:"grouping" mapstructure:"grouping"`
		// PropagateMtime bubbles file modification times up to package
		// directories before rules are written.
		PropagateMtime bool `json:"propagate_mtime" mapstructure:"propagate_mtime"`
		// Ignore holds doublestar patterns for top-level directories that are
		// never treated as packages.
		Ignore []string `json:"ignore" mapstructure:"ignore"`
		// UI holds presentation settings.
		UI UIConfig `json:"ui" mapstructure:"ui"`
	}

	// UIConfig holds presentation settings.
	UIConfig struct {
		// Verbose enables debug logging and full error chains.
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}

	// InvalidConfigError collects every field-level problem of a Config.
	InvalidConfigError struct {
		FieldErrors []error
	}
)

// String returns the mode name.
func (m GroupingMode) String() string { return string(m) }

// Validate returns an error if the mode is not recognized.
func (m GroupingMode) Validate() error {
	switch m {
	case GroupingDirect, GroupingTransitive:
		return nil
	default:
		return &InvalidGroupingModeError{Value: m}
	}
}

// Error implements the error interface.
func (e *InvalidGroupingModeError) Error() string {
	return fmt.Sprintf("invalid grouping mode %q (valid: %s, %s)", e.Value, GroupingDirect, GroupingTransitive)
}

// Unwrap returns ErrInvalidGroupingMode for errors.Is() compatibility.
func (e *InvalidGroupingModeError) Unwrap() error { return ErrInvalidGroupingMode }

// Error implements the error interface.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, 0, len(e.FieldErrors))
	for _, err := range e.FieldErrors {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("invalid config: %s", strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidConfig followed by every field error, so both the
// sentinel and the individual causes match errors.Is().
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}

// Validate checks the fields that the schema cannot see after environment
// and flag overrides have been applied.
func (c *Config) Validate() error {
	var errs []error
	required := []struct {
		name  string
		value string
	}{
		{"output_dir", c.OutputDir},
		{"rules_file", c.RulesFile},
		{"descriptor", c.Descriptor},
		{"aggregate_name", c.AggregateName},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			errs = append(errs, fmt.Errorf("%s must not be empty", f.name))
		}
	}
	if err := c.BundleSuffix.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("bundle_suffix: %w", err))
	}
	if err := c.SingleSuffix.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("single_suffix: %w", err))
	}
	if err := c.Grouping.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("grouping: %w", err))
	}
	if len(errs) == 0 {
		return nil
	}
	return &InvalidConfigError{FieldErrors: errs}
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		OutputDir:      "./packs",
		RulesFile:      "pack_rules.mk",
		Descriptor:     manifest.DefaultFileName,
		BundleSuffix:   ".mcaddon",
		SingleSuffix:   ".mcpack",
		AggregateName:  "ALL_PACKS",
		Grouping:       GroupingDirect,
		PropagateMtime: true,
		Ignore:         []string{},
		UI: UIConfig{
			Verbose: false,
		},
	}
}
