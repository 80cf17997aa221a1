// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"io"

	"github.com/invowk/packmk/internal/config"
	"github.com/invowk/packmk/internal/discovery"

	"github.com/charmbracelet/log"
)

// newLogger returns the stderr logger shared by every pass of one invocation.
func newLogger(w io.Writer, verbose bool) *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		Level:  level,
		Prefix: config.AppName,
	})
}

// logDiagnostics writes each diagnostic at the level its severity maps to.
func logDiagnostics(logger *log.Logger, diags []discovery.Diagnostic) {
	for _, d := range diags {
		keyvals := []any{"code", string(d.Code)}
		if d.Path != "" {
			keyvals = append(keyvals, "path", d.Path)
		}
		switch d.Severity {
		case discovery.SeverityError:
			logger.Error(d.Message, keyvals...)
		default:
			logger.Warn(d.Message, keyvals...)
		}
	}
}
