// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"errors"
	"fmt"
)

const (
	// SeverityWarning indicates a recoverable discovery warning.
	SeverityWarning Severity = "warning"
	// SeverityError indicates a non-fatal discovery error diagnostic.
	SeverityError Severity = "error"
)

const (
	// CodeDescriptorMalformed marks a descriptor that failed to parse or
	// validate; its package is excluded.
	CodeDescriptorMalformed DiagnosticCode = "descriptor_malformed"
	// CodeDescriptorUnreadable marks a descriptor that exists but could not be read.
	CodeDescriptorUnreadable DiagnosticCode = "descriptor_unreadable"
	// CodeUnsafeNameSkipped marks a directory whose name cannot be used as a
	// make target or prerequisite.
	CodeUnsafeNameSkipped DiagnosticCode = "unsafe_name_skipped"
	// CodeIgnorePatternInvalid marks an ignore pattern doublestar rejects.
	CodeIgnorePatternInvalid DiagnosticCode = "ignore_pattern_invalid"
	// CodeEntryStatFailed marks a root entry whose type could not be determined.
	CodeEntryStatFailed DiagnosticCode = "entry_stat_failed"
	// CodeDuplicateIdentity marks two packages declaring the same identity;
	// the later one in discovery order owns it.
	CodeDuplicateIdentity DiagnosticCode = "duplicate_identity"
	// CodeMtimeFailed marks a package directory whose modification times
	// could not be fully propagated.
	CodeMtimeFailed DiagnosticCode = "mtime_propagation_failed"
)

var (
	// ErrInvalidSeverity is returned when a Severity value is not recognized.
	ErrInvalidSeverity = errors.New("invalid diagnostic severity")
	// ErrInvalidDiagnosticCode is returned when a DiagnosticCode value is not recognized.
	ErrInvalidDiagnosticCode = errors.New("invalid diagnostic code")
)

type (
	// Severity represents discovery diagnostic severity.
	Severity string

	// DiagnosticCode is a machine-readable diagnostic identifier.
	DiagnosticCode string

	// Diagnostic represents a structured discovery diagnostic that is returned
	// to callers (rather than written to stderr) for consistent rendering policy.
	Diagnostic struct {
		// Severity is the diagnostic level (warning or error).
		Severity Severity
		// Code is a machine-readable identifier.
		Code DiagnosticCode
		// Message is the human-readable description.
		Message string
		// Path is the file path associated with this diagnostic (optional).
		Path string
		// Cause is the underlying error (optional, for programmatic inspection).
		Cause error
	}
)

// IsValid returns whether the Severity is one of the defined severities,
// and a list of validation errors if it is not.
func (s Severity) IsValid() (bool, []error) {
	switch s {
	case SeverityWarning, SeverityError:
		return true, nil
	default:
		return false, []error{fmt.Errorf("%w: %q", ErrInvalidSeverity, string(s))}
	}
}

// IsValid returns whether the DiagnosticCode is one of the defined codes,
// and a list of validation errors if it is not.
func (c DiagnosticCode) IsValid() (bool, []error) {
	switch c {
	case CodeDescriptorMalformed, CodeDescriptorUnreadable, CodeUnsafeNameSkipped,
		CodeIgnorePatternInvalid, CodeEntryStatFailed, CodeDuplicateIdentity, CodeMtimeFailed:
		return true, nil
	default:
		return false, []error{fmt.Errorf("%w: %q", ErrInvalidDiagnosticCode, string(c))}
	}
}

// String returns "severity [code] message".
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s [%s] %s", d.Severity, d.Code, d.Message)
}
