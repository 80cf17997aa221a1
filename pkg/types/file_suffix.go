// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidFileSuffix is the sentinel error wrapped by InvalidFileSuffixError.
var ErrInvalidFileSuffix = errors.New("invalid file suffix")

type (
	// FileSuffix is an archive file extension such as ".mcpack".
	// A valid suffix starts with a dot, has at least one more character
	// and contains no path separator or whitespace.
	FileSuffix string

	// InvalidFileSuffixError is returned when a FileSuffix is malformed.
	InvalidFileSuffixError struct {
		Value  FileSuffix
		Reason string
	}
)

// String returns the suffix text.
func (s FileSuffix) String() string { return string(s) }

// Validate returns an error if the suffix cannot name an archive file.
func (s FileSuffix) Validate() error {
	str := string(s)
	switch {
	case len(str) < 2 || str[0] != '.':
		return &InvalidFileSuffixError{Value: s, Reason: "must start with '.' followed by a name"}
	case strings.ContainsAny(str, `/\`):
		return &InvalidFileSuffixError{Value: s, Reason: "must not contain a path separator"}
	case strings.IndexFunc(str, isSpace) >= 0:
		return &InvalidFileSuffixError{Value: s, Reason: "must not contain whitespace"}
	}
	return nil
}

// Matches reports whether name ends with the suffix.
func (s FileSuffix) Matches(name string) bool {
	return s != "" && strings.HasSuffix(name, string(s))
}

// Error implements the error interface.
func (e *InvalidFileSuffixError) Error() string {
	return fmt.Sprintf("invalid file suffix %q: %s", e.Value, e.Reason)
}

// Unwrap returns ErrInvalidFileSuffix for errors.Is() compatibility.
func (e *InvalidFileSuffixError) Unwrap() error { return ErrInvalidFileSuffix }

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\v' || r == '\f'
}
