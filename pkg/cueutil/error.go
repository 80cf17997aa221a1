// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue/errors"
)

// ParseError reports every problem CUE found in one document, each prefixed
// with its JSON path when one is known.
type ParseError struct {
	// Filename is the document the problems were found in.
	Filename string
	// Problems holds one "<path>: <message>" line per CUE error.
	Problems []string
	// Cause is the original error.
	Cause error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if len(e.Problems) == 1 {
		return fmt.Sprintf("%s: %s", e.Filename, e.Problems[0])
	}
	return fmt.Sprintf("%s: validation failed:\n  %s", e.Filename, strings.Join(e.Problems, "\n  "))
}

// Unwrap returns the original error.
func (e *ParseError) Unwrap() error { return e.Cause }

// FormatError converts err into a *ParseError with one entry per CUE error,
// formatted as "<json-path>: <message>" (for example
// "dependencies[1].uuid: conflicting values 3 and string").
func FormatError(err error, filename string) error {
	if err == nil {
		return nil
	}

	cueErrors := errors.Errors(err)
	if len(cueErrors) == 0 {
		return &ParseError{Filename: filename, Problems: []string{err.Error()}, Cause: err}
	}

	problems := make([]string, 0, len(cueErrors))
	for _, e := range cueErrors {
		pathStr := formatPath(errors.Path(e))
		msg := e.Error()

		// CUE sometimes repeats the path at the start of the message.
		if pathStr != "" && strings.HasPrefix(msg, pathStr) {
			msg = strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(msg, pathStr), ":"))
		}

		if pathStr != "" {
			problems = append(problems, pathStr+": "+msg)
		} else {
			problems = append(problems, msg)
		}
	}

	return &ParseError{Filename: filename, Problems: problems, Cause: err}
}

// formatPath renders a CUE error path (["dependencies", "0", "uuid"]) in
// JSON-path notation ("dependencies[0].uuid").
func formatPath(path []string) string {
	var result strings.Builder
	for i, part := range path {
		if i > 0 && isIndex(part) {
			result.WriteString("[" + part + "]")
			continue
		}
		if i > 0 {
			result.WriteString(".")
		}
		result.WriteString(part)
	}
	return result.String()
}

func isIndex(part string) bool {
	if part == "" {
		return false
	}
	for _, c := range part {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// CheckFileSize returns an error when data is larger than maxSize bytes.
func CheckFileSize(data []byte, maxSize int64, filename string) error {
	if int64(len(data)) > maxSize {
		return fmt.Errorf("%s: file size %d bytes exceeds maximum %d bytes",
			filename, len(data), maxSize)
	}
	return nil
}
