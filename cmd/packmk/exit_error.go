// SPDX-License-Identifier: MPL-2.0

package cmd

import "github.com/invowk/packmk/pkg/types"

// ExitError carries a non-zero exit status out of a RunE handler. A nil Err
// means the failure was already reported on stderr.
type ExitError struct {
	Code types.ExitCode
	Err  error
}

// Error returns the underlying message, or the exit status when there is none.
func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return "exit status " + e.Code.String()
}

// Unwrap returns the underlying error, if any.
func (e *ExitError) Unwrap() error {
	return e.Err
}
