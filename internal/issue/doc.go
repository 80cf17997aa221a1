// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable errors: errors that carry the failed
// operation, the resource involved and suggestions for fixing the problem,
// so the CLI can print something more useful than a bare error chain.
package issue
