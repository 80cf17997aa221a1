// SPDX-License-Identifier: MPL-2.0

// Package types holds small validated value types shared by the packmk
// packages. Each type pairs a sentinel error with a typed error that
// unwraps to it, so callers can match with errors.Is.
package types
