// SPDX-License-Identifier: MPL-2.0

// Package packtest writes package directories with descriptor files for tests.
package packtest
