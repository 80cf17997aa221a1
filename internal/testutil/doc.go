// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helper functions for tests that handle errors
// appropriately, reducing boilerplate and ensuring consistent error handling.
//
// Common helpers cover directory operations (MustChdir, MustMkdirAll),
// file writes (MustWriteFile) and timestamps (MustChtimes, MustModTime).
// Package descriptor fixtures live in the packtest subpackage.
package testutil
