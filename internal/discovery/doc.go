// SPDX-License-Identifier: MPL-2.0

// Package discovery finds package directories under a root.
//
// A package is a direct child directory of the root that contains the
// descriptor file (manifest.json by default). Discovery is not recursive.
// Entries are visited in directory-listing order, sorted by name, and that
// order is the stable discovery order every later stage relies on.
//
// Problems with individual entries are returned as Diagnostics rather than
// errors or log lines, so the CLI decides how to render them. Only failing to
// list the root itself is an error.
package discovery
