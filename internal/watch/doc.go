// SPDX-License-Identifier: MPL-2.0

// Package watch re-runs a callback when files under a root change.
//
// Events are coalesced over a debounce window and the callback runs on the
// event loop itself, so two callbacks never overlap. Attribute-only events
// are dropped: rewriting modification times would otherwise retrigger the
// pass that rewrote them.
package watch
