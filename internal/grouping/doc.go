// SPDX-License-Identifier: MPL-2.0

// Package grouping partitions packages into bundles by identity references.
//
// A run builds an Index from package identities, resolves each package's
// identity references against it, and then partitions the packages:
//
//   - ModeDirect (the default) seeds a group with each unprocessed package
//     and adds the packages it references directly. References of
//     references are not followed, so a chain A -> B -> C yields {A, B}
//     and {C}.
//   - ModeTransitive groups every package connected by references at any
//     distance, so the same chain yields {A, B, C}.
//
// In both modes the groups partition the input: every package is in exactly
// one group, and the output depends only on the discovery order.
package grouping
