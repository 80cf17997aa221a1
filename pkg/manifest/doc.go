// SPDX-License-Identifier: MPL-2.0

// Package manifest reads package descriptors (manifest.json).
//
// A descriptor carries an optional identity token in header.uuid and a list
// of dependency objects. A dependency that carries a "uuid" field is an
// identity reference to another package; any other dependency (for example
// a script module referenced by module_name) is untyped and plays no part in
// grouping.
//
// Identity is modelled as an explicit optional value: a package either has
// SomeIdentity(token) or NoIdentity(), and an empty token is treated as no
// identity at all.
package manifest
