// SPDX-License-Identifier: MPL-2.0

// Package rules turns package groups into archive rules.
//
// Each group becomes one artifact in the output directory. A group of several
// packages is archived as "<base><bundle suffix>", where base is the
// lexicographically smallest member name cut at its first underscore. A
// single package is archived as "<name><single suffix>". When two groups
// would produce the same artifact, the later group falls back to the full
// member name and then to a numeric suffix, so earlier groups keep their
// names for a fixed discovery order.
//
// The rule set also carries the aggregate archive of every descriptor
// directory. Rendering it as make syntax is the job of package makefile.
package rules
