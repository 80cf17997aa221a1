// SPDX-License-Identifier: MPL-2.0

// Package generate runs one packmk pass: discover packages, propagate
// modification times, group, emit rules and write the rule file. It also
// implements clean, which removes what generation and the rules produce.
//
// Non-fatal problems are returned as diagnostics in the result. Only failing
// to create the output directory or to write the rule file aborts a run.
package generate
