// SPDX-License-Identifier: MPL-2.0

// Package cmd implements the packmk command line.
//
// The binary has two modes. --generate-makefile scans a directory of packs,
// groups them by declared dependencies and writes a make rule file that
// builds one archive per group plus an aggregate. --clean removes the rule
// file and every built archive. Exactly one mode must be chosen.
package cmd
