// SPDX-License-Identifier: MPL-2.0

// Package benchmark holds benchmarks for the generate hot paths, used to
// collect PGO profiles:
//   - descriptor parsing and schema validation
//   - package discovery
//   - grouping in both modes
//   - rule emission and rendering
//   - the full generate pass
//
// To generate a profile, run:
//
//	go test -run '^$' -bench . -cpuprofile default.pgo ./internal/benchmark
package benchmark
