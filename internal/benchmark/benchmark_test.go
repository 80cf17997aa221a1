// SPDX-License-Identifier: MPL-2.0

package benchmark

import (
	"context"
	"fmt"
	"testing"

	"github.com/invowk/packmk/internal/config"
	"github.com/invowk/packmk/internal/discovery"
	"github.com/invowk/packmk/internal/generate"
	"github.com/invowk/packmk/internal/grouping"
	"github.com/invowk/packmk/internal/makefile"
	"github.com/invowk/packmk/internal/rules"
	"github.com/invowk/packmk/internal/testutil/packtest"
	"github.com/invowk/packmk/pkg/manifest"
)

// addonCount is the number of behavior/resource pairs in synthetic trees.
const addonCount = 150

const sampleManifest = `{
  "format_version": 2,
  "header": {
    "name": "shop behaviors",
    "description": "A benchmark fixture",
    "uuid": "0d0c0a4e-1111-4c3b-9d0e-6a1f5b2c3d4e",
    "version": [1, 2, 3],
    "min_engine_version": [1, 20, 0]
  },
  "modules": [
    {"type": "data", "uuid": "a1b2c3d4-0000-4000-8000-000000000001", "version": [1, 0, 0]},
    {"type": "script", "language": "javascript", "entry": "scripts/main.js", "uuid": "a1b2c3d4-0000-4000-8000-000000000002", "version": [1, 0, 0]}
  ],
  "dependencies": [
    {"uuid": "5f6e7d8c-2222-4b3a-8c9d-0e1f2a3b4c5d", "version": [1, 2, 3]},
    {"module_name": "@minecraft/server", "version": "1.9.0"},
    {"module_name": "@minecraft/server-ui", "version": "1.2.0"}
  ]
}`

// synthetic returns addonCount behavior/resource pairs plus as many
// standalone packs, every tenth pair also referencing the next one.
func synthetic() []packtest.Pack {
	packs := make([]packtest.Pack, 0, 3*addonCount)
	for i := range addonCount {
		bp := packtest.New(fmt.Sprintf("addon%03d_bp", i), fmt.Sprintf("u-bp-%d", i),
			packtest.DependsOn(fmt.Sprintf("u-rp-%d", i)),
			packtest.WithModule("@minecraft/server"),
		)
		if i%10 == 0 && i+1 < addonCount {
			bp.Deps = append(bp.Deps, fmt.Sprintf("u-bp-%d", i+1))
		}
		packs = append(packs,
			bp,
			packtest.New(fmt.Sprintf("addon%03d_rp", i), fmt.Sprintf("u-rp-%d", i)),
			packtest.New(fmt.Sprintf("lib%03d", i), fmt.Sprintf("u-lib-%d", i)),
		)
	}
	return packs
}

// packages converts fixtures into unresolved grouping input.
func packages(packs []packtest.Pack) []*grouping.Package {
	pkgs := make([]*grouping.Package, 0, len(packs))
	for _, p := range packs {
		m := &manifest.Manifest{Name: p.Name, Identity: manifest.SomeIdentity(p.UUID)}
		for _, d := range p.Deps {
			m.Dependencies = append(m.Dependencies, manifest.Dependency{HasIdentityRef: true, Ref: manifest.SomeIdentity(d)})
		}
		pkgs = append(pkgs, grouping.NewPackage(p.Name, m))
	}
	return pkgs
}

// BenchmarkManifestParse benchmarks descriptor decoding and schema
// validation, the per-package cost of discovery.
func BenchmarkManifestParse(b *testing.B) {
	data := []byte(sampleManifest)

	b.ResetTimer()
	for b.Loop() {
		if _, err := manifest.Parse(data, "manifest.json"); err != nil {
			b.Fatalf("Parse failed: %v", err)
		}
	}
}

// BenchmarkDiscovery benchmarks scanning a tree of packs.
func BenchmarkDiscovery(b *testing.B) {
	root := packtest.Write(b, b.TempDir(), synthetic()...)
	opts := discovery.Options{Root: root, Descriptor: manifest.DefaultFileName, OutputDir: "packs"}

	b.ResetTimer()
	for b.Loop() {
		res, err := discovery.Discover(context.Background(), opts)
		if err != nil {
			b.Fatalf("Discover failed: %v", err)
		}
		if len(res.Packages) != 3*addonCount {
			b.Fatalf("found %d packages, want %d", len(res.Packages), 3*addonCount)
		}
	}
}

// BenchmarkGrouping benchmarks index building, resolution and partitioning.
func BenchmarkGrouping(b *testing.B) {
	fixtures := synthetic()

	for _, mode := range []grouping.Mode{grouping.ModeDirect, grouping.ModeTransitive} {
		b.Run(string(mode), func(b *testing.B) {
			b.ReportAllocs()
			for b.Loop() {
				if _, err := grouping.Run(packages(fixtures), mode); err != nil {
					b.Fatalf("Run failed: %v", err)
				}
			}
		})
	}
}

// BenchmarkEmitRender benchmarks naming, recipe quoting and rendering.
func BenchmarkEmitRender(b *testing.B) {
	grouped, err := grouping.Run(packages(synthetic()), grouping.ModeDirect)
	if err != nil {
		b.Fatalf("grouping failed: %v", err)
	}
	groups := grouped.Groups

	b.ResetTimer()
	for b.Loop() {
		rs, err := rules.Emit(groups, rules.DefaultOptions())
		if err != nil {
			b.Fatalf("Emit failed: %v", err)
		}
		if len(makefile.Render(rs)) == 0 {
			b.Fatal("Render produced no output")
		}
	}
}

// BenchmarkFullPipeline benchmarks a complete generate pass, including
// modification time propagation and writing the rule file.
func BenchmarkFullPipeline(b *testing.B) {
	root := packtest.Write(b, b.TempDir(), synthetic()...)
	opts := generate.Options{Root: root, Config: config.DefaultConfig()}

	b.ResetTimer()
	for b.Loop() {
		if _, err := generate.Run(context.Background(), opts); err != nil {
			b.Fatalf("Run failed: %v", err)
		}
	}
}
