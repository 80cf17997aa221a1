// SPDX-License-Identifier: MPL-2.0

package packtest

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/invowk/packmk/internal/testutil"
)

type (
	// Pack describes a package directory fixture.
	Pack struct {
		// Name is the directory name.
		Name string
		// UUID is header.uuid; empty omits the field.
		UUID string
		// Deps are the identity references, written as {"uuid": ...}.
		Deps []string
		// Modules are script-module dependencies without a uuid field.
		Modules []string
		// Files maps extra relative paths to their content.
		Files map[string]string
	}

	// Option customizes a Pack.
	Option func(*Pack)
)

// New returns a Pack fixture named name with the given identity.
func New(name, uuid string, opts ...Option) Pack {
	p := Pack{Name: name, UUID: uuid}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// DependsOn adds identity references.
func DependsOn(uuids ...string) Option {
	return func(p *Pack) { p.Deps = append(p.Deps, uuids...) }
}

// WithModule adds a dependency that carries no identity reference.
func WithModule(name string) Option {
	return func(p *Pack) { p.Modules = append(p.Modules, name) }
}

// WithFile adds an extra file to the package directory.
func WithFile(rel, content string) Option {
	return func(p *Pack) {
		if p.Files == nil {
			p.Files = make(map[string]string)
		}
		p.Files[rel] = content
	}
}

// Descriptor renders the pack's manifest.json content.
func (p Pack) Descriptor(t testing.TB) string {
	t.Helper()

	header := map[string]any{"name": p.Name, "version": []int{1, 0, 0}}
	if p.UUID != "" {
		header["uuid"] = p.UUID
	}
	deps := make([]map[string]any, 0, len(p.Deps)+len(p.Modules))
	for _, d := range p.Deps {
		deps = append(deps, map[string]any{"uuid": d, "version": []int{1, 0, 0}})
	}
	for _, m := range p.Modules {
		deps = append(deps, map[string]any{"module_name": m, "version": "1.0.0"})
	}

	data, err := json.MarshalIndent(map[string]any{
		"format_version": 2,
		"header":         header,
		"dependencies":   deps,
	}, "", "  ")
	if err != nil {
		t.Fatalf("marshal descriptor for %s: %v", p.Name, err)
	}
	return string(data)
}

// Write creates every pack under root and returns root.
func Write(t testing.TB, root string, packs ...Pack) string {
	t.Helper()

	for _, p := range packs {
		dir := filepath.Join(root, p.Name)
		testutil.MustWriteFile(t, filepath.Join(dir, "manifest.json"), p.Descriptor(t))
		for rel, content := range p.Files {
			testutil.MustWriteFile(t, filepath.Join(dir, rel), content)
		}
	}
	return root
}
