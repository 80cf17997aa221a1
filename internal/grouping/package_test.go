// SPDX-License-Identifier: MPL-2.0

package grouping

import (
	"testing"

	"github.com/invowk/packmk/pkg/manifest"

	"github.com/google/go-cmp/cmp"
)

func TestBuildIndex(t *testing.T) {
	t.Parallel()

	pkgs := []*Package{
		pkg("a", "u-a"),
		{Name: "anon", Identity: manifest.NoIdentity()},
		pkg("b", "u-shared"),
		pkg("c", "u-shared"),
	}

	ix, dups := BuildIndex(pkgs)

	if ix.Len() != 2 {
		t.Errorf("Len() = %d, want 2", ix.Len())
	}
	if name, ok := ix.Lookup(manifest.SomeIdentity("u-shared")); !ok || name != "c" {
		t.Errorf("Lookup(u-shared) = %q, %v; want last declared package c", name, ok)
	}
	if _, ok := ix.Lookup(manifest.NoIdentity()); ok {
		t.Error("Lookup(NoIdentity) should not resolve")
	}
	want := []DuplicateIdentity{{Token: "u-shared", Previous: "b", Current: "c"}}
	if diff := cmp.Diff(want, dups); diff != "" {
		t.Errorf("duplicates mismatch (-want +got):\n%s", diff)
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()

	withEmptyRef := pkg("empty_ref", "u-e")
	withEmptyRef.Dependencies = append(withEmptyRef.Dependencies, manifest.Dependency{
		HasIdentityRef: true,
		Ref:            manifest.NoIdentity(),
	})

	pkgs := []*Package{
		pkg("a", "u-a", "u-b", "u-missing", "u-c"),
		pkg("b", "u-b"),
		pkg("c", "u-c"),
		moduleDep(pkg("d", "u-d"), "@minecraft/server"),
		withEmptyRef,
		pkg("dangling", "u-x", "u-nowhere"),
	}
	ix, _ := BuildIndex(pkgs)
	Resolve(pkgs, ix)

	tests := []struct {
		name       string
		hasIdent   bool
		dependents []string
	}{
		{"a", true, []string{"b", "c"}},
		{"b", false, nil},
		{"c", false, nil},
		{"d", false, nil},
		{"empty_ref", true, nil},
		{"dangling", true, nil},
	}

	for i, tt := range tests {
		p := pkgs[i]
		if p.Name != tt.name {
			t.Fatalf("fixture order changed: %s != %s", p.Name, tt.name)
		}
		if p.HasIdentityDependency != tt.hasIdent {
			t.Errorf("%s: HasIdentityDependency = %v, want %v", p.Name, p.HasIdentityDependency, tt.hasIdent)
		}
		if diff := cmp.Diff(tt.dependents, p.DependentPackages); diff != "" {
			t.Errorf("%s: DependentPackages mismatch (-want +got):\n%s", p.Name, diff)
		}
	}
}

func TestResolve_IsRepeatable(t *testing.T) {
	t.Parallel()

	pkgs := []*Package{pkg("a", "u-a", "u-b"), pkg("b", "u-b")}
	ix, _ := BuildIndex(pkgs)
	Resolve(pkgs, ix)
	Resolve(pkgs, ix)

	if diff := cmp.Diff([]string{"b"}, pkgs[0].DependentPackages); diff != "" {
		t.Errorf("DependentPackages mismatch (-want +got):\n%s", diff)
	}
}

func TestNewPackage(t *testing.T) {
	t.Parallel()

	m := &manifest.Manifest{
		Identity: manifest.SomeIdentity("u-1"),
		Dependencies: []manifest.Dependency{
			{HasIdentityRef: true, Ref: manifest.SomeIdentity("u-2")},
		},
	}
	p := NewPackage("one", m)
	if p.Name != "one" || p.Identity.String() != "u-1" || len(p.Dependencies) != 1 {
		t.Errorf("NewPackage() = %+v", p)
	}

	if got := NewPackage("nil", nil); got.Identity.IsSome() {
		t.Error("nil manifest should give no identity")
	}
}
