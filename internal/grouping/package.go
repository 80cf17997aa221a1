// SPDX-License-Identifier: MPL-2.0

package grouping

import (
	"slices"

	"github.com/invowk/packmk/pkg/manifest"
)

type (
	// Package is one discovered package and the state derived while grouping.
	Package struct {
		// Name is the directory name and the unique key of the package.
		Name string
		// Identity is the package's own identity token.
		Identity manifest.Identity
		// Dependencies keeps the descriptor's order.
		Dependencies []manifest.Dependency

		// HasIdentityDependency is true when any dependency carries an
		// identity reference field, resolved or not. Set by Resolve.
		HasIdentityDependency bool
		// DependentPackages lists the names of the packages the identity
		// references resolved to, in dependency order. Set by Resolve.
		DependentPackages []string
	}

	// Index maps identity tokens to package names. It is built once per run
	// and read-only afterwards.
	Index struct {
		byToken map[string]string
	}

	// DuplicateIdentity reports two packages declaring the same identity.
	// The later package in discovery order owns the token.
	DuplicateIdentity struct {
		Token    string
		Previous string
		Current  string
	}
)

// NewPackage builds a Package from a parsed descriptor.
func NewPackage(name string, m *manifest.Manifest) *Package {
	p := &Package{Name: name, Identity: manifest.NoIdentity()}
	if m != nil {
		p.Identity = m.Identity
		p.Dependencies = slices.Clone(m.Dependencies)
	}
	return p
}

// BuildIndex indexes every package that has an identity.
func BuildIndex(pkgs []*Package) (*Index, []DuplicateIdentity) {
	ix := &Index{byToken: make(map[string]string, len(pkgs))}
	var dups []DuplicateIdentity

	for _, p := range pkgs {
		token, ok := p.Identity.Token()
		if !ok {
			continue
		}
		if prev, exists := ix.byToken[token]; exists && prev != p.Name {
			dups = append(dups, DuplicateIdentity{Token: token, Previous: prev, Current: p.Name})
		}
		ix.byToken[token] = p.Name
	}

	return ix, dups
}

// Lookup returns the name of the package that owns id.
func (ix *Index) Lookup(id manifest.Identity) (string, bool) {
	token, ok := id.Token()
	if !ok || ix == nil {
		return "", false
	}
	name, found := ix.byToken[token]
	return name, found
}

// Len returns the number of indexed identities.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.byToken)
}

// Resolve computes HasIdentityDependency and DependentPackages for every
// package. References that match no indexed identity are dropped.
func Resolve(pkgs []*Package, ix *Index) {
	for _, p := range pkgs {
		p.HasIdentityDependency = false
		p.DependentPackages = nil

		for _, dep := range p.Dependencies {
			if !dep.HasIdentityRef {
				continue
			}
			p.HasIdentityDependency = true
			if name, ok := ix.Lookup(dep.Ref); ok {
				p.DependentPackages = append(p.DependentPackages, name)
			}
		}
	}
}
