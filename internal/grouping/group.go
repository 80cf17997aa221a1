// SPDX-License-Identifier: MPL-2.0

package grouping

import (
	"errors"
	"fmt"
	"slices"

	"github.com/invowk/packmk/internal/graph"
)

const (
	// ModeDirect expands each group by one level of references.
	ModeDirect Mode = "direct"
	// ModeTransitive groups connected components of the reference graph.
	ModeTransitive Mode = "transitive"
)

// ErrUnknownMode is returned by Partition for an unrecognized Mode.
var ErrUnknownMode = errors.New("unknown grouping mode")

type (
	// Mode selects the grouping strategy.
	Mode string

	// Result is the outcome of Run.
	Result struct {
		// Groups is the partition, in discovery order of the seeds.
		Groups []Group
		// Index is the identity index the references were resolved against.
		Index *Index
		// Duplicates lists identities declared by more than one package.
		Duplicates []DuplicateIdentity
	}

	// Group is a set of package names bundled into one artifact.
	// Members[0] is the package the group was seeded from.
	Group struct {
		Members []string
	}
)

// Multi reports whether the group bundles more than one package.
func (g Group) Multi() bool { return len(g.Members) > 1 }

// Partition groups pkgs, which must already be resolved, in discovery order.
func Partition(pkgs []*Package, mode Mode) ([]Group, error) {
	switch mode {
	case ModeDirect, "":
		return direct(pkgs), nil
	case ModeTransitive:
		return transitive(pkgs), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
}

// Run builds the index, resolves references and partitions pkgs.
func Run(pkgs []*Package, mode Mode) (*Result, error) {
	ix, dups := BuildIndex(pkgs)
	Resolve(pkgs, ix)
	groups, err := Partition(pkgs, mode)
	if err != nil {
		return nil, err
	}
	return &Result{Groups: groups, Index: ix, Duplicates: dups}, nil
}

func direct(pkgs []*Package) []Group {
	known := make(map[string]bool, len(pkgs))
	for _, p := range pkgs {
		known[p.Name] = true
	}

	processed := make(map[string]bool, len(pkgs))
	groups := make([]Group, 0, len(pkgs))

	for _, p := range pkgs {
		if processed[p.Name] {
			continue
		}

		members := []string{p.Name}
		if p.HasIdentityDependency {
			for _, dep := range p.DependentPackages {
				// Already-grouped packages stay where they are.
				if !known[dep] || processed[dep] || slices.Contains(members, dep) {
					continue
				}
				members = append(members, dep)
			}
		}

		for _, m := range members {
			processed[m] = true
		}
		groups = append(groups, Group{Members: members})
	}

	return groups
}

func transitive(pkgs []*Package) []Group {
	g := graph.New()
	known := make(map[string]bool, len(pkgs))
	for _, p := range pkgs {
		g.AddNode(p.Name)
		known[p.Name] = true
	}
	for _, p := range pkgs {
		for _, dep := range p.DependentPackages {
			if known[dep] {
				g.AddEdge(p.Name, dep)
			}
		}
	}

	components := g.Components()
	groups := make([]Group, 0, len(components))
	for _, members := range components {
		groups = append(groups, Group{Members: members})
	}
	return groups
}
