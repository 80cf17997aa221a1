// SPDX-License-Identifier: MPL-2.0

// Package graph provides a small directed graph over string keys with
// deterministic, insertion-ordered traversal. It is used by transitive
// grouping to collect packages connected by identity references.
package graph

import "slices"

// Graph is a directed graph. Nodes are identified by string keys.
// An edge from A to B means A references B.
type Graph struct {
	// adjacency maps each node to its outgoing neighbors.
	adjacency map[string][]string
	// reverse maps each node to its incoming neighbors.
	reverse map[string][]string
	// nodes tracks all nodes in insertion order for deterministic output.
	nodes []string
	// index gives each node's insertion position.
	index map[string]int
}

// New creates an empty Graph.
func New() *Graph {
	return &Graph{
		adjacency: make(map[string][]string),
		reverse:   make(map[string][]string),
		index:     make(map[string]int),
	}
}

// AddNode adds a node to the graph. If the node already exists, this is a no-op.
func (g *Graph) AddNode(name string) {
	if _, ok := g.index[name]; ok {
		return
	}
	g.index[name] = len(g.nodes)
	g.nodes = append(g.nodes, name)
}

// AddEdge adds a directed edge from -> to. Both nodes are implicitly added if
// they don't exist. Duplicate edges are ignored.
func (g *Graph) AddEdge(from, to string) {
	g.AddNode(from)
	g.AddNode(to)
	if slices.Contains(g.adjacency[from], to) {
		return
	}
	g.adjacency[from] = append(g.adjacency[from], to)
	g.reverse[to] = append(g.reverse[to], from)
}

// Components returns the weakly connected components: nodes reachable from
// each other when edge direction is ignored.
//
// Components are ordered by their earliest-inserted node, and the nodes of a
// component are in insertion order, so the result depends only on the order
// nodes and edges were added.
func (g *Graph) Components() [][]string {
	seen := make(map[string]bool, len(g.nodes))
	var components [][]string

	for _, start := range g.nodes {
		if seen[start] {
			continue
		}

		var members []string
		stack := []string{start}
		seen[start] = true
		for len(stack) > 0 {
			node := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			members = append(members, node)

			for _, next := range g.adjacency[node] {
				if !seen[next] {
					seen[next] = true
					stack = append(stack, next)
				}
			}
			for _, prev := range g.reverse[node] {
				if !seen[prev] {
					seen[prev] = true
					stack = append(stack, prev)
				}
			}
		}

		slices.SortFunc(members, func(a, b string) int { return g.index[a] - g.index[b] })
		components = append(components, members)
	}

	return components
}
