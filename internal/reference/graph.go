// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package reference executes the generated algorithms' semantics in Go.
//
// The executors mirror the device code the backends emit: a CSR graph,
// frontier expansion with a compare-and-swap claim, and the double-checked
// minimum commit of fixed-point relaxation. Tests use them as oracles when
// checking that the emitted protocols converge under contention.
package reference

import (
	"fmt"
	"slices"
)

// Edge is a directed weighted edge.
type Edge struct {
	Src, Dst, Weight int
}

// Graph is a compressed sparse row graph. Offsets has V+1 entries and
// Edges[Offsets[v]:Offsets[v+1]] are the sorted out-neighbors of v.
type Graph struct {
	Offsets []int
	Edges   []int
	Weights []int
}

// NewGraph builds the CSR form of n nodes and the given edges.
func NewGraph(n int, edges []Edge) (*Graph, error) {
	sorted := slices.Clone(edges)
	for _, e := range sorted {
		if e.Src < 0 || e.Src >= n || e.Dst < 0 || e.Dst >= n {
			return nil, fmt.Errorf("edge %d->%d outside [0, %d)", e.Src, e.Dst, n)
		}
	}
	slices.SortFunc(sorted, func(a, b Edge) int {
		if a.Src != b.Src {
			return a.Src - b.Src
		}
		return a.Dst - b.Dst
	})

	g := &Graph{
		Offsets: make([]int, n+1),
		Edges:   make([]int, len(sorted)),
		Weights: make([]int, len(sorted)),
	}
	for i, e := range sorted {
		g.Offsets[e.Src+1]++
		g.Edges[i] = e.Dst
		g.Weights[i] = e.Weight
	}
	for v := 0; v < n; v++ {
		g.Offsets[v+1] += g.Offsets[v]
	}
	return g, nil
}

// NumNodes returns V.
func (g *Graph) NumNodes() int { return len(g.Offsets) - 1 }

// NumEdges returns E.
func (g *Graph) NumEdges() int { return len(g.Edges) }

// Neighbors returns the out-neighbors of v.
func (g *Graph) Neighbors(v int) []int {
	return g.Edges[g.Offsets[v]:g.Offsets[v+1]]
}

// IsEdge reports whether u->w exists, by binary search over u's row.
func (g *Graph) IsEdge(u, w int) bool {
	_, found := slices.BinarySearch(g.Neighbors(u), w)
	return found
}
