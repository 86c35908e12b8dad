// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package programs is a catalog of graph algorithms expressed as DSL
// programs. The front end is out of scope for this module, so each program
// is built directly as an AST with the usage flags a front end would infer.
package programs

import (
	"fmt"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/DemoGo/StarPlatWorkingBranch/ast"
)

// Entry is one catalog program.
type Entry struct {
	Name        string
	Description string
	Build       func() *ast.Program
}

var catalog = []Entry{
	{Name: "bc", Description: "betweenness centrality from a set of sources (forward and reverse BFS)", Build: BC},
	{Name: "cc", Description: "connected components by minimum label propagation (fixed point)", Build: CC},
	{Name: "pagerank", Description: "PageRank over incoming edges (do-while with a shared reduction)", Build: PageRank},
	{Name: "sssp", Description: "single-source shortest paths (fixed point with a min reduction)", Build: SSSP},
	{Name: "tc", Description: "triangle counting (nested neighbor loops, edge test)", Build: TC},
}

// All returns every catalog entry sorted by name.
func All() []Entry {
	out := make([]Entry, len(catalog))
	copy(out, catalog)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Lookup returns the entry called name.
func Lookup(name string) (Entry, bool) {
	for _, e := range catalog {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

// Match returns the entries whose names match a doublestar pattern, sorted by
// name. A pattern that matches nothing is an error.
func Match(pattern string) ([]Entry, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid program pattern %q", pattern)
	}
	var out []Entry
	for _, e := range All() {
		ok, err := doublestar.Match(pattern, e.Name)
		if err != nil {
			return nil, fmt.Errorf("match %q: %w", pattern, err)
		}
		if ok {
			out = append(out, e)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no program matches %q", pattern)
	}
	return out, nil
}
