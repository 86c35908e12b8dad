// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package reference

import (
	"context"
	"math"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Unreached is the distance of a node no path reaches.
const Unreached = -1

// parallelFor runs fn over [0, n) split into at most workers chunks.
func parallelFor(ctx context.Context, n, workers int, fn func(i int)) error {
	if workers < 1 {
		workers = 1
	}
	chunk := (n + workers - 1) / workers
	eg, ctx := errgroup.WithContext(ctx)
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		eg.Go(func() error {
			for i := lo; i < hi; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				fn(i)
			}
			return nil
		})
	}
	return eg.Wait()
}

// BFSResult holds the depth of every node and the frontier of every level.
type BFSResult struct {
	Dist   []int
	Levels [][]int
}

// ReverseLevels returns the frontiers deepest first, the order of a reverse
// traversal.
func (r *BFSResult) ReverseLevels() [][]int {
	out := make([][]int, len(r.Levels))
	for i, level := range r.Levels {
		out[len(r.Levels)-1-i] = level
	}
	return out
}

// BFS expands the frontier from root level by level. Each frontier node
// claims unvisited neighbors by compare-and-swap and records them in its own
// CSR-row slice of a scratch array; the slices are then concatenated in
// frontier order, so the next level does not depend on scheduling.
func BFS(ctx context.Context, g *Graph, root, workers int) (*BFSResult, error) {
	n := g.NumNodes()
	dist := make([]atomic.Int64, n)
	for v := range dist {
		dist[v].Store(Unreached)
	}
	dist[root].Store(0)

	scratch := make([]int, g.NumEdges())
	frontier := []int{root}
	levels := [][]int{frontier}
	for depth := int64(1); ; depth++ {
		found := make([]int, len(frontier))
		err := parallelFor(ctx, len(frontier), workers, func(i int) {
			v := frontier[i]
			base := g.Offsets[v]
			for _, w := range g.Neighbors(v) {
				if Claim(&dist[w], Unreached, depth) {
					scratch[base+found[i]] = w
					found[i]++
				}
			}
		})
		if err != nil {
			return nil, err
		}

		var next []int
		for i, v := range frontier {
			next = append(next, scratch[g.Offsets[v]:g.Offsets[v]+found[i]]...)
		}
		if len(next) == 0 {
			break
		}
		levels = append(levels, next)
		frontier = next
	}

	res := &BFSResult{Dist: make([]int, n), Levels: levels}
	for v := range dist {
		res.Dist[v] = int(dist[v].Load())
	}
	return res, nil
}

// SSSP relaxes edges from every modified node until no distance changes.
// A relaxation that wins the minimum re-reads the cell and marks the node
// for the next round only while its value is still the stored one; a later,
// smaller store marks it instead.
func SSSP(ctx context.Context, g *Graph, src, workers int) ([]int64, error) {
	n := g.NumNodes()
	dist := make([]atomic.Int64, n)
	modified := make([]atomic.Bool, n)
	modifiedNext := make([]atomic.Bool, n)
	for v := range dist {
		dist[v].Store(math.MaxInt64)
	}
	dist[src].Store(0)
	modified[src].Store(true)

	var finished atomic.Bool
	for !finished.Load() {
		finished.Store(true)
		err := parallelFor(ctx, n, workers, func(v int) {
			if !modified[v].Load() {
				return
			}
			dv := dist[v].Load()
			for e := g.Offsets[v]; e < g.Offsets[v+1]; e++ {
				w := g.Edges[e]
				candidate := dv + int64(g.Weights[e])
				if dist[w].Load() > candidate && AtomicMin(&dist[w], candidate) {
					if dist[w].Load() == candidate {
						modifiedNext[w].Store(true)
						finished.Store(false)
					}
				}
			}
		})
		if err != nil {
			return nil, err
		}
		for v := range modified {
			modified[v].Store(modifiedNext[v].Load())
			modifiedNext[v].Store(false)
		}
	}

	out := make([]int64, n)
	for v := range dist {
		out[v] = dist[v].Load()
	}
	return out, nil
}
