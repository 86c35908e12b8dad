// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package codegen

import (
	"sort"

	"github.com/DemoGo/StarPlatWorkingBranch/ast"
)

// symbol is a name visible to the lowering engine.
type symbol struct {
	name  string
	typ   ast.Type
	param bool

	// depth is the index of the frame that declared the symbol.
	depth int

	// redeclared marks a property that carries its own shadow-next buffer.
	redeclared bool

	// next is the shadow-next buffer of a double-buffered property.
	next string

	// fp is the fixed point the property drives. Reduction operands of such
	// a property are redirected to next.
	fp *fixedPoint

	// init is the value the property was attached with. A fixed point
	// driver that is not boolean resets its shadow-next buffer to it.
	init ast.Expression
}

// frame is one lexical block of host or parallel code.
type frame struct {
	symbols map[string]*symbol

	// buffers and shared are released when the frame closes, unless the
	// frame is the function frame (the wrapper releases those).
	buffers []Buffer
	shared  []Scalar

	// bfs is the forward BFS lowered in this block, if any.
	bfs *bfsState
}

type scope struct {
	frames []*frame
}

func newScope() *scope {
	sc := &scope{}
	sc.push()
	return sc
}

func (sc *scope) push() *frame {
	f := &frame{symbols: make(map[string]*symbol)}
	sc.frames = append(sc.frames, f)
	return f
}

func (sc *scope) pop() *frame {
	f := sc.frames[len(sc.frames)-1]
	sc.frames = sc.frames[:len(sc.frames)-1]
	return f
}

func (sc *scope) top() *frame {
	return sc.frames[len(sc.frames)-1]
}

func (sc *scope) depth() int {
	return len(sc.frames)
}

func (sc *scope) declare(sym *symbol) {
	sym.depth = len(sc.frames) - 1
	sc.top().symbols[sym.name] = sym
}

// visible returns every symbol reachable from the top frame, sorted by name.
func (sc *scope) visible() []*symbol {
	seen := make(map[string]*symbol)
	for i := len(sc.frames) - 1; i >= 0; i-- {
		for name, sym := range sc.frames[i].symbols {
			if _, ok := seen[name]; !ok {
				seen[name] = sym
			}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]*symbol, 0, len(names))
	for _, name := range names {
		out = append(out, seen[name])
	}
	return out
}

func (sc *scope) lookup(name string) *symbol {
	for i := len(sc.frames) - 1; i >= 0; i-- {
		if sym, ok := sc.frames[i].symbols[name]; ok {
			return sym
		}
	}
	return nil
}

// nearestBFS returns the closest forward BFS state visible from the top frame.
func (sc *scope) nearestBFS() *bfsState {
	for i := len(sc.frames) - 1; i >= 0; i-- {
		if sc.frames[i].bfs != nil {
			return sc.frames[i].bfs
		}
	}
	return nil
}
