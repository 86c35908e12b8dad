// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package codegen

import (
	"fmt"

	"github.com/DemoGo/StarPlatWorkingBranch/ast"
)

// bfsState holds the names of a lowered forward BFS. A reverse BFS in the
// same or a nested block replays its levels.
//
// Levels are stored contiguously in nodes: level k occupies
// nodes[levels[k]:levels[k+1]]. Discovery writes each work item's children
// into its own CSR segment of scratch; a serial pass appends the segments in
// work-item order, so the next level is deterministic.
type bfsState struct {
	iterator string

	dist    string
	nodes   string
	found   string
	scratch string

	levels string
	phase  string
	start  string
	count  string
	next   string

	prefix string
}

// bfsGuard restricts neighbor loops of a BFS phase to the BFS children of
// the phase iterator.
type bfsGuard struct {
	iterator string
	dist     string
}

func (gd *bfsGuard) distRef(g *Generator) string {
	g.useBuffer(Buffer{Name: gd.dist, Elem: "int", Count: "V"})
	return g.emitter.BufferRef(gd.dist)
}

func newBFSState(prefix, iterator string) *bfsState {
	return &bfsState{
		iterator: iterator,
		dist:     prefix + "_dist",
		nodes:    prefix + "_nodes",
		found:    prefix + "_found",
		scratch:  prefix + "_scratch",
		levels:   prefix + "_levels",
		phase:    prefix + "_phase",
		start:    prefix + "_start",
		count:    prefix + "_count",
		next:     prefix + "_next",
		prefix:   prefix,
	}
}

func (st *bfsState) buffers() []Buffer {
	return []Buffer{
		{Name: st.dist, Elem: "int", Count: "V"},
		{Name: st.nodes, Elem: "int", Count: "V"},
		{Name: st.found, Elem: "int", Count: "V"},
		{Name: st.scratch, Elem: "int", Count: "E"},
	}
}

// ref records b as a capture of the current region and returns its reference.
func (g *Generator) ref(b Buffer) string {
	g.useBuffer(b)
	return g.emitter.BufferRef(b.Name)
}

func (g *Generator) lowerForwardBFS(s *Stream, b ast.ForwardBFS) error {
	if g.region != nil {
		return Errorf(ErrUnsupportedStatement, "BFS inside a parallel region")
	}
	if g.wrapper == nil {
		return Errorf(ErrInternal, "BFS in %s, which takes no graph", g.fn.Name)
	}

	st := newBFSState(g.temp("bfs"), b.Iterator)
	f := g.scope.top()
	for _, buf := range st.buffers() {
		g.emitter.AllocBuffer(s, buf)
		typ := ast.NodeProp(ast.ScalarInt)
		if buf.Count == "E" {
			typ = ast.EdgeProp(ast.ScalarInt)
		}
		g.scope.declare(&symbol{name: buf.Name, typ: typ})
		f.buffers = append(f.buffers, buf)
	}
	s.Line("std::vector<int> %s;", st.levels)
	for _, name := range []string{st.phase, st.start, st.next} {
		s.Line("int %s = 0;", name)
		g.scope.declare(&symbol{name: name, typ: ast.Primitive(ast.ScalarInt)})
	}
	s.Line("int %s = 1;", st.count)
	g.scope.declare(&symbol{name: st.count, typ: ast.Primitive(ast.ScalarInt)})
	next := Scalar{Name: st.next, Type: "int"}
	g.emitter.DeclareShared(s, next)
	f.shared = append(f.shared, next)

	reset := ast.Block{ast.Assignment{
		Target: ast.PropAccess{Owner: "idx", Prop: st.dist},
		Value:  ast.Literal{Value: ast.LiteralInt(-1)},
	}}
	if err := g.lowerRegion(s, regionSpec{purpose: "init", index: "idx", count: "V", iter: "idx"}, g.blockFill(reset)); err != nil {
		return err
	}

	root, err := g.expr(b.Root)
	if err != nil {
		return err
	}
	bufs := st.buffers()
	g.emitter.StoreElement(s, bufs[0], root, "0")
	g.emitter.StoreElement(s, bufs[1], "0", root)
	s.Line("%s.push_back(0);", st.levels)

	s.Open("while (%s > 0)", st.count)
	if err := g.bfsExpand(s, st); err != nil {
		return err
	}
	if err := g.bfsConcat(s, st); err != nil {
		return err
	}
	s.Line("%s.push_back(%s + %s);", st.levels, st.start, st.count)
	if err := g.bfsPhase(s, st, "bfs_body", b.Iterator, b.Body); err != nil {
		return err
	}
	s.Line("%s += %s;", st.start, st.count)
	s.Line("%s = %s;", st.count, st.next)
	s.Line("%s++;", st.phase)
	s.Close()

	f.bfs = st
	return nil
}

// bfsExpand discovers the next level. Each unvisited neighbor is claimed by
// exactly one work item with a compare-and-swap on its distance.
func (g *Generator) bfsExpand(s *Stream, st *bfsState) error {
	i := st.prefix + "_i"
	spec := regionSpec{purpose: "bfs_expand", index: i, count: st.count, iter: i}
	return g.lowerRegion(s, spec, func(body *Stream) error {
		meta, err := g.csrRef("meta")
		if err != nil {
			return err
		}
		data, err := g.csrRef("data")
		if err != nil {
			return err
		}
		bufs := st.buffers()
		dist, nodes, found, scratch := g.ref(bufs[0]), g.ref(bufs[1]), g.ref(bufs[2]), g.ref(bufs[3])
		g.useScalar(Scalar{Name: st.start, Type: "int"})
		g.useScalar(Scalar{Name: st.phase, Type: "int"})

		v, w := st.prefix+"_v", st.prefix+"_w"
		edge, local, old := st.prefix+"_edge", st.prefix+"_local", st.prefix+"_old"
		body.Line("int %s = %s[%s + %s];", v, nodes, st.start, i)
		body.Line("int %s = 0;", local)
		body.Open("for (int %s = %s[%s]; %s < %s[%s + 1]; %s++)", edge, meta, v, edge, meta, v, edge)
		body.Line("int %s = %s[%s];", w, data, edge)
		body.Open("if (%s[%s] == -1)", dist, w)
		g.emitter.ClaimCAS(body, old, fmt.Sprintf("%s[%s]", dist, w), "-1", st.phase+" + 1")
		body.Open("if (%s == -1)", old)
		body.Line("%s[%s[%s] + %s] = %s;", scratch, meta, v, local, w)
		body.Line("%s++;", local)
		body.Close()
		body.Close()
		body.Close()
		body.Line("%s[%s] = %s;", found, i, local)
		return nil
	})
}

// bfsConcat appends the discovered segments after the current level.
func (g *Generator) bfsConcat(s *Stream, st *bfsState) error {
	return g.lowerRegion(s, regionSpec{purpose: "bfs_concat", serial: true}, func(body *Stream) error {
		meta, err := g.csrRef("meta")
		if err != nil {
			return err
		}
		bufs := st.buffers()
		nodes, found, scratch := g.ref(bufs[1]), g.ref(bufs[2]), g.ref(bufs[3])
		g.useScalar(Scalar{Name: st.start, Type: "int"})
		g.useScalar(Scalar{Name: st.count, Type: "int"})
		g.useShared(Scalar{Name: st.next, Type: "int"})

		v, j, k, cursor := st.prefix+"_v", st.prefix+"_j", st.prefix+"_k", st.prefix+"_cursor"
		body.Line("int %s = 0;", cursor)
		body.Open("for (int %s = 0; %s < %s; %s++)", j, j, st.count, j)
		body.Line("int %s = %s[%s + %s];", v, nodes, st.start, j)
		body.Open("for (int %s = 0; %s < %s[%s]; %s++)", k, k, found, j, k)
		body.Line("%s[%s + %s + %s] = %s[%s[%s] + %s];", nodes, st.start, st.count, cursor, scratch, meta, v, k)
		body.Line("%s++;", cursor)
		body.Close()
		body.Close()
		body.Line("%s = %s;", g.emitter.SharedRef(st.next), cursor)
		return nil
	})
}

// bfsPhase runs body once for every node of the current level.
func (g *Generator) bfsPhase(s *Stream, st *bfsState, purpose, iterator string, block ast.Block) error {
	i := st.prefix + "_i"
	spec := regionSpec{purpose: purpose, index: i, count: st.count, iter: iterator}
	return g.lowerRegion(s, spec, func(body *Stream) error {
		nodes := g.ref(st.buffers()[1])
		g.useScalar(Scalar{Name: st.start, Type: "int"})
		body.Line("int %s = %s[%s + %s];", iterator, nodes, st.start, i)
		g.scope.declare(&symbol{name: iterator, typ: ast.Node()})

		prev := g.guard
		g.guard = &bfsGuard{iterator: iterator, dist: st.dist}
		defer func() { g.guard = prev }()
		return g.lowerStatements(body, block)
	})
}

// lowerReverseBFS replays the levels of the nearest forward BFS from the
// deepest to the root.
func (g *Generator) lowerReverseBFS(s *Stream, r ast.ReverseBFS) error {
	if g.region != nil {
		return Errorf(ErrUnsupportedStatement, "reverse BFS inside a parallel region")
	}
	st := g.scope.nearestBFS()
	if st == nil {
		return Errorf(ErrInternal, "reverse BFS without a preceding forward BFS")
	}
	body := r.Body
	if r.Filter != nil {
		body = ast.Block{ast.IfStmt{Cond: r.Filter, Then: r.Body}}
	}

	s.Open("while (%s > 0)", st.phase)
	s.Line("%s--;", st.phase)
	s.Line("%s = %s[%s];", st.start, st.levels, st.phase)
	s.Line("%s = %s[%s + 1] - %s;", st.count, st.levels, st.phase, st.start)
	if err := g.bfsPhase(s, st, "bfs_reverse", r.Iterator, body); err != nil {
		return err
	}
	s.Close()
	return nil
}
