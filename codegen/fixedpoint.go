// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package codegen

import "github.com/DemoGo/StarPlatWorkingBranch/ast"

// fixedPoint is an active fixed point loop.
type fixedPoint struct {
	flag string
	prop string
}

// lowerFixedPoint lowers
//
//	while (!flag) {
//	    flag = true;
//	    body
//	    commit: prop = prop_next; prop_next = reset
//	}
//
// The shadow-next buffer lives for the duration of the loop, unless the
// property was redeclared and already carries one.
func (g *Generator) lowerFixedPoint(s *Stream, fp ast.FixedPoint) error {
	if g.region != nil {
		return Errorf(ErrUnsupportedStatement, "fixed point inside a parallel region")
	}
	sym := g.scope.lookup(fp.Prop)
	if sym == nil || sym.typ.Kind != ast.KindNodeProp {
		return Errorf(ErrInternal, "fixed point property %s is not a node property", fp.Prop)
	}
	if flag := g.scope.lookup(fp.Flag); flag == nil || !flag.typ.IsScalarLike() {
		return Errorf(ErrInternal, "fixed point flag %s is not a declared scalar", fp.Flag)
	}
	if sym.fp != nil {
		return Errorf(ErrInternal, "property %s already drives a fixed point", fp.Prop)
	}
	reset := resetValue(sym)
	if reset == nil {
		return Errorf(ErrInternal, "fixed point property %s is neither boolean nor initialized", fp.Prop)
	}

	var owned *Buffer
	next := g.scope.lookup(sym.next)
	if !sym.redeclared || next == nil {
		next = &symbol{name: g.temp(fp.Prop + "_next"), typ: sym.typ}
		nb, err := g.bufferOf(next)
		if err != nil {
			return err
		}
		g.emitter.AllocBuffer(s, nb)
		g.scope.declare(next)
		owned = &nb
	}

	init := regionSpec{purpose: "init", index: "idx", count: "V", iter: "idx"}
	fill := ast.Block{ast.Assignment{Target: ast.PropAccess{Owner: "idx", Prop: next.name}, Value: reset}}
	if err := g.lowerRegion(s, init, g.blockFill(fill)); err != nil {
		return err
	}

	prevNext := sym.next
	sym.next = next.name
	sym.fp = &fixedPoint{flag: fp.Flag, prop: fp.Prop}
	defer func() {
		sym.fp = nil
		sym.next = prevNext
	}()

	s.Open("while (!%s)", fp.Flag)
	s.Line("%s = true;", fp.Flag)
	prevFrames := g.fixedPointFrames
	g.fixedPointFrames = g.scope.depth()
	err := g.lowerBlock(s, fp.Body)
	g.fixedPointFrames = prevFrames
	if err != nil {
		return err
	}
	if err := g.commitFixedPoint(s, sym, reset); err != nil {
		return err
	}
	s.Close()

	if owned != nil {
		g.emitter.FreeBuffer(s, *owned)
		delete(g.scope.top().symbols, next.name)
	}
	return nil
}

// commitFixedPoint copies every double-buffered property from its
// shadow-next buffer. Only the driver's shadow is reset for the next
// iteration; the others keep the running values their writes build on.
func (g *Generator) commitFixedPoint(s *Stream, driver *symbol, reset ast.Expression) error {
	const idx = "idx"
	body := ast.Block{
		ast.Assignment{Target: ast.PropAccess{Owner: idx, Prop: driver.name}, Value: ast.PropAccess{Owner: idx, Prop: driver.next}},
		ast.Assignment{Target: ast.PropAccess{Owner: idx, Prop: driver.next}, Value: reset},
	}
	for _, sym := range g.scope.visible() {
		if sym == driver || !sym.redeclared || sym.typ.Kind != ast.KindNodeProp {
			continue
		}
		body = append(body, ast.Assignment{
			Target: ast.PropAccess{Owner: idx, Prop: sym.name},
			Value:  ast.PropAccess{Owner: idx, Prop: sym.next},
		})
	}
	prevFrames := g.fixedPointFrames
	g.fixedPointFrames = 0
	defer func() { g.fixedPointFrames = prevFrames }()
	spec := regionSpec{purpose: "commit", index: idx, count: "V", iter: idx}
	return g.lowerRegion(s, spec, g.blockFill(body))
}

// resetValue returns what the driver's shadow-next buffer is reset to
// between iterations: false for flags, the attached value otherwise. Nil
// means there is nothing to reset to.
func resetValue(sym *symbol) ast.Expression {
	if sym.typ.Scalar == ast.ScalarBool {
		return ast.Literal{Value: ast.LiteralBool(false)}
	}
	return sym.init
}
