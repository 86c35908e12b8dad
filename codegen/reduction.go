// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package codegen

import "github.com/DemoGo/StarPlatWorkingBranch/ast"

// reduceOperator maps an arithmetic or logical reduction to its binary
// operator. Count maps to addition of one.
func reduceOperator(op ast.ReduceOp) (ast.BinaryOp, bool) {
	switch op {
	case ast.ReduceSum, ast.ReduceCount:
		return ast.OpAdd, true
	case ast.ReduceSub:
		return ast.OpSub, true
	case ast.ReduceProduct:
		return ast.OpMul, true
	case ast.ReduceAnd:
		return ast.OpAnd, true
	case ast.ReduceOr:
		return ast.OpOr, true
	}
	return 0, false
}

func (g *Generator) lowerReduction(s *Stream, r ast.ReductionCall) error {
	if len(r.Targets) == 0 {
		return Errorf(ErrInternal, "reduction %s without a target", r.Op)
	}
	if r.Op.IsMinMax() {
		return g.lowerMinMax(s, r)
	}

	op, ok := reduceOperator(r.Op)
	if !ok {
		return Errorf(ErrUnsupportedStatement, "unsupported reduction %s", r.Op)
	}
	target := r.Targets[0]
	ref, err := g.expr(target)
	if err != nil {
		return err
	}
	elem, err := g.targetElem(target)
	if err != nil {
		return err
	}
	operand := "1"
	if r.Op != ast.ReduceCount {
		if len(r.Values) == 0 {
			return Errorf(ErrInternal, "reduction %s without a value", r.Op)
		}
		operand, err = g.expr(r.Values[0])
		if err != nil {
			return err
		}
	}
	return g.emitter.OpAssign(s, ref, op, operand, elem, g.needsAtomic(target))
}

// lowerMinMax lowers a min or max reduction with dependent updates:
//
//	T t_new = candidate;
//	if (t > t_new) {
//	    atomic min of t and t_new
//	    if (t == t_new) {
//	        dependents
//	    }
//	}
//
// The re-check limits the dependents to the work item whose candidate
// survived. Inside a fixed point the target and the dependents of a
// double-buffered property use its shadow-next buffer, while the candidate
// reads the committed one. A dependent on the fixed point property clears
// the fixed point flag.
func (g *Generator) lowerMinMax(s *Stream, r ast.ReductionCall) error {
	if len(r.Values) != len(r.Targets) {
		return Errorf(ErrInternal, "reduction %s has %d targets and %d values", r.Op, len(r.Targets), len(r.Values))
	}
	primary := r.Targets[0]
	g.nextContext = true
	ref, err := g.expr(primary)
	g.nextContext = false
	if err != nil {
		return err
	}
	elem, err := g.targetElem(primary)
	if err != nil {
		return err
	}
	candidate, err := g.expr(r.Values[0])
	if err != nil {
		return err
	}

	tmp := g.temp(targetName(primary) + "_new")
	isMax := r.Op == ast.ReduceMax
	cmp := ">"
	if isMax {
		cmp = "<"
	}

	s.Line("%s %s = %s;", elem, tmp, candidate)
	s.Open("if (%s %s %s)", ref, cmp, tmp)
	atomic := g.region != nil
	if atomic {
		g.emitter.AtomicMin(s, ref, tmp, elem, isMax)
		s.Open("if (%s == %s)", ref, tmp)
	} else {
		s.Line("%s = %s;", ref, tmp)
	}

	flag := ""
	for i := 1; i < len(r.Targets); i++ {
		g.nextContext = true
		dep, err := g.expr(r.Targets[i])
		g.nextContext = false
		if err != nil {
			return err
		}
		value, err := g.expr(r.Values[i])
		if err != nil {
			return err
		}
		s.Line("%s = %s;", dep, value)
		if fp := g.fixedPointOf(r.Targets[i]); fp != nil {
			flag = fp.flag
		}
	}
	if flag != "" {
		fref, err := g.identRef(flag)
		if err != nil {
			return err
		}
		if atomic {
			g.emitter.AtomicWrite(s, fref, "false")
		} else {
			s.Line("%s = false;", fref)
		}
	}

	if atomic {
		s.Close()
	}
	s.Close()
	return nil
}

func targetName(e ast.Expression) string {
	switch t := e.(type) {
	case ast.Identifier:
		return t.Name
	case ast.PropAccess:
		return t.Prop
	}
	return "red"
}

// doubleBuffered reports whether writes to property sym go to its
// shadow-next buffer: the driver of the active fixed point, or a redeclared
// property declared outside the innermost fixed point, which commits it.
func (g *Generator) doubleBuffered(sym *symbol) bool {
	if sym.next == "" {
		return false
	}
	if sym.fp != nil {
		return true
	}
	return sym.redeclared && g.fixedPointFrames > 0 && sym.depth < g.fixedPointFrames
}

// fixedPointOf returns the fixed point that target's property drives, if any.
func (g *Generator) fixedPointOf(target ast.Expression) *fixedPoint {
	p, ok := target.(ast.PropAccess)
	if !ok {
		return nil
	}
	if sym := g.scope.lookup(p.Prop); sym != nil {
		return sym.fp
	}
	return nil
}
