// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package codegen

import (
	"fmt"
	"strings"

	"github.com/DemoGo/StarPlatWorkingBranch/ast"
)

func (g *Generator) lowerStatements(s *Stream, block ast.Block) error {
	for _, st := range block {
		if err := g.lowerStatement(s, st); err != nil {
			return err
		}
	}
	return nil
}

// lowerBlock lowers block in a fresh lexical frame.
func (g *Generator) lowerBlock(s *Stream, block ast.Block) error {
	g.scope.push()
	err := g.lowerStatements(s, block)
	g.closeFrame(s)
	return err
}

func (g *Generator) lowerStatement(s *Stream, st ast.Statement) error {
	if g.region == nil && needsSerialRegion(st) {
		return g.lowerSerial(s, st)
	}

	switch k := st.(type) {
	case ast.Block:
		s.Line("{")
		s.Push()
		err := g.lowerBlock(s, k)
		s.Pop()
		s.Line("}")
		return err
	case ast.Declaration:
		return g.lowerDeclaration(s, k)
	case ast.Assignment:
		return g.lowerAssignment(s, k)
	case ast.IfStmt:
		return g.lowerIf(s, k)
	case ast.ForAll:
		return g.lowerForAll(s, k)
	case ast.FixedPoint:
		return g.lowerFixedPoint(s, k)
	case ast.ReductionCall:
		return g.lowerReduction(s, k)
	case ast.ProcCall:
		return g.lowerProcCall(s, k)
	case ast.ForwardBFS:
		return g.lowerForwardBFS(s, k)
	case ast.ReverseBFS:
		return g.lowerReverseBFS(s, k)
	case ast.While:
		return g.lowerWhile(s, k)
	case ast.Return:
		return g.lowerReturn(s, k)
	case ast.ExprStmt:
		return g.lowerExprStmt(s, k)
	default:
		return Errorf(ErrUnsupportedStatement, "unsupported statement kind: %T", st)
	}
}

func (g *Generator) lowerDeclaration(s *Stream, d ast.Declaration) error {
	switch {
	case d.Type.IsProperty():
		if g.region != nil {
			return Errorf(ErrUnsupportedStatement, "property %s declared inside a parallel region", d.Name)
		}
		return g.declareProperty(s, d)
	case d.Type.Kind == ast.KindCollection:
		if g.region != nil {
			return Errorf(ErrUnsupportedStatement, "collection %s declared inside a parallel region", d.Name)
		}
		typ, err := g.emitter.TypeName(d.Type)
		if err != nil {
			return err
		}
		g.scope.declare(&symbol{name: d.Name, typ: d.Type})
		s.Line("%s %s;", strings.TrimSuffix(typ, "&"), d.Name)
		return nil
	}

	typ, err := g.emitter.TypeName(d.Type)
	if err != nil {
		return err
	}
	sym := &symbol{name: d.Name, typ: d.Type}
	deferred := false
	switch {
	case d.Init == nil:
		g.scope.declare(sym)
		s.Line("%s %s;", typ, d.Name)
	case g.region == nil && exprTouchesDevice(d.Init):
		g.scope.declare(sym)
		s.Line("%s %s;", typ, d.Name)
		deferred = true
	default:
		init, err := g.expr(d.Init)
		if err != nil {
			return err
		}
		g.scope.declare(sym)
		s.Line("%s %s = %s;", typ, d.Name, init)
	}

	if g.region == nil && g.shared[d.Name] {
		sc := Scalar{Name: d.Name, Type: typ}
		g.emitter.DeclareShared(s, sc)
		f := g.scope.top()
		f.shared = append(f.shared, sc)
	}
	if deferred {
		return g.lowerSerial(s, ast.Assignment{Target: ast.Identifier{Name: d.Name}, Value: d.Init})
	}
	return nil
}

func (g *Generator) lowerAssignment(s *Stream, a ast.Assignment) error {
	switch t := a.Target.(type) {
	case ast.Identifier:
		sym := g.scope.lookup(t.Name)
		if sym != nil && sym.typ.IsProperty() {
			return g.assignProperty(s, sym, a.Value)
		}
		ref, err := g.identRef(t.Name)
		if err != nil {
			return err
		}
		if g.isSharedHost(sym) {
			elem, err := g.elemType(sym.typ)
			if err != nil {
				return err
			}
			if a.Atomic {
				return g.atomicAssign(s, ref, elem, a.Value)
			}
			value, err := g.expr(a.Value)
			if err != nil {
				return err
			}
			g.emitter.AtomicWrite(s, ref, value)
			return nil
		}
		value, err := g.expr(a.Value)
		if err != nil {
			return err
		}
		s.Line("%s = %s;", ref, value)
		return nil

	case ast.PropAccess:
		if g.region == nil {
			return g.storeElement(s, t, a.Value)
		}
		// Writes to a redeclared property go to its shadow until commit.
		if sym := g.scope.lookup(t.Prop); sym != nil && sym.fp == nil && g.doubleBuffered(sym) {
			g.nextContext = true
		}
		ref, err := g.expr(t)
		g.nextContext = false
		if err != nil {
			return err
		}
		if a.Atomic {
			elem, err := g.targetElem(t)
			if err != nil {
				return err
			}
			return g.atomicAssign(s, ref, elem, a.Value)
		}
		value, err := g.expr(a.Value)
		if err != nil {
			return err
		}
		s.Line("%s = %s;", ref, value)
		return nil

	default:
		return Errorf(ErrUnsupportedStatement, "unsupported assignment target: %T", a.Target)
	}
}

// isSharedHost reports whether sym is a host scalar that the current region
// writes through its device mirror.
func (g *Generator) isSharedHost(sym *symbol) bool {
	return g.region != nil && sym != nil && sym.depth < g.regionDepth && g.shared[sym.name]
}

// atomicAssign lowers "target = target op operand" as an atomic update. The
// left operand is implied by the target and is not evaluated.
func (g *Generator) atomicAssign(s *Stream, target, elem string, value ast.Expression) error {
	if b, ok := value.(ast.Binary); ok && !b.Op.IsRelational() {
		operand, err := g.expr(b.Right)
		if err != nil {
			return err
		}
		return g.emitter.OpAssign(s, target, b.Op, operand, elem, true)
	}
	text, err := g.expr(value)
	if err != nil {
		return err
	}
	g.emitter.AtomicWrite(s, target, text)
	return nil
}

// storeElement writes one property element from host code.
func (g *Generator) storeElement(s *Stream, t ast.PropAccess, value ast.Expression) error {
	sym := g.scope.lookup(t.Prop)
	if sym == nil || !sym.typ.IsProperty() {
		return Errorf(ErrUnsupportedStatement, "%s is not a writable property", t.Prop)
	}
	b, err := g.bufferOf(sym)
	if err != nil {
		return err
	}
	index, err := g.expr(ast.Identifier{Name: t.Owner})
	if err != nil {
		return err
	}
	text, err := g.expr(value)
	if err != nil {
		return err
	}
	g.emitter.StoreElement(s, b, index, text)
	return nil
}

// assignProperty lowers a whole-property assignment: an element-wise copy
// when value names another property, a fill otherwise.
func (g *Generator) assignProperty(s *Stream, sym *symbol, value ast.Expression) error {
	if g.region != nil {
		return Errorf(ErrUnsupportedStatement, "whole-property assignment to %s inside a parallel region", sym.name)
	}
	if id, ok := value.(ast.Identifier); ok {
		if src := g.scope.lookup(id.Name); src != nil && src.typ.IsProperty() {
			const idx = "idx"
			body := ast.Block{ast.Assignment{
				Target: ast.PropAccess{Owner: idx, Prop: sym.name},
				Value:  ast.PropAccess{Owner: idx, Prop: src.name},
			}}
			spec := regionSpec{purpose: "copy", index: idx, count: propCount(sym.typ), iter: idx}
			return g.lowerRegion(s, spec, g.blockFill(body))
		}
	}
	return g.fillProperties(s, []ast.Arg{{Name: sym.name, Value: value}})
}

func (g *Generator) lowerIf(s *Stream, k ast.IfStmt) error {
	cond, err := g.expr(k.Cond)
	if err != nil {
		return err
	}
	s.Open("if (%s)", cond)
	if err := g.lowerBlock(s, k.Then); err != nil {
		return err
	}
	if len(k.Else) > 0 {
		s.Pop()
		s.Line("} else {")
		s.Push()
		if err := g.lowerBlock(s, k.Else); err != nil {
			return err
		}
	}
	s.Close()
	return nil
}

func (g *Generator) lowerWhile(s *Stream, k ast.While) error {
	cond, err := g.expr(k.Cond)
	if err != nil {
		return err
	}
	if k.DoWhile {
		s.Open("do")
		if err := g.lowerBlock(s, k.Body); err != nil {
			return err
		}
		s.Pop()
		s.Line("} while (%s);", cond)
		return nil
	}
	s.Open("while (%s)", cond)
	if err := g.lowerBlock(s, k.Body); err != nil {
		return err
	}
	s.Close()
	return nil
}

func (g *Generator) lowerReturn(s *Stream, k ast.Return) error {
	if k.Value == nil {
		s.Line("return;")
		return nil
	}
	if g.region != nil {
		return Errorf(ErrUnsupportedStatement, "return with a value inside a parallel region")
	}
	value, err := g.expr(k.Value)
	if err != nil {
		return err
	}
	s.Line("return %s;", value)
	return nil
}

func (g *Generator) lowerExprStmt(s *Stream, k ast.ExprStmt) error {
	if u, ok := k.X.(ast.Unary); ok && u.Op != ast.OpNot && g.needsAtomic(u.X) {
		ref, err := g.expr(u.X)
		if err != nil {
			return err
		}
		elem, err := g.targetElem(u.X)
		if err != nil {
			return err
		}
		op := ast.OpAdd
		if u.Op == ast.OpPostDec {
			op = ast.OpSub
		}
		return g.emitter.OpAssign(s, ref, op, "1", elem, true)
	}
	text, err := g.expr(k.X)
	if err != nil {
		return err
	}
	s.Line("%s;", text)
	return nil
}

func (g *Generator) lowerForAll(s *Stream, f ast.ForAll) error {
	body := f.Body
	if f.Filter != nil {
		body = ast.Block{ast.IfStmt{Cond: f.Filter, Then: f.Body}}
	}

	switch src := f.Source.(type) {
	case ast.DomainNodes, ast.DomainEdges:
		count := "V"
		if _, ok := src.(ast.DomainEdges); ok {
			count = "E"
		}
		if g.region == nil {
			spec := regionSpec{purpose: "kernel", index: f.Iterator, count: count, iter: f.Iterator}
			return g.lowerRegion(s, spec, g.blockFill(body))
		}
		s.Open("for (int %s = 0; %s < %s; %s++)", f.Iterator, f.Iterator, count, f.Iterator)
		g.scope.push()
		g.scope.declare(&symbol{name: f.Iterator, typ: ast.Node()})
		err := g.lowerStatements(s, body)
		g.closeFrame(s)
		s.Close()
		return err

	case ast.Neighbors:
		return g.lowerNeighbors(s, f.Iterator, src.Of, false, body)

	case ast.InNeighbors:
		return g.lowerNeighbors(s, f.Iterator, src.Of, true, body)

	case ast.Collection:
		if g.region != nil {
			return Errorf(ErrUnsupportedStatement, "iteration over collection %s inside a parallel region", src.Name)
		}
		it := g.temp("it")
		s.Open("for (auto %s = %s.begin(); %s != %s.end(); ++%s)", it, src.Name, it, src.Name, it)
		g.scope.push()
		g.scope.declare(&symbol{name: f.Iterator, typ: ast.Node()})
		s.Line("int %s = *%s;", f.Iterator, it)
		err := g.lowerStatements(s, body)
		g.closeFrame(s)
		s.Close()
		return err

	default:
		return Errorf(ErrUnsupportedStatement, "unsupported iteration source: %T", f.Source)
	}
}

// lowerNeighbors lowers a loop over the out- or in-neighbors of of. Inside a
// BFS phase, loops over the phase iterator only visit BFS children.
func (g *Generator) lowerNeighbors(s *Stream, iter, of string, incoming bool, body ast.Block) error {
	metaField, listField := "meta", "data"
	if incoming {
		metaField, listField = "rev_meta", "src"
	}
	meta, err := g.csrRef(metaField)
	if err != nil {
		return err
	}
	list, err := g.csrRef(listField)
	if err != nil {
		return err
	}
	ofRef, err := g.identRef(of)
	if err != nil {
		return err
	}

	edge := g.temp("edge_" + iter)
	prevEdge, hadEdge := g.edgeVars[iter]
	g.edgeVars[iter] = edge
	defer func() {
		if hadEdge {
			g.edgeVars[iter] = prevEdge
		} else {
			delete(g.edgeVars, iter)
		}
	}()

	s.Open("for (int %s = %s[%s]; %s < %s[%s + 1]; %s++)", edge, meta, ofRef, edge, meta, ofRef, edge)
	g.scope.push()
	g.scope.declare(&symbol{name: iter, typ: ast.Node()})
	s.Line("int %s = %s[%s];", iter, list, edge)

	if g.guard != nil && !incoming && of == g.guard.iterator {
		dist := g.guard.distRef(g)
		s.Open("if (%s[%s] == %s[%s] + 1)", dist, iter, dist, ofRef)
		err = g.lowerStatements(s, body)
		s.Close()
	} else {
		err = g.lowerStatements(s, body)
	}
	g.closeFrame(s)
	s.Close()
	return err
}

func (g *Generator) lowerProcCall(s *Stream, p ast.ProcCall) error {
	if isAttach(p.Method) {
		return g.fillProperties(s, p.Args)
	}
	args := make([]string, 0, len(p.Args))
	for _, a := range p.Args {
		text, err := g.expr(a.Value)
		if err != nil {
			return err
		}
		args = append(args, text)
	}
	call := fmt.Sprintf("%s(%s)", p.Method, strings.Join(args, ", "))
	if p.Receiver != "" {
		call = p.Receiver + "." + call
	}
	s.Line("%s;", call)
	return nil
}

// needsAtomic reports whether an update of target races with other work
// items of the current region.
func (g *Generator) needsAtomic(target ast.Expression) bool {
	if g.region == nil {
		return false
	}
	switch t := target.(type) {
	case ast.Identifier:
		return g.isSharedHost(g.scope.lookup(t.Name))
	case ast.PropAccess:
		return t.Owner != g.regionIter
	}
	return false
}

// targetElem returns the element type of an update target.
func (g *Generator) targetElem(target ast.Expression) (string, error) {
	switch t := target.(type) {
	case ast.Identifier:
		if sym := g.scope.lookup(t.Name); sym != nil {
			return g.elemType(sym.typ)
		}
	case ast.PropAccess:
		if sym := g.scope.lookup(t.Prop); sym != nil {
			return g.elemType(sym.typ)
		}
		if t.Prop == "weight" {
			return "int", nil
		}
	}
	return "", Errorf(ErrInternal, "cannot determine the type of update target %T", target)
}
