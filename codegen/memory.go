// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package codegen

import (
	"github.com/DemoGo/StarPlatWorkingBranch/ast"
)

// csrLayout lists the CSR fields in emission order with the graph member
// each one is read from.
var csrLayout = []struct {
	name   string
	count  string
	member string
	used   func(ast.Usage) bool
}{
	{"meta", "V + 1", "indexofNodes", func(u ast.Usage) bool { return u.MetaUsed }},
	{"data", "E", "edgeList", func(u ast.Usage) bool { return u.DataUsed }},
	{"src", "E", "srcList", func(u ast.Usage) bool { return u.SrcUsed }},
	{"weight", "E", "getEdgeLen()", func(u ast.Usage) bool { return u.WeightUsed }},
	{"rev_meta", "V + 1", "rev_indexofNodes", func(u ast.Usage) bool { return u.RevMetaUsed }},
}

// csrFields returns the CSR fields enabled by u. A field is present if and
// only if its usage flag is set.
func csrFields(u ast.Usage, graph string) []CSRField {
	var fields []CSRField
	for _, f := range csrLayout {
		if !f.used(u) {
			continue
		}
		fields = append(fields, CSRField{
			Buffer: Buffer{Name: f.name, Elem: "int", Count: f.count},
			Source: graph + "." + f.member,
		})
	}
	return fields
}

func (g *Generator) buildWrapper(fn *ast.Function, graph string) (*Wrapper, error) {
	w := &Wrapper{
		Function: fn.Name,
		Graph:    graph,
		CSR:      csrFields(fn.Usage, graph),
	}
	for _, p := range fn.Params {
		switch {
		case p.Type.IsProperty():
			elem, err := g.elemType(p.Type)
			if err != nil {
				return nil, err
			}
			w.Params = append(w.Params, Buffer{Name: p.Name, Elem: elem, Count: propCount(p.Type)})
		case p.Type.IsScalarLike() && g.shared[p.Name]:
			typ, err := g.emitter.TypeName(p.Type)
			if err != nil {
				return nil, err
			}
			w.Shared = append(w.Shared, Scalar{Name: p.Name, Type: typ})
		}
	}
	return w, nil
}

// bufferOf describes the buffer that backs a property symbol.
func (g *Generator) bufferOf(sym *symbol) (Buffer, error) {
	elem, err := g.elemType(sym.typ)
	if err != nil {
		return Buffer{}, err
	}
	return Buffer{Name: sym.name, Elem: elem, Count: propCount(sym.typ)}, nil
}

func (g *Generator) bufferRef(sym *symbol) (string, error) {
	if g.region == nil {
		return "", Errorf(ErrUnsupportedExpression, "property %s accessed outside a parallel region", sym.name)
	}
	b, err := g.bufferOf(sym)
	if err != nil {
		return "", err
	}
	g.useBuffer(b)
	return g.emitter.BufferRef(sym.name), nil
}

// csrRef returns the reference to a CSR field from parallel code. Using a
// field whose usage flag is off is a front end defect.
func (g *Generator) csrRef(name string) (string, error) {
	if g.wrapper == nil {
		return "", Errorf(ErrInternal, "graph field %s used in a function without a graph", name)
	}
	for _, f := range g.wrapper.CSR {
		if f.Name != name {
			continue
		}
		if g.region == nil {
			return "", Errorf(ErrUnsupportedExpression, "graph field %s accessed outside a parallel region", name)
		}
		g.useBuffer(f.Buffer)
		return g.emitter.BufferRef(name), nil
	}
	return "", Errorf(ErrInternal, "graph field %s used but its usage flag is not set", name)
}

func (g *Generator) useBuffer(b Buffer) {
	for _, have := range g.region.Buffers {
		if have.Name == b.Name {
			return
		}
	}
	g.region.Buffers = append(g.region.Buffers, b)
}

func (g *Generator) useScalar(sc Scalar) {
	for _, have := range g.region.Scalars {
		if have.Name == sc.Name {
			return
		}
	}
	g.region.Scalars = append(g.region.Scalars, sc)
}

func (g *Generator) useShared(sc Scalar) {
	if g.region.IsShared(sc.Name) {
		return
	}
	g.region.Shared = append(g.region.Shared, sc)
}

// declareProperty allocates a property declared in the body. Redeclared
// properties get a shadow-next buffer next to the primary one.
func (g *Generator) declareProperty(s *Stream, d ast.Declaration) error {
	sym := &symbol{name: d.Name, typ: d.Type}
	b, err := g.bufferOf(sym)
	if err != nil {
		return err
	}
	f := g.scope.top()
	g.emitter.AllocBuffer(s, b)
	g.scope.declare(sym)
	f.buffers = append(f.buffers, b)

	if d.Redeclared {
		next := &symbol{name: g.temp(d.Name + "_next"), typ: d.Type}
		nb, err := g.bufferOf(next)
		if err != nil {
			return err
		}
		g.emitter.AllocBuffer(s, nb)
		g.scope.declare(next)
		f.buffers = append(f.buffers, nb)
		sym.next = next.name
		sym.redeclared = true
	}

	if d.Init != nil {
		return g.fillProperties(s, []ast.Arg{{Name: d.Name, Value: d.Init}})
	}
	return nil
}

// release frees what a closing frame allocated, in reverse order.
func (g *Generator) release(s *Stream, f *frame) {
	for i := len(f.buffers) - 1; i >= 0; i-- {
		g.emitter.FreeBuffer(s, f.buffers[i])
	}
	for i := len(f.shared) - 1; i >= 0; i-- {
		g.emitter.ReleaseShared(s, f.shared[i])
	}
}

// closeFrame pops the top frame and releases it.
func (g *Generator) closeFrame(s *Stream) {
	g.release(s, g.scope.pop())
}
