// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package codegen

import "github.com/DemoGo/StarPlatWorkingBranch/ast"

// regionSpec describes a parallel region before its body is lowered.
type regionSpec struct {
	purpose string

	// index is the work-item variable. Empty for serial regions.
	index  string
	count  string
	serial bool

	// iter is the node a work item owns. Property updates indexed by any
	// other node race with other work items.
	iter string
}

// lowerRegion lowers one parallel region. The body is lowered first so the
// captures it records are complete when the emitter opens the region.
func (g *Generator) lowerRegion(host *Stream, spec regionSpec, fill func(body *Stream) error) error {
	if g.wrapper == nil {
		return Errorf(ErrInternal, "parallel region in %s, which takes no graph", g.fn.Name)
	}
	if g.region != nil {
		return Errorf(ErrInternal, "parallel region %s opened inside %s", spec.purpose, g.region.Name)
	}

	r := &Region{
		Name:   g.nextRegionName(spec.purpose),
		Index:  spec.index,
		Count:  spec.count,
		Serial: spec.serial,
	}
	g.region = r
	g.regionIter = spec.iter
	g.regionDepth = g.scope.depth()
	g.scope.push()
	if spec.index != "" {
		g.scope.declare(&symbol{name: spec.index, typ: ast.Node()})
	}
	if !spec.serial && spec.count != "V" && spec.count != "E" {
		g.useScalar(Scalar{Name: spec.count, Type: "int"})
	}

	body := NewStream()
	err := fill(body)

	g.scope.pop()
	g.region = nil
	g.regionIter = ""
	if err != nil {
		return err
	}

	g.logger.Debug("parallel region",
		"region", r.Name,
		"count", r.Count,
		"buffers", len(r.Buffers),
		"scalars", len(r.Scalars),
		"shared", len(r.Shared))

	out := g.emitter.BeginParallel(host, r)
	out.AppendIndented(body)
	g.emitter.EndParallel(host, g.out, r, out)
	return nil
}

// blockFill returns a region body that lowers block.
func (g *Generator) blockFill(block ast.Block) func(*Stream) error {
	return func(body *Stream) error {
		return g.lowerStatements(body, block)
	}
}

// lowerSerial runs one host statement as a single work item.
func (g *Generator) lowerSerial(host *Stream, st ast.Statement) error {
	return g.lowerRegion(host, regionSpec{purpose: "serial", serial: true}, g.blockFill(ast.Block{st}))
}

// fillProperties lowers a whole-property initialization: one region per
// element count, each assigning every listed property at index idx.
func (g *Generator) fillProperties(host *Stream, args []ast.Arg) error {
	if g.region != nil {
		return Errorf(ErrUnsupportedStatement, "property initialization inside a parallel region")
	}
	// Both buffers of a redeclared property are filled directly.
	prevFrames := g.fixedPointFrames
	g.fixedPointFrames = 0
	defer func() { g.fixedPointFrames = prevFrames }()

	const idx = "idx"
	var order []string
	bodies := make(map[string]ast.Block)
	for _, a := range args {
		sym := g.scope.lookup(a.Name)
		if sym == nil || !sym.typ.IsProperty() {
			return Errorf(ErrInternal, "%s is not a property", a.Name)
		}
		sym.init = a.Value
		count := propCount(sym.typ)
		if _, ok := bodies[count]; !ok {
			order = append(order, count)
		}
		bodies[count] = append(bodies[count], ast.Assignment{
			Target: ast.PropAccess{Owner: idx, Prop: a.Name},
			Value:  a.Value,
		})
		if sym.redeclared {
			bodies[count] = append(bodies[count], ast.Assignment{
				Target: ast.PropAccess{Owner: idx, Prop: sym.next},
				Value:  a.Value,
			})
		}
	}
	for _, count := range order {
		spec := regionSpec{purpose: "init", index: idx, count: count, iter: idx}
		if err := g.lowerRegion(host, spec, g.blockFill(bodies[count])); err != nil {
			return err
		}
	}
	return nil
}
