// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/DemoGo/StarPlatWorkingBranch/ast"
)

// expr lowers an expression to target syntax. Names that live outside the
// current parallel region are recorded as region captures on the way.
func (g *Generator) expr(e ast.Expression) (string, error) {
	switch k := e.(type) {
	case ast.Literal:
		return literal(k.Value)
	case ast.Infinity:
		return infinity(k)
	case ast.Identifier:
		return g.identRef(k.Name)
	case ast.PropAccess:
		return g.propAccess(k)
	case ast.Binary:
		left, err := g.expr(k.Left)
		if err != nil {
			return "", err
		}
		right, err := g.expr(k.Right)
		if err != nil {
			return "", err
		}
		text := left + " " + k.Op.Token() + " " + right
		if k.Parens {
			text = "(" + text + ")"
		}
		return text, nil
	case ast.Unary:
		x, err := g.expr(k.X)
		if err != nil {
			return "", err
		}
		switch k.Op {
		case ast.OpNot:
			return "!" + x, nil
		case ast.OpPostInc:
			return x + "++", nil
		case ast.OpPostDec:
			return x + "--", nil
		}
		return "", Errorf(ErrUnsupportedExpression, "unsupported unary operator %d", k.Op)
	case ast.Call:
		return g.call(k)
	default:
		return "", Errorf(ErrUnsupportedExpression, "unsupported expression kind: %T", e)
	}
}

func literal(v ast.LiteralValue) (string, error) {
	switch v := v.(type) {
	case ast.LiteralInt:
		return strconv.FormatInt(int64(v), 10), nil
	case ast.LiteralLong:
		return strconv.FormatInt(int64(v), 10) + "L", nil
	case ast.LiteralFloat:
		return withPoint(strconv.FormatFloat(float64(v), 'f', -1, 32)) + "f", nil
	case ast.LiteralDouble:
		return withPoint(strconv.FormatFloat(float64(v), 'f', -1, 64)), nil
	case ast.LiteralBool:
		if v {
			return "true", nil
		}
		return "false", nil
	default:
		return "", Errorf(ErrUnsupportedExpression, "unsupported literal: %T", v)
	}
}

func withPoint(s string) string {
	if strings.ContainsAny(s, ".eE") {
		return s
	}
	return s + ".0"
}

func infinity(inf ast.Infinity) (string, error) {
	var prefix string
	switch inf.Type {
	case ast.ScalarInt:
		prefix = "INT"
	case ast.ScalarLong:
		prefix = "LLONG"
	case ast.ScalarFloat:
		prefix = "FLT"
	case ast.ScalarDouble:
		prefix = "DBL"
	default:
		return "", Errorf(ErrUnsupportedExpression, "no infinity for %s", inf.Type)
	}
	switch {
	case inf.Positive:
		return prefix + "_MAX", nil
	case inf.Type == ast.ScalarFloat || inf.Type == ast.ScalarDouble:
		// FLT_MIN and DBL_MIN are the smallest positive values.
		return "-" + prefix + "_MAX", nil
	default:
		return prefix + "_MIN", nil
	}
}

// identRef returns the text for a name. Inside a region, host scalars become
// captures and properties become buffer references.
func (g *Generator) identRef(name string) (string, error) {
	sym := g.scope.lookup(name)
	if sym == nil {
		return name, nil
	}
	if sym.typ.IsProperty() {
		return g.bufferRef(sym)
	}
	if g.region == nil || sym.depth >= g.regionDepth || !sym.typ.IsScalarLike() {
		return name, nil
	}
	typ, err := g.emitter.TypeName(sym.typ)
	if err != nil {
		return "", err
	}
	if g.shared[name] {
		g.useShared(Scalar{Name: name, Type: typ})
		return g.emitter.SharedRef(name), nil
	}
	g.useScalar(Scalar{Name: name, Type: typ})
	return name, nil
}

func (g *Generator) propAccess(p ast.PropAccess) (string, error) {
	owner, err := g.identRef(p.Owner)
	if err != nil {
		return "", err
	}
	sym := g.scope.lookup(p.Prop)
	if sym == nil && p.Prop == "weight" {
		ref, err := g.csrRef("weight")
		if err != nil {
			return "", err
		}
		return ref + "[" + owner + "]", nil
	}
	if sym == nil || !sym.typ.IsProperty() {
		return "", Errorf(ErrUnsupportedExpression, "%s is not a property", p.Prop)
	}
	if g.nextContext && g.doubleBuffered(sym) {
		if next := g.scope.lookup(sym.next); next != nil {
			sym = next
		}
	}
	ref, err := g.bufferRef(sym)
	if err != nil {
		return "", err
	}
	return ref + "[" + owner + "]", nil
}

func (g *Generator) call(c ast.Call) (string, error) {
	switch c.Method {
	case "num_nodes":
		return "V", nil
	case "num_edges":
		return "E", nil
	case "count_outNbrs", "count_inNbrs":
		if len(c.Args) != 1 {
			return "", Errorf(ErrUnsupportedExpression, "%s takes one argument", c.Method)
		}
		field := "meta"
		if c.Method == "count_inNbrs" {
			field = "rev_meta"
		}
		meta, err := g.csrRef(field)
		if err != nil {
			return "", err
		}
		v, err := g.expr(c.Args[0])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(%s[%s + 1] - %s[%s])", meta, v, meta, v), nil
	case "is_an_edge":
		if len(c.Args) != 2 {
			return "", Errorf(ErrUnsupportedExpression, "is_an_edge takes two arguments")
		}
		meta, err := g.csrRef("meta")
		if err != nil {
			return "", err
		}
		data, err := g.csrRef("data")
		if err != nil {
			return "", err
		}
		args, err := g.exprList(c.Args)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("graphc_is_an_edge(%s, %s, %s)", meta, data, strings.Join(args, ", ")), nil
	case "get_edge":
		if len(c.Args) != 2 {
			return "", Errorf(ErrUnsupportedExpression, "get_edge takes two arguments")
		}
		if nbr, ok := c.Args[1].(ast.Identifier); ok {
			if edge, ok := g.edgeVars[nbr.Name]; ok {
				return edge, nil
			}
		}
		return "", Errorf(ErrUnsupportedExpression, "get_edge outside the neighbor loop of its second argument")
	}

	args, err := g.exprList(c.Args)
	if err != nil {
		return "", err
	}
	if c.Receiver == "" {
		return fmt.Sprintf("%s(%s)", c.Method, strings.Join(args, ", ")), nil
	}
	return fmt.Sprintf("%s.%s(%s)", c.Receiver, c.Method, strings.Join(args, ", ")), nil
}

func (g *Generator) exprList(list []ast.Expression) ([]string, error) {
	out := make([]string, 0, len(list))
	for _, e := range list {
		text, err := g.expr(e)
		if err != nil {
			return nil, err
		}
		out = append(out, text)
	}
	return out, nil
}
