// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package programs

import "github.com/DemoGo/StarPlatWorkingBranch/ast"

// Small constructors keep the program bodies readable.

func id(name string) ast.Identifier { return ast.Identifier{Name: name} }

func prop(owner, name string) ast.PropAccess { return ast.PropAccess{Owner: owner, Prop: name} }

func lit(v ast.LiteralValue) ast.Literal { return ast.Literal{Value: v} }

func bin(op ast.BinaryOp, l, r ast.Expression) ast.Binary {
	return ast.Binary{Op: op, Left: l, Right: r}
}

func paren(op ast.BinaryOp, l, r ast.Expression) ast.Binary {
	return ast.Binary{Op: op, Left: l, Right: r, Parens: true}
}

func decl(name string, t ast.Type, init ast.Expression) ast.Declaration {
	return ast.Declaration{Name: name, Type: t, Init: init}
}

func assign(target, value ast.Expression) ast.Assignment {
	return ast.Assignment{Target: target, Value: value}
}

func attach(graph string, args ...ast.Arg) ast.ProcCall {
	return ast.ProcCall{Receiver: graph, Method: "attachNodeProperty", Args: args}
}

func arg(name string, value ast.Expression) ast.Arg { return ast.Arg{Name: name, Value: value} }

func param(name string, t ast.Type) ast.Param { return ast.Param{Name: name, Type: t} }
