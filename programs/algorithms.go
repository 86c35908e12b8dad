// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package programs

import "github.com/DemoGo/StarPlatWorkingBranch/ast"

// SSSP relaxes edges from the nodes changed in the previous round until no
// distance improves:
//
//	function Compute_SSSP(Graph g, propNode<int> dist, node src) {
//	    propNode<bool> modified;
//	    g.attachNodeProperty(dist = INF, modified = False);
//	    src.modified = True;
//	    src.dist = 0;
//	    bool finished = False;
//	    fixedPoint until (finished: !modified) {
//	        forall (v in g.nodes().filter(modified == True)) {
//	            forall (nbr in g.neighbors(v)) {
//	                edge e = g.get_edge(v, nbr);
//	                <nbr.dist, nbr.modified> = <Min(nbr.dist, v.dist + e.weight), True>;
//	            }
//	        }
//	    }
//	}
func SSSP() *ast.Program {
	relax := ast.Block{
		decl("e", ast.Edge(), ast.Call{Receiver: "g", Method: "get_edge", Args: []ast.Expression{id("v"), id("nbr")}}),
		ast.ReductionCall{
			Op:      ast.ReduceMin,
			Targets: []ast.Expression{prop("nbr", "dist"), prop("nbr", "modified")},
			Values: []ast.Expression{
				bin(ast.OpAdd, prop("v", "dist"), prop("e", "weight")),
				lit(ast.LiteralBool(true)),
			},
		},
	}
	body := ast.Block{
		decl("modified", ast.NodeProp(ast.ScalarBool), nil),
		attach("g",
			arg("dist", ast.Infinity{Positive: true, Type: ast.ScalarInt}),
			arg("modified", lit(ast.LiteralBool(false)))),
		assign(prop("src", "modified"), lit(ast.LiteralBool(true))),
		assign(prop("src", "dist"), lit(ast.LiteralInt(0))),
		decl("finished", ast.Primitive(ast.ScalarBool), lit(ast.LiteralBool(false))),
		ast.FixedPoint{Flag: "finished", Prop: "modified", Body: ast.Block{
			ast.ForAll{
				Iterator: "v",
				Source:   ast.DomainNodes{Graph: "g"},
				Filter:   bin(ast.OpEq, prop("v", "modified"), lit(ast.LiteralBool(true))),
				Body: ast.Block{
					ast.ForAll{Iterator: "nbr", Source: ast.Neighbors{Graph: "g", Of: "v"}, Body: relax},
				},
			},
		}},
	}
	return &ast.Program{Functions: []*ast.Function{{
		Name:   "Compute_SSSP",
		Params: []ast.Param{param("g", ast.Graph()), param("dist", ast.NodeProp(ast.ScalarInt)), param("src", ast.Node())},
		Body:   body,
		Usage:  ast.Usage{MetaUsed: true, DataUsed: true, WeightUsed: true},
	}}}
}

// CC propagates the smallest node id along edges until labels settle.
func CC() *ast.Program {
	body := ast.Block{
		decl("modified", ast.NodeProp(ast.ScalarBool), nil),
		attach("g", arg("modified", lit(ast.LiteralBool(true)))),
		ast.ForAll{Iterator: "v", Source: ast.DomainNodes{Graph: "g"}, Body: ast.Block{
			assign(prop("v", "label"), id("v")),
		}},
		decl("finished", ast.Primitive(ast.ScalarBool), lit(ast.LiteralBool(false))),
		ast.FixedPoint{Flag: "finished", Prop: "modified", Body: ast.Block{
			ast.ForAll{
				Iterator: "v",
				Source:   ast.DomainNodes{Graph: "g"},
				Filter:   bin(ast.OpEq, prop("v", "modified"), lit(ast.LiteralBool(true))),
				Body: ast.Block{
					ast.ForAll{Iterator: "nbr", Source: ast.Neighbors{Graph: "g", Of: "v"}, Body: ast.Block{
						ast.ReductionCall{
							Op:      ast.ReduceMin,
							Targets: []ast.Expression{prop("nbr", "label"), prop("nbr", "modified")},
							Values:  []ast.Expression{prop("v", "label"), lit(ast.LiteralBool(true))},
						},
					}},
				},
			},
		}},
	}
	return &ast.Program{Functions: []*ast.Function{{
		Name:   "Compute_CC",
		Params: []ast.Param{param("g", ast.Graph()), param("label", ast.NodeProp(ast.ScalarInt))},
		Body:   body,
		Usage:  ast.Usage{MetaUsed: true, DataUsed: true},
	}}}
}

// BC accumulates dependencies with one forward and one reverse BFS per
// source.
func BC() *ast.Program {
	forward := ast.Block{
		ast.ForAll{Iterator: "w", Source: ast.Neighbors{Graph: "g", Of: "v"}, Body: ast.Block{
			ast.ReductionCall{
				Op:      ast.ReduceSum,
				Targets: []ast.Expression{prop("w", "sigma")},
				Values:  []ast.Expression{prop("v", "sigma")},
			},
		}},
	}
	reverse := ast.Block{
		ast.ForAll{Iterator: "w", Source: ast.Neighbors{Graph: "g", Of: "v"}, Body: ast.Block{
			assign(prop("v", "delta"), bin(ast.OpAdd, prop("v", "delta"),
				bin(ast.OpMul,
					paren(ast.OpDiv, prop("v", "sigma"), prop("w", "sigma")),
					paren(ast.OpAdd, lit(ast.LiteralDouble(1)), prop("w", "delta"))))),
		}},
		assign(prop("v", "BC"), bin(ast.OpAdd, prop("v", "BC"), prop("v", "delta"))),
	}
	perSource := ast.Block{
		decl("sigma", ast.NodeProp(ast.ScalarDouble), nil),
		decl("delta", ast.NodeProp(ast.ScalarDouble), nil),
		attach("g", arg("delta", lit(ast.LiteralDouble(0))), arg("sigma", lit(ast.LiteralDouble(0)))),
		assign(prop("src", "sigma"), lit(ast.LiteralDouble(1))),
		ast.ForwardBFS{Graph: "g", Iterator: "v", Root: id("src"), Body: forward},
		ast.ReverseBFS{Iterator: "v", Filter: bin(ast.OpNe, id("v"), id("src")), Body: reverse},
	}
	body := ast.Block{
		attach("g", arg("BC", lit(ast.LiteralDouble(0)))),
		ast.ForAll{Iterator: "src", Source: ast.Collection{Name: "sourceSet"}, Body: perSource},
	}
	return &ast.Program{Functions: []*ast.Function{{
		Name: "Compute_BC",
		Params: []ast.Param{
			param("g", ast.Graph()),
			param("BC", ast.NodeProp(ast.ScalarDouble)),
			param("sourceSet", ast.NodeSet()),
		},
		Body:  body,
		Usage: ast.Usage{MetaUsed: true, DataUsed: true},
	}}}
}

// PageRank iterates over incoming edges until the total change drops below
// beta or maxIter rounds have run.
func PageRank() *ast.Program {
	perNode := ast.Block{
		decl("sum", ast.Primitive(ast.ScalarFloat), lit(ast.LiteralFloat(0))),
		ast.ForAll{Iterator: "nbr", Source: ast.InNeighbors{Graph: "g", Of: "v"}, Body: ast.Block{
			assign(id("sum"), bin(ast.OpAdd, id("sum"),
				bin(ast.OpDiv, prop("nbr", "pageRank"), ast.Call{Receiver: "g", Method: "count_outNbrs", Args: []ast.Expression{id("nbr")}}))),
		}},
		decl("val", ast.Primitive(ast.ScalarFloat), bin(ast.OpAdd,
			bin(ast.OpDiv, paren(ast.OpSub, lit(ast.LiteralFloat(1)), id("delta")), id("num_nodes")),
			bin(ast.OpMul, id("delta"), id("sum")))),
		ast.ReductionCall{
			Op:      ast.ReduceSum,
			Targets: []ast.Expression{id("diff")},
			Values:  []ast.Expression{bin(ast.OpSub, id("val"), prop("v", "pageRank"))},
		},
		assign(prop("v", "pageRank_nxt"), id("val")),
	}
	body := ast.Block{
		decl("num_nodes", ast.Primitive(ast.ScalarFloat), ast.Call{Receiver: "g", Method: "num_nodes"}),
		decl("pageRank_nxt", ast.NodeProp(ast.ScalarFloat), nil),
		attach("g", arg("pageRank", bin(ast.OpDiv, lit(ast.LiteralFloat(1)), id("num_nodes")))),
		decl("iterCount", ast.Primitive(ast.ScalarInt), lit(ast.LiteralInt(0))),
		decl("diff", ast.Primitive(ast.ScalarFloat), nil),
		ast.While{
			DoWhile: true,
			Cond: bin(ast.OpAnd,
				paren(ast.OpGt, id("diff"), id("beta")),
				paren(ast.OpLt, id("iterCount"), id("maxIter"))),
			Body: ast.Block{
				assign(id("diff"), lit(ast.LiteralFloat(0))),
				ast.ForAll{Iterator: "v", Source: ast.DomainNodes{Graph: "g"}, Body: perNode},
				assign(id("pageRank"), id("pageRank_nxt")),
				ast.ExprStmt{X: ast.Unary{Op: ast.OpPostInc, X: id("iterCount")}},
			},
		},
	}
	return &ast.Program{Functions: []*ast.Function{{
		Name: "Compute_PR",
		Params: []ast.Param{
			param("g", ast.Graph()),
			param("beta", ast.Primitive(ast.ScalarFloat)),
			param("delta", ast.Primitive(ast.ScalarFloat)),
			param("maxIter", ast.Primitive(ast.ScalarInt)),
			param("pageRank", ast.NodeProp(ast.ScalarFloat)),
		},
		Body:  body,
		Usage: ast.Usage{MetaUsed: true, RevMetaUsed: true, SrcUsed: true},
	}}}
}

// TC counts each triangle once, from its middle node.
func TC() *ast.Program {
	long := ast.Primitive(ast.ScalarLong)
	body := ast.Block{
		decl("triangle_count", long, lit(ast.LiteralLong(0))),
		ast.ForAll{Iterator: "v", Source: ast.DomainNodes{Graph: "g"}, Body: ast.Block{
			ast.ForAll{
				Iterator: "u",
				Source:   ast.Neighbors{Graph: "g", Of: "v"},
				Filter:   bin(ast.OpLt, id("u"), id("v")),
				Body: ast.Block{
					ast.ForAll{
						Iterator: "w",
						Source:   ast.Neighbors{Graph: "g", Of: "v"},
						Filter:   bin(ast.OpGt, id("w"), id("v")),
						Body: ast.Block{
							ast.IfStmt{
								Cond: ast.Call{Receiver: "g", Method: "is_an_edge", Args: []ast.Expression{id("u"), id("w")}},
								Then: ast.Block{ast.ReductionCall{
									Op:      ast.ReduceSum,
									Targets: []ast.Expression{id("triangle_count")},
									Values:  []ast.Expression{lit(ast.LiteralLong(1))},
								}},
							},
						},
					},
				},
			},
		}},
		ast.Return{Value: id("triangle_count")},
	}
	return &ast.Program{Functions: []*ast.Function{{
		Name:   "Compute_TC",
		Params: []ast.Param{param("g", ast.Graph())},
		Result: &long,
		Body:   body,
		Usage:  ast.Usage{MetaUsed: true, DataUsed: true},
	}}}
}
