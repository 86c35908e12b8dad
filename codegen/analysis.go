// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package codegen

import "github.com/DemoGo/StarPlatWorkingBranch/ast"

// sharedScalars returns the host scalars that some parallel region of body
// writes. Those need a device mirror for kernel backends.
//
// A parallel region is a domain ForAll at host level or the body of a BFS
// phase. Fixed point flags are always shared because reduction commits
// reset them from inside regions.
func sharedScalars(body ast.Block) map[string]bool {
	shared := make(map[string]bool)
	var visit func(s ast.Statement, inRegion bool)
	visit = func(s ast.Statement, inRegion bool) {
		if !inRegion && needsSerialRegion(s) {
			body := ast.Block{s}
			markWrites(body, shared, declaredNames(body))
			return
		}
		switch k := s.(type) {
		case ast.Declaration:
			if !inRegion && k.Init != nil && exprTouchesDevice(k.Init) {
				shared[k.Name] = true
			}
		case ast.Block:
			for _, c := range k {
				visit(c, inRegion)
			}
		case ast.ForAll:
			region := inRegion || isDomain(k.Source)
			if region && !inRegion {
				markWrites(k.Body, shared, declaredNames(k.Body))
				return
			}
			visit(k.Body, region)
		case ast.ForwardBFS:
			markWrites(k.Body, shared, declaredNames(k.Body))
		case ast.ReverseBFS:
			markWrites(k.Body, shared, declaredNames(k.Body))
		case ast.FixedPoint:
			shared[k.Flag] = true
			visit(k.Body, inRegion)
		case ast.IfStmt:
			visit(k.Then, inRegion)
			visit(k.Else, inRegion)
		case ast.While:
			visit(k.Body, inRegion)
		}
	}
	visit(body, false)
	return shared
}

func isDomain(src ast.IterSource) bool {
	switch src.(type) {
	case ast.DomainNodes, ast.DomainEdges:
		return true
	}
	return false
}

// markWrites records every identifier assigned inside body that is not
// declared inside it.
func markWrites(body ast.Block, into map[string]bool, locals map[string]bool) {
	for name := range writtenNames(body) {
		if !locals[name] {
			into[name] = true
		}
	}
}

// writtenNames returns the identifiers assigned, reduced or incremented in body.
func writtenNames(body ast.Block) map[string]bool {
	written := make(map[string]bool)
	ast.Inspect(body, func(node any) bool {
		switch k := node.(type) {
		case ast.Assignment:
			if id, ok := k.Target.(ast.Identifier); ok {
				written[id.Name] = true
			}
		case ast.ReductionCall:
			for _, t := range k.Targets {
				if id, ok := t.(ast.Identifier); ok {
					written[id.Name] = true
				}
			}
		case ast.Unary:
			if k.Op == ast.OpPostInc || k.Op == ast.OpPostDec {
				if id, ok := k.X.(ast.Identifier); ok {
					written[id.Name] = true
				}
			}
		}
		return true
	})
	return written
}

// declaredNames returns every name body introduces: declarations and loop
// iterators.
func declaredNames(body ast.Block) map[string]bool {
	names := make(map[string]bool)
	ast.Inspect(body, func(node any) bool {
		switch k := node.(type) {
		case ast.Declaration:
			names[k.Name] = true
		case ast.ForAll:
			names[k.Iterator] = true
		case ast.ForwardBFS:
			names[k.Iterator] = true
		case ast.ReverseBFS:
			names[k.Iterator] = true
		}
		return true
	})
	return names
}

// deviceCalls are the graph intrinsics that read CSR arrays.
var deviceCalls = map[string]bool{
	"count_outNbrs": true,
	"count_inNbrs":  true,
	"is_an_edge":    true,
	"get_edge":      true,
}

// touchesDevice reports whether s reads or writes graph data that only
// parallel code can reach: property elements, edge weights and adjacency.
func touchesDevice(s ast.Statement) bool {
	found := false
	ast.Inspect(s, func(node any) bool {
		if found {
			return false
		}
		switch k := node.(type) {
		case ast.PropAccess:
			found = true
		case ast.Call:
			found = deviceCalls[k.Method]
		case ast.ForAll:
			switch k.Source.(type) {
			case ast.Neighbors, ast.InNeighbors:
				found = true
			}
		}
		return !found
	})
	return found
}

// exprTouchesDevice is touchesDevice for an expression.
func exprTouchesDevice(e ast.Expression) bool {
	found := false
	ast.InspectExpr(e, func(node any) bool {
		switch k := node.(type) {
		case ast.PropAccess:
			found = true
		case ast.Call:
			found = found || deviceCalls[k.Method]
		}
		return !found
	})
	return found
}

// formsRegion reports whether s contains a construct that opens its own
// parallel region.
func formsRegion(s ast.Statement) bool {
	found := false
	ast.Inspect(s, func(node any) bool {
		switch k := node.(type) {
		case ast.ForAll:
			found = found || isDomain(k.Source)
		case ast.ForwardBFS, ast.ReverseBFS, ast.FixedPoint:
			found = true
		case ast.ProcCall:
			found = found || isAttach(k.Method)
		}
		return !found
	})
	return found
}

func isAttach(method string) bool {
	return method == "attachNodeProperty" || method == "attachEdgeProperty"
}

// needsSerialRegion reports whether a host-level statement must run as a
// single work item because it touches device data without forming a region
// of its own.
func needsSerialRegion(s ast.Statement) bool {
	switch k := s.(type) {
	case ast.Assignment:
		return exprTouchesDevice(k.Value)
	case ast.ForAll:
		return !isDomain(k.Source) && touchesDevice(k) && !formsRegion(k)
	case ast.IfStmt, ast.While, ast.ExprStmt, ast.ReductionCall:
		return touchesDevice(s) && !formsRegion(s)
	}
	return false
}
