// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package codegen

import "github.com/DemoGo/StarPlatWorkingBranch/ast"

// CTypeName maps a DSL type to C++ host syntax. Every backend emits C++, so
// emitters delegate to it from TypeName.
func CTypeName(t ast.Type) (string, error) {
	switch t.Kind {
	case ast.KindPrimitive:
		return scalarName(t.Scalar)
	case ast.KindNodeProp, ast.KindEdgeProp:
		name, err := scalarName(t.Scalar)
		if err != nil {
			return "", err
		}
		return name + "*", nil
	case ast.KindNode, ast.KindEdge:
		return "int", nil
	case ast.KindGraph:
		return "graph&", nil
	case ast.KindCollection:
		return "std::set<int>&", nil
	default:
		return "", Errorf(ErrUnsupportedType, "unsupported type kind: %v", t.Kind)
	}
}

func scalarName(s ast.Scalar) (string, error) {
	switch s {
	case ast.ScalarInt:
		return "int", nil
	case ast.ScalarBool:
		return "bool", nil
	case ast.ScalarLong:
		return "long long", nil
	case ast.ScalarFloat:
		return "float", nil
	case ast.ScalarDouble:
		return "double", nil
	default:
		return "", Errorf(ErrUnsupportedType, "unsupported scalar type: %v", s)
	}
}

// propCount returns the element count of a property buffer.
func propCount(t ast.Type) string {
	if t.Kind == ast.KindEdgeProp {
		return "E"
	}
	return "V"
}
