package codegen_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DemoGo/StarPlatWorkingBranch/ast"
	"github.com/DemoGo/StarPlatWorkingBranch/codegen"
	"github.com/DemoGo/StarPlatWorkingBranch/programs"
)

// =============================================================================
// Constants
// =============================================================================

func TestLiteral(t *testing.T) {
	tests := []struct {
		value ast.LiteralValue
		want  string
	}{
		{ast.LiteralInt(42), "42"},
		{ast.LiteralInt(-3), "-3"},
		{ast.LiteralLong(7), "7L"},
		{ast.LiteralFloat(1), "1.0f"},
		{ast.LiteralFloat(0.1), "0.1f"},
		{ast.LiteralDouble(2), "2.0"},
		{ast.LiteralDouble(0.85), "0.85"},
		{ast.LiteralBool(true), "true"},
		{ast.LiteralBool(false), "false"},
	}
	for _, tt := range tests {
		got, err := codegen.Literal(tt.value)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%#v", tt.value)
	}
}

func TestInfinity(t *testing.T) {
	tests := []struct {
		typ      ast.Scalar
		positive bool
		want     string
	}{
		{ast.ScalarInt, true, "INT_MAX"},
		{ast.ScalarInt, false, "INT_MIN"},
		{ast.ScalarLong, true, "LLONG_MAX"},
		{ast.ScalarLong, false, "LLONG_MIN"},
		{ast.ScalarFloat, true, "FLT_MAX"},
		{ast.ScalarFloat, false, "-FLT_MAX"},
		{ast.ScalarDouble, true, "DBL_MAX"},
		{ast.ScalarDouble, false, "-DBL_MAX"},
	}
	for _, tt := range tests {
		got, err := codegen.Infinity(ast.Infinity{Positive: tt.positive, Type: tt.typ})
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := codegen.Infinity(ast.Infinity{Positive: true, Type: ast.ScalarBool})
	assert.True(t, codegen.IsKind(err, codegen.ErrUnsupportedExpression))
}

func TestBaseNameAndGuard(t *testing.T) {
	assert.Equal(t, "sssp", codegen.BaseName("out/dir/sssp.dsl"))
	assert.Equal(t, "sssp", codegen.BaseName("sssp"))
	assert.Equal(t, "GENHIP_MY_PROG_H", codegen.GuardToken("hip", "out/my-prog.cpp"))
	assert.Equal(t, "GENOPENACC_SSSP_H", codegen.GuardToken("openacc", "sssp"))
}

// =============================================================================
// Graph intrinsics
// =============================================================================

func TestIntrinsics(t *testing.T) {
	tc := generate(t, "hip", programs.TC())
	assert.Contains(t, tc, "if (graphc_is_an_edge(d_meta, d_data, u, w)) {")

	pr := generate(t, "hip", programs.PageRank())
	requireLinesInOrder(t, pr,
		"float num_nodes = V;",
		"for (int edge_nbr = d_rev_meta[v]; edge_nbr < d_rev_meta[v + 1]; edge_nbr++) {",
		"int nbr = d_src[edge_nbr];",
		"sum = sum + d_pageRank[nbr] / (d_meta[nbr + 1] - d_meta[nbr]);",
	)
	assert.Contains(t, pr, "} while ((diff > beta) && (iterCount < maxIter));")
}

func TestGetEdge_OutsideNeighborLoop(t *testing.T) {
	prog := graphFunc(ast.Usage{MetaUsed: true, DataUsed: true}, nil,
		nodes("v", ast.Declaration{
			Name: "e",
			Type: ast.Edge(),
			Init: ast.Call{Receiver: "g", Method: "get_edge", Args: []ast.Expression{id("v"), id("w")}},
		}),
	)
	err := generateErr(t, "hip", prog)
	assert.True(t, codegen.IsKind(err, codegen.ErrUnsupportedExpression), err)
}

func TestCapturedHostScalar(t *testing.T) {
	prog := graphFunc(ast.Usage{}, []ast.Param{
		param("p", ast.NodeProp(ast.ScalarFloat)),
		param("scale", ast.Primitive(ast.ScalarFloat)),
	},
		nodes("v", ast.Assignment{Target: prop("v", "p"), Value: ast.Binary{Op: ast.OpMul, Left: prop("v", "p"), Right: id("scale")}}),
	)
	hip := generate(t, "hip", prog)
	assert.Contains(t, hip, "__global__ void F_kernel0(int V, int E, float* d_p, float scale)")
	assert.Contains(t, hip, "d_p[v] = d_p[v] * scale;")
	assert.Contains(t, hip, "0, 0, V, E, d_p, scale);")
}

// =============================================================================
// Errors
// =============================================================================

func TestGenerate_Errors(t *testing.T) {
	result := ast.Primitive(ast.ScalarInt)
	hostRead := graphFunc(ast.Usage{}, []ast.Param{param("p", ast.NodeProp(ast.ScalarInt)), param("src", ast.Node())},
		ast.Return{Value: prop("src", "p")},
	)
	hostRead.Functions[0].Result = &result

	tests := []struct {
		name string
		prog *ast.Program
		kind codegen.ErrorKind
	}{
		{"host property read", hostRead, codegen.ErrUnsupportedExpression},
		{
			"usage flag off",
			graphFunc(ast.Usage{}, nil, nodes("v", neighbors("nbr", "v"))),
			codegen.ErrInternal,
		},
		{"nil expression", hostFunc(ast.ExprStmt{}), codegen.ErrUnsupportedExpression},
		{"nil statement", hostFunc(ast.Statement(nil)), codegen.ErrUnsupportedStatement},
		{"region without graph", hostFunc(nodes("v")), codegen.ErrInternal},
		{
			"unsupported type",
			graphFunc(ast.Usage{}, []ast.Param{param("x", ast.Type{Kind: ast.TypeKind(42)})}),
			codegen.ErrUnsupportedType,
		},
		{
			"property declared in region",
			graphFunc(ast.Usage{}, nil, nodes("v", ast.Declaration{Name: "q", Type: ast.NodeProp(ast.ScalarInt)})),
			codegen.ErrUnsupportedStatement,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, b := range backends {
				err := generateErr(t, b, tt.prog)
				assert.True(t, codegen.IsKind(err, tt.kind), "%s: %v", b, err)
				assert.True(t, codegen.IsInternal(err), "%s: %v", b, err)

				var cgErr *codegen.Error
				require.True(t, errors.As(err, &cgErr))
				assert.NotEmpty(t, cgErr.Function)
				assert.Contains(t, err.Error(), " in "+cgErr.Function+": ")
			}
		})
	}
}

func TestGenerate_EmptyBaseName(t *testing.T) {
	_, err := codegen.Generate(context.Background(), hostFunc(), newEmitter(t, "hip"), codegen.Options{})
	require.Error(t, err)
	assert.True(t, codegen.IsConfig(err))
	assert.False(t, codegen.IsInternal(err))
}

func TestGenerate_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := codegen.Generate(ctx, programs.SSSP(), newEmitter(t, "openmp"), codegen.Options{BaseName: "sssp"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGenerate_InterfaceArtifact(t *testing.T) {
	prog := graphFunc(ast.Usage{}, []ast.Param{param("p", ast.NodeProp(ast.ScalarInt))})
	for _, b := range backends {
		out, err := codegen.Generate(context.Background(), prog, newEmitter(t, b), codegen.Options{BaseName: "dir/test.dsl"})
		require.NoError(t, err)
		iface := out.Interface.String()
		guard := codegen.GuardToken(b, "test")
		requireLinesInOrder(t, iface,
			"#ifndef "+guard,
			"#define "+guard,
			`#include "graph.hpp"`,
			"void F(graph& g, int* p);",
			"#endif",
		)
		assert.Contains(t, out.Implementation.String(), `#include "test.h"`)
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	for _, entry := range programs.All() {
		for _, b := range backends {
			first := generate(t, b, entry.Build())
			second := generate(t, b, entry.Build())
			assert.Equal(t, first, second, "%s/%s", entry.Name, b)
		}
	}
}
