package codegen_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DemoGo/StarPlatWorkingBranch/ast"
	"github.com/DemoGo/StarPlatWorkingBranch/codegen"
	"github.com/DemoGo/StarPlatWorkingBranch/programs"
)

func TestForwardBFS_HostFrame(t *testing.T) {
	impl := generate(t, "hip", programs.BC())
	requireLinesInOrder(t, impl,
		"for (auto it = sourceSet.begin(); it != sourceSet.end(); ++it) {",
		"int src = *it;",
		"int* d_bfs_dist;",
		"int* d_bfs_scratch;",
		"hipMalloc(&d_bfs_scratch, sizeof(int) * (E));",
		"std::vector<int> bfs_levels;",
		"int bfs_phase = 0;",
		"int bfs_start = 0;",
		"int bfs_next = 0;",
		"int bfs_count = 1;",
		"int* d_bfs_next;",
		"hipLaunchKernelGGL(initIndex<int>, dim3(1), dim3(1), 0, 0, V, d_bfs_dist, src, (int) 0);",
		"hipLaunchKernelGGL(initIndex<int>, dim3(1), dim3(1), 0, 0, V, d_bfs_nodes, 0, (int) src);",
		"bfs_levels.push_back(0);",
		"while (bfs_count > 0) {",
		"bfs_levels.push_back(bfs_start + bfs_count);",
		"bfs_start += bfs_count;",
		"bfs_count = bfs_next;",
		"bfs_phase++;",
		"}",
	)
}

func TestForwardBFS_ExpandClaimsOnce(t *testing.T) {
	impl := generate(t, "hip", programs.BC())
	requireLinesInOrder(t, impl,
		"int bfs_v = d_bfs_nodes[bfs_start + bfs_i];",
		"int bfs_local = 0;",
		"for (int bfs_edge = d_meta[bfs_v]; bfs_edge < d_meta[bfs_v + 1]; bfs_edge++) {",
		"int bfs_w = d_data[bfs_edge];",
		"if (d_bfs_dist[bfs_w] == -1) {",
		"int bfs_old = atomicCAS(&d_bfs_dist[bfs_w], -1, bfs_phase + 1);",
		"if (bfs_old == -1) {",
		"d_bfs_scratch[d_meta[bfs_v] + bfs_local] = bfs_w;",
		"bfs_local++;",
		"}",
		"}",
		"}",
		"d_bfs_found[bfs_i] = bfs_local;",
	)
	assert.Contains(t, impl, "dim3((bfs_count + threadsPerBlock - 1) / threadsPerBlock), dim3(threadsPerBlock)")
}

func TestForwardBFS_SerialConcat(t *testing.T) {
	impl := generate(t, "hip", programs.BC())
	requireLinesInOrder(t, impl,
		"int bfs_cursor = 0;",
		"for (int bfs_j = 0; bfs_j < bfs_count; bfs_j++) {",
		"int bfs_v = d_bfs_nodes[bfs_start + bfs_j];",
		"for (int bfs_k = 0; bfs_k < d_bfs_found[bfs_j]; bfs_k++) {",
		"d_bfs_nodes[bfs_start + bfs_count + bfs_cursor] = d_bfs_scratch[d_meta[bfs_v] + bfs_k];",
		"bfs_cursor++;",
		"}",
		"}",
		"*d_bfs_next = bfs_cursor;",
	)
	requireLinesInOrder(t, impl,
		"hipMemcpy(d_bfs_next, &bfs_next, sizeof(int), hipMemcpyHostToDevice);",
		"hipMemcpy(&bfs_next, d_bfs_next, sizeof(int), hipMemcpyDeviceToHost);",
		"bfs_levels.push_back(bfs_start + bfs_count);",
	)
}

func TestBFSPhase_GuardsChildren(t *testing.T) {
	impl := generate(t, "hip", programs.BC())
	requireLinesInOrder(t, impl,
		"int v = d_bfs_nodes[bfs_start + bfs_i];",
		"for (int edge_w = d_meta[v]; edge_w < d_meta[v + 1]; edge_w++) {",
		"int w = d_data[edge_w];",
		"if (d_bfs_dist[w] == d_bfs_dist[v] + 1) {",
		"atomicAdd(&d_sigma[w], d_sigma[v]);",
	)
}

func TestReverseBFS(t *testing.T) {
	impl := generate(t, "hip", programs.BC())
	requireLinesInOrder(t, impl,
		"while (bfs_phase > 0) {",
		"bfs_phase--;",
		"bfs_start = bfs_levels[bfs_phase];",
		"bfs_count = bfs_levels[bfs_phase + 1] - bfs_start;",
		"}",
	)
	requireLinesInOrder(t, impl,
		"int v = d_bfs_nodes[bfs_start + bfs_i];",
		"if (v != src) {",
		"if (d_bfs_dist[w] == d_bfs_dist[v] + 1) {",
		"d_delta[v] = d_delta[v] + (d_sigma[v] / d_sigma[w]) * (1.0 + d_delta[w]);",
		"}",
		"}",
		"d_BC[v] = d_BC[v] + d_delta[v];",
	)
}

func TestBFS_BuffersReleasedPerSource(t *testing.T) {
	impl := generate(t, "hip", programs.BC())
	requireLinesInOrder(t, impl,
		"hipFree(d_bfs_scratch);",
		"hipFree(d_bfs_found);",
		"hipFree(d_bfs_nodes);",
		"hipFree(d_bfs_dist);",
		"hipFree(d_delta);",
		"hipFree(d_sigma);",
		"hipFree(d_bfs_next);",
		"}",
		"hipMemcpy(BC, d_BC, sizeof(double) * (V), hipMemcpyDeviceToHost);",
	)
}

func TestBFS_Directive(t *testing.T) {
	omp := generate(t, "openmp", programs.BC())
	requireLinesInOrder(t, omp,
		"for (int bfs_i = 0; bfs_i < bfs_count; bfs_i++) {",
		"int bfs_old;",
		"#pragma omp atomic compare capture",
		"{",
		"bfs_old = bfs_dist[bfs_w];",
		"if (bfs_dist[bfs_w] == -1) {",
		"bfs_dist[bfs_w] = bfs_phase + 1;",
		"}",
		"}",
		"#pragma omp target map(tofrom: bfs_next)",
		"{",
		"bfs_next = bfs_cursor;",
	)

	acc := generate(t, "openacc", programs.BC())
	requireLinesInOrder(t, acc,
		"int bfs_old;",
		"#pragma acc atomic capture",
		"{",
		"bfs_old = bfs_dist[bfs_w];",
		"bfs_dist[bfs_w] = bfs_phase + 1;",
		"}",
		"#pragma acc serial copy(bfs_next)",
	)
}

func TestBFS_TwoTraversalsGetDistinctNames(t *testing.T) {
	root := id("src")
	prog := graphFunc(ast.Usage{MetaUsed: true, DataUsed: true}, []ast.Param{param("src", ast.Node())},
		ast.ForwardBFS{Graph: "g", Iterator: "v", Root: root},
		ast.ForwardBFS{Graph: "g", Iterator: "u", Root: root},
		ast.ReverseBFS{Iterator: "u"},
	)
	impl := generate(t, "hip", prog)
	requireLinesInOrder(t, impl,
		"std::vector<int> bfs_levels;",
		"int* d_bfs_1_dist;",
		"std::vector<int> bfs_1_levels;",
		"while (bfs_1_phase > 0) {",
		"bfs_1_start = bfs_1_levels[bfs_1_phase];",
	)
	assert.NotContains(t, impl, "while (bfs_phase > 0) {")
}

func TestBFS_Errors(t *testing.T) {
	t.Run("reverse without forward", func(t *testing.T) {
		prog := graphFunc(ast.Usage{MetaUsed: true, DataUsed: true}, nil, ast.ReverseBFS{Iterator: "v"})
		err := generateErr(t, "hip", prog)
		var cgErr *codegen.Error
		require.True(t, errors.As(err, &cgErr))
		assert.Equal(t, codegen.ErrInternal, cgErr.Kind)
		assert.Equal(t, "F", cgErr.Function)
	})

	t.Run("inside a parallel region", func(t *testing.T) {
		prog := graphFunc(ast.Usage{MetaUsed: true, DataUsed: true}, nil,
			nodes("v", ast.ForwardBFS{Graph: "g", Iterator: "u", Root: id("v")}),
		)
		err := generateErr(t, "openmp", prog)
		assert.True(t, codegen.IsKind(err, codegen.ErrUnsupportedStatement), err)
	})

	t.Run("function without a graph", func(t *testing.T) {
		prog := hostFunc(ast.ForwardBFS{Graph: "g", Iterator: "u", Root: id("n")})
		err := generateErr(t, "cuda", prog)
		assert.True(t, codegen.IsKind(err, codegen.ErrInternal), err)
	})

	t.Run("adjacency not enabled", func(t *testing.T) {
		prog := graphFunc(ast.Usage{}, []ast.Param{param("src", ast.Node())},
			ast.ForwardBFS{Graph: "g", Iterator: "v", Root: id("src")},
		)
		err := generateErr(t, "hip", prog)
		assert.True(t, codegen.IsKind(err, codegen.ErrInternal), err)
	})
}
