package kernelgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DemoGo/StarPlatWorkingBranch/ast"
	"github.com/DemoGo/StarPlatWorkingBranch/codegen"
)

func newHIP(t *testing.T) *Emitter {
	t.Helper()
	e, err := New(HIP, 256)
	require.NoError(t, err)
	return e
}

func TestNew_Bounds(t *testing.T) {
	_, err := New(CUDA, 0)
	assert.True(t, codegen.IsConfig(err))
	assert.Contains(t, err.Error(), "cuda: threads per block 0 outside [1, 1024]")

	_, err = New(HIP, MaxThreadsPerBlock+1)
	assert.True(t, codegen.IsConfig(err))

	e, err := New(HIP, MaxThreadsPerBlock)
	require.NoError(t, err)
	assert.Equal(t, MaxThreadsPerBlock, e.ThreadsPerBlock())
}

func TestOpAssign(t *testing.T) {
	tests := []struct {
		name    string
		target  string
		op      ast.BinaryOp
		operand string
		elem    string
		atomic  bool
		want    string
	}{
		{"plain add", "x", ast.OpAdd, "y", "int", false, "x += y;\n"},
		{"plain or", "x", ast.OpOr, "y", "bool", false, "x = x || y;\n"},
		{"atomic add element", "d_p[w]", ast.OpAdd, "v", "int", true, "atomicAdd(&d_p[w], v);\n"},
		{"atomic add shared", "*d_s", ast.OpAdd, "1", "float", true, "atomicAdd(d_s, 1);\n"},
		{"atomic add long", "*d_n", ast.OpAdd, "1L", "long long", true, "atomicAdd((unsigned long long*) d_n, (unsigned long long) (1L));\n"},
		{"atomic sub int", "*d_n", ast.OpSub, "2", "int", true, "atomicSub(d_n, 2);\n"},
		{"atomic sub double", "d_p[w]", ast.OpSub, "x", "double", true, "atomicAdd(&d_p[w], -(x));\n"},
		{"atomic and", "d_f[w]", ast.OpAnd, "c", "bool", true, "if (!(c)) {\n    d_f[w] = false;\n}\n"},
		{"atomic or", "*d_f", ast.OpOr, "c", "bool", true, "if (c) {\n    *d_f = true;\n}\n"},
	}
	e := newHIP(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := codegen.NewStream()
			require.NoError(t, e.OpAssign(s, tt.target, tt.op, tt.operand, tt.elem, tt.atomic))
			assert.Equal(t, tt.want, s.String())
		})
	}
}

func TestOpAssign_Unsupported(t *testing.T) {
	e := newHIP(t)
	s := codegen.NewStream()
	err := e.OpAssign(s, "*d_p", ast.OpMul, "2", "int", true)
	assert.True(t, codegen.IsKind(err, codegen.ErrUnsupportedStatement))

	err = e.OpAssign(s, "x", ast.OpLt, "2", "int", false)
	assert.True(t, codegen.IsKind(err, codegen.ErrUnsupportedStatement))
	assert.Empty(t, s.String())
}

func TestAtomicMin(t *testing.T) {
	e := newHIP(t)
	s := codegen.NewStream()
	e.AtomicMin(s, "d_dist[nbr]", "dist_new", "int", false)
	e.AtomicMin(s, "*d_best", "best_new", "int", true)
	e.AtomicMin(s, "d_x[nbr]", "x_new", "double", false)
	assert.Equal(t,
		"atomicMin(&d_dist[nbr], dist_new);\n"+
			"atomicMax(d_best, best_new);\n"+
			"graphc_atomic_min(&d_x[nbr], x_new);\n",
		s.String())
}

func TestClaimCAS(t *testing.T) {
	s := codegen.NewStream()
	newHIP(t).ClaimCAS(s, "old", "d_level[w]", "-1", "phase + 1")
	assert.Equal(t, "int old = atomicCAS(&d_level[w], -1, phase + 1);\n", s.String())
}

func TestParallelRegion(t *testing.T) {
	e, err := New(CUDA, 128)
	require.NoError(t, err)

	r := &codegen.Region{
		Name:    "F_kernel0",
		Index:   "e",
		Count:   "E",
		Buffers: []codegen.Buffer{{Name: "w", Elem: "int", Count: "E"}},
		Scalars: []codegen.Scalar{{Name: "k", Type: "int"}},
		Shared:  []codegen.Scalar{{Name: "total", Type: "long long"}},
	}
	host := codegen.NewStream()
	out := codegen.NewOutput()
	body := e.BeginParallel(host, r)
	body.Line("d_w[e] = k;")
	e.EndParallel(host, out, r, body)

	assert.Equal(t, "\n__global__ void F_kernel0(int V, int E, int* d_w, int k, long long* d_total)\n"+
		"{\n"+
		"    int e = blockIdx.x * blockDim.x + threadIdx.x;\n"+
		"    if (e >= E) {\n"+
		"        return;\n"+
		"    }\n"+
		"    d_w[e] = k;\n"+
		"}\n", out.Implementation.String())
	assert.Equal(t,
		"cudaMemcpy(d_total, &total, sizeof(long long), cudaMemcpyHostToDevice);\n"+
			"F_kernel0<<<(E + threadsPerBlock - 1) / threadsPerBlock, threadsPerBlock>>>(V, E, d_w, k, d_total);\n"+
			"cudaDeviceSynchronize();\n"+
			"cudaMemcpy(&total, d_total, sizeof(long long), cudaMemcpyDeviceToHost);\n",
		host.String())
}

func TestSerialRegion(t *testing.T) {
	e := newHIP(t)
	r := &codegen.Region{Name: "F_serial3", Serial: true}
	host := codegen.NewStream()
	out := codegen.NewOutput()
	body := e.BeginParallel(host, r)
	e.EndParallel(host, out, r, body)

	assert.NotContains(t, out.Implementation.String(), "threadIdx")
	assert.Equal(t, "hipLaunchKernelGGL(F_serial3, dim3(1), dim3(1), 0, 0, V, E);\nhipDeviceSynchronize();\n", host.String())
}

func TestWrapper(t *testing.T) {
	e := newHIP(t)
	w := &codegen.Wrapper{
		Function: "F",
		Graph:    "g",
		CSR:      []codegen.CSRField{{Buffer: codegen.Buffer{Name: "meta", Elem: "int", Count: "V + 1"}, Source: "g.indexofNodes"}},
		Params:   []codegen.Buffer{{Name: "dist", Elem: "int", Count: "V"}},
		Shared:   []codegen.Scalar{{Name: "done", Type: "bool"}},
	}
	s := codegen.NewStream()
	e.BeginWrapper(s, w)
	e.EndWrapper(s, w)

	assert.Equal(t, `int V = g.num_nodes();
int E = g.num_edges();

int* h_meta = (int*) malloc(sizeof(int) * (V + 1));
for (int i = 0; i < V + 1; i++) {
    h_meta[i] = g.indexofNodes[i];
}
int* d_meta;
hipMalloc(&d_meta, sizeof(int) * (V + 1));
hipMemcpy(d_meta, h_meta, sizeof(int) * (V + 1), hipMemcpyHostToDevice);
int* d_dist;
hipMalloc(&d_dist, sizeof(int) * (V));
hipMemcpy(d_dist, dist, sizeof(int) * (V), hipMemcpyHostToDevice);
bool* d_done;
hipMalloc(&d_done, sizeof(bool));


hipMemcpy(dist, d_dist, sizeof(int) * (V), hipMemcpyDeviceToHost);
hipFree(d_meta);
free(h_meta);
hipFree(d_dist);
hipFree(d_done);
`, s.String())
}

func TestPreamble(t *testing.T) {
	out := codegen.NewOutput()
	e := newHIP(t)
	e.Preamble(out, "bc")
	e.Trailer(out)

	iface := out.Interface.String()
	assert.Contains(t, iface, "#ifndef GENHIP_BC_H\n#define GENHIP_BC_H\n")
	assert.Contains(t, iface, "#include <hip/hip_runtime.h>\n")
	assert.True(t, len(iface) > 0 && iface[len(iface)-len("#endif\n"):] == "#endif\n")

	impl := out.Implementation.String()
	for _, helper := range []string{
		"__global__ void initIndex(int n, T* d_array, int index, T value)",
		"__device__ float graphc_atomic_min(float* address, float value)",
		"__device__ double graphc_atomic_max(double* address, double value)",
		"__device__ bool graphc_is_an_edge(int* meta, int* data, int u, int w)",
	} {
		assert.Contains(t, impl, helper)
	}
}
