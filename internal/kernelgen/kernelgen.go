// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package kernelgen implements the kernel execution model shared by the HIP
// and CUDA backends. Every parallel region becomes a __global__ kernel and a
// host-side launch; graph arrays are mirrored in device memory.
package kernelgen

import (
	"fmt"
	"strings"

	"github.com/DemoGo/StarPlatWorkingBranch/ast"
	"github.com/DemoGo/StarPlatWorkingBranch/codegen"
)

// MaxThreadsPerBlock is the largest work-group size any supported device
// accepts.
const MaxThreadsPerBlock = 1024

// Dialect holds the runtime spelling of one kernel backend.
type Dialect struct {
	// Name is the backend identifier.
	Name string

	// Extension is the implementation artifact extension.
	Extension string

	// Header is the runtime include.
	Header string

	// Runtime prefixes the runtime API ("hip" gives hipMalloc, hipMemcpy...).
	Runtime string

	// Chevrons selects the name<<<grid, block>>>(args) launch syntax instead
	// of a launch macro.
	Chevrons bool
}

// Runtime dialects.
var (
	HIP = Dialect{
		Name:      "hip",
		Extension: "cpp",
		Header:    "hip/hip_runtime.h",
		Runtime:   "hip",
	}
	CUDA = Dialect{
		Name:      "cuda",
		Extension: "cu",
		Header:    "cuda.h",
		Runtime:   "cuda",
		Chevrons:  true,
	}
)

// Emitter implements codegen.Emitter for a kernel dialect.
type Emitter struct {
	dialect         Dialect
	threadsPerBlock int
}

// New returns an emitter for d. threadsPerBlock must lie in
// [1, MaxThreadsPerBlock].
func New(d Dialect, threadsPerBlock int) (*Emitter, error) {
	if threadsPerBlock < 1 || threadsPerBlock > MaxThreadsPerBlock {
		return nil, codegen.Errorf(codegen.ErrInvalidConfig,
			"%s: threads per block %d outside [1, %d]", d.Name, threadsPerBlock, MaxThreadsPerBlock)
	}
	return &Emitter{dialect: d, threadsPerBlock: threadsPerBlock}, nil
}

// ThreadsPerBlock returns the configured work-group size.
func (e *Emitter) ThreadsPerBlock() int { return e.threadsPerBlock }

// Name returns the backend identifier.
func (e *Emitter) Name() string { return e.dialect.Name }

// Model returns codegen.ModelKernel.
func (e *Emitter) Model() codegen.ExecutionModel { return codegen.ModelKernel }

// Extension returns the implementation artifact extension.
func (e *Emitter) Extension() string { return e.dialect.Extension }

// TypeName maps a DSL type to C++ syntax.
func (e *Emitter) TypeName(t ast.Type) (string, error) { return codegen.CTypeName(t) }

// BufferRef returns the device pointer of a buffer.
func (e *Emitter) BufferRef(name string) string { return "d_" + name }

// SharedRef dereferences the device mirror of a host scalar.
func (e *Emitter) SharedRef(name string) string { return "*d_" + name }

// Trailer closes the include guard.
func (e *Emitter) Trailer(out *codegen.Output) { out.Interface.Line("#endif") }

func (e *Emitter) rt(fn string) string { return e.dialect.Runtime + fn }

// Preamble writes the include guard and the device helpers.
func (e *Emitter) Preamble(out *codegen.Output, base string) {
	guard := codegen.GuardToken(e.dialect.Name, base)
	iface := out.Interface
	iface.Line("#ifndef %s", guard)
	iface.Line("#define %s", guard)
	iface.Blank()
	for _, h := range []string{"<iostream>", "<climits>", "<cfloat>", "<set>", "<vector>", "<" + e.dialect.Header + ">", `"graph.hpp"`} {
		iface.Line("#include %s", h)
	}
	iface.Blank()

	impl := out.Implementation
	impl.Line(`#include "%s.h"`, base)
	impl.Blank()
	writeHelpers(impl)
}

func writeHelpers(s *codegen.Stream) {
	s.Line("template <typename T>")
	s.Line("__global__ void initIndex(int n, T* d_array, int index, T value)")
	s.Line("{")
	s.Push()
	s.Open("if (index < n)")
	s.Line("d_array[index] = value;")
	s.Close()
	s.Close()

	for _, h := range []struct{ typ, bits, toBits, fromBits string }{
		{"float", "int", "__float_as_int", "__int_as_float"},
		{"double", "unsigned long long", "__double_as_longlong", "__longlong_as_double"},
	} {
		for _, m := range []struct{ name, cmp string }{{"min", "<"}, {"max", ">"}} {
			s.Blank()
			s.Line("__device__ %s graphc_atomic_%s(%s* address, %s value)", h.typ, m.name, h.typ, h.typ)
			s.Line("{")
			s.Push()
			s.Line("%s* bits = (%s*) address;", h.bits, h.bits)
			s.Line("%s old = *bits;", h.bits)
			s.Open("while (value %s %s(old))", m.cmp, h.fromBits)
			s.Line("%s assumed = old;", h.bits)
			s.Line("old = atomicCAS(bits, assumed, (%s) %s(value));", h.bits, h.toBits)
			s.Open("if (old == assumed)")
			s.Line("break;")
			s.Close()
			s.Close()
			s.Line("return %s(old);", h.fromBits)
			s.Close()
		}
	}

	s.Blank()
	s.Line("__device__ bool graphc_is_an_edge(int* meta, int* data, int u, int w)")
	s.Line("{")
	s.Push()
	s.Line("int lo = meta[u];")
	s.Line("int hi = meta[u + 1] - 1;")
	s.Open("while (lo <= hi)")
	s.Line("int mid = lo + (hi - lo) / 2;")
	s.Open("if (data[mid] == w)")
	s.Line("return true;")
	s.Close()
	s.Open("if (data[mid] < w)")
	s.Line("lo = mid + 1;")
	s.Pop()
	s.Line("} else {")
	s.Push()
	s.Line("hi = mid - 1;")
	s.Close()
	s.Close()
	s.Line("return false;")
	s.Close()
}

// LaunchGeometry writes the work-group sizing for launches over V.
func (e *Emitter) LaunchGeometry(s *codegen.Stream) {
	s.Line("const unsigned threadsPerBlock = %d;", e.threadsPerBlock)
	s.Line("unsigned numThreads = (V < threadsPerBlock) ? V : threadsPerBlock;")
	s.Line("unsigned numBlocks = (V + threadsPerBlock - 1) / threadsPerBlock;")
	s.Blank()
}

// BeginParallel starts the kernel body. The host side is written by
// EndParallel once the kernel is complete.
func (e *Emitter) BeginParallel(host *codegen.Stream, r *codegen.Region) *codegen.Stream {
	body := codegen.NewStream()
	body.SetIndent(1)
	if !r.Serial {
		body.Line("int %s = blockIdx.x * blockDim.x + threadIdx.x;", r.Index)
		body.Open("if (%s >= %s)", r.Index, r.Count)
		body.Line("return;")
		body.Close()
	}
	return body
}

// EndParallel writes the kernel into the implementation artifact and the
// launch, bracketed by shared scalar transfers, into host.
func (e *Emitter) EndParallel(host *codegen.Stream, out *codegen.Output, r *codegen.Region, body *codegen.Stream) {
	params := []string{"int V", "int E"}
	args := []string{"V", "E"}
	for _, b := range r.Buffers {
		params = append(params, fmt.Sprintf("%s* d_%s", b.Elem, b.Name))
		args = append(args, "d_"+b.Name)
	}
	for _, sc := range r.Scalars {
		params = append(params, sc.Type+" "+sc.Name)
		args = append(args, sc.Name)
	}
	for _, sc := range r.Shared {
		params = append(params, fmt.Sprintf("%s* d_%s", sc.Type, sc.Name))
		args = append(args, "d_"+sc.Name)
	}

	impl := out.Implementation
	impl.Blank()
	impl.Line("__global__ void %s(%s)", r.Name, strings.Join(params, ", "))
	impl.Line("{")
	impl.Append(body)
	impl.Line("}")

	for _, sc := range r.Shared {
		host.Line("%s(d_%s, &%s, sizeof(%s), %sMemcpyHostToDevice);", e.rt("Memcpy"), sc.Name, sc.Name, sc.Type, e.dialect.Runtime)
	}
	grid, block := "numBlocks", "numThreads"
	switch {
	case r.Serial:
		grid, block = "1", "1"
	case r.Count != "V":
		grid = fmt.Sprintf("(%s + threadsPerBlock - 1) / threadsPerBlock", r.Count)
		block = "threadsPerBlock"
	}
	e.launch(host, r.Name, grid, block, args)
	for _, sc := range r.Shared {
		host.Line("%s(&%s, d_%s, sizeof(%s), %sMemcpyDeviceToHost);", e.rt("Memcpy"), sc.Name, sc.Name, sc.Type, e.dialect.Runtime)
	}
}

func (e *Emitter) launch(s *codegen.Stream, kernel, grid, block string, args []string) {
	if e.dialect.Chevrons {
		s.Line("%s<<<%s, %s>>>(%s);", kernel, grid, block, strings.Join(args, ", "))
	} else {
		s.Line("hipLaunchKernelGGL(%s, dim3(%s), dim3(%s), 0, 0, %s);", kernel, grid, block, strings.Join(args, ", "))
	}
	s.Line("%s();", e.rt("DeviceSynchronize"))
}

// address returns a pointer to the lvalue target.
func address(target string) string {
	if strings.HasPrefix(target, "*") {
		return target[1:]
	}
	return "&" + target
}

func isFloating(elem string) bool {
	return elem == "float" || elem == "double"
}

// OpAssign writes target op= operand. Logical updates store a constant
// under a guard, which is race free without an atomic.
func (e *Emitter) OpAssign(s *codegen.Stream, target string, op ast.BinaryOp, operand, elem string, atomic bool) error {
	switch op {
	case ast.OpAnd:
		if atomic {
			s.Open("if (!(%s))", operand)
			s.Line("%s = false;", target)
			s.Close()
			return nil
		}
		s.Line("%s = %s && %s;", target, target, operand)
		return nil
	case ast.OpOr:
		if atomic {
			s.Open("if (%s)", operand)
			s.Line("%s = true;", target)
			s.Close()
			return nil
		}
		s.Line("%s = %s || %s;", target, target, operand)
		return nil
	}

	if !atomic {
		switch op {
		case ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpDiv, ast.OpMod:
			s.Line("%s %s= %s;", target, op.Token(), operand)
			return nil
		}
		return codegen.Errorf(codegen.ErrUnsupportedStatement, "no compound assignment for %s", op.Token())
	}

	addr := address(target)
	switch {
	case op == ast.OpAdd && elem == "long long":
		s.Line("atomicAdd((unsigned long long*) %s, (unsigned long long) (%s));", addr, operand)
	case op == ast.OpAdd:
		s.Line("atomicAdd(%s, %s);", addr, operand)
	case op == ast.OpSub && isFloating(elem):
		s.Line("atomicAdd(%s, -(%s));", addr, operand)
	case op == ast.OpSub && elem == "long long":
		s.Line("atomicAdd((unsigned long long*) %s, (unsigned long long) (-(%s)));", addr, operand)
	case op == ast.OpSub:
		s.Line("atomicSub(%s, %s);", addr, operand)
	default:
		return codegen.Errorf(codegen.ErrUnsupportedStatement, "no atomic %s for %s", op.Token(), elem)
	}
	return nil
}

// AtomicMin writes a device atomic minimum or maximum.
func (e *Emitter) AtomicMin(s *codegen.Stream, target, value, elem string, isMax bool) {
	name := "Min"
	if isMax {
		name = "Max"
	}
	if isFloating(elem) {
		s.Line("graphc_atomic_%s(%s, %s);", strings.ToLower(name), address(target), value)
		return
	}
	s.Line("atomic%s(%s, %s);", name, address(target), value)
}

// AtomicWrite stores value. Aligned word stores are atomic on the device.
func (e *Emitter) AtomicWrite(s *codegen.Stream, target, value string) {
	s.Line("%s = %s;", target, value)
}

func (e *Emitter) ClaimCAS(s *codegen.Stream, old, target, unset, desired string) {
	s.Line("int %s = atomicCAS(%s, %s, %s);", old, address(target), unset, desired)
}

// BeginWrapper writes cardinalities, the CSR arrays enabled for the
// function, property parameter mirrors and shared scalar mirrors.
func (e *Emitter) BeginWrapper(s *codegen.Stream, w *codegen.Wrapper) {
	s.Line("int V = %s.num_nodes();", w.Graph)
	s.Line("int E = %s.num_edges();", w.Graph)
	s.Blank()

	for _, f := range w.CSR {
		s.Line("int* h_%s = (int*) malloc(sizeof(int) * (%s));", f.Name, f.Count)
		s.Open("for (int i = 0; i < %s; i++)", f.Count)
		s.Line("h_%s[i] = %s[i];", f.Name, f.Source)
		s.Close()
	}
	for _, f := range w.CSR {
		e.AllocBuffer(s, f.Buffer)
	}
	for _, f := range w.CSR {
		e.copy(s, "d_"+f.Name, "h_"+f.Name, f.Buffer, "HostToDevice")
	}
	for _, p := range w.Params {
		e.AllocBuffer(s, p)
		e.copy(s, "d_"+p.Name, p.Name, p, "HostToDevice")
	}
	for _, sc := range w.Shared {
		e.DeclareShared(s, sc)
	}
	s.Blank()
}

// EndWrapper copies property parameters back and frees every mirror.
func (e *Emitter) EndWrapper(s *codegen.Stream, w *codegen.Wrapper) {
	s.Blank()
	for _, p := range w.Params {
		e.copy(s, p.Name, "d_"+p.Name, p, "DeviceToHost")
	}
	for _, f := range w.CSR {
		e.FreeBuffer(s, f.Buffer)
		s.Line("free(h_%s);", f.Name)
	}
	for _, p := range w.Params {
		e.FreeBuffer(s, p)
	}
	for _, b := range w.Locals {
		e.FreeBuffer(s, b)
	}
	for _, sc := range w.Shared {
		e.ReleaseShared(s, sc)
	}
}

func (e *Emitter) copy(s *codegen.Stream, dst, src string, b codegen.Buffer, kind string) {
	s.Line("%s(%s, %s, sizeof(%s) * (%s), %sMemcpy%s);", e.rt("Memcpy"), dst, src, b.Elem, b.Count, e.dialect.Runtime, kind)
}

func (e *Emitter) AllocBuffer(s *codegen.Stream, b codegen.Buffer) {
	s.Line("%s* d_%s;", b.Elem, b.Name)
	s.Line("%s(&d_%s, sizeof(%s) * (%s));", e.rt("Malloc"), b.Name, b.Elem, b.Count)
}

func (e *Emitter) FreeBuffer(s *codegen.Stream, b codegen.Buffer) {
	s.Line("%s(d_%s);", e.rt("Free"), b.Name)
}

// StoreElement launches a single work item that writes one element.
func (e *Emitter) StoreElement(s *codegen.Stream, b codegen.Buffer, index, value string) {
	kernel := fmt.Sprintf("initIndex<%s>", b.Elem)
	args := []string{b.Count, "d_" + b.Name, index, fmt.Sprintf("(%s) %s", b.Elem, value)}
	e.launch(s, kernel, "1", "1", args)
}

func (e *Emitter) DeclareShared(s *codegen.Stream, sc codegen.Scalar) {
	s.Line("%s* d_%s;", sc.Type, sc.Name)
	s.Line("%s(&d_%s, sizeof(%s));", e.rt("Malloc"), sc.Name, sc.Type)
}

func (e *Emitter) ReleaseShared(s *codegen.Stream, sc codegen.Scalar) {
	s.Line("%s(d_%s);", e.rt("Free"), sc.Name)
}
