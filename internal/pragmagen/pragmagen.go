// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package pragmagen implements the directive execution model shared by the
// OpenACC and OpenMP backends. Parallel regions stay host loops annotated
// with offload directives; graph arrays live in a structured data scope.
package pragmagen

import (
	"fmt"
	"strings"

	"github.com/DemoGo/StarPlatWorkingBranch/ast"
	"github.com/DemoGo/StarPlatWorkingBranch/codegen"
)

// MaxThreadsPerBlock bounds the vector length and thread limit clauses.
const MaxThreadsPerBlock = 1024

// Flavor selects the directive language.
type Flavor uint8

const (
	// OpenACC emits "#pragma acc" directives.
	OpenACC Flavor = iota

	// OpenMP emits "#pragma omp" target offload directives.
	OpenMP
)

// String returns the backend identifier of the flavor.
func (f Flavor) String() string {
	switch f {
	case OpenACC:
		return "openacc"
	case OpenMP:
		return "openmp"
	default:
		return "unknown"
	}
}

// Emitter implements codegen.Emitter for a directive flavor.
type Emitter struct {
	flavor          Flavor
	threadsPerBlock int
}

// New returns an emitter for f. threadsPerBlock must lie in
// [1, MaxThreadsPerBlock].
func New(f Flavor, threadsPerBlock int) (*Emitter, error) {
	if threadsPerBlock < 1 || threadsPerBlock > MaxThreadsPerBlock {
		return nil, codegen.Errorf(codegen.ErrInvalidConfig,
			"%s: threads per block %d outside [1, %d]", f, threadsPerBlock, MaxThreadsPerBlock)
	}
	return &Emitter{flavor: f, threadsPerBlock: threadsPerBlock}, nil
}

// Name returns the backend identifier.
func (e *Emitter) Name() string { return e.flavor.String() }

// Model returns codegen.ModelDirective.
func (e *Emitter) Model() codegen.ExecutionModel { return codegen.ModelDirective }

// Extension returns "cpp".
func (e *Emitter) Extension() string { return "cpp" }

// TypeName maps a DSL type to C++ syntax.
func (e *Emitter) TypeName(t ast.Type) (string, error) { return codegen.CTypeName(t) }

// BufferRef returns name: directive code addresses host arrays directly.
func (e *Emitter) BufferRef(name string) string { return name }

// SharedRef returns name.
func (e *Emitter) SharedRef(name string) string { return name }

// LaunchGeometry writes nothing; the work-group size is a loop clause.
func (e *Emitter) LaunchGeometry(*codegen.Stream) {}

// DeclareShared writes nothing; scalars are mapped per region.
func (e *Emitter) DeclareShared(*codegen.Stream, codegen.Scalar) {}

// ReleaseShared writes nothing.
func (e *Emitter) ReleaseShared(*codegen.Stream, codegen.Scalar) {}

// Trailer closes the include guard.
func (e *Emitter) Trailer(out *codegen.Output) { out.Interface.Line("#endif") }

func (e *Emitter) pragma(s *codegen.Stream, acc, omp string, args ...any) {
	text := acc
	prefix := "#pragma acc "
	if e.flavor == OpenMP {
		text = omp
		prefix = "#pragma omp "
	}
	s.Line(prefix+text, args...)
}

// Preamble writes the include guard and the device helpers.
func (e *Emitter) Preamble(out *codegen.Output, base string) {
	guard := codegen.GuardToken(e.Name(), base)
	iface := out.Interface
	iface.Line("#ifndef %s", guard)
	iface.Line("#define %s", guard)
	iface.Blank()
	header := "<openacc.h>"
	if e.flavor == OpenMP {
		header = "<omp.h>"
	}
	for _, h := range []string{"<iostream>", "<climits>", "<cfloat>", "<set>", "<vector>", header, `"graph.hpp"`} {
		iface.Line("#include %s", h)
	}
	iface.Blank()

	impl := out.Implementation
	impl.Line(`#include "%s.h"`, base)
	impl.Blank()
	if e.flavor == OpenACC {
		impl.Line("#pragma acc routine seq")
	} else {
		impl.Line("#pragma omp declare target")
	}
	impl.Line("bool graphc_is_an_edge(int* meta, int* data, int u, int w)")
	impl.Line("{")
	impl.Push()
	impl.Line("int lo = meta[u];")
	impl.Line("int hi = meta[u + 1] - 1;")
	impl.Open("while (lo <= hi)")
	impl.Line("int mid = lo + (hi - lo) / 2;")
	impl.Open("if (data[mid] == w)")
	impl.Line("return true;")
	impl.Close()
	impl.Open("if (data[mid] < w)")
	impl.Line("lo = mid + 1;")
	impl.Pop()
	impl.Line("} else {")
	impl.Push()
	impl.Line("hi = mid - 1;")
	impl.Close()
	impl.Close()
	impl.Line("return false;")
	impl.Close()
	if e.flavor == OpenMP {
		impl.Line("#pragma omp end declare target")
	}
}

func names(list []codegen.Scalar) string {
	out := make([]string, len(list))
	for i, sc := range list {
		out[i] = sc.Name
	}
	return strings.Join(out, ", ")
}

func sections(list []codegen.Buffer) string {
	out := make([]string, len(list))
	for i, b := range list {
		out[i] = section(b)
	}
	return strings.Join(out, ", ")
}

func section(b codegen.Buffer) string {
	return fmt.Sprintf("%s[0:%s]", b.Name, b.Count)
}

// BeginParallel writes the offload directive and opens the loop. The body
// goes straight into host.
func (e *Emitter) BeginParallel(host *codegen.Stream, r *codegen.Region) *codegen.Stream {
	var clauses string
	if len(r.Shared) > 0 {
		if e.flavor == OpenACC {
			clauses = fmt.Sprintf(" copy(%s)", names(r.Shared))
		} else {
			clauses = fmt.Sprintf(" map(tofrom: %s)", names(r.Shared))
		}
	}
	if r.Serial {
		e.pragma(host, "serial%s", "target%s", clauses)
		host.Line("{")
		host.Push()
		return host
	}
	e.pragma(host, "parallel loop vector_length(%d)%s", "target teams distribute parallel for thread_limit(%d)%s",
		e.threadsPerBlock, clauses)
	host.Open("for (int %s = 0; %s < %s; %s++)", r.Index, r.Index, r.Count, r.Index)
	return host
}

// EndParallel closes the loop or serial block.
func (e *Emitter) EndParallel(host *codegen.Stream, _ *codegen.Output, _ *codegen.Region, _ *codegen.Stream) {
	host.Close()
}

// OpAssign writes target op= operand, under an atomic update directive when
// work items race on target.
func (e *Emitter) OpAssign(s *codegen.Stream, target string, op ast.BinaryOp, operand, elem string, atomic bool) error {
	var stmt string
	switch op {
	case ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpDiv:
		stmt = fmt.Sprintf("%s %s= %s;", target, op.Token(), operand)
	case ast.OpMod:
		if atomic {
			return codegen.Errorf(codegen.ErrUnsupportedStatement, "no atomic %% for %s", elem)
		}
		stmt = fmt.Sprintf("%s %%= %s;", target, operand)
	case ast.OpAnd, ast.OpOr:
		stmt = fmt.Sprintf("%s = %s %s (%s);", target, target, op.Token(), operand)
	default:
		return codegen.Errorf(codegen.ErrUnsupportedStatement, "no compound assignment for %s", op.Token())
	}
	if atomic {
		e.pragma(s, "atomic update", "atomic update")
	}
	s.Line("%s", stmt)
	return nil
}

// AtomicMin writes an atomic minimum or maximum. OpenMP uses atomic compare.
// OpenACC has no compare form: a private copy of value is swapped in and
// any better value it displaced is swapped back until none is displaced.
// value itself is left untouched for the caller's re-check.
func (e *Emitter) AtomicMin(s *codegen.Stream, target, value, elem string, isMax bool) {
	better := "<"
	if isMax {
		better = ">"
	}
	if e.flavor == OpenMP {
		s.Line("#pragma omp atomic compare")
		s.Open("if (%s %s %s)", value, better, target)
		s.Line("%s = %s;", target, value)
		s.Close()
		return
	}
	s.Line("%s graphc_val = %s;", elem, value)
	s.Open("while (true)")
	s.Line("%s graphc_old;", elem)
	s.Line("#pragma acc atomic capture")
	s.Line("{")
	s.Push()
	s.Line("graphc_old = %s;", target)
	s.Line("%s = graphc_val;", target)
	s.Close()
	s.Open("if (!(graphc_old %s graphc_val))", better)
	s.Line("break;")
	s.Close()
	s.Line("graphc_val = graphc_old;")
	s.Close()
}

// AtomicWrite writes an atomic store.
func (e *Emitter) AtomicWrite(s *codegen.Stream, target, value string) {
	e.pragma(s, "atomic write", "atomic write")
	s.Line("%s = %s;", target, value)
}

// ClaimCAS claims target. OpenACC swaps desired in; this is a valid claim
// because every contender of a phase writes the same desired value.
func (e *Emitter) ClaimCAS(s *codegen.Stream, old, target, unset, desired string) {
	s.Line("int %s;", old)
	if e.flavor == OpenMP {
		s.Line("#pragma omp atomic compare capture")
		s.Line("{")
		s.Push()
		s.Line("%s = %s;", old, target)
		s.Open("if (%s == %s)", target, unset)
		s.Line("%s = %s;", target, desired)
		s.Close()
		s.Close()
		return
	}
	s.Line("#pragma acc atomic capture")
	s.Line("{")
	s.Push()
	s.Line("%s = %s;", old, target)
	s.Line("%s = %s;", target, desired)
	s.Close()
}

// BeginWrapper aliases the CSR arrays and opens the data scope that keeps
// them and the property parameters resident for the whole function.
func (e *Emitter) BeginWrapper(s *codegen.Stream, w *codegen.Wrapper) {
	s.Line("int V = %s.num_nodes();", w.Graph)
	s.Line("int E = %s.num_edges();", w.Graph)
	s.Blank()
	csr := make([]codegen.Buffer, 0, len(w.CSR))
	for _, f := range w.CSR {
		s.Line("int* %s = %s;", f.Name, f.Source)
		csr = append(csr, f.Buffer)
	}
	if len(w.CSR) > 0 {
		s.Blank()
	}

	var clauses []string
	if e.flavor == OpenACC {
		if len(csr) > 0 {
			clauses = append(clauses, fmt.Sprintf("copyin(%s)", sections(csr)))
		}
		if len(w.Params) > 0 {
			clauses = append(clauses, fmt.Sprintf("copy(%s)", sections(w.Params)))
		}
		if len(clauses) > 0 {
			s.Line("#pragma acc data %s", strings.Join(clauses, " "))
		}
	} else {
		if len(csr) > 0 {
			clauses = append(clauses, fmt.Sprintf("map(to: %s)", sections(csr)))
		}
		if len(w.Params) > 0 {
			clauses = append(clauses, fmt.Sprintf("map(tofrom: %s)", sections(w.Params)))
		}
		if len(clauses) > 0 {
			s.Line("#pragma omp target data %s", strings.Join(clauses, " "))
		}
	}
	s.Line("{")
	s.Push()
}

// EndWrapper frees function-scope buffers and closes the data scope, which
// copies the property parameters back.
func (e *Emitter) EndWrapper(s *codegen.Stream, w *codegen.Wrapper) {
	for _, b := range w.Locals {
		e.FreeBuffer(s, b)
	}
	s.Close()
}

// AllocBuffer allocates a host array and its device copy.
func (e *Emitter) AllocBuffer(s *codegen.Stream, b codegen.Buffer) {
	s.Line("%s* %s = new %s[%s];", b.Elem, b.Name, b.Elem, b.Count)
	e.pragma(s, "enter data create(%s)", "target enter data map(alloc: %s)", section(b))
}

// FreeBuffer releases both copies of a buffer.
func (e *Emitter) FreeBuffer(s *codegen.Stream, b codegen.Buffer) {
	e.pragma(s, "exit data delete(%s)", "target exit data map(delete: %s)", section(b))
	s.Line("delete[] %s;", b.Name)
}

// StoreElement writes one element on the host and refreshes the device copy.
func (e *Emitter) StoreElement(s *codegen.Stream, b codegen.Buffer, index, value string) {
	s.Line("%s[%s] = %s;", b.Name, index, value)
	e.pragma(s, "update device(%s[%s:1])", "target update to(%s[%s:1])", b.Name, index)
}
