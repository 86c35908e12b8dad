// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package codegen

import "github.com/DemoGo/StarPlatWorkingBranch/ast"

// ExecutionModel is the parallel execution model of a backend.
type ExecutionModel uint8

const (
	// ModelKernel launches the parallel body as many independent work items
	// (one kernel per parallel region).
	ModelKernel ExecutionModel = iota

	// ModelDirective runs the parallel body as a host loop annotated with
	// parallel and data-scope directives.
	ModelDirective
)

// String returns the model name.
func (m ExecutionModel) String() string {
	switch m {
	case ModelKernel:
		return "kernel"
	case ModelDirective:
		return "directive"
	default:
		return "unknown"
	}
}

// Buffer is a logical array that lives in device memory for kernel backends
// and in a data scope for directive backends.
type Buffer struct {
	// Name is the logical name. Emitters derive target identifiers from it
	// with BufferRef.
	Name string

	// Elem is the element type in target syntax.
	Elem string

	// Count is the element count expression ("V", "V + 1", "E").
	Count string
}

// CSRField is one array of the compressed sparse row layout.
type CSRField struct {
	Buffer

	// Source is the host expression that yields element i of the field.
	Source string
}

// Scalar is a host variable visible to a parallel region.
type Scalar struct {
	Name string
	Type string
}

// Region describes one parallel section: a flat range of work items
// [0, Count) each binding Index, or a single work item when Serial is set.
type Region struct {
	// Name is unique within the compilation unit. Kernel backends use it as
	// the kernel name.
	Name string

	Index  string
	Count  string
	Serial bool

	// Buffers lists the arrays the body reads or writes.
	Buffers []Buffer

	// Scalars lists host values the body only reads.
	Scalars []Scalar

	// Shared lists host scalars the body writes. Updates to them must go
	// through SharedRef and the atomic operations.
	Shared []Scalar
}

// IsShared reports whether name is a shared scalar of the region.
func (r *Region) IsShared(name string) bool {
	for _, sc := range r.Shared {
		if sc.Name == name {
			return true
		}
	}
	return false
}

// Wrapper is the host-side frame of a function that takes a graph.
type Wrapper struct {
	Function string
	Graph    string

	// CSR holds the fields enabled by the function's usage flags, in a fixed
	// order. Each one is emitted as a host buffer, a device buffer and a copy.
	CSR []CSRField

	// Params holds property parameters: copied to the device on entry and
	// back on exit.
	Params []Buffer

	// Locals holds buffers allocated at function scope that are still live
	// when the wrapper closes.
	Locals []Buffer

	// Shared holds host scalars that have a device mirror.
	Shared []Scalar
}

// Emitter supplies everything backend specific to the shared lowering
// engine. The methods fall in five groups: type mapping, parallel loop
// prologue/epilogue, atomic update syntax, memory allocation and transfer,
// and launch geometry.
type Emitter interface {
	// Name returns the backend identifier ("hip", "openacc", ...).
	Name() string

	// Model returns the execution model of the backend.
	Model() ExecutionModel

	// Extension returns the implementation artifact extension without the dot.
	Extension() string

	// TypeName maps a DSL type to target syntax.
	TypeName(t ast.Type) (string, error)

	// Preamble writes include guards, includes and helpers.
	Preamble(out *Output, base string)

	// Trailer closes whatever Preamble opened.
	Trailer(out *Output)

	// BufferRef returns the identifier used for buffer name inside
	// parallel code.
	BufferRef(name string) string

	// SharedRef returns the lvalue used for shared scalar name inside
	// parallel code.
	SharedRef(name string) string

	// BeginParallel writes the parallel loop prologue and returns the stream
	// that receives the loop body.
	BeginParallel(host *Stream, r *Region) *Stream

	// EndParallel writes the epilogue. Kernel backends emit the kernel into
	// out.Implementation and the launch into host.
	EndParallel(host *Stream, out *Output, r *Region, body *Stream)

	// OpAssign writes target op= operand. When atomic is set the update
	// races with other work items and must be atomic.
	OpAssign(s *Stream, target string, op ast.BinaryOp, operand, elem string, atomic bool) error

	// AtomicMin writes an atomic minimum (maximum when isMax is set) of target
	// and value. value names a temporary holding the candidate; it must
	// still hold the candidate afterwards, since the re-check compares
	// target against it.
	AtomicMin(s *Stream, target, value, elem string, isMax bool)

	// AtomicWrite writes an atomic store of value into target.
	AtomicWrite(s *Stream, target, value string)

	// ClaimCAS declares old and performs one compare-and-swap of target from
	// unset to desired, leaving the previous value in old.
	ClaimCAS(s *Stream, old, target, unset, desired string)

	// BeginWrapper opens the host frame: cardinalities, CSR arrays, property
	// parameters and shared scalar mirrors.
	BeginWrapper(s *Stream, w *Wrapper)

	// EndWrapper copies results back and releases everything BeginWrapper
	// and the body allocated.
	EndWrapper(s *Stream, w *Wrapper)

	// AllocBuffer allocates a buffer declared in the function body.
	AllocBuffer(s *Stream, b Buffer)

	// FreeBuffer releases a buffer allocated with AllocBuffer.
	FreeBuffer(s *Stream, b Buffer)

	// StoreElement writes one element of a buffer from host code.
	StoreElement(s *Stream, b Buffer, index, value string)

	// DeclareShared gives a host scalar a device mirror.
	DeclareShared(s *Stream, sc Scalar)

	// ReleaseShared releases the mirror created by DeclareShared.
	ReleaseShared(s *Stream, sc Scalar)

	// LaunchGeometry writes the work-group sizing used by later launches.
	LaunchGeometry(s *Stream)
}
