// Package starplat generates parallel C++ from graph algorithm programs.
//
// A program is an AST of graph-DSL functions (package ast). The code
// generator lowers it for one of four backends:
//   - HIP and CUDA: every parallel region becomes a device kernel
//   - OpenACC and OpenMP: parallel regions stay host loops with offload directives
//
// Each compilation produces two artifacts: an interface (<base>.h) holding
// the function declarations and an implementation holding the bodies.
//
// Example usage:
//
//	result, err := starplat.Compile(ctx, programs.SSSP(), starplat.Options{
//	    Target:   "hip",
//	    FileName: "sssp",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(result.Implementation)
//
// For backend specific options, use the backend packages directly:
//
//	out, err := cuda.Compile(ctx, prog, "sssp", cuda.Options{ThreadsPerBlock: 256})
package starplat

import (
	"context"
	"fmt"

	"github.com/DemoGo/StarPlatWorkingBranch/artifact"
	"github.com/DemoGo/StarPlatWorkingBranch/ast"
	"github.com/DemoGo/StarPlatWorkingBranch/codegen"
	"github.com/DemoGo/StarPlatWorkingBranch/cuda"
	"github.com/DemoGo/StarPlatWorkingBranch/hip"
	"github.com/DemoGo/StarPlatWorkingBranch/openacc"
	"github.com/DemoGo/StarPlatWorkingBranch/openmp"
)

// Backend identifiers.
const (
	TargetHIP     = "hip"
	TargetCUDA    = "cuda"
	TargetOpenACC = "openacc"
	TargetOpenMP  = "openmp"
)

// Options configures a compilation.
type Options struct {
	// Target is the backend identifier (default: "hip").
	Target string

	// FileName names the artifacts; directories and extension are ignored
	// (default: "graph").
	FileName string

	// ThreadsPerBlock is the work-group size, in [1, 1024] (default: 512).
	ThreadsPerBlock int
}

// DefaultOptions returns sensible default options.
func DefaultOptions() Options {
	return Options{
		Target:          TargetHIP,
		FileName:        "graph",
		ThreadsPerBlock: hip.DefaultThreadsPerBlock,
	}
}

// Result holds the generated artifacts.
type Result struct {
	Target   string
	BaseName string

	// InterfaceName and ImplementationName are the artifact file names.
	InterfaceName      string
	ImplementationName string

	Interface      string
	Implementation string
}

// Files returns both artifacts, interface first, ready for artifact.Writer.
func (r *Result) Files() []artifact.File {
	return []artifact.File{
		{Name: r.InterfaceName, Content: []byte(r.Interface)},
		{Name: r.ImplementationName, Content: []byte(r.Implementation)},
	}
}

// Targets returns the supported backend identifiers in sorted order.
func Targets() []string {
	return []string{TargetCUDA, TargetHIP, TargetOpenACC, TargetOpenMP}
}

// NewEmitter returns the emitter of target. Unknown targets and out of range
// work-group sizes are codegen.ErrInvalidConfig errors.
func NewEmitter(target string, threadsPerBlock int) (codegen.Emitter, error) {
	switch target {
	case TargetHIP:
		return hip.NewEmitter(hip.Options{ThreadsPerBlock: threadsPerBlock})
	case TargetCUDA:
		return cuda.NewEmitter(cuda.Options{ThreadsPerBlock: threadsPerBlock})
	case TargetOpenACC:
		return openacc.NewEmitter(openacc.Options{ThreadsPerBlock: threadsPerBlock})
	case TargetOpenMP:
		return openmp.NewEmitter(openmp.Options{ThreadsPerBlock: threadsPerBlock})
	default:
		return nil, codegen.Errorf(codegen.ErrInvalidConfig, "unknown target %q", target)
	}
}

// Compile lowers prog for opts.Target. Zero option fields take their
// defaults.
func Compile(ctx context.Context, prog *ast.Program, opts Options) (*Result, error) {
	defaults := DefaultOptions()
	if opts.Target == "" {
		opts.Target = defaults.Target
	}
	if opts.FileName == "" {
		opts.FileName = defaults.FileName
	}
	if opts.ThreadsPerBlock == 0 {
		opts.ThreadsPerBlock = defaults.ThreadsPerBlock
	}

	emitter, err := NewEmitter(opts.Target, opts.ThreadsPerBlock)
	if err != nil {
		return nil, err
	}
	out, err := codegen.Generate(ctx, prog, emitter, codegen.Options{BaseName: opts.FileName})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opts.Target, err)
	}

	base := codegen.BaseName(opts.FileName)
	return &Result{
		Target:             opts.Target,
		BaseName:           base,
		InterfaceName:      base + ".h",
		ImplementationName: base + "." + emitter.Extension(),
		Interface:          out.Interface.String(),
		Implementation:     out.Implementation.String(),
	}, nil
}
