// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hip

import (
	"context"
	"fmt"

	"github.com/DemoGo/StarPlatWorkingBranch/ast"
	"github.com/DemoGo/StarPlatWorkingBranch/codegen"
	"github.com/DemoGo/StarPlatWorkingBranch/internal/kernelgen"
)

// DefaultThreadsPerBlock is the work-group size used when none is set.
const DefaultThreadsPerBlock = 512

// Options configures HIP code generation.
type Options struct {
	// ThreadsPerBlock is the number of threads of every kernel launch. It must lie in [1, 1024].
	// Compile defaults it to DefaultThreadsPerBlock if zero.
	ThreadsPerBlock int
}

// DefaultOptions returns the default HIP options.
func DefaultOptions() Options {
	return Options{ThreadsPerBlock: DefaultThreadsPerBlock}
}

// NewEmitter returns the HIP emitter. Options are validated as given; an
// out of range ThreadsPerBlock is a codegen.ErrInvalidConfig error.
func NewEmitter(options Options) (codegen.Emitter, error) {
	e, err := kernelgen.New(kernelgen.HIP, options.ThreadsPerBlock)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Compile generates the HIP interface and implementation artifacts for
// prog. fileName names the artifacts; directories and extension are ignored.
func Compile(ctx context.Context, prog *ast.Program, fileName string, options Options) (*codegen.Output, error) {
	if options.ThreadsPerBlock == 0 {
		options.ThreadsPerBlock = DefaultThreadsPerBlock
	}
	emitter, err := NewEmitter(options)
	if err != nil {
		return nil, err
	}
	out, err := codegen.Generate(ctx, prog, emitter, codegen.Options{BaseName: fileName})
	if err != nil {
		return nil, fmt.Errorf("hip: %w", err)
	}
	return out, nil
}
