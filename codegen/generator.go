// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package codegen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/DemoGo/StarPlatWorkingBranch/ast"
	"github.com/DemoGo/StarPlatWorkingBranch/internal/ctxlog"
)

// Options configures one generation run.
type Options struct {
	// BaseName is the file name the artifacts derive from. Directories and
	// extensions are stripped.
	BaseName string
}

// Generator lowers one program for one backend. A Generator is used for a
// single run and is not safe for concurrent use.
type Generator struct {
	emitter Emitter
	opts    Options
	out     *Output
	logger  *slog.Logger

	// Function context (set while lowering a function)
	fn       *ast.Function
	scope    *scope
	wrapper  *Wrapper
	shared   map[string]bool
	temps    map[string]int
	edgeVars map[string]string

	// Parallel context (set while lowering a region body)
	region      *Region
	regionDepth int
	regionIter  string
	guard       *bfsGuard

	// nextContext redirects double-buffered properties to their shadow-next
	// buffers. It is set while reduction writes are lowered.
	nextContext bool

	// fixedPointFrames is the frame count at the entry of the innermost
	// fixed point, zero outside one. Redeclared properties from those
	// frames are committed by that fixed point.
	fixedPointFrames int

	// seq numbers regions across the compilation unit.
	seq int
}

// Generate lowers prog with emitter and returns the two artifacts.
//
// Generation aborts at the first error. Errors are *Error values; defects in
// the generator are reported with the internal kinds (see IsInternal).
func Generate(ctx context.Context, prog *ast.Program, emitter Emitter, opts Options) (*Output, error) {
	g := &Generator{
		emitter: emitter,
		opts:    opts,
		out:     NewOutput(),
		logger:  ctxlog.FromContext(ctx).With("backend", emitter.Name()),
	}
	if g.opts.BaseName == "" {
		return nil, NewError(ErrInvalidConfig, "base file name is empty")
	}

	emitter.Preamble(g.out, BaseName(g.opts.BaseName))

	for _, fn := range prog.Functions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		g.logger.Debug("lowering function", "function", fn.Name)
		if err := g.lowerFunction(fn); err != nil {
			var cgErr *Error
			if errors.As(err, &cgErr) && cgErr.Function == "" {
				cgErr.Function = fn.Name
			}
			return nil, err
		}
	}

	emitter.Trailer(g.out)
	g.logger.Debug("generation finished",
		"functions", len(prog.Functions),
		"interface_bytes", g.out.Interface.Len(),
		"implementation_bytes", g.out.Implementation.Len())
	return g.out, nil
}

// BaseName strips directories and the extension from fileName.
func BaseName(fileName string) string {
	base := filepath.Base(fileName)
	if ext := filepath.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	return base
}

// GuardToken returns the include guard of the interface artifact.
func GuardToken(backend, base string) string {
	clean := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToUpper(r)
		}
		return '_'
	}, BaseName(base))
	return "GEN" + strings.ToUpper(backend) + "_" + clean + "_H"
}

// lowerFunction writes the declaration into the interface artifact and the
// host wrapper into the implementation artifact. Kernels produced while the
// body is lowered land in the implementation artifact ahead of the wrapper.
func (g *Generator) lowerFunction(fn *ast.Function) error {
	g.fn = fn
	g.scope = newScope()
	g.wrapper = nil
	g.shared = sharedScalars(fn.Body)
	g.temps = make(map[string]int)
	g.edgeVars = make(map[string]string)
	g.region = nil
	g.regionIter = ""
	g.guard = nil
	g.nextContext = false
	g.fixedPointFrames = 0

	sig, err := g.signature(fn)
	if err != nil {
		return err
	}
	g.out.Interface.Line("%s;", sig)

	host := NewStream()
	host.Line("%s", sig)
	host.Line("{")
	host.Push()

	for _, p := range fn.Params {
		g.scope.declare(&symbol{name: p.Name, typ: p.Type, param: true})
	}

	body, ret := splitReturn(fn.Body)

	// A directive data scope is a block: the returned value is copied out
	// of it before the scope closes.
	var result string
	if graph, ok := fn.GraphParam(); ok {
		w, err := g.buildWrapper(fn, graph.Name)
		if err != nil {
			return err
		}
		g.wrapper = w
		if ret != nil && ret.Value != nil && fn.Result != nil && g.emitter.Model() == ModelDirective {
			typ, err := g.emitter.TypeName(*fn.Result)
			if err != nil {
				return err
			}
			result = g.temp("graphc_result")
			host.Line("%s %s;", typ, result)
		}
		g.emitter.BeginWrapper(host, w)
		g.emitter.LaunchGeometry(host)
	}

	if err := g.lowerStatements(host, body); err != nil {
		return err
	}
	if result != "" {
		value, err := g.expr(ret.Value)
		if err != nil {
			return err
		}
		host.Line("%s = %s;", result, value)
		ret = &ast.Return{Value: ast.Identifier{Name: result}}
	}

	if g.wrapper != nil {
		g.wrapper.Locals = append(g.wrapper.Locals, g.scope.top().buffers...)
		g.wrapper.Shared = append(g.wrapper.Shared, g.scope.top().shared...)
		g.emitter.EndWrapper(host, g.wrapper)
	} else {
		g.release(host, g.scope.top())
	}

	if ret != nil {
		if err := g.lowerReturn(host, *ret); err != nil {
			return err
		}
	}

	host.Pop()
	host.Line("}")
	g.out.Implementation.Blank()
	g.out.Implementation.Append(host)
	return nil
}

// signature returns the C-family prototype of fn without a trailing ';'.
func (g *Generator) signature(fn *ast.Function) (string, error) {
	result := "void"
	if fn.Result != nil {
		name, err := g.emitter.TypeName(*fn.Result)
		if err != nil {
			return "", err
		}
		result = name
	}
	params := make([]string, 0, len(fn.Params))
	for _, p := range fn.Params {
		name, err := g.emitter.TypeName(p.Type)
		if err != nil {
			return "", err
		}
		params = append(params, name+" "+p.Name)
	}
	return fmt.Sprintf("%s %s(%s)", result, fn.Name, strings.Join(params, ", ")), nil
}

// splitReturn separates a trailing return from the body so the wrapper
// epilogue can run before it.
func splitReturn(body ast.Block) (ast.Block, *ast.Return) {
	if len(body) == 0 {
		return body, nil
	}
	if ret, ok := body[len(body)-1].(ast.Return); ok {
		return body[:len(body)-1], &ret
	}
	return body, nil
}

// nextRegionName returns a unique region name for the current function.
func (g *Generator) nextRegionName(purpose string) string {
	name := fmt.Sprintf("%s_%s%d", g.fn.Name, purpose, g.seq)
	g.seq++
	return name
}

// temp returns a function-unique temporary name derived from base.
func (g *Generator) temp(base string) string {
	n := g.temps[base]
	g.temps[base] = n + 1
	if n == 0 {
		return base
	}
	return fmt.Sprintf("%s_%d", base, n)
}

// elemType returns the target type of one element of a property, or of a
// scalar-like symbol.
func (g *Generator) elemType(t ast.Type) (string, error) {
	switch t.Kind {
	case ast.KindNodeProp, ast.KindEdgeProp:
		return g.emitter.TypeName(ast.Primitive(t.Scalar))
	default:
		return g.emitter.TypeName(t)
	}
}
