package codegen_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/DemoGo/StarPlatWorkingBranch/ast"
	"github.com/DemoGo/StarPlatWorkingBranch/codegen"
	"github.com/DemoGo/StarPlatWorkingBranch/internal/kernelgen"
	"github.com/DemoGo/StarPlatWorkingBranch/internal/pragmagen"
)

var backends = []string{"hip", "cuda", "openacc", "openmp"}

func newEmitter(t *testing.T, name string) codegen.Emitter {
	t.Helper()
	var (
		e   codegen.Emitter
		err error
	)
	switch name {
	case "hip":
		e, err = kernelgen.New(kernelgen.HIP, 512)
	case "cuda":
		e, err = kernelgen.New(kernelgen.CUDA, 512)
	case "openacc":
		e, err = pragmagen.New(pragmagen.OpenACC, 512)
	case "openmp":
		e, err = pragmagen.New(pragmagen.OpenMP, 512)
	default:
		t.Fatalf("unknown backend %q", name)
	}
	require.NoError(t, err)
	return e
}

// generate lowers prog for backend and returns the implementation artifact.
func generate(t *testing.T, backend string, prog *ast.Program) string {
	t.Helper()
	out, err := codegen.Generate(context.Background(), prog, newEmitter(t, backend), codegen.Options{BaseName: "test"})
	require.NoError(t, err)
	return out.Implementation.String()
}

func generateErr(t *testing.T, backend string, prog *ast.Program) error {
	t.Helper()
	_, err := codegen.Generate(context.Background(), prog, newEmitter(t, backend), codegen.Options{BaseName: "test"})
	require.Error(t, err)
	return err
}

// graphFunc builds a one-function program F(graph g, extra...).
func graphFunc(usage ast.Usage, extra []ast.Param, body ...ast.Statement) *ast.Program {
	params := append([]ast.Param{{Name: "g", Type: ast.Graph()}}, extra...)
	return &ast.Program{Functions: []*ast.Function{{
		Name:   "F",
		Params: params,
		Body:   body,
		Usage:  usage,
	}}}
}

// hostFunc builds a one-function program without a graph parameter.
func hostFunc(body ...ast.Statement) *ast.Program {
	return &ast.Program{Functions: []*ast.Function{{
		Name:   "H",
		Params: []ast.Param{{Name: "n", Type: ast.Primitive(ast.ScalarInt)}},
		Body:   body,
	}}}
}

// wrapperOf returns the host function F of an implementation artifact.
func wrapperOf(t *testing.T, impl, signature string) string {
	t.Helper()
	i := strings.LastIndex(impl, signature+"\n{")
	require.GreaterOrEqual(t, i, 0, "wrapper %q not found", signature)
	return impl[i:]
}

// requireLinesInOrder checks that every want line appears, trimmed, after
// the previous one.
func requireLinesInOrder(t *testing.T, text string, want ...string) {
	t.Helper()
	lines := strings.Split(text, "\n")
	pos := 0
	for _, w := range want {
		found := false
		for pos < len(lines) {
			line := strings.TrimSpace(lines[pos])
			pos++
			if line == w {
				found = true
				break
			}
		}
		require.True(t, found, "line %q not found in order in:\n%s", w, text)
	}
}

func id(name string) ast.Identifier { return ast.Identifier{Name: name} }

func prop(owner, name string) ast.PropAccess { return ast.PropAccess{Owner: owner, Prop: name} }

func intLit(v int32) ast.Literal { return ast.Literal{Value: ast.LiteralInt(v)} }

func boolLit(v bool) ast.Literal { return ast.Literal{Value: ast.LiteralBool(v)} }

func param(name string, t ast.Type) ast.Param { return ast.Param{Name: name, Type: t} }

func nodes(iter string, body ...ast.Statement) ast.ForAll {
	return ast.ForAll{Iterator: iter, Source: ast.DomainNodes{Graph: "g"}, Body: body}
}

func neighbors(iter, of string, body ...ast.Statement) ast.ForAll {
	return ast.ForAll{Iterator: iter, Source: ast.Neighbors{Graph: "g", Of: of}, Body: body}
}
