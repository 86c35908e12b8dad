package hip

import (
	"context"
	"strings"
	"testing"

	"github.com/DemoGo/StarPlatWorkingBranch/codegen"
	"github.com/DemoGo/StarPlatWorkingBranch/programs"
)

func TestNewEmitter_ThreadsPerBlock(t *testing.T) {
	tests := []struct {
		threads int
		wantErr bool
	}{
		{0, true},
		{-1, true},
		{1, false},
		{512, false},
		{1024, false},
		{1025, true},
	}

	for _, tt := range tests {
		_, err := NewEmitter(Options{ThreadsPerBlock: tt.threads})
		if tt.wantErr {
			if !codegen.IsConfig(err) {
				t.Errorf("NewEmitter(%d): got %v, want a config error", tt.threads, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("NewEmitter(%d): unexpected error %v", tt.threads, err)
		}
	}
}

func TestEmitter_Identity(t *testing.T) {
	e, err := NewEmitter(DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if e.Name() != "hip" || e.Extension() != "cpp" || e.Model() != codegen.ModelKernel {
		t.Errorf("got %s/.%s/%s", e.Name(), e.Extension(), e.Model())
	}
}

func TestCompile_DefaultsZeroThreads(t *testing.T) {
	out, err := Compile(context.Background(), programs.SSSP(), "sssp", Options{})
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if !strings.Contains(out.Implementation.String(), "const unsigned threadsPerBlock = 512;") {
		t.Error("expected the default work-group size")
	}
}

func TestCompile_SSSP(t *testing.T) {
	out, err := Compile(context.Background(), programs.SSSP(), "out/sssp.dsl", Options{ThreadsPerBlock: 256})
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	iface := out.Interface.String()
	for _, want := range []string{
		"#ifndef GENHIP_SSSP_H",
		"#include <hip/hip_runtime.h>",
		"void Compute_SSSP(graph& g, int* dist, int src);",
	} {
		if !strings.Contains(iface, want) {
			t.Errorf("interface missing %q", want)
		}
	}

	impl := out.Implementation.String()
	for _, want := range []string{
		`#include "sssp.h"`,
		"const unsigned threadsPerBlock = 256;",
		"hipMemcpy(d_meta, h_meta, sizeof(int) * (V + 1), hipMemcpyHostToDevice);",
		"hipLaunchKernelGGL(Compute_SSSP_kernel2, dim3(numBlocks), dim3(numThreads), 0, 0, ",
		"hipMemcpy(dist, d_dist, sizeof(int) * (V), hipMemcpyDeviceToHost);",
	} {
		if !strings.Contains(impl, want) {
			t.Errorf("implementation missing %q", want)
		}
	}
	if strings.Contains(impl, "h_src[i]") || strings.Contains(impl, "d_rev_meta") {
		t.Error("unused CSR fields were emitted")
	}
}

func TestCompile_WrapsErrors(t *testing.T) {
	_, err := Compile(context.Background(), programs.SSSP(), "", DefaultOptions())
	if !codegen.IsConfig(err) {
		t.Fatalf("got %v, want a config error", err)
	}
	if !strings.HasPrefix(err.Error(), "hip: ") {
		t.Errorf("error %q lacks the backend prefix", err)
	}
}
