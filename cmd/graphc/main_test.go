package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runGraphc(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), &stdout, &stderr, args)
	return stdout.String(), stderr.String(), err
}

func exitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return 1
}

func TestGenerate_WritesArtifacts(t *testing.T) {
	dir := t.TempDir()
	stdout, _, err := runGraphc(t, "generate", "-t", "cuda", "-o", dir, "--manifest", "sssp")
	require.NoError(t, err)

	assert.Contains(t, stdout, "sssp.h")
	assert.Contains(t, stdout, "sssp.cu")

	header, err := os.ReadFile(filepath.Join(dir, "sssp.h"))
	require.NoError(t, err)
	assert.Contains(t, string(header), "GENCUDA_SSSP_H")

	impl, err := os.ReadFile(filepath.Join(dir, "sssp.cu"))
	require.NoError(t, err)
	assert.Contains(t, string(impl), "<<<")

	_, err = os.Stat(filepath.Join(dir, "sssp.manifest.yaml"))
	require.NoError(t, err)

	stdout, _, err = runGraphc(t, "verify", dir, "sssp.manifest.yaml")
	require.NoError(t, err)
	assert.Contains(t, stdout, "2 artifacts ok")
}

func TestGenerate_VerifyDetectsTampering(t *testing.T) {
	dir := t.TempDir()
	_, _, err := runGraphc(t, "generate", "-t", "openmp", "-o", dir, "--manifest", "cc")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cc.cpp"), []byte("// edited\n"), 0o644))

	_, _, err = runGraphc(t, "verify", dir, "cc.manifest.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "digest")
}

func TestGenerate_PatternsAndConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(t.TempDir(), "graphc.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("target: openacc\nprograms: [\"*c\"]\n"), 0o600))

	_, _, err := runGraphc(t, "generate", "--config", cfgPath, "-o", dir)
	require.NoError(t, err)

	for _, name := range []string{"bc.h", "bc.cpp", "cc.h", "cc.cpp", "tc.h", "tc.cpp"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
	_, err = os.Stat(filepath.Join(dir, "sssp.h"))
	assert.True(t, os.IsNotExist(err))

	impl, err := os.ReadFile(filepath.Join(dir, "cc.cpp"))
	require.NoError(t, err)
	assert.Contains(t, string(impl), "#pragma acc")
}

func TestGenerate_UsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown target", []string{"generate", "-t", "metal", "sssp"}, "unknown target"},
		{"threads too large", []string{"generate", "--threads", "2048", "sssp"}, "threads_per_block"},
		{"no match", []string{"generate", "nothing*"}, "nothing*"},
		{"base with many programs", []string{"generate", "--base", "x", "sssp", "cc"}, "--base"},
		{"bad log format", []string{"generate", "--log-format", "xml", "sssp"}, "log_format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runGraphc(t, append(tt.args, "-o", t.TempDir())...)
			require.Error(t, err)
			assert.Equal(t, 2, exitCode(err))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestGenerate_BaseName(t *testing.T) {
	dir := t.TempDir()
	_, _, err := runGraphc(t, "generate", "-o", dir, "--base", "kernels", "pagerank")
	require.NoError(t, err)

	header, err := os.ReadFile(filepath.Join(dir, "kernels.h"))
	require.NoError(t, err)
	assert.Contains(t, string(header), "GENHIP_KERNELS_H")
	_, err = os.Stat(filepath.Join(dir, "kernels.cpp"))
	assert.NoError(t, err)
}

func TestGenerate_JSONLogs(t *testing.T) {
	_, stderr, err := runGraphc(t, "generate", "-o", t.TempDir(), "--log-format", "json", "tc")
	require.NoError(t, err)
	assert.Contains(t, stderr, `"program":"tc"`)
}

func TestPrograms(t *testing.T) {
	stdout, _, err := runGraphc(t, "programs")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[0], "bc"))

	stdout, _, err = runGraphc(t, "programs", "s*")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(stdout, "\n"))
	assert.Contains(t, stdout, "sssp")
}

func TestTargets(t *testing.T) {
	stdout, _, err := runGraphc(t, "targets")
	require.NoError(t, err)
	assert.Contains(t, stdout, "cuda")
	assert.Contains(t, stdout, ".cu")
	assert.Contains(t, stdout, "openacc")
	assert.Contains(t, stdout, "directive")
}

func TestVersion(t *testing.T) {
	stdout, _, err := runGraphc(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, stdout, Version)
}
