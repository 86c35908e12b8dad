// Package snapshot_test provides cross-backend snapshot tests for the
// program catalog.
//
// Every catalog program is compiled through all four backends. The output
// is checked for structural soundness and determinism and, when a golden
// file exists in testdata/golden/{target}/, compared with it.
//
// To create or regenerate golden files after intentional changes:
//
//	UPDATE_GOLDEN=1 go test ./snapshot/...
package snapshot_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	starplat "github.com/DemoGo/StarPlatWorkingBranch"
	"github.com/DemoGo/StarPlatWorkingBranch/programs"
)

// ---------------------------------------------------------------------------
// Test Runner
// ---------------------------------------------------------------------------

// TestSnapshots compiles every catalog program for every target.
func TestSnapshots(t *testing.T) {
	for _, entry := range programs.All() {
		for _, target := range starplat.Targets() {
			t.Run(entry.Name+"/"+target, func(t *testing.T) {
				result := compile(t, entry, target)

				checkInterface(t, result)
				checkBalanced(t, result.ImplementationName, result.Implementation)
				checkFunctions(t, entry, result)

				again := compile(t, entry, target)
				if diff := cmp.Diff(result, again); diff != "" {
					t.Errorf("output is not deterministic (-first +second):\n%s", diff)
				}

				dir := filepath.Join("testdata", "golden", target)
				compareGolden(t, filepath.Join(dir, result.InterfaceName), result.Interface)
				compareGolden(t, filepath.Join(dir, result.ImplementationName), result.Implementation)
			})
		}
	}
}

// TestSnapshots_TargetsDiffer guards against two backends sharing output.
func TestSnapshots_TargetsDiffer(t *testing.T) {
	entry, ok := programs.Lookup("sssp")
	if !ok {
		t.Fatal("sssp missing from catalog")
	}
	seen := make(map[string]string)
	for _, target := range starplat.Targets() {
		impl := compile(t, entry, target).Implementation
		for other, prev := range seen {
			if prev == impl {
				t.Errorf("%s and %s produced identical implementations", target, other)
			}
		}
		seen[target] = impl
	}
}

// TestSnapshots_GoldenFiles guards the committed goldens: every interface
// and the triangle counting implementation of every target.
func TestSnapshots_GoldenFiles(t *testing.T) {
	for _, target := range starplat.Targets() {
		for _, entry := range programs.All() {
			r := compile(t, entry, target)
			names := []string{r.InterfaceName}
			if entry.Name == "tc" {
				names = append(names, r.ImplementationName)
			}
			for _, name := range names {
				path := filepath.Join("testdata", "golden", target, name)
				if _, err := os.Stat(path); err != nil {
					t.Errorf("golden %s: %v", path, err)
				}
			}
		}
	}
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func compile(t *testing.T, entry programs.Entry, target string) *starplat.Result {
	t.Helper()
	result, err := starplat.Compile(context.Background(), entry.Build(), starplat.Options{
		Target:   target,
		FileName: entry.Name,
	})
	if err != nil {
		t.Fatalf("compile %s for %s: %v", entry.Name, target, err)
	}
	return result
}

func checkInterface(t *testing.T, r *starplat.Result) {
	t.Helper()
	guard := "GEN" + strings.ToUpper(r.Target) + "_" + strings.ToUpper(r.BaseName) + "_H"
	if !strings.HasPrefix(r.Interface, "#ifndef "+guard+"\n#define "+guard+"\n") {
		t.Errorf("interface does not open with guard %s:\n%s", guard, truncate(r.Interface, 200))
	}
	if !strings.HasSuffix(r.Interface, "#endif\n") {
		t.Errorf("interface does not close the guard:\n%s", truncate(r.Interface, 200))
	}
	if !strings.HasPrefix(r.Implementation, `#include "`+r.InterfaceName+`"`) {
		t.Errorf("implementation does not include %s", r.InterfaceName)
	}
}

func checkBalanced(t *testing.T, name, code string) {
	t.Helper()
	for _, pair := range []struct{ open, close string }{{"{", "}"}, {"(", ")"}, {"[", "]"}} {
		if o, c := strings.Count(code, pair.open), strings.Count(code, pair.close); o != c {
			t.Errorf("%s: %d %q against %d %q", name, o, pair.open, c, pair.close)
		}
	}
}

func checkFunctions(t *testing.T, entry programs.Entry, r *starplat.Result) {
	t.Helper()
	for _, fn := range entry.Build().Functions {
		if !strings.Contains(r.Interface, " "+fn.Name+"(") {
			t.Errorf("interface does not declare %s", fn.Name)
		}
		if !strings.Contains(r.Implementation, " "+fn.Name+"(") {
			t.Errorf("implementation does not define %s", fn.Name)
		}
	}
}

// compareGolden compares actual with the golden file at path. Missing
// golden files skip the comparison.
func compareGolden(t *testing.T, path, actual string) {
	t.Helper()

	if os.Getenv("UPDATE_GOLDEN") != "" {
		if mkErr := os.MkdirAll(filepath.Dir(path), 0o755); mkErr != nil {
			t.Fatalf("create golden dir: %v", mkErr)
		}
		if wErr := os.WriteFile(path, []byte(actual), 0o644); wErr != nil {
			t.Fatalf("write golden file: %v", wErr)
		}
		t.Logf("updated golden file: %s", path)
		return
	}

	expected, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		t.Logf("golden file missing: %s (run with UPDATE_GOLDEN=1 to create)", path)
		return
	}
	if err != nil {
		t.Fatalf("read golden file %s: %v", path, err)
	}

	// Git may convert \n to \r\n on Windows checkout.
	expectedStr := strings.ReplaceAll(string(expected), "\r\n", "\n")
	if diff := cmp.Diff(expectedStr, actual); diff != "" {
		t.Errorf("output differs from golden %s (-golden +actual):\n%s", path, diff)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
