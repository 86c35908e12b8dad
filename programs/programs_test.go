package programs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DemoGo/StarPlatWorkingBranch/ast"
)

func names(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	return out
}

func TestAll_Sorted(t *testing.T) {
	assert.Equal(t, []string{"bc", "cc", "pagerank", "sssp", "tc"}, names(All()))
}

func TestLookup(t *testing.T) {
	e, ok := Lookup("sssp")
	require.True(t, ok)
	assert.Equal(t, "Compute_SSSP", e.Build().Functions[0].Name)

	_, ok = Lookup("apsp")
	assert.False(t, ok)
}

func TestMatch(t *testing.T) {
	tests := []struct {
		pattern string
		want    []string
	}{
		{"*", []string{"bc", "cc", "pagerank", "sssp", "tc"}},
		{"*c", []string{"bc", "cc", "tc"}},
		{"s*", []string{"sssp"}},
		{"{tc,bc}", []string{"bc", "tc"}},
		{"pagerank", []string{"pagerank"}},
	}
	for _, tt := range tests {
		got, err := Match(tt.pattern)
		require.NoError(t, err, tt.pattern)
		assert.Equal(t, tt.want, names(got), tt.pattern)
	}
}

func TestMatch_Errors(t *testing.T) {
	_, err := Match("[")
	assert.ErrorContains(t, err, "invalid program pattern")

	_, err = Match("mst*")
	assert.ErrorContains(t, err, "no program matches")
}

// Every program must carry the usage flags its body needs.
func TestPrograms_UsageCoversAdjacency(t *testing.T) {
	for _, e := range All() {
		fn := e.Build().Functions[0]
		_, hasGraph := fn.GraphParam()
		require.True(t, hasGraph, e.Name)

		var out, in bool
		ast.Inspect(fn.Body, func(node any) bool {
			if f, ok := node.(ast.ForAll); ok {
				switch f.Source.(type) {
				case ast.Neighbors:
					out = true
				case ast.InNeighbors:
					in = true
				}
			}
			return true
		})
		if out {
			assert.True(t, fn.Usage.MetaUsed && fn.Usage.DataUsed, e.Name)
		}
		if in {
			assert.True(t, fn.Usage.RevMetaUsed && fn.Usage.SrcUsed, e.Name)
		}
	}
}

func TestBuild_ReturnsFreshTrees(t *testing.T) {
	a, b := SSSP(), SSSP()
	a.Functions[0].Name = "changed"
	assert.Equal(t, "Compute_SSSP", b.Functions[0].Name)
}
