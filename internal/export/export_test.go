package export

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alevsk/iamgraph/internal/graph"
)

func TestParseType(t *testing.T) {
	tests := []struct {
		input   string
		want    Type
		wantErr bool
	}{
		{"json", TypeJSON, false},
		{"yaml", TypeYAML, false},
		{"table", TypeTable, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseType(tt.input)
		if tt.wantErr {
			assert.Error(t, err)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestFromGraph(t *testing.T) {
	g := graph.New()
	require.NoError(t, g.AddNode(&graph.Node{ID: "user:a", Type: graph.NodeUser}))
	require.NoError(t, g.AddNode(&graph.Node{ID: "project:p", Type: graph.NodeProject}))
	require.NoError(t, g.AddEdge(&graph.Edge{Source: "user:a", Target: "project:p", Type: graph.EdgeHasRole}))

	exp := FromGraph(g)
	assert.Equal(t, 2, exp.Metadata.TotalNodes)
	assert.Equal(t, 1, exp.Metadata.TotalEdges)
	assert.Equal(t, 1, exp.Metadata.NodeTypes[string(graph.NodeUser)])

	f, err := NewFormatter(TypeJSON)
	require.NoError(t, err)
	out, err := f.Format(exp)
	require.NoError(t, err)

	var roundtrip GraphExport
	require.NoError(t, json.Unmarshal([]byte(out), &roundtrip))
	assert.Len(t, roundtrip.Nodes, 2)
	assert.Len(t, roundtrip.Edges, 1)
}

func TestYAMLFormatter(t *testing.T) {
	g := graph.New()
	require.NoError(t, g.AddNode(&graph.Node{ID: "user:a", Type: graph.NodeUser}))
	exp := FromGraph(g)

	f, err := NewFormatter(TypeYAML)
	require.NoError(t, err)
	out, err := f.Format(exp)
	require.NoError(t, err)
	assert.Contains(t, out, "total_nodes: 1")
}
