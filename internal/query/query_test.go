package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alevsk/iamgraph/internal/analyzer"
	"github.com/alevsk/iamgraph/internal/graph"
)

func newQueryTestGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New()
	require.NoError(t, g.AddNode(&graph.Node{ID: "user:bob", Type: graph.NodeUser}))
	require.NoError(t, g.AddNode(&graph.Node{ID: "sa:s1@p.iam", Type: graph.NodeServiceAccount}))
	require.NoError(t, g.AddNode(&graph.Node{ID: "project:p", Type: graph.NodeProject}))
	require.NoError(t, g.AddNode(&graph.Node{ID: "role:roles/owner", Type: graph.NodeRole, Name: "roles/owner", Properties: map[string]interface{}{
		"permissions": []string{"resourcemanager.projects.setIamPolicy"},
	}}))
	require.NoError(t, g.AddEdge(&graph.Edge{Source: "user:bob", Target: "sa:s1@p.iam", Type: graph.EdgeCanImpersonateSA}))
	require.NoError(t, g.AddEdge(&graph.Edge{Source: "sa:s1@p.iam", Target: "project:p", Type: graph.EdgeRunsAs}))
	require.NoError(t, g.AddEdge(&graph.Edge{
		Source: "user:bob", Target: "role:roles/owner", Type: graph.EdgeHasRole,
		Properties: map[string]interface{}{"resource": "project:p", "role": "roles/owner"},
	}))
	return g
}

func TestEngine_FindShortestPath(t *testing.T) {
	g := newQueryTestGraph(t)
	eng := New(g, analyzer.DefaultConfig())

	p := eng.FindShortestPath("user:bob", "project:p")
	require.NotNil(t, p)
	assert.Equal(t, []string{"user:bob", "sa:s1@p.iam", "project:p"}, idsOf(p.PathNodes))

	assert.Nil(t, eng.FindShortestPath("user:bob", "nonexistent"))
}

func TestEngine_FindAllPaths(t *testing.T) {
	g := newQueryTestGraph(t)
	eng := New(g, analyzer.DefaultConfig())
	paths := eng.FindAllPaths("user:bob", "project:p", 5)
	require.Len(t, paths, 1)
	assert.Equal(t, "user:bob", paths[0].SourceNode.ID)
	assert.Equal(t, "project:p", paths[0].TargetNode.ID)
}

func TestEngine_GetNodePermissions(t *testing.T) {
	g := newQueryTestGraph(t)
	eng := New(g, analyzer.DefaultConfig())
	perms := eng.GetNodePermissions("user:bob")
	assert.Contains(t, perms["project:p"], "resourcemanager.projects.setIamPolicy")
}

func TestEngine_CanAccessResource(t *testing.T) {
	g := newQueryTestGraph(t)
	eng := New(g, analyzer.DefaultConfig())
	assert.True(t, eng.CanAccessResource("user:bob", "project:p"))
	assert.False(t, eng.CanAccessResource("project:p", "user:bob"))
}

func idsOf(nodes []*graph.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID
	}
	return out
}
