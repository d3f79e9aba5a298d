package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alevsk/iamgraph/internal/graph"
)

func newTestGraph(t *testing.T) *graph.Graph {
	t.Helper()
	return graph.New()
}

func TestRun_SingleHopImpersonation(t *testing.T) {
	g := newTestGraph(t)
	require.NoError(t, g.AddNode(&graph.Node{ID: "project:p", Type: graph.NodeProject}))
	require.NoError(t, g.AddNode(&graph.Node{ID: "user:bob", Type: graph.NodeUser}))
	require.NoError(t, g.AddNode(&graph.Node{ID: "sa:s1@p.iam", Type: graph.NodeServiceAccount}))
	require.NoError(t, g.AddNode(&graph.Node{ID: "role:roles/iam.serviceAccountTokenCreator", Type: graph.NodeRole}))
	require.NoError(t, g.AddEdge(&graph.Edge{Source: "user:bob", Target: "role:roles/iam.serviceAccountTokenCreator", Type: graph.EdgeHasRole}))
	require.NoError(t, g.AddEdge(&graph.Edge{Source: "user:bob", Target: "sa:s1@p.iam", Type: graph.EdgeCanImpersonateSA}))

	result := New(DefaultConfig()).Run(g)

	critical := result.AttackPaths[CategoryCritical]
	require.Len(t, critical, 1)
	assert.GreaterOrEqual(t, critical[0].RiskScore, 0.9)
	assert.Equal(t, "user:bob", critical[0].SourceNode.ID)
	assert.Equal(t, "sa:s1@p.iam", critical[0].TargetNode.ID)
	assert.True(t, g.Reachable("user:bob", "sa:s1@p.iam"))
}

func TestRun_DangerousRoleSynthesisScopedToProject(t *testing.T) {
	g := newTestGraph(t)
	require.NoError(t, g.AddNode(&graph.Node{ID: "user:u", Type: graph.NodeUser}))
	require.NoError(t, g.AddNode(&graph.Node{ID: "role:roles/compute.admin", Type: graph.NodeRole}))
	require.NoError(t, g.AddNode(&graph.Node{ID: "sa:a@p.iam", Type: graph.NodeServiceAccount, Properties: map[string]interface{}{"project": "p"}}))
	require.NoError(t, g.AddNode(&graph.Node{ID: "sa:b@p.iam", Type: graph.NodeServiceAccount, Properties: map[string]interface{}{"project": "p"}}))
	require.NoError(t, g.AddNode(&graph.Node{ID: "sa:c@other.iam", Type: graph.NodeServiceAccount, Properties: map[string]interface{}{"project": "other"}}))
	require.NoError(t, g.AddEdge(&graph.Edge{
		Source: "user:u", Target: "role:roles/compute.admin", Type: graph.EdgeHasRole,
		Properties: map[string]interface{}{"resource": "project:p", "role": "roles/compute.admin"},
	}))

	// Escalation synthesis normally happens in the builder; exercise it the
	// same way by adding the derived edges the builder would produce and
	// asserting the analyzer only ever sees the in-project ones.
	require.NoError(t, g.AddEdge(&graph.Edge{Source: "user:u", Target: "sa:a@p.iam", Type: graph.EdgeCanActAsViaVM}))
	require.NoError(t, g.AddEdge(&graph.Edge{Source: "user:u", Target: "sa:b@p.iam", Type: graph.EdgeCanActAsViaVM}))

	assert.False(t, g.HasEdge("user:u", "sa:c@other.iam", graph.EdgeCanActAsViaVM))

	result := New(DefaultConfig()).Run(g)
	medium := result.AttackPaths[CategoryMedium]
	assert.Len(t, medium, 2)
}

func TestRun_CriticalNodesThresholded(t *testing.T) {
	g := newTestGraph(t)
	result := New(DefaultConfig()).Run(g)
	assert.Empty(t, result.CriticalNodes)
	assert.Equal(t, 0, result.Statistics.TotalNodes)
}

func TestMultiStepRisk(t *testing.T) {
	assert.InDelta(t, 0.85, multiStepRisk(2), 1e-9)
	assert.InDelta(t, 0.95, multiStepRisk(4), 1e-9)
	assert.InDelta(t, 1.0, multiStepRisk(20), 1e-9)
}
