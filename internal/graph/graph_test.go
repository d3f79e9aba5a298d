package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddEdge_RejectsUnknownEndpoints(t *testing.T) {
	g := New()
	require.NoError(t, g.AddNode(&Node{ID: "user:a", Type: NodeUser}))
	err := g.AddEdge(&Edge{Source: "user:a", Target: "user:ghost", Type: EdgeMemberOf})
	var notFound *ErrNodeNotFound
	assert.ErrorAs(t, err, &notFound)
}

func TestAddEdge_DetectsParentOfCycle(t *testing.T) {
	g := New()
	require.NoError(t, g.AddNode(&Node{ID: "org:1", Type: NodeOrganization}))
	require.NoError(t, g.AddNode(&Node{ID: "folder:1", Type: NodeFolder}))
	require.NoError(t, g.AddEdge(&Edge{Source: "org:1", Target: "folder:1", Type: EdgeParentOf}))

	err := g.AddEdge(&Edge{Source: "folder:1", Target: "org:1", Type: EdgeParentOf})
	var cycle *ErrCycleDetected
	assert.ErrorAs(t, err, &cycle)
}

func TestAddEdge_DerivedSelfEdgeSilentlyDropped(t *testing.T) {
	g := New()
	require.NoError(t, g.AddNode(&Node{ID: "sa:a", Type: NodeServiceAccount}))
	err := g.AddEdge(&Edge{Source: "sa:a", Target: "sa:a", Type: EdgeCanImpersonate})
	assert.NoError(t, err)
	assert.False(t, g.HasEdge("sa:a", "sa:a", EdgeCanImpersonate))
}

func TestAddEdge_DuplicateRejected(t *testing.T) {
	g := New()
	require.NoError(t, g.AddNode(&Node{ID: "user:a", Type: NodeUser}))
	require.NoError(t, g.AddNode(&Node{ID: "role:viewer", Type: NodeRole}))
	require.NoError(t, g.AddEdge(&Edge{Source: "user:a", Target: "role:viewer", Type: EdgeHasRole}))
	err := g.AddEdge(&Edge{Source: "user:a", Target: "role:viewer", Type: EdgeHasRole})
	var dup *ErrDuplicateEdge
	assert.ErrorAs(t, err, &dup)
}

func TestSimplePaths_RespectsMaxLengthAndNoRepeats(t *testing.T) {
	g := New()
	for _, id := range []string{"a", "b", "c", "d"} {
		require.NoError(t, g.AddNode(&Node{ID: "user:" + id, Type: NodeUser}))
	}
	require.NoError(t, g.AddEdge(&Edge{Source: "user:a", Target: "user:b", Type: EdgeMemberOf}))
	require.NoError(t, g.AddEdge(&Edge{Source: "user:b", Target: "user:c", Type: EdgeMemberOf}))
	require.NoError(t, g.AddEdge(&Edge{Source: "user:c", Target: "user:d", Type: EdgeMemberOf}))
	require.NoError(t, g.AddEdge(&Edge{Source: "user:b", Target: "user:d", Type: EdgeMemberOf}))

	paths := g.SimplePaths("user:a", "user:d", 5)
	require.Len(t, paths, 2)
	for _, p := range paths {
		seen := map[string]bool{}
		for _, n := range p {
			assert.False(t, seen[n], "path must not repeat nodes")
			seen[n] = true
		}
	}

	short := g.SimplePaths("user:a", "user:d", 2)
	require.Len(t, short, 1)
	assert.Equal(t, []string{"user:a", "user:b", "user:d"}, short[0])
}

func TestEdgeRiskScore_ConditionDampensAuditBoosts(t *testing.T) {
	e := &Edge{Type: EdgeCanImpersonateSA}
	base := e.RiskScore(nil)

	e.Properties = map[string]interface{}{"condition": map[string]interface{}{}}
	assert.InDelta(t, base*edgeConditionDamping, e.RiskScore(nil), 1e-9)

	e.Properties["confirmed_by_audit"] = true
	assert.InDelta(t, base*edgeConditionDamping*edgeAuditConfirmedBoost, e.RiskScore(nil), 1e-9)
}

func TestEdgeRiskScore_HasRoleVariesByDangerousRole(t *testing.T) {
	safe := &Edge{Type: EdgeHasRole, Target: "role:roles/viewer"}
	assert.InDelta(t, hasRoleMinRisk, safe.RiskScore([]string{"roles/owner"}), 1e-9)

	dangerous := &Edge{Type: EdgeHasRole, Target: "role:roles/owner"}
	assert.InDelta(t, hasRoleMaxRisk, dangerous.RiskScore([]string{"roles/owner"}), 1e-9)
}

func TestClone_IsIndependent(t *testing.T) {
	g := New()
	require.NoError(t, g.AddNode(&Node{ID: "user:a", Type: NodeUser}))
	require.NoError(t, g.AddNode(&Node{ID: "role:viewer", Type: NodeRole}))
	require.NoError(t, g.AddEdge(&Edge{Source: "user:a", Target: "role:viewer", Type: EdgeHasRole}))

	clone := g.Clone()
	clone.RemoveEdge("user:a", "role:viewer", EdgeHasRole)

	assert.True(t, g.HasEdge("user:a", "role:viewer", EdgeHasRole))
	assert.False(t, clone.HasEdge("user:a", "role:viewer", EdgeHasRole))
}
