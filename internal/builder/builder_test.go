package builder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alevsk/iamgraph/internal/collected"
	"github.com/alevsk/iamgraph/internal/graph"
)

func docWithDangerousBinding() *collected.Document {
	doc := &collected.Document{}
	doc.Data.Hierarchy.Projects = map[string]collected.ProjectEntry{
		"p-1": {DisplayName: "Project One"},
	}
	doc.Data.Identity.ServiceAccounts = map[string]collected.ServiceAccountEntry{
		"victim@p-1.iam.gserviceaccount.com": {Project: "p-1"},
	}
	doc.Data.IAM.Policies.Projects = map[string][]collected.Binding{
		"project:p-1": {
			{
				Role:     "roles/iam.serviceAccountTokenCreator",
				Members:  []string{"user:attacker@ex.com"},
				Resource: "project:p-1",
			},
		},
	}
	return doc
}

func TestBuild_DangerousRoleSynthesizesEscalationEdge(t *testing.T) {
	g, md := Build(docWithDangerousBinding(), DefaultOptions())
	require.NotNil(t, g)

	assert.True(t, g.HasNode("user:attacker@ex.com"))
	assert.True(t, g.HasNode("sa:victim@p-1.iam.gserviceaccount.com"))
	assert.True(t, g.HasEdge("user:attacker@ex.com", "role:roles/iam.serviceAccountTokenCreator", graph.EdgeHasRole))
	assert.True(t, g.HasEdge("user:attacker@ex.com", "sa:victim@p-1.iam.gserviceaccount.com", graph.EdgeCanImpersonateSA))
	assert.Equal(t, 0, md.SkippedEdges)
}

func TestBuild_SelfEdgeSuppressed(t *testing.T) {
	doc := &collected.Document{}
	doc.Data.Identity.ServiceAccounts = map[string]collected.ServiceAccountEntry{
		"self@p-1.iam.gserviceaccount.com": {Project: "p-1"},
	}
	doc.Data.IAM.Policies.Projects = map[string][]collected.Binding{
		"project:p-1": {
			{
				Role:     "roles/iam.serviceAccountTokenCreator",
				Members:  []string{"serviceAccount:self@p-1.iam.gserviceaccount.com"},
				Resource: "project:p-1",
			},
		},
	}
	g, _ := Build(doc, DefaultOptions())
	assert.False(t, g.HasEdge("sa:self@p-1.iam.gserviceaccount.com", "sa:self@p-1.iam.gserviceaccount.com", graph.EdgeCanImpersonateSA))
}

func TestBuild_UnparseableMemberBecomesSpecialNode(t *testing.T) {
	doc := &collected.Document{}
	doc.Data.IAM.Policies.Projects = map[string][]collected.Binding{
		"project:p-1": {
			{Role: "roles/viewer", Members: []string{"not-a-valid-member-string"}, Resource: "project:p-1"},
		},
	}
	g, _ := Build(doc, DefaultOptions())
	assert.True(t, g.HasNode("special:not-a-valid-member-string"))
}

func TestBuild_DuplicateBindingDeduped(t *testing.T) {
	doc := &collected.Document{}
	doc.Data.IAM.Policies.Projects = map[string][]collected.Binding{
		"project:p-1": {
			{Role: "roles/viewer", Members: []string{"user:a@ex.com"}, Resource: "project:p-1"},
		},
		"project:p-2": {
			{Role: "roles/viewer", Members: []string{"user:a@ex.com"}, Resource: "project:p-2"},
		},
	}
	g, _ := Build(doc, DefaultOptions())
	edges := g.OutEdges("user:a@ex.com", graph.EdgeHasRole)
	require.Len(t, edges, 1)
	assert.Equal(t, "project:p-2", edges[0].Properties["resource"])
}

func TestBuild_ConditionalBindingDampensRisk(t *testing.T) {
	doc := &collected.Document{}
	doc.Data.IAM.Policies.Projects = map[string][]collected.Binding{
		"project:p-1": {
			{
				Role:     "roles/viewer",
				Members:  []string{"user:a@ex.com"},
				Resource: "project:p-1",
				Condition: map[string]interface{}{
					"expression": `resource.name == "foo"`,
				},
			},
		},
	}
	g, _ := Build(doc, DefaultOptions())
	edge := g.Edge("user:a@ex.com", "role:roles/viewer", graph.EdgeHasRole)
	require.NotNil(t, edge)
	assert.True(t, edge.HasCondition())
	assert.Equal(t, graph.ConditionStatic, edge.ConditionClass())
}

func TestBuild_HierarchyIsAcyclic(t *testing.T) {
	doc := &collected.Document{}
	doc.Data.Hierarchy.Organizations = map[string]collected.OrgEntry{"o-1": {}}
	doc.Data.Hierarchy.Folders = map[string]collected.FolderEntry{
		"f-1": {Parent: "organizations/o-1"},
	}
	doc.Data.Hierarchy.Projects = map[string]collected.ProjectEntry{
		"p-1": {Parent: "folders/f-1"},
	}
	g, _ := Build(doc, DefaultOptions())
	assert.True(t, g.HasEdge("org:o-1", "folder:f-1", graph.EdgeParentOf))
	assert.True(t, g.HasEdge("folder:f-1", "project:p-1", graph.EdgeParentOf))
}

func TestBuild_TagBindingEscalation(t *testing.T) {
	doc := &collected.Document{}
	doc.Data.Tags.TagKeys = map[string]collected.TagKeyEntry{
		"tk-1": {ShortName: "env"},
	}
	doc.Data.Tags.TagValues = map[string]collected.TagValueEntry{
		"tv-1": {ShortName: "prod", TagKey: "tk-1"},
	}
	doc.Data.Tags.TagBindings = []collected.TagBinding{
		{Resource: "project:p-1", TagValue: "tv-1", TagValueHolder: "user:tagger@ex.com"},
	}
	doc.Data.IAM.Policies.Projects = map[string][]collected.Binding{
		"project:p-1": {
			{
				Role:     "roles/viewer",
				Members:  []string{"user:a@ex.com"},
				Resource: "project:p-1",
				Condition: map[string]interface{}{
					"expression": `resource.name == "foo"`,
				},
			},
		},
	}

	g, _ := Build(doc, DefaultOptions())

	assert.True(t, g.HasNode("resource:tag_keys:tk-1"))
	assert.True(t, g.HasNode("resource:tag_values:tv-1"))
	assert.Equal(t, "tag", g.Node("resource:tag_keys:tk-1").Properties["resource_kind"])
	assert.Equal(t, "tag_value", g.Node("resource:tag_values:tv-1").Properties["resource_kind"])
	assert.True(t, g.HasEdge("resource:tag_keys:tk-1", "resource:tag_values:tv-1", graph.EdgeParentOf))
	assert.True(t, g.HasEdge("user:tagger@ex.com", "user:a@ex.com", graph.EdgeHasTagBindingEscalation))
}
