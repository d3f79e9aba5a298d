package query_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/alevsk/iamgraph/internal/analyzer"
	"github.com/alevsk/iamgraph/internal/builder"
	"github.com/alevsk/iamgraph/internal/collected"
	"github.com/alevsk/iamgraph/internal/graph"
	"github.com/alevsk/iamgraph/internal/query"
)

func singleHopDoc() *collected.Document {
	doc := &collected.Document{}
	doc.Data.Hierarchy.Projects = map[string]collected.ProjectEntry{"p": {}}
	doc.Data.Identity.ServiceAccounts = map[string]collected.ServiceAccountEntry{
		"s1@p.iam.gserviceaccount.com": {Project: "p"},
	}
	doc.Data.IAM.Policies.Projects = map[string][]collected.Binding{
		"project:p": {
			{
				Role:     "roles/iam.serviceAccountTokenCreator",
				Members:  []string{"user:bob"},
				Resource: "sa:s1@p.iam.gserviceaccount.com",
			},
		},
	}
	return doc
}

var _ = Describe("simulating a binding addition", func() {
	It("surfaces the newly reachable impersonation path with a positive risk delta", func() {
		doc := &collected.Document{}
		doc.Data.Hierarchy.Projects = map[string]collected.ProjectEntry{"p": {}}
		doc.Data.Identity.ServiceAccounts = map[string]collected.ServiceAccountEntry{
			"target@p.iam.gserviceaccount.com": {Project: "p"},
		}

		g, _ := builder.Build(doc, builder.DefaultOptions())
		Expect(g.Reachable("user:eve", "sa:target@p.iam.gserviceaccount.com")).To(BeFalse())

		eng := query.New(g, analyzer.DefaultConfig())
		result := eng.SimulateBindingAddition(
			"user:eve", "roles/iam.serviceAccountTokenCreator", "sa:target@p.iam.gserviceaccount.com",
			builder.DefaultOptions(),
		)

		Expect(result.Error).To(BeEmpty())
		Expect(result.RiskDelta).To(BeNumerically(">", 0))
		Expect(result.NewPaths).NotTo(BeEmpty())

		found := false
		for _, p := range result.NewPaths {
			if p.SourceNode.ID == "user:eve" && p.TargetNode.ID == "sa:target@p.iam.gserviceaccount.com" {
				for _, e := range p.PathEdges {
					if e.Type == graph.EdgeCanImpersonateSA {
						found = true
					}
				}
			}
		}
		Expect(found).To(BeTrue())

		// The original graph must be untouched by the simulation.
		Expect(g.Reachable("user:eve", "sa:target@p.iam.gserviceaccount.com")).To(BeFalse())
	})
})

var _ = Describe("simulating a binding removal", func() {
	It("breaks the original critical path with a negative risk delta", func() {
		g, _ := builder.Build(singleHopDoc(), builder.DefaultOptions())
		Expect(g.HasEdge("user:bob", "sa:s1@p.iam.gserviceaccount.com", graph.EdgeCanImpersonateSA)).To(BeTrue())

		eng := query.New(g, analyzer.DefaultConfig())
		result := eng.SimulateBindingRemoval(
			"user:bob", "roles/iam.serviceAccountTokenCreator", "sa:s1@p.iam.gserviceaccount.com",
			builder.DefaultOptions(),
		)

		Expect(result.Error).To(BeEmpty())
		Expect(result.RiskDelta).To(BeNumerically("<", 0))

		found := false
		for _, p := range result.BrokenPaths {
			if p.SourceNode.ID == "user:bob" && p.TargetNode.ID == "sa:s1@p.iam.gserviceaccount.com" {
				found = true
			}
		}
		Expect(found).To(BeTrue())

		// The original graph must be untouched by the simulation.
		Expect(g.HasEdge("user:bob", "sa:s1@p.iam.gserviceaccount.com", graph.EdgeCanImpersonateSA)).To(BeTrue())
	})

	It("reports an error for a binding that was never granted", func() {
		g, _ := builder.Build(singleHopDoc(), builder.DefaultOptions())
		eng := query.New(g, analyzer.DefaultConfig())
		result := eng.SimulateBindingRemoval(
			"user:nobody", "roles/owner", "project:p", builder.DefaultOptions(),
		)
		Expect(result.Error).NotTo(BeEmpty())
	})
})

var _ = Describe("group-expanded permission resolution", func() {
	It("resolves a group member's permissions and project reachability", func() {
		doc := &collected.Document{}
		doc.Data.Hierarchy.Projects = map[string]collected.ProjectEntry{"p": {}}
		doc.Data.Identity.Groups = map[string]collected.GroupEntry{"admins@ex.com": {}}
		doc.Data.Identity.GroupMemberships = map[string][]string{
			"admins@ex.com": {"user:alice"},
		}
		doc.Data.IAM.Roles.Predefined = map[string]collected.RoleEntry{
			"roles/owner": {Permissions: []string{"resourcemanager.projects.setIamPolicy", "resourcemanager.projects.get"}},
		}
		doc.Data.IAM.Policies.Projects = map[string][]collected.Binding{
			"project:p": {
				{Role: "roles/owner", Members: []string{"group:admins@ex.com"}, Resource: "project:p"},
			},
		}

		g, _ := builder.Build(doc, builder.DefaultOptions())
		Expect(g.HasEdge("user:alice", "group:admins@ex.com", graph.EdgeMemberOf)).To(BeTrue())

		eng := query.New(g, analyzer.DefaultConfig())

		groupPerms := eng.GetNodePermissions("group:admins@ex.com")
		Expect(groupPerms["project:p"]).To(ContainElements(
			"resourcemanager.projects.setIamPolicy", "resourcemanager.projects.get",
		))

		Expect(eng.CanAccessResource("user:alice", "group:admins@ex.com")).To(BeTrue())
		Expect(eng.CanAccessResource("user:alice", "project:p")).To(BeTrue())
	})
})
