package analyzer_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/alevsk/iamgraph/internal/analyzer"
	"github.com/alevsk/iamgraph/internal/builder"
	"github.com/alevsk/iamgraph/internal/collected"
	"github.com/alevsk/iamgraph/internal/graph"
)

var _ = Describe("two-step escalation", func() {
	It("synthesizes can_deploy_function_as and surfaces a critical_multi_step path", func() {
		doc := &collected.Document{}
		doc.Data.Hierarchy.Projects = map[string]collected.ProjectEntry{"p": {}}
		doc.Data.Identity.ServiceAccounts = map[string]collected.ServiceAccountEntry{
			"powerful@p.iam.gserviceaccount.com": {Project: "p"},
		}
		doc.Data.IAM.Policies.Projects = map[string][]collected.Binding{
			"project:p": {
				{Role: "roles/cloudfunctions.admin", Members: []string{"user:bob@ex.com"}, Resource: "project:p"},
				{Role: "roles/owner", Members: []string{"serviceAccount:powerful@p.iam.gserviceaccount.com"}, Resource: "project:p"},
			},
		}

		g, _ := builder.Build(doc, builder.DefaultOptions())
		Expect(g.HasEdge("user:bob@ex.com", "sa:powerful@p.iam.gserviceaccount.com", graph.EdgeCanDeployFunctionAs)).To(BeTrue())

		result := analyzer.New(analyzer.DefaultConfig()).Run(g)
		multiStep := result.AttackPaths[analyzer.CategoryCriticalMultiStep]

		found := false
		for _, p := range multiStep {
			if p.SourceNode.ID == "user:bob@ex.com" && p.TargetNode.ID == "project:p" {
				found = true
				Expect(p.RiskScore).To(BeNumerically(">=", 0.85))
			}
		}
		Expect(found).To(BeTrue())
	})
})

var _ = Describe("dangerous-role synthesis scoping", func() {
	It("only derives edges to service accounts in the same project", func() {
		doc := &collected.Document{}
		doc.Data.Hierarchy.Projects = map[string]collected.ProjectEntry{"p": {}, "other": {}}
		doc.Data.Identity.ServiceAccounts = map[string]collected.ServiceAccountEntry{
			"a@p.iam.gserviceaccount.com":         {Project: "p"},
			"b@p.iam.gserviceaccount.com":         {Project: "p"},
			"c@other.iam.gserviceaccount.com":     {Project: "other"},
		}
		doc.Data.IAM.Policies.Projects = map[string][]collected.Binding{
			"project:p": {
				{Role: "roles/compute.admin", Members: []string{"user:u@ex.com"}, Resource: "project:p"},
			},
		}

		g, _ := builder.Build(doc, builder.DefaultOptions())
		Expect(g.HasEdge("user:u@ex.com", "sa:a@p.iam.gserviceaccount.com", graph.EdgeCanActAsViaVM)).To(BeTrue())
		Expect(g.HasEdge("user:u@ex.com", "sa:b@p.iam.gserviceaccount.com", graph.EdgeCanActAsViaVM)).To(BeTrue())
		Expect(g.HasEdge("user:u@ex.com", "sa:c@other.iam.gserviceaccount.com", graph.EdgeCanActAsViaVM)).To(BeFalse())
	})
})
