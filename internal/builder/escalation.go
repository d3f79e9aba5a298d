package builder

import (
	"strings"

	"github.com/alevsk/iamgraph/internal/graph"
)

// dangerousRoleRule associates a role-name substring with the derived edge
// kind synthesized for every has_role binding on a matching role. This is
// the exhaustive table; order doesn't matter since patterns don't overlap.
type dangerousRoleRule struct {
	pattern string
	kind    graph.EdgeType
}

var dangerousRoleTable = []dangerousRoleRule{
	{"roles/iam.serviceAccountTokenCreator", graph.EdgeCanImpersonateSA},
	{"roles/iam.serviceAccountKeyAdmin", graph.EdgeCanCreateServiceAccountKey},
	{"roles/iam.serviceAccountAdmin", graph.EdgeCanCreateServiceAccountKey},
	{"roles/compute.admin", graph.EdgeCanActAsViaVM},
	{"roles/compute.instanceAdmin", graph.EdgeCanActAsViaVM},
	{"roles/cloudfunctions.admin", graph.EdgeCanDeployFunctionAs},
	{"roles/cloudfunctions.developer", graph.EdgeCanDeployFunctionAs},
	{"roles/run.admin", graph.EdgeCanDeployCloudRunAs},
	{"roles/run.developer", graph.EdgeCanDeployCloudRunAs},
	{"roles/cloudbuild.builds.editor", graph.EdgeCanTriggerBuildAs},
	{"roles/container.admin", graph.EdgeCanDeployGKEPodAs},
	{"roles/container.developer", graph.EdgeCanDeployGKEPodAs},
}

// buildEscalation synthesizes derived-escalation edges. It is phase 6 (the
// final phase) of the pipeline: for every has_role edge whose role matches
// the dangerous-role table, emit the corresponding derived edge from the
// role-holder to every service account in the same project scope.
func (b *Builder) buildEscalation() {
	saByProject := b.serviceAccountsByProject()

	for _, node := range b.g.Nodes() {
		if node.Type != graph.NodeRole && node.Type != graph.NodeCustomRole {
			continue
		}
		kind, matched := matchDangerousRole(node.ID)
		if !matched {
			continue
		}
		for _, edge := range b.g.InEdges(node.ID, graph.EdgeHasRole) {
			resource := edgeStringProp(edge, "resource")
			role := edgeStringProp(edge, "role")

			// A binding scoped directly to one service account (the common
			// real-world shape for roles/iam.serviceAccountTokenCreator)
			// grants escalation to that SA alone, not to every SA in
			// whatever project the resource string happens to parse as.
			if saID := resolveDirectServiceAccount(b.g, resource); saID != "" {
				if saID != edge.Source {
					if err := b.g.AddEdge(&graph.Edge{
						Source:     edge.Source,
						Target:     saID,
						Type:       kind,
						Properties: map[string]interface{}{"via_role": role, "resource": resource},
					}); err != nil {
						b.warnDup(err)
					}
				}
				continue
			}

			project := projectScope(resource)
			for _, saID := range saByProject[project] {
				if saID == edge.Source {
					continue
				}
				if err := b.g.AddEdge(&graph.Edge{
					Source: edge.Source,
					Target: saID,
					Type:   kind,
					Properties: map[string]interface{}{
						"via_role": role,
						"resource": resource,
					},
				}); err != nil {
					b.warnDup(err)
				}
			}
		}
	}

	b.buildTagBindingEscalation()
	b.buildWorkloadIdentityHijack()
	b.buildExternalImpersonation()
}

func matchDangerousRole(roleNodeID string) (graph.EdgeType, bool) {
	for _, rule := range dangerousRoleTable {
		if strings.Contains(roleNodeID, rule.pattern) {
			return rule.kind, true
		}
	}
	return "", false
}

func edgeStringProp(e *graph.Edge, key string) string {
	v, ok := e.Prop(key)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// serviceAccountsByProject groups service-account node ids by project,
// using the explicit "project" property when present and falling back to
// parsing it out of the standard
// "<name>@<project>.iam.gserviceaccount.com" email shape.
func (b *Builder) serviceAccountsByProject() map[string][]string {
	out := map[string][]string{}
	for _, node := range b.g.Nodes() {
		if node.Type != graph.NodeServiceAccount {
			continue
		}
		project := ""
		if p, ok := node.Prop("project"); ok {
			project, _ = p.(string)
		}
		if project == "" {
			project = inferProjectFromSAEmail(strings.TrimPrefix(node.ID, "sa:"))
		}
		if project == "" {
			continue
		}
		out[project] = append(out[project], node.ID)
	}
	return out
}

// resolveDirectServiceAccount reports whether resource names a service
// account node directly, either as a graph id ("sa:...") or as a bare
// email the builder would have prefixed with "sa:". Returns "" if resource
// doesn't resolve to a known service account.
func resolveDirectServiceAccount(g *graph.Graph, resource string) string {
	if resource == "" {
		return ""
	}
	candidate := resource
	if !strings.HasPrefix(candidate, "sa:") {
		candidate = "sa:" + candidate
	}
	if n := g.Node(candidate); n != nil && n.Type == graph.NodeServiceAccount {
		return candidate
	}
	return ""
}

func inferProjectFromSAEmail(email string) string {
	const suffix = ".iam.gserviceaccount.com"
	at := strings.LastIndex(email, "@")
	if at < 0 || !strings.HasSuffix(email, suffix) {
		return ""
	}
	domain := email[at+1 : len(email)-len(suffix)]
	return domain
}

// buildExternalImpersonation promotes can_impersonate edges whose source
// is a user outside any configured trusted domain into the distinct
// external_principal_can_impersonate kind, so the analyzer and
// visualization layer can flag them without re-deriving domain trust.
func (b *Builder) buildExternalImpersonation() {
	for _, e := range b.g.Edges() {
		if e.Type != graph.EdgeCanImpersonate {
			continue
		}
		if !strings.HasPrefix(e.Source, "user:") {
			continue
		}
		domain := emailDomain(strings.TrimPrefix(e.Source, "user:"))
		if b.isTrustedDomain(domain) {
			continue
		}
		if err := b.g.AddEdge(&graph.Edge{
			Source:     e.Source,
			Target:     e.Target,
			Type:       graph.EdgeExternalPrincipalCanImpersonate,
			Properties: cloneMap(e.Properties),
		}); err != nil {
			b.warnDup(err)
		}
	}
}

func (b *Builder) isTrustedDomain(domain string) bool {
	if domain == "" {
		return true
	}
	for _, d := range b.opts.trustedDomains() {
		if domain == d {
			return true
		}
	}
	return false
}

func cloneMap(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// buildTagBindingEscalation synthesizes has_tag_binding_escalation edges:
// a conditional IAM binding gated on a resource-manager tag value grants
// escalation to anyone who can also modify the tag binding attaching that
// value to the resource (i.e. re-point the condition to satisfy it).
func (b *Builder) buildTagBindingEscalation() {
	for _, tb := range b.tagBindings {
		if tb.TagValueHolder == "" {
			continue
		}
		holderID, holderType, name := normalizeMember(prefixMember(tb.TagValueHolder))
		b.ensureMemberNode(holderID, holderType, name)

		for _, e := range b.g.Edges() {
			if e.Type != graph.EdgeHasRole {
				continue
			}
			if edgeStringProp(e, "resource") != tb.Resource {
				continue
			}
			if e.ConditionClass() == graph.ConditionNone {
				continue
			}
			if err := b.g.AddEdge(&graph.Edge{
				Source: holderID,
				Target: e.Source,
				Type:   graph.EdgeHasTagBindingEscalation,
				Properties: map[string]interface{}{
					"resource":  tb.Resource,
					"tag_value": tb.TagValue,
				},
			}); err != nil {
				b.warnDup(err)
			}
		}
	}
}

// buildWorkloadIdentityHijack synthesizes can_hijack_workload_identity
// edges: any principal able to deploy or modify a GKE workload bound (via
// workload identity federation) to a Google service account effectively
// inherits that service account's privileges.
func (b *Builder) buildWorkloadIdentityHijack() {
	for id, wl := range b.gkeWorkloads {
		if wl.BoundGSA == "" || !wl.AllowsImpersonation {
			continue
		}
		gsaID := "sa:" + wl.BoundGSA
		if !b.g.HasNode(gsaID) {
			continue
		}
		workloadNodeID := "resource:gke_workloads:" + id
		for _, e := range b.g.InEdges(workloadNodeID, graph.EdgeCanDeployGKEPodAs, graph.EdgeRunsAs) {
			if err := b.g.AddEdge(&graph.Edge{
				Source: e.Source,
				Target: gsaID,
				Type:   graph.EdgeCanHijackWorkloadIdentity,
				Properties: map[string]interface{}{
					"cluster":   wl.Cluster,
					"namespace": wl.Namespace,
					"ksa":       wl.KSA,
				},
			}); err != nil {
				b.warnDup(err)
			}
		}
	}
}
