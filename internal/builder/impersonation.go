package builder

import (
	"strings"

	"github.com/alevsk/iamgraph/internal/graph"
)

// impersonationPermissions is the permission set whose presence on a
// binding's role, scoped to a service-account resource, grants the
// binding's members the ability to impersonate that service account.
var impersonationPermissions = []string{
	"iam.serviceAccounts.actAs",
	"iam.serviceAccounts.getAccessToken",
	"iam.serviceAccounts.implicitDelegation",
	"iam.serviceAccountKeys.create",
}

// rolesGrantingImpersonation is a fallback table for predefined roles
// whose permission list wasn't present in the collected roles section
// (a common shape: the collector enumerates bindings but not every
// predefined role's full permission set).
var rolesGrantingImpersonation = map[string]bool{
	"roles/iam.serviceAccountUser":         true,
	"roles/iam.serviceAccountTokenCreator": true,
	"roles/iam.serviceAccountKeyAdmin":     true,
	"roles/iam.serviceAccountAdmin":        true,
	"roles/owner":                          true,
	"roles/editor":                         true,
}

// buildImpersonation emits can_impersonate edges for every binding whose
// role grants an impersonation permission and whose resource names a
// service account. It is phase 4 of the pipeline.
func (b *Builder) buildImpersonation() {
	for _, bm := range b.allBindings {
		if !b.roleGrantsImpersonation(bm.binding.Role) {
			continue
		}
		saID := resourceAsServiceAccount(bm.binding.Resource)
		if saID == "" || !b.g.HasNode(saID) {
			continue
		}
		if bm.member == saID {
			continue
		}
		if err := b.g.AddEdge(&graph.Edge{
			Source:     bm.member,
			Target:     saID,
			Type:       graph.EdgeCanImpersonate,
			Properties: map[string]interface{}{"via_role": bm.binding.Role, "resource": bm.binding.Resource},
		}); err != nil {
			b.warnDup(err)
		}
	}
}

func (b *Builder) roleGrantsImpersonation(role string) bool {
	roleID := roleNodeID(role)
	if node := b.g.Node(roleID); node != nil {
		if perms, ok := node.Prop("permissions"); ok {
			if list, ok := perms.([]string); ok {
				for _, p := range list {
					for _, want := range impersonationPermissions {
						if p == want {
							return true
						}
					}
				}
			}
		}
	}
	return rolesGrantingImpersonation[role]
}

// resourceAsServiceAccount extracts a "sa:<email>" node id from a binding
// resource string that names a service account, or "" if the resource
// does not look like one.
func resourceAsServiceAccount(resource string) string {
	switch {
	case strings.HasPrefix(resource, "sa:"):
		return resource
	case strings.Contains(resource, "serviceAccounts/"):
		idx := strings.LastIndex(resource, "serviceAccounts/")
		return "sa:" + resource[idx+len("serviceAccounts/"):]
	case strings.Contains(resource, ".iam.gserviceaccount.com"):
		return "sa:" + resource
	default:
		return ""
	}
}
