package builder

import (
	"sort"

	"github.com/alevsk/iamgraph/internal/collected"
	"github.com/alevsk/iamgraph/internal/graph"
)

// buildIAM processes every policy binding into a role node plus member
// nodes plus a deduplicated has_role edge per (member, role, resource).
// It is phase 3 of the pipeline. All bindings discovered here are also
// recorded for later phases (impersonation, escalation synthesis) since
// those need the same (member, role, resource, condition) tuples.
func (b *Builder) buildIAM(iam collected.IAMSection, extraBindings []collected.Binding) {
	all := make([]collected.Binding, 0,
		len(iam.Policies.Organizations)+len(iam.Policies.Folders)+len(iam.Policies.Projects)+len(extraBindings))

	for _, policies := range []map[string][]collected.Binding{
		iam.Policies.Organizations, iam.Policies.Folders, iam.Policies.Projects,
	} {
		keys := make([]string, 0, len(policies))
		for k := range policies {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			all = append(all, policies[k]...)
		}
	}
	all = append(all, extraBindings...)

	for name, role := range iam.Roles.Predefined {
		b.addRoleNode(predefinedRoleID(name), name, role.Permissions, false)
	}
	for name, role := range iam.Roles.Custom {
		b.addRoleNode(customRoleID(name), name, role.Permissions, true)
	}

	for _, bind := range all {
		if bind.Role == "" || bind.Resource == "" {
			b.warn("iam: skipping binding with empty role or resource")
			continue
		}
		roleID := roleNodeID(bind.Role)
		if !b.g.HasNode(roleID) {
			b.addRoleNode(roleID, bind.Role, nil, isCustomRoleName(bind.Role))
		}

		var conditionClass graph.ConditionClass
		var conditionExpr string
		if bind.Condition != nil {
			if expr, ok := bind.Condition["expression"].(string); ok {
				conditionExpr = expr
				conditionClass = classifyCondition(expr)
			}
		}

		for _, member := range bind.Members {
			memberID, memberType, name := normalizeMember(member)
			b.ensureMemberNode(memberID, memberType, name)

			props := map[string]interface{}{
				"resource": bind.Resource,
				"role":     bind.Role,
			}
			if bind.Condition != nil {
				props["condition"] = bind.Condition
				props["condition_class"] = string(conditionClass)
			}
			_ = conditionExpr

			existing := b.g.Edge(memberID, roleID, graph.EdgeHasRole)
			if existing != nil {
				// Same (member, role) triple bound against a different
				// resource still dedups by (source, target, kind) per the
				// edge identity rule; keep the most recently seen resource,
				// last write wins.
				for k, v := range props {
					existing.Properties[k] = v
				}
				b.recordBinding(memberID, bind)
				continue
			}
			if err := b.g.AddEdge(&graph.Edge{
				Source:     memberID,
				Target:     roleID,
				Type:       graph.EdgeHasRole,
				Properties: props,
			}); err != nil {
				b.warnDup(err)
				continue
			}
			b.recordBinding(memberID, bind)
		}
	}
}

func (b *Builder) addRoleNode(id, name string, permissions []string, custom bool) {
	typ := graph.NodeRole
	if custom {
		typ = graph.NodeCustomRole
	}
	var props map[string]interface{}
	if len(permissions) > 0 {
		props = map[string]interface{}{"permissions": permissions}
	}
	b.addNode(&graph.Node{ID: id, Type: typ, Name: name, Properties: props})
}

func predefinedRoleID(name string) string { return roleNodeID(name) }
func customRoleID(name string) string      { return roleNodeID(name) }

func roleNodeID(name string) string {
	return "role:" + name
}

func isCustomRoleName(role string) bool {
	return !hasPrefix(role, "roles/")
}

// recordBinding keeps a per-member list of every binding seen, used by the
// impersonation and escalation-synthesis phases which need to re-walk
// bindings by role pattern without re-scanning the whole document.
func (b *Builder) recordBinding(memberID string, bind collected.Binding) {
	b.bindingsByMember[memberID] = append(b.bindingsByMember[memberID], bind)
	b.allBindings = append(b.allBindings, boundMember{member: memberID, binding: bind})
}

type boundMember struct {
	member  string
	binding collected.Binding
}
