package builder

import "github.com/alevsk/iamgraph/internal/graph"

// AddBinding applies a hypothetical has_role binding directly to an
// already-built graph, then incrementally re-runs the dangerous-role
// synthesis step (§4.1) restricted to the edges this one binding touches.
// It is the Simulation engine's mutation primitive: callers are expected to
// invoke it against a Graph.Clone(), never the original.
func AddBinding(g *graph.Graph, opts *Options, member, role, resource string) {
	if opts == nil {
		opts = DefaultOptions()
	}
	memberID, memberType, name := normalizeMember(prefixMember(member))
	if !g.HasNode(memberID) {
		_ = g.AddNode(&graph.Node{ID: memberID, Type: memberType, Name: name})
	}

	roleID := roleNodeID(role)
	if !g.HasNode(roleID) {
		typ := graph.NodeRole
		if isCustomRoleName(role) {
			typ = graph.NodeCustomRole
		}
		_ = g.AddNode(&graph.Node{ID: roleID, Type: typ, Name: role})
	}

	props := map[string]interface{}{"resource": resource, "role": role}
	if existing := g.Edge(memberID, roleID, graph.EdgeHasRole); existing != nil {
		for k, v := range props {
			existing.Properties[k] = v
		}
	} else {
		_ = g.AddEdge(&graph.Edge{Source: memberID, Target: roleID, Type: graph.EdgeHasRole, Properties: props})
	}

	resynthesizeRole(g, opts, memberID, roleID, role, resource)
}

// RemoveBinding deletes the has_role edge for (member, role) and every
// derived-escalation edge that binding alone justified.
func RemoveBinding(g *graph.Graph, opts *Options, member, role, resource string) {
	memberID, _, _ := normalizeMember(prefixMember(member))
	roleID := roleNodeID(role)
	g.RemoveEdge(memberID, roleID, graph.EdgeHasRole)
	removeSynthesizedForRole(g, memberID, role)
}

// ReplaceBinding models simulate_role_change: remove the old role's
// has_role edge and everything it synthesized, then bind and resynthesize
// the new role.
func ReplaceBinding(g *graph.Graph, opts *Options, member, oldRole, newRole, resource string) {
	RemoveBinding(g, opts, member, oldRole, resource)
	AddBinding(g, opts, member, newRole, resource)
}

// removeSynthesizedForRole deletes every non-structural edge sourced from
// memberID whose via_role property names role, leaving structural edges
// (has_role, member_of, ...) untouched.
func removeSynthesizedForRole(g *graph.Graph, memberID, role string) {
	for _, e := range g.OutEdges(memberID) {
		if graph.StructuralEdgeTypes[e.Type] {
			continue
		}
		if v, ok := e.Prop("via_role"); ok {
			if s, _ := v.(string); s == role {
				g.RemoveEdge(e.Source, e.Target, e.Type)
			}
		}
	}
}

// resynthesizeRole re-derives the dangerous-role escalation edges a single
// (member, role) binding unlocks, scoped to the project the resource
// belongs to. This mirrors buildEscalation's loop body exactly, but walks
// only the one role touched by the mutation instead of every role node in
// the graph.
func resynthesizeRole(g *graph.Graph, opts *Options, memberID, roleID, role, resource string) {
	kind, matched := matchDangerousRole(roleID)
	if !matched {
		return
	}

	if saID := resolveDirectServiceAccount(g, resource); saID != "" {
		if saID != memberID {
			_ = g.AddEdge(&graph.Edge{
				Source:     memberID,
				Target:     saID,
				Type:       kind,
				Properties: map[string]interface{}{"via_role": role, "resource": resource},
			})
		}
		return
	}

	b := &Builder{opts: opts, g: g}
	project := projectScope(resource)
	for _, saID := range b.serviceAccountsByProject()[project] {
		if saID == memberID {
			continue
		}
		_ = g.AddEdge(&graph.Edge{
			Source: memberID,
			Target: saID,
			Type:   kind,
			Properties: map[string]interface{}{
				"via_role": role,
				"resource": resource,
			},
		})
	}
}
