package builder

import (
	"github.com/alevsk/iamgraph/internal/collected"
	"github.com/alevsk/iamgraph/internal/graph"
)

// buildIdentity creates service account, group and user nodes and emits
// member_of edges for group memberships. It is phase 2 of the pipeline.
// Users referenced only as group members (never listed under "users")
// still get a node, inferred from the group membership itself.
func (b *Builder) buildIdentity(idn collected.IdentitySection) {
	for id, sa := range idn.ServiceAccounts {
		props := sa.Properties
		if sa.Default {
			props = withProp(props, "is_default", true)
		}
		if sa.Disabled {
			props = withProp(props, "disabled", true)
		}
		if sa.Project != "" {
			props = withProp(props, "project", sa.Project)
		}
		b.addNode(&graph.Node{
			ID:         "sa:" + id,
			Type:       graph.NodeServiceAccount,
			Name:       nonEmpty(sa.DisplayName, id),
			Properties: props,
		})
	}

	for id, grp := range idn.Groups {
		b.addNode(&graph.Node{
			ID:         "group:" + id,
			Type:       graph.NodeGroup,
			Name:       nonEmpty(grp.DisplayName, id),
			Properties: grp.Properties,
		})
	}

	for id, usr := range idn.Users {
		b.addNode(&graph.Node{
			ID:         "user:" + id,
			Type:       graph.NodeUser,
			Name:       nonEmpty(usr.DisplayName, id),
		})
	}

	for groupKey, members := range idn.GroupMemberships {
		groupID := "group:" + groupKey
		if !b.g.HasNode(groupID) {
			b.addNode(&graph.Node{ID: groupID, Type: graph.NodeGroup, Name: groupKey})
		}
		for _, member := range members {
			memberID, memberType, name := normalizeMember(prefixMember(member))
			b.ensureMemberNode(memberID, memberType, name)
			if err := b.g.AddEdge(&graph.Edge{Source: memberID, Target: groupID, Type: graph.EdgeMemberOf}); err != nil {
				b.warnDup(err)
			}
		}
	}
}

// prefixMember adds a "user:" prefix to bare member strings that already
// look like email addresses but weren't given an explicit member-type
// prefix, which is common in group_memberships sections that only list
// addresses.
func prefixMember(member string) string {
	if member == "" {
		return member
	}
	for _, p := range []string{"user:", "serviceAccount:", "group:", "domain:"} {
		if hasPrefix(member, p) {
			return member
		}
	}
	if member == "allUsers" || member == "allAuthenticatedUsers" {
		return member
	}
	return "user:" + member
}

// ensureMemberNode creates the member's node if it doesn't already exist,
// without overwriting properties a more authoritative section (e.g.
// identity.service_accounts) may have already set.
func (b *Builder) ensureMemberNode(id string, typ graph.NodeType, name string) {
	if b.g.HasNode(id) {
		return
	}
	b.addNode(&graph.Node{ID: id, Type: typ, Name: name})
}
