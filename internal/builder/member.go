package builder

import (
	"strings"

	"github.com/alevsk/iamgraph/internal/graph"
)

// normalizeMember converts an IAM policy member string (e.g.
// "user:alice@ex.com", "serviceAccount:svc@proj.iam.gserviceaccount.com",
// "group:team@ex.com", "allUsers") into a graph node id and the node type
// that owns it. Unparseable strings become "special:<literal>" nodes
// rather than being discarded, per the edge-case policy.
func normalizeMember(member string) (id string, typ graph.NodeType, displayName string) {
	switch {
	case strings.HasPrefix(member, "user:"):
		name := strings.TrimPrefix(member, "user:")
		return "user:" + name, graph.NodeUser, name
	case strings.HasPrefix(member, "serviceAccount:"):
		name := strings.TrimPrefix(member, "serviceAccount:")
		return "sa:" + name, graph.NodeServiceAccount, name
	case strings.HasPrefix(member, "group:"):
		name := strings.TrimPrefix(member, "group:")
		return "group:" + name, graph.NodeGroup, name
	case strings.HasPrefix(member, "domain:"):
		name := strings.TrimPrefix(member, "domain:")
		return "special:domain:" + name, graph.NodeUser, name
	case member == "allUsers", member == "allAuthenticatedUsers":
		return "special:" + member, graph.NodeUser, member
	default:
		return "special:" + member, graph.NodeUser, member
	}
}

// emailDomain extracts the portion after '@' in a user/SA node id's natural
// key, or "" if there is none.
func emailDomain(nodeID string) string {
	at := strings.LastIndex(nodeID, "@")
	if at < 0 {
		return ""
	}
	return nodeID[at+1:]
}

// projectScope extracts the project id a resource string belongs to. It
// understands the "projects/<id>/..." and "project:<id>" shapes used
// throughout the collected-data document, falling back to the resource
// string itself when no project segment is found.
func projectScope(resource string) string {
	if resource == "" {
		return ""
	}
	if strings.HasPrefix(resource, "project:") {
		return strings.TrimPrefix(resource, "project:")
	}
	parts := strings.Split(resource, "/")
	for i := 0; i < len(parts)-1; i++ {
		if parts[i] == "projects" {
			return parts[i+1]
		}
	}
	return resource
}
