package builder

import (
	"fmt"

	"github.com/alevsk/iamgraph/internal/collected"
	"github.com/alevsk/iamgraph/internal/graph"
)

// buildHierarchy creates organization, folder and project nodes and links
// them with parent_of edges. It is phase 1 of the builder pipeline.
func (b *Builder) buildHierarchy(h collected.HierarchySection) {
	for id, org := range h.Organizations {
		nodeID := "org:" + id
		b.addNode(&graph.Node{
			ID:         nodeID,
			Type:       graph.NodeOrganization,
			Name:       nonEmpty(org.DisplayName, id),
			Properties: org.Properties,
		})
	}

	for id, folder := range h.Folders {
		nodeID := "folder:" + id
		b.addNode(&graph.Node{
			ID:         nodeID,
			Type:       graph.NodeFolder,
			Name:       nonEmpty(folder.DisplayName, id),
			Properties: folder.Properties,
		})
		if folder.Parent != "" {
			b.pendingParents = append(b.pendingParents, parentLink{child: nodeID, parent: resolveHierarchyID(folder.Parent)})
		}
	}

	for id, proj := range h.Projects {
		nodeID := "project:" + id
		props := proj.Properties
		if proj.ProjectID != "" {
			props = withProp(props, "project_id", proj.ProjectID)
		}
		b.addNode(&graph.Node{
			ID:         nodeID,
			Type:       graph.NodeProject,
			Name:       nonEmpty(proj.DisplayName, id),
			Properties: props,
		})
		if proj.Parent != "" {
			b.pendingParents = append(b.pendingParents, parentLink{child: nodeID, parent: resolveHierarchyID(proj.Parent)})
		}
	}

	// Explicit hierarchy map overrides/supplements the per-entry parent
	// fields, e.g. for documents that only populate it once for all kinds.
	for child, parent := range h.Hierarchy {
		b.pendingParents = append(b.pendingParents, parentLink{
			child:  resolveHierarchyID(child),
			parent: resolveHierarchyID(parent),
		})
	}
}

// resolveHierarchyID normalizes a raw hierarchy reference (which may
// already carry a "org:"/"folder:"/"project:" prefix, or may be a bare
// "organizations/123" / "folders/123" / "projects/my-proj" resource name)
// into a graph node id.
func resolveHierarchyID(raw string) string {
	for _, prefix := range []string{"org:", "folder:", "project:"} {
		if hasPrefix(raw, prefix) {
			return raw
		}
	}
	switch {
	case hasPrefix(raw, "organizations/"):
		return "org:" + raw[len("organizations/"):]
	case hasPrefix(raw, "folders/"):
		return "folder:" + raw[len("folders/"):]
	case hasPrefix(raw, "projects/"):
		return "project:" + raw[len("projects/"):]
	default:
		return "project:" + raw
	}
}

// linkPendingParents emits the parent_of edges queued during the hierarchy
// and resource phases, after every referenced node has had a chance to be
// created. Done last so ordering between sections in the source document
// never matters.
func (b *Builder) linkPendingParents() {
	for _, link := range b.pendingParents {
		if !b.g.HasNode(link.parent) || !b.g.HasNode(link.child) {
			b.warn(fmt.Sprintf("hierarchy: skipping parent_of %s->%s, endpoint missing", link.parent, link.child))
			continue
		}
		if err := b.g.AddEdge(&graph.Edge{Source: link.parent, Target: link.child, Type: graph.EdgeParentOf}); err != nil {
			b.warn(fmt.Sprintf("hierarchy: %v", err))
		}
	}
}

type parentLink struct {
	child  string
	parent string
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

func nonEmpty(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}

func withProp(m map[string]interface{}, key string, val interface{}) map[string]interface{} {
	if m == nil {
		m = map[string]interface{}{}
	}
	m[key] = val
	return m
}
