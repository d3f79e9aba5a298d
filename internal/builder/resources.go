package builder

import (
	"github.com/alevsk/iamgraph/internal/collected"
	"github.com/alevsk/iamgraph/internal/graph"
)

// resourceKindMap maps a collected-data "resources" sub-key to its graph
// node kind, covering every resource sub-kind a collector can plausibly
// produce.
var resourceKindMap = map[string]graph.NodeType{
	"buckets":           graph.NodeResource,
	"instances":         graph.NodeResource,
	"compute_instances":  graph.NodeResource,
	"functions":         graph.NodeResource,
	"datasets":          graph.NodeResource,
	"secrets":           graph.NodeResource,
	"kms_keys":          graph.NodeResource,
	"topics":            graph.NodeResource,
	"cloud_run_services": graph.NodeResource,
	"gke_clusters":       graph.NodeResource,
	"gke_workloads":      graph.NodeResource,
	"cloud_build_triggers": graph.NodeResource,
}

// resourceKindTag records the resource sub-kind as a node property so
// downstream consumers (risk scoring, visualization) can distinguish a
// bucket from a function without a richer node-type taxonomy.
func resourceKindTag(sub string) string {
	switch sub {
	case "buckets":
		return "bucket"
	case "instances", "compute_instances":
		return "compute_instance"
	case "functions":
		return "function"
	case "datasets":
		return "dataset"
	case "secrets":
		return "secret"
	case "kms_keys":
		return "kms_key"
	case "topics":
		return "topic"
	case "cloud_run_services":
		return "cloud_run_service"
	case "gke_clusters":
		return "gke_cluster"
	case "gke_workloads":
		return "gke_workload"
	case "cloud_build_triggers":
		return "cloud_build_trigger"
	default:
		return sub
	}
}

// buildTags materializes the tag and tag_value resource sub-kinds (§3.1)
// and records the conditional tag-bindings for buildTagBindingEscalation
// (phase 6) to synthesize has_tag_binding_escalation edges from.
func (b *Builder) buildTags(t collected.TagsSection) {
	for id, key := range t.TagKeys {
		nodeID := "resource:tag_keys:" + id
		b.addNode(&graph.Node{
			ID:   nodeID,
			Type: graph.NodeResource,
			Name: nonEmpty(key.ShortName, id),
			Properties: map[string]interface{}{
				"resource_kind": "tag",
			},
		})
	}

	for id, val := range t.TagValues {
		nodeID := "resource:tag_values:" + id
		b.addNode(&graph.Node{
			ID:   nodeID,
			Type: graph.NodeResource,
			Name: nonEmpty(val.ShortName, id),
			Properties: map[string]interface{}{
				"resource_kind": "tag_value",
			},
		})
		if val.TagKey == "" {
			continue
		}
		keyID := "resource:tag_keys:" + val.TagKey
		if b.g.HasNode(keyID) {
			if err := b.g.AddEdge(&graph.Edge{Source: keyID, Target: nodeID, Type: graph.EdgeParentOf}); err != nil {
				b.warnDup(err)
			}
		}
	}

	b.tagBindings = t.TagBindings
}

// buildResources creates resource nodes and their runs_as edges to the
// service accounts they execute as. It is phase 5 of the pipeline.
func (b *Builder) buildResources(r collected.ResourcesSection) []collected.Binding {
	for sub, entries := range r.Resources {
		typ, ok := resourceKindMap[sub]
		if !ok {
			typ = graph.NodeResource
		}
		for id, entry := range entries {
			nodeID := "resource:" + sub + ":" + id
			props := entry.Properties
			props = withProp(props, "resource_kind", resourceKindTag(sub))
			if entry.Project != "" {
				props = withProp(props, "project", entry.Project)
			}
			if entry.WorkloadID {
				props = withProp(props, "workload_identity_enabled", true)
			}
			if entry.DefaultSA {
				props = withProp(props, "uses_default_service_account", true)
			}
			b.addNode(&graph.Node{
				ID:         nodeID,
				Type:       typ,
				Name:       nonEmpty(entry.DisplayName, id),
				Properties: props,
			})

			if entry.Project != "" {
				b.pendingParents = append(b.pendingParents, parentLink{
					child:  nodeID,
					parent: "project:" + entry.Project,
				})
			}

			if entry.RunsAsSA != "" {
				saID := "sa:" + entry.RunsAsSA
				b.ensureMemberNode(saID, graph.NodeServiceAccount, entry.RunsAsSA)
				if err := b.g.AddEdge(&graph.Edge{Source: nodeID, Target: saID, Type: graph.EdgeRunsAs}); err != nil {
					b.warnDup(err)
				}
			}
		}
	}

	flat := make([]collected.Binding, 0, len(r.ResourceIAMPolicies))
	for _, bindings := range r.ResourceIAMPolicies {
		flat = append(flat, bindings...)
	}
	return flat
}
