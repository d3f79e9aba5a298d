package builder

import (
	"encoding/json"
	"fmt"

	"github.com/alevsk/iamgraph/internal/collected"
	"github.com/alevsk/iamgraph/internal/graph"
)

// Metadata is returned alongside the built graph: collector bookkeeping
// passed through from the source document plus counters the builder
// itself accumulated while skipping malformed input, per the
// input-malformed / invariant-violated error taxonomy.
type Metadata struct {
	CollectorsRun   []string `json:"collectors_run,omitempty"`
	SourceErrors    []string `json:"source_errors,omitempty"`
	Warnings        []string `json:"warnings"`
	SkippedEdges    int      `json:"skipped_edges"`
	TotalNodes      int      `json:"total_nodes"`
	TotalEdges      int      `json:"total_edges"`
	NodeTypeCounts  map[string]int `json:"node_types"`
	EdgeTypeCounts  map[string]int `json:"edge_types"`
}

// Builder consumes a collected-data document and produces a Graph
// satisfying the invariants in internal/graph, across the phases:
// hierarchy, identity, IAM bindings, impersonation, resources and
// derived-escalation synthesis. Build is a pure function of its input.
type Builder struct {
	opts *Options
	g    *graph.Graph

	pendingParents   []parentLink
	bindingsByMember map[string][]collected.Binding
	allBindings      []boundMember
	tagBindings      []collected.TagBinding
	gkeWorkloads     map[string]collected.GKEWorkloadEntry

	warnings     []string
	skippedEdges int
}

// New returns a Builder configured with opts (DefaultOptions() if nil).
func New(opts *Options) *Builder {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &Builder{
		opts:             opts,
		g:                graph.New(),
		bindingsByMember: map[string][]collected.Binding{},
		gkeWorkloads:     map[string]collected.GKEWorkloadEntry{},
	}
}

// Build runs all phases over doc and returns the resulting graph plus
// build metadata. It never returns an error for malformed input: per-record
// problems are logged into the returned Metadata.Warnings instead.
func Build(doc *collected.Document, opts *Options) (*graph.Graph, *Metadata) {
	b := New(opts)
	b.run(doc)
	return b.g, b.metadata(doc)
}

// BuildFromJSON decodes raw into a Document and runs Build over it.
func BuildFromJSON(raw []byte, opts *Options) (*graph.Graph, *Metadata, error) {
	var doc collected.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, nil, fmt.Errorf("builder: decoding collected-data document: %w", err)
	}
	g, md := Build(&doc, opts)
	return g, md, nil
}

func (b *Builder) run(doc *collected.Document) {
	b.buildHierarchy(doc.Data.Hierarchy)
	b.buildIdentity(doc.Data.Identity)

	extraFromResources := b.buildResourcesPlaceholder(doc.Data.Resources)
	b.buildIAM(doc.Data.IAM, extraFromResources)

	b.buildImpersonation()
	b.buildGKE(doc.Data.GKE)
	b.buildTags(doc.Data.Tags)
	b.linkPendingParents()

	b.buildEscalation()
	b.buildAuditLogs(doc.Data.Logs)
}

// buildResourcesPlaceholder runs the resource phase before IAM so runs_as
// edges and resource nodes exist when resource-scoped bindings (and later
// the escalation synthesis step) need them, while still returning the
// resource-level bindings for the IAM phase to fold in alongside
// project/folder/org bindings.
func (b *Builder) buildResourcesPlaceholder(r collected.ResourcesSection) []collected.Binding {
	return b.buildResources(r)
}

// buildGKE creates nodes for GKE clusters and workloads and links
// workloads to their clusters, ahead of the escalation phase which needs
// them for workload-identity hijack synthesis.
func (b *Builder) buildGKE(gke collected.GKESection) {
	for id, cluster := range gke.Clusters {
		nodeID := "resource:gke_clusters:" + id
		props := map[string]interface{}{"resource_kind": "gke_cluster"}
		if cluster.Project != "" {
			props["project"] = cluster.Project
		}
		if cluster.WorkloadIdentityPool != "" {
			props["workload_identity_pool"] = cluster.WorkloadIdentityPool
		}
		b.addNode(&graph.Node{ID: nodeID, Type: graph.NodeResource, Name: id, Properties: props})
		if cluster.Project != "" {
			b.pendingParents = append(b.pendingParents, parentLink{child: nodeID, parent: "project:" + cluster.Project})
		}

		if cluster.WorkloadIdentityPool != "" {
			providerID := "resource:workload_identity_providers:" + cluster.WorkloadIdentityPool
			b.addNode(&graph.Node{
				ID:   providerID,
				Type: graph.NodeResource,
				Name: cluster.WorkloadIdentityPool,
				Properties: map[string]interface{}{
					"resource_kind": "workload_identity_provider",
				},
			})
			b.pendingParents = append(b.pendingParents, parentLink{child: providerID, parent: nodeID})
		}
	}

	for id, wl := range gke.Workloads {
		b.gkeWorkloads[id] = wl
		nodeID := "resource:gke_workloads:" + id
		props := map[string]interface{}{
			"resource_kind": "gke_workload",
			"namespace":     wl.Namespace,
			"ksa":           wl.KSA,
		}
		b.addNode(&graph.Node{ID: nodeID, Type: graph.NodeResource, Name: id, Properties: props})
		if wl.Cluster != "" {
			clusterID := "resource:gke_clusters:" + wl.Cluster
			if b.g.HasNode(clusterID) {
				b.pendingParents = append(b.pendingParents, parentLink{child: nodeID, parent: clusterID})
			}
		}
	}
}

// buildAuditLogs promotes audit-log-confirmed events directly into
// has_impersonated / has_escalated_privilege / has_accessed edges. These
// bypass the has_role/derived pipeline entirely: they represent *observed*
// behavior rather than a capability inferred from policy.
func (b *Builder) buildAuditLogs(logs collected.LogsSection) {
	for _, ev := range logs.ImpersonationEvents {
		b.addAuditEdge(ev.Principal, ev.Target, graph.EdgeHasImpersonated, nil)
	}
	for _, ev := range logs.EscalationEvents {
		props := map[string]interface{}{}
		if ev.Technique != "" {
			props["technique"] = ev.Technique
		}
		b.addAuditEdge(ev.Principal, ev.Target, graph.EdgeHasEscalatedPrivilege, props)
	}
	for _, ev := range logs.AccessEvents {
		b.addAuditEdge(ev.Principal, ev.Resource, graph.EdgeHasAccessed, nil)
	}
}

func (b *Builder) addAuditEdge(rawSource, rawTarget string, kind graph.EdgeType, props map[string]interface{}) {
	sourceID, sourceType, sourceName := normalizeMember(prefixMember(rawSource))
	b.ensureMemberNode(sourceID, sourceType, sourceName)

	targetID := rawTarget
	if !b.g.HasNode(targetID) {
		// The target may itself be a principal (impersonation/escalation)
		// rather than a resource; try normalizing it the same way before
		// giving up and skipping the record.
		normalized, typ, name := normalizeMember(prefixMember(rawTarget))
		if b.g.HasNode(normalized) {
			targetID = normalized
		} else {
			b.ensureMemberNode(normalized, typ, name)
			targetID = normalized
		}
	}

	if props == nil {
		props = map[string]interface{}{}
	}
	props["confirmed_by_audit"] = true
	if err := b.g.AddEdge(&graph.Edge{Source: sourceID, Target: targetID, Type: kind, Properties: props}); err != nil {
		b.warnDup(err)
	}
}

func (b *Builder) addNode(n *graph.Node) {
	if err := b.g.AddNode(n); err != nil {
		b.warn(fmt.Sprintf("skipping invalid node: %v", err))
	}
}

func (b *Builder) warn(msg string) {
	b.warnings = append(b.warnings, msg)
}

func (b *Builder) warnDup(err error) {
	if _, ok := err.(*graph.ErrDuplicateEdge); ok {
		return
	}
	b.skippedEdges++
	b.warn(err.Error())
}

func (b *Builder) metadata(doc *collected.Document) *Metadata {
	md := &Metadata{
		CollectorsRun:  doc.Metadata.CollectorsRun,
		SourceErrors:   doc.Metadata.Errors,
		Warnings:       b.warnings,
		SkippedEdges:   b.skippedEdges,
		TotalNodes:     b.g.NodeCount(),
		TotalEdges:     b.g.EdgeCount(),
		NodeTypeCounts: map[string]int{},
		EdgeTypeCounts: map[string]int{},
	}
	for _, n := range b.g.Nodes() {
		md.NodeTypeCounts[string(n.Type)]++
	}
	for _, e := range b.g.Edges() {
		md.EdgeTypeCounts[string(e.Type)]++
	}
	return md
}
