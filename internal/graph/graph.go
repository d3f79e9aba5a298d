package graph

import "sort"

// Graph is the in-memory attack-path graph: a directed multigraph over
// Node/Edge with uniqueness enforced per (source, target, type) and a
// standing forest invariant on parent_of edges.
type Graph struct {
	nodes map[string]*Node
	// edges indexed by key for O(1) existence checks and dedup.
	edges map[EdgeKey]*Edge
	// out/in adjacency: node ID -> edge keys.
	out map[string][]EdgeKey
	in  map[string][]EdgeKey

	// parentOf tracks the resource hierarchy separately so cycle checks
	// don't have to scan the whole edge set.
	parentOf map[string]string // child -> parent
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		nodes:    make(map[string]*Node),
		edges:    make(map[EdgeKey]*Edge),
		out:      make(map[string][]EdgeKey),
		in:       make(map[string][]EdgeKey),
		parentOf: make(map[string]string),
	}
}

// AddNode inserts a node, or merges Properties into an existing node with
// the same ID (last write wins per key). Returns an error if the node is
// invalid.
func (g *Graph) AddNode(n *Node) error {
	if err := n.Validate(); err != nil {
		return err
	}
	existing, ok := g.nodes[n.ID]
	if !ok {
		cp := *n
		if cp.Properties == nil {
			cp.Properties = map[string]interface{}{}
		}
		g.nodes[n.ID] = &cp
		return nil
	}
	if n.Name != "" {
		existing.Name = n.Name
	}
	if existing.Properties == nil {
		existing.Properties = map[string]interface{}{}
	}
	for k, v := range n.Properties {
		existing.Properties[k] = v
	}
	return nil
}

// HasNode reports whether a node with the given ID exists.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Node returns the node with the given ID, or nil if absent.
func (g *Graph) Node(id string) *Node {
	return g.nodes[id]
}

// Nodes returns all nodes, sorted by ID for deterministic output.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// AddEdge inserts an edge, enforcing the dedup-by-key and parent_of-forest
// invariants. Derived-escalation and audit-confirmed self-edges (source ==
// target) are silently dropped rather than rejected, matching the builder's
// synthesis behavior where a principal can trivially "escalate to itself".
func (g *Graph) AddEdge(e *Edge) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if !StructuralEdgeTypes[e.Type] && e.Source == e.Target {
		return nil
	}
	if !g.HasNode(e.Source) {
		return &ErrNodeNotFound{ID: e.Source}
	}
	if !g.HasNode(e.Target) {
		return &ErrNodeNotFound{ID: e.Target}
	}

	key := e.Key()
	if _, exists := g.edges[key]; exists {
		return &ErrDuplicateEdge{Key: key}
	}

	if e.Type == EdgeParentOf {
		if err := g.checkParentOfCycle(e.Source, e.Target); err != nil {
			return err
		}
	}

	cp := *e
	if cp.Properties == nil {
		cp.Properties = map[string]interface{}{}
	}
	g.edges[key] = &cp
	g.out[e.Source] = append(g.out[e.Source], key)
	g.in[e.Target] = append(g.in[e.Target], key)
	if e.Type == EdgeParentOf {
		g.parentOf[e.Target] = e.Source
	}
	return nil
}

// checkParentOfCycle verifies that adding a parent_of edge source->target
// would not create a cycle: target must not already be an ancestor of
// source in the existing hierarchy.
func (g *Graph) checkParentOfCycle(source, target string) error {
	cur := source
	seen := map[string]bool{}
	for {
		parent, ok := g.parentOf[cur]
		if !ok {
			return nil
		}
		if parent == target {
			return &ErrCycleDetected{Source: source, Target: target}
		}
		if seen[parent] {
			return nil
		}
		seen[parent] = true
		cur = parent
	}
}

// HasEdge reports whether an edge with the given key exists.
func (g *Graph) HasEdge(source, target string, typ EdgeType) bool {
	_, ok := g.edges[EdgeKey{Source: source, Target: target, Type: typ}]
	return ok
}

// Edge returns the edge matching the key, or nil if absent.
func (g *Graph) Edge(source, target string, typ EdgeType) *Edge {
	return g.edges[EdgeKey{Source: source, Target: target, Type: typ}]
}

// Edges returns all edges in the graph, in no particular order.
func (g *Graph) Edges() []*Edge {
	out := make([]*Edge, 0, len(g.edges))
	for _, e := range g.edges {
		out = append(out, e)
	}
	return out
}

// OutEdges returns the outgoing edges of a node, optionally filtered by
// kind (pass no kinds to get all).
func (g *Graph) OutEdges(nodeID string, kinds ...EdgeType) []*Edge {
	return g.filterEdges(g.out[nodeID], kinds)
}

// InEdges returns the incoming edges of a node, optionally filtered by
// kind.
func (g *Graph) InEdges(nodeID string, kinds ...EdgeType) []*Edge {
	return g.filterEdges(g.in[nodeID], kinds)
}

func (g *Graph) filterEdges(keys []EdgeKey, kinds []EdgeType) []*Edge {
	var allow map[EdgeType]bool
	if len(kinds) > 0 {
		allow = make(map[EdgeType]bool, len(kinds))
		for _, k := range kinds {
			allow[k] = true
		}
	}
	out := make([]*Edge, 0, len(keys))
	for _, k := range keys {
		if allow != nil && !allow[k.Type] {
			continue
		}
		out = append(out, g.edges[k])
	}
	return out
}

// Successors returns the distinct node IDs reachable via one outgoing edge
// of any of the given kinds (all kinds if none given).
func (g *Graph) Successors(nodeID string, kinds ...EdgeType) []string {
	seen := map[string]bool{}
	var out []string
	for _, e := range g.OutEdges(nodeID, kinds...) {
		if !seen[e.Target] {
			seen[e.Target] = true
			out = append(out, e.Target)
		}
	}
	return out
}

// Predecessors returns the distinct node IDs with one incoming edge of any
// of the given kinds (all kinds if none given) pointing to nodeID.
func (g *Graph) Predecessors(nodeID string, kinds ...EdgeType) []string {
	seen := map[string]bool{}
	var out []string
	for _, e := range g.InEdges(nodeID, kinds...) {
		if !seen[e.Source] {
			seen[e.Source] = true
			out = append(out, e.Source)
		}
	}
	return out
}

// Degree returns the total (in+out) degree of a node, counting parallel
// edges of different kinds separately.
func (g *Graph) Degree(nodeID string) int {
	return len(g.out[nodeID]) + len(g.in[nodeID])
}

// Clone returns a deep copy of the graph, used by the simulation engine to
// explore hypothetical binding changes without mutating the source graph.
func (g *Graph) Clone() *Graph {
	cp := New()
	for _, n := range g.nodes {
		ncp := *n
		ncp.Properties = cloneProps(n.Properties)
		cp.nodes[n.ID] = &ncp
	}
	for k, e := range g.edges {
		ecp := *e
		ecp.Properties = cloneProps(e.Properties)
		cp.edges[k] = &ecp
		cp.out[e.Source] = append(cp.out[e.Source], k)
		cp.in[e.Target] = append(cp.in[e.Target], k)
		if e.Type == EdgeParentOf {
			cp.parentOf[e.Target] = e.Source
		}
	}
	return cp
}

func cloneProps(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return map[string]interface{}{}
	}
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// RemoveEdge deletes the edge matching the key, if present. Used by the
// simulation engine to model a binding removal.
func (g *Graph) RemoveEdge(source, target string, typ EdgeType) {
	key := EdgeKey{Source: source, Target: target, Type: typ}
	if _, ok := g.edges[key]; !ok {
		return
	}
	delete(g.edges, key)
	g.out[source] = removeKey(g.out[source], key)
	g.in[target] = removeKey(g.in[target], key)
	if typ == EdgeParentOf {
		delete(g.parentOf, target)
	}
}

func removeKey(keys []EdgeKey, key EdgeKey) []EdgeKey {
	out := keys[:0]
	for _, k := range keys {
		if k != key {
			out = append(out, k)
		}
	}
	return out
}
