package query

import (
	"sort"

	"github.com/alevsk/iamgraph/internal/analyzer"
	"github.com/alevsk/iamgraph/internal/graph"
)

// Engine answers the §4.4 point queries against g. An Engine is safe for
// concurrent use by multiple readers since neither it nor the Analyzer it
// constructs per-call ever mutates g; simulations clone g instead.
type Engine struct {
	g   *graph.Graph
	cfg analyzer.Config
}

// New returns an Engine over g configured with cfg. Passing the zero Config
// (MaxPathLength == 0) substitutes analyzer.DefaultConfig().
func New(g *graph.Graph, cfg analyzer.Config) *Engine {
	if cfg.MaxPathLength == 0 {
		cfg = analyzer.DefaultConfig()
	}
	return &Engine{g: g, cfg: cfg}
}

// FindShortestPath returns the fewest-edge directed path from source to
// target as a scored AttackPath, or nil if source/target are unknown or
// target is unreachable.
func (e *Engine) FindShortestPath(source, target string) *analyzer.AttackPath {
	nodePath := e.g.ShortestPath(source, target)
	if nodePath == nil {
		return nil
	}
	return analyzer.New(e.cfg).BuildAttackPath(e.g, nodePath)
}

// FindAllPaths returns every simple path from source to target with at
// most maxLength edges (e.cfg.MaxPathLength when maxLength <= 0).
func (e *Engine) FindAllPaths(source, target string, maxLength int) []*analyzer.AttackPath {
	if maxLength <= 0 {
		maxLength = e.cfg.MaxPathLength
	}
	a := analyzer.New(e.cfg)
	nodePaths := e.g.SimplePaths(source, target, maxLength)
	out := make([]*analyzer.AttackPath, 0, len(nodePaths))
	for _, np := range nodePaths {
		if p := a.BuildAttackPath(e.g, np); p != nil {
			out = append(out, p)
		}
	}
	return out
}

// GetNodePermissions resolves every role nodeID holds via has_role edges,
// including roles held indirectly through transitive group membership, and
// expands each into the permission set declared on that role node, grouped
// by the resource the binding was scoped to. A role with no recorded
// permission list (most predefined roles, whose permissions are never
// collected) contributes its own role name as a stand-in so callers still
// learn the role was granted.
func (e *Engine) GetNodePermissions(nodeID string) map[string][]string {
	result := map[string][]string{}
	if !e.g.HasNode(nodeID) {
		return result
	}

	byResource := map[string]map[string]bool{}
	for _, holder := range e.groupClosure(nodeID) {
		for _, edge := range e.g.OutEdges(holder, graph.EdgeHasRole) {
			roleNode := e.g.Node(edge.Target)
			if roleNode == nil {
				continue
			}
			resource := "unknown"
			if v, ok := edge.Prop("resource"); ok {
				if s, ok := v.(string); ok && s != "" {
					resource = s
				}
			}
			if byResource[resource] == nil {
				byResource[resource] = map[string]bool{}
			}

			perms, _ := roleNode.Prop("permissions")
			permList, _ := perms.([]string)
			if len(permList) == 0 {
				byResource[resource][roleNode.Name] = true
				continue
			}
			for _, p := range permList {
				byResource[resource][p] = true
			}
		}
	}

	for resource, set := range byResource {
		list := make([]string, 0, len(set))
		for p := range set {
			list = append(list, p)
		}
		sort.Strings(list)
		result[resource] = list
	}
	return result
}

// groupClosure returns nodeID plus every group it transitively belongs to
// via member_of edges, so permission resolution picks up roles granted to
// a group rather than only roles granted to the principal directly.
func (e *Engine) groupClosure(nodeID string) []string {
	seen := map[string]bool{nodeID: true}
	queue := []string{nodeID}
	out := []string{nodeID}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, group := range e.g.Successors(cur, graph.EdgeMemberOf) {
			if seen[group] {
				continue
			}
			seen[group] = true
			out = append(out, group)
			queue = append(queue, group)
		}
	}
	return out
}

// CanAccessResource reports whether any directed path exists from
// principalID to resourceID, following edges of any kind.
func (e *Engine) CanAccessResource(principalID, resourceID string) bool {
	return e.g.Reachable(principalID, resourceID)
}
