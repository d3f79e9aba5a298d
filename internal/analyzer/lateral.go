package analyzer

import "github.com/alevsk/iamgraph/internal/graph"

// findLateralMovementPaths implements §4.2.3: for every unordered pair of
// project nodes (P1, P2), any identity with an incoming edge into both
// projects can pivot between them. The emitted path is the deliberately
// non-simple 4-node walk [identity, P1, identity, P2], the only place in
// this package where the general AttackPath "no repeated node" invariant
// doesn't hold, because the shape itself is what communicates "pivoted via
// the same credential" to a reader of the path.
func (a *Analyzer) findLateralMovementPaths(g *graph.Graph) []*AttackPath {
	projects := projectNodes(g)
	identitiesByProject := make(map[string]map[string]*graph.Edge, len(projects))
	for _, p := range projects {
		identitiesByProject[p.ID] = incomingIdentities(g, p.ID)
	}

	var out []*AttackPath
	for i := 0; i < len(projects); i++ {
		for j := i + 1; j < len(projects); j++ {
			p1, p2 := projects[i], projects[j]
			for identityID, edge1 := range identitiesByProject[p1.ID] {
				edge2, ok := identitiesByProject[p2.ID][identityID]
				if !ok {
					continue
				}
				path := a.buildLateralPath(g, identityID, p1, p2, edge1, edge2)
				if path != nil {
					out = append(out, path)
				}
			}
		}
	}
	return out
}

func projectNodes(g *graph.Graph) []*graph.Node {
	var out []*graph.Node
	for _, n := range g.Nodes() {
		if n.Type == graph.NodeProject {
			out = append(out, n)
		}
	}
	return out
}

// incomingIdentities returns, for a project node, the set of identity
// node ids with an edge pointing at it (any edge kind except parent_of,
// such as an audit-log has_accessed edge), keyed by the edge's source id
// with the edge used to reach it. The source's node type is not checked.
func incomingIdentities(g *graph.Graph, projectID string) map[string]*graph.Edge {
	out := map[string]*graph.Edge{}
	for _, e := range g.InEdges(projectID) {
		if e.Type == graph.EdgeParentOf {
			continue
		}
		out[e.Source] = e
	}
	return out
}

func (a *Analyzer) buildLateralPath(g *graph.Graph, identityID string, p1, p2 *graph.Node, edge1, edge2 *graph.Edge) *AttackPath {
	identity := g.Node(identityID)
	if identity == nil {
		return nil
	}
	pathNodes := []*graph.Node{identity, p1, identity, p2}
	pathEdges := []*graph.Edge{edge1, edge2}

	risk := pathRiskScore(pathEdges, a.cfg.DangerousRoles)
	vis := a.buildVisualization(pathNodes, pathEdges)

	return &AttackPath{
		SourceNode:            identity,
		TargetNode:            p2,
		PathNodes:             pathNodes,
		PathEdges:             pathEdges,
		RiskScore:             risk,
		Description:           buildDescription([]*graph.Node{identity, p1, p2}, []*graph.Edge{edge1, edge2}),
		VisualizationMetadata: vis,
	}
}
