package analyzer

import (
	"fmt"
	"strings"

	"github.com/alevsk/iamgraph/internal/graph"
)

// BuildAttackPath exposes buildAttackPath to callers outside this package
// (the Query engine) that already hold a node-id walk from ShortestPath or
// SimplePaths and need it scored and decorated the same way Run's own
// enumerators do.
func (a *Analyzer) BuildAttackPath(g *graph.Graph, nodePath []string) *AttackPath {
	return a.buildAttackPath(g, nodePath)
}

// buildAttackPath materializes an AttackPath from a sequence of node IDs,
// looking up each node and the edge connecting each consecutive pair. It
// returns nil if the walk is degenerate (fewer than two nodes) or if any
// edge in the walk is missing from the graph (an invariant-violated
// condition the caller should have already prevented).
func (a *Analyzer) buildAttackPath(g *graph.Graph, nodePath []string) *AttackPath {
	if len(nodePath) < 2 {
		return nil
	}

	pathNodes := make([]*graph.Node, 0, len(nodePath))
	for _, id := range nodePath {
		n := g.Node(id)
		if n == nil {
			return nil
		}
		pathNodes = append(pathNodes, n)
	}

	pathEdges := make([]*graph.Edge, 0, len(nodePath)-1)
	for i := 0; i < len(nodePath)-1; i++ {
		e := a.edgeBetween(g, nodePath[i], nodePath[i+1])
		if e == nil {
			return nil
		}
		pathEdges = append(pathEdges, e)
	}

	risk := pathRiskScore(pathEdges, a.cfg.DangerousRoles)
	vis := a.buildVisualization(pathNodes, pathEdges)

	return &AttackPath{
		SourceNode:            pathNodes[0],
		TargetNode:            pathNodes[len(pathNodes)-1],
		PathNodes:             pathNodes,
		PathEdges:             pathEdges,
		RiskScore:             risk,
		Description:           buildDescription(pathNodes, pathEdges),
		VisualizationMetadata: vis,
	}
}

// edgeBetween returns any edge connecting source to target, preferring an
// escalation-kind edge when more than one parallel edge exists between the
// pair, since that's almost always the one relevant to the path's story.
func (a *Analyzer) edgeBetween(g *graph.Graph, source, target string) *graph.Edge {
	var fallback *graph.Edge
	for _, e := range g.OutEdges(source) {
		if e.Target != target {
			continue
		}
		if e.IsEscalation() || e.IsAuditConfirmed() {
			return e
		}
		if fallback == nil {
			fallback = e
		}
	}
	return fallback
}

// pathRiskScore is the average of the path's edge risk scores, per the
// §4.2.2 formula for single-escalation-step paths. A single-edge path (the
// §4.2.1 case) reduces to that edge's own risk score.
func pathRiskScore(edges []*graph.Edge, dangerousRoles []string) float64 {
	if len(edges) == 0 {
		return 0
	}
	sum := 0.0
	for _, e := range edges {
		sum += e.RiskScore(dangerousRoles)
	}
	return sum / float64(len(edges))
}

func buildDescription(nodes []*graph.Node, edges []*graph.Edge) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s", displayLabel(nodes[0]))
	for i, e := range edges {
		fmt.Fprintf(&b, " --[%s]--> %s", e.Type, displayLabel(nodes[i+1]))
	}
	return b.String()
}

func displayLabel(n *graph.Node) string {
	if n.Name != "" {
		return n.Name
	}
	return n.ID
}
