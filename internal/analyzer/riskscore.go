package analyzer

import "github.com/alevsk/iamgraph/internal/graph"

// computeRiskScores implements §4.2.4 for every node in the graph.
func (a *Analyzer) computeRiskScores(g *graph.Graph) map[string]NodeRisk {
	centrality := g.DegreeCentrality()
	out := make(map[string]NodeRisk, g.NodeCount())
	for _, n := range g.Nodes() {
		c := centrality[n.ID]
		base := graph.NodeBaseRisk(n, a.cfg.DangerousRoles)
		total := graph.NodeRiskScore(n, c, a.cfg.DangerousRoles)
		out[n.ID] = NodeRisk{
			Base:       base,
			Centrality: c,
			Total:      total,
		}
	}
	return out
}
