package analyzer

import (
	"sort"

	"github.com/alevsk/iamgraph/internal/graph"
)

const (
	criticalNodeLimit     = 20
	criticalNodeThreshold = 0.1
)

// identifyCriticalNodes implements §4.2.5: betweenness centrality over the
// full graph, top 20 nodes above the 0.1 threshold.
func (a *Analyzer) identifyCriticalNodes(g *graph.Graph, riskScores map[string]NodeRisk) []CriticalNode {
	betweenness := g.BetweennessCentrality()

	type scored struct {
		id string
		c  float64
	}
	ranked := make([]scored, 0, len(betweenness))
	for id, c := range betweenness {
		ranked = append(ranked, scored{id: id, c: c})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].c != ranked[j].c {
			return ranked[i].c > ranked[j].c
		}
		return ranked[i].id < ranked[j].id
	})

	var out []CriticalNode
	for _, r := range ranked {
		if len(out) >= criticalNodeLimit {
			break
		}
		if r.c <= criticalNodeThreshold {
			continue
		}
		n := g.Node(r.id)
		if n == nil {
			continue
		}
		out = append(out, CriticalNode{
			NodeID:     r.id,
			Centrality: r.c,
			Type:       string(n.Type),
			RiskScore:  riskScores[r.id].Total,
		})
	}
	return out
}
