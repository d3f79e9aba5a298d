package analyzer

import "github.com/alevsk/iamgraph/internal/graph"

// singleStepCategory buckets a single escalation edge into its category
// per §4.2.1: impersonation/key-creation are critical, deploy-as-compute
// capabilities are high, everything else in the escalation set is medium.
func singleStepCategory(kind graph.EdgeType) Category {
	switch kind {
	case graph.EdgeCanImpersonateSA, graph.EdgeCanCreateServiceAccountKey:
		return CategoryCritical
	case graph.EdgeCanDeployFunctionAs, graph.EdgeCanDeployCloudRunAs:
		return CategoryHigh
	default:
		return CategoryMedium
	}
}

// findSingleStepPaths creates a length-1 AttackPath for every edge in the
// graph whose kind is in the canonical escalation-edge set.
func (a *Analyzer) findSingleStepPaths(g *graph.Graph) map[Category][]*AttackPath {
	out := map[Category][]*AttackPath{}
	for _, e := range g.Edges() {
		if !e.IsEscalation() {
			continue
		}
		path := a.buildAttackPath(g, []string{e.Source, e.Target})
		if path == nil {
			continue
		}
		cat := singleStepCategory(e.Type)
		out[cat] = append(out[cat], path)
	}
	return out
}
