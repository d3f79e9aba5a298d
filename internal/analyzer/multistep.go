package analyzer

import (
	"strings"

	"github.com/alevsk/iamgraph/internal/graph"
)

// identityNodes returns every node whose id looks like a principal:
// user:, sa: or group: prefixed.
func identityNodes(g *graph.Graph) []*graph.Node {
	var out []*graph.Node
	for _, n := range g.Nodes() {
		if n.Type == graph.NodeUser || n.Type == graph.NodeServiceAccount || n.Type == graph.NodeGroup {
			out = append(out, n)
		}
	}
	return out
}

// highValueTargets returns service accounts, high-value-pattern role
// nodes, and project/folder/organization nodes: the destinations the
// multi-step search treats as worth reaching.
func (a *Analyzer) highValueTargets(g *graph.Graph) []*graph.Node {
	var out []*graph.Node
	for _, n := range g.Nodes() {
		switch n.Type {
		case graph.NodeServiceAccount, graph.NodeProject, graph.NodeFolder, graph.NodeOrganization:
			out = append(out, n)
		case graph.NodeRole, graph.NodeCustomRole:
			if matchesHighValueRole(n.ID) {
				out = append(out, n)
			}
		}
	}
	return out
}

func matchesHighValueRole(roleNodeID string) bool {
	for _, pattern := range highValueRolePatterns {
		if strings.Contains(roleNodeID, pattern) {
			return true
		}
	}
	return false
}

// multiStepRisk implements the §4.2.2 formula for paths with two or more
// escalation steps.
func multiStepRisk(steps int) float64 {
	risk := 0.85 + 0.05*float64(steps-2)
	if risk > 1.0 {
		risk = 1.0
	}
	return risk
}

func countEscalationSteps(edges []*graph.Edge) int {
	n := 0
	for _, e := range edges {
		if e.IsEscalation() {
			n++
		}
	}
	return n
}

// findMultiStepPaths enumerates simple paths between every (identity,
// target) pair up to cfg.MaxPathLength and categorizes them by escalation
// step count, per §4.2.2. Pairs whose path count would exceed
// cfg.MaxPathsPerPair are truncated (kept paths are the first
// MaxPathsPerPair found in discovery order) and counted in truncatedPairs.
func (a *Analyzer) findMultiStepPaths(g *graph.Graph) (map[Category][]*AttackPath, int) {
	out := map[Category][]*AttackPath{}
	identities := identityNodes(g)
	targets := a.highValueTargets(g)
	truncatedPairs := 0

	for _, identity := range identities {
		for _, target := range targets {
			if identity.ID == target.ID {
				continue
			}
			nodePaths := g.SimplePaths(identity.ID, target.ID, a.cfg.MaxPathLength)
			if a.cfg.MaxPathsPerPair > 0 && len(nodePaths) > a.cfg.MaxPathsPerPair {
				nodePaths = nodePaths[:a.cfg.MaxPathsPerPair]
				truncatedPairs++
			}
			for _, nodePath := range nodePaths {
				path := a.buildAttackPath(g, nodePath)
				if path == nil {
					continue
				}
				steps := countEscalationSteps(path.PathEdges)
				switch {
				case steps >= 2:
					path.RiskScore = multiStepRisk(steps)
					out[CategoryCriticalMultiStep] = append(out[CategoryCriticalMultiStep], path)
				case steps == 1:
					out[CategoryPrivilegeEscalation] = append(out[CategoryPrivilegeEscalation], path)
				default:
					// No escalation step on this walk; not an attack path.
				}
			}
		}
	}
	return out, truncatedPairs
}
