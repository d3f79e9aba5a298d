package analyzer

import (
	"github.com/google/uuid"

	"github.com/alevsk/iamgraph/internal/graph"
)

// Analyzer enumerates attack paths, scores nodes, identifies critical
// nodes and detects vulnerabilities over a Graph. Run is a pure function
// of its input graph and the Analyzer's configuration.
type Analyzer struct {
	cfg        Config
	riskScores map[string]NodeRisk
}

// New returns an Analyzer configured with cfg.
func New(cfg Config) *Analyzer {
	return &Analyzer{cfg: cfg}
}

// Run executes every sub-algorithm in §4.2 over g and returns the combined
// AnalysisResult. Risk scores are computed first since path visualization
// metadata (risk-level buckets) depends on them.
func (a *Analyzer) Run(g *graph.Graph) *AnalysisResult {
	a.riskScores = a.computeRiskScores(g)

	attackPaths := map[Category][]*AttackPath{}
	mergeInto(attackPaths, a.findSingleStepPaths(g))

	multiStep, truncatedPairs := a.findMultiStepPaths(g)
	mergeInto(attackPaths, multiStep)

	if lateral := a.findLateralMovementPaths(g); len(lateral) > 0 {
		attackPaths[CategoryLateralMovement] = lateral
	}

	criticalNodes := a.identifyCriticalNodes(g, a.riskScores)
	vulnerabilities := a.detectVulnerabilities(g)

	result := &AnalysisResult{
		RunID:           uuid.NewString(),
		AttackPaths:     attackPaths,
		RiskScores:      a.riskScores,
		CriticalNodes:   criticalNodes,
		Vulnerabilities: vulnerabilities,
	}
	result.Statistics = a.computeStatistics(g, result, truncatedPairs)
	return result
}

func mergeInto(dst, src map[Category][]*AttackPath) {
	for cat, paths := range src {
		dst[cat] = append(dst[cat], paths...)
	}
}

func (a *Analyzer) computeStatistics(g *graph.Graph, result *AnalysisResult, truncatedPairs int) Statistics {
	highRisk := 0
	for _, r := range result.RiskScores {
		if r.Total > 0.7 {
			highRisk++
		}
	}
	return Statistics{
		TotalNodes:               g.NodeCount(),
		TotalEdges:               g.EdgeCount(),
		TotalAttackPaths:         result.TotalPaths(),
		PrivilegeEscalationPaths: len(result.AttackPaths[CategoryPrivilegeEscalation]),
		LateralMovementPaths:     len(result.AttackPaths[CategoryLateralMovement]),
		CriticalNodes:            len(result.CriticalNodes),
		Vulnerabilities:          len(result.Vulnerabilities),
		HighRiskNodes:            highRisk,
		TruncatedPairs:           truncatedPairs,
	}
}
