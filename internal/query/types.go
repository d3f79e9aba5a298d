// Package query answers point queries against a built Graph and runs
// what-if simulations over cloned copies of it, per §4.4: the Graph is
// read-only to the query side and exclusively owned by the simulation side
// once cloned.
package query

import "github.com/alevsk/iamgraph/internal/analyzer"

// SimulationResult reports the delta in attack paths a hypothetical
// binding mutation would produce, relative to the baseline graph.
type SimulationResult struct {
	RiskDelta        float64                `json:"risk_delta"`
	NewPaths         []*analyzer.AttackPath `json:"new_paths"`
	BrokenPaths      []*analyzer.AttackPath `json:"broken_paths"`
	NewAttackVectors []string               `json:"new_attack_vectors"`
	Recommendations  []string               `json:"recommendations"`
	Error            string                 `json:"error,omitempty"`
}
