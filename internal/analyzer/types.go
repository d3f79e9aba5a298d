// Package analyzer enumerates and scores privilege-escalation and
// lateral-movement attack paths over an internal/graph.Graph, identifies
// structurally critical nodes, and flags vulnerability patterns.
package analyzer

import "github.com/alevsk/iamgraph/internal/graph"

// Category is the bucket an AttackPath is filed under in an
// AnalysisResult's attack_paths map. Categories overlap by design: the
// same escalation can legitimately appear under more than one bucket (for
// example a single-step can_impersonate_sa edge is both "critical" and,
// if it also satisfies the multi-step criteria along a longer path,
// "critical_multi_step" for that separate path), buckets are not
// deduplicated against each other.
type Category string

const (
	CategoryCritical           Category = "critical"
	CategoryHigh               Category = "high"
	CategoryMedium             Category = "medium"
	CategoryCriticalMultiStep  Category = "critical_multi_step"
	CategoryPrivilegeEscalation Category = "privilege_escalation"
	CategoryLateralMovement    Category = "lateral_movement"
)

// VisualizationMetadata carries precomputed display data for an AttackPath
// so external renderers never need to re-derive it from the graph.
type VisualizationMetadata struct {
	NodeMetadata        []NodeDisplay `json:"node_metadata"`
	EdgeMetadata        []EdgeDisplay `json:"edge_metadata"`
	EscalationTechniques []Technique  `json:"escalation_techniques"`
	PermissionsUsed     []string      `json:"permissions_used"`
	AttackSummary       string        `json:"attack_summary"`
}

// NodeDisplay is the per-node slice of VisualizationMetadata.
type NodeDisplay struct {
	ID         string                 `json:"id"`
	Label      string                 `json:"label"`
	Icon       string                 `json:"icon"`
	Color      string                 `json:"color"`
	RiskLevel  string                 `json:"risk_level"`
	Properties map[string]interface{} `json:"properties,omitempty"`
}

// EdgeDisplay is the per-edge slice of VisualizationMetadata.
type EdgeDisplay struct {
	Source    string  `json:"source"`
	Target    string  `json:"target"`
	Label     string  `json:"label"`
	Color     string  `json:"color"`
	RiskScore float64 `json:"risk_score"`
}

// Technique describes the escalation capability an edge kind represents,
// for display alongside an AttackPath.
type Technique struct {
	EdgeKind    graph.EdgeType `json:"edge_kind"`
	Name        string         `json:"name"`
	Icon        string         `json:"icon"`
	Description string         `json:"description"`
	Permission  string         `json:"permission"`
}

// AttackPath is an ordered walk through the graph plus precomputed scoring
// and display metadata. Invariant: len(PathEdges) == len(PathNodes)-1 and
// no node repeats in PathNodes, except for the deliberate lateral-movement
// shape built by findLateralMovementPaths (see that function's doc).
type AttackPath struct {
	SourceNode            *graph.Node           `json:"source_node"`
	TargetNode            *graph.Node           `json:"target_node"`
	PathNodes             []*graph.Node         `json:"path_nodes"`
	PathEdges             []*graph.Edge         `json:"path_edges"`
	RiskScore             float64               `json:"risk_score"`
	Description           string                `json:"description"`
	VisualizationMetadata VisualizationMetadata `json:"visualization_metadata"`
}

// NodeRisk is the per-node entry of AnalysisResult.RiskScores.
type NodeRisk struct {
	Base       float64 `json:"base"`
	Centrality float64 `json:"centrality"`
	Total      float64 `json:"total"`
}

// CriticalNode is an entry of AnalysisResult.CriticalNodes.
type CriticalNode struct {
	NodeID     string  `json:"node_id"`
	Centrality float64 `json:"centrality"`
	Type       string  `json:"type"`
	RiskScore  float64 `json:"risk_score"`
}

// Vulnerability is a structured finding of AnalysisResult.Vulnerabilities.
type Vulnerability struct {
	Type     string   `json:"type"`
	Severity string   `json:"severity"`
	Resource string   `json:"resource"`
	Details  string   `json:"details"`
	Roles    []string `json:"roles,omitempty"`
}

// Statistics summarizes an AnalysisResult.
type Statistics struct {
	TotalNodes                int `json:"total_nodes"`
	TotalEdges                int `json:"total_edges"`
	TotalAttackPaths          int `json:"total_attack_paths"`
	PrivilegeEscalationPaths  int `json:"privilege_escalation_paths"`
	LateralMovementPaths      int `json:"lateral_movement_paths"`
	CriticalNodes             int `json:"critical_nodes"`
	Vulnerabilities           int `json:"vulnerabilities"`
	HighRiskNodes             int `json:"high_risk_nodes"`
	TruncatedPairs            int `json:"truncated_pairs"`
}

// AnalysisResult is the immutable bundle returned by Run.
type AnalysisResult struct {
	RunID          string                    `json:"run_id"`
	AttackPaths    map[Category][]*AttackPath `json:"attack_paths"`
	RiskScores     map[string]NodeRisk       `json:"risk_scores"`
	CriticalNodes  []CriticalNode            `json:"critical_nodes"`
	Vulnerabilities []Vulnerability          `json:"vulnerabilities"`
	Statistics     Statistics                `json:"statistics"`
}

// TotalPaths returns the sum of attack paths across every category.
func (r *AnalysisResult) TotalPaths() int {
	total := 0
	for _, paths := range r.AttackPaths {
		total += len(paths)
	}
	return total
}
