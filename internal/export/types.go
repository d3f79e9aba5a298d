// Package export renders a Graph or an AnalysisResult into the wire shapes
// external callers consume (§6.2, §6.3): JSON/YAML for machine consumption,
// a go-pretty table for a terminal-friendly summary.
package export

import (
	"fmt"

	"github.com/alevsk/iamgraph/internal/analyzer"
	"github.com/alevsk/iamgraph/internal/graph"
)

// Type selects which renderer Format uses.
type Type string

const (
	TypeJSON  Type = "json"
	TypeYAML  Type = "yaml"
	TypeTable Type = "table"
)

// ParseType validates a formatter name from CLI flags or API query params.
func ParseType(s string) (Type, error) {
	switch Type(s) {
	case TypeJSON, TypeYAML, TypeTable:
		return Type(s), nil
	default:
		return "", fmt.Errorf("export: unknown formatter type %q", s)
	}
}

// GraphNode is the wire shape of a single node in a graph export (§6.2).
type GraphNode struct {
	ID         string                 `json:"id" yaml:"id"`
	Type       string                 `json:"type" yaml:"type"`
	Name       string                 `json:"name" yaml:"name"`
	Properties map[string]interface{} `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// GraphEdge is the wire shape of a single edge in a graph export (§6.2).
type GraphEdge struct {
	Source     string                 `json:"source" yaml:"source"`
	Target     string                 `json:"target" yaml:"target"`
	Type       string                 `json:"type" yaml:"type"`
	Properties map[string]interface{} `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// GraphMetadata summarizes a graph export's size and type distribution.
type GraphMetadata struct {
	TotalNodes int            `json:"total_nodes" yaml:"total_nodes"`
	TotalEdges int            `json:"total_edges" yaml:"total_edges"`
	NodeTypes  map[string]int `json:"node_types" yaml:"node_types"`
	EdgeTypes  map[string]int `json:"edge_types" yaml:"edge_types"`
}

// GraphExport is the full serialized graph document described by §6.2.
type GraphExport struct {
	Nodes    []GraphNode   `json:"nodes" yaml:"nodes"`
	Edges    []GraphEdge   `json:"edges" yaml:"edges"`
	Metadata GraphMetadata `json:"metadata" yaml:"metadata"`
}

// FromGraph converts an in-memory Graph into its §6.2 export shape.
func FromGraph(g *graph.Graph) *GraphExport {
	nodes := g.Nodes()
	edges := g.Edges()

	exp := &GraphExport{
		Nodes: make([]GraphNode, 0, len(nodes)),
		Edges: make([]GraphEdge, 0, len(edges)),
		Metadata: GraphMetadata{
			TotalNodes: len(nodes),
			TotalEdges: len(edges),
			NodeTypes:  map[string]int{},
			EdgeTypes:  map[string]int{},
		},
	}

	for _, n := range nodes {
		exp.Nodes = append(exp.Nodes, GraphNode{
			ID:         n.ID,
			Type:       string(n.Type),
			Name:       n.Name,
			Properties: n.Properties,
		})
		exp.Metadata.NodeTypes[string(n.Type)]++
	}

	for _, e := range edges {
		exp.Edges = append(exp.Edges, GraphEdge{
			Source:     e.Source,
			Target:     e.Target,
			Type:       string(e.Type),
			Properties: e.Properties,
		})
		exp.Metadata.EdgeTypes[string(e.Type)]++
	}

	return exp
}

// FromAnalysis is a thin pass-through: AnalysisResult already matches §6.3's
// wire shape via its own json tags, so export only needs to hand it to a
// Formatter alongside GraphExport.
func FromAnalysis(r *analyzer.AnalysisResult) *analyzer.AnalysisResult { return r }
