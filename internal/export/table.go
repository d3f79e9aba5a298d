package export

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/alevsk/iamgraph/internal/analyzer"
)

// Table renders an AnalysisResult or GraphExport as go-pretty tables: one
// titled table per logical section, joined by blank lines.
type Table struct{}

func (t *Table) Format(data interface{}) (string, error) {
	switch v := data.(type) {
	case *analyzer.AnalysisResult:
		return formatAnalysisTable(v), nil
	case *GraphExport:
		return formatGraphTable(v), nil
	default:
		return "", fmt.Errorf("export: table formatter does not support %T", data)
	}
}

func formatGraphTable(g *GraphExport) string {
	nodeTable := table.NewWriter()
	nodeTable.SetStyle(table.StyleLight)
	nodeTable.Style().Options.SeparateColumns = true
	nodeTable.SetTitle("NODES")
	nodeTable.AppendHeader(table.Row{"ID", "TYPE", "NAME"})
	for _, n := range g.Nodes {
		nodeTable.AppendRow(table.Row{n.ID, n.Type, n.Name})
	}
	nodeTable.SortBy([]table.SortBy{{Name: "ID", Mode: table.Asc}})

	edgeTable := table.NewWriter()
	edgeTable.SetStyle(table.StyleLight)
	edgeTable.Style().Options.SeparateColumns = true
	edgeTable.SetTitle("EDGES")
	edgeTable.AppendHeader(table.Row{"SOURCE", "TYPE", "TARGET"})
	for _, e := range g.Edges {
		edgeTable.AppendRow(table.Row{e.Source, e.Type, e.Target})
	}
	edgeTable.SortBy([]table.SortBy{{Name: "SOURCE", Mode: table.Asc}})

	return nodeTable.Render() + "\n\n" + edgeTable.Render() + "\n"
}

func formatAnalysisTable(r *analyzer.AnalysisResult) string {
	pathsTable := table.NewWriter()
	pathsTable.SetStyle(table.StyleLight)
	pathsTable.Style().Options.SeparateColumns = true
	pathsTable.SetTitle("ATTACK PATHS")
	pathsTable.AppendHeader(table.Row{"CATEGORY", "SOURCE", "TARGET", "RISK", "DESCRIPTION"})

	for category, paths := range r.AttackPaths {
		for _, p := range paths {
			pathsTable.AppendRow(table.Row{
				string(category),
				p.SourceNode.ID,
				p.TargetNode.ID,
				fmt.Sprintf("%.2f", p.RiskScore),
				p.Description,
			})
		}
	}
	pathsTable.SortBy([]table.SortBy{
		{Name: "RISK", Mode: table.DscNumeric},
		{Name: "CATEGORY", Mode: table.Asc},
	})

	criticalTable := table.NewWriter()
	criticalTable.SetStyle(table.StyleLight)
	criticalTable.Style().Options.SeparateColumns = true
	criticalTable.SetTitle("CRITICAL NODES")
	criticalTable.AppendHeader(table.Row{"NODE", "TYPE", "CENTRALITY", "RISK"})
	for _, cn := range r.CriticalNodes {
		criticalTable.AppendRow(table.Row{
			cn.NodeID, cn.Type, fmt.Sprintf("%.3f", cn.Centrality), fmt.Sprintf("%.2f", cn.RiskScore),
		})
	}
	criticalTable.SortBy([]table.SortBy{{Name: "CENTRALITY", Mode: table.DscNumeric}})

	vulnTable := table.NewWriter()
	vulnTable.SetStyle(table.StyleLight)
	vulnTable.Style().Options.SeparateColumns = true
	vulnTable.SetTitle("VULNERABILITIES")
	vulnTable.AppendHeader(table.Row{"TYPE", "SEVERITY", "RESOURCE", "DETAILS"})
	for _, v := range r.Vulnerabilities {
		vulnTable.AppendRow(table.Row{v.Type, v.Severity, v.Resource, v.Details})
	}

	statsTable := table.NewWriter()
	statsTable.SetStyle(table.StyleLight)
	statsTable.Style().Options.SeparateColumns = true
	statsTable.SetTitle("STATISTICS")
	statsTable.AppendHeader(table.Row{"KEY", "VALUE"})
	statsTable.AppendRow(table.Row{"total_nodes", r.Statistics.TotalNodes})
	statsTable.AppendRow(table.Row{"total_edges", r.Statistics.TotalEdges})
	statsTable.AppendRow(table.Row{"total_attack_paths", r.Statistics.TotalAttackPaths})
	statsTable.AppendRow(table.Row{"privilege_escalation_paths", r.Statistics.PrivilegeEscalationPaths})
	statsTable.AppendRow(table.Row{"lateral_movement_paths", r.Statistics.LateralMovementPaths})
	statsTable.AppendRow(table.Row{"critical_nodes", r.Statistics.CriticalNodes})
	statsTable.AppendRow(table.Row{"vulnerabilities", r.Statistics.Vulnerabilities})
	statsTable.AppendRow(table.Row{"high_risk_nodes", r.Statistics.HighRiskNodes})
	statsTable.AppendRow(table.Row{"truncated_pairs", r.Statistics.TruncatedPairs})

	var b strings.Builder
	b.WriteString(statsTable.Render())
	b.WriteString("\n\n")
	b.WriteString(pathsTable.Render())
	b.WriteString("\n\n")
	b.WriteString(criticalTable.Render())
	b.WriteString("\n\n")
	b.WriteString(vulnTable.Render())
	b.WriteString("\n")
	return b.String()
}
