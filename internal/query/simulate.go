package query

import (
	"fmt"
	"sort"

	"github.com/alevsk/iamgraph/internal/analyzer"
	"github.com/alevsk/iamgraph/internal/builder"
	"github.com/alevsk/iamgraph/internal/graph"
)

// SimulateBindingAddition clones the graph, grants (member, role, resource),
// incrementally resynthesizes the derived edges the grant unlocks, and
// reports the resulting delta in attack paths.
func (e *Engine) SimulateBindingAddition(member, role, resource string, opts *builder.Options) *SimulationResult {
	return e.simulate(func(g *graph.Graph) {
		builder.AddBinding(g, opts, member, role, resource)
	})
}

// SimulateBindingRemoval clones the graph, revokes (member, role, resource),
// and reports which attack paths that revocation breaks.
func (e *Engine) SimulateBindingRemoval(member, role, resource string, opts *builder.Options) *SimulationResult {
	if !e.g.HasEdge(memberNodeID(member), roleNodeIDOf(role), graph.EdgeHasRole) {
		return &SimulationResult{Error: fmt.Sprintf("query: no has_role binding for %s on %s", member, role)}
	}
	return e.simulate(func(g *graph.Graph) {
		builder.RemoveBinding(g, opts, member, role, resource)
	})
}

// SimulateRoleChange clones the graph, swaps member's oldRole for newRole on
// resource, and reports the combined delta.
func (e *Engine) SimulateRoleChange(member, oldRole, newRole, resource string, opts *builder.Options) *SimulationResult {
	return e.simulate(func(g *graph.Graph) {
		builder.ReplaceBinding(g, opts, member, oldRole, newRole, resource)
	})
}

// memberNodeID and roleNodeIDOf duplicate just enough of the builder's
// id-shaping rules to let the removal preflight check HasEdge without
// importing builder's unexported helpers.
func memberNodeID(member string) string {
	switch {
	case hasPrefix(member, "user:"):
		return "user:" + member[len("user:"):]
	case hasPrefix(member, "serviceAccount:"):
		return "sa:" + member[len("serviceAccount:"):]
	case hasPrefix(member, "group:"), hasPrefix(member, "sa:"):
		return member
	default:
		return "user:" + member
	}
}

func roleNodeIDOf(role string) string { return "role:" + role }

func hasPrefix(s, p string) bool {
	return len(s) >= len(p) && s[:len(p)] == p
}

func (e *Engine) simulate(mutate func(g *graph.Graph)) *SimulationResult {
	baseline := analyzer.New(e.cfg).Run(e.g)

	clone := e.g.Clone()
	mutate(clone)
	after := analyzer.New(e.cfg).Run(clone)

	newPaths, brokenPaths := diffPaths(baseline, after)

	riskDelta := 0.0
	for _, p := range newPaths {
		riskDelta += p.RiskScore
	}
	for _, p := range brokenPaths {
		riskDelta -= p.RiskScore
	}

	return &SimulationResult{
		RiskDelta:        riskDelta,
		NewPaths:         newPaths,
		BrokenPaths:      brokenPaths,
		NewAttackVectors: vectorsOf(newPaths),
		Recommendations:  recommend(newPaths),
	}
}

// pathSignature is the equality key two AttackPaths are compared by for the
// diff: their node-id sequence and edge-kind sequence, per §4.4's "two paths
// are equal iff..." rule.
func pathSignature(p *analyzer.AttackPath) string {
	ids := make([]string, len(p.PathNodes))
	for i, n := range p.PathNodes {
		ids[i] = n.ID
	}
	kinds := make([]string, len(p.PathEdges))
	for i, ed := range p.PathEdges {
		kinds[i] = string(ed.Type)
	}
	return fmt.Sprintf("%v|%v", ids, kinds)
}

func diffPaths(baseline, after *analyzer.AnalysisResult) (newPaths, brokenPaths []*analyzer.AttackPath) {
	before := map[string]bool{}
	for _, paths := range baseline.AttackPaths {
		for _, p := range paths {
			before[pathSignature(p)] = true
		}
	}
	afterSigs := map[string]bool{}
	for _, paths := range after.AttackPaths {
		for _, p := range paths {
			sig := pathSignature(p)
			afterSigs[sig] = true
			if !before[sig] {
				newPaths = append(newPaths, p)
			}
		}
	}
	for _, paths := range baseline.AttackPaths {
		for _, p := range paths {
			if !afterSigs[pathSignature(p)] {
				brokenPaths = append(brokenPaths, p)
			}
		}
	}
	return newPaths, brokenPaths
}

func vectorsOf(paths []*analyzer.AttackPath) []string {
	seen := map[string]bool{}
	var out []string
	for _, p := range paths {
		for _, e := range p.PathEdges {
			k := string(e.Type)
			if !seen[k] {
				seen[k] = true
				out = append(out, k)
			}
		}
	}
	sort.Strings(out)
	return out
}

func recommend(paths []*analyzer.AttackPath) []string {
	seen := map[string]bool{}
	var out []string
	for _, p := range paths {
		for _, e := range p.PathEdges {
			if !e.IsEscalation() {
				continue
			}
			msg := fmt.Sprintf("review the binding that grants %s from %s to %s", e.Type, e.Source, e.Target)
			if !seen[msg] {
				seen[msg] = true
				out = append(out, msg)
			}
		}
	}
	return out
}
