package analyzer

import (
	"fmt"
	"strings"

	"github.com/alevsk/iamgraph/internal/graph"
)

// detectVulnerabilities implements §4.2.6.
func (a *Analyzer) detectVulnerabilities(g *graph.Graph) []Vulnerability {
	var out []Vulnerability
	out = append(out, a.overprivilegedServiceAccounts(g)...)
	out = append(out, a.externalHighPrivilegePrincipals(g)...)
	return out
}

func (a *Analyzer) overprivilegedServiceAccounts(g *graph.Graph) []Vulnerability {
	var out []Vulnerability
	for _, n := range g.Nodes() {
		if n.Type != graph.NodeServiceAccount {
			continue
		}
		dangerous := a.dangerousRoleNeighbors(g, n.ID)
		if len(dangerous) == 0 {
			continue
		}
		out = append(out, Vulnerability{
			Type:     "overprivileged_service_account",
			Severity: "high",
			Resource: n.ID,
			Details:  fmt.Sprintf("Service account has %d dangerous role(s)", len(dangerous)),
			Roles:    dangerous,
		})
	}
	return out
}

func (a *Analyzer) externalHighPrivilegePrincipals(g *graph.Graph) []Vulnerability {
	var out []Vulnerability
	for _, n := range g.Nodes() {
		if n.Type != graph.NodeUser {
			continue
		}
		domain := emailDomainOf(n.ID)
		if domain == "" || a.isTrustedDomain(domain) {
			continue
		}
		dangerous := a.dangerousRoleNeighbors(g, n.ID)
		if len(dangerous) == 0 {
			continue
		}
		out = append(out, Vulnerability{
			Type:     "external_user_high_privilege",
			Severity: "critical",
			Resource: n.ID,
			Details:  fmt.Sprintf("External user has %d dangerous role(s)", len(dangerous)),
			Roles:    dangerous,
		})
	}
	return out
}

// dangerousRoleNeighbors returns the dangerous role node ids a principal
// directly holds a has_role edge to.
func (a *Analyzer) dangerousRoleNeighbors(g *graph.Graph, nodeID string) []string {
	var out []string
	for _, e := range g.OutEdges(nodeID, graph.EdgeHasRole) {
		for _, d := range a.cfg.DangerousRoles {
			if strings.Contains(e.Target, d) {
				out = append(out, e.Target)
				break
			}
		}
	}
	return out
}

func (a *Analyzer) isTrustedDomain(domain string) bool {
	for _, d := range a.cfg.TrustedDomains {
		if domain == d {
			return true
		}
	}
	return false
}

func emailDomainOf(userNodeID string) string {
	email := strings.TrimPrefix(userNodeID, "user:")
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return ""
	}
	return email[at+1:]
}
