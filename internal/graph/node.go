// Package graph defines the in-memory attack-path graph model: nodes, edges,
// risk scoring and the structural invariants the rest of the system relies on.
package graph

import "fmt"

// NodeType is the closed set of node kinds the graph can contain.
type NodeType string

const (
	NodeUser           NodeType = "user"
	NodeServiceAccount NodeType = "service_account"
	NodeGroup          NodeType = "group"
	NodeProject        NodeType = "project"
	NodeFolder         NodeType = "folder"
	NodeOrganization   NodeType = "organization"
	NodeRole           NodeType = "role"
	NodeCustomRole     NodeType = "custom_role"
	NodeResource       NodeType = "resource"
)

// validNodeTypes is used by Validate to reject anything outside the closed set.
var validNodeTypes = map[NodeType]bool{
	NodeUser:           true,
	NodeServiceAccount: true,
	NodeGroup:          true,
	NodeProject:        true,
	NodeFolder:         true,
	NodeOrganization:   true,
	NodeRole:           true,
	NodeCustomRole:     true,
	NodeResource:       true,
}

// Node is a single vertex in the attack-path graph. ID is the canonical
// "kind:identifier" string (e.g. "sa:my-sa@proj.iam.gserviceaccount.com",
// "project:my-proj", "role:roles/owner") used for lookups and edge endpoints.
type Node struct {
	ID         string                 `json:"id"`
	Type       NodeType               `json:"type"`
	Name       string                 `json:"name"`
	Properties map[string]interface{} `json:"properties,omitempty"`
}

// Validate reports whether the node has a non-empty ID and a recognized type.
func (n *Node) Validate() error {
	if n.ID == "" {
		return fmt.Errorf("graph: node has empty id")
	}
	if !validNodeTypes[n.Type] {
		return fmt.Errorf("graph: node %q has unknown type %q", n.ID, n.Type)
	}
	return nil
}

// Prop reads a property, returning ok=false when absent.
func (n *Node) Prop(key string) (interface{}, bool) {
	if n.Properties == nil {
		return nil, false
	}
	v, ok := n.Properties[key]
	return v, ok
}

// BoolProp reads a boolean property, defaulting to false when absent or of
// the wrong type.
func (n *Node) BoolProp(key string) bool {
	v, ok := n.Prop(key)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// RiskFactors returns the individual contributions that fed IDs's risk score,
// for use in explanations and audits. It mirrors the arithmetic in
// NodeRiskScore but keeps each term visible instead of collapsing it into a single number.
func (n *Node) RiskFactors(degreeCentrality float64, dangerousRoles []string) map[string]float64 {
	factors := map[string]float64{}
	factors["type_base"] = typeBaseRisk(n)
	if n.Type == NodeRole || n.Type == NodeCustomRole {
		if hasDangerousRole(n.ID, dangerousRoles) {
			factors["dangerous_role"] = dangerousRoleRisk
		}
	}
	factors["degree_centrality"] = degreeCentrality * centralityWeight
	return factors
}
