package graph

import "strings"

// Weight constants mirror the scoring model of the collector this graph
// format was adapted from: a small base weight per high-value node type,
// a bonus for dangerous role bindings, and a centrality term.
const (
	orgBaseRisk        = 0.3
	folderBaseRisk     = 0.25
	projectBaseRisk    = 0.2
	serviceAccountRisk = 0.1
	dangerousRoleRisk  = 0.5
	centralityWeight   = 0.2

	highRiskThreshold = 0.6

	hasRoleMinRisk = 0.2
	hasRoleMaxRisk = 0.6

	edgeConditionDamping    = 0.7
	edgeAuditConfirmedBoost = 1.2
)

// edgeBaseRisk gives each edge kind a base score in [0,1] before condition
// damping or audit-confirmed boosting is applied. has_role is absent from
// this table: its base varies by dangerous-role match (see hasRoleBaseRisk)
// rather than being a single constant.
var edgeBaseRisk = map[EdgeType]float64{
	EdgeParentOf: 0.0,
	EdgeMemberOf: 0.1,
	EdgeRunsAs:   0.2,

	EdgeCanImpersonate:                  0.7,
	EdgeCanImpersonateSA:                0.9,
	EdgeCanCreateServiceAccountKey:      0.85,
	EdgeCanActAsViaVM:                   0.6,
	EdgeCanDeployFunctionAs:             0.9,
	EdgeCanDeployCloudRunAs:             0.6,
	EdgeCanTriggerBuildAs:               0.6,
	EdgeCanLoginToVM:                    0.5,
	EdgeCanSatisfyIAMCondition:          0.4,
	EdgeExternalPrincipalCanImpersonate: 0.9,
	EdgeCanHijackWorkloadIdentity:       0.8,
	EdgeCanModifyCustomRole:             0.6,
	EdgeCanLaunchAsDefaultSA:            0.6,
	EdgeCanAttachServiceAccount:         0.6,
	EdgeCanUpdateMetadata:               0.5,
	EdgeCanDeployGKEPodAs:               0.6,
	EdgeCanAssignCustomRole:             0.5,
	EdgeHasTagBindingEscalation:         0.6,
	EdgeCanSSHAndImpersonate:            0.7,

	EdgeHasImpersonated:       0.5,
	EdgeHasEscalatedPrivilege: 0.6,
	EdgeHasAccessed:           0.2,
}

// typeBaseRisk returns the base contribution of a node's type to its risk
// score, before dangerous-role and centrality terms are added.
func typeBaseRisk(n *Node) float64 {
	switch {
	case strings.HasPrefix(n.ID, "org:"):
		return orgBaseRisk
	case strings.HasPrefix(n.ID, "folder:"):
		return folderBaseRisk
	case strings.HasPrefix(n.ID, "project:"):
		return projectBaseRisk
	case strings.HasPrefix(n.ID, "sa:"):
		return serviceAccountRisk
	default:
		return 0
	}
}

func hasDangerousRole(roleNodeID string, dangerousRoles []string) bool {
	for _, r := range dangerousRoles {
		if strings.Contains(roleNodeID, r) {
			return true
		}
	}
	return false
}

// NodeBaseRisk computes the kind + dangerous-role contribution to a node's
// risk score, before the centrality term is added. Exposed separately from
// NodeRiskScore so callers that need to report {base, centrality, total}
// individually (see internal/analyzer) don't have to reverse-engineer it
// out of a clamped total.
func NodeBaseRisk(n *Node, dangerousRoles []string) float64 {
	risk := typeBaseRisk(n)
	if n.Type == NodeRole || n.Type == NodeCustomRole {
		if hasDangerousRole(n.ID, dangerousRoles) {
			risk += dangerousRoleRisk
		}
	}
	return risk
}

// NodeRiskScore computes a node's risk score in [0,1] given its precomputed
// degree centrality and the configured dangerous-role list.
func NodeRiskScore(n *Node, degreeCentrality float64, dangerousRoles []string) float64 {
	risk := NodeBaseRisk(n, dangerousRoles) + degreeCentrality*centralityWeight
	if risk > 1.0 {
		risk = 1.0
	}
	return risk
}

// hasRoleRisk returns a has_role edge's base risk: hasRoleMinRisk normally,
// hasRoleMaxRisk when the bound role (e.Target, a "role:..." node id)
// matches a configured dangerous-role pattern.
func hasRoleRisk(e *Edge, dangerousRoles []string) float64 {
	if hasDangerousRole(e.Target, dangerousRoles) {
		return hasRoleMaxRisk
	}
	return hasRoleMinRisk
}

// RiskScore computes an edge's risk score: a base score for its kind
// (has_role varies by whether its bound role matches dangerousRoles),
// damped by 0.7x when the edge carries an IAM condition of any class,
// and boosted by 1.2x (capped at 1.0) when it carries
// confirmed_by_audit=true.
func (e *Edge) RiskScore(dangerousRoles []string) float64 {
	var base float64
	if e.Type == EdgeHasRole {
		base = hasRoleRisk(e, dangerousRoles)
	} else if b, ok := edgeBaseRisk[e.Type]; ok {
		base = b
	} else {
		base = 0.3
	}
	if e.HasCondition() {
		base *= edgeConditionDamping
	}
	if e.IsAuditConfirmed() {
		base *= edgeAuditConfirmedBoost
	}
	if base > 1.0 {
		base = 1.0
	}
	return base
}

// IsPrivilegeEscalation reports whether this edge kind belongs to the
// canonical privilege-escalation family (alias of IsEscalation, kept for
// parity with the risk-scoring vocabulary used elsewhere in this package).
func (e *Edge) IsPrivilegeEscalation() bool {
	return e.IsEscalation()
}
