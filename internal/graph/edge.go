package graph

import "fmt"

// EdgeType is the closed set of relationship kinds carried by graph edges,
// grouped into structural, derived-escalation and audit-confirmed families.
type EdgeType string

// Structural edges, produced directly from the hierarchy/identity/IAM-binding
// phases of the builder.
const (
	EdgeParentOf EdgeType = "parent_of"
	EdgeMemberOf EdgeType = "member_of"
	EdgeHasRole  EdgeType = "has_role"
	EdgeRunsAs   EdgeType = "runs_as"
)

// Derived-escalation edges, synthesized from dangerous role bindings and
// resource-level metadata during the escalation-synthesis phase.
const (
	EdgeCanImpersonate                  EdgeType = "can_impersonate"
	EdgeCanImpersonateSA                 EdgeType = "can_impersonate_sa"
	EdgeCanCreateServiceAccountKey       EdgeType = "can_create_service_account_key"
	EdgeCanActAsViaVM                    EdgeType = "can_act_as_via_vm"
	EdgeCanDeployFunctionAs              EdgeType = "can_deploy_function_as"
	EdgeCanDeployCloudRunAs              EdgeType = "can_deploy_cloud_run_as"
	EdgeCanTriggerBuildAs                EdgeType = "can_trigger_build_as"
	EdgeCanLoginToVM                     EdgeType = "can_login_to_vm"
	EdgeCanSatisfyIAMCondition           EdgeType = "can_satisfy_iam_condition"
	EdgeExternalPrincipalCanImpersonate  EdgeType = "external_principal_can_impersonate"
	EdgeCanHijackWorkloadIdentity        EdgeType = "can_hijack_workload_identity"
	EdgeCanModifyCustomRole              EdgeType = "can_modify_custom_role"
	EdgeCanLaunchAsDefaultSA             EdgeType = "can_launch_as_default_sa"
	EdgeCanAttachServiceAccount          EdgeType = "can_attach_service_account"
	EdgeCanUpdateMetadata                EdgeType = "can_update_metadata"
	EdgeCanDeployGKEPodAs                EdgeType = "can_deploy_gke_pod_as"
	EdgeCanAssignCustomRole              EdgeType = "can_assign_custom_role"
	EdgeHasTagBindingEscalation          EdgeType = "has_tag_binding_escalation"
	EdgeCanSSHAndImpersonate             EdgeType = "can_ssh_and_impersonate"
)

// Audit-confirmed edges, carried over verbatim from collected audit-log data
// rather than synthesized.
const (
	EdgeHasImpersonated        EdgeType = "has_impersonated"
	EdgeHasEscalatedPrivilege  EdgeType = "has_escalated_privilege"
	EdgeHasAccessed            EdgeType = "has_accessed"
)

var validEdgeTypes = map[EdgeType]bool{
	EdgeParentOf: true, EdgeMemberOf: true, EdgeHasRole: true, EdgeRunsAs: true,

	EdgeCanImpersonate: true, EdgeCanImpersonateSA: true, EdgeCanCreateServiceAccountKey: true,
	EdgeCanActAsViaVM: true, EdgeCanDeployFunctionAs: true, EdgeCanDeployCloudRunAs: true,
	EdgeCanTriggerBuildAs: true, EdgeCanLoginToVM: true, EdgeCanSatisfyIAMCondition: true,
	EdgeExternalPrincipalCanImpersonate: true, EdgeCanHijackWorkloadIdentity: true,
	EdgeCanModifyCustomRole: true, EdgeCanLaunchAsDefaultSA: true, EdgeCanAttachServiceAccount: true,
	EdgeCanUpdateMetadata: true, EdgeCanDeployGKEPodAs: true, EdgeCanAssignCustomRole: true,
	EdgeHasTagBindingEscalation: true, EdgeCanSSHAndImpersonate: true,

	EdgeHasImpersonated: true, EdgeHasEscalatedPrivilege: true, EdgeHasAccessed: true,
}

// StructuralEdgeTypes are produced directly from collected data, never from
// escalation synthesis.
var StructuralEdgeTypes = map[EdgeType]bool{
	EdgeParentOf: true, EdgeMemberOf: true, EdgeHasRole: true, EdgeRunsAs: true,
}

// EscalationEdgeTypes is the canonical set of privilege-escalation edge
// kinds used by the path analyzer to recognize escalation steps.
var EscalationEdgeTypes = map[EdgeType]bool{
	EdgeCanImpersonate: true, EdgeCanImpersonateSA: true, EdgeCanCreateServiceAccountKey: true,
	EdgeCanActAsViaVM: true, EdgeCanDeployFunctionAs: true, EdgeCanDeployCloudRunAs: true,
	EdgeCanTriggerBuildAs: true, EdgeCanLoginToVM: true, EdgeCanSatisfyIAMCondition: true,
	EdgeExternalPrincipalCanImpersonate: true, EdgeCanHijackWorkloadIdentity: true,
	EdgeCanModifyCustomRole: true, EdgeCanLaunchAsDefaultSA: true, EdgeCanAttachServiceAccount: true,
	EdgeCanUpdateMetadata: true, EdgeCanDeployGKEPodAs: true, EdgeCanAssignCustomRole: true,
	EdgeHasTagBindingEscalation: true, EdgeCanSSHAndImpersonate: true,
	EdgeHasEscalatedPrivilege: true,
}

// ConditionClass describes how an IAM condition attached to an edge was
// classified by the condition compiler.
type ConditionClass string

const (
	ConditionNone       ConditionClass = ""
	ConditionStatic     ConditionClass = "static"
	ConditionContextual ConditionClass = "contextual"
	ConditionInvalid    ConditionClass = "invalid"
)

// Edge is a single directed relationship between two nodes, identified by
// (Source, Target, Type).
type Edge struct {
	Source     string                 `json:"source"`
	Target     string                 `json:"target"`
	Type       EdgeType               `json:"type"`
	Properties map[string]interface{} `json:"properties,omitempty"`
}

// Validate reports whether the edge has non-empty endpoints and a recognized
// type.
func (e *Edge) Validate() error {
	if e.Source == "" || e.Target == "" {
		return fmt.Errorf("graph: edge has empty endpoint (source=%q target=%q)", e.Source, e.Target)
	}
	if !validEdgeTypes[e.Type] {
		return fmt.Errorf("graph: edge %s->%s has unknown type %q", e.Source, e.Target, e.Type)
	}
	return nil
}

// Key returns the (source, target, type) identity used for edge dedup.
func (e *Edge) Key() EdgeKey {
	return EdgeKey{Source: e.Source, Target: e.Target, Type: e.Type}
}

// EdgeKey uniquely identifies an edge within the graph.
type EdgeKey struct {
	Source string
	Target string
	Type   EdgeType
}

// HasCondition reports whether the edge carries an IAM condition expression.
func (e *Edge) HasCondition() bool {
	_, ok := e.Prop("condition")
	return ok
}

// ConditionClass returns the classification a condition compiler previously
// attached to this edge, or ConditionNone if it was never classified.
func (e *Edge) ConditionClass() ConditionClass {
	v, ok := e.Prop("condition_class")
	if !ok {
		return ConditionNone
	}
	s, _ := v.(string)
	return ConditionClass(s)
}

// IsAuditConfirmed reports whether this edge carries a confirmed_by_audit
// property set to true, regardless of edge kind.
func (e *Edge) IsAuditConfirmed() bool {
	v, ok := e.Prop("confirmed_by_audit")
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// IsEscalation reports whether the edge kind belongs to the privilege
// escalation family recognized by the path analyzer.
func (e *Edge) IsEscalation() bool {
	return EscalationEdgeTypes[e.Type]
}

// IsHighRisk reports whether the edge's computed risk score clears the
// "high risk" threshold used throughout reporting.
func (e *Edge) IsHighRisk(dangerousRoles []string) bool {
	return e.RiskScore(dangerousRoles) >= highRiskThreshold
}

// Prop reads a property, returning ok=false when absent.
func (e *Edge) Prop(key string) (interface{}, bool) {
	if e.Properties == nil {
		return nil, false
	}
	v, ok := e.Properties[key]
	return v, ok
}
