// Package collected defines the JSON shape of the collected-data document
// the graph builder consumes, and the tolerant decoding rules used to read
// it (missing sections become empty, the per-collector "data" wrapper is
// optional).
package collected

import "encoding/json"

// Document is the top-level collected-data document.
type Document struct {
	Metadata Metadata `json:"metadata"`
	Data     Sections `json:"data"`
}

// Metadata carries collector run bookkeeping, passed through into the
// builder's own metadata for diagnostics.
type Metadata struct {
	CollectorsRun []string               `json:"collectors_run,omitempty"`
	Errors        []string               `json:"errors,omitempty"`
	Stats         map[string]interface{} `json:"stats,omitempty"`
}

// Sections holds each collector's payload. Every field accepts either the
// raw section object or a {"data": <section>} wrapper; see wrapped.go.
type Sections struct {
	Hierarchy  HierarchySection
	IAM        IAMSection
	Identity   IdentitySection
	Resources  ResourcesSection
	Logs       LogsSection
	Tags       TagsSection
	GKE        GKESection
	CloudBuild json.RawMessage
}

// HierarchySection describes the org/folder/project tree.
type HierarchySection struct {
	Organizations map[string]OrgEntry    `json:"organizations,omitempty"`
	Folders       map[string]FolderEntry `json:"folders,omitempty"`
	Projects      map[string]ProjectEntry `json:"projects,omitempty"`
	// Hierarchy maps a child resource id to its parent resource id,
	// supplementing any parent field embedded in the entries above.
	Hierarchy map[string]string `json:"hierarchy,omitempty"`
}

type OrgEntry struct {
	DisplayName string                 `json:"display_name,omitempty"`
	Properties  map[string]interface{} `json:"properties,omitempty"`
}

type FolderEntry struct {
	DisplayName string                 `json:"display_name,omitempty"`
	Parent      string                 `json:"parent,omitempty"`
	Properties  map[string]interface{} `json:"properties,omitempty"`
}

type ProjectEntry struct {
	DisplayName string                 `json:"display_name,omitempty"`
	Parent      string                 `json:"parent,omitempty"`
	ProjectID   string                 `json:"project_id,omitempty"`
	Properties  map[string]interface{} `json:"properties,omitempty"`
}

// IAMSection describes policy bindings, role definitions and the
// collector's own impersonation-relationship pre-analysis, if any.
type IAMSection struct {
	Policies struct {
		Organizations map[string][]Binding `json:"organizations,omitempty"`
		Folders       map[string][]Binding `json:"folders,omitempty"`
		Projects      map[string][]Binding `json:"projects,omitempty"`
	} `json:"policies"`
	Roles struct {
		Predefined map[string]RoleEntry `json:"predefined,omitempty"`
		Custom     map[string]RoleEntry `json:"custom,omitempty"`
	} `json:"roles"`
	ImpersonationAnalysis map[string]interface{} `json:"impersonation_analysis,omitempty"`
}

// Binding is one (role, members, condition?) entry of a resource's IAM
// policy. Resource is filled in by the loader from the enclosing map key
// when the document nests bindings under a resource id.
type Binding struct {
	Resource  string                 `json:"resource,omitempty"`
	Role      string                 `json:"role"`
	Members   []string               `json:"members"`
	Condition map[string]interface{} `json:"condition,omitempty"`
}

type RoleEntry struct {
	Title       string   `json:"title,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
}

// IdentitySection describes service accounts, groups, group memberships
// and directly observed users.
type IdentitySection struct {
	ServiceAccounts  map[string]ServiceAccountEntry `json:"service_accounts,omitempty"`
	Groups           map[string]GroupEntry          `json:"groups,omitempty"`
	GroupMemberships map[string][]string            `json:"group_memberships,omitempty"`
	Users            map[string]UserEntry           `json:"users,omitempty"`
}

type ServiceAccountEntry struct {
	DisplayName string                 `json:"display_name,omitempty"`
	Project     string                 `json:"project,omitempty"`
	Default     bool                   `json:"is_default,omitempty"`
	Disabled    bool                   `json:"disabled,omitempty"`
	Properties  map[string]interface{} `json:"properties,omitempty"`
}

type GroupEntry struct {
	DisplayName string                 `json:"display_name,omitempty"`
	Properties  map[string]interface{} `json:"properties,omitempty"`
}

type UserEntry struct {
	DisplayName string                 `json:"display_name,omitempty"`
	Properties  map[string]interface{} `json:"properties,omitempty"`
}

// ResourcesSection describes lower-level resources (buckets, instances,
// functions, ...) and their own IAM policies.
type ResourcesSection struct {
	Resources           map[string]map[string]ResourceEntry `json:"resources,omitempty"`
	ResourceIAMPolicies map[string][]Binding                `json:"resource_iam_policies,omitempty"`
}

type ResourceEntry struct {
	DisplayName  string                 `json:"display_name,omitempty"`
	Project      string                 `json:"project,omitempty"`
	RunsAsSA     string                 `json:"runs_as_service_account,omitempty"`
	WorkloadID   bool                   `json:"workload_identity_enabled,omitempty"`
	DefaultSA    bool                   `json:"uses_default_service_account,omitempty"`
	Properties   map[string]interface{} `json:"properties,omitempty"`
}

// LogsSection carries audit-log-derived events that get promoted directly
// into audit-confirmed edges.
type LogsSection struct {
	ImpersonationEvents []ImpersonationEvent `json:"impersonation_events,omitempty"`
	EscalationEvents    []EscalationEvent    `json:"escalation_events,omitempty"`
	AccessEvents        []AccessEvent        `json:"access_events,omitempty"`
}

type ImpersonationEvent struct {
	Principal string `json:"principal"`
	Target    string `json:"target"`
}

type EscalationEvent struct {
	Principal string `json:"principal"`
	Target    string `json:"target"`
	Technique string `json:"technique,omitempty"`
}

type AccessEvent struct {
	Principal string `json:"principal"`
	Resource  string `json:"resource"`
}

// TagsSection describes resource-manager tags and conditional tag-based
// IAM bindings, used to synthesize has_tag_binding_escalation edges.
type TagsSection struct {
	TagKeys    map[string]TagKeyEntry   `json:"tag_keys,omitempty"`
	TagValues  map[string]TagValueEntry `json:"tag_values,omitempty"`
	TagBindings []TagBinding            `json:"tag_bindings,omitempty"`
}

type TagKeyEntry struct {
	ShortName string `json:"short_name,omitempty"`
	Parent    string `json:"parent,omitempty"`
}

type TagValueEntry struct {
	ShortName string `json:"short_name,omitempty"`
	TagKey    string `json:"tag_key,omitempty"`
}

// TagBinding records that a conditional IAM binding is gated on a tag value
// attached to a resource; if the principal can also modify the tag
// binding, that is an escalation path.
type TagBinding struct {
	Resource       string `json:"resource"`
	TagValue       string `json:"tag_value"`
	TagValueHolder string `json:"tag_value_holder,omitempty"`
}

// GKESection describes GKE clusters, their workloads and workload-identity
// bindings, used to synthesize can_hijack_workload_identity and
// can_deploy_gke_pod_as edges.
type GKESection struct {
	Clusters  map[string]GKEClusterEntry  `json:"clusters,omitempty"`
	Workloads map[string]GKEWorkloadEntry `json:"workloads,omitempty"`
}

type GKEClusterEntry struct {
	Project             string `json:"project,omitempty"`
	WorkloadIdentityPool string `json:"workload_identity_pool,omitempty"`
}

type GKEWorkloadEntry struct {
	Cluster             string `json:"cluster,omitempty"`
	Namespace           string `json:"namespace,omitempty"`
	KSA                 string `json:"kubernetes_service_account,omitempty"`
	BoundGSA            string `json:"bound_google_service_account,omitempty"`
	AllowsImpersonation bool   `json:"allows_impersonation,omitempty"`
}
