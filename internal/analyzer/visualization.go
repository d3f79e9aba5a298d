package analyzer

import "github.com/alevsk/iamgraph/internal/graph"

// escalationTechniques is the fixed per-edge-kind lookup table the
// visualization layer uses to annotate every escalation step of an
// AttackPath with a human-facing technique name, icon, description and
// the GCP IAM permission it corresponds to.
var escalationTechniques = map[graph.EdgeType]Technique{
	graph.EdgeCanImpersonate: {
		Name: "Service Account Impersonation", Icon: "mask",
		Description: "Principal can impersonate the target identity via actAs or token-creation permissions.",
		Permission:  "iam.serviceAccounts.getAccessToken",
	},
	graph.EdgeCanImpersonateSA: {
		Name: "Token Creator Impersonation", Icon: "mask",
		Description: "Principal holds the Service Account Token Creator role and can mint access tokens for the target.",
		Permission:  "iam.serviceAccounts.getAccessToken",
	},
	graph.EdgeCanCreateServiceAccountKey: {
		Name: "Service Account Key Creation", Icon: "key",
		Description: "Principal can mint a long-lived key for the target service account, granting durable offline access.",
		Permission:  "iam.serviceAccountKeys.create",
	},
	graph.EdgeCanActAsViaVM: {
		Name: "Compute Instance actAs", Icon: "server",
		Description: "Principal can launch or modify a compute instance that runs as the target service account.",
		Permission:  "compute.instances.setServiceAccount",
	},
	graph.EdgeCanDeployFunctionAs: {
		Name: "Cloud Function Deployment", Icon: "function",
		Description: "Principal can deploy a Cloud Function that executes as the target service account.",
		Permission:  "cloudfunctions.functions.create",
	},
	graph.EdgeCanDeployCloudRunAs: {
		Name: "Cloud Run Deployment", Icon: "container",
		Description: "Principal can deploy a Cloud Run service that executes as the target service account.",
		Permission:  "run.services.create",
	},
	graph.EdgeCanTriggerBuildAs: {
		Name: "Cloud Build Trigger", Icon: "hammer",
		Description: "Principal can trigger a Cloud Build job that executes as the target service account.",
		Permission:  "cloudbuild.builds.create",
	},
	graph.EdgeCanLoginToVM: {
		Name: "VM Login", Icon: "terminal",
		Description: "Principal can SSH into a compute instance, inheriting whatever the instance's service account can reach.",
		Permission:  "compute.instances.osLogin",
	},
	graph.EdgeCanSatisfyIAMCondition: {
		Name: "Conditional Binding Satisfaction", Icon: "filter",
		Description: "Principal controls a context attribute that satisfies an IAM condition gating the target binding.",
		Permission:  "resourcemanager.tagValues.get",
	},
	graph.EdgeExternalPrincipalCanImpersonate: {
		Name: "External Impersonation", Icon: "alert-triangle",
		Description: "An external (untrusted-domain) principal can impersonate the target identity.",
		Permission:  "iam.serviceAccounts.getAccessToken",
	},
	graph.EdgeCanHijackWorkloadIdentity: {
		Name: "Workload Identity Hijack", Icon: "link",
		Description: "Principal can deploy a GKE workload bound via Workload Identity to the target Google service account.",
		Permission:  "iam.serviceAccounts.getOpenIdToken",
	},
	graph.EdgeCanModifyCustomRole: {
		Name: "Custom Role Modification", Icon: "edit",
		Description: "Principal can add permissions to a custom role, expanding its own effective privileges.",
		Permission:  "iam.roles.update",
	},
	graph.EdgeCanLaunchAsDefaultSA: {
		Name: "Default Service Account Launch", Icon: "server",
		Description: "Principal can launch a resource that implicitly runs as the project's default service account.",
		Permission:  "compute.instances.create",
	},
	graph.EdgeCanAttachServiceAccount: {
		Name: "Service Account Attachment", Icon: "link-2",
		Description: "Principal can attach the target service account to a new or existing resource.",
		Permission:  "iam.serviceAccounts.actAs",
	},
	graph.EdgeCanUpdateMetadata: {
		Name: "Instance Metadata Update", Icon: "file-text",
		Description: "Principal can rewrite instance metadata (e.g. startup-script) to execute code as the instance's service account.",
		Permission:  "compute.instances.setMetadata",
	},
	graph.EdgeCanDeployGKEPodAs: {
		Name: "GKE Pod Deployment", Icon: "box",
		Description: "Principal can deploy a pod into a GKE cluster that runs as the target service account.",
		Permission:  "container.pods.create",
	},
	graph.EdgeCanAssignCustomRole: {
		Name: "Custom Role Assignment", Icon: "user-plus",
		Description: "Principal can bind a custom role it controls to another principal, laundering escalated permissions.",
		Permission:  "resourcemanager.projects.setIamPolicy",
	},
	graph.EdgeHasTagBindingEscalation: {
		Name: "Tag Binding Escalation", Icon: "tag",
		Description: "Principal can attach a tag value that satisfies a conditional IAM binding on the resource.",
		Permission:  "resourcemanager.tagBindings.create",
	},
	graph.EdgeCanSSHAndImpersonate: {
		Name: "SSH and Impersonate", Icon: "terminal",
		Description: "Principal can SSH into an instance and use its attached service account's credentials from the metadata server.",
		Permission:  "compute.instances.osLogin",
	},
	graph.EdgeHasEscalatedPrivilege: {
		Name: "Confirmed Privilege Escalation", Icon: "alert-octagon",
		Description: "Audit logs confirm this principal actually exercised an escalation technique against the target.",
		Permission:  "",
	},
}

var defaultTechnique = Technique{
	Name: "Unknown Escalation", Icon: "help-circle",
	Description: "Edge kind has no registered escalation technique.",
}

func technique(kind graph.EdgeType) Technique {
	t, ok := escalationTechniques[kind]
	if !ok {
		t = defaultTechnique
	}
	t.EdgeKind = kind
	return t
}

// nodeColors and nodeIcons give each node kind a stable display color/icon.
var nodeColors = map[graph.NodeType]string{
	graph.NodeUser:           "#4C9AFF",
	graph.NodeServiceAccount: "#FFAB00",
	graph.NodeGroup:          "#6554C0",
	graph.NodeProject:        "#36B37E",
	graph.NodeFolder:         "#00B8D9",
	graph.NodeOrganization:   "#091E42",
	graph.NodeRole:           "#FF5630",
	graph.NodeCustomRole:     "#DE350B",
	graph.NodeResource:       "#97A0AF",
}

var nodeIcons = map[graph.NodeType]string{
	graph.NodeUser:           "user",
	graph.NodeServiceAccount: "bot",
	graph.NodeGroup:          "users",
	graph.NodeProject:        "folder",
	graph.NodeFolder:         "folder-open",
	graph.NodeOrganization:   "building",
	graph.NodeRole:           "shield",
	graph.NodeCustomRole:     "shield-alert",
	graph.NodeResource:       "box",
}

func (a *Analyzer) buildVisualization(nodes []*graph.Node, edges []*graph.Edge) VisualizationMetadata {
	nodeDisplays := make([]NodeDisplay, 0, len(nodes))
	for _, n := range nodes {
		nodeDisplays = append(nodeDisplays, a.nodeDisplay(n))
	}

	edgeDisplays := make([]EdgeDisplay, 0, len(edges))
	techniques := make([]Technique, 0, len(edges))
	permissions := make([]string, 0, len(edges))
	for _, e := range edges {
		edgeDisplays = append(edgeDisplays, edgeDisplay(e, a.cfg.DangerousRoles))
		t := technique(e.Type)
		techniques = append(techniques, t)
		permissions = append(permissions, inferredPermission(e, t))
	}

	return VisualizationMetadata{
		NodeMetadata:         nodeDisplays,
		EdgeMetadata:         edgeDisplays,
		EscalationTechniques: techniques,
		PermissionsUsed:      permissions,
		AttackSummary:        attackSummary(nodes, techniques),
	}
}

func (a *Analyzer) nodeDisplay(n *graph.Node) NodeDisplay {
	return NodeDisplay{
		ID:         n.ID,
		Label:      displayLabel(n),
		Icon:       nodeIcons[n.Type],
		Color:      nodeColors[n.Type],
		RiskLevel:  a.cfg.RiskThresholds.Level(a.riskScores[n.ID].Total),
		Properties: n.Properties,
	}
}

func edgeDisplay(e *graph.Edge, dangerousRoles []string) EdgeDisplay {
	color := "#97A0AF"
	if e.IsHighRisk(dangerousRoles) {
		color = "#FF5630"
	} else if e.IsEscalation() {
		color = "#FFAB00"
	}
	return EdgeDisplay{
		Source:    e.Source,
		Target:    e.Target,
		Label:     string(e.Type),
		Color:     color,
		RiskScore: e.RiskScore(dangerousRoles),
	}
}

// inferredPermission prefers an explicit via_role/permission recorded on
// the edge (set by the builder during escalation synthesis) and falls
// back to the technique table's declared permission.
func inferredPermission(e *graph.Edge, t Technique) string {
	if v, ok := e.Prop("via_role"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if v, ok := e.Prop("permission"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return t.Permission
}

func attackSummary(nodes []*graph.Node, techniques []Technique) string {
	if len(nodes) == 0 {
		return ""
	}
	summary := displayLabel(nodes[0])
	for _, t := range techniques {
		summary += " -> (" + t.Name + ") -> "
	}
	if len(nodes) > 0 {
		summary += displayLabel(nodes[len(nodes)-1])
	}
	return summary
}
