package builder

// Options configures a Builder. All fields have sane defaults via
// DefaultOptions, mirroring the houses's Options/DefaultOptions convention
// used throughout this codebase's other packages.
type Options struct {
	// DangerousRoles lists dangerous role names. Build does not read it:
	// derived-edge synthesis uses the fixed dangerousRoleTable, and node
	// risk scoring uses analyzer.Config.DangerousRoles.
	DangerousRoles []string
	// HighValueRolePatterns lists high-value role names. Build does not read
	// it, and the analyzer's multi-step enumeration uses its own
	// highValueRolePatterns list instead.
	HighValueRolePatterns []string
	// TrustedDomains are user email domains excluded from the
	// external_principal_can_impersonate promotion and from the
	// analyzer's external-high-privilege-principal vulnerability check.
	TrustedDomains []string
}

// trustedDomains returns o.TrustedDomains, or a nil-safe empty slice.
func (o *Options) trustedDomains() []string {
	if o == nil {
		return nil
	}
	return o.TrustedDomains
}

// DefaultOptions returns the canonical dangerous-role table derived from
// the escalation edge taxonomy.
func DefaultOptions() *Options {
	return &Options{
		DangerousRoles: []string{
			"roles/owner",
			"roles/editor",
			"roles/iam.serviceAccountTokenCreator",
			"roles/iam.serviceAccountKeyAdmin",
			"roles/iam.serviceAccountAdmin",
			"roles/iam.serviceAccountUser",
			"roles/compute.admin",
			"roles/compute.instanceAdmin",
			"roles/cloudfunctions.admin",
			"roles/cloudfunctions.developer",
			"roles/run.admin",
			"roles/run.developer",
			"roles/cloudbuild.builds.editor",
			"roles/container.admin",
			"roles/container.developer",
			"roles/resourcemanager.tagAdmin",
			"roles/resourcemanager.tagUser",
		},
		HighValueRolePatterns: []string{
			"roles/owner",
			"roles/editor",
			"roles/iam.securityAdmin",
			"roles/resourcemanager.organizationAdmin",
		},
	}
}
