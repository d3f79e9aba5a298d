package analyzer

// RiskThresholds gives the cutoffs used to bucket a numeric risk score into
// a human-facing level. Configurable rather than hard-coded so deployments
// can tune what counts as critical.
type RiskThresholds struct {
	Critical float64
	High     float64
	Medium   float64
	Low      float64
}

// DefaultRiskThresholds mirrors the thresholds used throughout this
// codebase's risk-bucketing helpers.
func DefaultRiskThresholds() RiskThresholds {
	return RiskThresholds{Critical: 0.8, High: 0.6, Medium: 0.4, Low: 0.2}
}

// Level buckets a risk score using t's cutoffs.
func (t RiskThresholds) Level(score float64) string {
	switch {
	case score > t.Critical:
		return "critical"
	case score > t.High:
		return "high"
	case score > t.Medium:
		return "medium"
	case score > t.Low:
		return "low"
	default:
		return "info"
	}
}

// Config configures a Run. All fields have defaults via DefaultConfig.
type Config struct {
	MaxPathLength  int
	DangerousRoles []string
	TrustedDomains []string
	RiskThresholds RiskThresholds
	// MaxPathsPerPair bounds the number of multi-step paths enumerated
	// for a single (identity, target) pair, to keep path search tractable
	// on dense graphs. Pairs that hit the bound are recorded in
	// Statistics.TruncatedPairs rather than silently dropped.
	MaxPathsPerPair int
}

// DefaultConfig returns the canonical analysis configuration.
func DefaultConfig() Config {
	return Config{
		MaxPathLength: 5,
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
		},
		TrustedDomains:  nil,
		RiskThresholds:  DefaultRiskThresholds(),
		MaxPathsPerPair: 50,
	}
}

// highValueRolePatterns marks role nodes as escalation targets for the
// multi-step enumeration, independent of the dangerous-role list used for
// node risk scoring and vulnerability detection.
var highValueRolePatterns = []string{
	"roles/owner",
	"roles/editor",
	"roles/iam.securityAdmin",
	"roles/resourcemanager.organizationAdmin",
}
