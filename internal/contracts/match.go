package contracts

import "time"

// ScoreBreakdown holds the six per-dimension sub-scores, each 0-100.
type ScoreBreakdown struct {
	Capability    float64 `json:"capability"`
	Experience    float64 `json:"experience"`
	Certification float64 `json:"certification"`
	Diversity     float64 `json:"diversity"`
	Geographic    float64 `json:"geographic"`
	Financial     float64 `json:"financial"`
}

// UrgencyTier buckets an opportunity by days remaining until submission.
type UrgencyTier string

const (
	UrgencyCritical UrgencyTier = "critical" // <= 7 days
	UrgencyHigh     UrgencyTier = "high"     // <= 14 days
	UrgencyMedium   UrgencyTier = "medium"   // <= 30 days
	UrgencyLow      UrgencyTier = "low"
)

// Match is the immutable evaluation result for one (opportunity, candidate)
// pair. Re-evaluation produces a new Match that supersedes this one.
type Match struct {
	ID            string `json:"id"`
	OpportunityID string `json:"opportunity_id"`
	CandidateID   string `json:"candidate_id"`

	Scores       ScoreBreakdown `json:"scores"`
	OverallScore float64        `json:"overall_score"`

	Strengths []Strength `json:"strengths"`
	Gaps      []Gap      `json:"gaps"`
	Risks     []Risk     `json:"risks"`

	Team *ProposedTeam `json:"team,omitempty"`

	Urgency      UrgencyTier `json:"urgency"`
	SupersedesID string      `json:"supersedes_id,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
}

// HasCriticalGap reports whether any gap is marked critical.
func (m *Match) HasCriticalGap() bool {
	for _, g := range m.Gaps {
		if g.Critical {
			return true
		}
	}
	return false
}

// Strength records a dimension scoring at or above the strength threshold.
type Strength struct {
	Area          string  `json:"area"`
	Score         float64 `json:"score"`
	Justification string  `json:"justification"`
}

// GapKind is the closed set of gap categories.
type GapKind string

const (
	GapCapability    GapKind = "capability"
	GapCertification GapKind = "certification"
	GapDiversity     GapKind = "diversity"
)

// Gap records an unmet requirement with its remediation options.
type Gap struct {
	Kind         GapKind             `json:"kind"`
	Requirement  string              `json:"requirement"`
	CurrentState string              `json:"current_state"`
	NeededState  string              `json:"needed_state"`
	Remediation  []RemediationOption `json:"remediation"`
	Critical     bool                `json:"critical"`
}

// RemediationOption is one way to close a gap.
type RemediationOption struct {
	Action    string `json:"action"`
	Timeframe string `json:"timeframe,omitempty"`
	Cost      string `json:"cost,omitempty"`
}

// RiskKind is the closed set of risk categories.
type RiskKind string

const (
	RiskOverextension RiskKind = "overextension"
	RiskTimeline      RiskKind = "timeline"
)

// Risk records a delivery or capacity risk with mitigation options.
type Risk struct {
	Kind        RiskKind `json:"kind"`
	Probability float64  `json:"probability"` // 0-1
	Impact      string   `json:"impact"`
	Mitigations []string `json:"mitigations"`
}
