package matching

import (
	"fmt"

	"github.com/unations/matchengine/internal/contracts"
	"github.com/unations/matchengine/internal/scoring"
)

const (
	strengthThreshold      = 80
	financialRiskThreshold = 70
)

// buildStrengths emits a strength for every dimension scoring at or above
// the strength threshold.
func buildStrengths(scores contracts.ScoreBreakdown) []contracts.Strength {
	justifications := []struct {
		area  string
		score float64
		text  string
	}{
		{"capability", scores.Capability, "Covers the required capability set"},
		{"experience", scores.Experience, "Proven delivery track record"},
		{"certification", scores.Certification, "Holds the required certifications in active status"},
		{"diversity", scores.Diversity, "Ownership profile satisfies the diversity requirement"},
		{"geographic", scores.Geographic, "Located in or near the place of performance"},
		{"financial", scores.Financial, "Contract value sits comfortably within financial capacity"},
	}

	strengths := make([]contracts.Strength, 0)
	for _, j := range justifications {
		if j.score >= strengthThreshold {
			strengths = append(strengths, contracts.Strength{
				Area:          j.area,
				Score:         j.score,
				Justification: j.text,
			})
		}
	}
	return strengths
}

// buildGaps emits one gap per unmet requirement: capability gaps are
// closable through partnering, certification and diversity gaps are
// critical eligibility problems.
func buildGaps(opp *contracts.Opportunity, cand *contracts.Candidate) []contracts.Gap {
	gaps := make([]contracts.Gap, 0)

	for _, missing := range scoring.GapSet(opp.RequiredCapabilities, cand.AllCapabilities()) {
		gaps = append(gaps, contracts.Gap{
			Kind:         contracts.GapCapability,
			Requirement:  missing,
			CurrentState: "not offered",
			NeededState:  "available in-house or through a partner",
			Remediation: []contracts.RemediationOption{
				{Action: fmt.Sprintf("Add a partner covering %s", missing)},
				{Action: "Develop the capability internally", Timeframe: "6-12 months"},
			},
			Critical: false,
		})
	}

	for _, name := range opp.RequiredCertifications {
		if cand.HasActiveCertification(name) {
			continue
		}
		gaps = append(gaps, contracts.Gap{
			Kind:         contracts.GapCertification,
			Requirement:  name,
			CurrentState: certificationState(cand, name),
			NeededState:  "active certification",
			Remediation: []contracts.RemediationOption{
				{
					Action:    fmt.Sprintf("Obtain %s certification", name),
					Timeframe: "3-6 months",
					Cost:      "certification body fees",
				},
			},
			Critical: true,
		})
	}

	if opp.Diversity.Required() {
		content := cand.QualifyingDiversityContent()
		if content < opp.Diversity.MinimumPercentage {
			gaps = append(gaps, contracts.Gap{
				Kind:         contracts.GapDiversity,
				Requirement:  fmt.Sprintf("%.0f%% diversity content", opp.Diversity.MinimumPercentage),
				CurrentState: fmt.Sprintf("%.0f%%", content),
				NeededState:  fmt.Sprintf("at least %.0f%%", opp.Diversity.MinimumPercentage),
				Remediation: []contracts.RemediationOption{
					{Action: "Form a joint venture with a diversity-owned partner"},
				},
				Critical: true,
			})
		}
	}

	return gaps
}

// certificationState describes what the candidate currently holds for a
// required certification.
func certificationState(cand *contracts.Candidate, name string) string {
	for _, cert := range cand.Certifications {
		if cert.Name == name && cert.Status == contracts.CertificationExpired {
			return "expired"
		}
	}
	return "not held"
}

// buildRisks emits delivery risks: overextension when the contract is
// large relative to revenue, timeline pressure when critical gaps meet a
// critical deadline.
func buildRisks(scores contracts.ScoreBreakdown, urgency contracts.UrgencyTier, gaps []contracts.Gap) []contracts.Risk {
	risks := make([]contracts.Risk, 0)

	if scores.Financial < financialRiskThreshold {
		risks = append(risks, contracts.Risk{
			Kind:        contracts.RiskOverextension,
			Probability: 0.6,
			Impact:      "Cash-flow strain during delivery",
			Mitigations: []string{
				"Team with a financially stronger partner",
				"Negotiate progress payments",
				"Secure bonding before submission",
			},
		})
	}

	if urgency == contracts.UrgencyCritical && hasCritical(gaps) {
		risks = append(risks, contracts.Risk{
			Kind:        contracts.RiskTimeline,
			Probability: 0.5,
			Impact:      "Critical gaps cannot be remediated before submission",
			Mitigations: []string{
				"Close gaps through partnering rather than remediation",
				"Request a deadline extension",
			},
		})
	}

	return risks
}

// hasCritical reports whether any gap is critical.
func hasCritical(gaps []contracts.Gap) bool {
	for _, g := range gaps {
		if g.Critical {
			return true
		}
	}
	return false
}
