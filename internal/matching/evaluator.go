package matching

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/unations/matchengine/internal/contracts"
	"github.com/unations/matchengine/internal/scoring"
	"github.com/unations/matchengine/pkg/logger"
)

// TeamComposer assembles a partner team for a lead that cannot close the
// opportunity's gaps alone. Implemented by internal/teaming.
type TeamComposer interface {
	ComposeTeam(opp *contracts.Opportunity, lead *contracts.Candidate, pool []*contracts.Candidate) *contracts.ProposedTeam
}

// Evaluator scores one candidate against one opportunity and explains the
// result. Evaluation is pure: no persistence, no hidden state, identical
// inputs produce identical scores.
type Evaluator struct {
	rubric   scoring.Rubric
	composer TeamComposer
	logger   *logger.Logger
}

// NewEvaluator creates an evaluator. The composer may be nil when team
// formation is not wanted.
func NewEvaluator(rubric scoring.Rubric, composer TeamComposer, log *logger.Logger) *Evaluator {
	return &Evaluator{
		rubric:   rubric,
		composer: composer,
		logger:   log,
	}
}

// Evaluate computes the six dimension scores, the weighted overall score,
// and the strengths/gaps/risks analysis for one pair.
//
// Returns ErrInvalidWeights or ErrMissingRequirements before any scoring
// when the opportunity's inputs are malformed.
func (e *Evaluator) Evaluate(opp *contracts.Opportunity, cand *contracts.Candidate) (*contracts.Match, error) {
	if err := validate(opp); err != nil {
		return nil, err
	}

	scores := scoring.Breakdown(opp, cand, e.rubric)
	overall := overallScore(scores, opp.Weights)
	urgency := urgencyFor(opp.Deadlines.DaysUntilSubmission(time.Now()))

	match := &contracts.Match{
		ID:            uuid.NewString(),
		OpportunityID: opp.ID,
		CandidateID:   cand.ID,
		Scores:        scores,
		OverallScore:  overall,
		Strengths:     buildStrengths(scores),
		Gaps:          buildGaps(opp, cand),
		Urgency:       urgency,
		CreatedAt:     time.Now(),
	}
	match.Risks = buildRisks(scores, urgency, match.Gaps)

	e.logger.WithFields(map[string]interface{}{
		"opportunity_id": opp.ID,
		"candidate_id":   cand.ID,
		"overall_score":  overall,
		"gaps":           len(match.Gaps),
	}).Debug("Evaluated candidate against opportunity")

	return match, nil
}

// EvaluateWithPool evaluates the lead candidate and, when gaps remain and a
// partner pool is supplied, attaches a proposed team assembled from it.
func (e *Evaluator) EvaluateWithPool(opp *contracts.Opportunity, lead *contracts.Candidate, pool []*contracts.Candidate) (*contracts.Match, error) {
	match, err := e.Evaluate(opp, lead)
	if err != nil {
		return nil, err
	}

	if e.composer != nil && len(match.Gaps) > 0 && len(pool) > 0 {
		match.Team = e.composer.ComposeTeam(opp, lead, pool)
	}

	return match, nil
}

// Reevaluate produces a fresh match superseding a prior one. The prior
// match is never mutated.
func (e *Evaluator) Reevaluate(opp *contracts.Opportunity, cand *contracts.Candidate, priorMatchID string) (*contracts.Match, error) {
	match, err := e.Evaluate(opp, cand)
	if err != nil {
		return nil, err
	}
	match.SupersedesID = priorMatchID
	return match, nil
}

// validate rejects malformed opportunities before any scoring occurs.
func validate(opp *contracts.Opportunity) error {
	if !opp.Weights.Valid() {
		return fmt.Errorf("%w: got %.1f", ErrInvalidWeights, opp.Weights.Sum())
	}
	if len(opp.RequiredCapabilities) == 0 && len(opp.RequiredCertifications) == 0 {
		return fmt.Errorf("%w: opportunity %s", ErrMissingRequirements, opp.ID)
	}
	return nil
}

// overallScore maps the weight set onto dimensions: technical->capability,
// experience->experience, diversity->diversity; price and any unmapped
// weight fall to financial capacity. Zero assigned weight scores 0.
func overallScore(scores contracts.ScoreBreakdown, w contracts.EvaluationWeights) float64 {
	total := w.Sum()
	if total == 0 {
		return 0
	}

	residual := total - w.Technical - w.Experience - w.Diversity

	weighted := scores.Capability*w.Technical +
		scores.Experience*w.Experience +
		scores.Diversity*w.Diversity +
		scores.Financial*residual

	return weighted / total
}

// urgencyFor buckets days remaining until submission into urgency tiers.
func urgencyFor(daysLeft int) contracts.UrgencyTier {
	switch {
	case daysLeft <= 7:
		return contracts.UrgencyCritical
	case daysLeft <= 14:
		return contracts.UrgencyHigh
	case daysLeft <= 30:
		return contracts.UrgencyMedium
	default:
		return contracts.UrgencyLow
	}
}
