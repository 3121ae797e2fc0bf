package prediction

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/unations/matchengine/internal/contracts"
)

// Predictor turns a match into an explainable win-probability estimate.
// Competitive and historical context come from pluggable collaborators; when
// one cannot be reached within the timeout the predictor degrades to neutral
// defaults and flags the prediction instead of failing.
type Predictor struct {
	cfg       Config
	estimator contracts.CompetitiveEstimator
	history   contracts.HistoryProvider
	log       zerolog.Logger
}

// NewPredictor creates a predictor with the default coefficient policy.
func NewPredictor(estimator contracts.CompetitiveEstimator, history contracts.HistoryProvider, log zerolog.Logger) *Predictor {
	return NewPredictorWithConfig(DefaultConfig(), estimator, history, log)
}

// NewPredictorWithConfig creates a predictor with custom coefficients.
func NewPredictorWithConfig(cfg Config, estimator contracts.CompetitiveEstimator, history contracts.HistoryProvider, log zerolog.Logger) *Predictor {
	return &Predictor{
		cfg:       cfg,
		estimator: estimator,
		history:   history,
		log:       log.With().Str("component", "prediction.predictor").Logger(),
	}
}

// Predict estimates the win probability for a match. The estimate starts at
// the configured base, moves by each factor's confidence-weighted impact,
// drops per stronger competitor, rises on a strong satisfaction history, and
// is clamped to the configured floor and ceiling so the engine never claims
// certainty.
func (p *Predictor) Predict(ctx context.Context, match *contracts.Match, opp *contracts.Opportunity) (*contracts.WinPrediction, error) {
	if match == nil || opp == nil {
		return nil, errors.New("prediction requires a match and its opportunity")
	}

	pred := &contracts.WinPrediction{
		MatchID:     match.ID,
		Positives:   buildPositives(match, p.cfg),
		Negatives:   buildNegatives(match, p.cfg),
		GeneratedAt: time.Now(),
	}

	competitive, ok := p.competitiveContext(ctx, opp, match.OverallScore)
	if !ok {
		pred.Degraded = true
		pred.Neutrals = append(pred.Neutrals, degradedFactor(
			"competitive landscape",
			"Competition estimate unavailable; assuming no stronger competitors"))
	}
	pred.Competitive = competitive

	historical, ok := p.historicalContext(ctx, match.CandidateID, opp)
	if !ok {
		pred.Degraded = true
		pred.Neutrals = append(pred.Neutrals, degradedFactor(
			"prior performance",
			"History lookup unavailable; no incumbency or satisfaction signal applied"))
	}
	pred.Historical = historical

	pred.Probability = p.probability(pred)
	pred.Recommendations = buildRecommendations(match, pred.Competitive)

	p.log.Debug().
		Str("match_id", match.ID).
		Float64("probability", pred.Probability).
		Int("positives", len(pred.Positives)).
		Int("negatives", len(pred.Negatives)).
		Bool("degraded", pred.Degraded).
		Msg("win prediction generated")

	return pred, nil
}

func (p *Predictor) probability(pred *contracts.WinPrediction) float64 {
	prob := p.cfg.Base

	for _, f := range pred.Positives {
		prob += f.Weighted()
	}
	for _, f := range pred.Negatives {
		prob += f.Weighted()
	}

	prob -= p.cfg.CompetitorPenalty * float64(pred.Competitive.StrongerCompetitors)
	if pred.Historical.AverageSatisfaction > p.cfg.SatisfactionThreshold {
		prob += p.cfg.SatisfactionBonus
	}

	return clamp(prob, p.cfg.Floor, p.cfg.Ceiling)
}

// competitiveContext asks the estimator for the landscape, falling back to
// an empty analysis when the call fails or times out.
func (p *Predictor) competitiveContext(ctx context.Context, opp *contracts.Opportunity, score float64) (contracts.CompetitiveAnalysis, bool) {
	if p.estimator == nil {
		p.log.Debug().Msg("no competition estimator configured")
		return contracts.CompetitiveAnalysis{}, false
	}

	cctx, cancel := context.WithTimeout(ctx, p.cfg.CollaboratorTimeout)
	defer cancel()

	analysis, err := p.estimator.EstimateCompetition(cctx, opp, score)
	if err != nil || analysis == nil {
		p.log.Warn().Err(err).
			Str("opportunity_id", opp.ID).
			Msg("competition estimate unavailable")
		return contracts.CompetitiveAnalysis{}, false
	}
	return *analysis, true
}

// historicalContext looks up prior performance, falling back to an empty
// context when the call fails or times out.
func (p *Predictor) historicalContext(ctx context.Context, candidateID string, opp *contracts.Opportunity) (contracts.HistoricalContext, bool) {
	if p.history == nil {
		p.log.Debug().Msg("no history provider configured")
		return contracts.HistoricalContext{}, false
	}

	cctx, cancel := context.WithTimeout(ctx, p.cfg.CollaboratorTimeout)
	defer cancel()

	historical, err := p.history.LookupHistory(cctx, candidateID, opp)
	if err != nil || historical == nil {
		p.log.Warn().Err(err).
			Str("candidate_id", candidateID).
			Msg("history lookup unavailable")
		return contracts.HistoricalContext{}, false
	}
	return *historical, true
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
