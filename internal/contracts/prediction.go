package contracts

import "time"

// FactorKind is the closed set of factor polarities.
type FactorKind string

const (
	FactorPositive FactorKind = "positive"
	FactorNegative FactorKind = "negative"
	FactorNeutral  FactorKind = "neutral"
)

// Factor is one explainable contribution to a win-probability estimate.
// Impact is signed; Confidence is 0-100.
type Factor struct {
	Kind        FactorKind `json:"kind"`
	Name        string     `json:"name"`
	Impact      float64    `json:"impact"`
	Confidence  float64    `json:"confidence"`
	Explanation string     `json:"explanation"`
}

// Weighted returns the factor's probability contribution.
func (f Factor) Weighted() float64 {
	return f.Impact * f.Confidence / 100
}

// CompetitiveAnalysis is a snapshot of the expected field of competitors.
type CompetitiveAnalysis struct {
	EstimatedCompetitors int      `json:"estimated_competitors"`
	StrongerCompetitors  int      `json:"stronger_competitors"`
	Advantages           []string `json:"advantages"`
	Weaknesses           []string `json:"weaknesses"`
}

// HistoricalContext is a snapshot of the candidate's prior relationship
// with the buyer.
type HistoricalContext struct {
	PriorContracts      int     `json:"prior_contracts"`
	PriorContractValue  float64 `json:"prior_contract_value"`
	AverageSatisfaction float64 `json:"average_satisfaction"` // 0-5
	Incumbent           bool    `json:"incumbent"`
}

// RecommendationSet holds tiered actions derived from a prediction.
type RecommendationSet struct {
	MustDo   []string `json:"must_do"`
	ShouldDo []string `json:"should_do"`
	CouldDo  []string `json:"could_do"`
	Avoid    []string `json:"avoid"`
}

// WinPrediction is a bounded, explainable estimate of success likelihood.
// Probability is always within [5, 95]; the engine never claims certainty.
type WinPrediction struct {
	MatchID     string  `json:"match_id"`
	Probability float64 `json:"probability"`

	Positives []Factor `json:"positives"`
	Negatives []Factor `json:"negatives"`
	Neutrals  []Factor `json:"neutrals,omitempty"`

	Competitive CompetitiveAnalysis `json:"competitive"`
	Historical  HistoricalContext   `json:"historical"`

	Recommendations RecommendationSet `json:"recommendations"`

	// Degraded marks predictions computed with neutral defaults after a
	// collaborator timeout or failure.
	Degraded    bool      `json:"degraded,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
}
