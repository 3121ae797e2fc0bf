package prediction

import "time"

// Config holds the win-probability coefficients. The defaults reproduce the
// documented scoring policy; none of them are empirically tuned, so they are
// kept configurable rather than baked in as constants.
type Config struct {
	Base    float64 // starting probability
	Floor   float64
	Ceiling float64

	StrongOverallThreshold   float64
	StrongOverallImpact      float64
	StrongOverallConfidence  float64
	StrongDiversityThreshold float64
	DiversityImpact          float64
	DiversityConfidence      float64
	CriticalGapImpact        float64
	CriticalGapConfidence    float64

	CompetitorPenalty     float64
	SatisfactionThreshold float64
	SatisfactionBonus     float64

	CollaboratorTimeout time.Duration
}

// DefaultConfig returns the documented default policy. The floor and ceiling
// keep the engine from ever claiming certainty in either direction.
func DefaultConfig() Config {
	return Config{
		Base:    50,
		Floor:   5,
		Ceiling: 95,

		StrongOverallThreshold:   85,
		StrongOverallImpact:      15,
		StrongOverallConfidence:  80,
		StrongDiversityThreshold: 90,
		DiversityImpact:          10,
		DiversityConfidence:      90,
		CriticalGapImpact:        -10,
		CriticalGapConfidence:    90,

		CompetitorPenalty:     5,
		SatisfactionThreshold: 4,
		SatisfactionBonus:     10,

		CollaboratorTimeout: 2 * time.Second,
	}
}
