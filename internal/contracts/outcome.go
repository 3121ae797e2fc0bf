package contracts

import "time"

// Outcome records what happened to a match after evaluation. Append-only;
// feeds the insights aggregator. Satisfaction is the buyer's 0-5 rating
// collected after delivery on won contracts, zero when not yet rated.
type Outcome struct {
	MatchID       string    `json:"match_id"`
	OpportunityID string    `json:"opportunity_id"`
	CandidateID   string    `json:"candidate_id"`
	Submitted     bool      `json:"submitted"`
	Won           bool      `json:"won"`
	FinalValue    float64   `json:"final_value,omitempty"`
	Satisfaction  float64   `json:"satisfaction,omitempty"`
	Feedback      string    `json:"feedback,omitempty"`
	RecordedAt    time.Time `json:"recorded_at"`
}
