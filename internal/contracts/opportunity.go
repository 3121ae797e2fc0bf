package contracts

import "time"

// OpportunityStatus tracks the administrative lifecycle of an opportunity.
type OpportunityStatus string

const (
	OpportunityOpen    OpportunityStatus = "open"
	OpportunityAwarded OpportunityStatus = "awarded"
	OpportunityExpired OpportunityStatus = "expired"
)

// Opportunity represents a procurement request to be matched against suppliers.
// Immutable once created except for administrative correction.
type Opportunity struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`

	Industries             []string `json:"industries"`
	RequiredCapabilities   []string `json:"required_capabilities"`
	RequiredCertifications []string `json:"required_certifications"`
	MandatoryRequirements  []string `json:"mandatory_requirements"`
	DesirableRequirements  []string `json:"desirable_requirements"`

	Value     ValueRange           `json:"value"`
	Location  Location             `json:"location"`
	Diversity DiversityRequirement `json:"diversity"`
	Weights   EvaluationWeights    `json:"weights"`
	Deadlines DeadlineSet          `json:"deadlines"`

	Status    OpportunityStatus `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
}

// ValueRange is the estimated contract value band.
type ValueRange struct {
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Currency string  `json:"currency"`
}

// Midpoint returns the mid-point of the value band.
func (v ValueRange) Midpoint() float64 {
	return (v.Min + v.Max) / 2
}

// Overlaps reports whether two value ranges intersect.
func (v ValueRange) Overlaps(other ValueRange) bool {
	return v.Min <= other.Max && other.Min <= v.Max
}

// Location identifies a place of performance or operation.
// Remote marks remote-eligible opportunities and remote-capable candidates.
type Location struct {
	City   string `json:"city"`
	Region string `json:"region"`
	Remote bool   `json:"remote"`
}

// DiversityRequirement is the minimum ownership-content requirement of an
// opportunity, optionally restricted to an eligible list of groups.
type DiversityRequirement struct {
	MinimumPercentage float64  `json:"minimum_percentage"`
	EligibleGroups    []string `json:"eligible_groups,omitempty"`
}

// Required reports whether the opportunity carries a diversity requirement.
func (d DiversityRequirement) Required() bool {
	return d.MinimumPercentage > 0
}

// GroupEligible reports whether a group satisfies the eligible list.
// An empty list places no restriction.
func (d DiversityRequirement) GroupEligible(group string) bool {
	if len(d.EligibleGroups) == 0 {
		return true
	}
	for _, g := range d.EligibleGroups {
		if g == group {
			return true
		}
	}
	return false
}

// EvaluationWeights is the opportunity-supplied weight set, in percent.
// The four weights must sum to exactly 100.
type EvaluationWeights struct {
	Technical  float64 `json:"technical"`
	Price      float64 `json:"price"`
	Experience float64 `json:"experience"`
	Diversity  float64 `json:"diversity"`
}

// Sum returns the total assigned weight.
func (w EvaluationWeights) Sum() float64 {
	return w.Technical + w.Price + w.Experience + w.Diversity
}

// Valid reports whether the weights sum to exactly 100.
func (w EvaluationWeights) Valid() bool {
	return w.Sum() == 100
}

// DeadlineSet holds the opportunity's milestone dates.
type DeadlineSet struct {
	Questions  time.Time `json:"questions"`
	Submission time.Time `json:"submission"`
	Award      time.Time `json:"award"`
}

// DaysUntilSubmission returns whole days remaining before the submission
// deadline, negative once passed.
func (d DeadlineSet) DaysUntilSubmission(now time.Time) int {
	return int(d.Submission.Sub(now).Hours() / 24)
}
