package scoring

// Rubric holds the tunable thresholds behind the scoring primitives.
// The defaults are the documented policy; callers may override them
// through configuration rather than editing score tables.
type Rubric struct {
	MajorityOwnership float64 // diversity: ownership percent treated as majority control
	ComfortRatio      float64 // financial: midpoint/revenue ratio for a full score
	StretchRatio      float64 // financial: midpoint/revenue ratio for a reduced score
	ProjectsSolid     int     // experience: completed projects for the first bonus
	ProjectsExtensive int     // experience: completed projects for the second bonus
}

// DefaultRubric returns the standard scoring thresholds.
func DefaultRubric() Rubric {
	return Rubric{
		MajorityOwnership: 51,
		ComfortRatio:      0.30,
		StretchRatio:      0.50,
		ProjectsSolid:     10,
		ProjectsExtensive: 50,
	}
}
