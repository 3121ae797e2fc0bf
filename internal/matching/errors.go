package matching

import "errors"

var (
	// ErrInvalidWeights rejects opportunities whose evaluation weights do
	// not sum to exactly 100.
	ErrInvalidWeights = errors.New("evaluation weights must sum to 100")

	// ErrMissingRequirements rejects opportunities declaring neither
	// required capabilities nor required certifications.
	ErrMissingRequirements = errors.New("opportunity declares no required capabilities or certifications")
)

// IsValidation reports whether an error is one of the pre-scoring
// validation rejections. Validation failures happen before any scoring
// and are the caller's input problem, not an engine fault.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidWeights) || errors.Is(err, ErrMissingRequirements)
}
