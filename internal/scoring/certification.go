package scoring

import "github.com/unations/matchengine/internal/contracts"

// CertificationScore returns the fraction of required certifications the
// candidate holds in active status, scaled to 100. Expired certifications
// do not count. No required certifications scores 100.
func CertificationScore(required []string, cand *contracts.Candidate) float64 {
	if len(required) == 0 {
		return 100
	}

	held := 0
	for _, name := range required {
		if cand.HasActiveCertification(name) {
			held++
		}
	}

	return float64(held) / float64(len(required)) * 100
}
