package scoring

// CapabilityScore returns the fraction of the required-capability set the
// offered list satisfies, scaled to 100. An empty required set scores 100.
func CapabilityScore(required, offered []string) float64 {
	if len(required) == 0 {
		return 100
	}

	matched := 0
	for _, req := range required {
		if Satisfies(req, offered) {
			matched++
		}
	}

	return float64(matched) / float64(len(required)) * 100
}
