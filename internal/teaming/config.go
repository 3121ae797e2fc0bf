package teaming

// Config holds the partnership-formation coefficients. The defaults are
// documented policy, not tuned values; deployments override them through
// engine configuration.
type Config struct {
	MaxPartners           int
	PrimeLeadShare        float64 // percent
	JointVentureLeadShare float64 // percent
	BondingRatio          float64 // bonding capacity as a fraction of revenue

	Blend BlendConfig
}

// BlendConfig weights the partner-compatibility blend. Weights sum to 1.0.
type BlendConfig struct {
	CapabilityFit    float64
	Proximity        float64
	FinancialBalance float64
}

// DefaultConfig returns the default formation policy: up to four partners,
// 70% prime share, 51% joint-venture share, bonding at 10% of revenue.
func DefaultConfig() Config {
	return Config{
		MaxPartners:           4,
		PrimeLeadShare:        70,
		JointVentureLeadShare: 51,
		BondingRatio:          0.10,
		Blend: BlendConfig{
			CapabilityFit:    0.50,
			Proximity:        0.25,
			FinancialBalance: 0.25,
		},
	}
}
