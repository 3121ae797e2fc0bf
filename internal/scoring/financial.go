package scoring

import "github.com/unations/matchengine/internal/contracts"

const (
	finComfortable  = 100
	finStretch      = 70
	finOverextended = 40
)

// FinancialScore compares the opportunity's mid-point value against the
// candidate's revenue. This is a liquidity and overextension guard, not a
// financial model: within 30% of revenue is comfortable, within 50% is a
// stretch, beyond that the candidate would be overextended. Candidates
// without reported revenue land on the overextended tier.
func FinancialScore(value contracts.ValueRange, fin contracts.FinancialProfile, r Rubric) float64 {
	if fin.AnnualRevenue <= 0 {
		return finOverextended
	}

	midpoint := value.Midpoint()
	switch {
	case midpoint <= fin.AnnualRevenue*r.ComfortRatio:
		return finComfortable
	case midpoint <= fin.AnnualRevenue*r.StretchRatio:
		return finStretch
	default:
		return finOverextended
	}
}
