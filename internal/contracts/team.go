package contracts

// PartnerRole is a partner's role within a proposed team.
type PartnerRole string

const (
	RolePrime PartnerRole = "prime"
	RoleSub   PartnerRole = "sub"
)

// StructureType classifies the legal form of a partnership.
type StructureType string

const (
	StructurePrimeSub     StructureType = "prime-sub"
	StructureJointVenture StructureType = "joint-venture"
	StructureConsortium   StructureType = "consortium"
)

// Partner is one selected team member and its contribution.
type Partner struct {
	Candidate    *Candidate  `json:"candidate"`
	Role         PartnerRole `json:"role"`
	Contribution float64     `json:"contribution"` // percent share

	Capabilities []string `json:"capabilities"` // capability subset contributed

	CompatibilityWithLead float64 `json:"compatibility_with_lead"`
	CompatibilityWithTeam float64 `json:"compatibility_with_team"`
}

// TeamComposition aggregates headcount, diversity, and footprint.
type TeamComposition struct {
	TotalHeadcount      int        `json:"total_headcount"`
	DiversityHeadcount  float64    `json:"diversity_headcount"`
	DiversityPercentage float64    `json:"diversity_percentage"`
	Locations           []Location `json:"locations"`
}

// CapabilityCoverage reports how much of the required set the team covers.
type CapabilityCoverage struct {
	Required   []string `json:"required"`
	Covered    []string `json:"covered"`
	Missing    []string `json:"missing"`
	Percentage float64  `json:"percentage"`
}

// FinancialCapacity aggregates the team's financial strength.
type FinancialCapacity struct {
	CombinedRevenue float64 `json:"combined_revenue"`
	BondingCapacity float64 `json:"bonding_capacity"`
	RequirementMet  bool    `json:"requirement_met"`
}

// PartnershipStructure is the selected legal structure and share split.
// DiversityContent must be recomputed whenever composition changes.
type PartnershipStructure struct {
	Type             StructureType      `json:"type"`
	LeadShare        float64            `json:"lead_share"`
	PartnerShares    map[string]float64 `json:"partner_shares"` // candidate ID -> percent
	DiversityContent float64            `json:"diversity_content"`
}

// ProposedTeam is a lead candidate plus selected partners assembled to close
// capability gaps. Built on demand; persisted only with its parent Match.
type ProposedTeam struct {
	Lead     *Candidate `json:"lead"`
	Partners []Partner  `json:"partners"`

	Composition TeamComposition      `json:"composition"`
	Coverage    CapabilityCoverage   `json:"coverage"`
	Financial   FinancialCapacity    `json:"financial"`
	Structure   PartnershipStructure `json:"structure"`

	WinProbability float64  `json:"win_probability"`
	Notes          []string `json:"notes,omitempty"`
}

// FullCoverage reports whether the team closes the entire gap set.
func (t *ProposedTeam) FullCoverage() bool {
	return len(t.Coverage.Missing) == 0
}
