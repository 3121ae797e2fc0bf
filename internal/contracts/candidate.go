package contracts

// CandidateType classifies the legal structure of a supplier.
type CandidateType string

const (
	CandidateIndependent  CandidateType = "independent"
	CandidateJointVenture CandidateType = "joint-venture"
	CandidateSubsidiary   CandidateType = "subsidiary"
)

// CertificationStatus marks whether a held certification is usable.
type CertificationStatus string

const (
	CertificationActive  CertificationStatus = "active"
	CertificationExpired CertificationStatus = "expired"
)

// Candidate represents a supplier evaluated against opportunities.
// Owned by an external profile-management collaborator; read-only here.
type Candidate struct {
	ID   string        `json:"id"`
	Name string        `json:"name"`
	Type CandidateType `json:"type"`

	PrimaryCapabilities   []string        `json:"primary_capabilities"`
	SecondaryCapabilities []string        `json:"secondary_capabilities"`
	Certifications        []Certification `json:"certifications"`

	Ownership OwnershipProfile   `json:"ownership"`
	Locations []Location         `json:"locations"`
	Financial FinancialProfile   `json:"financial"`
	History   PerformanceHistory `json:"history"`
}

// Certification is a held certification with its validity status.
type Certification struct {
	Name   string              `json:"name"`
	Status CertificationStatus `json:"status"`
}

// OwnershipProfile describes the diversity content of a candidate's ownership.
type OwnershipProfile struct {
	DiversityPercentage float64 `json:"diversity_percentage"`
	AffiliatedGroup     string  `json:"affiliated_group,omitempty"`
}

// FinancialProfile holds the coarse financial measures used for
// capacity scoring.
type FinancialProfile struct {
	AnnualRevenue float64 `json:"annual_revenue"`
	EmployeeCount int     `json:"employee_count"`
}

// PerformanceHistory summarizes past delivery performance.
type PerformanceHistory struct {
	CompletedProjects  int     `json:"completed_projects"`
	WinRate            float64 `json:"win_rate"`
	ClientSatisfaction float64 `json:"client_satisfaction"` // 0-5
	OnTimeDelivery     float64 `json:"on_time_delivery"`    // percent
}

// AllCapabilities returns the combined primary and secondary capability list.
func (c *Candidate) AllCapabilities() []string {
	all := make([]string, 0, len(c.PrimaryCapabilities)+len(c.SecondaryCapabilities))
	all = append(all, c.PrimaryCapabilities...)
	all = append(all, c.SecondaryCapabilities...)
	return all
}

// HasActiveCertification reports whether the candidate holds the named
// certification in active status.
func (c *Candidate) HasActiveCertification(name string) bool {
	for _, cert := range c.Certifications {
		if cert.Name == name && cert.Status == CertificationActive {
			return true
		}
	}
	return false
}

// QualifyingDiversityContent returns the ownership percentage the candidate
// can claim toward a diversity requirement. Ownership held through a parent
// company does not qualify.
func (c *Candidate) QualifyingDiversityContent() float64 {
	if c.Type == CandidateSubsidiary {
		return 0
	}
	return c.Ownership.DiversityPercentage
}
