package models

// OpportunityType classifies an opportunity listing.
type OpportunityType string

const (
	OpportunityScholarship OpportunityType = "scholarship"
	OpportunityTrial       OpportunityType = "trial"
	OpportunityCamp        OpportunityType = "camp"
	OpportunityCoaching    OpportunityType = "coaching"
)

// Valid reports whether t is a known opportunity type.
func (t OpportunityType) Valid() bool {
	switch t {
	case OpportunityScholarship, OpportunityTrial, OpportunityCamp, OpportunityCoaching:
		return true
	}
	return false
}

// Opportunity is a scholarship, trial, camp or coaching listing.
type Opportunity struct {
	ID           string          `json:"id" yaml:"id"`
	Title        string          `json:"title" yaml:"title"`
	Organization string          `json:"organization" yaml:"organization"`
	Type         OpportunityType `json:"type" yaml:"type"`
	Sport        string          `json:"sport" yaml:"sport"`
	Location     string          `json:"location" yaml:"location"`
	Deadline     string          `json:"deadline" yaml:"deadline"`
	Description  string          `json:"description" yaml:"description"`
	Requirements []string        `json:"requirements" yaml:"requirements"`
	Applied      bool            `json:"applied" yaml:"applied"`
}
