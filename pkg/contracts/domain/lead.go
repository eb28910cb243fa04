package domain

// Lead sheet column names. Any of them may be absent from a given workbook.
const (
	ColumnCountry          = "Country"
	ColumnLeadStage        = "Lead Stage"
	ColumnIndustryVertical = "Industry Vertical"
	ColumnLeadSource       = "Lead Source"
	ColumnCompanySize      = "Company size"
	ColumnLastActivity     = "Last Activity"
	ColumnRegion           = "Region Specific"
	ColumnRole             = "Role"
	ColumnEmail            = "Email"
	ColumnPhone            = "Phone/Mobile"
	ColumnCompanyName      = "Company Name"
)

// Subset names a slice of the lead table that the reports work on
type Subset string

const (
	SubsetAll      Subset = "all"
	SubsetActive   Subset = "active"
	SubsetInactive Subset = "inactive"
	SubsetBounced  Subset = "bounced"
)

// Valid reports whether s is a known subset
func (s Subset) Valid() bool {
	switch s {
	case SubsetAll, SubsetActive, SubsetInactive, SubsetBounced:
		return true
	}
	return false
}
