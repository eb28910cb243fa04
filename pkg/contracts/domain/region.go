package domain

// RegionChange records one row whose region label was rewritten.
// Row is the zero-based data row position.
type RegionChange struct {
	Row     int    `json:"row"`
	Country string `json:"country"`
	Before  string `json:"before"`
	After   string `json:"after"`
}

// CountryRegionStatus is the per-country outcome of a reclassification.
// Success means every row of the country now carries the region label.
type CountryRegionStatus struct {
	Country  string `json:"country"`
	Region   string `json:"region"`
	Total    int    `json:"total"`
	InRegion int    `json:"in_region"`
	Success  bool   `json:"success"`
}

// RegionUpdate is the result of applying region rules to a table
type RegionUpdate struct {
	Table          *Table                `json:"-"`
	Changes        []RegionChange        `json:"changes"`
	Countries      []CountryRegionStatus `json:"countries"`
	Distribution   *Aggregate            `json:"distribution"`
	Matched        int                   `json:"matched"`
	Updated        int                   `json:"updated"`
	AlreadyCorrect int                   `json:"already_correct"`
	ColumnCreated  bool                  `json:"column_created"`
}
