// Package enroll owns the loaded CMS enrollment datasets and answers the
// filter and aggregation queries behind the dashboard. Datasets are written
// once at load time and read-only afterwards; every query is a pure function
// of (snapshots, selection) and never mutates stored data.
package enroll

// Metadata describes a processed snapshot file.
type Metadata struct {
	ProcessedDate   string `json:"processed_date"`
	RecordCount     int    `json:"record_count"`
	TotalEnrollment int    `json:"total_enrollment"`
}

// County is one county's enrollment, keyed in a Snapshot by FIPS code.
// CMS masks cell values below 11; those arrive as 0.
type County struct {
	State      string         `json:"state"`
	County     string         `json:"county"`
	FIPS       string         `json:"fips"`
	Total      int            `json:"total"`
	ByOrg      map[string]int `json:"by_org"`
	ByPlanType map[string]int `json:"by_plan_type"`
	Contracts  map[string]int `json:"contracts"`
	ByGroup    map[string]int `json:"by_group,omitempty"`
}

// Snapshot is one month's processed enrollment file
// (enrollment-current.json / enrollment-december.json).
type Snapshot struct {
	Metadata   Metadata          `json:"metadata"`
	Counties   map[string]County `json:"counties"`
	ByOrg      map[string]int    `json:"by_org"`
	ByPlanType map[string]int    `json:"by_plan_type"`
	ByState    map[string]int    `json:"by_state"`
}

// Change is one county's movement against the December baseline.
type Change struct {
	Current   int     `json:"current"`
	December  int     `json:"december"`
	Change    int     `json:"change"`
	ChangePct float64 `json:"change_pct"`
}

// ChangeSummary is the national roll-up in enrollment-changes.json.
type ChangeSummary struct {
	TotalCurrent   int     `json:"total_current"`
	TotalDecember  int     `json:"total_december"`
	TotalChange    int     `json:"total_change"`
	TotalChangePct float64 `json:"total_change_pct"`
}

// Changes is the enrollment-changes.json payload. Counties without a
// captured December baseline are simply absent.
type Changes struct {
	Counties map[string]Change `json:"counties"`
	ByOrg    map[string]Change `json:"by_org"`
	ByState  map[string]Change `json:"by_state"`
	Summary  ChangeSummary     `json:"summary"`
}

// Contract is one row of contracts.json, used to populate the contract
// filter options.
type Contract struct {
	Enrollment   int    `json:"enrollment"`
	ParentOrg    string `json:"parent_org"`
	Organization string `json:"organization"`
	PlanType     string `json:"plan_type"`
}

// FilteredCounty is a county together with the scalar enrollment value
// computed under a Selection. The embedded County is shared with the
// snapshot and must not be mutated.
type FilteredCounty struct {
	County
	FilteredEnrollment int `json:"filteredEnrollment"`
}

// Store holds all loaded datasets. The current snapshot is mandatory;
// December, Changes and Contracts may be nil, which degrades the dependent
// queries (empty rankings, empty contract options) without failing.
type Store struct {
	Current   *Snapshot
	December  *Snapshot
	Changes   *Changes
	Contracts map[string]Contract
}

// ChangeFor returns the change record for a county, if one exists.
func (s *Store) ChangeFor(fips string) (Change, bool) {
	if s.Changes == nil {
		return Change{}, false
	}
	c, ok := s.Changes.Counties[fips]
	return c, ok
}
