// Package cpsc processes CMS "Monthly Enrollment by Contract/Plan/State/
// County" data into the JSON snapshots the dashboard serves: parse the CSV,
// aggregate enrollment by county, organization and plan type, and compute
// changes against the December baseline.
package cpsc

// Row is one normalized CSV record.
type Row struct {
	Contract     string
	PlanID       string
	State        string
	County       string
	FIPS         string
	Enrollment   int
	Organization string
	PlanName     string
	OrgType      string
}

// Plan type categories. Stand-alone PDP contracts (S prefix) are not
// Medicare Advantage and are excluded upstream; PFFS and other minor types
// group into Other.
const (
	PlanHMO   = "HMO"
	PlanPPO   = "PPO"
	PlanDSNP  = "DSNP"
	PlanOther = "Other"
)

// Group market split categories for the optional by_group county field.
const (
	GroupIndividual = "individual"
	GroupEmployer   = "group"
)
