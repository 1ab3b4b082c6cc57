package cpsc

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/enrollmap/enrollmap/enroll"
)

// Aggregate rolls the CSV rows up into the dashboard snapshot plus the
// contract metadata file. contractOrgs (from a CMS contract-info CSV) takes
// precedence over the built-in parent organization mapping.
func Aggregate(rows []Row, contractOrgs map[string]string) (*enroll.Snapshot, map[string]enroll.Contract) {
	snap := &enroll.Snapshot{
		Counties:   make(map[string]enroll.County),
		ByOrg:      make(map[string]int),
		ByPlanType: make(map[string]int),
		ByState:    make(map[string]int),
	}
	contracts := make(map[string]contractAccum)

	type derived struct {
		Row
		planType string
		parent   string
		group    string
	}

	byCounty := make(map[string][]derived)
	total := 0
	for _, r := range rows {
		d := derived{
			Row:      r,
			planType: PlanType(r.Contract, r.PlanName, r.OrgType),
			parent:   resolveOrg(r, contractOrgs),
			group:    MarketGroup(r.Contract),
		}
		byCounty[countyKey(r)] = append(byCounty[countyKey(r)], d)
		total += r.Enrollment

		snap.ByOrg[d.parent] += r.Enrollment
		snap.ByPlanType[d.planType] += r.Enrollment
		snap.ByState[r.State] += r.Enrollment

		ca := contracts[r.Contract]
		ca.enrollment += r.Enrollment
		if ca.parent == "" {
			ca.parent = d.parent
		}
		if ca.organization == "" {
			ca.organization = firstNonEmpty(r.Organization, d.parent)
		}
		if ca.planTypes == nil {
			ca.planTypes = make(map[string]int)
		}
		ca.planTypes[d.planType]++
		contracts[r.Contract] = ca
	}

	for key, group := range byCounty {
		c := enroll.County{
			FIPS:       key,
			ByOrg:      make(map[string]int),
			ByPlanType: make(map[string]int),
			Contracts:  make(map[string]int),
			ByGroup:    make(map[string]int),
		}
		for _, d := range group {
			c.State = d.State
			c.County = d.County
			c.Total += d.Enrollment
			c.ByOrg[d.parent] += d.Enrollment
			c.ByPlanType[d.planType] += d.Enrollment
			c.Contracts[d.Contract] += d.Enrollment
			c.ByGroup[d.group] += d.Enrollment
		}
		snap.Counties[key] = c
	}

	snap.Metadata = enroll.Metadata{
		ProcessedDate:   time.Now().Format(time.RFC3339),
		RecordCount:     len(rows),
		TotalEnrollment: total,
	}

	out := make(map[string]enroll.Contract, len(contracts))
	for id, ca := range contracts {
		out[id] = enroll.Contract{
			Enrollment:   ca.enrollment,
			ParentOrg:    ca.parent,
			Organization: ca.organization,
			PlanType:     dominantPlanType(ca.planTypes),
		}
	}
	return snap, out
}

type contractAccum struct {
	enrollment   int
	parent       string
	organization string
	planTypes    map[string]int
}

// countyKey prefers the FIPS code; rows without one fall back to a
// state_county slug so they still aggregate.
func countyKey(r Row) string {
	if r.FIPS != "" {
		return r.FIPS
	}
	county := r.County
	if county == "" {
		county = "unknown"
	}
	slug := fmt.Sprintf("%s_%s", r.State, county)
	return strings.ToLower(strings.ReplaceAll(slug, " ", "_"))
}

func resolveOrg(r Row, contractOrgs map[string]string) string {
	if org, ok := contractOrgs[r.Contract]; ok && org != "" {
		return org
	}
	return ParentOrg(r.Contract, r.Organization)
}

// dominantPlanType picks the most frequent plan type across a contract's
// rows; ties resolve alphabetically for determinism.
func dominantPlanType(counts map[string]int) string {
	if len(counts) == 0 {
		return "Unknown"
	}
	types := make([]string, 0, len(counts))
	for t := range counts {
		types = append(types, t)
	}
	sort.Strings(types)
	best := types[0]
	for _, t := range types[1:] {
		if counts[t] > counts[best] {
			best = t
		}
	}
	return best
}

// CalculateChanges diffs a current snapshot against the December baseline,
// county by county plus the org/state/national roll-ups. Percentages round
// to two decimals; a zero baseline yields zero percent.
func CalculateChanges(current, december *enroll.Snapshot) *enroll.Changes {
	ch := &enroll.Changes{
		Counties: make(map[string]enroll.Change),
		ByOrg:    make(map[string]enroll.Change),
		ByState:  make(map[string]enroll.Change),
	}

	ch.Summary = enroll.ChangeSummary{
		TotalCurrent:  current.Metadata.TotalEnrollment,
		TotalDecember: december.Metadata.TotalEnrollment,
		TotalChange:   current.Metadata.TotalEnrollment - december.Metadata.TotalEnrollment,
	}
	if december.Metadata.TotalEnrollment > 0 {
		ch.Summary.TotalChangePct = round2(float64(ch.Summary.TotalChange) /
			float64(december.Metadata.TotalEnrollment) * 100)
	}

	for fips, cur := range current.Counties {
		dec := december.Counties[fips].Total
		ch.Counties[fips] = diff(cur.Total, dec)
	}
	for org, cur := range current.ByOrg {
		ch.ByOrg[org] = diff(cur, december.ByOrg[org])
	}
	for state, cur := range current.ByState {
		ch.ByState[state] = diff(cur, december.ByState[state])
	}
	return ch
}

func diff(current, december int) enroll.Change {
	c := enroll.Change{
		Current:  current,
		December: december,
		Change:   current - december,
	}
	if december > 0 {
		c.ChangePct = round2(float64(c.Change) / float64(december) * 100)
	}
	return c
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
