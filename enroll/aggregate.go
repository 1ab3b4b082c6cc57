package enroll

import (
	"sort"

	"github.com/enrollmap/enrollmap/scale"
)

// Summary is the roll-up shown next to the map.
type Summary struct {
	TotalEnrollment int     `json:"total_enrollment"`
	TotalDecember   int     `json:"total_december"`
	TotalChange     int     `json:"total_change"`
	ChangePct       float64 `json:"change_pct"`
	CountyCount     int     `json:"county_count"`
}

// CalculateSummary totals the filtered set. The December total is recomputed
// under the same selection logic rather than summing precomputed change
// records, so a plan-type or group narrowing stays consistent between the
// current and baseline sides. Counties absent from the December snapshot
// contribute zero baseline.
func (s *Store) CalculateSummary(filtered map[string]FilteredCounty, sel Selection) Summary {
	sum := Summary{CountyCount: len(filtered)}
	for fips, fc := range filtered {
		sum.TotalEnrollment += fc.FilteredEnrollment
		if s.December != nil {
			if dec, ok := s.December.Counties[fips]; ok {
				sum.TotalDecember += sel.Value(dec)
			}
		}
	}
	sum.TotalChange = sum.TotalEnrollment - sum.TotalDecember
	if sum.TotalDecember > 0 {
		sum.ChangePct = float64(sum.TotalChange) / float64(sum.TotalDecember) * 100
	}
	return sum
}

// RankedCounty is one row of the gainers/losers panel.
type RankedCounty struct {
	FIPS      string  `json:"fips"`
	State     string  `json:"state"`
	County    string  `json:"county"`
	Change    int     `json:"change"`
	ChangePct float64 `json:"change_pct"`
}

// TopGainers returns up to n included counties with positive change, largest
// first. Counties without a change record are skipped. Ties keep FIPS order
// (map iteration is randomized, so encounter order is pinned to sorted keys).
func (s *Store) TopGainers(filtered map[string]FilteredCounty, n int) []RankedCounty {
	ranked := s.rankedChanges(filtered, func(c int) bool { return c > 0 })
	scale.SortByDesc(ranked, func(r RankedCounty) int { return r.Change })
	return clip(ranked, n)
}

// TopLosers returns up to n included counties with negative change, most
// negative first.
func (s *Store) TopLosers(filtered map[string]FilteredCounty, n int) []RankedCounty {
	ranked := s.rankedChanges(filtered, func(c int) bool { return c < 0 })
	scale.SortBy(ranked, func(r RankedCounty) int { return r.Change })
	return clip(ranked, n)
}

func (s *Store) rankedChanges(filtered map[string]FilteredCounty, keep func(int) bool) []RankedCounty {
	var ranked []RankedCounty
	for _, fips := range sortedKeys(filtered) {
		ch, ok := s.ChangeFor(fips)
		if !ok || !keep(ch.Change) {
			continue
		}
		fc := filtered[fips]
		ranked = append(ranked, RankedCounty{
			FIPS:      fips,
			State:     fc.State,
			County:    fc.County.County,
			Change:    ch.Change,
			ChangePct: ch.ChangePct,
		})
	}
	return ranked
}

// OrgEnrollment is one row of the organization breakdown.
type OrgEnrollment struct {
	Organization string `json:"organization"`
	Enrollment   int    `json:"enrollment"`
}

// OrgBreakdown sums per-organization contributions across the filtered set,
// sorted descending by total. Ties keep first-encounter order over sorted
// FIPS keys, so the result is deterministic.
func (s *Store) OrgBreakdown(filtered map[string]FilteredCounty) []OrgEnrollment {
	totals := make(map[string]int)
	var order []string
	for _, fips := range sortedKeys(filtered) {
		c := filtered[fips]
		for _, org := range sortedOrgKeys(c.ByOrg) {
			if _, seen := totals[org]; !seen {
				order = append(order, org)
			}
			totals[org] += c.ByOrg[org]
		}
	}
	out := make([]OrgEnrollment, 0, len(order))
	for _, org := range order {
		out = append(out, OrgEnrollment{Organization: org, Enrollment: totals[org]})
	}
	scale.SortByDesc(out, func(o OrgEnrollment) int { return o.Enrollment })
	return out
}

func sortedKeys(m map[string]FilteredCounty) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedOrgKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func clip[T any](items []T, n int) []T {
	if n >= 0 && len(items) > n {
		return items[:n]
	}
	return items
}
