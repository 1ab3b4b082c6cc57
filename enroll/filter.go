package enroll

// FilterCounties computes each county's scalar enrollment under the
// selection and returns the counties that survive, keyed by FIPS.
//
// A county is excluded entirely when a state filter is set and mismatched,
// and dropped when its computed value is ≤ 0 (covers both genuinely empty
// intersections and CMS-masked cells). The snapshot is never mutated; the
// result holds derived copies.
func (s *Store) FilterCounties(sel Selection) map[string]FilteredCounty {
	out := make(map[string]FilteredCounty)
	if s.Current == nil {
		return out
	}
	for fips, c := range s.Current.Counties {
		if sel.State != "" && c.State != sel.State {
			continue
		}
		v := sel.Value(c)
		if v <= 0 {
			continue
		}
		out[fips] = FilteredCounty{County: c, FilteredEnrollment: v}
	}
	return out
}
