// Package choropleth turns a filtered county set into map colors: data
// bounds, per-feature fill colors keyed by display mode, and the legend.
// Tile rendering and interaction stay with the map client; this package
// only computes what each county should look like.
package choropleth

import (
	"math"

	"github.com/enrollmap/enrollmap/enroll"
	"github.com/enrollmap/enrollmap/scale"
)

// Bounds are the normalization domains for the current filtered set.
// Derived on every filter or mode change, never persisted.
type Bounds struct {
	MaxEnrollment int     `json:"max_enrollment"`
	MinChange     int     `json:"min_change"`
	MaxChange     int     `json:"max_change"`
	MinChangePct  float64 `json:"min_change_pct"`
	MaxChangePct  float64 `json:"max_change_pct"`
}

// maxAbsChange is the half-width of the symmetric change domain.
func (b Bounds) maxAbsChange() float64 {
	return math.Max(math.Abs(float64(b.MinChange)), math.Abs(float64(b.MaxChange)))
}

func (b Bounds) maxAbsChangePct() float64 {
	return math.Max(math.Abs(b.MinChangePct), math.Abs(b.MaxChangePct))
}

// DataBounds computes, in a single pass, the max enrollment across the
// filtered set and the min/max change and change-percent across the included
// counties that have a change record.
func DataBounds(filtered map[string]enroll.FilteredCounty, store *enroll.Store) Bounds {
	var b Bounds
	first := true
	for fips, fc := range filtered {
		if fc.FilteredEnrollment > b.MaxEnrollment {
			b.MaxEnrollment = fc.FilteredEnrollment
		}
		ch, ok := store.ChangeFor(fips)
		if !ok {
			continue
		}
		if first {
			b.MinChange, b.MaxChange = ch.Change, ch.Change
			b.MinChangePct, b.MaxChangePct = ch.ChangePct, ch.ChangePct
			first = false
			continue
		}
		b.MinChange = min(b.MinChange, ch.Change)
		b.MaxChange = max(b.MaxChange, ch.Change)
		b.MinChangePct = math.Min(b.MinChangePct, ch.ChangePct)
		b.MaxChangePct = math.Max(b.MaxChangePct, ch.ChangePct)
	}
	return b
}

// FeatureColor dispatches on display mode:
//
//   - total: enrollment normalized to [0, MaxEnrollment] on the blue ramp.
//   - change: signed change over a symmetric [-maxAbs, +maxAbs] domain,
//     greens for positive, reds on the magnitude for negative, fixed
//     neutral for exactly zero.
//   - change_pct: identical over percentage values.
//
// Counties without a change record get the no-data fill in the change modes.
func FeatureColor(mode enroll.DisplayMode, fips string, fc enroll.FilteredCounty, store *enroll.Store, b Bounds) scale.Color {
	switch mode {
	case enroll.ModeChange:
		ch, ok := store.ChangeFor(fips)
		if !ok {
			return scale.NoData
		}
		return changeColor(float64(ch.Change), b.maxAbsChange())
	case enroll.ModeChangePct:
		ch, ok := store.ChangeFor(fips)
		if !ok {
			return scale.NoData
		}
		return changeColor(ch.ChangePct, b.maxAbsChangePct())
	default:
		return scale.Interpolate(float64(fc.FilteredEnrollment), 0, float64(b.MaxEnrollment), scale.Blues)
	}
}

func changeColor(v, maxAbs float64) scale.Color {
	switch {
	case v == 0:
		return scale.NeutralZero
	case v > 0:
		return scale.Interpolate(v, 0, maxAbs, scale.Greens)
	default:
		return scale.Interpolate(-v, 0, maxAbs, scale.Reds)
	}
}
