package choropleth

import (
	"github.com/paulmach/orb/geojson"

	"github.com/enrollmap/enrollmap/enroll"
	"github.com/enrollmap/enrollmap/geo"
	"github.com/enrollmap/enrollmap/scale"
)

// Paint annotates a copy of the geography with per-feature fill colors and
// formatted values under the given mode and filtered set, so a map client
// renders the choropleth without recomputing anything. The input collection
// is shared and never mutated: each output feature reuses the geometry but
// carries fresh properties.
func Paint(fc *geojson.FeatureCollection, mode enroll.DisplayMode, filtered map[string]enroll.FilteredCounty, store *enroll.Store, b Bounds) *geojson.FeatureCollection {
	out := geojson.NewFeatureCollection()
	for _, f := range fc.Features {
		fips := geo.FIPS(f)
		nf := geojson.NewFeature(f.Geometry)
		nf.ID = fips
		nf.Properties = paintedProperties(f.Properties, mode, fips, filtered, store, b)
		out.Append(nf)
	}
	return out
}

func paintedProperties(base geojson.Properties, mode enroll.DisplayMode, fips string, filtered map[string]enroll.FilteredCounty, store *enroll.Store, b Bounds) geojson.Properties {
	props := geojson.Properties{"fips": fips}
	for _, key := range []string{"NAME", "name", "STATE", "state"} {
		if v, ok := base[key]; ok {
			props[key] = v
		}
	}

	fc, included := filtered[fips]
	if !included {
		// Filtered out (or masked to zero): render as empty, not colored.
		props["fill"] = scale.NoData.Hex()
		props["included"] = false
		return props
	}
	props["included"] = true
	props["fill"] = FeatureColor(mode, fips, fc, store, b).Hex()
	props["enrollment"] = fc.FilteredEnrollment
	props["enrollment_label"] = scale.FormatCount(fc.FilteredEnrollment)
	if ch, ok := store.ChangeFor(fips); ok {
		props["change"] = ch.Change
		props["change_label"] = scale.FormatChange(ch.Change)
		props["change_pct_label"] = scale.FormatPercent(ch.ChangePct)
	}
	return props
}
