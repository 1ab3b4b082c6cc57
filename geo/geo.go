// Package geo loads the county polygon collection used by the choropleth.
// Geography is loaded once at startup and never filtered; features join the
// enrollment data on the county FIPS code.
package geo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/enrollmap/enrollmap/enroll"
)

// ErrAllSourcesFailed is returned when every configured geography source
// was tried and none produced a usable FeatureCollection.
var ErrAllSourcesFailed = errors.New("geo: all geography sources failed")

// Load tries each source in order (file path or URL) and returns the first
// FeatureCollection that parses. It fails only when the list is exhausted.
func Load(ctx context.Context, loader *enroll.Loader, sources []string) (*geojson.FeatureCollection, error) {
	var errs []error
	for _, src := range sources {
		raw, err := loader.ReadSource(ctx, src)
		if err != nil {
			slog.Warn("geography source failed", "source", src, "error", err)
			errs = append(errs, err)
			continue
		}
		fc, err := geojson.UnmarshalFeatureCollection(raw)
		if err != nil {
			slog.Warn("geography source unparseable", "source", src, "error", err)
			errs = append(errs, fmt.Errorf("parse %s: %w", src, err))
			continue
		}
		if len(fc.Features) == 0 {
			errs = append(errs, fmt.Errorf("parse %s: empty collection", src))
			continue
		}
		slog.Info("geography loaded", "source", src, "features", len(fc.Features))
		return fc, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrAllSourcesFailed, errors.Join(errs...))
}

// FIPS extracts the county id joining a feature to the enrollment data.
// Census-published GeoJSON varies: the id may live on the feature itself or
// in GEOID/id/fips properties.
func FIPS(f *geojson.Feature) string {
	if s, ok := f.ID.(string); ok && s != "" {
		return s
	}
	for _, key := range []string{"GEOID", "geoid", "id", "fips", "FIPS"} {
		if s, ok := f.Properties[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// FeatureBounds returns the bounding box a map client recenters on when the
// feature is clicked.
func FeatureBounds(f *geojson.Feature) orb.Bound {
	return f.Geometry.Bound()
}
