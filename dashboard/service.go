// Package dashboard wires the enrollment store, geography, filter state and
// choropleth renderer behind the HTTP API. It owns initialization order:
// datasets load first (concurrently), then filters and the initial render;
// every debounced filter change produces one recompute feeding both the map
// and the summary panels.
package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/paulmach/orb/geojson"

	"github.com/enrollmap/enrollmap/choropleth"
	"github.com/enrollmap/enrollmap/enroll"
	"github.com/enrollmap/enrollmap/filters"
	"github.com/enrollmap/enrollmap/geo"
	"github.com/enrollmap/enrollmap/observability"
)

// view is one fully computed render: the filtered set, its bounds, the
// painted geography and the panel aggregates, all derived from a single
// selection. Swapped atomically under Service.mu.
type view struct {
	sel      enroll.Selection
	filtered map[string]enroll.FilteredCounty
	bounds   choropleth.Bounds
	summary  enroll.Summary
	painted  *geojson.FeatureCollection
	legend   []choropleth.LegendEntry
	gainers  []enroll.RankedCounty
	losers   []enroll.RankedCounty
	orgs     []enroll.OrgEnrollment
}

// Service is the dashboard application.
type Service struct {
	cfg    *Config
	log    *slog.Logger
	loader *enroll.Loader
	flt    *filters.Filters
	events *observability.EventLogger // optional

	mu      sync.RWMutex
	store   *enroll.Store
	geodata *geojson.FeatureCollection
	cur     *view
	loadErr error
}

// Option configures a Service.
type Option func(*Service)

// WithEvents wires business-event recording.
func WithEvents(ev *observability.EventLogger) Option {
	return func(s *Service) { s.events = ev }
}

// WithFilterQuiet overrides the selection debounce window (tests).
func WithFilterQuiet(opt filters.Option) Option {
	return func(s *Service) { s.flt = filters.New(opt) }
}

// New creates the service. Call Load before serving.
func New(cfg *Config, log *slog.Logger, opts ...Option) *Service {
	cfg.Defaults()
	if log == nil {
		log = slog.Default()
	}
	s := &Service{
		cfg: cfg,
		log: log,
		loader: &enroll.Loader{
			Fetch: enroll.FetchConfig{Timeout: cfg.FetchTimeout},
			Log:   log,
		},
		flt: filters.New(),
	}
	for _, o := range opts {
		o(s)
	}
	s.flt.OnChange(s.applySelection)
	return s
}

// Load fetches all datasets and geography and computes the initial render.
// On failure the service stays up in an explicit "data unavailable" state:
// API endpoints answer 503 until a later Reload succeeds.
func (s *Service) Load(ctx context.Context) error {
	store, err := s.loader.Load(ctx, s.cfg.Sources)
	if err != nil {
		s.setLoadErr(err)
		return err
	}
	geodata, err := geo.Load(ctx, s.loader, s.cfg.GeoSources)
	if err != nil {
		s.setLoadErr(err)
		return err
	}

	s.mu.Lock()
	s.store = store
	s.geodata = geodata
	s.loadErr = nil
	s.cur = s.render(s.flt.Current())
	s.mu.Unlock()
	return nil
}

// Reload re-fetches everything and swaps the datasets in place, keeping the
// current selection. Used by the catalog watcher and the admin endpoint.
func (s *Service) Reload(ctx context.Context) error {
	err := s.Load(ctx)
	if s.events != nil {
		s.events.LogEvent(ctx, observability.BusinessEvent{
			EventType:   "snapshot_reload",
			ServiceName: "enrollmapd",
			Action:      "reload",
			Success:     err == nil,
		})
	}
	if err != nil {
		return fmt.Errorf("dashboard: reload: %w", err)
	}
	return nil
}

func (s *Service) setLoadErr(err error) {
	s.mu.Lock()
	s.loadErr = err
	s.mu.Unlock()
	s.log.Error("dataset load failed, serving data-unavailable state", "error", err)
}

// Ready reports whether datasets are loaded. A failed reload keeps the last
// good datasets, so readiness only drops when no load ever succeeded.
func (s *Service) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur != nil
}

// SetSelection updates the filter state; the recompute fires after the
// debounce quiet period.
func (s *Service) SetSelection(sel enroll.Selection) {
	s.flt.Set(sel)
}

// Flush forces any pending recompute. Tests and shutdown.
func (s *Service) Flush() { s.flt.Flush() }

// applySelection is the single registered filter listener.
func (s *Service) applySelection(sel enroll.Selection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		return
	}
	s.cur = s.render(sel)
	s.log.Debug("selection applied",
		"state", sel.State, "organization", sel.Organization,
		"contract", sel.Contract, "mode", sel.Mode,
		"counties", len(s.cur.filtered))
}

// render computes a full view for the selection. Callers hold s.mu.
func (s *Service) render(sel enroll.Selection) *view {
	mode, err := enroll.ParseDisplayMode(string(sel.Mode))
	if err != nil {
		mode = enroll.ModeTotal
	}
	sel.Mode = mode

	filtered := s.store.FilterCounties(sel)
	bounds := choropleth.DataBounds(filtered, s.store)
	return &view{
		sel:      sel,
		filtered: filtered,
		bounds:   bounds,
		summary:  s.store.CalculateSummary(filtered, sel),
		painted:  choropleth.Paint(s.geodata, mode, filtered, s.store, bounds),
		legend:   choropleth.Legend(mode, bounds),
		gainers:  s.store.TopGainers(filtered, s.cfg.RankingSize),
		losers:   s.store.TopLosers(filtered, s.cfg.RankingSize),
		orgs:     s.store.OrgBreakdown(filtered),
	}
}

// current returns the cached view, or nil with the load error while in the
// data-unavailable state.
func (s *Service) currentView() (*view, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cur == nil {
		if s.loadErr != nil {
			return nil, s.loadErr
		}
		return nil, enroll.ErrNoCurrentSnapshot
	}
	return s.cur, nil
}
