package dashboard

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/enrollmap/enrollmap/enroll"
	"github.com/enrollmap/enrollmap/geo"
	"github.com/enrollmap/enrollmap/scale"
)

// Routes mounts the dashboard API on a chi router.
func (s *Service) Routes(r chi.Router) {
	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/summary", s.handleSummary)
		r.Get("/counties", s.handleCounties)
		r.Get("/rankings", s.handleRankings)
		r.Get("/orgs", s.handleOrgs)
		r.Get("/options", s.handleOptions)
		r.Get("/legend", s.handleLegend)
		r.Get("/geo", s.handleGeo)
		r.Get("/select/{fips}", s.handleSelect)
		r.Post("/filters", s.handleSetFilters)
		r.Post("/admin/reload", s.handleAdminReload)
	})
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	if !s.Ready() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "data unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// unavailable answers the explicit placeholder state of a fatal load
// failure: the client renders "data unavailable", never a partial map.
func (s *Service) view(w http.ResponseWriter) (*view, bool) {
	v, err := s.currentView()
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "data unavailable",
		})
		return nil, false
	}
	return v, true
}

func (s *Service) handleSummary(w http.ResponseWriter, _ *http.Request) {
	v, ok := s.view(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Selection enroll.Selection `json:"selection"`
		enroll.Summary
		TotalLabel  string `json:"total_label"`
		ChangeLabel string `json:"change_label"`
		PctLabel    string `json:"pct_label"`
	}{
		Selection:   v.sel,
		Summary:     v.summary,
		TotalLabel:  scale.FormatCount(v.summary.TotalEnrollment),
		ChangeLabel: scale.FormatChange(v.summary.TotalChange),
		PctLabel:    scale.FormatPercent(v.summary.ChangePct),
	})
}

func (s *Service) handleCounties(w http.ResponseWriter, _ *http.Request) {
	v, ok := s.view(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, v.filtered)
}

func (s *Service) handleRankings(w http.ResponseWriter, r *http.Request) {
	v, ok := s.view(w)
	if !ok {
		return
	}
	gainers, losers := v.gainers, v.losers
	if raw := r.URL.Query().Get("n"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, errors.New("invalid n"))
			return
		}
		// The cached view holds the configured panel size; a smaller n
		// just trims, a larger one recomputes against the filtered set.
		if n <= len(gainers) && n <= len(losers) {
			gainers, losers = gainers[:min(n, len(gainers))], losers[:min(n, len(losers))]
		} else {
			s.mu.RLock()
			gainers = s.store.TopGainers(v.filtered, n)
			losers = s.store.TopLosers(v.filtered, n)
			s.mu.RUnlock()
		}
	}
	writeJSON(w, http.StatusOK, map[string][]enroll.RankedCounty{
		"gainers": emptyIfNil(gainers),
		"losers":  emptyIfNil(losers),
	})
}

func (s *Service) handleOrgs(w http.ResponseWriter, _ *http.Request) {
	v, ok := s.view(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(v.orgs))
}

// handleOptions returns the filter option lists. Contract options degrade to
// empty when contracts.json was unavailable.
func (s *Service) handleOptions(w http.ResponseWriter, _ *http.Request) {
	if _, ok := s.view(w); !ok {
		return
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	type contractOption struct {
		ID           string `json:"id"`
		Organization string `json:"organization"`
		PlanType     string `json:"plan_type"`
		Enrollment   int    `json:"enrollment"`
	}
	var contracts []contractOption
	for id, c := range s.store.Contracts {
		contracts = append(contracts, contractOption{
			ID:           id,
			Organization: c.Organization,
			PlanType:     c.PlanType,
			Enrollment:   c.Enrollment,
		})
	}
	scale.SortBy(contracts, func(c contractOption) string { return c.ID })

	writeJSON(w, http.StatusOK, map[string]any{
		"organizations": rankedNames(s.store.Current.ByOrg),
		"plan_types":    rankedNames(s.store.Current.ByPlanType),
		"states":        sortedNames(s.store.Current.ByState),
		"contracts":     emptyIfNil(contracts),
		"modes":         []enroll.DisplayMode{enroll.ModeTotal, enroll.ModeChange, enroll.ModeChangePct},
	})
}

func (s *Service) handleLegend(w http.ResponseWriter, _ *http.Request) {
	v, ok := s.view(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"mode":    v.sel.Mode,
		"bounds":  v.bounds,
		"entries": v.legend,
	})
}

func (s *Service) handleGeo(w http.ResponseWriter, _ *http.Request) {
	v, ok := s.view(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, v.painted)
}

// handleSelect answers a county click: the filtered record plus the bounding
// box the map client recenters on.
func (s *Service) handleSelect(w http.ResponseWriter, r *http.Request) {
	v, ok := s.view(w)
	if !ok {
		return
	}
	fips := chi.URLParam(r, "fips")
	fc, ok := v.filtered[fips]
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("county not in filtered set"))
		return
	}

	resp := map[string]any{"county": fc}
	s.mu.RLock()
	if ch, found := s.store.ChangeFor(fips); found {
		resp["change"] = ch
	}
	for _, f := range s.geodata.Features {
		if geo.FIPS(f) == fips {
			b := geo.FeatureBounds(f)
			resp["bbox"] = []float64{b.Min[0], b.Min[1], b.Max[0], b.Max[1]}
			break
		}
	}
	s.mu.RUnlock()
	writeJSON(w, http.StatusOK, resp)
}

// handleSetFilters replaces the selection. The recompute is debounced, so
// rapid UI input coalesces into a single render; reads meanwhile serve the
// previous view.
func (s *Service) handleSetFilters(w http.ResponseWriter, r *http.Request) {
	var sel enroll.Selection
	if err := json.NewDecoder(r.Body).Decode(&sel); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	mode, err := enroll.ParseDisplayMode(string(sel.Mode))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	sel.Mode = mode
	switch sel.Group {
	case enroll.GroupAll, enroll.GroupIndividual, enroll.GroupEmployer:
	default:
		writeError(w, http.StatusBadRequest, errors.New("unknown group"))
		return
	}
	s.SetSelection(sel)
	writeJSON(w, http.StatusAccepted, sel)
}

func (s *Service) handleAdminReload(w http.ResponseWriter, r *http.Request) {
	if s.cfg.AdminPasswordHash == "" {
		writeError(w, http.StatusNotFound, errors.New("admin endpoints disabled"))
		return
	}
	pass := r.Header.Get("X-Admin-Password")
	if err := bcrypt.CompareHashAndPassword([]byte(s.cfg.AdminPasswordHash), []byte(pass)); err != nil {
		writeError(w, http.StatusUnauthorized, errors.New("unauthorized"))
		return
	}
	if err := s.Reload(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reloaded"})
}

// rankedNames sorts breakdown keys by total descending; ties alphabetical.
func rankedNames(m map[string]int) []string {
	names := sortedNames(m)
	scale.SortByDesc(names, func(n string) int { return m[n] })
	return names
}

func sortedNames(m map[string]int) []string {
	names := make([]string, 0, len(m))
	for n := range m {
		names = append(names, n)
	}
	scale.SortBy(names, func(n string) string { return n })
	return names
}

func emptyIfNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
