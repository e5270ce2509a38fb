package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

func (s *Server) species(r *http.Request) string {
	if sp := r.URL.Query().Get("species"); sp != "" {
		return sp
	}
	return s.cfg.Species
}

func (s *Server) handleListYears(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		jsonError(w, "record store not configured", http.StatusServiceUnavailable)
		return
	}
	species := s.species(r)
	years, err := s.store.Years(r.Context(), species)
	if err != nil {
		s.log.Error("list years", "species", species, "error", err)
		jsonError(w, "failed to list years", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"species": species, "years": years})
}

func (s *Server) handleYearHarvest(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		jsonError(w, "record store not configured", http.StatusServiceUnavailable)
		return
	}
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		jsonError(w, "year must be an integer", http.StatusBadRequest)
		return
	}
	species := s.species(r)
	records, err := s.store.HarvestRecords(r.Context(), species, year)
	if err != nil {
		s.log.Error("load harvest records", "species", species, "year", year, "error", err)
		jsonError(w, "failed to load records", http.StatusInternalServerError)
		return
	}
	dau, err := s.store.DAUCount(r.Context(), species, year)
	if err != nil {
		s.log.Error("count dau records", "species", species, "year", year, "error", err)
		jsonError(w, "failed to load records", http.StatusInternalServerError)
		return
	}
	if len(records) == 0 && dau == 0 {
		jsonError(w, "no records for year", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"species":   species,
		"year":      year,
		"harvest":   records,
		"dau_count": dau,
	})
}
