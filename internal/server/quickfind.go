package server

import (
	"log/slog"
	"net/http"
	"regexp"
	"strconv"

	"github.com/localhive/localhive/internal/places"
)

// llPattern matches "latitude,longitude" with decimal fractions, e.g.
// "18.5941,73.7345".
var llPattern = regexp.MustCompile(`^-?\d+\.\d+,-?\d+\.\d+$`)

func (s *Server) handleQuickFind(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	params := places.SearchParams{
		Query:       q.Get("query"),
		LL:          q.Get("ll"),
		CategoryIDs: q.Get("fsq_category_ids"),
	}

	if params.LL != "" && !llPattern.MatchString(params.LL) {
		respondError(w, http.StatusBadRequest, "Invalid latitude/longitude format")
		return
	}
	if rawRadius := q.Get("radius"); rawRadius != "" {
		radius, err := strconv.Atoi(rawRadius)
		if err != nil || radius <= 0 {
			respondError(w, http.StatusBadRequest, "Invalid radius value")
			return
		}
		params.Radius = radius
	}

	result, err := s.places.QuickFind(r.Context(), params)
	if err != nil {
		slog.Error("quick find failed", "err", err)
		respondError(w, http.StatusInternalServerError, "Failed to perform search")
		return
	}

	respondSuccess(w, http.StatusOK, "Quick Find search completed successfully", result)
}

// handleQuickFindCategories reports the categories available around a
// location by running an empty-query search.
func (s *Server) handleQuickFindCategories(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	params := places.SearchParams{
		LL:          q.Get("ll"),
		CategoryIDs: q.Get("fsq_category_ids"),
	}
	if params.LL != "" && !llPattern.MatchString(params.LL) {
		respondError(w, http.StatusBadRequest, "Invalid latitude/longitude format")
		return
	}
	if rawRadius := q.Get("radius"); rawRadius != "" {
		radius, err := strconv.Atoi(rawRadius)
		if err != nil || radius <= 0 {
			respondError(w, http.StatusBadRequest, "Invalid radius value")
			return
		}
		params.Radius = radius
	}

	result, err := s.places.QuickFind(r.Context(), params)
	if err != nil {
		slog.Error("location categories lookup failed", "err", err)
		respondError(w, http.StatusInternalServerError, "Failed to get location categories")
		return
	}

	respondSuccess(w, http.StatusOK, "Location categories retrieved successfully", map[string]any{
		"location":               params.LL,
		"radius":                 params.Radius,
		"total_categories_found": result.TotalCategoriesFound,
		"categories":             result.UniqueCategories,
	})
}
