package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/localhive/localhive/internal/auth"
	"github.com/localhive/localhive/internal/store"
)

func (s *Server) handleLocalTypesIndex(w http.ResponseWriter, r *http.Request) {
	types, err := s.store.LocalTypes(r.Context())
	if err != nil {
		slog.Error("listing local types", "err", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch local types")
		return
	}
	respondSuccess(w, http.StatusOK, "Local types fetched successfully", transformLocalTypes(types))
}

func (s *Server) handleLocalTypesShow(w http.ResponseWriter, r *http.Request) {
	lt, err := s.store.LocalTypeByUUID(r.Context(), r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Local type not found")
		return
	}
	if err != nil {
		slog.Error("fetching local type", "err", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch local type")
		return
	}
	respondSuccess(w, http.StatusOK, "Local type fetched successfully", transformLocalType(*lt))
}

// localParams is the writable body of POST/PUT /locals.
type localParams struct {
	Name                string `json:"name"`
	Description         string `json:"description"`
	LocalTypeID         string `json:"local_type_id"`
	Coordinates         string `json:"co_ordinates"`
	LocationSearchQuery string `json:"location_search_query"`
	Radius              int    `json:"radius"`
}

func (s *Server) handleLocalsIndex(w http.ResponseWriter, r *http.Request) {
	filter := store.LocalFilter{Search: r.URL.Query().Get("search")}
	filter.Page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	filter.Limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))

	if typeUUID := r.URL.Query().Get("local_type_id"); typeUUID != "" {
		lt, err := s.store.LocalTypeByUUID(r.Context(), typeUUID)
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusBadRequest, "Invalid local type ID")
			return
		}
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to fetch locals")
			return
		}
		filter.LocalTypeID = lt.ID
	}

	locals, total, err := s.store.Locals(r.Context(), filter)
	if err != nil {
		slog.Error("listing locals", "err", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch locals")
		return
	}
	respondSuccess(w, http.StatusOK, "Locals fetched successfully", map[string]any{
		"locals": transformLocals(locals),
		"total":  total,
	})
}

func (s *Server) handleLocalsShow(w http.ResponseWriter, r *http.Request) {
	local, err := s.store.LocalByUUID(r.Context(), r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Local not found")
		return
	}
	if err != nil {
		slog.Error("fetching local", "err", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch local")
		return
	}
	respondSuccess(w, http.StatusOK, "Local fetched successfully", transformLocal(*local))
}

func (s *Server) handleLocalsCreate(w http.ResponseWriter, r *http.Request) {
	var body localParams
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(body.Name) == "" {
		respondError(w, http.StatusBadRequest, "Name is required")
		return
	}

	params, ok := s.resolveLocalParams(w, r, body)
	if !ok {
		return
	}
	if u := auth.UserFromContext(r.Context()); u != nil {
		params.CustomerID = u.CustomerID
	}

	local, err := s.store.CreateLocal(r.Context(), params)
	if err != nil {
		slog.Error("creating local", "err", err)
		respondError(w, http.StatusInternalServerError, "Failed to create local")
		return
	}
	respondSuccess(w, http.StatusCreated, "Local created successfully", transformLocal(*local))
}

func (s *Server) handleLocalsUpdate(w http.ResponseWriter, r *http.Request) {
	var body localParams
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	params, ok := s.resolveLocalParams(w, r, body)
	if !ok {
		return
	}

	local, err := s.store.UpdateLocal(r.Context(), r.PathValue("id"), params)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Local not found")
		return
	}
	if err != nil {
		slog.Error("updating local", "err", err)
		respondError(w, http.StatusInternalServerError, "Failed to update local")
		return
	}
	respondSuccess(w, http.StatusOK, "Local updated successfully", transformLocal(*local))
}

func (s *Server) handleLocalsDelete(w http.ResponseWriter, r *http.Request) {
	err := s.store.DeleteLocal(r.Context(), r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Local not found")
		return
	}
	if err != nil {
		slog.Error("deleting local", "err", err)
		respondError(w, http.StatusInternalServerError, "Failed to delete local")
		return
	}
	respondSuccess(w, http.StatusOK, "Local deleted successfully", nil)
}

// resolveLocalParams validates the optional local_type_id reference and
// maps the request body onto store params. On failure it has already
// written the response.
func (s *Server) resolveLocalParams(w http.ResponseWriter, r *http.Request, body localParams) (store.LocalParams, bool) {
	params := store.LocalParams{
		Name:                body.Name,
		Description:         body.Description,
		Coordinates:         body.Coordinates,
		LocationSearchQuery: body.LocationSearchQuery,
		RadiusMeters:        body.Radius,
	}
	if body.LocalTypeID != "" {
		lt, err := s.store.LocalTypeByUUID(r.Context(), body.LocalTypeID)
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusBadRequest, "Invalid local type ID")
			return params, false
		}
		if err != nil {
			slog.Error("resolving local type", "err", err)
			respondError(w, http.StatusInternalServerError, "Failed to resolve local type")
			return params, false
		}
		params.LocalTypeID = lt.ID
	}
	return params, true
}

func transformLocalType(lt store.LocalType) map[string]any {
	return map[string]any{
		"id":                lt.UUID,
		"name":              lt.Name,
		"description":       lt.Description,
		"short_description": lt.ShortDescription,
		"icon":              lt.Icon,
	}
}

func transformLocalTypes(types []store.LocalType) []map[string]any {
	out := make([]map[string]any, 0, len(types))
	for _, lt := range types {
		out = append(out, transformLocalType(lt))
	}
	return out
}

func transformLocal(l store.Local) map[string]any {
	out := map[string]any{
		"id":                    l.UUID,
		"name":                  l.Name,
		"description":           l.Description,
		"co_ordinates":          l.Coordinates,
		"location_search_query": l.LocationSearchQuery,
		"radius":                l.RadiusMeters,
		"created_at":            l.CreatedAt,
	}
	if l.LocalType != nil {
		out["local_type"] = transformLocalType(*l.LocalType)
	}
	return out
}

func transformLocals(locals []store.Local) []map[string]any {
	out := make([]map[string]any, 0, len(locals))
	for _, l := range locals {
		out = append(out, transformLocal(l))
	}
	return out
}
