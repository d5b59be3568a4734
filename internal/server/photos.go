package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/localhive/localhive/internal/places"
)

func (s *Server) handlePhotos(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.URL.Query().Get("fsq_place_id"))
	if id == "" {
		respondError(w, http.StatusBadRequest, "fsq_place_id parameter is required")
		return
	}
	s.servePlacePhotos(w, r, id, 0)
}

// handlePhotosByPath is the path-parameter variant, capped to a small
// preview limit.
func (s *Server) handlePhotosByPath(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("fsq_place_id"))
	if id == "" {
		respondError(w, http.StatusBadRequest, "fsq_place_id parameter is required")
		return
	}
	s.servePlacePhotos(w, r, id, 3)
}

func (s *Server) servePlacePhotos(w http.ResponseWriter, r *http.Request, id string, limit int) {
	photos, err := s.places.PlacePhotos(r.Context(), id, limit)
	if err != nil {
		switch {
		case errors.Is(err, places.ErrNotFound):
			respondError(w, http.StatusNotFound, "Place not found or no photos available")
		case errors.Is(err, places.ErrUnauthorized):
			respondError(w, http.StatusUnauthorized, "Authentication failed")
		case errors.Is(err, places.ErrRateLimited):
			respondError(w, http.StatusTooManyRequests, "Rate limit exceeded")
		default:
			slog.Error("fetching photos", "err", err)
			respondError(w, http.StatusInternalServerError, "Failed to fetch photos")
		}
		return
	}

	var list []json.RawMessage
	if err := json.Unmarshal(photos, &list); err != nil {
		// Not an array; pass the payload through untouched.
		respondSuccess(w, http.StatusOK, "Photos retrieved successfully", map[string]any{
			"fsq_place_id": id,
			"photos":       json.RawMessage(photos),
		})
		return
	}

	respondSuccess(w, http.StatusOK, "Photos retrieved successfully", map[string]any{
		"fsq_place_id": id,
		"total_photos": len(list),
		"photos":       json.RawMessage(photos),
	})
}
