package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/localhive/localhive/internal/auth"
	"github.com/localhive/localhive/internal/store"
)

// onboardingRequest carries the first local a new user registers.
type onboardingRequest struct {
	Data struct {
		LocalTypeID         string `json:"local_type_id"`
		LocalName           string `json:"local_name"`
		Description         string `json:"description"`
		Coordinates         string `json:"co_ordinates"`
		LocationSearchQuery string `json:"location_search_query"`
		Radius              int    `json:"radius"`
	} `json:"data"`
}

// handleOnboardingCreateLocal creates the user's first local and flips
// the onboarding flags on the user and customer rows.
func (s *Server) handleOnboardingCreateLocal(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil || user.CustomerID == 0 {
		respondError(w, http.StatusBadRequest, "User not found")
		return
	}

	var req onboardingRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Data.LocalName) == "" {
		respondError(w, http.StatusBadRequest, "local_name is required")
		return
	}

	localType, err := s.store.LocalTypeByUUID(r.Context(), req.Data.LocalTypeID)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusBadRequest, "Local type not found")
		return
	}
	if err != nil {
		slog.Error("resolving local type", "err", err)
		respondError(w, http.StatusInternalServerError, "Failed to create local")
		return
	}

	local, err := s.store.CreateLocal(r.Context(), store.LocalParams{
		CustomerID:          user.CustomerID,
		LocalTypeID:         localType.ID,
		Name:                req.Data.LocalName,
		Description:         req.Data.Description,
		Coordinates:         req.Data.Coordinates,
		LocationSearchQuery: req.Data.LocationSearchQuery,
		RadiusMeters:        req.Data.Radius,
	})
	if err != nil {
		slog.Error("creating local", "err", err)
		respondError(w, http.StatusBadRequest, "Failed to create local")
		return
	}

	if err := s.store.MarkUserOnboarded(r.Context(), user.ID); err != nil {
		slog.Error("marking user onboarded", "err", err)
	}

	respondSuccess(w, http.StatusOK, "Local created successfully", transformLocal(*local))
}
