package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/atinyakov/MapKeeper/internal/middleware"
	"github.com/atinyakov/MapKeeper/internal/models"
	"github.com/atinyakov/MapKeeper/internal/repository"
	"github.com/go-chi/chi/v5"
)

// LocationService defines the locations table operations required by LocationHandler.
type LocationService interface {
	List(ctx context.Context, userID string) ([]models.Location, error)
	Create(ctx context.Context, userID string, loc models.Location) (models.Location, error)
	Update(ctx context.Context, userID string, id int64, patch models.LocationPatch) (models.Location, error)
	Delete(ctx context.Context, userID string, id int64) error
}

// LocationHandler serves /api/locations for the authenticated user.
type LocationHandler struct {
	LocationService LocationService
}

// List handles GET /api/locations.
func (h *LocationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())

	locations, err := h.LocationService.List(r.Context(), userID)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, locations)
}

// Create handles POST /api/locations and returns the inserted row.
func (h *LocationHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())

	var loc models.Location
	if err := decodeBody(w, r, &loc); err != nil {
		writeDecodeError(w, err, "invalid body")
		return
	}

	out, err := h.LocationService.Create(r.Context(), userID, loc)
	if err != nil {
		writeLocationError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, out)
}

// Update handles PATCH /api/locations/{id}.
func (h *LocationHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())

	id, ok := locationID(w, r)
	if !ok {
		return
	}

	var patch models.LocationPatch
	if err := decodeBody(w, r, &patch); err != nil {
		writeDecodeError(w, err, "invalid body")
		return
	}
	if patch.Empty() {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	out, err := h.LocationService.Update(r.Context(), userID, id, patch)
	if err != nil {
		writeLocationError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, out)
}

// Delete handles DELETE /api/locations/{id}.
func (h *LocationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())

	id, ok := locationID(w, r)
	if !ok {
		return
	}

	if err := h.LocationService.Delete(r.Context(), userID, id); err != nil {
		writeLocationError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func locationID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func writeLocationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidPosition):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, repository.ErrNotFound):
		http.Error(w, "location not found", http.StatusNotFound)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
