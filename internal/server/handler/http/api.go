package http

import (
	"encoding/json"
	"net/http"

	"github.com/atinyakov/GolfClubAuctions/internal/middleware"
	"github.com/atinyakov/GolfClubAuctions/internal/models"
	"github.com/go-chi/chi/v5"
)

// APIHandler serves the JSON listing API.
type APIHandler struct {
	Filter   FilterService
	Listings ListingService
}

// ListingsResponse wraps a listing collection.
type ListingsResponse struct {
	Count    int              `json:"count"`
	Listings []models.Listing `json:"listings"`
}

// List handles GET /api/listings?club_type=&price=.
func (h *APIHandler) List(w http.ResponseWriter, r *http.Request) {
	listings, err := h.Filter.Apply(r.Context(), criteriaFromQuery(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ListingsResponse{Count: len(listings), Listings: listings})
}

// Mine handles GET /api/listings/mine.
func (h *APIHandler) Mine(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFrom(r)
	if id == nil {
		writeError(w, models.ErrUnauthenticated)
		return
	}
	listings, err := h.Listings.ListByOwner(r.Context(), id.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ListingsResponse{Count: len(listings), Listings: listings})
}

// Create handles POST /api/listings.
func (h *APIHandler) Create(w http.ResponseWriter, r *http.Request) {
	var l models.Listing
	if err := json.NewDecoder(r.Body).Decode(&l); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request"})
		return
	}
	created, err := h.Listings.Create(r.Context(), l, middleware.IdentityFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// Update handles PATCH /api/listings/{id}.
func (h *APIHandler) Update(w http.ResponseWriter, r *http.Request) {
	var fields models.ListingFields
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request"})
		return
	}
	updated, err := h.Listings.Update(r.Context(), chi.URLParam(r, "id"), fields, middleware.IdentityFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/listings/{id}.
func (h *APIHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Listings.DeleteOne(r.Context(), chi.URLParam(r, "id"), middleware.IdentityFrom(r)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
