package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/foodbridge/foodbridge/internal/geo"
	"github.com/foodbridge/foodbridge/internal/lifecycle"
	"github.com/foodbridge/foodbridge/internal/metrics"
	"github.com/foodbridge/foodbridge/internal/store"
)

// NGOHandler handles the NGO side of the workflow: finding donations,
// requesting them and assigning volunteers.
type NGOHandler struct {
	DB       *sql.DB
	Metrics  *metrics.Metrics
	RadiusKm float64
}

type requestDonationRequest struct {
	Quantity int `json:"quantity"`
}

type locationRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type assignRequest struct {
	DonationID  int64 `json:"donation_id"`
	VolunteerID int64 `json:"volunteer_id"`
}

// Nearby handles GET /api/ngo/nearby.
func (h *NGOHandler) Nearby(w http.ResponseWriter, r *http.Request) {
	radius := h.RadiusKm
	if radius <= 0 {
		radius = geo.DefaultRadiusKm
	}

	claims := GetClaims(r.Context())
	donations, err := store.ListNearbyDonations(r.Context(), h.DB, claims.UserID, radius)
	if err != nil {
		storeError(w, r, err, "failed to list nearby donations")
		return
	}
	jsonResponse(w, http.StatusOK, donations)
}

// Request handles PUT /api/ngo/donations/{id}/request.
func (h *NGOHandler) Request(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid donation id")
		return
	}

	var req requestDonationRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	claims := GetClaims(r.Context())
	d, err := store.RequestDonation(r.Context(), h.DB, claims.UserID, id, req.Quantity)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			h.Metrics.AssignmentConflict("request")
		}
		storeError(w, r, err, "failed to request donation")
		return
	}

	h.Metrics.Transition(lifecycle.StatusRequested)
	jsonResponse(w, http.StatusOK, d)
}

// MyRequests handles GET /api/ngo/my-requests.
func (h *NGOHandler) MyRequests(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	donations, err := store.ListNGODonations(r.Context(), h.DB, claims.UserID)
	if err != nil {
		storeError(w, r, err, "failed to list requests")
		return
	}
	jsonResponse(w, http.StatusOK, emptyIfNil(donations))
}

// SetLocation handles PUT /api/ngo/location.
func (h *NGOHandler) SetLocation(w http.ResponseWriter, r *http.Request) {
	var req locationRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	claims := GetClaims(r.Context())
	ngo, err := store.UpdateNGOLocation(r.Context(), h.DB, claims.UserID, req.Latitude, req.Longitude)
	if err != nil {
		storeError(w, r, err, "failed to update location")
		return
	}

	slog.Info("NGO location updated", "user", claims.UserID, "ngo", ngo.ID)
	jsonResponse(w, http.StatusOK, ngo)
}

// Volunteers handles GET /api/ngo-activity/volunteers.
func (h *NGOHandler) Volunteers(w http.ResponseWriter, r *http.Request) {
	vols, err := store.ListAvailableVolunteers(r.Context(), h.DB)
	if err != nil {
		storeError(w, r, err, "failed to list volunteers")
		return
	}
	jsonResponse(w, http.StatusOK, emptyIfNil(vols))
}

// Assign handles POST /api/ngo-activity/assign.
func (h *NGOHandler) Assign(w http.ResponseWriter, r *http.Request) {
	var req assignRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.DonationID <= 0 || req.VolunteerID <= 0 {
		jsonError(w, http.StatusBadRequest, "donation_id and volunteer_id required")
		return
	}

	claims := GetClaims(r.Context())
	p, err := store.AssignVolunteer(r.Context(), h.DB, claims.UserID, req.DonationID, req.VolunteerID)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			h.Metrics.AssignmentConflict("assign")
		}
		storeError(w, r, err, "failed to assign volunteer")
		return
	}

	h.Metrics.Transition(lifecycle.StatusAssigned)
	jsonResponse(w, http.StatusOK, p)
}
