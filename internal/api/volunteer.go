package api

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/foodbridge/foodbridge/internal/lifecycle"
	"github.com/foodbridge/foodbridge/internal/metrics"
	"github.com/foodbridge/foodbridge/internal/store"
)

// VolunteerHandler handles invitations and delivery progress.
type VolunteerHandler struct {
	DB      *sql.DB
	Metrics *metrics.Metrics
}

type acceptRequest struct {
	DonationID int64 `json:"donation_id"`
}

type pickupStatusRequest struct {
	Status string `json:"status"`
}

// Invitations handles GET /api/volunteer/invitations.
func (h *VolunteerHandler) Invitations(w http.ResponseWriter, r *http.Request) {
	donations, err := store.ListDonationsByStatus(r.Context(), h.DB, lifecycle.StatusApproved)
	if err != nil {
		storeError(w, r, err, "failed to list invitations")
		return
	}
	jsonResponse(w, http.StatusOK, emptyIfNil(donations))
}

// Accept handles POST /api/volunteer/accept.
func (h *VolunteerHandler) Accept(w http.ResponseWriter, r *http.Request) {
	var req acceptRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.DonationID <= 0 {
		jsonError(w, http.StatusBadRequest, "donation_id required")
		return
	}

	claims := GetClaims(r.Context())
	p, err := store.AcceptInvitation(r.Context(), h.DB, claims.UserID, req.DonationID)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			h.Metrics.AssignmentConflict("accept")
		}
		storeError(w, r, err, "failed to accept invitation")
		return
	}

	h.Metrics.Transition(lifecycle.StatusAssigned)
	jsonResponse(w, http.StatusOK, p)
}

// MyPickups handles GET /api/volunteer/my-pickups.
func (h *VolunteerHandler) MyPickups(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	pickups, err := store.ListVolunteerPickups(r.Context(), h.DB, claims.UserID)
	if err != nil {
		storeError(w, r, err, "failed to list pickups")
		return
	}
	jsonResponse(w, http.StatusOK, emptyIfNil(pickups))
}

// UpdateStatus handles PUT /api/volunteer/pickups/{id}/status.
func (h *VolunteerHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid pickup id")
		return
	}

	var req pickupStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	target, err := lifecycle.Parse(req.Status)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	claims := GetClaims(r.Context())
	p, err := store.AdvancePickup(r.Context(), h.DB, claims.UserID, id, target)
	if err != nil {
		storeError(w, r, err, "failed to update pickup status")
		return
	}

	h.Metrics.Transition(p.Status)
	jsonResponse(w, http.StatusOK, p)
}
