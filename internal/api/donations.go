package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/foodbridge/foodbridge/internal/imaging"
	"github.com/foodbridge/foodbridge/internal/lifecycle"
	"github.com/foodbridge/foodbridge/internal/metrics"
	"github.com/foodbridge/foodbridge/internal/model"
	"github.com/foodbridge/foodbridge/internal/store"
)

// DonationsHandler handles the donor side of the workflow.
type DonationsHandler struct {
	DB      *sql.DB
	Metrics *metrics.Metrics
}

type createDonationRequest struct {
	FoodName     string     `json:"food_name"`
	FoodType     string     `json:"food_type"`
	Quantity     int        `json:"quantity"`
	PreparedTime *time.Time `json:"prepared_time"`
	ExpiryTime   *time.Time `json:"expiry_time"`
	Latitude     *float64   `json:"latitude"`
	Longitude    *float64   `json:"longitude"`
}

// Create handles POST /api/donations.
func (h *DonationsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createDonationRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	claims := GetClaims(r.Context())
	d, err := store.CreateDonation(r.Context(), h.DB, claims.UserID, model.NewDonation{
		FoodName:     req.FoodName,
		FoodType:     req.FoodType,
		Quantity:     req.Quantity,
		PreparedTime: req.PreparedTime,
		ExpiryTime:   req.ExpiryTime,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
	})
	if err != nil {
		storeError(w, r, err, "failed to create donation")
		return
	}

	h.Metrics.Transition(d.Status)
	slog.Info("donation posted", "user", claims.UserID, "donation", d.ID, "quantity", d.Quantity)
	jsonResponse(w, http.StatusCreated, d)
}

// Mine handles GET /api/donations/my.
func (h *DonationsHandler) Mine(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	donations, err := store.ListDonorDonations(r.Context(), h.DB, claims.UserID)
	if err != nil {
		storeError(w, r, err, "failed to list donations")
		return
	}
	jsonResponse(w, http.StatusOK, emptyIfNil(donations))
}

// Approve handles PUT /api/donations/{id}/approve.
func (h *DonationsHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid donation id")
		return
	}

	claims := GetClaims(r.Context())
	d, err := store.ApproveDonation(r.Context(), h.DB, claims.UserID, id)
	if err != nil {
		storeError(w, r, err, "failed to approve donation")
		return
	}

	h.Metrics.Transition(lifecycle.StatusApproved)
	jsonResponse(w, http.StatusOK, d)
}

// UploadPhoto handles PUT /api/donations/{id}/photo.
func (h *DonationsHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid donation id")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUploadBytes+(1<<20))
	file, _, err := r.FormFile("photo")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "multipart field 'photo' required")
		return
	}
	defer file.Close()

	photo, err := imaging.ProcessPhoto(file)
	switch {
	case errors.Is(err, imaging.ErrTooLarge):
		jsonError(w, http.StatusRequestEntityTooLarge, err.Error())
		return
	case err != nil:
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	claims := GetClaims(r.Context())
	if err := store.SetDonationPhoto(r.Context(), h.DB, claims.UserID, id, photo.Full, photo.Thumb); err != nil {
		storeError(w, r, err, "failed to store photo")
		return
	}

	slog.Info("donation photo uploaded", "user", claims.UserID, "donation", id, "bytes", len(photo.Full))
	jsonResponse(w, http.StatusOK, map[string]string{"message": "photo uploaded"})
}

// Photo handles GET /api/donations/{id}/photo.
func (h *DonationsHandler) Photo(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid donation id")
		return
	}

	data, err := store.GetDonationPhoto(r.Context(), h.DB, id, r.URL.Query().Get("size") == "thumb")
	if err != nil {
		storeError(w, r, err, "failed to get photo")
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "no photo")
		return
	}

	w.Header().Set("Content-Type", imaging.MIME)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.Write(data)
}
