package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/foodbridge/foodbridge/internal/store"
)

// AdminHandler handles the admin overview and user management.
type AdminHandler struct {
	DB *sql.DB
}

// Stats handles GET /api/admin/stats.
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := store.GetStats(r.Context(), h.DB)
	if err != nil {
		storeError(w, r, err, "failed to get stats")
		return
	}
	jsonResponse(w, http.StatusOK, stats)
}

// Users handles GET /api/admin/users.
func (h *AdminHandler) Users(w http.ResponseWriter, r *http.Request) {
	users, err := store.ListUsers(r.Context(), h.DB)
	if err != nil {
		storeError(w, r, err, "failed to list users")
		return
	}
	jsonResponse(w, http.StatusOK, emptyIfNil(users))
}

// DeleteUser handles DELETE /api/admin/users/{id}.
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	claims := GetClaims(r.Context())
	if id == claims.UserID {
		jsonError(w, http.StatusBadRequest, "cannot delete yourself")
		return
	}

	if err := store.DeleteUser(r.Context(), h.DB, id); err != nil {
		storeError(w, r, err, "failed to delete user")
		return
	}

	slog.Info("user deleted", "user", claims.UserID, "deleted_user", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "user deleted"})
}

// Donations handles GET /api/admin/donations.
func (h *AdminHandler) Donations(w http.ResponseWriter, r *http.Request) {
	donations, err := store.ListAllDonations(r.Context(), h.DB)
	if err != nil {
		storeError(w, r, err, "failed to list donations")
		return
	}
	jsonResponse(w, http.StatusOK, emptyIfNil(donations))
}
