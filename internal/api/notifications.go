package api

import (
	"database/sql"
	"net/http"

	"github.com/foodbridge/foodbridge/internal/store"
)

// NotificationsHandler serves a user's own notifications.
type NotificationsHandler struct {
	DB *sql.DB
}

// List handles GET /api/notifications.
func (h *NotificationsHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	notes, err := store.ListNotifications(r.Context(), h.DB, claims.UserID)
	if err != nil {
		storeError(w, r, err, "failed to list notifications")
		return
	}
	jsonResponse(w, http.StatusOK, emptyIfNil(notes))
}

// UnreadCount handles GET /api/notifications/unread-count.
func (h *NotificationsHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	n, err := store.CountUnread(r.Context(), h.DB, claims.UserID)
	if err != nil {
		storeError(w, r, err, "failed to count notifications")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]int{"unread": n})
}

// MarkRead handles PUT /api/notifications/{id}/read.
func (h *NotificationsHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid notification id")
		return
	}

	claims := GetClaims(r.Context())
	if err := store.MarkNotificationRead(r.Context(), h.DB, claims.UserID, id); err != nil {
		storeError(w, r, err, "failed to mark notification read")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "notification marked as read"})
}

// MarkAllRead handles PUT /api/notifications/read-all.
func (h *NotificationsHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	n, err := store.MarkAllNotificationsRead(r.Context(), h.DB, claims.UserID)
	if err != nil {
		storeError(w, r, err, "failed to mark notifications read")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]int64{"updated": n})
}

// Delete handles DELETE /api/notifications/{id}.
func (h *NotificationsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid notification id")
		return
	}

	claims := GetClaims(r.Context())
	if err := store.DeleteNotification(r.Context(), h.DB, claims.UserID, id); err != nil {
		storeError(w, r, err, "failed to delete notification")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "notification deleted"})
}
