package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/foodbridge/foodbridge/internal/metrics"
	"github.com/foodbridge/foodbridge/internal/model"
)

// Options configures the API router.
type Options struct {
	DB             *sql.DB
	JWTSecret      string
	TokenTTL       time.Duration
	NearbyRadiusKm float64
	// Metrics is created if nil.
	Metrics *metrics.Metrics
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(opts Options) http.Handler {
	db := opts.DB
	m := opts.Metrics
	if m == nil {
		m = metrics.New()
	}

	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: opts.JWTSecret, TokenTTL: opts.TokenTTL}
	donationsHandler := &DonationsHandler{DB: db, Metrics: m}
	ngoHandler := &NGOHandler{DB: db, Metrics: m, RadiusKm: opts.NearbyRadiusKm}
	volunteerHandler := &VolunteerHandler{DB: db, Metrics: m}
	notificationsHandler := &NotificationsHandler{DB: db}
	adminHandler := &AdminHandler{DB: db}

	authMW := AuthMiddleware(opts.JWTSecret, db)
	only := func(role string, h http.HandlerFunc) http.Handler {
		return authMW(RequireRole(role)(h))
	}
	anyUser := func(h http.HandlerFunc) http.Handler {
		return authMW(h)
	}

	// Public.
	mux.HandleFunc("GET /healthz", health(db))
	mux.Handle("GET /metrics", m.Handler())
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// Any authenticated user.
	mux.Handle("POST /api/auth/logout", anyUser(authHandler.Logout))
	mux.Handle("GET /api/auth/me", anyUser(authHandler.Me))
	mux.Handle("PUT /api/auth/password", anyUser(authHandler.ChangePassword))
	mux.Handle("GET /api/donations/{id}/photo", anyUser(donationsHandler.Photo))

	// Donors.
	mux.Handle("POST /api/donations", only(model.RoleDonor, donationsHandler.Create))
	mux.Handle("GET /api/donations/my", only(model.RoleDonor, donationsHandler.Mine))
	mux.Handle("PUT /api/donations/{id}/approve", only(model.RoleDonor, donationsHandler.Approve))
	mux.Handle("PUT /api/donations/{id}/photo", only(model.RoleDonor, donationsHandler.UploadPhoto))

	// NGOs.
	mux.Handle("GET /api/ngo/nearby", only(model.RoleNGO, ngoHandler.Nearby))
	mux.Handle("PUT /api/ngo/donations/{id}/request", only(model.RoleNGO, ngoHandler.Request))
	mux.Handle("GET /api/ngo/my-requests", only(model.RoleNGO, ngoHandler.MyRequests))
	mux.Handle("PUT /api/ngo/location", only(model.RoleNGO, ngoHandler.SetLocation))
	mux.Handle("GET /api/ngo-activity/volunteers", only(model.RoleNGO, ngoHandler.Volunteers))
	mux.Handle("POST /api/ngo-activity/assign", only(model.RoleNGO, ngoHandler.Assign))

	// Volunteers.
	mux.Handle("GET /api/volunteer/invitations", only(model.RoleVolunteer, volunteerHandler.Invitations))
	mux.Handle("POST /api/volunteer/accept", only(model.RoleVolunteer, volunteerHandler.Accept))
	mux.Handle("GET /api/volunteer/my-pickups", only(model.RoleVolunteer, volunteerHandler.MyPickups))
	mux.Handle("PUT /api/volunteer/pickups/{id}/status", only(model.RoleVolunteer, volunteerHandler.UpdateStatus))

	// Notifications (own only).
	mux.Handle("GET /api/notifications", anyUser(notificationsHandler.List))
	mux.Handle("GET /api/notifications/unread-count", anyUser(notificationsHandler.UnreadCount))
	mux.Handle("PUT /api/notifications/read-all", anyUser(notificationsHandler.MarkAllRead))
	mux.Handle("PUT /api/notifications/{id}/read", anyUser(notificationsHandler.MarkRead))
	mux.Handle("DELETE /api/notifications/{id}", anyUser(notificationsHandler.Delete))

	// Admin.
	mux.Handle("GET /api/admin/stats", only(model.RoleAdmin, adminHandler.Stats))
	mux.Handle("GET /api/admin/users", only(model.RoleAdmin, adminHandler.Users))
	mux.Handle("DELETE /api/admin/users/{id}", only(model.RoleAdmin, adminHandler.DeleteUser))
	mux.Handle("GET /api/admin/donations", only(model.RoleAdmin, adminHandler.Donations))

	// The request id must wrap logging so the mux sets the route pattern
	// on the same request the logger reads.
	return RequestIDMiddleware(LoggingMiddleware(m)(mux))
}

func health(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			slog.Error("health check failed", "error", err)
			jsonError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
