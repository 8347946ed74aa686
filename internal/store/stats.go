package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/foodbridge/foodbridge/internal/model"
)

// GetStats returns system-wide counts for the admin overview.
func GetStats(ctx context.Context, db *sql.DB) (*model.Stats, error) {
	s := &model.Stats{}
	err := db.QueryRowContext(ctx,
		`SELECT
		     (SELECT COUNT(*) FROM users WHERE deleted_at IS NULL),
		     (SELECT COUNT(*) FROM donors dn JOIN users u ON u.id = dn.user_id WHERE u.deleted_at IS NULL),
		     (SELECT COUNT(*) FROM ngos n JOIN users u ON u.id = n.user_id WHERE u.deleted_at IS NULL),
		     (SELECT COUNT(*) FROM volunteers v JOIN users u ON u.id = v.user_id WHERE u.deleted_at IS NULL),
		     (SELECT COUNT(*) FROM donations),
		     (SELECT COUNT(*) FROM donations WHERE status = 'DELIVERED'),
		     (SELECT COUNT(*) FROM pickups WHERE status != 'DELIVERED')`,
	).Scan(&s.TotalUsers, &s.Donors, &s.NGOs, &s.Volunteers,
		&s.TotalDonations, &s.DeliveredDonations, &s.ActivePickups)
	if err != nil {
		return nil, fmt.Errorf("getting stats: %w", err)
	}
	return s, nil
}
