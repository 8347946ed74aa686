package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/foodbridge/foodbridge/internal/lifecycle"
	"github.com/foodbridge/foodbridge/internal/model"
)

const pickupSelect = `
SELECT p.id, p.donation_id, p.volunteer_id, p.status, p.pickup_time, p.delivery_time,
       d.food_name, d.food_type, d.quantity,
       du.name, COALESCE(du.phone, ''), COALESCE(dn.address, ''),
       COALESCE(n.organization_name, ''), COALESCE(n.address, ''), COALESCE(nu.phone, '')
FROM pickups p
JOIN donations d ON d.id = p.donation_id
JOIN donors dn ON dn.id = d.donor_id
JOIN users du ON du.id = dn.user_id
LEFT JOIN ngos n ON n.id = d.ngo_id
LEFT JOIN users nu ON nu.id = n.user_id`

func scanPickup(s rowScanner, p *model.Pickup) error {
	return s.Scan(&p.ID, &p.DonationID, &p.VolunteerID, &p.Status, &p.PickupTime, &p.DeliveryTime,
		&p.FoodName, &p.FoodType, &p.Quantity,
		&p.DonorName, &p.DonorPhone, &p.DonorAddress,
		&p.OrganizationName, &p.NGOAddress, &p.NGOPhone)
}

// GetPickup returns a pickup by ID, or nil if it doesn't exist.
func GetPickup(ctx context.Context, db *sql.DB, id int64) (*model.Pickup, error) {
	p := &model.Pickup{}
	err := scanPickup(db.QueryRowContext(ctx, pickupSelect+` WHERE p.id = ?`, id), p)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting pickup: %w", err)
	}
	return p, nil
}

// ListVolunteerPickups returns the pickups of the volunteer behind userID,
// newest first.
func ListVolunteerPickups(ctx context.Context, db *sql.DB, userID int64) ([]model.Pickup, error) {
	vol, err := volunteerByUser(ctx, db, userID)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx,
		pickupSelect+` WHERE p.volunteer_id = ? ORDER BY p.pickup_time DESC, p.id DESC`, vol.ID)
	if err != nil {
		return nil, fmt.Errorf("listing pickups: %w", err)
	}
	defer rows.Close()

	var pickups []model.Pickup
	for rows.Next() {
		var p model.Pickup
		if err := scanPickup(rows, &p); err != nil {
			return nil, fmt.Errorf("scanning pickup: %w", err)
		}
		pickups = append(pickups, p)
	}
	return pickups, rows.Err()
}

// AdvancePickup moves a pickup owned by the volunteer behind userID one
// step forward to target, keeping the donation in lockstep. Reaching
// DELIVERED stamps the delivery time and frees the volunteer.
func AdvancePickup(ctx context.Context, db *sql.DB, userID, pickupID int64, target lifecycle.Status) (*model.Pickup, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	vol, err := volunteerByUser(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	var donationID, owner int64
	var current lifecycle.Status
	err = tx.QueryRowContext(ctx,
		`SELECT donation_id, volunteer_id, status FROM pickups WHERE id = ?`, pickupID,
	).Scan(&donationID, &owner, &current)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("pickup %d: %w", pickupID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting pickup: %w", err)
	}
	if owner != vol.ID {
		return nil, fmt.Errorf("%w: pickup belongs to another volunteer", ErrForbidden)
	}

	next, err := lifecycle.Fire(current, lifecycle.EventAdvance, target)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConflict, err)
	}

	var deliveredAt *time.Time
	if next.Terminal() {
		now := time.Now().UTC()
		deliveredAt = &now
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE pickups SET status = ?, delivery_time = COALESCE(?, delivery_time)
		 WHERE id = ? AND status = ?`,
		next, deliveredAt, pickupID, current,
	)
	if err != nil {
		return nil, fmt.Errorf("updating pickup status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("%w: pickup status changed concurrently", ErrConflict)
	}

	res, err = tx.ExecContext(ctx,
		`UPDATE donations SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND status = ?`,
		next, donationID, current,
	)
	if err != nil {
		return nil, fmt.Errorf("updating donation status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("donation %d out of step with pickup %d", donationID, pickupID)
	}

	if next.Terminal() {
		// Free the volunteer unless another pickup is still open.
		_, err = tx.ExecContext(ctx,
			`UPDATE volunteers SET availability = ?
			 WHERE id = ? AND NOT EXISTS (
			     SELECT 1 FROM pickups WHERE volunteer_id = ? AND status != ?)`,
			model.AvailabilityAvailable, vol.ID, vol.ID, lifecycle.StatusDelivered,
		)
		if err != nil {
			return nil, fmt.Errorf("freeing volunteer: %w", err)
		}
	}

	d, p, err := loadDonation(ctx, tx, donationID)
	if err != nil {
		return nil, err
	}
	msg := fmt.Sprintf("Update on your donation %s: volunteer status is now %s.", d.FoodName, next)
	for _, uid := range []int64{p.donorUserID, p.ngoUserID} {
		if uid == 0 {
			continue
		}
		if err := notify(ctx, tx, uid, model.NotifyStatusUpdate, msg); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing pickup update: %w", err)
	}

	slog.Info("pickup advanced", "pickup", pickupID, "donation", donationID, "volunteer", vol.ID, "from", current, "to", next)
	return GetPickup(ctx, db, pickupID)
}
