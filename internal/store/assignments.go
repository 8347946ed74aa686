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

// AcceptInvitation lets the volunteer behind userID take an APPROVED
// donation from the invitations list.
func AcceptInvitation(ctx context.Context, db *sql.DB, userID, donationID int64) (*model.Pickup, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	vol, err := volunteerByUser(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	d, p, err := loadDonation(ctx, tx, donationID)
	if err != nil {
		return nil, err
	}

	pickupID, err := assign(ctx, tx, d, vol.ID)
	if err != nil {
		return nil, err
	}

	notes := []struct {
		userID int64
		msg    string
	}{
		{p.donorUserID, "A volunteer has accepted your donation pickup request."},
		{p.ngoUserID, fmt.Sprintf("A volunteer has accepted the pickup for donation: %s.", d.FoodName)},
	}
	for _, n := range notes {
		if n.userID == 0 {
			continue
		}
		if err := notify(ctx, tx, n.userID, model.NotifyVolunteerAccepted, n.msg); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing acceptance: %w", err)
	}

	slog.Info("invitation accepted", "donation", donationID, "volunteer", vol.ID, "pickup", pickupID)
	return GetPickup(ctx, db, pickupID)
}

// AssignVolunteer lets the NGO behind userID assign a specific volunteer to
// a donation it requested and the donor approved.
func AssignVolunteer(ctx context.Context, db *sql.DB, userID, donationID, volunteerID int64) (*model.Pickup, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	ngo, err := ngoByUser(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	d, p, err := loadDonation(ctx, tx, donationID)
	if err != nil {
		return nil, err
	}
	if d.NGOID == nil || *d.NGOID != ngo.ID {
		return nil, fmt.Errorf("%w: donation was not requested by this NGO", ErrForbidden)
	}

	var volUserID int64
	var volName string
	err = tx.QueryRowContext(ctx,
		`SELECT v.user_id, u.name FROM volunteers v JOIN users u ON u.id = v.user_id
		 WHERE v.id = ? AND u.deleted_at IS NULL`, volunteerID,
	).Scan(&volUserID, &volName)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("volunteer %d: %w", volunteerID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting volunteer: %w", err)
	}

	pickupID, err := assign(ctx, tx, d, volunteerID)
	if err != nil {
		return nil, err
	}

	notes := []struct {
		userID int64
		msg    string
	}{
		{volUserID, fmt.Sprintf("%s assigned you to deliver %s.", ngo.OrganizationName, d.FoodName)},
		{p.donorUserID, fmt.Sprintf("A volunteer has been assigned to pick up %s.", d.FoodName)},
		{p.ngoUserID, fmt.Sprintf("%s will deliver %s.", volName, d.FoodName)},
	}
	for _, n := range notes {
		if err := notify(ctx, tx, n.userID, model.NotifyVolunteerAssigned, n.msg); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing assignment: %w", err)
	}

	slog.Info("volunteer assigned", "donation", donationID, "ngo", ngo.ID, "volunteer", volunteerID, "pickup", pickupID)
	return GetPickup(ctx, db, pickupID)
}

// assign moves an APPROVED donation to ASSIGNED, marks the volunteer BUSY
// and creates the pickup. Both updates are conditional, so a concurrent
// second assignment affects no rows and fails with ErrConflict.
func assign(ctx context.Context, tx *sql.Tx, d *model.Donation, volunteerID int64) (int64, error) {
	next, err := lifecycle.Fire(d.Status, lifecycle.EventAssign, "")
	if err != nil {
		return 0, fmt.Errorf("%w: donation not available or already assigned: %w", ErrConflict, err)
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE donations SET status = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND status = ?`,
		next, d.ID, lifecycle.StatusApproved,
	)
	if err != nil {
		return 0, fmt.Errorf("assigning donation: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return 0, fmt.Errorf("%w: donation already assigned", ErrConflict)
	}

	res, err = tx.ExecContext(ctx,
		`UPDATE volunteers SET availability = ? WHERE id = ? AND availability = ?`,
		model.AvailabilityBusy, volunteerID, model.AvailabilityAvailable,
	)
	if err != nil {
		return 0, fmt.Errorf("marking volunteer busy: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return 0, fmt.Errorf("%w: volunteer is busy with another pickup", ErrConflict)
	}

	res, err = tx.ExecContext(ctx,
		`INSERT INTO pickups (donation_id, volunteer_id, status, pickup_time) VALUES (?, ?, ?, ?)`,
		d.ID, volunteerID, next, time.Now().UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("creating pickup: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting pickup id: %w", err)
	}
	return id, nil
}
