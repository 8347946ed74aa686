package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/foodbridge/foodbridge/internal/geo"
	"github.com/foodbridge/foodbridge/internal/lifecycle"
	"github.com/foodbridge/foodbridge/internal/model"
)

const donationSelect = `
SELECT d.id, d.donor_id, d.ngo_id, d.food_name, d.food_type, d.quantity, d.requested_quantity,
       d.prepared_time, d.expiry_time, d.latitude, d.longitude, d.status, d.photo IS NOT NULL,
       d.created_at, d.updated_at,
       du.name, COALESCE(du.phone, ''), COALESCE(dn.address, ''),
       COALESCE(n.organization_name, ''), COALESCE(n.address, ''), COALESCE(nu.phone, '')
FROM donations d
JOIN donors dn ON dn.id = d.donor_id
JOIN users du ON du.id = dn.user_id
LEFT JOIN ngos n ON n.id = d.ngo_id
LEFT JOIN users nu ON nu.id = n.user_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDonation(s rowScanner, d *model.Donation) error {
	return s.Scan(&d.ID, &d.DonorID, &d.NGOID, &d.FoodName, &d.FoodType, &d.Quantity, &d.RequestedQuantity,
		&d.PreparedTime, &d.ExpiryTime, &d.Latitude, &d.Longitude, &d.Status, &d.HasPhoto,
		&d.CreatedAt, &d.UpdatedAt,
		&d.DonorName, &d.DonorPhone, &d.DonorAddress,
		&d.OrganizationName, &d.NGOAddress, &d.NGOPhone)
}

func scanDonations(rows *sql.Rows) ([]model.Donation, error) {
	var donations []model.Donation
	for rows.Next() {
		var d model.Donation
		if err := scanDonation(rows, &d); err != nil {
			return nil, fmt.Errorf("scanning donation: %w", err)
		}
		donations = append(donations, d)
	}
	return donations, rows.Err()
}

func listDonations(ctx context.Context, q querier, where string, args ...any) ([]model.Donation, error) {
	rows, err := q.QueryContext(ctx,
		donationSelect+` WHERE `+where+` ORDER BY d.created_at DESC, d.id DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("listing donations: %w", err)
	}
	defer rows.Close()
	return scanDonations(rows)
}

// parties identifies the users to notify about a donation.
type parties struct {
	donorUserID int64
	donorActive bool
	ngoUserID   int64 // zero until an NGO requests the donation
}

// loadDonation reads a donation and the user ids of its donor and NGO.
func loadDonation(ctx context.Context, q querier, id int64) (*model.Donation, parties, error) {
	d := &model.Donation{}
	err := scanDonation(q.QueryRowContext(ctx, donationSelect+` WHERE d.id = ?`, id), d)
	if err == sql.ErrNoRows {
		return nil, parties{}, fmt.Errorf("donation %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, parties{}, fmt.Errorf("getting donation: %w", err)
	}

	var p parties
	var ngoUser sql.NullInt64
	err = q.QueryRowContext(ctx,
		`SELECT dn.user_id, du.deleted_at IS NULL, n.user_id
		 FROM donations d
		 JOIN donors dn ON dn.id = d.donor_id
		 JOIN users du ON du.id = dn.user_id
		 LEFT JOIN ngos n ON n.id = d.ngo_id
		 WHERE d.id = ?`, id,
	).Scan(&p.donorUserID, &p.donorActive, &ngoUser)
	if err != nil {
		return nil, parties{}, fmt.Errorf("getting donation parties: %w", err)
	}
	p.ngoUserID = ngoUser.Int64
	return d, p, nil
}

// CreateDonation posts a new donation for the donor behind userID. New
// donations start PENDING.
func CreateDonation(ctx context.Context, db *sql.DB, userID int64, nd model.NewDonation) (*model.Donation, error) {
	if nd.FoodName == "" {
		return nil, fmt.Errorf("%w: food name required", ErrInvalid)
	}
	if !model.ValidFoodType(nd.FoodType) {
		return nil, fmt.Errorf("%w: food type must be VEG or NON_VEG", ErrInvalid)
	}
	if nd.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", ErrInvalid)
	}
	if err := checkLocation(nd.Latitude, nd.Longitude); err != nil {
		return nil, err
	}
	if nd.PreparedTime != nil && nd.ExpiryTime != nil && nd.ExpiryTime.Before(*nd.PreparedTime) {
		return nil, fmt.Errorf("%w: expiry time is before prepared time", ErrInvalid)
	}

	donor, err := donorByUser(ctx, db, userID)
	if err != nil {
		return nil, err
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO donations (donor_id, food_name, food_type, quantity, prepared_time, expiry_time, latitude, longitude, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		donor.ID, nd.FoodName, nd.FoodType, nd.Quantity, nd.PreparedTime, nd.ExpiryTime,
		nd.Latitude, nd.Longitude, lifecycle.StatusPending,
	)
	if err != nil {
		return nil, fmt.Errorf("creating donation: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting donation id: %w", err)
	}

	return GetDonation(ctx, db, id)
}

// GetDonation returns a donation by ID, or nil if it doesn't exist.
func GetDonation(ctx context.Context, db *sql.DB, id int64) (*model.Donation, error) {
	d := &model.Donation{}
	err := scanDonation(db.QueryRowContext(ctx, donationSelect+` WHERE d.id = ?`, id), d)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting donation: %w", err)
	}
	return d, nil
}

// ListDonorDonations returns the donations posted by the donor behind userID.
func ListDonorDonations(ctx context.Context, db *sql.DB, userID int64) ([]model.Donation, error) {
	donor, err := donorByUser(ctx, db, userID)
	if err != nil {
		return nil, err
	}
	return listDonations(ctx, db, `d.donor_id = ?`, donor.ID)
}

// ListNGODonations returns the donations requested by the NGO behind userID.
func ListNGODonations(ctx context.Context, db *sql.DB, userID int64) ([]model.Donation, error) {
	ngo, err := ngoByUser(ctx, db, userID)
	if err != nil {
		return nil, err
	}
	return listDonations(ctx, db, `d.ngo_id = ?`, ngo.ID)
}

// ListDonationsByStatus returns all donations in the given status.
func ListDonationsByStatus(ctx context.Context, db *sql.DB, status lifecycle.Status) ([]model.Donation, error) {
	return listDonations(ctx, db, `d.status = ?`, status)
}

// ListAllDonations returns every donation.
func ListAllDonations(ctx context.Context, db *sql.DB) ([]model.Donation, error) {
	return listDonations(ctx, db, `1=1`)
}

// ListNearbyDonations returns the PENDING donations of active donors within
// radiusKm of the NGO behind userID, closest first. If the NGO has no
// coordinates every such donation is returned, newest first, without a
// distance.
func ListNearbyDonations(ctx context.Context, db *sql.DB, userID int64, radiusKm float64) ([]model.NearbyDonation, error) {
	ngo, err := ngoByUser(ctx, db, userID)
	if err != nil {
		return nil, err
	}

	pending, err := listDonations(ctx, db, `d.status = ? AND du.deleted_at IS NULL`, lifecycle.StatusPending)
	if err != nil {
		return nil, err
	}

	var origin *geo.Point
	if ngo.Latitude != nil && ngo.Longitude != nil {
		origin = &geo.Point{Lat: *ngo.Latitude, Lon: *ngo.Longitude}
	}

	matches := geo.Nearby(origin, pending, radiusKm)
	out := make([]model.NearbyDonation, 0, len(matches))
	for _, m := range matches {
		nd := model.NearbyDonation{Donation: m.Item}
		if origin != nil {
			km := geo.Round1(m.DistanceKm)
			nd.DistanceKm = &km
		}
		out = append(out, nd)
	}
	return out, nil
}

// RequestDonation records that the NGO behind userID wants quantity of a
// PENDING donation. Only one NGO can win: the update is conditional on the
// status still being PENDING.
func RequestDonation(ctx context.Context, db *sql.DB, userID, donationID int64, quantity int) (*model.Donation, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", ErrInvalid)
	}

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
	if !p.donorActive {
		return nil, fmt.Errorf("donation %d: %w", donationID, ErrNotFound)
	}

	next, err := lifecycle.Fire(d.Status, lifecycle.EventRequest, "")
	if err != nil {
		return nil, fmt.Errorf("%w: donation not found or already requested: %w", ErrConflict, err)
	}
	if quantity > d.Quantity {
		return nil, fmt.Errorf("%w: requested %d but only %d available", ErrInvalid, quantity, d.Quantity)
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE donations SET status = ?, ngo_id = ?, requested_quantity = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND status = ?`,
		next, ngo.ID, quantity, donationID, lifecycle.StatusPending,
	)
	if err != nil {
		return nil, fmt.Errorf("requesting donation: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("%w: donation already requested", ErrConflict)
	}

	msg := fmt.Sprintf("%s requested %d of your donation: %s.", ngo.OrganizationName, quantity, d.FoodName)
	if err := notify(ctx, tx, p.donorUserID, model.NotifyDonationRequested, msg); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing request: %w", err)
	}

	slog.Info("donation requested", "donation", donationID, "ngo", ngo.ID, "quantity", quantity)
	return GetDonation(ctx, db, donationID)
}

// ApproveDonation lets the donor behind userID approve the NGO request on
// one of their own donations, opening it to volunteers.
func ApproveDonation(ctx context.Context, db *sql.DB, userID, donationID int64) (*model.Donation, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	donor, err := donorByUser(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	d, p, err := loadDonation(ctx, tx, donationID)
	if err != nil {
		return nil, err
	}
	if d.DonorID != donor.ID {
		return nil, fmt.Errorf("%w: donation belongs to another donor", ErrForbidden)
	}

	next, err := lifecycle.Fire(d.Status, lifecycle.EventApprove, "")
	if err != nil {
		return nil, fmt.Errorf("%w: donation not in requested state: %w", ErrConflict, err)
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE donations SET status = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND donor_id = ? AND status = ?`,
		next, donationID, donor.ID, lifecycle.StatusRequested,
	)
	if err != nil {
		return nil, fmt.Errorf("approving donation: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("%w: donation not in requested state", ErrConflict)
	}

	if p.ngoUserID != 0 {
		msg := fmt.Sprintf("Your request for %s was approved. Waiting for a volunteer.", d.FoodName)
		if err := notify(ctx, tx, p.ngoUserID, model.NotifyDonationApproved, msg); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing approval: %w", err)
	}

	slog.Info("donation approved", "donation", donationID, "donor", donor.ID)
	return GetDonation(ctx, db, donationID)
}

// SetDonationPhoto stores a processed photo and thumbnail on a donation
// owned by the donor behind userID.
func SetDonationPhoto(ctx context.Context, db *sql.DB, userID, donationID int64, photo, thumb []byte) error {
	donor, err := donorByUser(ctx, db, userID)
	if err != nil {
		return err
	}

	res, err := db.ExecContext(ctx,
		`UPDATE donations SET photo = ?, photo_thumb = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND donor_id = ?`,
		photo, thumb, donationID, donor.ID,
	)
	if err != nil {
		return fmt.Errorf("setting donation photo: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("donation %d: %w", donationID, ErrNotFound)
	}
	return nil
}

// GetDonationPhoto returns the stored photo (or its thumbnail) of a
// donation. It returns nil data if there is none.
func GetDonationPhoto(ctx context.Context, db *sql.DB, donationID int64, thumb bool) ([]byte, error) {
	col := "photo"
	if thumb {
		col = "photo_thumb"
	}

	var data []byte
	err := db.QueryRowContext(ctx,
		`SELECT `+col+` FROM donations WHERE id = ?`, donationID,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting donation photo: %w", err)
	}
	return data, nil
}
