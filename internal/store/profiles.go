package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/foodbridge/foodbridge/internal/model"
)

func donorByUser(ctx context.Context, q querier, userID int64) (*model.Donor, error) {
	d := &model.Donor{}
	var address sql.NullString
	err := q.QueryRowContext(ctx,
		`SELECT dn.id, dn.user_id, dn.address
		 FROM donors dn JOIN users u ON u.id = dn.user_id
		 WHERE dn.user_id = ? AND u.deleted_at IS NULL`, userID,
	).Scan(&d.ID, &d.UserID, &address)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("donor: %w", ErrProfileMissing)
	}
	if err != nil {
		return nil, fmt.Errorf("getting donor profile: %w", err)
	}
	d.Address = address.String
	return d, nil
}

func ngoByUser(ctx context.Context, q querier, userID int64) (*model.NGO, error) {
	n := &model.NGO{}
	var address sql.NullString
	err := q.QueryRowContext(ctx,
		`SELECT n.id, n.user_id, n.organization_name, n.address, n.latitude, n.longitude
		 FROM ngos n JOIN users u ON u.id = n.user_id
		 WHERE n.user_id = ? AND u.deleted_at IS NULL`, userID,
	).Scan(&n.ID, &n.UserID, &n.OrganizationName, &address, &n.Latitude, &n.Longitude)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("NGO: %w", ErrProfileMissing)
	}
	if err != nil {
		return nil, fmt.Errorf("getting NGO profile: %w", err)
	}
	n.Address = address.String
	return n, nil
}

func volunteerByUser(ctx context.Context, q querier, userID int64) (*model.Volunteer, error) {
	v := &model.Volunteer{}
	err := q.QueryRowContext(ctx,
		`SELECT v.id, v.user_id, v.availability, u.name, COALESCE(u.phone, ''), u.email
		 FROM volunteers v JOIN users u ON u.id = v.user_id
		 WHERE v.user_id = ? AND u.deleted_at IS NULL`, userID,
	).Scan(&v.ID, &v.UserID, &v.Availability, &v.Name, &v.Phone, &v.Email)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("volunteer: %w", ErrProfileMissing)
	}
	if err != nil {
		return nil, fmt.Errorf("getting volunteer profile: %w", err)
	}
	return v, nil
}

// GetDonorByUser returns the donor profile of a user.
func GetDonorByUser(ctx context.Context, db *sql.DB, userID int64) (*model.Donor, error) {
	return donorByUser(ctx, db, userID)
}

// GetNGOByUser returns the NGO profile of a user.
func GetNGOByUser(ctx context.Context, db *sql.DB, userID int64) (*model.NGO, error) {
	return ngoByUser(ctx, db, userID)
}

// GetVolunteerByUser returns the volunteer profile of a user.
func GetVolunteerByUser(ctx context.Context, db *sql.DB, userID int64) (*model.Volunteer, error) {
	return volunteerByUser(ctx, db, userID)
}

// GetVolunteer returns a volunteer profile by volunteer ID.
func GetVolunteer(ctx context.Context, db *sql.DB, id int64) (*model.Volunteer, error) {
	v := &model.Volunteer{}
	err := db.QueryRowContext(ctx,
		`SELECT v.id, v.user_id, v.availability, u.name, COALESCE(u.phone, ''), u.email
		 FROM volunteers v JOIN users u ON u.id = v.user_id
		 WHERE v.id = ?`, id,
	).Scan(&v.ID, &v.UserID, &v.Availability, &v.Name, &v.Phone, &v.Email)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting volunteer: %w", err)
	}
	return v, nil
}

// checkLocation accepts either no coordinates or a complete, in-range pair.
func checkLocation(lat, lon *float64) error {
	if (lat == nil) != (lon == nil) {
		return fmt.Errorf("%w: latitude and longitude must be set together", ErrInvalid)
	}
	if lat != nil && (*lat < -90 || *lat > 90 || *lon < -180 || *lon > 180) {
		return fmt.Errorf("%w: coordinates out of range", ErrInvalid)
	}
	return nil
}

// UpdateNGOLocation sets or clears the coordinates of an NGO.
func UpdateNGOLocation(ctx context.Context, db *sql.DB, userID int64, lat, lon *float64) (*model.NGO, error) {
	if err := checkLocation(lat, lon); err != nil {
		return nil, err
	}

	res, err := db.ExecContext(ctx,
		`UPDATE ngos SET latitude = ?, longitude = ? WHERE user_id = ?`, lat, lon, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("updating NGO location: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("NGO: %w", ErrProfileMissing)
	}
	return ngoByUser(ctx, db, userID)
}

// ListAvailableVolunteers returns active volunteers not currently on a delivery.
func ListAvailableVolunteers(ctx context.Context, db *sql.DB) ([]model.Volunteer, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT v.id, v.user_id, v.availability, u.name, COALESCE(u.phone, ''), u.email
		 FROM volunteers v JOIN users u ON u.id = v.user_id
		 WHERE v.availability = ? AND u.deleted_at IS NULL
		 ORDER BY u.name`, model.AvailabilityAvailable,
	)
	if err != nil {
		return nil, fmt.Errorf("listing volunteers: %w", err)
	}
	defer rows.Close()

	var vols []model.Volunteer
	for rows.Next() {
		var v model.Volunteer
		if err := rows.Scan(&v.ID, &v.UserID, &v.Availability, &v.Name, &v.Phone, &v.Email); err != nil {
			return nil, fmt.Errorf("scanning volunteer: %w", err)
		}
		vols = append(vols, v)
	}
	return vols, rows.Err()
}
