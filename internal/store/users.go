package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/foodbridge/foodbridge/internal/lifecycle"
	"github.com/foodbridge/foodbridge/internal/model"
)

// NewUser holds everything needed to register an account and its role
// profile. Profile fields that don't apply to Role are ignored.
type NewUser struct {
	Name         string
	Email        string
	PasswordHash string
	Role         string
	Phone        string

	Address          string   // donor, NGO
	OrganizationName string   // NGO
	Latitude         *float64 // NGO
	Longitude        *float64 // NGO
}

const userColumns = `id, name, email, password_hash, role, COALESCE(phone, ''), created_at, deleted_at`

// CreateUser creates a user together with its role profile.
func CreateUser(ctx context.Context, db *sql.DB, nu NewUser) (*model.User, error) {
	if !model.ValidRole(nu.Role) {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalid, nu.Role)
	}
	if nu.Role == model.RoleNGO && nu.OrganizationName == "" {
		return nil, fmt.Errorf("%w: organization name required for NGOs", ErrInvalid)
	}
	if err := checkLocation(nu.Latitude, nu.Longitude); err != nil {
		return nil, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = ? AND deleted_at IS NULL)`, nu.Email,
	).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("checking email: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: user already exists", ErrConflict)
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO users (name, email, password_hash, role, phone) VALUES (?, ?, ?, ?, ?)`,
		nu.Name, nu.Email, nu.PasswordHash, nu.Role, nu.Phone,
	)
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting user id: %w", err)
	}

	switch nu.Role {
	case model.RoleDonor:
		_, err = tx.ExecContext(ctx,
			`INSERT INTO donors (user_id, address) VALUES (?, ?)`, id, nu.Address)
	case model.RoleNGO:
		_, err = tx.ExecContext(ctx,
			`INSERT INTO ngos (user_id, organization_name, address, latitude, longitude) VALUES (?, ?, ?, ?, ?)`,
			id, nu.OrganizationName, nu.Address, nu.Latitude, nu.Longitude)
	case model.RoleVolunteer:
		_, err = tx.ExecContext(ctx,
			`INSERT INTO volunteers (user_id) VALUES (?)`, id)
	}
	if err != nil {
		return nil, fmt.Errorf("creating %s profile: %w", nu.Role, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing user: %w", err)
	}

	return GetUser(ctx, db, id)
}

// GetUser returns a user by ID.
func GetUser(ctx context.Context, db *sql.DB, id int64) (*model.User, error) {
	u := &model.User{}
	err := db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id,
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Phone, &u.CreatedAt, &u.DeletedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return u, nil
}

// GetUserByEmail returns the active user with the given email.
func GetUserByEmail(ctx context.Context, db *sql.DB, email string) (*model.User, error) {
	u := &model.User{}
	err := db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ? AND deleted_at IS NULL`, email,
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Phone, &u.CreatedAt, &u.DeletedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by email: %w", err)
	}
	return u, nil
}

// ListUsers returns all non-deleted users, newest first.
func ListUsers(ctx context.Context, db *sql.DB) ([]model.User, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE deleted_at IS NULL ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Phone, &u.CreatedAt, &u.DeletedAt); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdateUserPassword updates a user's password hash.
func UpdateUserPassword(ctx context.Context, db *sql.DB, id int64, passwordHash string) error {
	res, err := db.ExecContext(ctx,
		`UPDATE users SET password_hash = ? WHERE id = ? AND deleted_at IS NULL`,
		passwordHash, id,
	)
	if err != nil {
		return fmt.Errorf("updating user password: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("updating user password: %w", ErrNotFound)
	}
	return nil
}

// DeleteUser soft-deletes a user. Donors and NGOs with a donation between
// request and delivery, and volunteers in the middle of a delivery, cannot
// be deleted. The check and the update share one write transaction so no
// workflow step can slip in between them.
func DeleteUser(ctx context.Context, db *sql.DB, id int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var role string
	err = tx.QueryRowContext(ctx,
		`SELECT role FROM users WHERE id = ? AND deleted_at IS NULL`, id,
	).Scan(&role)
	if err == sql.ErrNoRows {
		return fmt.Errorf("deleting user: %w", ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("getting user: %w", err)
	}

	busy, err := hasWorkInFlight(ctx, tx, id, role)
	if err != nil {
		return err
	}
	if busy {
		return fmt.Errorf("%w: %s has a donation in progress", ErrConflict, strings.ToLower(role))
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET deleted_at = CURRENT_TIMESTAMP WHERE id = ?`, id,
	); err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing delete: %w", err)
	}
	return nil
}

// hasWorkInFlight reports whether the user behind userID is a party to a
// donation that has been requested but not yet delivered.
func hasWorkInFlight(ctx context.Context, q querier, userID int64, role string) (bool, error) {
	var from string
	switch role {
	case model.RoleDonor:
		from = `donations d JOIN donors x ON x.id = d.donor_id`
	case model.RoleNGO:
		from = `donations d JOIN ngos x ON x.id = d.ngo_id`
	case model.RoleVolunteer:
		from = `pickups d JOIN volunteers x ON x.id = d.volunteer_id`
	default:
		return false, nil
	}

	args := []any{userID}
	var marks []string
	for _, st := range lifecycle.Statuses() {
		if st.InFlight() {
			marks = append(marks, "?")
			args = append(args, st)
		}
	}

	var busy bool
	err := q.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM `+from+`
		 WHERE x.user_id = ? AND d.status IN (`+strings.Join(marks, ", ")+`))`, args...,
	).Scan(&busy)
	if err != nil {
		return false, fmt.Errorf("checking %s workload: %w", strings.ToLower(role), err)
	}
	return busy, nil
}
