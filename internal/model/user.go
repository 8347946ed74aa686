package model

import (
	"errors"
	"net/mail"
	"time"
)

// User is an account. Each non-admin user has exactly one role profile
// (Donor, NGO or Volunteer) linked by user id.
type User struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         string     `json:"role"`
	Phone        string     `json:"phone,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

// Roles.
const (
	RoleDonor     = "DONOR"
	RoleNGO       = "NGO"
	RoleVolunteer = "VOLUNTEER"
	RoleAdmin     = "ADMIN"
)

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	switch role {
	case RoleDonor, RoleNGO, RoleVolunteer, RoleAdmin:
		return true
	}
	return false
}

// SelfServiceRole reports whether a user may register with role themselves.
// Admins are only created from the command line.
func SelfServiceRole(role string) bool {
	return ValidRole(role) && role != RoleAdmin
}

// RoleIn reports whether role is one of allowed. Unknown roles fail closed.
func RoleIn(role string, allowed ...string) bool {
	if !ValidRole(role) {
		return false
	}
	for _, a := range allowed {
		if role == a {
			return true
		}
	}
	return false
}

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// ValidatePassword checks password strength requirements.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return errors.New("password must be at least 8 characters")
	}
	return nil
}

// ValidateEmail checks that email is a bare address.
func ValidateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return errors.New("invalid email address")
	}
	return nil
}
