package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/foodbridge/foodbridge/internal/db"
	"github.com/foodbridge/foodbridge/internal/model"
)

// fixture seeds one user per role.
type fixture struct {
	db        *sql.DB
	donor     *model.User
	ngo       *model.User
	volunteer *model.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return seed(t, db.NewTestDB(t))
}

func seed(t *testing.T, database *sql.DB) *fixture {
	t.Helper()
	f := &fixture{db: database}
	f.donor = f.addUser(t, model.RoleDonor, "donor@example.org")
	f.ngo = f.addUser(t, model.RoleNGO, "ngo@example.org")
	f.volunteer = f.addUser(t, model.RoleVolunteer, "vol@example.org")
	return f
}

func (f *fixture) addUser(t *testing.T, role, email string) *model.User {
	t.Helper()
	nu := NewUser{
		Name:         email,
		Email:        email,
		PasswordHash: "hash",
		Role:         role,
		Phone:        "555-0100",
		Address:      "1 Main St",
	}
	if role == model.RoleNGO {
		nu.OrganizationName = "Food Bank " + email
	}
	u, err := CreateUser(context.Background(), f.db, nu)
	if err != nil {
		t.Fatalf("CreateUser(%s): %v", email, err)
	}
	return u
}

func (f *fixture) post(t *testing.T, lat, lon *float64) *model.Donation {
	t.Helper()
	d, err := CreateDonation(context.Background(), f.db, f.donor.ID, model.NewDonation{
		FoodName:  "Rice",
		FoodType:  model.FoodTypeVeg,
		Quantity:  10,
		Latitude:  lat,
		Longitude: lon,
	})
	if err != nil {
		t.Fatalf("CreateDonation: %v", err)
	}
	return d
}

// approved returns a donation that has been requested by the fixture NGO
// and approved by the donor.
func (f *fixture) approved(t *testing.T) *model.Donation {
	t.Helper()
	ctx := context.Background()
	d := f.post(t, nil, nil)
	if _, err := RequestDonation(ctx, f.db, f.ngo.ID, d.ID, 5); err != nil {
		t.Fatalf("RequestDonation: %v", err)
	}
	d, err := ApproveDonation(ctx, f.db, f.donor.ID, d.ID)
	if err != nil {
		t.Fatalf("ApproveDonation: %v", err)
	}
	return d
}

func (f *fixture) availability(t *testing.T, userID int64) string {
	t.Helper()
	v, err := GetVolunteerByUser(context.Background(), f.db, userID)
	if err != nil {
		t.Fatalf("GetVolunteerByUser: %v", err)
	}
	return v.Availability
}

func ptr[T any](v T) *T { return &v }
