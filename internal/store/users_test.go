package store

import (
	"context"
	"errors"
	"testing"

	"github.com/foodbridge/foodbridge/internal/db"
	"github.com/foodbridge/foodbridge/internal/lifecycle"
	"github.com/foodbridge/foodbridge/internal/model"
)

func TestCreateUserWithProfiles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if f.donor.Role != model.RoleDonor {
		t.Errorf("expected role DONOR, got %q", f.donor.Role)
	}

	donor, err := GetDonorByUser(ctx, f.db, f.donor.ID)
	if err != nil {
		t.Fatalf("GetDonorByUser: %v", err)
	}
	if donor.Address != "1 Main St" {
		t.Errorf("expected donor address, got %q", donor.Address)
	}

	ngo, err := GetNGOByUser(ctx, f.db, f.ngo.ID)
	if err != nil {
		t.Fatalf("GetNGOByUser: %v", err)
	}
	if ngo.OrganizationName == "" {
		t.Error("expected organization name")
	}
	if ngo.Latitude != nil {
		t.Error("expected NGO without coordinates")
	}

	if got := f.availability(t, f.volunteer.ID); got != model.AvailabilityAvailable {
		t.Errorf("expected new volunteer AVAILABLE, got %q", got)
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	f := newFixture(t)

	_, err := CreateUser(context.Background(), f.db, NewUser{
		Name: "again", Email: "donor@example.org", PasswordHash: "h", Role: model.RoleDonor,
	})
	if !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
}

func TestCreateUserValidation(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	_, err := CreateUser(ctx, database, NewUser{Name: "x", Email: "x@x.org", PasswordHash: "h", Role: "CHEF"})
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid for unknown role, got %v", err)
	}

	_, err = CreateUser(ctx, database, NewUser{Name: "x", Email: "x@x.org", PasswordHash: "h", Role: model.RoleNGO})
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid for NGO without organization, got %v", err)
	}

	_, err = CreateUser(ctx, database, NewUser{
		Name: "x", Email: "x@x.org", PasswordHash: "h", Role: model.RoleNGO,
		OrganizationName: "Org", Latitude: ptr(12.0),
	})
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid for half a coordinate, got %v", err)
	}

	_, err = CreateUser(ctx, database, NewUser{
		Name: "x", Email: "x@x.org", PasswordHash: "h", Role: model.RoleNGO,
		OrganizationName: "Org", Latitude: ptr(500.0), Longitude: ptr(77.0),
	})
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid for latitude out of range, got %v", err)
	}

	users, _ := ListUsers(ctx, database)
	if len(users) != 0 {
		t.Errorf("expected no users after failed creates, got %d", len(users))
	}
}

func TestGetUserByEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, err := GetUserByEmail(ctx, f.db, "ngo@example.org")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if user == nil || user.ID != f.ngo.ID {
		t.Fatalf("expected NGO user, got %+v", user)
	}

	missing, err := GetUserByEmail(ctx, f.db, "nobody@example.org")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for missing user")
	}
}

func TestDeleteUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := DeleteUser(ctx, f.db, f.ngo.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}

	users, _ := ListUsers(ctx, f.db)
	if len(users) != 2 {
		t.Errorf("expected 2 users after delete, got %d", len(users))
	}

	if _, err := GetNGOByUser(ctx, f.db, f.ngo.ID); !errors.Is(err, ErrProfileMissing) {
		t.Errorf("expected deleted NGO profile to be missing, got %v", err)
	}

	// The email is free again.
	f.addUser(t, model.RoleNGO, "ngo@example.org")

	if err := DeleteUser(ctx, f.db, f.ngo.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound deleting twice, got %v", err)
	}
}

func TestDeleteBusyVolunteerRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	d := f.approved(t)
	if _, err := AcceptInvitation(ctx, f.db, f.volunteer.ID, d.ID); err != nil {
		t.Fatalf("AcceptInvitation: %v", err)
	}

	if err := DeleteUser(ctx, f.db, f.volunteer.ID); !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict deleting busy volunteer, got %v", err)
	}
}

func TestDeleteDonorOrNGOWithRequestedDonationRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	d := f.post(t, nil, nil)
	if _, err := RequestDonation(ctx, f.db, f.ngo.ID, d.ID, 5); err != nil {
		t.Fatalf("RequestDonation: %v", err)
	}

	for _, u := range []*model.User{f.donor, f.ngo} {
		if err := DeleteUser(ctx, f.db, u.ID); !errors.Is(err, ErrConflict) {
			t.Errorf("expected ErrConflict deleting %s, got %v", u.Role, err)
		}
	}

	// Both parties stay active, so the donor can still approve.
	if _, err := ApproveDonation(ctx, f.db, f.donor.ID, d.ID); err != nil {
		t.Fatalf("ApproveDonation: %v", err)
	}
}

func TestDeleteAfterDelivery(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	d := f.approved(t)
	p, err := AcceptInvitation(ctx, f.db, f.volunteer.ID, d.ID)
	if err != nil {
		t.Fatalf("AcceptInvitation: %v", err)
	}
	for _, st := range []lifecycle.Status{
		lifecycle.StatusAcceptedPassage,
		lifecycle.StatusOutForDelivery,
		lifecycle.StatusNearLocation,
	} {
		if p, err = AdvancePickup(ctx, f.db, f.volunteer.ID, p.ID, st); err != nil {
			t.Fatalf("AdvancePickup(%s): %v", st, err)
		}
		for _, u := range []*model.User{f.donor, f.ngo, f.volunteer} {
			if err := DeleteUser(ctx, f.db, u.ID); !errors.Is(err, ErrConflict) {
				t.Errorf("at %s: expected ErrConflict deleting %s, got %v", st, u.Role, err)
			}
		}
	}

	if _, err := AdvancePickup(ctx, f.db, f.volunteer.ID, p.ID, lifecycle.StatusDelivered); err != nil {
		t.Fatalf("AdvancePickup(DELIVERED): %v", err)
	}
	for _, u := range []*model.User{f.donor, f.ngo, f.volunteer} {
		if err := DeleteUser(ctx, f.db, u.ID); err != nil {
			t.Errorf("DeleteUser(%s) after delivery: %v", u.Role, err)
		}
	}
}

func TestDeletedDonorPendingDonationHidden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	d := f.post(t, nil, nil)
	if err := DeleteUser(ctx, f.db, f.donor.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}

	nearby, err := ListNearbyDonations(ctx, f.db, f.ngo.ID, 50)
	if err != nil {
		t.Fatalf("ListNearbyDonations: %v", err)
	}
	if len(nearby) != 0 {
		t.Errorf("expected no nearby donations from a deleted donor, got %d", len(nearby))
	}

	if _, err := RequestDonation(ctx, f.db, f.ngo.ID, d.ID, 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound requesting a deleted donor's donation, got %v", err)
	}
}

func TestUpdateUserPassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := UpdateUserPassword(ctx, f.db, f.donor.ID, "newhash"); err != nil {
		t.Fatalf("UpdateUserPassword: %v", err)
	}

	got, _ := GetUser(ctx, f.db, f.donor.ID)
	if got.PasswordHash != "newhash" {
		t.Errorf("expected password hash 'newhash', got %q", got.PasswordHash)
	}

	if err := UpdateUserPassword(ctx, f.db, 999, "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown user, got %v", err)
	}
}

func TestUpdateNGOLocation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ngo, err := UpdateNGOLocation(ctx, f.db, f.ngo.ID, ptr(12.97), ptr(77.59))
	if err != nil {
		t.Fatalf("UpdateNGOLocation: %v", err)
	}
	if ngo.Latitude == nil || *ngo.Latitude != 12.97 {
		t.Errorf("expected latitude 12.97, got %v", ngo.Latitude)
	}

	if _, err := UpdateNGOLocation(ctx, f.db, f.ngo.ID, ptr(91.0), ptr(0.0)); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid for out of range latitude, got %v", err)
	}

	if _, err := UpdateNGOLocation(ctx, f.db, f.donor.ID, ptr(1.0), ptr(1.0)); !errors.Is(err, ErrProfileMissing) {
		t.Errorf("expected ErrProfileMissing for donor, got %v", err)
	}

	ngo, err = UpdateNGOLocation(ctx, f.db, f.ngo.ID, nil, nil)
	if err != nil {
		t.Fatalf("clearing location: %v", err)
	}
	if ngo.Latitude != nil {
		t.Error("expected location cleared")
	}
}
