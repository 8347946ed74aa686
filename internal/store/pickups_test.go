package store

import (
	"context"
	"errors"
	"testing"

	"github.com/foodbridge/foodbridge/internal/lifecycle"
	"github.com/foodbridge/foodbridge/internal/model"
)

func TestAdvancePickupToDelivered(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := f.approved(t)

	p, err := AcceptInvitation(ctx, f.db, f.volunteer.ID, d.ID)
	if err != nil {
		t.Fatalf("AcceptInvitation: %v", err)
	}

	steps := []lifecycle.Status{
		lifecycle.StatusAcceptedPassage,
		lifecycle.StatusOutForDelivery,
		lifecycle.StatusNearLocation,
		lifecycle.StatusDelivered,
	}
	for _, st := range steps {
		p, err = AdvancePickup(ctx, f.db, f.volunteer.ID, p.ID, st)
		if err != nil {
			t.Fatalf("AdvancePickup(%s): %v", st, err)
		}
		if p.Status != st {
			t.Errorf("expected pickup %s, got %s", st, p.Status)
		}

		got, _ := GetDonation(ctx, f.db, d.ID)
		if got.Status != st {
			t.Errorf("expected donation in lockstep at %s, got %s", st, got.Status)
		}

		if st != lifecycle.StatusDelivered {
			if p.DeliveryTime != nil {
				t.Errorf("expected no delivery time at %s", st)
			}
			if a := f.availability(t, f.volunteer.ID); a != model.AvailabilityBusy {
				t.Errorf("expected volunteer BUSY at %s, got %s", st, a)
			}
		}
	}

	if p.DeliveryTime == nil {
		t.Error("expected delivery time to be stamped")
	}
	if a := f.availability(t, f.volunteer.ID); a != model.AvailabilityAvailable {
		t.Errorf("expected volunteer AVAILABLE after delivery, got %s", a)
	}

	notes, _ := ListNotifications(ctx, f.db, f.ngo.ID)
	updates := 0
	for _, n := range notes {
		if n.Type == model.NotifyStatusUpdate {
			updates++
		}
	}
	if updates != len(steps) {
		t.Errorf("expected %d STATUS_UPDATE notifications for NGO, got %d", len(steps), updates)
	}

	list, _ := ListVolunteerPickups(ctx, f.db, f.volunteer.ID)
	if len(list) != 1 || list[0].Status != lifecycle.StatusDelivered {
		t.Errorf("expected one delivered pickup in list, got %+v", list)
	}

	// The freed volunteer can take the next donation.
	next := f.approved(t)
	if _, err := AcceptInvitation(ctx, f.db, f.volunteer.ID, next.ID); err != nil {
		t.Errorf("expected freed volunteer to accept again, got %v", err)
	}
}

func TestAdvancePickupRejectsIllegalMoves(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := f.approved(t)
	p, _ := AcceptInvitation(ctx, f.db, f.volunteer.ID, d.ID)

	tests := []struct {
		name   string
		target lifecycle.Status
	}{
		{"skip", lifecycle.StatusOutForDelivery},
		{"repeat", lifecycle.StatusAssigned},
		{"backwards", lifecycle.StatusApproved},
		{"jump to end", lifecycle.StatusDelivered},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := AdvancePickup(ctx, f.db, f.volunteer.ID, p.ID, tt.target)
			if !errors.Is(err, ErrConflict) {
				t.Errorf("expected ErrConflict, got %v", err)
			}
			if !lifecycle.IsTransitionError(err) {
				t.Errorf("expected wrapped transition error, got %v", err)
			}
		})
	}

	got, _ := GetPickup(ctx, f.db, p.ID)
	if got.Status != lifecycle.StatusAssigned {
		t.Errorf("expected pickup still ASSIGNED, got %s", got.Status)
	}
}

func TestAdvancePickupOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	other := f.addUser(t, model.RoleVolunteer, "vol2@example.org")
	d := f.approved(t)
	p, _ := AcceptInvitation(ctx, f.db, f.volunteer.ID, d.ID)

	if _, err := AdvancePickup(ctx, f.db, other.ID, p.ID, lifecycle.StatusAcceptedPassage); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden for other volunteer, got %v", err)
	}
	if _, err := AdvancePickup(ctx, f.db, f.volunteer.ID, 999, lifecycle.StatusAcceptedPassage); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown pickup, got %v", err)
	}
}
