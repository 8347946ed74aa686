// Package lifecycle defines the donation status machine: the ordered set of
// statuses a donation passes through and which event moves it forward.
//
// The package is pure. Persisting a transition (and guarding it against
// concurrent writers) is the store's job; it asks this package which status
// comes next and whether the caller's requested one is legal.
package lifecycle

import (
	"errors"
	"fmt"
)

// Status is the status of a donation and, once a volunteer is attached,
// of its pickup.
type Status string

// Donation statuses, in workflow order.
const (
	StatusPending         Status = "PENDING"
	StatusRequested       Status = "REQUESTED"
	StatusApproved        Status = "APPROVED"
	StatusAssigned        Status = "ASSIGNED"
	StatusAcceptedPassage Status = "ACCEPTED_PASSAGE"
	StatusOutForDelivery  Status = "OUT_FOR_DELIVERY"
	StatusNearLocation    Status = "NEAR_LOCATION"
	StatusDelivered       Status = "DELIVERED"
)

var order = []Status{
	StatusPending,
	StatusRequested,
	StatusApproved,
	StatusAssigned,
	StatusAcceptedPassage,
	StatusOutForDelivery,
	StatusNearLocation,
	StatusDelivered,
}

// Event is something a participant does to a donation.
type Event string

// Workflow events.
const (
	EventRequest Event = "request" // NGO asks for a quantity
	EventApprove Event = "approve" // donor approves the NGO's request
	EventAssign  Event = "assign"  // volunteer accepts, or NGO assigns one
	EventAdvance Event = "advance" // volunteer reports delivery progress
)

// fixed holds the events whose source and target never vary.
var fixed = map[Event][2]Status{
	EventRequest: {StatusPending, StatusRequested},
	EventApprove: {StatusRequested, StatusApproved},
	EventAssign:  {StatusApproved, StatusAssigned},
}

// ErrUnknownStatus is returned for strings that are not a Status.
var ErrUnknownStatus = errors.New("unknown status")

// TransitionError reports an event fired from a status that does not allow it.
type TransitionError struct {
	From  Status
	To    Status
	Event Event
}

func (e *TransitionError) Error() string {
	if e.To == "" {
		return fmt.Sprintf("cannot %s a donation in status %s", e.Event, e.From)
	}
	return fmt.Sprintf("cannot %s a donation from %s to %s", e.Event, e.From, e.To)
}

// IsTransitionError reports whether err is (or wraps) a TransitionError.
func IsTransitionError(err error) bool {
	var te *TransitionError
	return errors.As(err, &te)
}

// Parse converts a string into a Status.
func Parse(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
	return st, nil
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	return s.index() >= 0
}

// Terminal reports whether no further transitions leave s.
func (s Status) Terminal() bool {
	return s == StatusDelivered
}

// InFlight reports whether s lies between posting and delivery, i.e. an
// NGO, a donor and possibly a volunteer are still waiting on each other.
func (s Status) InFlight() bool {
	i := s.index()
	return i > StatusPending.index() && i < StatusDelivered.index()
}

func (s Status) index() int {
	for i, st := range order {
		if st == s {
			return i
		}
	}
	return -1
}

// Next returns the status that follows s. It returns false for the
// terminal status and for unknown ones.
func Next(s Status) (Status, bool) {
	i := s.index()
	if i < 0 || i == len(order)-1 {
		return "", false
	}
	return order[i+1], true
}

// VolunteerDriven reports whether s is reached by a volunteer progress update.
func VolunteerDriven(s Status) bool {
	return s.index() > StatusAssigned.index()
}

// Statuses returns every status in workflow order.
func Statuses() []Status {
	out := make([]Status, len(order))
	copy(out, order)
	return out
}

// Fire validates that ev may be applied to a donation in status from and
// returns the resulting status. For EventAdvance, target is the status the
// volunteer asked for; it must be exactly the next one. Other events ignore
// target.
func Fire(from Status, ev Event, target Status) (Status, error) {
	if !from.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, from)
	}

	if ev == EventAdvance {
		if !target.Valid() {
			return "", fmt.Errorf("%w: %q", ErrUnknownStatus, target)
		}
		next, ok := Next(from)
		if !ok || !VolunteerDriven(next) || next != target {
			return "", &TransitionError{From: from, To: target, Event: ev}
		}
		return next, nil
	}

	edge, ok := fixed[ev]
	if !ok {
		return "", fmt.Errorf("unknown event %q", ev)
	}
	if from != edge[0] {
		return "", &TransitionError{From: from, Event: ev}
	}
	return edge[1], nil
}
