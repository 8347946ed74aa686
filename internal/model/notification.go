package model

import "time"

// Notification is a message addressed to one user, fetched by polling.
type Notification struct {
	ID        int64     `json:"notification_id"`
	UserID    int64     `json:"user_id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// Notification types.
const (
	NotifyDonationRequested = "DONATION_REQUESTED"
	NotifyDonationApproved  = "DONATION_APPROVED"
	NotifyVolunteerAccepted = "VOLUNTEER_ACCEPTED"
	NotifyVolunteerAssigned = "VOLUNTEER_ASSIGNED"
	NotifyStatusUpdate      = "STATUS_UPDATE"
)
