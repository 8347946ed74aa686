package model

import (
	"time"

	"github.com/foodbridge/foodbridge/internal/lifecycle"
)

// Pickup is the delivery task linking a donation to a volunteer. Its status
// moves in lockstep with the donation's.
type Pickup struct {
	ID           int64            `json:"pickup_id"`
	DonationID   int64            `json:"donation_id"`
	VolunteerID  int64            `json:"volunteer_id"`
	Status       lifecycle.Status `json:"status"`
	PickupTime   time.Time        `json:"pickup_time"`
	DeliveryTime *time.Time       `json:"delivery_time,omitempty"`

	// Joined fields (not always populated).
	FoodName         string `json:"food_name,omitempty"`
	FoodType         string `json:"food_type,omitempty"`
	Quantity         int    `json:"quantity,omitempty"`
	DonorName        string `json:"donor_name,omitempty"`
	DonorPhone       string `json:"donor_phone,omitempty"`
	DonorAddress     string `json:"donor_address,omitempty"`
	OrganizationName string `json:"organization_name,omitempty"`
	NGOAddress       string `json:"ngo_address,omitempty"`
	NGOPhone         string `json:"ngo_phone,omitempty"`
}
