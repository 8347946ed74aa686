package model

import (
	"time"

	"github.com/foodbridge/foodbridge/internal/geo"
	"github.com/foodbridge/foodbridge/internal/lifecycle"
)

// Donation is a food item posted by a donor and tracked through the
// lifecycle until it is delivered to the requesting NGO.
type Donation struct {
	ID                int64            `json:"donation_id"`
	DonorID           int64            `json:"donor_id"`
	NGOID             *int64           `json:"ngo_id,omitempty"`
	FoodName          string           `json:"food_name"`
	FoodType          string           `json:"food_type"`
	Quantity          int              `json:"quantity"`
	RequestedQuantity *int             `json:"requested_quantity,omitempty"`
	PreparedTime      *time.Time       `json:"prepared_time,omitempty"`
	ExpiryTime        *time.Time       `json:"expiry_time,omitempty"`
	Latitude          *float64         `json:"latitude,omitempty"`
	Longitude         *float64         `json:"longitude,omitempty"`
	Status            lifecycle.Status `json:"status"`
	HasPhoto          bool             `json:"has_photo"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`

	// Joined fields (not always populated).
	DonorName        string `json:"donor_name,omitempty"`
	DonorPhone       string `json:"donor_phone,omitempty"`
	DonorAddress     string `json:"donor_address,omitempty"`
	OrganizationName string `json:"organization_name,omitempty"`
	NGOAddress       string `json:"ngo_address,omitempty"`
	NGOPhone         string `json:"ngo_phone,omitempty"`
}

// Food types.
const (
	FoodTypeVeg    = "VEG"
	FoodTypeNonVeg = "NON_VEG"
)

// ValidFoodType reports whether t is a known food type.
func ValidFoodType(t string) bool {
	return t == FoodTypeVeg || t == FoodTypeNonVeg
}

// Location returns the pickup coordinates, if the donor supplied them.
func (d Donation) Location() (geo.Point, bool) {
	if d.Latitude == nil || d.Longitude == nil {
		return geo.Point{}, false
	}
	return geo.Point{Lat: *d.Latitude, Lon: *d.Longitude}, true
}

// NearbyDonation is a pending donation annotated with its distance from
// the NGO asking. DistanceKm is nil when the NGO has no location.
type NearbyDonation struct {
	Donation
	DistanceKm *float64 `json:"distance_km,omitempty"`
}

// NewDonation holds the donor-supplied fields of a donation being posted.
type NewDonation struct {
	FoodName     string
	FoodType     string
	Quantity     int
	PreparedTime *time.Time
	ExpiryTime   *time.Time
	Latitude     *float64
	Longitude    *float64
}
