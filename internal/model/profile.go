package model

// Donor is the role profile of a food-supply user.
type Donor struct {
	ID      int64  `json:"donor_id"`
	UserID  int64  `json:"user_id"`
	Address string `json:"address,omitempty"`
}

// NGO is the role profile of a receiving organization. Coordinates are
// optional; without them the nearby list is not distance-filtered.
type NGO struct {
	ID               int64    `json:"ngo_id"`
	UserID           int64    `json:"user_id"`
	OrganizationName string   `json:"organization_name"`
	Address          string   `json:"address,omitempty"`
	Latitude         *float64 `json:"latitude,omitempty"`
	Longitude        *float64 `json:"longitude,omitempty"`
}

// Volunteer is the role profile of a delivery agent.
type Volunteer struct {
	ID           int64  `json:"volunteer_id"`
	UserID       int64  `json:"user_id"`
	Availability string `json:"availability"`

	// Joined fields (not always populated).
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

// Volunteer availability.
const (
	AvailabilityAvailable = "AVAILABLE"
	AvailabilityBusy      = "BUSY"
)
