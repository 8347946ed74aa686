package model

// Stats is the system-wide overview shown to admins.
type Stats struct {
	TotalUsers         int `json:"total_users"`
	Donors             int `json:"donors"`
	NGOs               int `json:"ngos"`
	Volunteers         int `json:"volunteers"`
	TotalDonations     int `json:"total_donations"`
	DeliveredDonations int `json:"delivered_donations"`
	ActivePickups      int `json:"active_pickups"`
}
