package entities

import "time"

type BookingRequest struct {
	UserID        string    `json:"user_id"`
	ParkingLotID  string    `json:"parking_lot_id"`
	ParkingSlotID string    `json:"parking_slot_id"`
	VehicleNumber string    `json:"vehicle_number"`
	VehicleType   string    `json:"vehicle_type"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`

	// Optional contact details, stored with the booking so confirmation
	// and cancellation messages can reach the user.
	ContactEmail string `json:"contact_email,omitempty"`
	ContactName  string `json:"contact_name,omitempty"`
	ContactPhone string `json:"contact_phone,omitempty"`
}
