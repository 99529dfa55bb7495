package api

import "time"

// Availability
type AvailabilityRequest struct {
	VehicleType string    `json:"vehicle_type"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
}

// Booking
type CreateBookingRequest struct {
	ParkingLotID  string    `json:"parking_lot_id"`
	ParkingSlotID string    `json:"parking_slot_id"`
	VehicleNumber string    `json:"vehicle_number"`
	VehicleType   string    `json:"vehicle_type"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	ContactName   string    `json:"contact_name,omitempty"`
	ContactEmail  string    `json:"contact_email,omitempty"`
	ContactPhone  string    `json:"contact_phone,omitempty"`
}

type QRScanRequest struct {
	QRToken string `json:"qr_token"`
}

type UpdateBookingStatusRequest struct {
	Status string `json:"status"`
}

type BulkSlotsRequest struct {
	Prefix      string  `json:"prefix"`
	SlotType    string  `json:"slot_type"`
	StartNumber int     `json:"start_number"`
	Count       int     `json:"count"`
	HourlyRate  float64 `json:"hourly_rate"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
