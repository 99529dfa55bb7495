package db

import "time"

// Lot statuses.
const (
	LotStatusActive   = "active"
	LotStatusInactive = "inactive"
)

// Slot types. Two- and four-wheeler slots are provisioned automatically,
// ev_charging slots are created by admins.
const (
	SlotTypeTwoWheeler  = "two_wheeler"
	SlotTypeFourWheeler = "four_wheeler"
	SlotTypeEVCharging  = "ev_charging"
)

// Slot statuses.
const (
	SlotStatusAvailable   = "available"
	SlotStatusReserved    = "reserved"
	SlotStatusOccupied    = "occupied"
	SlotStatusMaintenance = "maintenance"
)

// Booking statuses. completed and cancelled are terminal.
const (
	BookingStatusConfirmed = "confirmed"
	BookingStatusActive    = "active"
	BookingStatusCompleted = "completed"
	BookingStatusCancelled = "cancelled"
)

type ParkingLot struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Address        string    `json:"address"`
	City           string    `json:"city"`
	State          string    `json:"state"`
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
	TotalSlots     int       `json:"total_slots"`
	AvailableSlots int       `json:"available_slots"`
	HourlyRate     float64   `json:"hourly_rate"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type ParkingSlot struct {
	ID           string    `json:"id"`
	ParkingLotID string    `json:"parking_lot_id"`
	SlotNumber   string    `json:"slot_number"`
	SlotType     string    `json:"slot_type"`
	HourlyRate   float64   `json:"hourly_rate"`
	FloorLevel   int       `json:"floor_level"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Booking struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id"`
	ParkingLotID    string     `json:"parking_lot_id"`
	ParkingSlotID   string     `json:"parking_slot_id"`
	VehicleNumber   string     `json:"vehicle_number"`
	VehicleType     string     `json:"vehicle_type"`
	StartTime       time.Time  `json:"start_time"`
	EndTime         time.Time  `json:"end_time"`
	ActualStartTime *time.Time `json:"actual_start_time,omitempty"`
	ActualEndTime   *time.Time `json:"actual_end_time,omitempty"`
	TotalAmount     float64    `json:"total_amount"`
	Status          string     `json:"status"`
	QRCode          string     `json:"qr_code"`
	ContactName     string     `json:"contact_name,omitempty"`
	ContactEmail    string     `json:"contact_email,omitempty"`
	ContactPhone    string     `json:"contact_phone,omitempty"`
	StripeSessionID string     `json:"stripe_session_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// ValidSlotType reports whether t is one of the recognized slot types.
func ValidSlotType(t string) bool {
	switch t {
	case SlotTypeTwoWheeler, SlotTypeFourWheeler, SlotTypeEVCharging:
		return true
	}
	return false
}
