package entities

import (
	"time"

	"parkspot/internal/db"
)

type AvailabilityResponse struct {
	RequestedStartTime time.Time        `json:"requested_start_time"`
	RequestedEndTime   time.Time        `json:"requested_end_time"`
	Available          bool             `json:"available"`
	Degraded           bool             `json:"degraded,omitempty"`
	Slots              []db.ParkingSlot `json:"slots"`
}
