package entities

import "time"

// LotFilters narrows the public lot listing.
type LotFilters struct {
	City   string
	Search string
}

// BookingFilters narrows the admin booking listing.
type BookingFilters struct {
	Status       string
	ParkingLotID string
	StartDate    *time.Time
	EndDate      *time.Time
}
