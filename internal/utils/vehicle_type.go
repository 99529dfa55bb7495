package utils

import (
	"strings"

	"parkspot/internal/db"
)

// NormalizeVehicleType maps a caller-supplied vehicle type onto the slot
// type whose pool serves it. Cars and SUVs share the four-wheeler pool,
// bikes and scooters the two-wheeler pool. Returns "" when the type is
// not recognized.
func NormalizeVehicleType(vehicleType string) string {
	switch strings.ToLower(strings.TrimSpace(vehicleType)) {
	case db.SlotTypeTwoWheeler, "bike", "motorcycle", "scooter":
		return db.SlotTypeTwoWheeler
	case db.SlotTypeFourWheeler, "car", "suv", "van":
		return db.SlotTypeFourWheeler
	case db.SlotTypeEVCharging, "ev", "electric":
		return db.SlotTypeEVCharging
	}
	return ""
}
