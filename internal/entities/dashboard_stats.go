package entities

type DashboardStats struct {
	TotalLots      int `json:"total_lots"`
	TotalSlots     int `json:"total_slots"`
	AvailableSlots int `json:"available_slots"`
	OccupiedSlots  int `json:"occupied_slots"`
	ActiveBookings int `json:"active_bookings"`
	OccupancyRate  int `json:"occupancy_rate"`
}
