package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"parkspot/internal/db"
	"parkspot/internal/entities"
	"parkspot/internal/repository"
	"parkspot/internal/service"
)

type AdminHandler struct {
	Parking  *service.ParkingService
	Bookings *service.BookingService
	Stats    repository.StatsRepository
}

func NewAdminHandler(parking *service.ParkingService, bookings *service.BookingService, stats repository.StatsRepository) *AdminHandler {
	return &AdminHandler{Parking: parking, Bookings: bookings, Stats: stats}
}

func (h *AdminHandler) CreateLot(w http.ResponseWriter, r *http.Request) {
	var lot db.ParkingLot
	if err := json.NewDecoder(r.Body).Decode(&lot); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if err := h.Parking.CreateLot(&lot); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, lot)
}

func (h *AdminHandler) UpdateLot(w http.ResponseWriter, r *http.Request) {
	var lot db.ParkingLot
	if err := json.NewDecoder(r.Body).Decode(&lot); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	lot.ID = mux.Vars(r)["id"]
	if err := h.Parking.UpdateLot(&lot); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lot)
}

func (h *AdminHandler) DeactivateLot(w http.ResponseWriter, r *http.Request) {
	if err := h.Parking.DeactivateLot(mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Lot deactivated"})
}

func (h *AdminHandler) CreateBulkSlots(w http.ResponseWriter, r *http.Request) {
	lotID := mux.Vars(r)["id"]
	var req BulkSlotsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	slots, err := h.Parking.CreateBulkSlots(lotID, req.Prefix, req.SlotType, req.StartNumber, req.Count, req.HourlyRate)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"slots": slots})
}

func (h *AdminHandler) UpdateSlot(w http.ResponseWriter, r *http.Request) {
	var slot db.ParkingSlot
	if err := json.NewDecoder(r.Body).Decode(&slot); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	slot.ID = mux.Vars(r)["id"]
	if err := h.Parking.UpdateSlot(&slot); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, slot)
}

func (h *AdminHandler) DeleteSlot(w http.ResponseWriter, r *http.Request) {
	if err := h.Parking.DeleteSlot(mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Slot deleted"})
}

func (h *AdminHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := entities.BookingFilters{
		Status:       q.Get("status"),
		ParkingLotID: q.Get("parking_lot_id"),
	}
	if raw := q.Get("start_date"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			http.Error(w, "Invalid start_date", http.StatusBadRequest)
			return
		}
		filters.StartDate = &t
	}
	if raw := q.Get("end_date"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			http.Error(w, "Invalid end_date", http.StatusBadRequest)
			return
		}
		filters.EndDate = &t
	}

	bookings, err := h.Bookings.ListBookings(filters)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"bookings": bookings})
}

// UpdateBookingStatus drives admin-side transitions from the management
// UI, e.g. forcing completion when a scanner is down.
func (h *AdminHandler) UpdateBookingStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateBookingStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	booking, err := h.Bookings.UpdateStatus(mux.Vars(r)["id"], req.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (h *AdminHandler) DashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Stats.GetDashboardStats()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
