package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"parkspot/internal/auth"
	"parkspot/internal/db"
	"parkspot/internal/entities"
	"parkspot/internal/service"
)

type BookingHandler struct {
	Service *service.BookingService
}

func NewBookingHandler(svc *service.BookingService) *BookingHandler {
	return &BookingHandler{Service: svc}
}

func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	booking, checkoutURL, err := h.Service.Create(entities.BookingRequest{
		UserID:        auth.UserIDFrom(r.Context()),
		ParkingLotID:  req.ParkingLotID,
		ParkingSlotID: req.ParkingSlotID,
		VehicleNumber: req.VehicleNumber,
		VehicleType:   req.VehicleType,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		ContactName:   req.ContactName,
		ContactEmail:  req.ContactEmail,
		ContactPhone:  req.ContactPhone,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"booking":      booking,
		"checkout_url": checkoutURL,
	})
}

func (h *BookingHandler) ListMyBookings(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFrom(r.Context())
	bookings, err := h.Service.ListUserBookings(userID, r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"bookings": bookings})
}

func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	booking, err := h.Service.GetBooking(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	if booking.UserID != auth.UserIDFrom(r.Context()) {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	booking, err := h.Service.Cancel(mux.Vars(r)["id"], auth.UserIDFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"booking": booking,
		"message": "Booking cancelled",
	})
}

// ValidateEntry is called by the gate scanner on arrival.
func (h *BookingHandler) ValidateEntry(w http.ResponseWriter, r *http.Request) {
	h.validateScan(w, r, h.Service.ValidateEntry)
}

// ValidateExit is called by the gate scanner on departure.
func (h *BookingHandler) ValidateExit(w http.ResponseWriter, r *http.Request) {
	h.validateScan(w, r, h.Service.ValidateExit)
}

func (h *BookingHandler) validateScan(w http.ResponseWriter, r *http.Request, validate func(string) (*db.Booking, error)) {
	var req QRScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.QRToken == "" {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	booking, err := validate(req.QRToken)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"valid":   true,
		"booking": booking,
	})
}
