package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"parkspot/internal/entities"
	"parkspot/internal/service"
)

type ParkingHandler struct {
	Service *service.ParkingService
}

func NewParkingHandler(svc *service.ParkingService) *ParkingHandler {
	return &ParkingHandler{Service: svc}
}

func (h *ParkingHandler) ListLots(w http.ResponseWriter, r *http.Request) {
	filters := entities.LotFilters{
		City:   r.URL.Query().Get("city"),
		Search: r.URL.Query().Get("search"),
	}
	lots, err := h.Service.ListLots(filters)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"lots": lots})
}

func (h *ParkingHandler) GetLot(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	lot, slots, err := h.Service.GetLot(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"lot":   lot,
		"slots": slots,
	})
}

func (h *ParkingHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	lotID := mux.Vars(r)["id"]
	var req AvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	resp, err := h.Service.FindAvailable(entities.BookingRequest{
		ParkingLotID: lotID,
		VehicleType:  req.VehicleType,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
