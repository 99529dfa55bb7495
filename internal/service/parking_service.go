package service

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"parkspot/internal/db"
	"parkspot/internal/entities"
	apperrors "parkspot/internal/errors"
	"parkspot/internal/repository"
	"parkspot/internal/utils"
)

// Share of a lot's capacity provisioned as two-wheeler slots, and the
// two-wheeler discount on the lot's hourly rate.
const (
	twoWheelerShare        = 0.4
	twoWheelerRateDiscount = 0.6
)

// ParkingService owns the lot inventory: lot search and management, lazy
// slot provisioning, and the availability search over a time window.
type ParkingService struct {
	Lots     repository.LotRepository
	Slots    repository.SlotRepository
	Bookings repository.BookingRepository
}

func NewParkingService(lots repository.LotRepository, slots repository.SlotRepository, bookings repository.BookingRepository) *ParkingService {
	return &ParkingService{Lots: lots, Slots: slots, Bookings: bookings}
}

// EnsureSlots provisions the initial slot inventory for a lot that has
// none: ceil(total×0.4) two-wheeler slots at 60% of the lot rate, the
// remainder four-wheeler at the lot rate. No-op when slots already exist.
//
// The check-then-insert is racy under concurrent first access; two callers
// can both pass the count check and double-provision. Accepted: lots are
// created rarely and a unique (parking_lot_id, slot_number) constraint in
// the store rejects the duplicate batch.
func (s *ParkingService) EnsureSlots(lotID string) error {
	count, err := s.Slots.CountByLot(lotID)
	if err != nil {
		return apperrors.NewCollaborator("counting slots", err)
	}
	if count > 0 {
		return nil
	}

	lot, err := s.Lots.GetByID(lotID)
	if err != nil {
		return err
	}

	twoWheelers := int(math.Ceil(float64(lot.TotalSlots) * twoWheelerShare))
	fourWheelers := lot.TotalSlots - twoWheelers

	slots := make([]db.ParkingSlot, 0, lot.TotalSlots)
	for i := 1; i <= twoWheelers; i++ {
		slots = append(slots, db.ParkingSlot{
			ID:           uuid.NewString(),
			ParkingLotID: lot.ID,
			SlotNumber:   fmt.Sprintf("TW-%02d", i),
			SlotType:     db.SlotTypeTwoWheeler,
			HourlyRate:   lot.HourlyRate * twoWheelerRateDiscount,
			FloorLevel:   1,
			Status:       db.SlotStatusAvailable,
		})
	}
	for i := 1; i <= fourWheelers; i++ {
		slots = append(slots, db.ParkingSlot{
			ID:           uuid.NewString(),
			ParkingLotID: lot.ID,
			SlotNumber:   fmt.Sprintf("FW-%02d", i),
			SlotType:     db.SlotTypeFourWheeler,
			HourlyRate:   lot.HourlyRate,
			FloorLevel:   1,
			Status:       db.SlotStatusAvailable,
		})
	}

	if err := s.Slots.CreateBatch(slots); err != nil {
		return apperrors.NewCollaborator("provisioning slots", err)
	}
	logrus.WithFields(logrus.Fields{
		"parking_lot_id": lot.ID,
		"two_wheeler":    twoWheelers,
		"four_wheeler":   fourWheelers,
	}).Info("provisioned slot inventory")
	return nil
}

// FindAvailable returns the slots of the requested type free for the
// half-open window [start, end), ordered by slot number. A slot's own
// status only reflects the present moment; the booking-overlap filter is
// what decides the requested window. When the overlap query fails the
// search degrades to the unfiltered candidate set instead of failing.
func (s *ParkingService) FindAvailable(req entities.BookingRequest) (*entities.AvailabilityResponse, error) {
	if !req.EndTime.After(req.StartTime) {
		return nil, apperrors.NewValidation("end_time must be after start_time")
	}
	slotType := utils.NormalizeVehicleType(req.VehicleType)
	if slotType == "" {
		return nil, apperrors.NewValidation("unknown vehicle type %q", req.VehicleType)
	}

	if err := s.EnsureSlots(req.ParkingLotID); err != nil {
		return nil, err
	}

	candidates, err := s.Slots.ListAvailableByType(req.ParkingLotID, slotType)
	if err != nil {
		return nil, apperrors.NewCollaborator("listing available slots", err)
	}

	resp := &entities.AvailabilityResponse{
		RequestedStartTime: req.StartTime,
		RequestedEndTime:   req.EndTime,
	}

	bookedSlotIDs, err := s.Bookings.ListOverlappingSlotIDs(req.ParkingLotID, req.StartTime, req.EndTime)
	if err != nil {
		// Degraded mode: favor availability over strict correctness on
		// this read path, but make the degradation visible.
		logrus.WithFields(logrus.Fields{
			"parking_lot_id": req.ParkingLotID,
			"error":          err,
		}).Warn("booking overlap check failed, returning unfiltered slot set")
		resp.Degraded = true
		resp.Slots = candidates
		resp.Available = len(candidates) > 0
		return resp, nil
	}

	booked := make(map[string]struct{}, len(bookedSlotIDs))
	for _, id := range bookedSlotIDs {
		booked[id] = struct{}{}
	}
	for _, slot := range candidates {
		if _, taken := booked[slot.ID]; !taken {
			resp.Slots = append(resp.Slots, slot)
		}
	}
	resp.Available = len(resp.Slots) > 0
	return resp, nil
}

func (s *ParkingService) ListLots(filters entities.LotFilters) ([]db.ParkingLot, error) {
	return s.Lots.List(filters)
}

// GetLot returns the lot with its slot inventory, provisioning it first
// if needed so detail pages never show an empty lot.
func (s *ParkingService) GetLot(id string) (*db.ParkingLot, []db.ParkingSlot, error) {
	lot, err := s.Lots.GetByID(id)
	if err != nil {
		return nil, nil, err
	}
	if err := s.EnsureSlots(id); err != nil {
		return nil, nil, err
	}
	slots, err := s.Slots.ListByLot(id)
	if err != nil {
		return nil, nil, apperrors.NewCollaborator("listing slots", err)
	}
	return lot, slots, nil
}

// CreateLot registers a new lot. The cached free-count starts at capacity;
// slots themselves are provisioned lazily on first availability query.
func (s *ParkingService) CreateLot(lot *db.ParkingLot) error {
	if lot.Name == "" {
		return apperrors.NewValidation("lot name is required")
	}
	if lot.TotalSlots <= 0 {
		return apperrors.NewValidation("total_slots must be positive")
	}
	if lot.HourlyRate < 0 {
		return apperrors.NewValidation("hourly_rate must not be negative")
	}
	lot.ID = uuid.NewString()
	lot.AvailableSlots = lot.TotalSlots
	if lot.Status == "" {
		lot.Status = db.LotStatusActive
	}
	if err := s.Lots.Create(lot); err != nil {
		return apperrors.NewCollaborator("creating lot", err)
	}
	return nil
}

func (s *ParkingService) UpdateLot(lot *db.ParkingLot) error {
	if lot.TotalSlots <= 0 {
		return apperrors.NewValidation("total_slots must be positive")
	}
	return s.Lots.Update(lot)
}

// DeactivateLot hides a lot from search. Lots are never physically
// deleted; historical bookings keep referencing them.
func (s *ParkingService) DeactivateLot(id string) error {
	return s.Lots.SetStatus(id, db.LotStatusInactive)
}

func (s *ParkingService) UpdateSlot(slot *db.ParkingSlot) error {
	if !db.ValidSlotType(slot.SlotType) {
		return apperrors.NewValidation("unknown slot type %q", slot.SlotType)
	}
	return s.Slots.Update(slot)
}

func (s *ParkingService) DeleteSlot(id string) error {
	return s.Slots.Delete(id)
}

// CreateBulkSlots adds a run of sequentially numbered slots to a lot, for
// admin-driven inventory beyond the auto-provisioned set (e.g. ev_charging).
func (s *ParkingService) CreateBulkSlots(lotID, prefix, slotType string, startNumber, count int, hourlyRate float64) ([]db.ParkingSlot, error) {
	if !db.ValidSlotType(slotType) {
		return nil, apperrors.NewValidation("unknown slot type %q", slotType)
	}
	if count <= 0 {
		return nil, apperrors.NewValidation("count must be positive")
	}
	if _, err := s.Lots.GetByID(lotID); err != nil {
		return nil, err
	}

	slots := make([]db.ParkingSlot, 0, count)
	for i := 0; i < count; i++ {
		slots = append(slots, db.ParkingSlot{
			ID:           uuid.NewString(),
			ParkingLotID: lotID,
			SlotNumber:   fmt.Sprintf("%s%d", prefix, startNumber+i),
			SlotType:     slotType,
			HourlyRate:   hourlyRate,
			FloorLevel:   1,
			Status:       db.SlotStatusAvailable,
		})
	}
	if err := s.Slots.CreateBatch(slots); err != nil {
		return nil, apperrors.NewCollaborator("creating slots", err)
	}
	return slots, nil
}
