package service

import (
	"fmt"
	"sort"
	"time"

	"parkspot/internal/db"
	"parkspot/internal/entities"
	apperrors "parkspot/internal/errors"
)

// In-memory repository fakes implementing the same contracts as the SQL
// repositories.

type fakeLotRepo struct {
	lots map[string]db.ParkingLot
}

func newFakeLotRepo(lots ...db.ParkingLot) *fakeLotRepo {
	r := &fakeLotRepo{lots: make(map[string]db.ParkingLot)}
	for _, lot := range lots {
		r.lots[lot.ID] = lot
	}
	return r
}

func (r *fakeLotRepo) Create(lot *db.ParkingLot) error {
	r.lots[lot.ID] = *lot
	return nil
}

func (r *fakeLotRepo) GetByID(id string) (*db.ParkingLot, error) {
	lot, ok := r.lots[id]
	if !ok {
		return nil, apperrors.NewNotFound("parking lot", id)
	}
	return &lot, nil
}

func (r *fakeLotRepo) List(filters entities.LotFilters) ([]db.ParkingLot, error) {
	var lots []db.ParkingLot
	for _, lot := range r.lots {
		if lot.Status == db.LotStatusActive {
			lots = append(lots, lot)
		}
	}
	return lots, nil
}

func (r *fakeLotRepo) Update(lot *db.ParkingLot) error {
	if _, ok := r.lots[lot.ID]; !ok {
		return apperrors.NewNotFound("parking lot", lot.ID)
	}
	r.lots[lot.ID] = *lot
	return nil
}

func (r *fakeLotRepo) SetStatus(id, status string) error {
	lot, ok := r.lots[id]
	if !ok {
		return apperrors.NewNotFound("parking lot", id)
	}
	lot.Status = status
	r.lots[id] = lot
	return nil
}

func (r *fakeLotRepo) DecrementAvailable(id string) error {
	lot, ok := r.lots[id]
	if !ok {
		return apperrors.NewNotFound("parking lot", id)
	}
	if lot.AvailableSlots > 0 {
		lot.AvailableSlots--
		r.lots[id] = lot
	}
	return nil
}

func (r *fakeLotRepo) IncrementAvailable(id string) error {
	lot, ok := r.lots[id]
	if !ok {
		return apperrors.NewNotFound("parking lot", id)
	}
	if lot.AvailableSlots < lot.TotalSlots {
		lot.AvailableSlots++
		r.lots[id] = lot
	}
	return nil
}

type fakeSlotRepo struct {
	slots map[string]db.ParkingSlot
}

func newFakeSlotRepo(slots ...db.ParkingSlot) *fakeSlotRepo {
	r := &fakeSlotRepo{slots: make(map[string]db.ParkingSlot)}
	for _, slot := range slots {
		r.slots[slot.ID] = slot
	}
	return r
}

func (r *fakeSlotRepo) CountByLot(lotID string) (int, error) {
	count := 0
	for _, slot := range r.slots {
		if slot.ParkingLotID == lotID {
			count++
		}
	}
	return count, nil
}

func (r *fakeSlotRepo) CreateBatch(slots []db.ParkingSlot) error {
	for _, slot := range slots {
		for _, existing := range r.slots {
			if existing.ParkingLotID == slot.ParkingLotID && existing.SlotNumber == slot.SlotNumber {
				return fmt.Errorf("duplicate slot number %s", slot.SlotNumber)
			}
		}
		r.slots[slot.ID] = slot
	}
	return nil
}

func (r *fakeSlotRepo) GetByID(id string) (*db.ParkingSlot, error) {
	slot, ok := r.slots[id]
	if !ok {
		return nil, apperrors.NewNotFound("parking slot", id)
	}
	return &slot, nil
}

func (r *fakeSlotRepo) ListByLot(lotID string) ([]db.ParkingSlot, error) {
	var slots []db.ParkingSlot
	for _, slot := range r.slots {
		if slot.ParkingLotID == lotID {
			slots = append(slots, slot)
		}
	}
	sortSlots(slots)
	return slots, nil
}

func (r *fakeSlotRepo) ListAvailableByType(lotID, slotType string) ([]db.ParkingSlot, error) {
	var slots []db.ParkingSlot
	for _, slot := range r.slots {
		if slot.ParkingLotID == lotID && slot.SlotType == slotType && slot.Status == db.SlotStatusAvailable {
			slots = append(slots, slot)
		}
	}
	sortSlots(slots)
	return slots, nil
}

func (r *fakeSlotRepo) UpdateStatus(id, status string) error {
	slot, ok := r.slots[id]
	if !ok {
		return apperrors.NewNotFound("parking slot", id)
	}
	slot.Status = status
	r.slots[id] = slot
	return nil
}

func (r *fakeSlotRepo) Update(slot *db.ParkingSlot) error {
	if _, ok := r.slots[slot.ID]; !ok {
		return apperrors.NewNotFound("parking slot", slot.ID)
	}
	r.slots[slot.ID] = *slot
	return nil
}

func (r *fakeSlotRepo) Delete(id string) error {
	if _, ok := r.slots[id]; !ok {
		return apperrors.NewNotFound("parking slot", id)
	}
	delete(r.slots, id)
	return nil
}

func sortSlots(slots []db.ParkingSlot) {
	sort.Slice(slots, func(i, j int) bool { return slots[i].SlotNumber < slots[j].SlotNumber })
}

type fakeBookingRepo struct {
	bookings   map[string]db.Booking
	overlapErr error
}

func newFakeBookingRepo(bookings ...db.Booking) *fakeBookingRepo {
	r := &fakeBookingRepo{bookings: make(map[string]db.Booking)}
	for _, b := range bookings {
		r.bookings[b.ID] = b
	}
	return r
}

func (r *fakeBookingRepo) Create(b *db.Booking) error {
	b.CreatedAt = time.Now().UTC()
	b.UpdatedAt = b.CreatedAt
	r.bookings[b.ID] = *b
	return nil
}

func (r *fakeBookingRepo) GetByID(id string) (*db.Booking, error) {
	b, ok := r.bookings[id]
	if !ok {
		return nil, apperrors.NewNotFound("booking", id)
	}
	return &b, nil
}

func (r *fakeBookingRepo) GetByQRCode(token string) (*db.Booking, error) {
	for _, b := range r.bookings {
		if b.QRCode == token {
			copied := b
			return &copied, nil
		}
	}
	return nil, apperrors.NewNotFound("booking", "qr token")
}

func (r *fakeBookingRepo) ListByUser(userID, status string) ([]db.Booking, error) {
	var bookings []db.Booking
	for _, b := range r.bookings {
		if b.UserID == userID && (status == "" || b.Status == status) {
			bookings = append(bookings, b)
		}
	}
	return bookings, nil
}

func (r *fakeBookingRepo) List(filters entities.BookingFilters) ([]db.Booking, error) {
	var bookings []db.Booking
	for _, b := range r.bookings {
		if filters.Status != "" && b.Status != filters.Status {
			continue
		}
		if filters.ParkingLotID != "" && b.ParkingLotID != filters.ParkingLotID {
			continue
		}
		bookings = append(bookings, b)
	}
	return bookings, nil
}

func (r *fakeBookingRepo) ListOverlappingSlotIDs(lotID string, start, end time.Time) ([]string, error) {
	if r.overlapErr != nil {
		return nil, r.overlapErr
	}
	var slotIDs []string
	for _, b := range r.bookings {
		if b.ParkingLotID != lotID {
			continue
		}
		if b.Status != db.BookingStatusConfirmed && b.Status != db.BookingStatusActive {
			continue
		}
		if b.StartTime.Before(end) && b.EndTime.After(start) {
			slotIDs = append(slotIDs, b.ParkingSlotID)
		}
	}
	return slotIDs, nil
}

func (r *fakeBookingRepo) MarkActive(id string, at time.Time) error {
	b, ok := r.bookings[id]
	if !ok {
		return apperrors.NewNotFound("booking", id)
	}
	b.Status = db.BookingStatusActive
	b.ActualStartTime = &at
	r.bookings[id] = b
	return nil
}

func (r *fakeBookingRepo) MarkCompleted(id string, at time.Time) error {
	b, ok := r.bookings[id]
	if !ok {
		return apperrors.NewNotFound("booking", id)
	}
	b.Status = db.BookingStatusCompleted
	b.ActualEndTime = &at
	r.bookings[id] = b
	return nil
}

func (r *fakeBookingRepo) MarkCancelled(id string) error {
	b, ok := r.bookings[id]
	if !ok {
		return apperrors.NewNotFound("booking", id)
	}
	b.Status = db.BookingStatusCancelled
	r.bookings[id] = b
	return nil
}

func (r *fakeBookingRepo) ListActivePastEnd() ([]db.Booking, error) {
	var bookings []db.Booking
	now := time.Now()
	for _, b := range r.bookings {
		if b.Status == db.BookingStatusActive && b.EndTime.Before(now) {
			bookings = append(bookings, b)
		}
	}
	return bookings, nil
}

func (r *fakeBookingRepo) CountByStatuses(statuses []string) (int, error) {
	count := 0
	for _, b := range r.bookings {
		for _, status := range statuses {
			if b.Status == status {
				count++
				break
			}
		}
	}
	return count, nil
}

type fakePayments struct {
	sessions  int
	refunds   []string
	createErr error
	refundErr error
}

func (p *fakePayments) CreateCheckoutSession(amountCents int64, currency, description, customerEmail string) (string, string, error) {
	if p.createErr != nil {
		return "", "", p.createErr
	}
	p.sessions++
	id := fmt.Sprintf("cs_test_%d", p.sessions)
	return "https://checkout.example/" + id, id, nil
}

func (p *fakePayments) Refund(sessionID string) error {
	if p.refundErr != nil {
		return p.refundErr
	}
	p.refunds = append(p.refunds, sessionID)
	return nil
}

type fakeNotifier struct {
	created   []db.Booking
	cancelled []db.Booking
}

func (n *fakeNotifier) BookingCreated(b *db.Booking)   { n.created = append(n.created, *b) }
func (n *fakeNotifier) BookingCancelled(b *db.Booking) { n.cancelled = append(n.cancelled, *b) }
