package service

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"parkspot/internal/db"
	"parkspot/internal/entities"
	apperrors "parkspot/internal/errors"
	"parkspot/internal/qrcode"
	"parkspot/internal/repository"
	"parkspot/internal/utils"
)

// Payments is the external payment collaborator. A nil Payments means the
// service runs without one; payment failures never fail a booking.
type Payments interface {
	CreateCheckoutSession(amountCents int64, currency, description, customerEmail string) (url string, sessionID string, err error)
	Refund(sessionID string) error
}

// Notifier delivers booking confirmations and cancellation notices.
type Notifier interface {
	BookingCreated(b *db.Booking)
	BookingCancelled(b *db.Booking)
}

// BookingService drives the booking lifecycle: confirmed on creation,
// active on entry, completed on exit, cancelled only from confirmed. Slot
// status and the lot's cached free-count are maintained as side effects.
//
// The store offers no multi-row transactions, so each operation sequences
// its writes with the booking-row write last: a collaborator failure can
// leave a slot or counter touched, but never a transitioned booking with
// stale surroundings.
type BookingService struct {
	Lots     repository.LotRepository
	Slots    repository.SlotRepository
	Bookings repository.BookingRepository

	Payment  Payments
	Notify   Notifier
	Currency string

	now func() time.Time
}

func NewBookingService(lots repository.LotRepository, slots repository.SlotRepository, bookings repository.BookingRepository) *BookingService {
	return &BookingService{
		Lots:     lots,
		Slots:    slots,
		Bookings: bookings,
		Currency: "usd",
		now:      time.Now,
	}
}

// Create reserves a slot for the requested window. It does not re-run the
// overlap check; callers are expected to have picked the slot through
// FindAvailable moments earlier, and the window between the two calls is a
// known race (see DESIGN.md). Returns the booking and, when a payment
// collaborator is configured, a checkout URL.
func (s *BookingService) Create(req entities.BookingRequest) (*db.Booking, string, error) {
	if !req.EndTime.After(req.StartTime) {
		return nil, "", apperrors.NewValidation("end_time must be after start_time")
	}
	if req.UserID == "" || req.VehicleNumber == "" {
		return nil, "", apperrors.NewValidation("user_id and vehicle_number are required")
	}
	vehicleType := utils.NormalizeVehicleType(req.VehicleType)
	if vehicleType == "" {
		return nil, "", apperrors.NewValidation("unknown vehicle type %q", req.VehicleType)
	}

	slot, err := s.Slots.GetByID(req.ParkingSlotID)
	if err != nil {
		return nil, "", err
	}
	if slot.ParkingLotID != req.ParkingLotID {
		return nil, "", apperrors.NewValidation("slot %s does not belong to lot %s", req.ParkingSlotID, req.ParkingLotID)
	}
	lot, err := s.Lots.GetByID(req.ParkingLotID)
	if err != nil {
		return nil, "", err
	}

	rate := slot.HourlyRate
	if rate <= 0 {
		rate = lot.HourlyRate
	}
	hours := int(math.Ceil(req.EndTime.Sub(req.StartTime).Hours()))
	if hours < 1 {
		hours = 1
	}

	booking := &db.Booking{
		ID:            uuid.NewString(),
		UserID:        req.UserID,
		ParkingLotID:  lot.ID,
		ParkingSlotID: slot.ID,
		VehicleNumber: req.VehicleNumber,
		VehicleType:   vehicleType,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		TotalAmount:   float64(hours) * rate,
		Status:        db.BookingStatusConfirmed,
		ContactName:   req.ContactName,
		ContactEmail:  req.ContactEmail,
		ContactPhone:  req.ContactPhone,
	}
	token, err := qrcode.Encode(booking)
	if err != nil {
		return nil, "", apperrors.NewCollaborator("encoding qr token", err)
	}
	booking.QRCode = token

	// The checkout session is created up front so its id is stored with
	// the booking; cancellation refunds by that id.
	var checkoutURL string
	if s.Payment != nil {
		url, sessionID, err := s.Payment.CreateCheckoutSession(
			int64(booking.TotalAmount*100), s.Currency,
			"Parking at "+lot.Name+", slot "+slot.SlotNumber,
			req.ContactEmail)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"booking_id": booking.ID,
				"error":      err,
			}).Error("checkout session creation failed")
		} else {
			checkoutURL = url
			booking.StripeSessionID = sessionID
		}
	}

	if err := s.Slots.UpdateStatus(slot.ID, db.SlotStatusReserved); err != nil {
		return nil, "", apperrors.NewCollaborator("reserving slot", err)
	}
	if err := s.Lots.DecrementAvailable(lot.ID); err != nil {
		return nil, "", apperrors.NewCollaborator("updating lot counter", err)
	}
	if err := s.Bookings.Create(booking); err != nil {
		return nil, "", apperrors.NewCollaborator("creating booking", err)
	}

	logrus.WithFields(logrus.Fields{
		"booking_id":     booking.ID,
		"parking_lot_id": lot.ID,
		"slot_number":    slot.SlotNumber,
		"total_amount":   booking.TotalAmount,
	}).Info("booking created")

	if s.Notify != nil {
		s.Notify.BookingCreated(booking)
	}
	return booking, checkoutURL, nil
}

// Cancel voids a confirmed booking. When userID is non-empty the booking
// must belong to that user. Cancellation frees the slot, restores the
// lot's free-count and refunds the checkout session when one was stored;
// a refund failure is logged, not surfaced.
func (s *BookingService) Cancel(bookingID, userID string) (*db.Booking, error) {
	booking, err := s.Bookings.GetByID(bookingID)
	if err != nil {
		return nil, err
	}
	if userID != "" && booking.UserID != userID {
		return nil, apperrors.NewNotFound("booking", bookingID)
	}
	if booking.Status != db.BookingStatusConfirmed {
		return nil, apperrors.NewTransition(apperrors.ReasonNotCancellable,
			"only confirmed bookings can be cancelled, booking is %s", booking.Status)
	}

	if err := s.Slots.UpdateStatus(booking.ParkingSlotID, db.SlotStatusAvailable); err != nil {
		return nil, apperrors.NewCollaborator("releasing slot", err)
	}
	if err := s.Lots.IncrementAvailable(booking.ParkingLotID); err != nil {
		return nil, apperrors.NewCollaborator("updating lot counter", err)
	}
	if err := s.Bookings.MarkCancelled(booking.ID); err != nil {
		return nil, apperrors.NewCollaborator("cancelling booking", err)
	}
	booking.Status = db.BookingStatusCancelled

	logrus.WithField("booking_id", booking.ID).Info("booking cancelled")
	if s.Payment != nil && booking.StripeSessionID != "" {
		if err := s.Payment.Refund(booking.StripeSessionID); err != nil {
			logrus.WithFields(logrus.Fields{
				"booking_id":        booking.ID,
				"stripe_session_id": booking.StripeSessionID,
				"error":             err,
			}).Error("refund failed")
		}
	}
	if s.Notify != nil {
		s.Notify.BookingCancelled(booking)
	}
	return booking, nil
}

// ValidateEntry admits a vehicle: the token must decode, match a confirmed
// booking, and be presented inside [start_time, end_time). On success the
// booking turns active and the slot occupied.
func (s *BookingService) ValidateEntry(token string) (*db.Booking, error) {
	booking, err := s.lookupByToken(token)
	if err != nil {
		return nil, err
	}

	switch booking.Status {
	case db.BookingStatusConfirmed:
	case db.BookingStatusActive, db.BookingStatusCompleted:
		return nil, apperrors.NewTransition(apperrors.ReasonAlreadyUsed, "qr token already used for entry")
	default:
		return nil, apperrors.NewTransition(apperrors.ReasonNotConfirmed, "booking is not confirmed")
	}

	now := s.now()
	if now.Before(booking.StartTime) {
		return nil, apperrors.NewTransition(apperrors.ReasonNotYetStarted, "booking window has not started yet")
	}
	if !now.Before(booking.EndTime) {
		return nil, apperrors.NewTransition(apperrors.ReasonExpired, "booking window has expired")
	}

	if err := s.Slots.UpdateStatus(booking.ParkingSlotID, db.SlotStatusOccupied); err != nil {
		return nil, apperrors.NewCollaborator("occupying slot", err)
	}
	if err := s.Bookings.MarkActive(booking.ID, now); err != nil {
		return nil, apperrors.NewCollaborator("activating booking", err)
	}
	booking.Status = db.BookingStatusActive
	booking.ActualStartTime = &now

	logrus.WithField("booking_id", booking.ID).Info("entry validated, booking active")
	return booking, nil
}

// ValidateExit releases a vehicle: the token must match an active booking.
// The slot goes back to available, but the lot's free-count is not
// restored; the counter tracks "slots not pending or active" and was only
// given back on cancellation (see DESIGN.md).
func (s *BookingService) ValidateExit(token string) (*db.Booking, error) {
	booking, err := s.lookupByToken(token)
	if err != nil {
		return nil, err
	}
	if booking.Status != db.BookingStatusActive {
		return nil, apperrors.NewTransition(apperrors.ReasonNotActive, "no active booking for this qr token")
	}

	now := s.now()
	if err := s.Slots.UpdateStatus(booking.ParkingSlotID, db.SlotStatusAvailable); err != nil {
		return nil, apperrors.NewCollaborator("releasing slot", err)
	}
	if err := s.Bookings.MarkCompleted(booking.ID, now); err != nil {
		return nil, apperrors.NewCollaborator("completing booking", err)
	}
	booking.Status = db.BookingStatusCompleted
	booking.ActualEndTime = &now

	logrus.WithField("booking_id", booking.ID).Info("exit validated, booking completed")
	return booking, nil
}

// UpdateStatus is the admin-driven transition. It honors the same state
// machine and slot side effects as the QR-driven path but skips the
// booking-window check; the lot counter moves only for a cancellation.
func (s *BookingService) UpdateStatus(bookingID, status string) (*db.Booking, error) {
	booking, err := s.Bookings.GetByID(bookingID)
	if err != nil {
		return nil, err
	}
	now := s.now()

	switch status {
	case db.BookingStatusActive:
		if booking.Status != db.BookingStatusConfirmed {
			return nil, apperrors.NewTransition(apperrors.ReasonNotConfirmed,
				"cannot activate a %s booking", booking.Status)
		}
		if err := s.Slots.UpdateStatus(booking.ParkingSlotID, db.SlotStatusOccupied); err != nil {
			return nil, apperrors.NewCollaborator("occupying slot", err)
		}
		if err := s.Bookings.MarkActive(booking.ID, now); err != nil {
			return nil, apperrors.NewCollaborator("activating booking", err)
		}
		booking.ActualStartTime = &now

	case db.BookingStatusCompleted:
		if booking.Status != db.BookingStatusActive {
			return nil, apperrors.NewTransition(apperrors.ReasonNotActive,
				"cannot complete a %s booking", booking.Status)
		}
		if err := s.Slots.UpdateStatus(booking.ParkingSlotID, db.SlotStatusAvailable); err != nil {
			return nil, apperrors.NewCollaborator("releasing slot", err)
		}
		if err := s.Bookings.MarkCompleted(booking.ID, now); err != nil {
			return nil, apperrors.NewCollaborator("completing booking", err)
		}
		booking.ActualEndTime = &now

	case db.BookingStatusCancelled:
		return s.Cancel(bookingID, "")

	case db.BookingStatusConfirmed:
		return nil, apperrors.NewTransition(apperrors.ReasonIllegalTarget,
			"bookings cannot be moved back to confirmed")

	default:
		return nil, apperrors.NewValidation("unknown booking status %q", status)
	}

	booking.Status = status
	logrus.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"status":     status,
	}).Info("booking status updated")
	return booking, nil
}

func (s *BookingService) ListUserBookings(userID, status string) ([]db.Booking, error) {
	return s.Bookings.ListByUser(userID, status)
}

func (s *BookingService) ListBookings(filters entities.BookingFilters) ([]db.Booking, error) {
	return s.Bookings.List(filters)
}

func (s *BookingService) GetBooking(id string) (*db.Booking, error) {
	return s.Bookings.GetByID(id)
}

// lookupByToken shape-validates the token, then confirms it against the
// stored booking. The token itself is unsigned; the stored row is the
// authority.
func (s *BookingService) lookupByToken(token string) (*db.Booking, error) {
	payload, err := qrcode.Decode(token)
	if err != nil {
		return nil, err
	}
	booking, err := s.Bookings.GetByQRCode(token)
	if err != nil {
		return nil, err
	}
	if booking.ID != payload.BookingID {
		return nil, apperrors.ErrMalformedToken
	}
	return booking, nil
}
