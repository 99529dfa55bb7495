package service

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"parkspot/internal/db"
)

// JobService runs the periodic booking sweeps driven by cron.
type JobService struct {
	BookingSvc *BookingService
}

func NewJobService(bookingSvc *BookingService) *JobService {
	return &JobService{BookingSvc: bookingSvc}
}

// CompleteOverdueBookings completes active bookings whose end time has
// passed without an exit scan, freeing their slots. Failures on one
// booking do not stop the sweep.
func (s *JobService) CompleteOverdueBookings() error {
	overdue, err := s.BookingSvc.Bookings.ListActivePastEnd()
	if err != nil {
		return fmt.Errorf("sweep: failed to list overdue bookings: %w", err)
	}
	if len(overdue) == 0 {
		return nil
	}

	logrus.WithField("count", len(overdue)).Info("sweep: completing overdue bookings")
	for _, b := range overdue {
		if _, err := s.BookingSvc.UpdateStatus(b.ID, db.BookingStatusCompleted); err != nil {
			logrus.WithFields(logrus.Fields{
				"booking_id": b.ID,
				"error":      err,
			}).Error("sweep: failed to complete overdue booking")
		}
	}
	return nil
}
