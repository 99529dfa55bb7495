package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parkspot/internal/db"
)

func TestCompleteOverdueBookings(t *testing.T) {
	f := newBookingFixture(t)
	start := time.Now().Add(-3 * time.Hour)
	booking, _, err := f.svc.Create(f.createRequest(start, start.Add(2*time.Hour)))
	require.NoError(t, err)
	_, err = f.svc.UpdateStatus(booking.ID, db.BookingStatusActive)
	require.NoError(t, err)

	job := NewJobService(f.svc)
	require.NoError(t, job.CompleteOverdueBookings())

	stored, err := f.bookings.GetByID(booking.ID)
	require.NoError(t, err)
	assert.Equal(t, db.BookingStatusCompleted, stored.Status)
	assert.NotNil(t, stored.ActualEndTime)
	assert.Equal(t, db.SlotStatusAvailable, f.slotStatus(t, "s1"))
}

func TestCompleteOverdueBookingsSkipsCurrentOnes(t *testing.T) {
	f := newBookingFixture(t)
	start := time.Now().Add(-time.Hour)
	booking, _, err := f.svc.Create(f.createRequest(start, start.Add(3*time.Hour)))
	require.NoError(t, err)
	_, err = f.svc.UpdateStatus(booking.ID, db.BookingStatusActive)
	require.NoError(t, err)

	job := NewJobService(f.svc)
	require.NoError(t, job.CompleteOverdueBookings())

	stored, err := f.bookings.GetByID(booking.ID)
	require.NoError(t, err)
	assert.Equal(t, db.BookingStatusActive, stored.Status)
}
