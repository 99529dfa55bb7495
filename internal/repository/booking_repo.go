package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"parkspot/internal/db"
	"parkspot/internal/entities"
	apperrors "parkspot/internal/errors"
)

type BookingRepository interface {
	Create(b *db.Booking) error
	GetByID(id string) (*db.Booking, error)
	GetByQRCode(token string) (*db.Booking, error)
	ListByUser(userID, status string) ([]db.Booking, error)
	List(filters entities.BookingFilters) ([]db.Booking, error)
	ListOverlappingSlotIDs(lotID string, start, end time.Time) ([]string, error)
	MarkActive(id string, at time.Time) error
	MarkCompleted(id string, at time.Time) error
	MarkCancelled(id string) error
	ListActivePastEnd() ([]db.Booking, error)
	CountByStatuses(statuses []string) (int, error)
}

type bookingRepository struct {
	DB *sql.DB
}

func NewBookingRepository(database *sql.DB) BookingRepository {
	return &bookingRepository{DB: database}
}

const bookingColumns = `id, user_id, parking_lot_id, parking_slot_id, vehicle_number, vehicle_type, start_time, end_time, actual_start_time, actual_end_time, total_amount, status, qr_code, contact_name, contact_email, contact_phone, stripe_session_id, created_at, updated_at`

func scanBooking(row interface{ Scan(...interface{}) error }) (*db.Booking, error) {
	var (
		b           db.Booking
		actualStart sql.NullTime
		actualEnd   sql.NullTime
	)
	err := row.Scan(
		&b.ID, &b.UserID, &b.ParkingLotID, &b.ParkingSlotID,
		&b.VehicleNumber, &b.VehicleType,
		&b.StartTime, &b.EndTime, &actualStart, &actualEnd,
		&b.TotalAmount, &b.Status, &b.QRCode,
		&b.ContactName, &b.ContactEmail, &b.ContactPhone, &b.StripeSessionID,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if actualStart.Valid {
		b.ActualStartTime = &actualStart.Time
	}
	if actualEnd.Valid {
		b.ActualEndTime = &actualEnd.Time
	}
	return &b, nil
}

func (r *bookingRepository) Create(b *db.Booking) error {
	query := `
		INSERT INTO bookings
		(id, user_id, parking_lot_id, parking_slot_id, vehicle_number, vehicle_type, start_time, end_time, total_amount, status, qr_code, contact_name, contact_email, contact_phone, stripe_session_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING created_at, updated_at`
	now := time.Now().UTC()
	return r.DB.QueryRow(query,
		b.ID, b.UserID, b.ParkingLotID, b.ParkingSlotID,
		b.VehicleNumber, b.VehicleType,
		b.StartTime, b.EndTime, b.TotalAmount, b.Status, b.QRCode,
		b.ContactName, b.ContactEmail, b.ContactPhone, b.StripeSessionID,
		now, now,
	).Scan(&b.CreatedAt, &b.UpdatedAt)
}

func (r *bookingRepository) GetByID(id string) (*db.Booking, error) {
	query := fmt.Sprintf(`SELECT %s FROM bookings WHERE id = $1`, bookingColumns)
	b, err := scanBooking(r.DB.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFound("booking", id)
		}
		return nil, fmt.Errorf("error querying booking: %w", err)
	}
	return b, nil
}

func (r *bookingRepository) GetByQRCode(token string) (*db.Booking, error) {
	query := fmt.Sprintf(`SELECT %s FROM bookings WHERE qr_code = $1`, bookingColumns)
	b, err := scanBooking(r.DB.QueryRow(query, token))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFound("booking", "qr token")
		}
		return nil, fmt.Errorf("error querying booking by qr code: %w", err)
	}
	return b, nil
}

func (r *bookingRepository) ListByUser(userID, status string) ([]db.Booking, error) {
	query := fmt.Sprintf(`SELECT %s FROM bookings WHERE user_id = $1`, bookingColumns)
	args := []interface{}{userID}
	if status != "" {
		args = append(args, status)
		query += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	query += ` ORDER BY start_time DESC`
	return r.queryBookings(query, args...)
}

func (r *bookingRepository) List(filters entities.BookingFilters) ([]db.Booking, error) {
	query := fmt.Sprintf(`SELECT %s FROM bookings WHERE 1=1`, bookingColumns)
	var args []interface{}

	if filters.Status != "" {
		args = append(args, filters.Status)
		query += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if filters.ParkingLotID != "" {
		args = append(args, filters.ParkingLotID)
		query += fmt.Sprintf(` AND parking_lot_id = $%d`, len(args))
	}
	if filters.StartDate != nil {
		args = append(args, *filters.StartDate)
		query += fmt.Sprintf(` AND start_time >= $%d`, len(args))
	}
	if filters.EndDate != nil {
		args = append(args, *filters.EndDate)
		query += fmt.Sprintf(` AND end_time <= $%d`, len(args))
	}
	query += ` ORDER BY created_at DESC`
	return r.queryBookings(query, args...)
}

// ListOverlappingSlotIDs returns the slots at a lot held by a confirmed or
// active booking whose window overlaps [start, end). Half-open semantics:
// two windows overlap iff each starts before the other ends.
func (r *bookingRepository) ListOverlappingSlotIDs(lotID string, start, end time.Time) ([]string, error) {
	query := `
		SELECT parking_slot_id FROM bookings
		WHERE parking_lot_id = $1
		  AND status = ANY($2)
		  AND start_time < $3
		  AND end_time > $4`
	rows, err := r.DB.Query(query, lotID,
		pq.Array([]string{db.BookingStatusConfirmed, db.BookingStatusActive}),
		end, start)
	if err != nil {
		return nil, fmt.Errorf("error querying overlapping bookings: %w", err)
	}
	defer rows.Close()

	var slotIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning overlapping booking: %w", err)
		}
		slotIDs = append(slotIDs, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating overlapping bookings: %w", err)
	}
	return slotIDs, nil
}

func (r *bookingRepository) MarkActive(id string, at time.Time) error {
	result, err := r.DB.Exec(`
		UPDATE bookings SET status = $2, actual_start_time = $3, updated_at = NOW()
		WHERE id = $1`, id, db.BookingStatusActive, at)
	if err != nil {
		return fmt.Errorf("error marking booking active: %w", err)
	}
	return requireRow(result, "booking", id)
}

func (r *bookingRepository) MarkCompleted(id string, at time.Time) error {
	result, err := r.DB.Exec(`
		UPDATE bookings SET status = $2, actual_end_time = $3, updated_at = NOW()
		WHERE id = $1`, id, db.BookingStatusCompleted, at)
	if err != nil {
		return fmt.Errorf("error marking booking completed: %w", err)
	}
	return requireRow(result, "booking", id)
}

func (r *bookingRepository) MarkCancelled(id string) error {
	result, err := r.DB.Exec(`
		UPDATE bookings SET status = $2, updated_at = NOW()
		WHERE id = $1`, id, db.BookingStatusCancelled)
	if err != nil {
		return fmt.Errorf("error marking booking cancelled: %w", err)
	}
	return requireRow(result, "booking", id)
}

func (r *bookingRepository) ListActivePastEnd() ([]db.Booking, error) {
	query := fmt.Sprintf(`SELECT %s FROM bookings WHERE status = $1 AND end_time < NOW()`, bookingColumns)
	return r.queryBookings(query, db.BookingStatusActive)
}

func (r *bookingRepository) CountByStatuses(statuses []string) (int, error) {
	var count int
	err := r.DB.QueryRow(`SELECT COUNT(*) FROM bookings WHERE status = ANY($1)`, pq.Array(statuses)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting bookings: %w", err)
	}
	return count, nil
}

func (r *bookingRepository) queryBookings(query string, args ...interface{}) ([]db.Booking, error) {
	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying bookings: %w", err)
	}
	defer rows.Close()

	var bookings []db.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning booking: %w", err)
		}
		bookings = append(bookings, *b)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating booking rows: %w", err)
	}
	return bookings, nil
}
