package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"parkspot/internal/db"
	"parkspot/internal/entities"
	apperrors "parkspot/internal/errors"
)

type LotRepository interface {
	Create(lot *db.ParkingLot) error
	GetByID(id string) (*db.ParkingLot, error)
	List(filters entities.LotFilters) ([]db.ParkingLot, error)
	Update(lot *db.ParkingLot) error
	SetStatus(id, status string) error
	DecrementAvailable(id string) error
	IncrementAvailable(id string) error
}

type lotRepository struct {
	DB *sql.DB
}

func NewLotRepository(database *sql.DB) LotRepository {
	return &lotRepository{DB: database}
}

const lotColumns = `id, name, address, city, state, latitude, longitude, total_slots, available_slots, hourly_rate, status, created_at, updated_at`

func scanLot(row interface{ Scan(...interface{}) error }) (*db.ParkingLot, error) {
	var lot db.ParkingLot
	err := row.Scan(
		&lot.ID, &lot.Name, &lot.Address, &lot.City, &lot.State,
		&lot.Latitude, &lot.Longitude,
		&lot.TotalSlots, &lot.AvailableSlots, &lot.HourlyRate,
		&lot.Status, &lot.CreatedAt, &lot.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &lot, nil
}

func (r *lotRepository) Create(lot *db.ParkingLot) error {
	query := `
		INSERT INTO parking_lots
		(id, name, address, city, state, latitude, longitude, total_slots, available_slots, hourly_rate, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at, updated_at`
	now := time.Now().UTC()
	return r.DB.QueryRow(query,
		lot.ID, lot.Name, lot.Address, lot.City, lot.State,
		lot.Latitude, lot.Longitude,
		lot.TotalSlots, lot.AvailableSlots, lot.HourlyRate,
		lot.Status, now, now,
	).Scan(&lot.CreatedAt, &lot.UpdatedAt)
}

func (r *lotRepository) GetByID(id string) (*db.ParkingLot, error) {
	query := fmt.Sprintf(`SELECT %s FROM parking_lots WHERE id = $1`, lotColumns)
	lot, err := scanLot(r.DB.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFound("parking lot", id)
		}
		return nil, fmt.Errorf("error querying parking lot: %w", err)
	}
	return lot, nil
}

func (r *lotRepository) List(filters entities.LotFilters) ([]db.ParkingLot, error) {
	query := fmt.Sprintf(`SELECT %s FROM parking_lots WHERE status = $1`, lotColumns)
	args := []interface{}{db.LotStatusActive}

	if filters.City != "" {
		args = append(args, "%"+filters.City+"%")
		query += fmt.Sprintf(` AND city ILIKE $%d`, len(args))
	}
	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		query += fmt.Sprintf(` AND (name ILIKE $%d OR address ILIKE $%d)`, len(args), len(args))
	}
	query += ` ORDER BY name`

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying parking lots: %w", err)
	}
	defer rows.Close()

	var lots []db.ParkingLot
	for rows.Next() {
		lot, err := scanLot(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning parking lot: %w", err)
		}
		lots = append(lots, *lot)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating parking lot rows: %w", err)
	}
	return lots, nil
}

func (r *lotRepository) Update(lot *db.ParkingLot) error {
	query := `
		UPDATE parking_lots
		SET name = $2, address = $3, city = $4, state = $5, latitude = $6, longitude = $7,
		    total_slots = $8, hourly_rate = $9, status = $10, updated_at = NOW()
		WHERE id = $1`
	result, err := r.DB.Exec(query,
		lot.ID, lot.Name, lot.Address, lot.City, lot.State,
		lot.Latitude, lot.Longitude, lot.TotalSlots, lot.HourlyRate, lot.Status,
	)
	if err != nil {
		return fmt.Errorf("error updating parking lot: %w", err)
	}
	return requireRow(result, "parking lot", lot.ID)
}

func (r *lotRepository) SetStatus(id, status string) error {
	result, err := r.DB.Exec(`UPDATE parking_lots SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("error updating parking lot status: %w", err)
	}
	return requireRow(result, "parking lot", id)
}

// DecrementAvailable takes one off the lot's cached free-count, never past
// zero. Decrementing an already-zero counter is not an error: the counter
// is advisory, the overlap check is what gates bookings.
func (r *lotRepository) DecrementAvailable(id string) error {
	_, err := r.DB.Exec(`
		UPDATE parking_lots
		SET available_slots = available_slots - 1, updated_at = NOW()
		WHERE id = $1 AND available_slots > 0`, id)
	if err != nil {
		return fmt.Errorf("error decrementing available slots: %w", err)
	}
	return nil
}

// IncrementAvailable restores one to the cached free-count, clamped to
// total_slots.
func (r *lotRepository) IncrementAvailable(id string) error {
	_, err := r.DB.Exec(`
		UPDATE parking_lots
		SET available_slots = LEAST(available_slots + 1, total_slots), updated_at = NOW()
		WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error incrementing available slots: %w", err)
	}
	return nil
}

func requireRow(result sql.Result, entity, id string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperrors.NewNotFound(entity, id)
	}
	return nil
}
