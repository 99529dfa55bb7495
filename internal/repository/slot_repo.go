package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"parkspot/internal/db"
	apperrors "parkspot/internal/errors"
)

type SlotRepository interface {
	CountByLot(lotID string) (int, error)
	CreateBatch(slots []db.ParkingSlot) error
	GetByID(id string) (*db.ParkingSlot, error)
	ListByLot(lotID string) ([]db.ParkingSlot, error)
	ListAvailableByType(lotID, slotType string) ([]db.ParkingSlot, error)
	UpdateStatus(id, status string) error
	Update(slot *db.ParkingSlot) error
	Delete(id string) error
}

type slotRepository struct {
	DB *sql.DB
}

func NewSlotRepository(database *sql.DB) SlotRepository {
	return &slotRepository{DB: database}
}

const slotColumns = `id, parking_lot_id, slot_number, slot_type, hourly_rate, floor_level, status, created_at, updated_at`

func scanSlot(row interface{ Scan(...interface{}) error }) (*db.ParkingSlot, error) {
	var slot db.ParkingSlot
	err := row.Scan(
		&slot.ID, &slot.ParkingLotID, &slot.SlotNumber, &slot.SlotType,
		&slot.HourlyRate, &slot.FloorLevel, &slot.Status,
		&slot.CreatedAt, &slot.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

func (r *slotRepository) CountByLot(lotID string) (int, error) {
	var count int
	err := r.DB.QueryRow(`SELECT COUNT(*) FROM parking_slots WHERE parking_lot_id = $1`, lotID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting slots for lot %s: %w", lotID, err)
	}
	return count, nil
}

func (r *slotRepository) CreateBatch(slots []db.ParkingSlot) error {
	if len(slots) == 0 {
		return nil
	}
	now := time.Now().UTC()

	var sb strings.Builder
	sb.WriteString(`INSERT INTO parking_slots (id, parking_lot_id, slot_number, slot_type, hourly_rate, floor_level, status, created_at, updated_at) VALUES `)
	args := make([]interface{}, 0, len(slots)*9)
	for i, slot := range slots {
		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * 9
		sb.WriteString(fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8, base+9))
		args = append(args,
			slot.ID, slot.ParkingLotID, slot.SlotNumber, slot.SlotType,
			slot.HourlyRate, slot.FloorLevel, slot.Status, now, now,
		)
	}

	if _, err := r.DB.Exec(sb.String(), args...); err != nil {
		return fmt.Errorf("error inserting slot batch: %w", err)
	}
	return nil
}

func (r *slotRepository) GetByID(id string) (*db.ParkingSlot, error) {
	query := fmt.Sprintf(`SELECT %s FROM parking_slots WHERE id = $1`, slotColumns)
	slot, err := scanSlot(r.DB.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFound("parking slot", id)
		}
		return nil, fmt.Errorf("error querying parking slot: %w", err)
	}
	return slot, nil
}

func (r *slotRepository) ListByLot(lotID string) ([]db.ParkingSlot, error) {
	query := fmt.Sprintf(`SELECT %s FROM parking_slots WHERE parking_lot_id = $1 ORDER BY slot_number`, slotColumns)
	return r.querySlots(query, lotID)
}

func (r *slotRepository) ListAvailableByType(lotID, slotType string) ([]db.ParkingSlot, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM parking_slots WHERE parking_lot_id = $1 AND slot_type = $2 AND status = $3 ORDER BY slot_number`,
		slotColumns)
	return r.querySlots(query, lotID, slotType, db.SlotStatusAvailable)
}

func (r *slotRepository) querySlots(query string, args ...interface{}) ([]db.ParkingSlot, error) {
	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying parking slots: %w", err)
	}
	defer rows.Close()

	var slots []db.ParkingSlot
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning parking slot: %w", err)
		}
		slots = append(slots, *slot)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating parking slot rows: %w", err)
	}
	return slots, nil
}

func (r *slotRepository) UpdateStatus(id, status string) error {
	result, err := r.DB.Exec(`UPDATE parking_slots SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("error updating slot status: %w", err)
	}
	return requireRow(result, "parking slot", id)
}

func (r *slotRepository) Update(slot *db.ParkingSlot) error {
	query := `
		UPDATE parking_slots
		SET slot_number = $2, slot_type = $3, hourly_rate = $4, floor_level = $5, status = $6, updated_at = NOW()
		WHERE id = $1`
	result, err := r.DB.Exec(query, slot.ID, slot.SlotNumber, slot.SlotType, slot.HourlyRate, slot.FloorLevel, slot.Status)
	if err != nil {
		return fmt.Errorf("error updating parking slot: %w", err)
	}
	return requireRow(result, "parking slot", slot.ID)
}

func (r *slotRepository) Delete(id string) error {
	result, err := r.DB.Exec(`DELETE FROM parking_slots WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting parking slot: %w", err)
	}
	return requireRow(result, "parking slot", id)
}
