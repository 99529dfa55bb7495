package repository

import (
	"database/sql"
	"fmt"

	"parkspot/internal/db"
	"parkspot/internal/entities"
)

type StatsRepository interface {
	GetDashboardStats() (*entities.DashboardStats, error)
}

type statsRepository struct {
	DB *sql.DB
}

func NewStatsRepository(database *sql.DB) StatsRepository {
	return &statsRepository{DB: database}
}

func (r *statsRepository) GetDashboardStats() (*entities.DashboardStats, error) {
	var stats entities.DashboardStats

	err := r.DB.QueryRow(`SELECT COUNT(*) FROM parking_lots WHERE status = $1`, db.LotStatusActive).Scan(&stats.TotalLots)
	if err != nil {
		return nil, fmt.Errorf("error counting parking lots: %w", err)
	}

	err = r.DB.QueryRow(`
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = $1),
		       COUNT(*) FILTER (WHERE status = $2)
		FROM parking_slots`,
		db.SlotStatusAvailable, db.SlotStatusOccupied,
	).Scan(&stats.TotalSlots, &stats.AvailableSlots, &stats.OccupiedSlots)
	if err != nil {
		return nil, fmt.Errorf("error counting parking slots: %w", err)
	}

	err = r.DB.QueryRow(`SELECT COUNT(*) FROM bookings WHERE status IN ($1, $2)`,
		db.BookingStatusConfirmed, db.BookingStatusActive).Scan(&stats.ActiveBookings)
	if err != nil {
		return nil, fmt.Errorf("error counting bookings: %w", err)
	}

	if stats.TotalSlots > 0 {
		stats.OccupancyRate = stats.OccupiedSlots * 100 / stats.TotalSlots
	}
	return &stats, nil
}
