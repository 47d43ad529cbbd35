package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"slotcal/internal/models"
)

// UpsertAvailability replaces the window for a weekday entirely; old and new
// bounds are never merged.
func (db *DB) UpsertAvailability(ctx context.Context, w *models.AvailabilityWindow) error {
	query := `INSERT INTO availability (day_of_week, start_minute, end_minute, updated_at)
              VALUES (?, ?, ?, ?)
              ON CONFLICT(day_of_week) DO UPDATE SET
                  start_minute = excluded.start_minute,
                  end_minute = excluded.end_minute,
                  updated_at = excluded.updated_at`
	now := time.Now()
	if _, err := db.ExecContext(ctx, query, w.Weekday, w.StartMinute, w.EndMinute, now); err != nil {
		return fmt.Errorf("failed to upsert availability: %w", err)
	}
	w.UpdatedAt = now
	return nil
}

func (db *DB) GetAvailability(ctx context.Context, weekday string) (*models.AvailabilityWindow, error) {
	query := `SELECT day_of_week, start_minute, end_minute, updated_at
              FROM availability WHERE day_of_week = ?`
	var w models.AvailabilityWindow
	err := db.QueryRowContext(ctx, query, weekday).Scan(&w.Weekday, &w.StartMinute, &w.EndMinute, &w.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get availability: %w", err)
	}
	return &w, nil
}

func (db *DB) ListAvailability(ctx context.Context) ([]models.AvailabilityWindow, error) {
	query := `SELECT day_of_week, start_minute, end_minute, updated_at FROM availability`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list availability: %w", err)
	}
	defer rows.Close()

	var windows []models.AvailabilityWindow
	for rows.Next() {
		var w models.AvailabilityWindow
		if err := rows.Scan(&w.Weekday, &w.StartMinute, &w.EndMinute, &w.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan availability: %w", err)
		}
		windows = append(windows, w)
	}
	return windows, rows.Err()
}

func (db *DB) DeleteAvailability(ctx context.Context, weekday string) error {
	result, err := db.ExecContext(ctx, `DELETE FROM availability WHERE day_of_week = ?`, weekday)
	if err != nil {
		return fmt.Errorf("failed to delete availability: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
