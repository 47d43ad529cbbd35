package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"slotcal/internal/models"

	"github.com/mattn/go-sqlite3"
)

func (db *DB) CreateEventType(ctx context.Context, et *models.EventType) error {
	query := `INSERT INTO event_types (title, description, duration_minutes, slug, created_at)
              VALUES (?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := db.ExecContext(ctx, query, et.Title, et.Description, et.DurationMinutes, et.Slug, now)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateSlug
		}
		return fmt.Errorf("failed to create event type: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	et.ID = id
	et.CreatedAt = now
	return nil
}

func (db *DB) GetEventType(ctx context.Context, id int64) (*models.EventType, error) {
	query := `SELECT id, title, description, duration_minutes, slug, created_at
              FROM event_types WHERE id = ?`
	var et models.EventType
	err := db.QueryRowContext(ctx, query, id).Scan(
		&et.ID, &et.Title, &et.Description, &et.DurationMinutes, &et.Slug, &et.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event type: %w", err)
	}
	return &et, nil
}

func (db *DB) GetEventTypeBySlug(ctx context.Context, slug string) (*models.EventType, error) {
	query := `SELECT id, title, description, duration_minutes, slug, created_at
              FROM event_types WHERE slug = ?`
	var et models.EventType
	err := db.QueryRowContext(ctx, query, slug).Scan(
		&et.ID, &et.Title, &et.Description, &et.DurationMinutes, &et.Slug, &et.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event type by slug: %w", err)
	}
	return &et, nil
}

func (db *DB) ListEventTypes(ctx context.Context) ([]models.EventType, error) {
	query := `SELECT id, title, description, duration_minutes, slug, created_at
              FROM event_types ORDER BY id`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list event types: %w", err)
	}
	defer rows.Close()

	var types []models.EventType
	for rows.Next() {
		var et models.EventType
		if err := rows.Scan(&et.ID, &et.Title, &et.Description, &et.DurationMinutes, &et.Slug, &et.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan event type: %w", err)
		}
		types = append(types, et)
	}
	return types, rows.Err()
}

// DeleteEventType removes the catalog row. Existing bookings keep their
// denormalized interval and survive the delete.
func (db *DB) DeleteEventType(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM event_types WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete event type: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) &&
		(sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey)
}
