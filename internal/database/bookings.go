package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"slotcal/internal/models"
)

const bookingColumns = `b.id, b.event_type_id, COALESCE(e.title, '(deleted)'),
               b.booker_name, b.booker_email, b.date, b.start_minute, b.end_minute, b.created_at`

// ReserveSlot checks for conflicting bookings and inserts in one immediate
// transaction. Of two concurrent attempts for overlapping intervals at most
// one commits; the loser gets ErrSlotTaken.
func (db *DB) ReserveSlot(ctx context.Context, booking *models.Booking) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var conflicts int
	queryCount := `SELECT COUNT(*) FROM bookings WHERE date = ? AND start_minute < ? AND end_minute > ?`
	err = tx.QueryRowContext(ctx, queryCount, booking.Date, booking.EndMinute, booking.StartMinute).Scan(&conflicts)
	if err != nil {
		return fmt.Errorf("failed to check conflicts in tx: %w", err)
	}
	if conflicts > 0 {
		return ErrSlotTaken
	}

	queryInsert := `INSERT INTO bookings (event_type_id, booker_name, booker_email, date, start_minute, end_minute, created_at)
                    VALUES (?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := tx.ExecContext(ctx, queryInsert,
		booking.EventTypeID,
		booking.BookerName,
		booking.BookerEmail,
		booking.Date,
		booking.StartMinute,
		booking.EndMinute,
		now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrSlotTaken
		}
		return fmt.Errorf("failed to insert booking in tx: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id in tx: %w", err)
	}
	booking.ID = id
	booking.CreatedAt = now

	return tx.Commit()
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + `
              FROM bookings b LEFT JOIN event_types e ON e.id = b.event_type_id
              WHERE b.id = ?`
	var b models.Booking
	err := db.QueryRowContext(ctx, query, id).Scan(
		&b.ID, &b.EventTypeID, &b.EventTitle, &b.BookerName, &b.BookerEmail,
		&b.Date, &b.StartMinute, &b.EndMinute, &b.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &b, nil
}

// GetBookingsByDate returns every booking whose start falls on the calendar
// date, ordered by start minute. These are the busy intervals for slot math.
func (db *DB) GetBookingsByDate(ctx context.Context, date string) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + `
              FROM bookings b LEFT JOIN event_types e ON e.id = b.event_type_id
              WHERE b.date = ? ORDER BY b.start_minute`
	return db.queryBookings(ctx, query, date)
}

func (db *DB) ListBookings(ctx context.Context) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + `
              FROM bookings b LEFT JOIN event_types e ON e.id = b.event_type_id
              ORDER BY b.date, b.start_minute`
	return db.queryBookings(ctx, query)
}

// DeleteBooking cancels a booking. Deleting an already-cancelled id returns
// ErrNotFound, which callers treat as already cancelled.
func (db *DB) DeleteBooking(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DB) queryBookings(ctx context.Context, query string, args ...any) ([]models.Booking, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []models.Booking
	for rows.Next() {
		var b models.Booking
		if err := rows.Scan(
			&b.ID, &b.EventTypeID, &b.EventTitle, &b.BookerName, &b.BookerEmail,
			&b.Date, &b.StartMinute, &b.EndMinute, &b.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}
