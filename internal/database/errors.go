package database

import "errors"

var (
	// ErrNotFound is returned when an event type, availability window or
	// booking does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateSlug is returned when an event type slug is already taken.
	ErrDuplicateSlug = errors.New("slug already exists")

	// ErrSlotTaken is returned when a reservation loses to a conflicting
	// booking, either at the in-transaction check or at the unique index.
	ErrSlotTaken = errors.New("slot is no longer available")

	// ErrInvalidInput is returned for malformed or missing fields.
	ErrInvalidInput = errors.New("invalid input")

	// ErrPastDate is returned when a reservation starts in the past.
	ErrPastDate = errors.New("start time is in the past")
)
