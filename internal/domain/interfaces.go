package domain

import (
	"context"
	"time"

	"slotcal/internal/models"
)

// Store is the narrow data-access surface the services depend on. The SQLite
// implementation lives in internal/database; tests substitute mocks.
type Store interface {
	CreateEventType(ctx context.Context, et *models.EventType) error
	GetEventType(ctx context.Context, id int64) (*models.EventType, error)
	GetEventTypeBySlug(ctx context.Context, slug string) (*models.EventType, error)
	ListEventTypes(ctx context.Context) ([]models.EventType, error)
	DeleteEventType(ctx context.Context, id int64) error

	UpsertAvailability(ctx context.Context, w *models.AvailabilityWindow) error
	GetAvailability(ctx context.Context, weekday string) (*models.AvailabilityWindow, error)
	ListAvailability(ctx context.Context) ([]models.AvailabilityWindow, error)
	DeleteAvailability(ctx context.Context, weekday string) error

	ReserveSlot(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	GetBookingsByDate(ctx context.Context, date string) ([]models.Booking, error)
	ListBookings(ctx context.Context) ([]models.Booking, error)
	DeleteBooking(ctx context.Context, id int64) error
}

// SlotCache caches computed slot lists per (event type, date). A miss returns
// ok=false, never an error the caller must act on; availability reads are
// allowed to be stale because reservations re-validate at commit time.
type SlotCache interface {
	GetSlots(ctx context.Context, eventTypeID int64, date string) ([]int, bool, error)
	SetSlots(ctx context.Context, eventTypeID int64, date string, slots []int) error
	InvalidateDate(ctx context.Context, date string) error
	InvalidateAll(ctx context.Context) error
}

// EventPublisher pushes booking lifecycle events to in-process subscribers.
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// SyncWorker schedules export work for a booking change.
type SyncWorker interface {
	EnqueueUpsert(ctx context.Context, booking *models.Booking) error
	EnqueueDelete(ctx context.Context, bookingID int64) error
}

// Clock lets tests control "now" for past-date validation.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }
