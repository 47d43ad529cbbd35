package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"slotcal/internal/database"
	"slotcal/internal/domain"
	"slotcal/internal/events"
	"slotcal/internal/metrics"
	"slotcal/internal/models"
	"slotcal/internal/timeutil"

	"github.com/rs/zerolog"
)

// BookingCoordinator owns the reservation path. It validates a request
// against the computed slot list and then hands the insert to the store,
// which re-checks for conflicts inside the transaction. The computed list is
// advisory; the transaction is authoritative.
type BookingCoordinator struct {
	store       domain.Store
	engine      *SlotEngine
	cache       domain.SlotCache
	eventBus    domain.EventPublisher
	exportQueue domain.SyncWorker
	clock       domain.Clock
	logger      *zerolog.Logger
}

func NewBookingCoordinator(store domain.Store, engine *SlotEngine, cache domain.SlotCache, eventBus domain.EventPublisher, exportQueue domain.SyncWorker, clock domain.Clock, logger *zerolog.Logger) *BookingCoordinator {
	if clock == nil {
		clock = domain.ClockFunc(time.Now)
	}
	return &BookingCoordinator{
		store:       store,
		engine:      engine,
		cache:       cache,
		eventBus:    eventBus,
		exportQueue: exportQueue,
		clock:       clock,
		logger:      logger,
	}
}

// ReservationRequest carries the booker-supplied fields of a reservation.
// StartTime is a "YYYY-MM-DD HH:MM" instant in the service time zone.
type ReservationRequest struct {
	EventTypeID int64
	BookerName  string
	BookerEmail string
	StartTime   string
}

// Reserve validates the request, confirms the start time is an open slot and
// commits the booking. Two callers racing for the same slot both pass the
// slot check here; the store's transactional re-check picks exactly one
// winner and the loser gets ErrSlotTaken.
func (c *BookingCoordinator) Reserve(ctx context.Context, req ReservationRequest) (*models.Booking, error) {
	name := strings.TrimSpace(req.BookerName)
	email := strings.TrimSpace(req.BookerEmail)
	if name == "" || email == "" {
		return nil, database.ErrInvalidInput
	}

	et, err := c.store.GetEventType(ctx, req.EventTypeID)
	if err != nil {
		return nil, err
	}

	loc := c.engine.Location()
	date, startMinute, err := timeutil.SplitInstant(req.StartTime, loc)
	if err != nil {
		return nil, database.ErrInvalidInput
	}

	if err := c.validateDate(date, loc); err != nil {
		return nil, err
	}

	slots, err := c.engine.ComputeSlots(ctx, date, et.ID)
	if err != nil {
		return nil, err
	}
	if !containsSlot(slots, startMinute) {
		metrics.IncReservationConflict()
		return nil, database.ErrSlotTaken
	}

	booking := &models.Booking{
		EventTypeID: et.ID,
		EventTitle:  et.Title,
		BookerName:  name,
		BookerEmail: email,
		Date:        date,
		StartMinute: startMinute,
		EndMinute:   startMinute + et.DurationMinutes,
	}

	if err := c.store.ReserveSlot(ctx, booking); err != nil {
		if errors.Is(err, database.ErrSlotTaken) {
			metrics.IncReservationConflict()
		}
		return nil, err
	}

	metrics.IncReservation()
	c.invalidate(ctx, date)
	c.publishEvent(events.EventBookingCreated, booking)
	c.enqueueExport(ctx, booking, false)

	return booking, nil
}

// Cancel removes a booking and frees its slot. Cancelling an unknown booking
// returns ErrNotFound.
func (c *BookingCoordinator) Cancel(ctx context.Context, bookingID int64) error {
	booking, err := c.store.GetBooking(ctx, bookingID)
	if err != nil {
		return err
	}

	if err := c.store.DeleteBooking(ctx, bookingID); err != nil {
		return err
	}

	metrics.IncCancellation()
	c.invalidate(ctx, booking.Date)
	c.publishEvent(events.EventBookingCancelled, booking)
	c.enqueueExport(ctx, booking, true)

	return nil
}

func (c *BookingCoordinator) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	return c.store.GetBooking(ctx, id)
}

func (c *BookingCoordinator) ListBookings(ctx context.Context) ([]models.Booking, error) {
	return c.store.ListBookings(ctx)
}

// validateDate rejects dates strictly before today in the service time zone.
func (c *BookingCoordinator) validateDate(date string, loc *time.Location) error {
	day, err := timeutil.ParseDate(date, loc)
	if err != nil {
		return database.ErrInvalidInput
	}

	now := c.clock.Now().In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	if day.Before(today) {
		return database.ErrPastDate
	}
	return nil
}

func (c *BookingCoordinator) invalidate(ctx context.Context, date string) {
	if c.cache == nil {
		return
	}
	if err := c.cache.InvalidateDate(ctx, date); err != nil && c.logger != nil {
		c.logger.Warn().Err(err).Str("date", date).Msg("slot cache invalidation failed")
	}
}

func (c *BookingCoordinator) publishEvent(eventType string, booking *models.Booking) {
	if c.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID:   booking.ID,
		EventTypeID: booking.EventTypeID,
		EventTitle:  booking.EventTitle,
		BookerName:  booking.BookerName,
		BookerEmail: booking.BookerEmail,
		Date:        booking.Date,
		StartMinute: booking.StartMinute,
		EndMinute:   booking.EndMinute,
	}

	if err := c.eventBus.PublishJSON(eventType, payload); err != nil && c.logger != nil {
		c.logger.Error().Err(err).Str("event_type", eventType).Int64("booking_id", booking.ID).Msg("publish event error")
	}
}

func (c *BookingCoordinator) enqueueExport(ctx context.Context, booking *models.Booking, deleted bool) {
	if c.exportQueue == nil {
		return
	}

	var err error
	if deleted {
		err = c.exportQueue.EnqueueDelete(ctx, booking.ID)
	} else {
		err = c.exportQueue.EnqueueUpsert(ctx, booking)
	}
	if err != nil && c.logger != nil {
		c.logger.Error().Err(err).Int64("booking_id", booking.ID).Msg("export enqueue error")
	}
}

func containsSlot(slots []int, minute int) bool {
	for _, s := range slots {
		if s == minute {
			return true
		}
	}
	return false
}
