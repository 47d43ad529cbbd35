package service

import (
	"context"
	"errors"
	"time"

	"slotcal/internal/database"
	"slotcal/internal/domain"
	"slotcal/internal/metrics"
	"slotcal/internal/models"
	"slotcal/internal/timeutil"

	"github.com/rs/zerolog"
)

// SlotEngine derives valid start times for a (date, event type) pair from the
// weekly availability window minus already-booked intervals.
type SlotEngine struct {
	store  domain.Store
	cache  domain.SlotCache
	loc    *time.Location
	logger *zerolog.Logger
}

func NewSlotEngine(store domain.Store, cache domain.SlotCache, loc *time.Location, logger *zerolog.Logger) *SlotEngine {
	if loc == nil {
		loc = time.UTC
	}
	return &SlotEngine{store: store, cache: cache, loc: loc, logger: logger}
}

// Location returns the canonical time zone all slot math happens in.
func (e *SlotEngine) Location() *time.Location {
	return e.loc
}

// ComputeSlots returns the open start times (minutes of day, ascending) on
// date for the event type. A weekday without an availability window yields an
// empty list, not an error. Results may be stale by the time a reservation is
// attempted; the coordinator re-validates inside the commit.
func (e *SlotEngine) ComputeSlots(ctx context.Context, date string, eventTypeID int64) ([]int, error) {
	if _, err := timeutil.ParseDate(date, e.loc); err != nil {
		return nil, database.ErrInvalidInput
	}

	metrics.IncSlotQuery()

	if e.cache != nil {
		if slots, ok, err := e.cache.GetSlots(ctx, eventTypeID, date); err == nil && ok {
			metrics.IncSlotCacheHit()
			return slots, nil
		}
	}

	et, err := e.store.GetEventType(ctx, eventTypeID)
	if err != nil {
		return nil, err
	}

	weekday, err := timeutil.WeekdayName(date, e.loc)
	if err != nil {
		return nil, database.ErrInvalidInput
	}

	window, err := e.store.GetAvailability(ctx, weekday)
	if errors.Is(err, database.ErrNotFound) {
		// No window for this weekday means zero slots.
		return []int{}, nil
	}
	if err != nil {
		return nil, err
	}

	busy, err := e.store.GetBookingsByDate(ctx, date)
	if err != nil {
		return nil, err
	}

	slots := generate(window.StartMinute, window.EndMinute, et.DurationMinutes, busy)

	if e.cache != nil {
		if err := e.cache.SetSlots(ctx, eventTypeID, date, slots); err != nil && e.logger != nil {
			e.logger.Warn().Err(err).Str("date", date).Int64("event_type_id", eventTypeID).Msg("slot cache write failed")
		}
	}

	return slots, nil
}

// FormatSlots renders minute offsets as zero-padded HH:MM strings.
func (e *SlotEngine) FormatSlots(slots []int) []string {
	out := make([]string, len(slots))
	for i, s := range slots {
		out[i] = timeutil.FormatClock(s)
	}
	return out
}

// generate steps candidates from windowStart in duration increments while the
// whole slot fits, dropping any candidate that overlaps a busy interval. A
// trailing partial period is excluded by the loop condition, not rounded.
func generate(windowStart, windowEnd, duration int, busy []models.Booking) []int {
	slots := []int{}
	for candidate := windowStart; candidate+duration <= windowEnd; candidate += duration {
		if !overlapsAny(candidate, candidate+duration, busy) {
			slots = append(slots, candidate)
		}
	}
	return slots
}

// overlapsAny applies the half-open interval test: [start,end) conflicts with
// [b.StartMinute,b.EndMinute) iff start < b.EndMinute && end > b.StartMinute.
// Back-to-back bookings are not conflicts.
func overlapsAny(start, end int, busy []models.Booking) bool {
	for _, b := range busy {
		if start < b.EndMinute && end > b.StartMinute {
			return true
		}
	}
	return false
}
