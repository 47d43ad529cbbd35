package repository

import (
	"context"
	"sync/atomic"
	"time"

	"slotcal/internal/domain"

	"github.com/rs/zerolog"
)

// FailoverSlotCache serves from the primary cache until it errors, then
// falls back to the in-memory cache and retries the primary after a minute.
type FailoverSlotCache struct {
	primary   domain.SlotCache
	fallback  domain.SlotCache
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck time.Time
}

func NewFailoverSlotCache(primary, fallback domain.SlotCache, logger *zerolog.Logger) *FailoverSlotCache {
	return &FailoverSlotCache{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverSlotCache) markDown(err error) {
	r.logger.Error().Err(err).Msg("Primary slot cache failed, falling back to memory")
	r.isDown.Store(true)
	r.lastCheck = time.Now()
}

func (r *FailoverSlotCache) GetSlots(ctx context.Context, eventTypeID int64, date string) ([]int, bool, error) {
	if !r.isDown.Load() {
		slots, ok, err := r.primary.GetSlots(ctx, eventTypeID, date)
		if err == nil {
			return slots, ok, nil
		}
		r.markDown(err)
	}

	// Try to recover after 1 minute
	if r.isDown.Load() && time.Since(r.lastCheck) > time.Minute {
		slots, ok, err := r.primary.GetSlots(ctx, eventTypeID, date)
		if err == nil {
			r.isDown.Store(false)
			return slots, ok, nil
		}
		r.lastCheck = time.Now()
	}

	return r.fallback.GetSlots(ctx, eventTypeID, date)
}

func (r *FailoverSlotCache) SetSlots(ctx context.Context, eventTypeID int64, date string, slots []int) error {
	if !r.isDown.Load() {
		err := r.primary.SetSlots(ctx, eventTypeID, date, slots)
		if err == nil {
			return nil
		}
		r.markDown(err)
	}

	return r.fallback.SetSlots(ctx, eventTypeID, date, slots)
}

func (r *FailoverSlotCache) InvalidateDate(ctx context.Context, date string) error {
	// Both layers are invalidated so a recovered primary cannot serve a
	// list that predates the booking.
	var primaryErr error
	if !r.isDown.Load() {
		primaryErr = r.primary.InvalidateDate(ctx, date)
		if primaryErr != nil {
			r.markDown(primaryErr)
		}
	}

	return r.fallback.InvalidateDate(ctx, date)
}

func (r *FailoverSlotCache) InvalidateAll(ctx context.Context) error {
	var primaryErr error
	if !r.isDown.Load() {
		primaryErr = r.primary.InvalidateAll(ctx)
		if primaryErr != nil {
			r.markDown(primaryErr)
		}
	}

	return r.fallback.InvalidateAll(ctx)
}
