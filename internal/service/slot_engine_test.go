package service

import (
	"context"
	"io"
	"testing"
	"time"

	"slotcal/internal/database"
	"slotcal/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// 2026-09-01 is a Tuesday.
const testDate = "2026-09-01"

func newTestEngine(store *mockStore, cache *mockCache) *SlotEngine {
	logger := zerolog.New(io.Discard)
	if cache == nil {
		return NewSlotEngine(store, nil, time.UTC, &logger)
	}
	return NewSlotEngine(store, cache, time.UTC, &logger)
}

func TestComputeSlots(t *testing.T) {
	ctx := context.Background()
	consult := &models.EventType{ID: 1, Title: "Consultation", Slug: "consultation", DurationMinutes: 30}

	t.Run("skips booked interval", func(t *testing.T) {
		store := new(mockStore)
		store.On("GetEventType", ctx, int64(1)).Return(consult, nil).Once()
		store.On("GetAvailability", ctx, "Tuesday").Return(&models.AvailabilityWindow{Weekday: "Tuesday", StartMinute: 540, EndMinute: 720}, nil).Once()
		store.On("GetBookingsByDate", ctx, testDate).Return([]models.Booking{
			{StartMinute: 600, EndMinute: 630},
		}, nil).Once()

		slots, err := newTestEngine(store, nil).ComputeSlots(ctx, testDate, 1)
		assert.NoError(t, err)
		assert.Equal(t, []int{540, 570, 630, 660, 690}, slots)
		store.AssertExpectations(t)
	})

	t.Run("back-to-back booking is not a conflict", func(t *testing.T) {
		store := new(mockStore)
		store.On("GetEventType", ctx, int64(1)).Return(consult, nil).Once()
		store.On("GetAvailability", ctx, "Tuesday").Return(&models.AvailabilityWindow{Weekday: "Tuesday", StartMinute: 540, EndMinute: 600}, nil).Once()
		store.On("GetBookingsByDate", ctx, testDate).Return([]models.Booking{
			{StartMinute: 540, EndMinute: 570},
		}, nil).Once()

		slots, err := newTestEngine(store, nil).ComputeSlots(ctx, testDate, 1)
		assert.NoError(t, err)
		assert.Equal(t, []int{570}, slots)
	})

	t.Run("drops trailing partial period", func(t *testing.T) {
		long := &models.EventType{ID: 2, Title: "Deep dive", Slug: "deep-dive", DurationMinutes: 50}
		store := new(mockStore)
		store.On("GetEventType", ctx, int64(2)).Return(long, nil).Once()
		store.On("GetAvailability", ctx, "Tuesday").Return(&models.AvailabilityWindow{Weekday: "Tuesday", StartMinute: 540, EndMinute: 720}, nil).Once()
		store.On("GetBookingsByDate", ctx, testDate).Return([]models.Booking{}, nil).Once()

		slots, err := newTestEngine(store, nil).ComputeSlots(ctx, testDate, 2)
		assert.NoError(t, err)
		// floor(180/50) candidates; 690+50 would overrun the window
		assert.Equal(t, []int{540, 590, 640}, slots)
	})

	t.Run("no window for weekday yields empty list", func(t *testing.T) {
		store := new(mockStore)
		store.On("GetEventType", ctx, int64(1)).Return(consult, nil).Once()
		store.On("GetAvailability", ctx, "Tuesday").Return(nil, database.ErrNotFound).Once()

		slots, err := newTestEngine(store, nil).ComputeSlots(ctx, testDate, 1)
		assert.NoError(t, err)
		assert.Empty(t, slots)
		store.AssertNotCalled(t, "GetBookingsByDate", mock.Anything, mock.Anything)
	})

	t.Run("unknown event type", func(t *testing.T) {
		store := new(mockStore)
		store.On("GetEventType", ctx, int64(99)).Return(nil, database.ErrNotFound).Once()

		_, err := newTestEngine(store, nil).ComputeSlots(ctx, testDate, 99)
		assert.ErrorIs(t, err, database.ErrNotFound)
	})

	t.Run("invalid date", func(t *testing.T) {
		store := new(mockStore)
		_, err := newTestEngine(store, nil).ComputeSlots(ctx, "09/01/2026", 1)
		assert.ErrorIs(t, err, database.ErrInvalidInput)
	})
}

func TestComputeSlotsCache(t *testing.T) {
	ctx := context.Background()
	consult := &models.EventType{ID: 1, Title: "Consultation", Slug: "consultation", DurationMinutes: 30}

	t.Run("hit skips the store", func(t *testing.T) {
		store := new(mockStore)
		cache := new(mockCache)
		cache.On("GetSlots", ctx, int64(1), testDate).Return([]int{540, 570}, true, nil).Once()

		slots, err := newTestEngine(store, cache).ComputeSlots(ctx, testDate, 1)
		assert.NoError(t, err)
		assert.Equal(t, []int{540, 570}, slots)
		store.AssertNotCalled(t, "GetEventType", mock.Anything, mock.Anything)
		cache.AssertExpectations(t)
	})

	t.Run("miss computes and writes back", func(t *testing.T) {
		store := new(mockStore)
		cache := new(mockCache)
		cache.On("GetSlots", ctx, int64(1), testDate).Return(nil, false, nil).Once()
		store.On("GetEventType", ctx, int64(1)).Return(consult, nil).Once()
		store.On("GetAvailability", ctx, "Tuesday").Return(&models.AvailabilityWindow{Weekday: "Tuesday", StartMinute: 540, EndMinute: 600}, nil).Once()
		store.On("GetBookingsByDate", ctx, testDate).Return([]models.Booking{}, nil).Once()
		cache.On("SetSlots", ctx, int64(1), testDate, []int{540, 570}).Return(nil).Once()

		slots, err := newTestEngine(store, cache).ComputeSlots(ctx, testDate, 1)
		assert.NoError(t, err)
		assert.Equal(t, []int{540, 570}, slots)
		cache.AssertExpectations(t)
	})
}

func TestFormatSlots(t *testing.T) {
	engine := newTestEngine(new(mockStore), nil)
	assert.Equal(t, []string{"09:00", "09:30", "14:05"}, engine.FormatSlots([]int{540, 570, 845}))
	assert.Empty(t, engine.FormatSlots(nil))
}
