package repository

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockSlotCache struct {
	mock.Mock
}

func (m *mockSlotCache) GetSlots(ctx context.Context, eventTypeID int64, date string) ([]int, bool, error) {
	args := m.Called(ctx, eventTypeID, date)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]int), args.Bool(1), args.Error(2)
}

func (m *mockSlotCache) SetSlots(ctx context.Context, eventTypeID int64, date string, slots []int) error {
	return m.Called(ctx, eventTypeID, date, slots).Error(0)
}

func (m *mockSlotCache) InvalidateDate(ctx context.Context, date string) error {
	return m.Called(ctx, date).Error(0)
}

func (m *mockSlotCache) InvalidateAll(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func TestFailoverSlotCache(t *testing.T) {
	ctx := context.Background()
	logger := zerolog.New(io.Discard)

	t.Run("PrimarySuccess", func(t *testing.T) {
		primary := new(mockSlotCache)
		fallback := new(mockSlotCache)
		cache := NewFailoverSlotCache(primary, fallback, &logger)

		primary.On("GetSlots", ctx, int64(1), "2026-09-01").Return([]int{540}, true, nil).Once()

		slots, ok, err := cache.GetSlots(ctx, 1, "2026-09-01")
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []int{540}, slots)
		primary.AssertExpectations(t)
		fallback.AssertNotCalled(t, "GetSlots", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("FallbackOnPrimaryError", func(t *testing.T) {
		primary := new(mockSlotCache)
		fallback := new(mockSlotCache)
		cache := NewFailoverSlotCache(primary, fallback, &logger)

		primary.On("GetSlots", ctx, int64(1), "2026-09-01").Return(nil, false, errors.New("connection refused")).Once()
		fallback.On("GetSlots", ctx, int64(1), "2026-09-01").Return([]int{600}, true, nil).Once()

		slots, ok, err := cache.GetSlots(ctx, 1, "2026-09-01")
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []int{600}, slots)

		// Primary is marked down; the next call goes straight to fallback
		fallback.On("SetSlots", ctx, int64(1), "2026-09-01", []int{600}).Return(nil).Once()
		err = cache.SetSlots(ctx, 1, "2026-09-01", []int{600})
		assert.NoError(t, err)
		primary.AssertNotCalled(t, "SetSlots", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("PrimaryRecovery", func(t *testing.T) {
		primary := new(mockSlotCache)
		fallback := new(mockSlotCache)
		cache := NewFailoverSlotCache(primary, fallback, &logger)
		cache.isDown.Store(true)
		cache.lastCheck = time.Now().Add(-2 * time.Minute)

		primary.On("GetSlots", ctx, int64(1), "2026-09-01").Return([]int{540}, true, nil).Once()

		slots, ok, err := cache.GetSlots(ctx, 1, "2026-09-01")
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []int{540}, slots)
		assert.False(t, cache.isDown.Load())
	})

	t.Run("InvalidateHitsBothLayers", func(t *testing.T) {
		primary := new(mockSlotCache)
		fallback := new(mockSlotCache)
		cache := NewFailoverSlotCache(primary, fallback, &logger)

		primary.On("InvalidateDate", ctx, "2026-09-01").Return(nil).Once()
		fallback.On("InvalidateDate", ctx, "2026-09-01").Return(nil).Once()

		assert.NoError(t, cache.InvalidateDate(ctx, "2026-09-01"))
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})
}
