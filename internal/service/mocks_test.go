package service

import (
	"context"

	"slotcal/internal/models"

	"github.com/stretchr/testify/mock"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) CreateEventType(ctx context.Context, et *models.EventType) error {
	return m.Called(ctx, et).Error(0)
}
func (m *mockStore) GetEventType(ctx context.Context, id int64) (*models.EventType, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EventType), args.Error(1)
}
func (m *mockStore) GetEventTypeBySlug(ctx context.Context, slug string) (*models.EventType, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EventType), args.Error(1)
}
func (m *mockStore) ListEventTypes(ctx context.Context) ([]models.EventType, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.EventType), args.Error(1)
}
func (m *mockStore) DeleteEventType(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}
func (m *mockStore) UpsertAvailability(ctx context.Context, w *models.AvailabilityWindow) error {
	return m.Called(ctx, w).Error(0)
}
func (m *mockStore) GetAvailability(ctx context.Context, weekday string) (*models.AvailabilityWindow, error) {
	args := m.Called(ctx, weekday)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AvailabilityWindow), args.Error(1)
}
func (m *mockStore) ListAvailability(ctx context.Context) ([]models.AvailabilityWindow, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AvailabilityWindow), args.Error(1)
}
func (m *mockStore) DeleteAvailability(ctx context.Context, weekday string) error {
	return m.Called(ctx, weekday).Error(0)
}
func (m *mockStore) ReserveSlot(ctx context.Context, booking *models.Booking) error {
	return m.Called(ctx, booking).Error(0)
}
func (m *mockStore) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}
func (m *mockStore) GetBookingsByDate(ctx context.Context, date string) ([]models.Booking, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Booking), args.Error(1)
}
func (m *mockStore) ListBookings(ctx context.Context) ([]models.Booking, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Booking), args.Error(1)
}
func (m *mockStore) DeleteBooking(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type mockCache struct {
	mock.Mock
}

func (m *mockCache) GetSlots(ctx context.Context, eventTypeID int64, date string) ([]int, bool, error) {
	args := m.Called(ctx, eventTypeID, date)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]int), args.Bool(1), args.Error(2)
}
func (m *mockCache) SetSlots(ctx context.Context, eventTypeID int64, date string, slots []int) error {
	return m.Called(ctx, eventTypeID, date, slots).Error(0)
}
func (m *mockCache) InvalidateDate(ctx context.Context, date string) error {
	return m.Called(ctx, date).Error(0)
}
func (m *mockCache) InvalidateAll(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type mockEventBus struct {
	mock.Mock
}

func (m *mockEventBus) PublishJSON(et string, p interface{}) error { return m.Called(et, p).Error(0) }

type mockExportQueue struct {
	mock.Mock
}

func (m *mockExportQueue) EnqueueUpsert(ctx context.Context, b *models.Booking) error {
	return m.Called(ctx, b).Error(0)
}
func (m *mockExportQueue) EnqueueDelete(ctx context.Context, bookingID int64) error {
	return m.Called(ctx, bookingID).Error(0)
}
