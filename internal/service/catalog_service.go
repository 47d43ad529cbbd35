package service

import (
	"context"
	"regexp"
	"strings"

	"slotcal/internal/database"
	"slotcal/internal/domain"
	"slotcal/internal/models"
	"slotcal/internal/timeutil"

	"github.com/rs/zerolog"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// CatalogService manages event types and the weekly availability schedule.
type CatalogService struct {
	store  domain.Store
	cache  domain.SlotCache
	logger *zerolog.Logger
}

func NewCatalogService(store domain.Store, cache domain.SlotCache, logger *zerolog.Logger) *CatalogService {
	return &CatalogService{store: store, cache: cache, logger: logger}
}

func (s *CatalogService) CreateEventType(ctx context.Context, et *models.EventType) error {
	et.Title = strings.TrimSpace(et.Title)
	et.Slug = strings.TrimSpace(et.Slug)
	if et.Title == "" || et.Slug == "" || et.DurationMinutes <= 0 {
		return database.ErrInvalidInput
	}
	if !slugPattern.MatchString(et.Slug) {
		return database.ErrInvalidInput
	}

	return s.store.CreateEventType(ctx, et)
}

func (s *CatalogService) GetEventType(ctx context.Context, id int64) (*models.EventType, error) {
	return s.store.GetEventType(ctx, id)
}

func (s *CatalogService) GetEventTypeBySlug(ctx context.Context, slug string) (*models.EventType, error) {
	return s.store.GetEventTypeBySlug(ctx, slug)
}

func (s *CatalogService) ListEventTypes(ctx context.Context) ([]models.EventType, error) {
	return s.store.ListEventTypes(ctx)
}

// DeleteEventType removes the type. Existing bookings keep their denormalized
// interval and title, so past reservations stay listable and conflict math
// still sees them.
func (s *CatalogService) DeleteEventType(ctx context.Context, id int64) error {
	if err := s.store.DeleteEventType(ctx, id); err != nil {
		return err
	}
	s.invalidateAll(ctx)
	return nil
}

// SetAvailability creates or replaces the window for a weekday. One window
// per weekday; a second write overwrites the first.
func (s *CatalogService) SetAvailability(ctx context.Context, w *models.AvailabilityWindow) error {
	if !timeutil.ValidWeekday(w.Weekday) {
		return database.ErrInvalidInput
	}
	if w.StartMinute < 0 || w.EndMinute > timeutil.MinutesPerDay || w.StartMinute >= w.EndMinute {
		return database.ErrInvalidInput
	}

	if err := s.store.UpsertAvailability(ctx, w); err != nil {
		return err
	}
	s.invalidateAll(ctx)
	return nil
}

func (s *CatalogService) ListAvailability(ctx context.Context) ([]models.AvailabilityWindow, error) {
	return s.store.ListAvailability(ctx)
}

func (s *CatalogService) DeleteAvailability(ctx context.Context, weekday string) error {
	if !timeutil.ValidWeekday(weekday) {
		return database.ErrInvalidInput
	}
	if err := s.store.DeleteAvailability(ctx, weekday); err != nil {
		return err
	}
	s.invalidateAll(ctx)
	return nil
}

func (s *CatalogService) invalidateAll(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateAll(ctx); err != nil && s.logger != nil {
		s.logger.Warn().Err(err).Msg("slot cache flush failed")
	}
}
