package database

import (
	"context"
	"testing"

	"slotcal/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertAvailability_ReplacesWindow(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	first := &models.AvailabilityWindow{Weekday: "Monday", StartMinute: 540, EndMinute: 720}
	require.NoError(t, db.UpsertAvailability(ctx, first))

	// A second write for the same weekday replaces the bounds, no merging.
	second := &models.AvailabilityWindow{Weekday: "Monday", StartMinute: 600, EndMinute: 660}
	require.NoError(t, db.UpsertAvailability(ctx, second))

	got, err := db.GetAvailability(ctx, "Monday")
	require.NoError(t, err)
	assert.Equal(t, 600, got.StartMinute)
	assert.Equal(t, 660, got.EndMinute)

	windows, err := db.ListAvailability(ctx)
	require.NoError(t, err)
	assert.Len(t, windows, 1)
}

func TestGetAvailability_NotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.GetAvailability(context.Background(), "Sunday")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteAvailability(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	w := &models.AvailabilityWindow{Weekday: "Friday", StartMinute: 540, EndMinute: 1020}
	require.NoError(t, db.UpsertAvailability(ctx, w))

	require.NoError(t, db.DeleteAvailability(ctx, "Friday"))
	assert.ErrorIs(t, db.DeleteAvailability(ctx, "Friday"), ErrNotFound)
}
