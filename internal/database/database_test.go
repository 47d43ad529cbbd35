package database

import (
	"context"
	"os"
	"testing"

	"slotcal/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	logger := zerolog.New(os.Stdout)
	db, err := NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func createTestEventType(t *testing.T, db *DB, slug string, duration int) *models.EventType {
	t.Helper()
	et := &models.EventType{
		Title:           "Intro Call",
		Description:     "30 minute intro",
		DurationMinutes: duration,
		Slug:            slug,
	}
	require.NoError(t, db.CreateEventType(context.Background(), et))
	return et
}
