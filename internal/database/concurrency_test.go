package database

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"slotcal/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConcurrentReservation(t *testing.T) {
	logger := zerolog.New(zerolog.NewConsoleWriter())
	dbPath := filepath.Join(t.TempDir(), "concurrency.db")
	db, err := NewDB(dbPath, &logger)
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	et := createTestEventType(t, db, "intro-call", 30)

	const numGoroutines = 10
	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	results := make(chan error, numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			booking := &models.Booking{
				EventTypeID: et.ID,
				BookerName:  "Racer",
				BookerEmail: "racer@example.com",
				Date:        "2026-01-19",
				StartMinute: 600,
				EndMinute:   630,
			}
			results <- db.ReserveSlot(ctx, booking)
		}()
	}

	wg.Wait()
	close(results)

	successCount := 0
	takenCount := 0
	for err := range results {
		switch {
		case err == nil:
			successCount++
		case errors.Is(err, ErrSlotTaken):
			takenCount++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, successCount, "exactly one reservation should win the slot")
	assert.Equal(t, numGoroutines-1, takenCount, "all other reservations should observe ErrSlotTaken")

	bookings, err := db.GetBookingsByDate(ctx, "2026-01-19")
	require.NoError(t, err)
	assert.Len(t, bookings, 1)
}

func TestConcurrentOverlappingIntervals(t *testing.T) {
	logger := zerolog.New(zerolog.NewConsoleWriter())
	dbPath := filepath.Join(t.TempDir(), "overlap.db")
	db, err := NewDB(dbPath, &logger)
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	short := createTestEventType(t, db, "short", 30)
	long := createTestEventType(t, db, "long", 60)

	// Different start minutes but overlapping intervals: the unique index
	// cannot catch this, only the transactional check can.
	var wg sync.WaitGroup
	results := make(chan error, 2)

	reserve := func(eventTypeID int64, start, end int) {
		defer wg.Done()
		results <- db.ReserveSlot(ctx, &models.Booking{
			EventTypeID: eventTypeID,
			BookerName:  "Racer",
			BookerEmail: "racer@example.com",
			Date:        "2026-01-19",
			StartMinute: start,
			EndMinute:   end,
		})
	}

	wg.Add(2)
	go reserve(short.ID, 630, 660)
	go reserve(long.ID, 600, 660)
	wg.Wait()
	close(results)

	var errs []error
	for err := range results {
		errs = append(errs, err)
	}
	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, ErrSlotTaken)
		}
	}
	assert.Equal(t, 1, winners)
}
