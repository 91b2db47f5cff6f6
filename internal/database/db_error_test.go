package database

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"peercar/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestDB_ErrorPaths(t *testing.T) {
	logger := zerolog.New(io.Discard)
	db, err := NewDB(filepath.Join(t.TempDir(), "closed.db"), &logger)
	assert.NoError(t, err)
	db.Close() // Close the DB to trigger errors

	ctx := context.Background()
	now := time.Now()

	t.Run("BookCar_Error", func(t *testing.T) {
		_, err := db.BookCar(ctx, "alice@example.org", "ABC123", now, now.Add(time.Hour))
		assert.Error(t, err)
	})

	t.Run("CarHasOverlap_Error", func(t *testing.T) {
		_, err := db.CarHasOverlap(ctx, "ABC123", now, now.Add(time.Hour))
		assert.Error(t, err)
	})

	t.Run("MemberHasOverlap_Error", func(t *testing.T) {
		_, err := db.MemberHasOverlap(ctx, 1, now, now.Add(time.Hour))
		assert.Error(t, err)
	})

	t.Run("GetMemberBookings_Error", func(t *testing.T) {
		_, err := db.GetMemberBookings(ctx, "alice@example.org")
		assert.Error(t, err)
	})

	t.Run("GetBookingDetails_Error", func(t *testing.T) {
		_, err := db.GetBookingDetails(ctx, "ABC123", now, 10)
		assert.Error(t, err)
	})

	t.Run("GetBookingsByDateRange_Error", func(t *testing.T) {
		_, err := db.GetBookingsByDateRange(ctx, now, now)
		assert.Error(t, err)
	})

	t.Run("SyncCatalog_Error", func(t *testing.T) {
		err := db.SyncCatalog(ctx, models.CatalogSeed{})
		assert.Error(t, err)
	})

	t.Run("GetAllCars_Error", func(t *testing.T) {
		_, err := db.GetAllCars(ctx)
		assert.Error(t, err)
	})

	t.Run("GetAllBays_Error", func(t *testing.T) {
		_, err := db.GetAllBays(ctx)
		assert.Error(t, err)
	})

	t.Run("UpdateHomeBay_Error", func(t *testing.T) {
		_, err := db.UpdateHomeBay(ctx, "alice@example.org", "carlton-gratton")
		assert.Error(t, err)
	})

	t.Run("CreateSyncTask_Error", func(t *testing.T) {
		err := db.CreateSyncTask(ctx, &models.SyncTask{})
		assert.Error(t, err)
	})
}

func TestIsBusy(t *testing.T) {
	assert.False(t, IsBusy(nil))
	assert.False(t, IsBusy(context.Canceled))
	assert.False(t, IsBusy(ErrCarOverlap))
}

func TestIsConstraint(t *testing.T) {
	db := seededTestDB(t)

	// Duplicate ref violates the unique constraint.
	_, err := db.Exec(`INSERT INTO bookings (ref, car, made_by, start_time, end_time, when_booked)
        VALUES ('dup', 'ABC123', 1, '2030-01-01 10:00:00', '2030-01-01 12:00:00', '2030-01-01 00:00:00')`)
	assert.NoError(t, err)
	_, err = db.Exec(`INSERT INTO bookings (ref, car, made_by, start_time, end_time, when_booked)
        VALUES ('dup', 'ABC123', 1, '2030-01-02 10:00:00', '2030-01-02 12:00:00', '2030-01-01 00:00:00')`)
	assert.True(t, IsConstraint(err))

	// Unknown car violates the foreign key.
	_, err = db.Exec(`INSERT INTO bookings (ref, car, made_by, start_time, end_time, when_booked)
        VALUES ('fk', 'NOPE00', 1, '2030-01-03 10:00:00', '2030-01-03 12:00:00', '2030-01-01 00:00:00')`)
	assert.True(t, IsConstraint(err))
}
