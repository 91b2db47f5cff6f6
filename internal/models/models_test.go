package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBooking_DurationHours(t *testing.T) {
	start := time.Date(2026, 9, 10, 9, 0, 0, 0, time.UTC)

	b := &Booking{StartTime: start, EndTime: start.Add(3 * time.Hour)}
	assert.Equal(t, 3, b.DurationHours())

	b = &Booking{StartTime: start, EndTime: start.Add(24 * time.Hour)}
	assert.Equal(t, 24, b.DurationHours())
}

func TestBooking_Overlaps(t *testing.T) {
	start := time.Date(2026, 9, 10, 10, 0, 0, 0, time.UTC)
	b := &Booking{StartTime: start, EndTime: start.Add(4 * time.Hour)} // 10:00-14:00

	hour := func(h int) time.Time {
		return time.Date(2026, 9, 10, h, 0, 0, 0, time.UTC)
	}

	t.Run("Inside", func(t *testing.T) {
		assert.True(t, b.Overlaps(hour(11), hour(12)))
	})

	t.Run("Covering", func(t *testing.T) {
		assert.True(t, b.Overlaps(hour(9), hour(15)))
	})

	t.Run("PartialLeft", func(t *testing.T) {
		assert.True(t, b.Overlaps(hour(8), hour(11)))
	})

	t.Run("PartialRight", func(t *testing.T) {
		assert.True(t, b.Overlaps(hour(13), hour(16)))
	})

	t.Run("SharedBoundary", func(t *testing.T) {
		// Half-open windows: back-to-back bookings do not overlap.
		assert.False(t, b.Overlaps(hour(14), hour(16)))
		assert.False(t, b.Overlaps(hour(8), hour(10)))
	})

	t.Run("Disjoint", func(t *testing.T) {
		assert.False(t, b.Overlaps(hour(15), hour(17)))
		assert.False(t, b.Overlaps(hour(6), hour(8)))
	})
}
