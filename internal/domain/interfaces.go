package domain

import (
	"context"
	"time"

	"peercar/internal/models"
)

// Ledger is the authoritative booking store.
type Ledger interface {
	BookCar(ctx context.Context, email, rego string, start, end time.Time) (*models.Booking, error)
	MemberHasOverlap(ctx context.Context, memberNo int64, start, end time.Time) (bool, error)
	CarHasOverlap(ctx context.Context, rego string, start, end time.Time) (bool, error)
	GetMemberBookings(ctx context.Context, email string) ([]*models.MemberBooking, error)
	GetBookingDetails(ctx context.Context, rego string, date time.Time, hour int) (*models.BookingDetails, error)
	GetBookingsByDateRange(ctx context.Context, startDate, endDate time.Time) ([]*models.Booking, error)
}

// Catalog is the read-mostly reference data: cars, bays, members.
type Catalog interface {
	GetAllCars(ctx context.Context) ([]*models.Car, error)
	GetCarDetails(ctx context.Context, rego string) (*models.CarDetails, error)
	GetCarsInBay(ctx context.Context, bayName string) ([]*models.CarSummary, error)
	GetAllBays(ctx context.Context) ([]*models.BaySummary, error)
	GetBay(ctx context.Context, name string) (*models.Bay, error)
	SearchBays(ctx context.Context, term string) ([]*models.BaySummary, error)
	GetMemberByEmail(ctx context.Context, email string) (*models.Member, error)
	UpdateHomeBay(ctx context.Context, email, bayName string) (string, error)
}

// CacheRepository backs catalog read caching and request throttling.
// Implementations: Redis, in-memory, and a failover wrapper.
type CacheRepository interface {
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// SyncEnqueuer schedules mirror work after a booking commit.
type SyncEnqueuer interface {
	EnqueueBooking(ctx context.Context, booking *models.Booking) error
}
