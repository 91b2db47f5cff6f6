package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"peercar/internal/database"
	"peercar/internal/models"
	"peercar/internal/schedule"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockLedger struct {
	mock.Mock
}

func (m *mockLedger) BookCar(ctx context.Context, email, rego string, start, end time.Time) (*models.Booking, error) {
	args := m.Called(ctx, email, rego, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}
func (m *mockLedger) MemberHasOverlap(ctx context.Context, memberNo int64, start, end time.Time) (bool, error) {
	args := m.Called(ctx, memberNo, start, end)
	return args.Bool(0), args.Error(1)
}
func (m *mockLedger) CarHasOverlap(ctx context.Context, rego string, start, end time.Time) (bool, error) {
	args := m.Called(ctx, rego, start, end)
	return args.Bool(0), args.Error(1)
}
func (m *mockLedger) GetMemberBookings(ctx context.Context, email string) ([]*models.MemberBooking, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.MemberBooking), args.Error(1)
}
func (m *mockLedger) GetBookingDetails(ctx context.Context, rego string, date time.Time, hour int) (*models.BookingDetails, error) {
	args := m.Called(ctx, rego, date, hour)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BookingDetails), args.Error(1)
}
func (m *mockLedger) GetBookingsByDateRange(ctx context.Context, startDate, endDate time.Time) ([]*models.Booking, error) {
	args := m.Called(ctx, startDate, endDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}

type mockSyncer struct {
	mock.Mock
}

func (m *mockSyncer) EnqueueBooking(ctx context.Context, booking *models.Booking) error {
	return m.Called(ctx, booking).Error(0)
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

func newTestService(ledger *mockLedger, syncer *mockSyncer) *BookingService {
	logger := zerolog.New(io.Discard)
	clock := fixedClock{now: time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)}
	resolver := schedule.NewResolver(clock, 365)
	if syncer == nil {
		return NewBookingService(ledger, resolver, nil, &logger)
	}
	return NewBookingService(ledger, resolver, syncer, &logger)
}

func bookingDate() time.Time {
	return time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
}

func TestBookCarSuccess(t *testing.T) {
	ledger := new(mockLedger)
	syncer := new(mockSyncer)
	svc := newTestService(ledger, syncer)

	start := time.Date(2026, 9, 10, 10, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)
	booking := &models.Booking{ID: 1, Ref: "ref-1", CarRego: "ABC123", StartTime: start, EndTime: end}

	ledger.On("BookCar", mock.Anything, "alice@example.org", "ABC123", start, end).Return(booking, nil).Once()
	syncer.On("EnqueueBooking", mock.Anything, booking).Return(nil).Once()

	got, err := svc.BookCar(context.Background(), "alice@example.org", "ABC123", bookingDate(), 10, 2)
	require.NoError(t, err)
	assert.Equal(t, booking, got)

	ledger.AssertExpectations(t)
	syncer.AssertExpectations(t)
}

func TestBookCarInvalidWindowSkipsLedger(t *testing.T) {
	ledger := new(mockLedger)
	svc := newTestService(ledger, nil)

	_, err := svc.BookCar(context.Background(), "alice@example.org", "ABC123", bookingDate(), 25, 2)
	assert.ErrorIs(t, err, schedule.ErrInvalidWindow)

	_, err = svc.BookCar(context.Background(), "alice@example.org", "ABC123", bookingDate(), 10, 0)
	assert.ErrorIs(t, err, schedule.ErrInvalidWindow)

	past := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	_, err = svc.BookCar(context.Background(), "alice@example.org", "ABC123", past, 10, 2)
	assert.ErrorIs(t, err, schedule.ErrPastDate)

	// The ledger must never be touched for invalid windows.
	ledger.AssertNotCalled(t, "BookCar", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestBookCarConflictPassthrough(t *testing.T) {
	ledger := new(mockLedger)
	syncer := new(mockSyncer)
	svc := newTestService(ledger, syncer)

	ledger.On("BookCar", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, database.ErrCarOverlap).Once()

	_, err := svc.BookCar(context.Background(), "alice@example.org", "ABC123", bookingDate(), 10, 2)
	assert.ErrorIs(t, err, database.ErrCarOverlap)
	assert.True(t, IsRejection(err))

	// Rejections never reach the mirror queue.
	syncer.AssertNotCalled(t, "EnqueueBooking", mock.Anything, mock.Anything)
}

func TestBookCarRetriesOnceOnBusy(t *testing.T) {
	ledger := new(mockLedger)
	svc := newTestService(ledger, nil)

	busy := sqlite3.Error{Code: sqlite3.ErrBusy}
	booking := &models.Booking{ID: 2, Ref: "ref-2"}

	ledger.On("BookCar", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, busy).Once()
	ledger.On("BookCar", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(booking, nil).Once()

	got, err := svc.BookCar(context.Background(), "alice@example.org", "ABC123", bookingDate(), 10, 2)
	require.NoError(t, err)
	assert.Equal(t, booking, got)
	ledger.AssertNumberOfCalls(t, "BookCar", 2)
}

func TestBookCarBusyTwiceIsStorageUnavailable(t *testing.T) {
	ledger := new(mockLedger)
	svc := newTestService(ledger, nil)

	busy := sqlite3.Error{Code: sqlite3.ErrBusy}
	ledger.On("BookCar", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, busy).Twice()

	_, err := svc.BookCar(context.Background(), "alice@example.org", "ABC123", bookingDate(), 10, 2)
	assert.ErrorIs(t, err, ErrStorageUnavailable)
	assert.False(t, IsRejection(err))
	ledger.AssertNumberOfCalls(t, "BookCar", 2)
}

func TestBookCarStorageFaultWrapped(t *testing.T) {
	ledger := new(mockLedger)
	svc := newTestService(ledger, nil)

	ledger.On("BookCar", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("disk I/O error")).Once()

	_, err := svc.BookCar(context.Background(), "alice@example.org", "ABC123", bookingDate(), 10, 2)
	assert.ErrorIs(t, err, ErrStorageUnavailable)
	ledger.AssertNumberOfCalls(t, "BookCar", 1)
}

func TestBookCarSyncFailureDoesNotFailBooking(t *testing.T) {
	ledger := new(mockLedger)
	syncer := new(mockSyncer)
	svc := newTestService(ledger, syncer)

	booking := &models.Booking{ID: 3, Ref: "ref-3"}
	ledger.On("BookCar", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(booking, nil).Once()
	syncer.On("EnqueueBooking", mock.Anything, booking).Return(errors.New("redis down")).Once()

	got, err := svc.BookCar(context.Background(), "alice@example.org", "ABC123", bookingDate(), 10, 2)
	require.NoError(t, err)
	assert.Equal(t, booking, got)
}

func TestGetMemberBookings(t *testing.T) {
	ledger := new(mockLedger)
	svc := newTestService(ledger, nil)

	want := []*models.MemberBooking{{CarRego: "ABC123", CarName: "Beryl"}}
	ledger.On("GetMemberBookings", mock.Anything, "alice@example.org").Return(want, nil).Once()

	got, err := svc.GetMemberBookings(context.Background(), "alice@example.org")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestGetBookingDetails(t *testing.T) {
	ledger := new(mockLedger)
	svc := newTestService(ledger, nil)

	want := &models.BookingDetails{CarRego: "ABC123", DurationHours: 3, Cost: 44.85}
	ledger.On("GetBookingDetails", mock.Anything, "ABC123", bookingDate(), 14).Return(want, nil).Once()

	got, err := svc.GetBookingDetails(context.Background(), "ABC123", bookingDate(), 14)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestIsRejection(t *testing.T) {
	assert.True(t, IsRejection(schedule.ErrInvalidWindow))
	assert.True(t, IsRejection(schedule.ErrPastDate))
	assert.True(t, IsRejection(schedule.ErrDateTooFar))
	assert.True(t, IsRejection(database.ErrMemberOverlap))
	assert.True(t, IsRejection(database.ErrCarOverlap))
	assert.True(t, IsRejection(database.ErrMemberNotFound))
	assert.True(t, IsRejection(database.ErrCarNotFound))

	assert.False(t, IsRejection(ErrStorageUnavailable))
	assert.False(t, IsRejection(errors.New("boom")))
	assert.False(t, IsRejection(nil))
}
