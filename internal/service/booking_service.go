package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"peercar/internal/database"
	"peercar/internal/domain"
	"peercar/internal/metrics"
	"peercar/internal/models"
	"peercar/internal/schedule"

	"github.com/rs/zerolog"
)

// ErrStorageUnavailable marks faults the caller may retry, as opposed
// to business rejections.
var ErrStorageUnavailable = errors.New("booking storage unavailable")

// BookingService is the booking transaction coordinator: it validates
// the requested window, then hands the admission decision to the
// ledger's serializable transaction. It holds no session state; every
// call is self-contained.
type BookingService struct {
	ledger   domain.Ledger
	resolver *schedule.Resolver
	syncer   domain.SyncEnqueuer
	logger   *zerolog.Logger
}

func NewBookingService(ledger domain.Ledger, resolver *schedule.Resolver, syncer domain.SyncEnqueuer, logger *zerolog.Logger) *BookingService {
	return &BookingService{
		ledger:   ledger,
		resolver: resolver,
		syncer:   syncer,
		logger:   logger,
	}
}

// BookCar admits or rejects a booking request. Invalid windows are
// rejected before any storage access. A serialization abort is retried
// once, then surfaced as ErrStorageUnavailable.
func (s *BookingService) BookCar(ctx context.Context, email, rego string, date time.Time, startHour, durationHours int) (*models.Booking, error) {
	window, err := s.resolver.Resolve(date, startHour, durationHours)
	if err != nil {
		metrics.IncBooking(metrics.OutcomeRejected)
		return nil, err
	}

	booking, err := s.ledger.BookCar(ctx, email, rego, window.Start, window.End)
	if database.IsBusy(err) {
		metrics.IncTxRetry()
		s.logger.Warn().Err(err).Str("email", email).Str("rego", rego).
			Msg("Booking transaction aborted, retrying once")
		booking, err = s.ledger.BookCar(ctx, email, rego, window.Start, window.End)
	}
	if err != nil {
		s.recordFailure(err)
		if database.IsBusy(err) || isStorageFault(err) {
			return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}
		return nil, err
	}

	metrics.IncBooking(metrics.OutcomeConfirmed)
	s.logger.Info().Str("ref", booking.Ref).Str("rego", rego).
		Time("start", booking.StartTime).Time("end", booking.EndTime).
		Msg("Booking confirmed")

	// Mirror enqueue happens after commit; its failure never unwinds
	// the booking.
	if s.syncer != nil {
		if err := s.syncer.EnqueueBooking(ctx, booking); err != nil {
			s.logger.Error().Err(err).Str("ref", booking.Ref).Msg("Failed to enqueue booking mirror task")
		}
	}

	return booking, nil
}

func (s *BookingService) recordFailure(err error) {
	switch {
	case errors.Is(err, database.ErrMemberOverlap):
		metrics.IncBooking(metrics.OutcomeRejected)
		metrics.IncConflict(metrics.ConflictMember)
	case errors.Is(err, database.ErrCarOverlap):
		metrics.IncBooking(metrics.OutcomeRejected)
		metrics.IncConflict(metrics.ConflictCar)
	case errors.Is(err, database.ErrMemberNotFound), errors.Is(err, database.ErrCarNotFound):
		metrics.IncBooking(metrics.OutcomeRejected)
	default:
		metrics.IncBooking(metrics.OutcomeFailed)
	}
}

// isStorageFault separates infrastructure errors from typed rejections.
func isStorageFault(err error) bool {
	switch {
	case errors.Is(err, database.ErrMemberOverlap),
		errors.Is(err, database.ErrCarOverlap),
		errors.Is(err, database.ErrMemberNotFound),
		errors.Is(err, database.ErrCarNotFound):
		return false
	}
	return true
}

// GetMemberBookings lists a member's booking history, newest first.
func (s *BookingService) GetMemberBookings(ctx context.Context, email string) ([]*models.MemberBooking, error) {
	return s.ledger.GetMemberBookings(ctx, email)
}

// GetBookingDetails resolves a single booking by car, date and hour.
func (s *BookingService) GetBookingDetails(ctx context.Context, rego string, date time.Time, hour int) (*models.BookingDetails, error) {
	return s.ledger.GetBookingDetails(ctx, rego, date, hour)
}

// IsRejection reports whether err is a business rejection (invalid
// window, conflict, unknown identity) rather than a storage fault.
func IsRejection(err error) bool {
	switch {
	case errors.Is(err, schedule.ErrInvalidWindow),
		errors.Is(err, schedule.ErrPastDate),
		errors.Is(err, schedule.ErrDateTooFar),
		errors.Is(err, database.ErrMemberOverlap),
		errors.Is(err, database.ErrCarOverlap),
		errors.Is(err, database.ErrMemberNotFound),
		errors.Is(err, database.ErrCarNotFound):
		return true
	}
	return false
}
