// Package schedule resolves booking requests expressed as
// (date, starting hour, duration) into absolute half-open time windows.
package schedule

import (
	"time"
)

// Clock supplies current time so past-date validation is testable.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Window is a half-open booking interval [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether two half-open windows intersect.
// Back-to-back windows (w.End == other.Start) do not overlap.
func (w Window) Overlaps(other Window) bool {
	return w.Start.Before(other.End) && other.Start.Before(w.End)
}

// Resolver turns booking requests into Windows and validates them
// against the injected clock. Pure apart from reading the clock.
type Resolver struct {
	clock          Clock
	maxBookingDays int
}

func NewResolver(clock Clock, maxBookingDays int) *Resolver {
	if clock == nil {
		clock = SystemClock{}
	}
	if maxBookingDays <= 0 {
		maxBookingDays = 365
	}
	return &Resolver{clock: clock, maxBookingDays: maxBookingDays}
}

// Resolve computes start = date at startHour:00 UTC and
// end = start + durationHours. Errors are typed so the coordinator can
// reject before touching storage:
//   - ErrInvalidWindow for an out-of-range hour or non-positive duration
//   - ErrPastDate when the date precedes the clock's current date
//   - ErrDateTooFar when the date exceeds the booking horizon
func (r *Resolver) Resolve(date time.Time, startHour, durationHours int) (Window, error) {
	if startHour < 0 || startHour > 23 {
		return Window{}, ErrInvalidWindow
	}
	if durationHours < 1 {
		return Window{}, ErrInvalidWindow
	}

	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

	now := r.clock.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if day.Before(today) {
		return Window{}, ErrPastDate
	}
	if day.After(today.AddDate(0, 0, r.maxBookingDays)) {
		return Window{}, ErrDateTooFar
	}

	start := day.Add(time.Duration(startHour) * time.Hour)
	end := start.Add(time.Duration(durationHours) * time.Hour)
	return Window{Start: start, End: end}, nil
}
