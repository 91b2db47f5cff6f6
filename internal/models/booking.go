package models

import "time"

// Booking is an append-only ledger row. Bookings are never updated in
// place; there is no cancellation path.
type Booking struct {
	ID         int64     `json:"id"`
	Ref        string    `json:"ref"`
	CarRego    string    `json:"car_rego"`
	MemberNo   int64     `json:"member_no"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	WhenBooked time.Time `json:"when_booked"`
}

// DurationHours returns the booked window length in whole hours.
func (b *Booking) DurationHours() int {
	return int(b.EndTime.Sub(b.StartTime) / time.Hour)
}

// Overlaps reports whether the booking window intersects [start, end).
// Half-open semantics: a booking ending exactly at start does not overlap.
func (b *Booking) Overlaps(start, end time.Time) bool {
	return b.StartTime.Before(end) && start.Before(b.EndTime)
}

// BookingDetails is the read model for a single booking lookup,
// including the cost computed from the member's plan rates.
type BookingDetails struct {
	MemberNickname string    `json:"member_nickname"`
	CarRego        string    `json:"car_rego"`
	CarName        string    `json:"car_name"`
	StartTime      time.Time `json:"start_time"`
	DurationHours  int       `json:"duration_hours"`
	WhenBooked     time.Time `json:"when_booked"`
	BayName        string    `json:"bay_name"`
	Cost           float64   `json:"cost"`
}

// MemberBooking is one row of a member's booking history listing.
type MemberBooking struct {
	CarRego   string    `json:"car_rego"`
	CarName   string    `json:"car_name"`
	StartTime time.Time `json:"start_time"`
}
