package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"peercar/internal/models"

	"github.com/google/uuid"
)

// querier lets the overlap predicates run either on the pool or inside
// the booking transaction. The checks must share the transaction with
// the insert, otherwise a concurrent writer can slip between check and
// insert.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func memberHasOverlap(ctx context.Context, q querier, memberNo int64, start, end time.Time) (bool, error) {
	query := `SELECT COUNT(*) FROM bookings WHERE made_by = ? AND start_time < ? AND ? < end_time`
	var count int
	if err := q.QueryRowContext(ctx, query, memberNo, end.UTC(), start.UTC()).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check member overlap: %w", err)
	}
	return count > 0, nil
}

func carHasOverlap(ctx context.Context, q querier, rego string, start, end time.Time) (bool, error) {
	query := `SELECT COUNT(*) FROM bookings WHERE car = ? AND start_time < ? AND ? < end_time`
	var count int
	if err := q.QueryRowContext(ctx, query, rego, end.UTC(), start.UTC()).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check car overlap: %w", err)
	}
	return count > 0, nil
}

// MemberHasOverlap is the read-only form of the member conflict predicate.
func (db *DB) MemberHasOverlap(ctx context.Context, memberNo int64, start, end time.Time) (bool, error) {
	return memberHasOverlap(ctx, db.DB, memberNo, start, end)
}

// CarHasOverlap is the read-only form of the car conflict predicate.
func (db *DB) CarHasOverlap(ctx context.Context, rego string, start, end time.Time) (bool, error) {
	return carHasOverlap(ctx, db.DB, rego, start, end)
}

// BookCar admits a booking for [start, end) as one atomic unit:
// resolve the member, check both conflict predicates, verify the car,
// insert the ledger row and bump the member statistic. Everything runs
// in a single serializable transaction; any failure rolls the whole
// unit back. The window must already be validated by the caller.
func (db *DB) BookCar(ctx context.Context, email, rego string, start, end time.Time) (*models.Booking, error) {
	tx, err := db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, fmt.Errorf("failed to begin booking transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var memberNo int64
	err = tx.QueryRowContext(ctx, `SELECT member_no FROM members WHERE email = ?`, email).Scan(&memberNo)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMemberNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve member %s: %w", email, err)
	}

	booked, err := memberHasOverlap(ctx, tx, memberNo, start, end)
	if err != nil {
		return nil, err
	}
	if booked {
		return nil, ErrMemberOverlap
	}

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM cars WHERE rego = ?`, rego).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve car %s: %w", rego, err)
	}
	if exists == 0 {
		return nil, ErrCarNotFound
	}

	overlapped, err := carHasOverlap(ctx, tx, rego, start, end)
	if err != nil {
		return nil, err
	}
	if overlapped {
		return nil, ErrCarOverlap
	}

	booking := &models.Booking{
		Ref:        uuid.NewString(),
		CarRego:    rego,
		MemberNo:   memberNo,
		StartTime:  start.UTC(),
		EndTime:    end.UTC(),
		WhenBooked: time.Now().UTC(),
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO bookings (ref, car, made_by, start_time, end_time, when_booked)
         VALUES (?, ?, ?, ?, ?, ?)`,
		booking.Ref, booking.CarRego, booking.MemberNo,
		booking.StartTime, booking.EndTime, booking.WhenBooked,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert booking: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}
	booking.ID = id

	stat, err := tx.ExecContext(ctx,
		`UPDATE members SET stat_bookings = stat_bookings + 1 WHERE member_no = ? AND email = ?`,
		memberNo, email,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update booking statistic: %w", err)
	}
	rows, err := stat.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read statistic update result: %w", err)
	}
	if rows != 1 {
		return nil, fmt.Errorf("booking statistic update touched %d rows", rows)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit booking: %w", err)
	}
	return booking, nil
}

// GetMemberBookings returns the member's booking history, newest first
// by creation time.
func (db *DB) GetMemberBookings(ctx context.Context, email string) ([]*models.MemberBooking, error) {
	query := `SELECT b.car, c.name, b.start_time
              FROM bookings b
              JOIN members m ON (m.member_no = b.made_by)
              JOIN cars c ON (c.rego = b.car)
              WHERE m.email = ?
              ORDER BY b.when_booked DESC`
	rows, err := db.QueryContext(ctx, query, email)
	if err != nil {
		return nil, fmt.Errorf("failed to get member bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*models.MemberBooking
	for rows.Next() {
		b := &models.MemberBooking{}
		if err := rows.Scan(&b.CarRego, &b.CarName, &b.StartTime); err != nil {
			return nil, fmt.Errorf("failed to scan member booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read member bookings: %w", err)
	}
	return bookings, nil
}

// GetBookingDetails looks up a booking by (car, date, starting hour)
// and computes the read-only cost from the member's plan rates.
func (db *DB) GetBookingDetails(ctx context.Context, rego string, date time.Time, hour int) (*models.BookingDetails, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), hour, 0, 0, 0, time.UTC)

	query := `SELECT m.nickname, c.rego, c.name, b.start_time, b.end_time, b.when_booked,
                     y.name, p.daily_rate, p.hourly_rate
              FROM bookings b
              JOIN members m ON (m.member_no = b.made_by)
              JOIN cars c ON (c.rego = b.car)
              JOIN bays y ON (y.id = c.parked_at)
              JOIN membership_plans p ON (p.title = m.plan)
              WHERE b.car = ? AND b.start_time = ?
              ORDER BY b.when_booked DESC`

	var (
		d          models.BookingDetails
		endTime    time.Time
		dailyRate  int64
		hourlyRate int64
	)
	err := db.QueryRowContext(ctx, query, rego, dayStart).Scan(
		&d.MemberNickname, &d.CarRego, &d.CarName, &d.StartTime, &endTime, &d.WhenBooked,
		&d.BayName, &dailyRate, &hourlyRate,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking details: %w", err)
	}

	d.DurationHours = int(endTime.Sub(d.StartTime) / time.Hour)
	d.Cost = float64(dailyRate+hourlyRate*int64(d.DurationHours)) / 100
	return &d, nil
}

// GetBookingByRef returns the raw ledger row for a booking reference.
func (db *DB) GetBookingByRef(ctx context.Context, ref string) (*models.Booking, error) {
	query := `SELECT id, ref, car, made_by, start_time, end_time, when_booked
              FROM bookings WHERE ref = ?`
	b := &models.Booking{}
	err := db.QueryRowContext(ctx, query, ref).Scan(
		&b.ID, &b.Ref, &b.CarRego, &b.MemberNo, &b.StartTime, &b.EndTime, &b.WhenBooked,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking by ref: %w", err)
	}
	return b, nil
}

// GetBookingsByDateRange returns ledger rows whose start falls in
// [startDate, endDate], ordered by start time. Used by the report
// export and the sheets mirror.
func (db *DB) GetBookingsByDateRange(ctx context.Context, startDate, endDate time.Time) ([]*models.Booking, error) {
	query := `SELECT id, ref, car, made_by, start_time, end_time, when_booked
              FROM bookings WHERE start_time >= ? AND start_time < ?
              ORDER BY start_time ASC`
	rows, err := db.QueryContext(ctx, query, startDate.UTC(), endDate.UTC().AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("failed to get bookings by date range: %w", err)
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		b := &models.Booking{}
		if err := rows.Scan(&b.ID, &b.Ref, &b.CarRego, &b.MemberNo, &b.StartTime, &b.EndTime, &b.WhenBooked); err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read bookings: %w", err)
	}
	return bookings, nil
}

// GetBookingByID returns a ledger row by its internal id.
func (db *DB) GetBookingByID(ctx context.Context, id int64) (*models.Booking, error) {
	query := `SELECT id, ref, car, made_by, start_time, end_time, when_booked
              FROM bookings WHERE id = ?`
	b := &models.Booking{}
	err := db.QueryRowContext(ctx, query, id).Scan(
		&b.ID, &b.Ref, &b.CarRego, &b.MemberNo, &b.StartTime, &b.EndTime, &b.WhenBooked,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return b, nil
}
