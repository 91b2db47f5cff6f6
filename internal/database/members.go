package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"peercar/internal/models"
)

// GetMemberByEmail returns the member profile joined with the home bay name.
func (db *DB) GetMemberByEmail(ctx context.Context, email string) (*models.Member, error) {
	query := `SELECT m.member_no, m.email, m.nickname, m.name_title, m.name_given, m.name_family,
                     m.address, COALESCE(y.name, ''), m.plan, m.since, m.stat_bookings
              FROM members m
              LEFT JOIN bays y ON (y.id = m.home_bay)
              WHERE m.email = ?`
	m := &models.Member{}
	err := db.QueryRowContext(ctx, query, email).Scan(
		&m.MemberNo, &m.Email, &m.Nickname, &m.NameTitle, &m.NameGiven, &m.NameFamily,
		&m.Address, &m.HomeBay, &m.Plan, &m.Since, &m.StatBookings,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMemberNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	return m, nil
}

// MemberNoByEmail resolves the caller-facing email into the ledger identity.
func (db *DB) MemberNoByEmail(ctx context.Context, email string) (int64, error) {
	var memberNo int64
	err := db.QueryRowContext(ctx, `SELECT member_no FROM members WHERE email = ?`, email).Scan(&memberNo)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrMemberNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to resolve member number: %w", err)
	}
	return memberNo, nil
}

// UpdateHomeBay relocates a member's default bay. The bay is resolved
// by name; both lookups and the update run in one transaction. Returns
// the new home bay name.
func (db *DB) UpdateHomeBay(ctx context.Context, email, bayName string) (string, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin homebay transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var bayID int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM bays WHERE name = ?`, bayName).Scan(&bayID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrBayNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve bay %s: %w", bayName, err)
	}

	result, err := tx.ExecContext(ctx, `UPDATE members SET home_bay = ? WHERE email = ?`, bayID, email)
	if err != nil {
		return "", fmt.Errorf("failed to update home bay: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return "", fmt.Errorf("failed to read home bay update result: %w", err)
	}
	if rows == 0 {
		return "", ErrMemberNotFound
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit home bay update: %w", err)
	}
	return bayName, nil
}
