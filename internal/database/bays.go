package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"peercar/internal/models"
)

const baySummaryQuery = `SELECT y.name, y.address,
           (SELECT COUNT(*) FROM cars c WHERE c.parked_at = y.id) AS num_cars
       FROM bays y`

func (db *DB) GetAllBays(ctx context.Context) ([]*models.BaySummary, error) {
	rows, err := db.QueryContext(ctx, baySummaryQuery+` ORDER BY y.name`)
	if err != nil {
		return nil, fmt.Errorf("failed to get bays: %w", err)
	}
	defer rows.Close()
	return scanBaySummaries(rows)
}

func (db *DB) GetBay(ctx context.Context, name string) (*models.Bay, error) {
	query := `SELECT id, name, address, description, gps_lat, gps_long, walkscore, map_url
              FROM bays WHERE name = ?`
	b := &models.Bay{}
	err := db.QueryRowContext(ctx, query, name).Scan(
		&b.ID, &b.Name, &b.Address, &b.Description, &b.GPSLat, &b.GPSLong, &b.WalkScore, &b.MapURL,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBayNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bay: %w", err)
	}
	return b, nil
}

// SearchBays matches the term case-insensitively against bay name or
// address. An empty result is a valid outcome, not an error.
func (db *DB) SearchBays(ctx context.Context, term string) ([]*models.BaySummary, error) {
	pattern := "%" + strings.ToLower(strings.TrimSpace(term)) + "%"
	query := baySummaryQuery + ` WHERE LOWER(y.name) LIKE ? OR LOWER(y.address) LIKE ? ORDER BY y.name`
	rows, err := db.QueryContext(ctx, query, pattern, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to search bays: %w", err)
	}
	defer rows.Close()

	bays, err := scanBaySummaries(rows)
	if err != nil {
		return nil, err
	}
	if bays == nil {
		bays = []*models.BaySummary{}
	}
	return bays, nil
}

func scanBaySummaries(rows *sql.Rows) ([]*models.BaySummary, error) {
	var bays []*models.BaySummary
	for rows.Next() {
		b := &models.BaySummary{}
		if err := rows.Scan(&b.Name, &b.Address, &b.NumCars); err != nil {
			return nil, fmt.Errorf("failed to scan bay summary: %w", err)
		}
		bays = append(bays, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read bays: %w", err)
	}
	return bays, nil
}
