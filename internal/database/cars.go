package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"peercar/internal/models"
)

func (db *DB) GetAllCars(ctx context.Context) ([]*models.Car, error) {
	query := `SELECT c.rego, c.name, c.make, c.model, c.year, c.transmission,
                     c.category, c.capacity, y.name
              FROM cars c
              JOIN bays y ON (y.id = c.parked_at)
              ORDER BY c.rego`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get cars: %w", err)
	}
	defer rows.Close()

	var cars []*models.Car
	for rows.Next() {
		c := &models.Car{}
		err := rows.Scan(&c.Rego, &c.Name, &c.Make, &c.Model, &c.Year,
			&c.Transmission, &c.Category, &c.Capacity, &c.ParkedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan car: %w", err)
		}
		cars = append(cars, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read cars: %w", err)
	}
	return cars, nil
}

func (db *DB) GetCarDetails(ctx context.Context, rego string) (*models.CarDetails, error) {
	query := `SELECT c.rego, c.name, c.make, c.model, c.year, c.transmission,
                     c.category, c.capacity, y.name, y.walkscore, y.map_url
              FROM cars c
              JOIN bays y ON (y.id = c.parked_at)
              WHERE c.rego = ?`
	d := &models.CarDetails{}
	err := db.QueryRowContext(ctx, query, rego).Scan(
		&d.Rego, &d.Name, &d.Make, &d.Model, &d.Year, &d.Transmission,
		&d.Category, &d.Capacity, &d.BayName, &d.WalkScore, &d.MapURL,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCarNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get car details: %w", err)
	}
	d.ParkedAt = d.BayName
	return d, nil
}

// GetCarsInBay lists cars parked at a bay, ordered by car name.
func (db *DB) GetCarsInBay(ctx context.Context, bayName string) ([]*models.CarSummary, error) {
	query := `SELECT c.rego, c.name
              FROM cars c
              JOIN bays y ON (y.id = c.parked_at)
              WHERE y.name = ?
              ORDER BY c.name`
	rows, err := db.QueryContext(ctx, query, bayName)
	if err != nil {
		return nil, fmt.Errorf("failed to get cars in bay: %w", err)
	}
	defer rows.Close()

	var cars []*models.CarSummary
	for rows.Next() {
		c := &models.CarSummary{}
		if err := rows.Scan(&c.Rego, &c.Name); err != nil {
			return nil, fmt.Errorf("failed to scan car summary: %w", err)
		}
		cars = append(cars, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read cars in bay: %w", err)
	}
	return cars, nil
}
