package database

import (
	"context"
	"fmt"

	"peercar/internal/models"
)

// SyncCatalog upserts the reference data (plans, bays, cars, members)
// in one transaction. Member booking statistics and home-bay
// relocations survive a re-sync; the seed's home_bay only applies on
// first insert.
func (db *DB) SyncCatalog(ctx context.Context, seed models.CatalogSeed) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin catalog sync: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, p := range seed.Plans {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO membership_plans (title, daily_rate, hourly_rate) VALUES (?, ?, ?)
             ON CONFLICT(title) DO UPDATE SET
                daily_rate = excluded.daily_rate,
                hourly_rate = excluded.hourly_rate`,
			p.Title, p.DailyRate, p.HourlyRate,
		)
		if err != nil {
			return fmt.Errorf("failed to sync plan %s: %w", p.Title, err)
		}
	}

	for _, b := range seed.Bays {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO bays (name, address, description, gps_lat, gps_long, walkscore, map_url)
             VALUES (?, ?, ?, ?, ?, ?, ?)
             ON CONFLICT(name) DO UPDATE SET
                address = excluded.address,
                description = excluded.description,
                gps_lat = excluded.gps_lat,
                gps_long = excluded.gps_long,
                walkscore = excluded.walkscore,
                map_url = excluded.map_url`,
			b.Name, b.Address, b.Description, b.GPSLat, b.GPSLong, b.WalkScore, b.MapURL,
		)
		if err != nil {
			return fmt.Errorf("failed to sync bay %s: %w", b.Name, err)
		}
	}

	for _, c := range seed.Cars {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO cars (rego, name, make, model, year, transmission, category, capacity, parked_at)
             VALUES (?, ?, ?, ?, ?, ?, ?, ?, (SELECT id FROM bays WHERE name = ?))
             ON CONFLICT(rego) DO UPDATE SET
                name = excluded.name,
                make = excluded.make,
                model = excluded.model,
                year = excluded.year,
                transmission = excluded.transmission,
                category = excluded.category,
                capacity = excluded.capacity,
                parked_at = excluded.parked_at`,
			c.Rego, c.Name, c.Make, c.Model, c.Year, c.Transmission, c.Category, c.Capacity, c.ParkedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to sync car %s: %w", c.Rego, err)
		}
	}

	for _, m := range seed.Members {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO members (email, nickname, name_title, name_given, name_family, address, home_bay, plan)
             VALUES (?, ?, ?, ?, ?, ?, (SELECT id FROM bays WHERE name = ?), ?)
             ON CONFLICT(email) DO UPDATE SET
                nickname = excluded.nickname,
                name_title = excluded.name_title,
                name_given = excluded.name_given,
                name_family = excluded.name_family,
                address = excluded.address,
                plan = excluded.plan`,
			m.Email, m.Nickname, m.NameTitle, m.NameGiven, m.NameFamily, m.Address, m.HomeBay, m.Plan,
		)
		if err != nil {
			return fmt.Errorf("failed to sync member %s: %w", m.Email, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit catalog sync: %w", err)
	}
	return nil
}

// ValidateCatalog rejects seeds with duplicate identities or dangling
// bay/plan references before they reach the database.
func ValidateCatalog(seed models.CatalogSeed) error {
	bays := make(map[string]bool, len(seed.Bays))
	for _, b := range seed.Bays {
		if b.Name == "" {
			return fmt.Errorf("bay with empty name")
		}
		if bays[b.Name] {
			return fmt.Errorf("duplicate bay name: %s", b.Name)
		}
		bays[b.Name] = true
	}

	plans := make(map[string]bool, len(seed.Plans))
	for _, p := range seed.Plans {
		if p.Title == "" {
			return fmt.Errorf("plan with empty title")
		}
		if plans[p.Title] {
			return fmt.Errorf("duplicate plan title: %s", p.Title)
		}
		plans[p.Title] = true
	}

	regos := make(map[string]bool, len(seed.Cars))
	for _, c := range seed.Cars {
		if c.Rego == "" {
			return fmt.Errorf("car with empty rego")
		}
		if regos[c.Rego] {
			return fmt.Errorf("duplicate car rego: %s", c.Rego)
		}
		regos[c.Rego] = true
		if !bays[c.ParkedAt] {
			return fmt.Errorf("car %s parked at unknown bay %q", c.Rego, c.ParkedAt)
		}
	}

	emails := make(map[string]bool, len(seed.Members))
	for _, m := range seed.Members {
		if m.Email == "" {
			return fmt.Errorf("member with empty email")
		}
		if emails[m.Email] {
			return fmt.Errorf("duplicate member email: %s", m.Email)
		}
		emails[m.Email] = true
		if m.HomeBay != "" && !bays[m.HomeBay] {
			return fmt.Errorf("member %s has unknown home bay %q", m.Email, m.HomeBay)
		}
		if !plans[m.Plan] {
			return fmt.Errorf("member %s has unknown plan %q", m.Email, m.Plan)
		}
	}
	return nil
}
