package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

// DB wraps the SQLite handle behind the booking ledger and catalog queries.
type DB struct {
	*sql.DB
	logger *zerolog.Logger
}

func NewDB(path string, logger *zerolog.Logger) (*DB, error) {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_txlock=immediate&_fk=1", path)
	if path == ":memory:" {
		// shared cache keeps the same in-memory DB across pool connections
		dsn = "file::memory:?_busy_timeout=5000&_txlock=immediate&_fk=1&cache=shared"
	} else {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	logger.Info().Str("path", path).Msg("База данных инициализирована")
	return &DB{DB: db, logger: logger}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		// Тарифные планы
		`CREATE TABLE IF NOT EXISTS membership_plans (
            title TEXT PRIMARY KEY,
            daily_rate INTEGER NOT NULL,
            hourly_rate INTEGER NOT NULL
        )`,
		// Боксы (парковочные площадки)
		`CREATE TABLE IF NOT EXISTS bays (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            name TEXT UNIQUE NOT NULL,
            address TEXT NOT NULL,
            description TEXT NOT NULL DEFAULT '',
            gps_lat REAL NOT NULL DEFAULT 0,
            gps_long REAL NOT NULL DEFAULT 0,
            walkscore INTEGER NOT NULL DEFAULT 0,
            map_url TEXT NOT NULL DEFAULT ''
        )`,
		// Автомобили
		`CREATE TABLE IF NOT EXISTS cars (
            rego TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            make TEXT NOT NULL DEFAULT '',
            model TEXT NOT NULL DEFAULT '',
            year INTEGER NOT NULL DEFAULT 0,
            transmission TEXT NOT NULL DEFAULT '',
            category TEXT NOT NULL DEFAULT '',
            capacity INTEGER NOT NULL DEFAULT 0,
            parked_at INTEGER NOT NULL REFERENCES bays(id)
        )`,
		// Участники
		`CREATE TABLE IF NOT EXISTS members (
            member_no INTEGER PRIMARY KEY AUTOINCREMENT,
            email TEXT UNIQUE NOT NULL,
            nickname TEXT NOT NULL,
            name_title TEXT NOT NULL DEFAULT '',
            name_given TEXT NOT NULL DEFAULT '',
            name_family TEXT NOT NULL DEFAULT '',
            address TEXT NOT NULL DEFAULT '',
            home_bay INTEGER REFERENCES bays(id),
            plan TEXT NOT NULL REFERENCES membership_plans(title),
            since DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
            stat_bookings INTEGER NOT NULL DEFAULT 0
        )`,
		// Журнал бронирований, записи не изменяются
		`CREATE TABLE IF NOT EXISTS bookings (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            ref TEXT UNIQUE NOT NULL,
            car TEXT NOT NULL REFERENCES cars(rego),
            made_by INTEGER NOT NULL REFERENCES members(member_no),
            start_time DATETIME NOT NULL,
            end_time DATETIME NOT NULL,
            when_booked DATETIME NOT NULL
        )`,
		// Очередь синхронизации с Google Sheets
		`CREATE TABLE IF NOT EXISTS sync_queue (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            task_type TEXT NOT NULL,
            booking_id INTEGER NOT NULL,
            payload TEXT NOT NULL,
            status TEXT NOT NULL DEFAULT 'pending',
            retry_count INTEGER NOT NULL DEFAULT 0,
            last_error TEXT,
            created_at DATETIME NOT NULL,
            processed_at DATETIME,
            next_retry_at DATETIME
        )`,

		`CREATE INDEX IF NOT EXISTS idx_bookings_car_start ON bookings(car, start_time)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_member_start ON bookings(made_by, start_time)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_when_booked ON bookings(when_booked)`,
		`CREATE INDEX IF NOT EXISTS idx_cars_parked_at ON cars(parked_at)`,
		`CREATE INDEX IF NOT EXISTS idx_sync_queue_status ON sync_queue(status)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}
	return nil
}

func (db *DB) Close() error {
	return db.DB.Close()
}
