package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"peercar/internal/config"
	"peercar/internal/database"
	"peercar/internal/logging"
	"peercar/internal/report"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	var fromStr, toStr string
	flag.StringVar(&fromStr, "from", "", "start date (YYYY-MM-DD), defaults to today")
	flag.StringVar(&toStr, "to", "", "end date (YYYY-MM-DD), defaults to from+30 days")
	flag.Parse()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func(c io.Closer) { _ = c.Close() })(closer)
	}

	from := time.Now().UTC().Truncate(24 * time.Hour)
	if fromStr != "" {
		from, err = time.Parse("2006-01-02", fromStr)
		if err != nil {
			return fmt.Errorf("invalid -from date: %w", err)
		}
	}

	to := from.AddDate(0, 0, 30)
	if toStr != "" {
		to, err = time.Parse("2006-01-02", toStr)
		if err != nil {
			return fmt.Errorf("invalid -to date: %w", err)
		}
	}
	if to.Before(from) {
		return fmt.Errorf("-to must not be before -from")
	}

	db, err := database.NewDB(cfg.Database.Path, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	exporter := report.NewExporter(db, cfg.Exports.Path, logger)
	path, err := exporter.ExportBookings(context.Background(), from, to)
	if err != nil {
		return err
	}

	fmt.Println(path)
	return nil
}
