package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"peercar/internal/api"
	"peercar/internal/config"
	"peercar/internal/database"
	"peercar/internal/domain"
	"peercar/internal/google"
	"peercar/internal/logging"
	"peercar/internal/metrics"
	"peercar/internal/models"
	"peercar/internal/repository"
	"peercar/internal/schedule"
	"peercar/internal/service"
	"peercar/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v2"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, seed, logger, closer, loadErr := loadConfigAndCatalog()
	if loadErr != nil {
		return loadErr
	}
	if closer != nil {
		defer (func(c io.Closer) { _ = c.Close() })(closer)
	}

	if err := prepareDirectories(cfg, &logger); err != nil {
		return err
	}

	db, err := initDatabase(cfg, seed, &logger)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics.Register()

	redisClient, cache := initCache(ctx, cfg, &logger)
	defer repository.Close(redisClient)

	// Assign through a nil check so an absent worker stays a nil interface.
	var syncer domain.SyncEnqueuer
	if lw := initLedgerWorker(ctx, cfg, db, redisClient, &logger); lw != nil {
		syncer = lw
	}

	resolver := schedule.NewResolver(schedule.SystemClock{}, cfg.Booking.MaxBookingDays)
	bookingService := service.NewBookingService(db, resolver, syncer, &logger)
	catalogService := service.NewCatalogService(db, cache, &logger)

	if cfg.Backup.Enabled {
		backupService := database.NewBackupService(cfg.Database.Path, cfg.Backup, &logger)
		go backupService.Start(ctx)
	}

	if cfg.Monitoring.PrometheusEnabled {
		go startMetricsServer(cfg.Monitoring.PrometheusPort, &logger)
	}

	httpServer := api.NewHTTPServer(*cfg, bookingService, catalogService, &logger)
	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Error().Err(err).Msg("HTTP server error")
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP shutdown error")
	}

	logger.Info().Msg("Shutdown complete.")
	return nil
}

func loadConfigAndCatalog() (*config.Config, models.CatalogSeed, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	var seed models.CatalogSeed

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, seed, zerolog.Logger{}, nil, err
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, seed, zerolog.Logger{}, nil, err
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	catalogPath := os.Getenv("CATALOG_PATH")
	if catalogPath == "" {
		catalogPath = cfg.Booking.CatalogPath
	}
	catalogData, err := os.ReadFile(catalogPath)
	if err != nil {
		logger.Error().Err(err).Msgf("Ошибка чтения %s", catalogPath)
		return nil, seed, zerolog.Logger{}, closer, err
	}

	if err := yaml.Unmarshal(catalogData, &seed); err != nil {
		logger.Error().Err(err).Msg("Ошибка парсинга catalog.yaml")
		return nil, seed, zerolog.Logger{}, closer, err
	}

	if err := database.ValidateCatalog(seed); err != nil {
		logger.Error().Err(err).Msg("Catalog validation failed")
		return nil, seed, zerolog.Logger{}, closer, err
	}

	return cfg, seed, logger, closer, nil
}

func prepareDirectories(cfg *config.Config, logger *zerolog.Logger) error {
	if cfg == nil {
		return os.ErrInvalid
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		logger.Error().Err(err).Msg("Ошибка создания директории для базы данных")
		return err
	}
	if err := os.MkdirAll(cfg.Exports.Path, 0o755); err != nil {
		logger.Error().Err(err).Msg("Ошибка создания директории для экспорта")
		return err
	}
	return nil
}

func initDatabase(cfg *config.Config, seed models.CatalogSeed, logger *zerolog.Logger) (*database.DB, error) {
	db, err := database.NewDB(cfg.Database.Path, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Ошибка инициализации базы данных")
		return nil, err
	}

	if err := db.SyncCatalog(context.Background(), seed); err != nil {
		logger.Error().Err(err).Msg("Ошибка синхронизации каталога")
	}
	return db, nil
}

func initCache(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*redis.Client, *repository.FailoverCacheRepository) {
	var redisClient *redis.Client
	if cfg.Redis.Address != "" {
		redisClient = repository.NewRedisClient(cfg.Redis)
		if errPing := repository.Ping(ctx, redisClient); errPing != nil {
			logger.Warn().Err(errPing).Msg("Redis unavailable")
		}
	}

	primary := repository.NewRedisCacheRepository(redisClient)
	fallback := repository.NewMemoryCacheRepository()
	return redisClient, repository.NewFailoverCacheRepository(primary, fallback, logger)
}

// initLedgerWorker wires the Google Sheets mirror when credentials are
// configured; bookings still commit without it.
func initLedgerWorker(ctx context.Context, cfg *config.Config, db *database.DB, redisClient *redis.Client, logger *zerolog.Logger) *worker.LedgerWorker {
	if cfg.Google.CredentialsFile == "" || cfg.Google.BookingsSpreadsheetID == "" {
		logger.Info().Msg("Ledger mirror disabled: google credentials not configured")
		return nil
	}

	sheetsSvc, err := google.NewSheetsService(cfg.Google.CredentialsFile, cfg.Google.BookingsSpreadsheetID)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize Google Sheets service")
		return nil
	}

	if err := sheetsSvc.TestConnection(ctx); err != nil {
		logger.Error().Err(err).Msg("Google Sheets connection test failed")
		return nil
	}

	retryPolicy := worker.RetryPolicy{MaxRetries: 5, InitialDelay: 2 * time.Second, MaxDelay: time.Minute, BackoffFactor: 2}
	ledgerWorker := worker.NewLedgerWorker(db, sheetsSvc, redisClient, retryPolicy, logger)
	go ledgerWorker.Start(ctx)

	logger.Info().Msg("Ledger mirror worker started")
	return ledgerWorker
}

func startMetricsServer(port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info().Str("addr", srv.Addr).Msg("Prometheus metrics listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
