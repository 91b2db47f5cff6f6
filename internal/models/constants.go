package models

const (
	// DefaultMaxBookingDays горизонт бронирования по умолчанию
	DefaultMaxBookingDays = 365

	// WorkerQueueSize размер очереди воркера синхронизации
	WorkerQueueSize = 128

	// CatalogCacheTTL время жизни кэша каталога в секундах
	CatalogCacheTTL = 5 * 60

	// HoursPerDay верхняя граница стартового часа
	HoursPerDay = 24
)

// Sync task lifecycle statuses.
const (
	SyncStatusPending   = "pending"
	SyncStatusRetry     = "retry"
	SyncStatusCompleted = "completed"
	SyncStatusFailed    = "failed"
)

// Sync task types. Bookings are append-only, so the mirror only upserts.
const (
	SyncTaskUpsert = "upsert"
)
