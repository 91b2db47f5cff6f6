package repository

import (
	"context"
	"sync/atomic"
	"time"

	"peercar/internal/domain"

	"github.com/rs/zerolog"
)

// FailoverCacheRepository prefers the primary (Redis) and falls back
// to the in-memory repository when the primary errors. It probes the
// primary again after a cooldown.
type FailoverCacheRepository struct {
	primary   domain.CacheRepository
	fallback  domain.CacheRepository
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64
}

const recoveryCooldown = time.Minute

func NewFailoverCacheRepository(primary, fallback domain.CacheRepository, logger *zerolog.Logger) *FailoverCacheRepository {
	return &FailoverCacheRepository{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverCacheRepository) usePrimary() bool {
	if !r.isDown.Load() {
		return true
	}
	last := time.Unix(0, r.lastCheck.Load())
	if time.Since(last) > recoveryCooldown {
		r.isDown.Store(false)
		return true
	}
	return false
}

func (r *FailoverCacheRepository) markDown(err error) {
	r.logger.Error().Err(err).Msg("Primary cache repository failed, falling back to memory")
	r.isDown.Store(true)
	r.lastCheck.Store(time.Now().UnixNano())
}

func (r *FailoverCacheRepository) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	if r.usePrimary() {
		found, err := r.primary.GetJSON(ctx, key, dest)
		if err == nil {
			return found, nil
		}
		r.markDown(err)
	}
	return r.fallback.GetJSON(ctx, key, dest)
}

func (r *FailoverCacheRepository) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if r.usePrimary() {
		err := r.primary.SetJSON(ctx, key, value, ttl)
		if err == nil {
			return nil
		}
		r.markDown(err)
	}
	return r.fallback.SetJSON(ctx, key, value, ttl)
}

func (r *FailoverCacheRepository) Invalidate(ctx context.Context, keys ...string) error {
	if r.usePrimary() {
		err := r.primary.Invalidate(ctx, keys...)
		if err == nil {
			return nil
		}
		r.markDown(err)
	}
	return r.fallback.Invalidate(ctx, keys...)
}

func (r *FailoverCacheRepository) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if r.usePrimary() {
		allowed, err := r.primary.CheckRateLimit(ctx, key, limit, window)
		if err == nil {
			return allowed, nil
		}
		r.markDown(err)
	}
	return r.fallback.CheckRateLimit(ctx, key, limit, window)
}
