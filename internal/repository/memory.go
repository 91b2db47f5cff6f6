package repository

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// MemoryCacheRepository is the in-process fallback used when Redis is
// absent or unhealthy. Values are kept as JSON to match the Redis
// representation exactly.
type MemoryCacheRepository struct {
	entries    sync.Map
	rateLimits sync.Map
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

func NewMemoryCacheRepository() *MemoryCacheRepository {
	return &MemoryCacheRepository{}
}

func (r *MemoryCacheRepository) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	val, ok := r.entries.Load(key)
	if !ok {
		return false, nil
	}
	entry := val.(*memoryEntry)
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		r.entries.Delete(key)
		return false, nil
	}
	if err := json.Unmarshal(entry.data, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (r *MemoryCacheRepository) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	entry := &memoryEntry{data: data}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}
	r.entries.Store(key, entry)
	return nil
}

func (r *MemoryCacheRepository) Invalidate(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		r.entries.Delete(key)
	}
	return nil
}

type rateLimitEntry struct {
	count     int
	expiresAt time.Time
}

func (r *MemoryCacheRepository) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	val, ok := r.rateLimits.Load(key)

	var entry *rateLimitEntry
	if !ok {
		entry = &rateLimitEntry{
			count:     1,
			expiresAt: now.Add(window),
		}
	} else {
		entry = val.(*rateLimitEntry)
		if now.After(entry.expiresAt) {
			entry.count = 1
			entry.expiresAt = now.Add(window)
		} else {
			entry.count++
		}
	}

	r.rateLimits.Store(key, entry)
	return entry.count <= limit, nil
}
