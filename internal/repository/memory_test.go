package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryGetSetJSON(t *testing.T) {
	repo := NewMemoryCacheRepository()
	ctx := context.Background()

	var got map[string]int
	found, err := repo.GetJSON(ctx, "missing", &got)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, repo.SetJSON(ctx, "counts", map[string]int{"cars": 2}, time.Minute))

	found, err = repo.GetJSON(ctx, "counts", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 2, got["cars"])
}

func TestMemoryTTLExpiry(t *testing.T) {
	repo := NewMemoryCacheRepository()
	ctx := context.Background()

	require.NoError(t, repo.SetJSON(ctx, "short", "value", 10*time.Millisecond))

	time.Sleep(30 * time.Millisecond)

	var got string
	found, err := repo.GetJSON(ctx, "short", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryZeroTTLNeverExpires(t *testing.T) {
	repo := NewMemoryCacheRepository()
	ctx := context.Background()

	require.NoError(t, repo.SetJSON(ctx, "forever", "value", 0))

	var got string
	found, err := repo.GetJSON(ctx, "forever", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "value", got)
}

func TestMemoryInvalidate(t *testing.T) {
	repo := NewMemoryCacheRepository()
	ctx := context.Background()

	require.NoError(t, repo.SetJSON(ctx, "a", 1, time.Minute))
	require.NoError(t, repo.SetJSON(ctx, "b", 2, time.Minute))
	require.NoError(t, repo.Invalidate(ctx, "a", "b"))

	var got int
	found, err := repo.GetJSON(ctx, "a", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryCheckRateLimit(t *testing.T) {
	repo := NewMemoryCacheRepository()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := repo.CheckRateLimit(ctx, "book:alice", 2, 50*time.Millisecond)
		require.NoError(t, err)
		assert.True(t, ok)
	}

	ok, err := repo.CheckRateLimit(ctx, "book:alice", 2, 50*time.Millisecond)
	require.NoError(t, err)
	assert.False(t, ok)

	// Window reset.
	time.Sleep(60 * time.Millisecond)
	ok, err = repo.CheckRateLimit(ctx, "book:alice", 2, 50*time.Millisecond)
	require.NoError(t, err)
	assert.True(t, ok)
}
