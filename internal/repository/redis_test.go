package repository

import (
	"context"
	"testing"
	"time"

	"peercar/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedisRepo(t *testing.T) (*miniredis.Miniredis, *RedisCacheRepository) {
	mr := miniredis.RunT(t)
	client := NewRedisClient(config.RedisConfig{Address: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewRedisCacheRepository(client)
}

func TestRedisGetSetJSON(t *testing.T) {
	_, repo := setupRedisRepo(t)
	ctx := context.Background()

	type payload struct {
		Rego string `json:"rego"`
		Name string `json:"name"`
	}

	found, err := repo.GetJSON(ctx, "catalog:car:ABC123", &payload{})
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, repo.SetJSON(ctx, "catalog:car:ABC123", payload{Rego: "ABC123", Name: "Beryl"}, time.Minute))

	var got payload
	found, err = repo.GetJSON(ctx, "catalog:car:ABC123", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Beryl", got.Name)
}

func TestRedisTTLExpiry(t *testing.T) {
	mr, repo := setupRedisRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SetJSON(ctx, "catalog:bays", []string{"carlton-gratton"}, time.Second))

	mr.FastForward(2 * time.Second)

	var got []string
	found, err := repo.GetJSON(ctx, "catalog:bays", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisInvalidate(t *testing.T) {
	_, repo := setupRedisRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SetJSON(ctx, "catalog:cars", []string{"ABC123"}, time.Minute))
	require.NoError(t, repo.SetJSON(ctx, "catalog:bays", []string{"carlton-gratton"}, time.Minute))

	require.NoError(t, repo.Invalidate(ctx, "catalog:cars", "catalog:bays"))

	var got []string
	found, err := repo.GetJSON(ctx, "catalog:cars", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisCheckRateLimit(t *testing.T) {
	mr, repo := setupRedisRepo(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := repo.CheckRateLimit(ctx, "book:alice@example.org", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
	}

	ok, err := repo.CheckRateLimit(ctx, "book:alice@example.org", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	// The window reopens once the counter expires.
	mr.FastForward(2 * time.Minute)
	ok, err = repo.CheckRateLimit(ctx, "book:alice@example.org", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisNilClient(t *testing.T) {
	repo := NewRedisCacheRepository(nil)
	ctx := context.Background()

	_, err := repo.GetJSON(ctx, "k", &struct{}{})
	assert.Error(t, err)
	assert.Error(t, repo.SetJSON(ctx, "k", "v", time.Minute))
	assert.Error(t, repo.Invalidate(ctx, "k"))
	_, err = repo.CheckRateLimit(ctx, "k", 1, time.Minute)
	assert.Error(t, err)
}

func TestPingAndClose(t *testing.T) {
	mr := miniredis.RunT(t)
	client := NewRedisClient(config.RedisConfig{Address: mr.Addr()})

	require.NoError(t, Ping(context.Background(), client))
	require.NoError(t, Close(client))
	assert.NoError(t, Close(nil))
}
