package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaps/rental-backend/internal/apperr"
)

func newStore(t *testing.T) (*RedisCodeStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewRedisCodeStore(rdb), mr
}

func TestSetGet(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "12345", `{"email":"a@b.co"}`, 15*time.Minute))

	v, ok, err := store.Get(ctx, "12345")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"email":"a@b.co"}`, v)
}

func TestGetMissingKey(t *testing.T) {
	store, _ := newStore(t)

	v, ok, err := store.Get(context.Background(), "00000")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, v)
}

func TestExpiry(t *testing.T) {
	store, mr := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "ana@example.com", "ana@example.com", time.Minute))
	mr.FastForward(61 * time.Second)

	_, ok, err := store.Get(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPerKeyTTL(t *testing.T) {
	store, mr := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "12345", "pending", 15*time.Minute))
	require.NoError(t, store.Set(ctx, "ana@example.com", "ana@example.com", time.Minute))

	// The marker expires first; the pending record survives.
	mr.FastForward(2 * time.Minute)
	_, ok, err := store.Get(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = store.Get(ctx, "12345")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisCodeStore(rdb)
	mr.Close()

	err := store.Set(context.Background(), "k", "v", time.Minute)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindUnavailable))

	_, _, err = store.Get(context.Background(), "k")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindUnavailable))
}
