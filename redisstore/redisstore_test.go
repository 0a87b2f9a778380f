package redisstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/deckforge/deckforge/redisstore"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) (*miniredis.Miniredis, *redisstore.Store) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	store, err := redisstore.New(redisstore.Options{
		RedisURL:  "redis://" + mr.Addr(),
		Namespace: "test",
	})
	require.NoError(t, err)
	return mr, store
}

func TestStoreSetGet(t *testing.T) {
	_, store := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "job:1", `{"stage":"document_analysis"}`, time.Minute))

	v, ok, err := store.Get(ctx, "job:1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `{"stage":"document_analysis"}`, v)
}

func TestStoreGetMissing(t *testing.T) {
	_, store := setupStore(t)
	_, ok, err := store.Get(context.Background(), "missing")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestStoreExpiry(t *testing.T) {
	mr, store := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", "v", time.Second))
	mr.FastForward(2 * time.Second)

	_, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestStoreDelete(t *testing.T) {
	_, store := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", "v", time.Minute))
	require.NoError(t, store.Delete(ctx, "k"))

	_, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestNewRequiresRedisURL(t *testing.T) {
	_, err := redisstore.New(redisstore.Options{})
	require.Error(t, err)
}
