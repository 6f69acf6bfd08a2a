package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/davidnrm/critiq/internal/database/testutil"
	"github.com/davidnrm/critiq/internal/models"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	srv := miniredis.RunT(t)

	store, err := NewRedisStore(RedisConfig{Address: srv.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = store.Close()
	})

	return store, srv
}

func TestRedisStoreRoundTrip(t *testing.T) {
	store, _ := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "alpha", []byte("payload"), time.Minute))

	value, found, err := store.Get(ctx, "alpha")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("payload"), value)

	require.NoError(t, store.Delete(ctx, "alpha"))

	_, found, err = store.Get(ctx, "alpha")
	require.NoError(t, err)
	require.False(t, found)
}

func TestRedisStoreMissingKey(t *testing.T) {
	store, _ := newTestRedisStore(t)

	value, found, err := store.Get(context.Background(), "nope")
	require.NoError(t, err)
	require.False(t, found)
	require.Nil(t, value)

	// Deleting absent keys is not an error.
	require.NoError(t, store.Delete(context.Background(), "nope"))
}

func TestRedisStoreExpiry(t *testing.T) {
	store, srv := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "ephemeral", []byte("x"), time.Second))

	srv.FastForward(2 * time.Second)

	_, found, err := store.Get(ctx, "ephemeral")
	require.NoError(t, err)
	require.False(t, found)
}

func TestRedisStoreKeyPrefix(t *testing.T) {
	store, srv := newTestRedisStore(t)

	require.NoError(t, store.Set(context.Background(), "alpha", []byte("x"), time.Minute))
	require.True(t, srv.Exists("critiq:alpha"))
}

func TestDatabaseStoreRoundTrip(t *testing.T) {
	store := NewDatabaseStore(testutil.MustOpenTestDB(t))
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "alpha", []byte("payload"), time.Minute))

	value, found, err := store.Get(ctx, "alpha")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("payload"), value)

	// Set on an existing key replaces the value.
	require.NoError(t, store.Set(ctx, "alpha", []byte("updated"), time.Minute))

	value, found, err = store.Get(ctx, "alpha")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("updated"), value)

	require.NoError(t, store.Delete(ctx, "alpha"))

	_, found, err = store.Get(ctx, "alpha")
	require.NoError(t, err)
	require.False(t, found)
}

func TestDatabaseStoreExpiredRowIsAbsent(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	store := NewDatabaseStore(db)
	ctx := context.Background()

	entry := models.CacheEntry{
		Key:       "stale",
		Value:     []byte("x"),
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	require.NoError(t, db.Create(&entry).Error)

	_, found, err := store.Get(ctx, "stale")
	require.NoError(t, err)
	require.False(t, found)

	// The expired row is purged on read.
	var count int64
	require.NoError(t, db.Model(&models.CacheEntry{}).Where("key = ?", "stale").Count(&count).Error)
	require.Zero(t, count)
}
