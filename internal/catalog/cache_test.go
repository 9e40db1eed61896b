package catalog_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/gulali-id/backend-gulali/internal/catalog"
)

func newTestCache(t *testing.T) (*catalog.SnapshotCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return catalog.NewSnapshotCache(rdb, 30*time.Second), mr
}

func TestSnapshotCacheRoundTrip(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	_, ok, err := cache.Get(ctx)
	require.NoError(t, err)
	require.False(t, ok)

	snap := catalog.Snapshot{
		Categories: []catalog.Category{{ID: "cat-1", Name: "Hard Candy"}},
		Settings: catalog.Settings{
			MaxTotalKg:   decimal.NewFromInt(40),
			LeadTimeDays: 10,
		},
	}
	require.NoError(t, cache.Set(ctx, snap))

	got, ok, err := cache.Get(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got.Categories, 1)
	require.Equal(t, "Hard Candy", got.Categories[0].Name)
	require.True(t, got.Settings.MaxTotalKg.Equal(decimal.NewFromInt(40)))
}

func TestSnapshotCacheInvalidate(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, catalog.Snapshot{}))
	require.NoError(t, cache.Invalidate(ctx))

	_, ok, err := cache.Get(ctx)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSnapshotCacheDropsCorruptEntry(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	mr.Set("catalog:snapshot", "{not json")

	_, ok, err := cache.Get(ctx)
	require.Error(t, err)
	require.False(t, ok)
	require.False(t, mr.Exists("catalog:snapshot"))
}
