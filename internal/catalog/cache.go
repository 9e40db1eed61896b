package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const snapshotKey = "catalog:snapshot"

// SnapshotCache keeps the assembled catalog snapshot in Redis so the quote
// path does not hit Postgres on every request. Cache failures are reported to
// the caller, who treats them as a miss.
type SnapshotCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewSnapshotCache constructs a SnapshotCache with the given TTL.
func NewSnapshotCache(rdb *redis.Client, ttl time.Duration) *SnapshotCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &SnapshotCache{rdb: rdb, ttl: ttl}
}

// Get returns the cached snapshot. The second return is false on a miss.
func (c *SnapshotCache) Get(ctx context.Context) (Snapshot, bool, error) {
	raw, err := c.rdb.Get(ctx, snapshotKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Snapshot{}, false, nil
		}
		return Snapshot{}, false, err
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		// A corrupt entry is dropped rather than served.
		_ = c.rdb.Del(ctx, snapshotKey).Err()
		return Snapshot{}, false, err
	}
	return snap, true, nil
}

// Set stores the snapshot for the configured TTL.
func (c *SnapshotCache) Set(ctx context.Context, snap Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, snapshotKey, raw, c.ttl).Err()
}

// Invalidate drops the cached snapshot. Admin mutations call this so the next
// quote sees the new catalog immediately.
func (c *SnapshotCache) Invalidate(ctx context.Context) error {
	return c.rdb.Del(ctx, snapshotKey).Err()
}
