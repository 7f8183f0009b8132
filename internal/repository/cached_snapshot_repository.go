package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/acme/timetable-scheduler/internal/scheduler"
)

// snapshotCache is the slice of service.CacheService this decorator needs.
// Declared locally so the repository package doesn't depend on internal/service.
type snapshotCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, pattern string) error
}

// CachedSnapshotRepository wraps a scheduler.Repository with a Redis
// read-through cache so repeated generate calls for the same department
// within the TTL skip the catalog fan-out query. Cache operations flow
// through a snapshotCache (backed by service.CacheService in production) so
// hit/miss ratios and write latency land in the same Prometheus collectors
// as the rest of the API.
type CachedSnapshotRepository struct {
	inner scheduler.Repository
	cache snapshotCache
	ttl   time.Duration
}

// NewCachedSnapshotRepository builds the decorator around inner.
func NewCachedSnapshotRepository(inner scheduler.Repository, cache snapshotCache, ttl time.Duration) *CachedSnapshotRepository {
	return &CachedSnapshotRepository{inner: inner, cache: cache, ttl: ttl}
}

func snapshotCacheKey(departmentID scheduler.ID) string {
	return fmt.Sprintf("scheduler:snapshot:%s", departmentID)
}

// LoadSnapshot serves a cached snapshot when present and falls through to
// inner on a miss, populating the cache for subsequent calls. Cache
// failures never fail the call; they only skip the optimization.
func (r *CachedSnapshotRepository) LoadSnapshot(ctx context.Context, departmentID scheduler.ID) (*scheduler.Snapshot, error) {
	var cached scheduler.Snapshot
	if hit, _ := r.cache.Get(ctx, snapshotCacheKey(departmentID), &cached); hit {
		return &cached, nil
	}

	snapshot, err := r.inner.LoadSnapshot(ctx, departmentID)
	if err != nil {
		return nil, err
	}

	_ = r.cache.Set(ctx, snapshotCacheKey(departmentID), snapshot, r.ttl)

	return snapshot, nil
}

// Invalidate drops the cached snapshot for a department. The catalog
// write paths do not call it, so a cached snapshot otherwise stays until
// its TTL expires.
func (r *CachedSnapshotRepository) Invalidate(ctx context.Context, departmentID scheduler.ID) error {
	return r.cache.Invalidate(ctx, snapshotCacheKey(departmentID))
}
