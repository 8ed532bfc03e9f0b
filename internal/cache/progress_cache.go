package cache

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/eko/gocache/lib/v4/codec"
	"github.com/jon4hz/naijamap/internal/config"
	"github.com/jon4hz/naijamap/internal/database"
)

// ProgressCachePrefix is prepended to every progress cache key.
const ProgressCachePrefix = "progress-"

// ProgressCache is a read-through cache of progress records keyed by user ID.
// Errors never surface to callers; a failing cache behaves like an empty one.
type ProgressCache struct {
	records *PrefixedCache[database.Progress]
}

// NewProgressCache creates the progress cache for the configured backend.
func NewProgressCache(cfg *config.CacheConfig) (*ProgressCache, error) {
	instance, err := newCacheInstanceByType(cfg)
	if err != nil {
		return nil, err
	}
	return &ProgressCache{
		records: NewPrefixedCache[database.Progress](instance, cfg.Type, ProgressCachePrefix, cfg.TTL),
	}, nil
}

// Get returns the cached progress of a user.
func (p *ProgressCache) Get(ctx context.Context, userID uint) (*database.Progress, bool) {
	if p == nil {
		return nil, false
	}
	progress, err := p.records.Get(ctx, userID)
	if err != nil {
		log.Debug("progress cache miss", "user_id", userID, "error", err)
		return nil, false
	}
	return &progress, true
}

// Set caches the progress record of its user.
// A cached record with a later UpdatedAt is kept.
func (p *ProgressCache) Set(ctx context.Context, progress *database.Progress) {
	if p == nil || progress == nil {
		return
	}
	if cached, ok := p.Get(ctx, progress.UserID); ok && cached.UpdatedAt.After(progress.UpdatedAt) {
		log.Debug("cached progress is newer, keeping it", "user_id", progress.UserID)
		return
	}
	if err := p.records.Set(ctx, progress.UserID, *progress); err != nil {
		log.Warn("failed to cache progress", "user_id", progress.UserID, "error", err)
	}
}

// Invalidate drops the cached progress of a user.
func (p *ProgressCache) Invalidate(ctx context.Context, userID uint) {
	if p == nil {
		return
	}
	if err := p.records.Delete(ctx, userID); err != nil {
		log.Debug("failed to invalidate progress cache", "user_id", userID, "error", err)
	}
}

// Shared reports whether every process using the same config sees the same entries.
func (p *ProgressCache) Shared() bool {
	return p != nil && p.records.GetType() == config.CacheTypeRedis
}

// Stats returns hit/miss counters of the cache.
func (p *ProgressCache) Stats() *Stats {
	if p == nil {
		return nil
	}
	return &Stats{
		Stats:     p.records.GetStats(),
		CacheName: "progress",
		Type:      p.records.GetType(),
	}
}

type Stats struct {
	*codec.Stats
	CacheName string           `json:"cacheName"`
	Type      config.CacheType `json:"type"`
}
