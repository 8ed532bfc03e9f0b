package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/codec"
	"github.com/eko/gocache/lib/v4/store"
	go_store "github.com/eko/gocache/store/go_cache/v4"
	redis_store "github.com/eko/gocache/store/redis/v4"
	"github.com/jon4hz/naijamap/internal/config"
	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// PrefixedCache wraps a cache.Cache, adds a prefix to all keys and stores values as JSON.
type PrefixedCache[T any] struct {
	cache     *cache.Cache[any]
	cacheType config.CacheType
	prefix    string
	ttl       time.Duration
}

// NewPrefixedCache creates a new prefixed cache wrapper.
func NewPrefixedCache[T any](c *cache.Cache[any], cacheType config.CacheType, prefix string, ttl time.Duration) *PrefixedCache[T] {
	return &PrefixedCache[T]{
		cache:     c,
		cacheType: cacheType,
		prefix:    prefix,
		ttl:       ttl,
	}
}

func (p *PrefixedCache[T]) key(key any) string {
	return p.prefix + fmt.Sprintf("%v", key)
}

// Get retrieves a value from the cache with the prefixed key.
func (p *PrefixedCache[T]) Get(ctx context.Context, key any) (T, error) {
	var result T
	value, err := p.cache.Get(ctx, p.key(key))
	if err != nil {
		return result, err
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		// the redis store hands values back as strings
		data = []byte(v)
	default:
		return result, fmt.Errorf("unexpected cache value type %T", value)
	}

	if err := json.Unmarshal(data, &result); err != nil {
		return result, err
	}
	return result, nil
}

// Set stores a value in the cache with the prefixed key.
func (p *PrefixedCache[T]) Set(ctx context.Context, key any, object T) error {
	data, err := json.Marshal(object)
	if err != nil {
		return err
	}
	var options []store.Option
	if p.ttl > 0 {
		options = append(options, store.WithExpiration(p.ttl))
	}
	return p.cache.Set(ctx, p.key(key), data, options...)
}

// Delete removes a value from the cache with the prefixed key.
func (p *PrefixedCache[T]) Delete(ctx context.Context, key any) error {
	return p.cache.Delete(ctx, p.key(key))
}

// Clear removes all values from the cache.
func (p *PrefixedCache[T]) Clear(ctx context.Context) error {
	return p.cache.Clear(ctx)
}

// GetType returns the configured cache type.
func (p *PrefixedCache[T]) GetType() config.CacheType {
	return p.cacheType
}

// GetStats returns the cache statistics.
func (p *PrefixedCache[T]) GetStats() *codec.Stats {
	return p.cache.GetCodec().GetStats()
}

func newCacheInstanceByType(cfg *config.CacheConfig) (*cache.Cache[any], error) {
	switch cfg.Type {
	case config.CacheTypeRedis:
		return newRedisCache(cfg)
	default:
		return newMemoryCache(cfg), nil
	}
}

func newMemoryCache(cfg *config.CacheConfig) *cache.Cache[any] {
	gocacheClient := gocache.New(cfg.TTL, 2*cfg.TTL)
	gocacheStore := go_store.NewGoCache(gocacheClient)
	return cache.New[any](gocacheStore)
}

func newRedisCache(cfg *config.CacheConfig) (*cache.Cache[any], error) {
	opts, err := redisOptions(cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	redisStore := redis_store.NewRedis(redis.NewClient(opts))
	return cache.New[any](redisStore), nil
}

// redisOptions accepts either a plain host:port address or a redis:// url.
func redisOptions(addr string) (*redis.Options, error) {
	if strings.Contains(addr, "://") {
		opts, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		return opts, nil
	}
	return &redis.Options{Addr: addr}, nil
}
