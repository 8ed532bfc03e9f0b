package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jon4hz/naijamap/internal/config"
	"github.com/jon4hz/naijamap/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type ProgressCacheSuite struct {
	suite.Suite
	mini *miniredis.Miniredis
	ctx  context.Context
}

func TestProgressCacheSuite(t *testing.T) {
	suite.Run(t, new(ProgressCacheSuite))
}

func (s *ProgressCacheSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())
	s.ctx = context.Background()
}

func (s *ProgressCacheSuite) caches() map[string]*ProgressCache {
	memory, err := NewProgressCache(&config.CacheConfig{Type: config.CacheTypeMemory, TTL: time.Minute})
	s.Require().NoError(err)
	redis, err := NewProgressCache(&config.CacheConfig{Type: config.CacheTypeRedis, RedisURL: s.mini.Addr(), TTL: time.Minute})
	s.Require().NoError(err)
	return map[string]*ProgressCache{
		"memory": memory,
		"redis":  redis,
	}
}

func (s *ProgressCacheSuite) TestSetGetInvalidate() {
	for name, c := range s.caches() {
		s.Run(name, func() {
			_, ok := c.Get(s.ctx, 7)
			s.False(ok)

			p := &database.Progress{UserID: 7, GuessedStates: `["Lagos","Kano"]`, HighScore: 3}
			p.ID = 1
			c.Set(s.ctx, p)

			got, ok := c.Get(s.ctx, 7)
			s.Require().True(ok)
			s.Equal(p.ID, got.ID)
			s.Equal(`["Lagos","Kano"]`, got.GuessedStates)
			s.Equal(3, got.HighScore)

			c.Invalidate(s.ctx, 7)
			_, ok = c.Get(s.ctx, 7)
			s.False(ok)
		})
	}
}

func (s *ProgressCacheSuite) TestSetKeepsNewerRecord() {
	for name, c := range s.caches() {
		s.Run(name, func() {
			saved := time.Now()
			fresh := &database.Progress{UserID: 8, GuessedStates: `["Lagos"]`}
			fresh.UpdatedAt = saved
			stale := &database.Progress{UserID: 8, GuessedStates: `[]`}
			stale.UpdatedAt = saved.Add(-time.Second)

			c.Set(s.ctx, fresh)
			c.Set(s.ctx, stale)

			got, ok := c.Get(s.ctx, 8)
			s.Require().True(ok)
			s.Equal(`["Lagos"]`, got.GuessedStates)

			newer := &database.Progress{UserID: 8, GuessedStates: `["Lagos","Kano"]`}
			newer.UpdatedAt = saved.Add(time.Second)
			c.Set(s.ctx, newer)

			got, ok = c.Get(s.ctx, 8)
			s.Require().True(ok)
			s.Equal(`["Lagos","Kano"]`, got.GuessedStates)
		})
	}
}

func (s *ProgressCacheSuite) TestRedisKeysArePrefixed() {
	c, err := NewProgressCache(&config.CacheConfig{Type: config.CacheTypeRedis, RedisURL: "redis://" + s.mini.Addr(), TTL: time.Minute})
	s.Require().NoError(err)

	c.Set(s.ctx, &database.Progress{UserID: 12, GuessedStates: "[]"})

	s.True(s.mini.Exists(ProgressCachePrefix + "12"))
}

func (s *ProgressCacheSuite) TestRedisEntriesExpire() {
	c, err := NewProgressCache(&config.CacheConfig{Type: config.CacheTypeRedis, RedisURL: s.mini.Addr(), TTL: time.Minute})
	s.Require().NoError(err)

	c.Set(s.ctx, &database.Progress{UserID: 3, GuessedStates: "[]"})
	s.mini.FastForward(2 * time.Minute)

	_, ok := c.Get(s.ctx, 3)
	s.False(ok)
}

func (s *ProgressCacheSuite) TestRedisDownBehavesLikeMiss() {
	c, err := NewProgressCache(&config.CacheConfig{Type: config.CacheTypeRedis, RedisURL: s.mini.Addr(), TTL: time.Minute})
	s.Require().NoError(err)
	s.mini.Close()

	c.Set(s.ctx, &database.Progress{UserID: 5, GuessedStates: "[]"})
	_, ok := c.Get(s.ctx, 5)
	s.False(ok)
}

func TestNilProgressCache(t *testing.T) {
	var c *ProgressCache
	_, ok := c.Get(context.Background(), 1)
	assert.False(t, ok)
	c.Set(context.Background(), &database.Progress{UserID: 1})
	c.Invalidate(context.Background(), 1)
	assert.Nil(t, c.Stats())
	assert.False(t, c.Shared())
}

func TestSharedOnlyForRedis(t *testing.T) {
	mini := miniredis.RunT(t)

	memory, err := NewProgressCache(&config.CacheConfig{Type: config.CacheTypeMemory, TTL: time.Minute})
	require.NoError(t, err)
	assert.False(t, memory.Shared())

	redis, err := NewProgressCache(&config.CacheConfig{Type: config.CacheTypeRedis, RedisURL: mini.Addr(), TTL: time.Minute})
	require.NoError(t, err)
	assert.True(t, redis.Shared())
}

func TestRedisOptions(t *testing.T) {
	opts, err := redisOptions("localhost:6379")
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", opts.Addr)

	opts, err = redisOptions("redis://:secret@cache:6380/2")
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 2, opts.DB)

	_, err = redisOptions("redis://cache:6380/notanumber")
	assert.Error(t, err)
}

func TestStatsReportsType(t *testing.T) {
	c, err := NewProgressCache(&config.CacheConfig{Type: config.CacheTypeMemory, TTL: time.Minute})
	require.NoError(t, err)

	stats := c.Stats()
	require.NotNil(t, stats)
	assert.Equal(t, "progress", stats.CacheName)
	assert.Equal(t, config.CacheTypeMemory, stats.Type)
}
