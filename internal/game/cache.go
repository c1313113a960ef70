package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Cache stores game snapshots. Get returns nil without error on a miss.
type Cache interface {
	Get(ctx context.Context, gameID uuid.UUID) (*Snapshot, error)
	Set(ctx context.Context, snapshot *Snapshot) error
	Delete(ctx context.Context, gameID uuid.UUID) error
}

type RedisCache struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

type RedisCacheOption func(*RedisCache)

func WithCachePrefix(prefix string) RedisCacheOption {
	return func(c *RedisCache) { c.prefix = strings.Trim(prefix, ":") }
}

func WithCacheTTL(d time.Duration) RedisCacheOption {
	return func(c *RedisCache) { c.ttl = d }
}

func NewRedisCache(rdb *redis.Client, opts ...RedisCacheOption) *RedisCache {
	c := &RedisCache{
		rdb:    rdb,
		prefix: "planets:game",
		ttl:    time.Hour,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *RedisCache) key(gameID uuid.UUID) string {
	return c.prefix + ":" + gameID.String() + ":snapshot"
}

func (c *RedisCache) Get(ctx context.Context, gameID uuid.UUID) (*Snapshot, error) {
	data, err := c.rdb.Get(ctx, c.key(gameID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &snapshot, nil
}

func (c *RedisCache) Set(ctx context.Context, snapshot *Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := c.rdb.Set(ctx, c.key(snapshot.Game.ID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

func (c *RedisCache) Delete(ctx context.Context, gameID uuid.UUID) error {
	if err := c.rdb.Del(ctx, c.key(gameID)).Err(); err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}

// MemoryCache keeps encoded snapshots in process memory. Entries are stored
// as JSON so callers never share mutable state with the cache.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[uuid.UUID][]byte
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[uuid.UUID][]byte)}
}

func (c *MemoryCache) Get(_ context.Context, gameID uuid.UUID) (*Snapshot, error) {
	c.mu.RLock()
	data, ok := c.entries[gameID]
	c.mu.RUnlock()
	if !ok {
		return nil, nil
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &snapshot, nil
}

func (c *MemoryCache) Set(_ context.Context, snapshot *Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	c.mu.Lock()
	c.entries[snapshot.Game.ID] = data
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, gameID uuid.UUID) error {
	c.mu.Lock()
	delete(c.entries, gameID)
	c.mu.Unlock()
	return nil
}
