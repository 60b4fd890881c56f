package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/nemonet1337/zaiStockView/pkg/inventory"
)

// DefaultCacheTTL is used when CachedStorage gets a non-positive ttl
const DefaultCacheTTL = 30 * time.Second

// CachedStorage is a Redis read-through cache in front of another Storage.
// The item list and the trend list are cached as JSON and dropped on every
// write. Redis failures degrade to direct reads.
// A fill that raced with a write in this process is not stored; writers in
// other processes are bounded by the TTL.
// Redisによる読み取りキャッシュ
type CachedStorage struct {
	inner  inventory.Storage
	client redis.Cmdable
	ttl    time.Duration
	prefix string
	logger *zap.Logger

	mu         sync.Mutex
	generation map[string]uint64 // キーごとの無効化回数
}

var _ inventory.Storage = (*CachedStorage)(nil)

// NewCachedStorage wraps inner with a cache stored under keys starting with prefix
func NewCachedStorage(inner inventory.Storage, client redis.Cmdable, prefix string, ttl time.Duration, logger *zap.Logger) *CachedStorage {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if prefix == "" {
		prefix = "zaistockview"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedStorage{
		inner:      inner,
		client:     client,
		ttl:        ttl,
		prefix:     prefix,
		logger:     logger,
		generation: make(map[string]uint64),
	}
}

// ItemsKey is the cache key of the item list
func (c *CachedStorage) ItemsKey() string { return c.prefix + ":items" }

// TrendKey is the cache key of the trend list
func (c *CachedStorage) TrendKey() string { return c.prefix + ":trend" }

// List returns the cached item list, loading it on a miss
func (c *CachedStorage) List(ctx context.Context) ([]inventory.Item, error) {
	var items []inventory.Item
	if c.load(ctx, c.ItemsKey(), &items) {
		return items, nil
	}
	gen := c.generationOf(c.ItemsKey())
	items, err := c.inner.List(ctx)
	if err != nil {
		return nil, err
	}
	c.store(ctx, c.ItemsKey(), gen, items)
	return items, nil
}

// Get reads through to the wrapped storage
func (c *CachedStorage) Get(ctx context.Context, id int64) (*inventory.Item, error) {
	return c.inner.Get(ctx, id)
}

// Upsert writes through and drops the cached item list
func (c *CachedStorage) Upsert(ctx context.Context, item *inventory.Item) error {
	if err := c.inner.Upsert(ctx, item); err != nil {
		return err
	}
	c.invalidate(ctx, c.ItemsKey())
	return nil
}

// Delete writes through and drops the cached item list
func (c *CachedStorage) Delete(ctx context.Context, id int64) error {
	if err := c.inner.Delete(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx, c.ItemsKey())
	return nil
}

// NextID is never cached
func (c *CachedStorage) NextID(ctx context.Context) (int64, error) {
	return c.inner.NextID(ctx)
}

// ListTrend returns the cached trend list, loading it on a miss
func (c *CachedStorage) ListTrend(ctx context.Context) ([]inventory.TrendPoint, error) {
	var points []inventory.TrendPoint
	if c.load(ctx, c.TrendKey(), &points) {
		return points, nil
	}
	gen := c.generationOf(c.TrendKey())
	points, err := c.inner.ListTrend(ctx)
	if err != nil {
		return nil, err
	}
	c.store(ctx, c.TrendKey(), gen, points)
	return points, nil
}

// PutTrendPoint writes through and drops the cached trend list
func (c *CachedStorage) PutTrendPoint(ctx context.Context, point inventory.TrendPoint) error {
	if err := c.inner.PutTrendPoint(ctx, point); err != nil {
		return err
	}
	c.invalidate(ctx, c.TrendKey())
	return nil
}

// Ping checks both the wrapped storage and Redis
func (c *CachedStorage) Ping(ctx context.Context) error {
	if err := c.inner.Ping(ctx); err != nil {
		return err
	}
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("Redis pingに失敗しました: %w", err)
	}
	return nil
}

// Close closes the wrapped storage. The Redis client belongs to the caller.
func (c *CachedStorage) Close() error {
	return c.inner.Close()
}

// ヘルパーメソッド

func (c *CachedStorage) load(ctx context.Context, key string, dest any) bool {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("キャッシュ取得に失敗しました", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		c.logger.Warn("キャッシュデータが壊れています", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (c *CachedStorage) generationOf(key string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation[key]
}

// store writes value only if key was not invalidated since gen was taken
func (c *CachedStorage) store(ctx context.Context, key string, gen uint64, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("キャッシュ用のエンコードに失敗しました", zap.String("key", key), zap.Error(err))
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation[key] != gen {
		c.logger.Debug("書き込みと競合したためキャッシュ保存をスキップしました", zap.String("key", key))
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("キャッシュ保存に失敗しました", zap.String("key", key), zap.Error(err))
	}
}

func (c *CachedStorage) invalidate(ctx context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation[key]++
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.logger.Warn("キャッシュ削除に失敗しました", zap.String("key", key), zap.Error(err))
	}
}
