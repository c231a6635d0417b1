// Package cache provides a Redis read-through cache for item records. Every
// operation is best-effort: an unreachable cache costs a store round trip,
// never correctness.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/findmepls/catalog/config"
	"github.com/findmepls/catalog/model"
)

// ItemCache caches item rows keyed by ID.
type ItemCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// New creates an ItemCache and verifies the connection with a PING.
func New(cfg config.RedisConfig) (*ItemCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &ItemCache{rdb: rdb, ttl: cfg.CacheTTL}, nil
}

func itemKey(id model.ID) string {
	return fmt.Sprintf("item:%d", id)
}

// GetItems fetches the requested IDs in one MGET and returns the cached items
// plus the IDs it could not serve. An undecodable entry counts as a miss.
func (c *ItemCache) GetItems(ctx context.Context, ids []model.ID) (map[model.ID]model.Item, []model.ID, error) {
	if len(ids) == 0 {
		return nil, nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = itemKey(id)
	}
	values, err := c.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, ids, fmt.Errorf("cache mget: %w", err)
	}

	found := make(map[model.ID]model.Item)
	var missing []model.ID
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			missing = append(missing, ids[i])
			continue
		}
		var item model.Item
		if err := json.Unmarshal([]byte(raw), &item); err != nil {
			missing = append(missing, ids[i])
			continue
		}
		found[ids[i]] = item
	}
	return found, missing, nil
}

// SetItems stores the items with the configured TTL in one pipeline.
func (c *ItemCache) SetItems(ctx context.Context, items []model.Item) error {
	if len(items) == 0 {
		return nil
	}
	pipe := c.rdb.Pipeline()
	for _, item := range items {
		payload, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("marshaling item %d: %w", item.ID, err)
		}
		pipe.Set(ctx, itemKey(item.ID), payload, c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache pipeline set: %w", err)
	}
	return nil
}

// InvalidateItem drops the cached row for one item.
func (c *ItemCache) InvalidateItem(ctx context.Context, id model.ID) error {
	if err := c.rdb.Del(ctx, itemKey(id)).Err(); err != nil {
		return fmt.Errorf("cache del: %w", err)
	}
	return nil
}

// Close closes the underlying Redis connection.
func (c *ItemCache) Close() error {
	return c.rdb.Close()
}
