// Package cache keeps recently read calculation records in front of blob
// storage, either in process or in Redis.
package cache

import (
	"context"
	"time"

	"github.com/jeffcwolf/klinscore/pkg/config"
)

// Cache stores opaque values by key. Get returns nil, nil on a miss.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// New returns a Redis cache when cfg.RedisAddr is set and an in-process LRU
// cache otherwise.
func New(cfg config.CacheConfig) (Cache, error) {
	if cfg.RedisAddr != "" {
		rc, err := NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		return rc, nil
	}
	return NewLRUCache(cfg.Size), nil
}

// TTL returns the configured entry lifetime, defaulting to one hour.
func TTL(cfg config.CacheConfig) time.Duration {
	if cfg.TTLSeconds <= 0 {
		return time.Hour
	}
	return time.Duration(cfg.TTLSeconds) * time.Second
}
