// Package cache keeps whole entity collections under a single key and
// drops them on every write.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/frahmantamala/store-management/internal"
	"github.com/redis/go-redis/v9"
)

// Backend stores encoded values with a time-to-live measured from the write.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Invalidator drops a cached collection.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// NewBackend builds the backend named in cfg. The redis variant is pinged
// before it is returned.
func NewBackend(ctx context.Context, cfg internal.CacheConfig) (Backend, error) {
	switch cfg.Backend {
	case "", "memory":
		return NewMemory(), nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		return NewRedis(client, cfg.Redis.KeyPrefix), nil
	default:
		return nil, fmt.Errorf("unsupported cache backend %q", cfg.Backend)
	}
}
