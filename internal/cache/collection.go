package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/frahmantamala/store-management/pkg/metrics"
)

// LoadFunc reads the full collection from the entity store.
type LoadFunc[T any] func(ctx context.Context) ([]T, error)

// Collection caches one entity family as a single list. A miss loads the
// whole list, stores it and serves it. Each Get decodes a fresh copy, so
// callers may modify what they receive.
type Collection[T any] struct {
	backend Backend
	key     string
	ttl     time.Duration
	load    LoadFunc[T]
	logger  *slog.Logger

	mu         sync.Mutex
	generation atomic.Uint64
}

func NewCollection[T any](backend Backend, key string, ttl time.Duration, load LoadFunc[T], logger *slog.Logger) *Collection[T] {
	return &Collection[T]{
		backend: backend,
		key:     key,
		ttl:     ttl,
		load:    load,
		logger:  logger.With("collection", key),
	}
}

func (c *Collection[T]) Key() string {
	return c.key
}

// Get serves the cached list, loading it on a miss. A failing backend read
// degrades to the entity store.
func (c *Collection[T]) Get(ctx context.Context) ([]T, error) {
	if items, ok := c.lookup(ctx); ok {
		return items, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if items, ok := c.lookup(ctx); ok {
		return items, nil
	}

	gen := c.generation.Load()
	items, err := c.load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", c.key, err)
	}

	data, err := json.Marshal(items)
	if err != nil {
		c.logger.Warn("failed to encode cached collection", "error", err)
		return items, nil
	}

	// an invalidation that raced the load wins; the next read reloads
	if c.generation.Load() == gen {
		if err := c.backend.Set(ctx, c.key, data, c.ttl); err != nil {
			c.logger.Warn("failed to store cached collection", "error", err)
		}
	}

	return items, nil
}

func (c *Collection[T]) Invalidate(ctx context.Context) error {
	c.generation.Add(1)
	metrics.CacheInvalidations.WithLabelValues(c.key).Inc()
	if err := c.backend.Delete(ctx, c.key); err != nil {
		return fmt.Errorf("failed to invalidate %s cache: %w", c.key, err)
	}
	return nil
}

func (c *Collection[T]) lookup(ctx context.Context) ([]T, bool) {
	data, ok, err := c.backend.Get(ctx, c.key)
	if err != nil {
		metrics.CacheRequests.WithLabelValues(c.key, "error").Inc()
		c.logger.Warn("cache read failed, falling back to store", "error", err)
		return nil, false
	}
	if !ok {
		metrics.CacheRequests.WithLabelValues(c.key, "miss").Inc()
		return nil, false
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		metrics.CacheRequests.WithLabelValues(c.key, "error").Inc()
		c.logger.Warn("failed to decode cached collection", "error", err)
		return nil, false
	}
	metrics.CacheRequests.WithLabelValues(c.key, "hit").Inc()
	return items, true
}
