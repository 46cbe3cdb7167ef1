package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// ErrStoreUnavailable is returned when the key-value store cannot be
// reached. Callers on the page render path treat it as best-effort and
// keep serving.
var ErrStoreUnavailable = errors.New("key-value store unavailable")

const pageviewKeyPrefix = "pageviews:article:"

// PageviewCounter tracks per-article view counts in Redis. The increment
// relies entirely on Redis INCR atomicity; no client-side locking.
type PageviewCounter struct {
	client *redis.Client
	logger *zap.Logger
}

// NewPageviewCounter creates a new pageview counter
func NewPageviewCounter(client *redis.Client, logger *zap.Logger) *PageviewCounter {
	return &PageviewCounter{
		client: client,
		logger: logger,
	}
}

// PageviewKey returns the namespaced counter key for an article. Repeated
// calls for the same article always address the same counter.
func PageviewKey(articleID string) string {
	return pageviewKeyPrefix + articleID
}

// Increment atomically increments the article's counter and returns the
// new value. A fresh key yields 1. Failures are wrapped in
// ErrStoreUnavailable; no retry is attempted (at-most-once).
func (c *PageviewCounter) Increment(ctx context.Context, articleID string) (int64, error) {
	newVal, err := c.client.Incr(ctx, PageviewKey(articleID)).Result()
	if err != nil {
		c.logger.Error("Failed to increment pageview counter",
			zap.String("article_id", articleID),
			zap.Error(err))
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return newVal, nil
}

// Get returns the current counter value, 0 for an absent key.
func (c *PageviewCounter) Get(ctx context.Context, articleID string) (int64, error) {
	val, err := c.client.Get(ctx, PageviewKey(articleID)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return val, nil
}
