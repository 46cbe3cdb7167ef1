package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/wikimasters/wikimasters/internal/model"
)

const articlesKey = "articles:all"

// ArticleCache stores the shaped article listing under a single
// well-known key with a fixed expiry. Writes are last-writer-wins;
// concurrent repopulation after a miss is accepted as benign.
type ArticleCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewArticleCache creates a new listing cache with the given expiry
func NewArticleCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *ArticleCache {
	return &ArticleCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// Get returns the cached listing and whether it was present. Store or
// decode failures count as a miss and are logged, never surfaced.
func (c *ArticleCache) Get(ctx context.Context) ([]model.ShapedArticle, bool) {
	payload, err := c.client.Get(ctx, articlesKey).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.logger.Warn("Failed to read article cache", zap.Error(err))
		return nil, false
	}

	articles, err := decodeArticles(payload)
	if err != nil {
		c.logger.Warn("Failed to decode article cache", zap.Error(err))
		return nil, false
	}

	return articles, true
}

// decodeArticles unpacks a cached listing payload. A corrupt entry is
// treated as a miss by the caller.
func decodeArticles(payload []byte) ([]model.ShapedArticle, error) {
	var articles []model.ShapedArticle
	if err := json.Unmarshal(payload, &articles); err != nil {
		return nil, err
	}
	return articles, nil
}

// Set replaces the cached listing with the fixed TTL. Failures are
// logged only; the freshly computed collection is still served.
func (c *ArticleCache) Set(ctx context.Context, articles []model.ShapedArticle) {
	payload, err := json.Marshal(articles)
	if err != nil {
		c.logger.Warn("Failed to encode article cache", zap.Error(err))
		return
	}

	if err := c.client.Set(ctx, articlesKey, payload, c.ttl).Err(); err != nil {
		c.logger.Warn("Failed to set article cache",
			zap.Duration("ttl", c.ttl),
			zap.Error(err))
		return
	}

	c.logger.Debug("Article cache set",
		zap.Int("count", len(articles)),
		zap.Duration("ttl", c.ttl))
}
