package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aihub/rag-go/internal/knowledge"
	"github.com/aihub/rag-go/internal/logger"
	"github.com/aihub/rag-go/internal/metrics"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RetrievalCache 检索结果的Redis缓存，fail-open：缓存故障退化为直接检索
type RetrievalCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRetrievalCache 创建检索缓存，client为nil时所有操作都是no-op
func NewRetrievalCache(client *redis.Client, ttl time.Duration) *RetrievalCache {
	return &RetrievalCache{
		client: client,
		ttl:    ttl,
		logger: logger.Named("retrieval-cache"),
	}
}

// cacheKey 对规范化的查询参数取哈希，避免key过长
func cacheKey(query, tag string, topK int) string {
	normalized := fmt.Sprintf("%s|%s|%d", strings.ToLower(strings.TrimSpace(query)), tag, topK)
	sum := sha256.Sum256([]byte(normalized))
	return "rag:retrieval:" + hex.EncodeToString(sum[:])
}

// Get 查缓存，未命中或缓存不可用时返回nil
func (c *RetrievalCache) Get(ctx context.Context, query, tag string, topK int) knowledge.RetrievalResult {
	if c == nil || c.client == nil {
		return nil
	}

	payload, err := c.client.Get(ctx, cacheKey(query, tag, topK)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("Cache lookup failed", zap.Error(err))
		}
		return nil
	}

	var result knowledge.RetrievalResult
	if err := json.Unmarshal(payload, &result); err != nil {
		c.logger.Warn("Failed to decode cached retrieval result", zap.Error(err))
		return nil
	}

	metrics.CacheHits.Inc()
	return result
}

// Set 写缓存，失败只记日志
func (c *RetrievalCache) Set(ctx context.Context, query, tag string, topK int, result knowledge.RetrievalResult) {
	if c == nil || c.client == nil {
		return
	}

	payload, err := json.Marshal(result)
	if err != nil {
		c.logger.Warn("Failed to encode retrieval result for cache", zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, cacheKey(query, tag, topK), payload, c.ttl).Err(); err != nil {
		c.logger.Warn("Cache write failed", zap.Error(err))
	}
}
