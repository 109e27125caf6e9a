// 包 cache：搜索结果的 Redis 缓存
// 约束：nil *Cache 视为禁用，所有方法直接返回未命中/无操作；Redis 故障只记录日志，不影响主流程
package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"haoshiji/internal/logger"
	"haoshiji/internal/metrics"
)

type Cache struct {
	rdb    redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// New：rdb 为 nil 时返回 nil（禁用缓存）
func New(rdb redis.UniversalClient, prefix string, ttl time.Duration) *Cache {
	if rdb == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Cache{rdb: rdb, prefix: prefix, ttl: ttl}
}

// Key：命名空间 + 归一化查询文本的 SHA1
func (c *Cache) Key(ns, query string) string {
	norm := strings.Join(strings.Fields(strings.ToLower(query)), " ")
	sum := sha1.Sum([]byte(norm))
	prefix := ""
	if c != nil {
		prefix = c.prefix
	}
	return prefix + ns + ":" + hex.EncodeToString(sum[:])
}

// Get：命中返回 true
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.L().Warn("redis_get_error", "key", key, "err", err)
		}
		metrics.RedisMissesTotal.Inc()
		return nil, false
	}
	metrics.RedisHitsTotal.Inc()
	logger.L().Debug("redis_hit", "key", key)
	return b, true
}

// Set：写入并设置 TTL
func (c *Cache) Set(ctx context.Context, key string, val []byte) {
	if c == nil {
		return
	}
	if err := c.rdb.Set(ctx, key, val, c.ttl).Err(); err != nil {
		logger.L().Warn("redis_set_error", "key", key, "err", err)
	}
}

// TTL：缓存有效期
func (c *Cache) TTL() time.Duration {
	if c == nil {
		return 0
	}
	return c.ttl
}
