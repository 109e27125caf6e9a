package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"haoshiji/internal/logger"
)

// RedisOptionsFromEnv：读取 REDIS_HOST/REDIS_PORT/REDIS_PASS/REDIS_DB
// 约束：REDIS_DB 解析失败时回退到 0
func RedisOptionsFromEnv() *redis.Options {
	addr := envOr("REDIS_HOST", "127.0.0.1") + ":" + envOr("REDIS_PORT", "6379")
	return &redis.Options{
		Addr:     addr,
		Password: envOr("REDIS_PASS", ""),
		DB:       envIntOr("REDIS_DB", 0),
	}
}

// OpenRedisFromEnv：打开客户端并 Ping；失败时关闭客户端并返回错误，由调用方决定降级为无缓存
func OpenRedisFromEnv(ctx context.Context) (*redis.Client, error) {
	opt := RedisOptionsFromEnv()
	logger.L().Debug("redis_env", "addr", opt.Addr, "db", opt.DB)
	rdb := redis.NewClient(opt)
	pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opt.Addr, err)
	}
	return rdb, nil
}
