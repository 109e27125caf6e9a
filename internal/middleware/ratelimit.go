package middleware

import (
	"net/http"
	"sync"
	"time"

	"haoshiji/internal/logger"
	"haoshiji/internal/metrics"
)

// 文档注释：令牌桶限流（每秒）
// 背景：搜索接口会调用外部 Places 服务，峰值时在入口限速，避免耗尽上游配额。
// 约束：简化实现，不做队列排队，超出即返回 429；每个自然秒补满一次。
type TokenBucket struct {
	capacity int
	tokens   int
	lastSec  int64
	mu       sync.Mutex
	now      func() time.Time
}

// NewTokenBucket：qps<=0 时返回 nil（不限流）
func NewTokenBucket(qps int) *TokenBucket {
	if qps <= 0 {
		return nil
	}
	return &TokenBucket{capacity: qps, tokens: qps, lastSec: time.Now().Unix(), now: time.Now}
}

func (tb *TokenBucket) allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	nowSec := tb.now().Unix()
	if tb.lastSec != nowSec {
		tb.lastSec = nowSec
		tb.tokens = tb.capacity
	}
	if tb.tokens > 0 {
		tb.tokens--
		return true
	}
	return false
}

// RateLimit：按令牌桶限流；tb 为 nil 时原样返回 next
func RateLimit(tb *TokenBucket) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if tb == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !tb.allow() {
				metrics.RateLimitedTotal.Inc()
				logger.L().Debug("rate_limited", "path", r.URL.Path)
				w.Header().Set("Retry-After", "1")
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
