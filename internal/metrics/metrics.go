package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var durationBuckets = []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000, 3000}

var (
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "haoshiji_requests_total",
		Help: "Total number of API requests by endpoint",
	}, []string{"endpoint"})
	RequestDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "haoshiji_request_duration_ms",
		Help:    "API request duration in milliseconds",
		Buckets: durationBuckets,
	}, []string{"endpoint"})
	RestaurantsAnalyzedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "haoshiji_restaurants_analyzed_total",
		Help: "Restaurants analyzed by resulting safety level",
	}, []string{"level"})
	ReviewsScannedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "haoshiji_reviews_scanned_total",
		Help: "Total reviews scanned for risk keywords",
	})
	RegistryMatchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "haoshiji_registry_matches_total",
		Help: "Registry lookups by registry kind and match tier (none = no match)",
	}, []string{"registry", "tier"})
	RedisHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "haoshiji_redis_hits_total",
		Help: "Total redis cache hits",
	})
	RedisMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "haoshiji_redis_misses_total",
		Help: "Total redis cache misses",
	})
	PlacesRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "haoshiji_places_requests_total",
		Help: "Total Places REST requests by operation",
	}, []string{"op"})
	PlacesFailTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "haoshiji_places_fail_total",
		Help: "Total Places REST failures by operation",
	}, []string{"op"})
	PlacesDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "haoshiji_places_duration_ms",
		Help:    "Places REST call duration in milliseconds",
		Buckets: durationBuckets,
	}, []string{"op"})
	RateLimitedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "haoshiji_rate_limited_total",
		Help: "Requests rejected by the token bucket",
	})
)

func init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(RequestDurationMs)
	prometheus.MustRegister(RestaurantsAnalyzedTotal)
	prometheus.MustRegister(ReviewsScannedTotal)
	prometheus.MustRegister(RegistryMatchesTotal)
	prometheus.MustRegister(RedisHitsTotal)
	prometheus.MustRegister(RedisMissesTotal)
	prometheus.MustRegister(PlacesRequestsTotal)
	prometheus.MustRegister(PlacesFailTotal)
	prometheus.MustRegister(PlacesDurationMs)
	prometheus.MustRegister(RateLimitedTotal)
}

// 文档注释：返回 Prometheus 指标监听器
// 背景：统一暴露注册指标，供 Prometheus 抓取；由 API 路由挂载到 /api/metrics。
func Handler() http.Handler { return promhttp.Handler() }
