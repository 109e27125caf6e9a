// 包 api：集中注册 HTTP API 路由以解耦主入口，便于挂载到 API_BASE 前缀
package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"haoshiji/internal/cache"
	"haoshiji/internal/metrics"
	"haoshiji/internal/models"
	"haoshiji/internal/places"
	"haoshiji/internal/refresh"
	"haoshiji/internal/safety"
	"haoshiji/internal/store"
)

// Searcher：搜索并补齐评论的数据源（生产环境为 *places.Client）
type Searcher interface {
	Collect(ctx context.Context, query string, opt places.CollectOptions) ([]models.Restaurant, error)
}

// ResultCache：搜索结果缓存（生产环境为 *cache.Cache，nil 指针视为禁用）
type ResultCache interface {
	Key(ns, query string) string
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, b []byte)
}

// DefaultSearchResults：单次搜索返回的餐厅上限
const DefaultSearchResults = 5

// Deps：路由依赖；Places/Cache/Store/Holder 可为 nil
// 约束：Holder 非 nil 时以其当前判定器为准，Analyzer 仅作为初始值
type Deps struct {
	Analyzer *safety.Analyzer
	Holder   *refresh.Holder
	Reload   refresh.Loader
	AdminTok string
	Places   Searcher
	Cache    ResultCache
	Store    *store.Store
	MapsKey  string
	Search   places.CollectOptions
	Workers  int
}

type handler struct {
	Deps
}

// BuildRoutes：构建 API 子路由（路径不含前缀）
func BuildRoutes(d Deps) chi.Router {
	if d.Search.MaxResults <= 0 {
		d.Search.MaxResults = DefaultSearchResults
	}
	if d.Cache == nil {
		d.Cache = (*cache.Cache)(nil)
	}
	if d.Holder == nil {
		d.Holder = refresh.NewHolder(d.Analyzer)
	}
	h := &handler{Deps: d}
	r := chi.NewRouter()
	r.Post("/search", h.instrument("search", h.search))
	r.Post("/classify", h.instrument("classify", h.classify))
	r.Get("/config", h.config)
	r.Get("/stats", h.stats)
	r.Post("/admin/reload", h.reload)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	return r
}
