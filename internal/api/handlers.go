package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"haoshiji/internal/logger"
	"haoshiji/internal/metrics"
	"haoshiji/internal/models"
	"haoshiji/internal/safety"
	"haoshiji/internal/store"
)

// searchRequest：前端搜索条件
type searchRequest struct {
	City     string `json:"city"`
	District string `json:"district"`
	Address  string `json:"address"`
}

// searchResponse：搜索/分类结果；Query 仅搜索接口有值
type searchResponse struct {
	Status      string              `json:"status"`
	Query       string              `json:"query,omitempty"`
	Count       int                 `json:"count"`
	Restaurants []safety.Classified `json:"restaurants"`
}

type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// BuildQuery：组合搜索文字「<城市> <区> <地址> 餐廳」，区为空时不留多余空白
func BuildQuery(city, district, address string) string {
	parts := make([]string, 0, 4)
	for _, p := range []string{city, district, address} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	parts = append(parts, "餐廳")
	return strings.Join(parts, " ")
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	b, err := models.MarshalPlain(v)
	if err != nil {
		logger.L().Error("api_encode_error", "err", err)
		code = http.StatusInternalServerError
		b = []byte(`{"status":"error","message":"encode failed"}`)
	}
	writeRaw(w, code, b)
}

func writeRaw(w http.ResponseWriter, code int, b []byte) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.Header().Set("cache-control", "no-store")
	w.WriteHeader(code)
	_, _ = w.Write(b)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorResponse{Status: "error", Message: msg})
}

func (h *handler) instrument(endpoint string, fn http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t0 := time.Now()
		metrics.RequestsTotal.WithLabelValues(endpoint).Inc()
		fn(w, r)
		metrics.RequestDurationMs.WithLabelValues(endpoint).Observe(float64(time.Since(t0).Milliseconds()))
		h.Store.IncrStats(r.Context(), endpoint)
	}
}

// analyze：判定 + 排序
func (h *handler) analyze(ctx context.Context, list []models.Restaurant) ([]safety.Classified, error) {
	out, err := h.Holder.Load().AnalyzeAll(ctx, list, h.Workers)
	if err != nil {
		return nil, err
	}
	safety.Rank(out)
	return out, nil
}

// saveRun：可选持久化；失败只记录日志
func (h *handler) saveRun(ctx context.Context, source, query string, items []safety.Classified) {
	if h.Store == nil {
		return
	}
	version := ""
	if a := h.Holder.Load(); a != nil && a.Catalog != nil {
		version = a.Catalog.Version()
	}
	if _, err := h.Store.SaveRun(ctx, store.Summarize(source, query, version, items), items); err != nil {
		logger.L().Warn("run_save_failed", "source", source, "err", err)
	}
}

// 文档注释：POST /search
// 背景：组合查询 → Places 搜索与评论 → 判定 → 排序；结果按查询文字缓存。
// 约束：城市或地址为空返回 400；上游或判定失败返回 500。
func (h *handler) search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "請求格式錯誤")
		return
	}
	if strings.TrimSpace(req.City) == "" || strings.TrimSpace(req.Address) == "" {
		writeError(w, http.StatusBadRequest, "請提供城市和地址")
		return
	}
	query := BuildQuery(req.City, req.District, req.Address)
	ctx := r.Context()
	l := logger.With("api")

	// 缓存键带判定器摘要：名册或目录重载后旧结果不再命中
	key := h.Cache.Key("search:"+h.Holder.Version(), query)
	if b, ok := h.Cache.Get(ctx, key); ok {
		w.Header().Set("x-cache", "HIT")
		writeRaw(w, http.StatusOK, b)
		return
	}
	if h.Places == nil {
		writeError(w, http.StatusServiceUnavailable, "搜尋服務未設定")
		return
	}
	l.Info("search_request", "query", query)
	list, err := h.Places.Collect(ctx, query, h.Search)
	if err != nil {
		l.Error("search_upstream_error", "query", query, "err", err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("伺服器錯誤: %v", err))
		return
	}
	items, err := h.analyze(ctx, list)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("伺服器錯誤: %v", err))
		return
	}
	for _, c := range items {
		l.Debug("search_result", "name", c.Restaurant.Name, "reviews", len(c.Restaurant.Reviews), "level", c.Safety.Level.String(),
			"certified", c.Safety.Certification != nil, "inspection_failed", c.Safety.Inspection != nil)
	}
	resp := searchResponse{Status: "success", Query: query, Count: len(items), Restaurants: items}
	b, err := models.MarshalPlain(resp)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("伺服器錯誤: %v", err))
		return
	}
	h.Cache.Set(ctx, key, b)
	h.saveRun(ctx, "search", query, items)
	writeRaw(w, http.StatusOK, b)
}

// 文档注释：POST /classify
// 背景：直接对上传的批次（数组或 {"restaurants": [...]}）判定排序，不调用 Places。
func (h *handler) classify(w http.ResponseWriter, r *http.Request) {
	list, err := models.DecodeBatch(http.MaxBytesReader(w, r.Body, 8<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	items, err := h.analyze(r.Context(), list)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("伺服器錯誤: %v", err))
		return
	}
	if items == nil {
		items = []safety.Classified{}
	}
	h.saveRun(r.Context(), "classify", "", items)
	writeJSON(w, http.StatusOK, searchResponse{Status: "success", Count: len(items), Restaurants: items})
}

// GET /config：前端地图所需配置
func (h *handler) config(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"googleMapsApiKey": h.MapsKey})
}

// GET /stats：查询统计（需启用 Postgres）
func (h *handler) stats(w http.ResponseWriter, r *http.Request) {
	t, err := h.Store.GetTotals(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "統計未啟用")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"total": t.Total, "today": t.Today})
}

// POST /admin/reload：立即重新加载名册与关键词目录
// 约束：未配置 ADMIN_TOKEN 或未提供重载函数时返回 404；令牌不符返回 403
func (h *handler) reload(w http.ResponseWriter, r *http.Request) {
	if h.AdminTok == "" || h.Reload == nil {
		http.NotFound(w, r)
		return
	}
	if r.Header.Get("x-admin-token") != h.AdminTok {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}
	if err := h.Holder.Reload(r.Context(), h.Reload); err != nil {
		writeError(w, http.StatusInternalServerError, "重新載入失敗: "+err.Error())
		return
	}
	a := h.Holder.Load()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":            "success",
		"certified":         a.Certified.Len(),
		"inspection_failed": a.Inspection.Len(),
		"catalog_version":   a.Catalog.Version(),
	})
}
