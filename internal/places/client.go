package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"haoshiji/internal/logger"
	"haoshiji/internal/metrics"
	"haoshiji/internal/models"
)

// DefaultBaseURL：Google Places Web Service 根地址
const DefaultBaseURL = "https://maps.googleapis.com/maps/api/place"

var (
	ErrMissingKey = errors.New("places: missing api key")
	ErrStatus     = errors.New("places: upstream status")
)

// 文档注释：Places REST 客户端
// 背景：采集阶段调用外部数据源，取得餐厅清单与评论，写成批次数据供分类使用；与分类核心解耦。
// 约束：BaseURL 为空时使用 DefaultBaseURL；HTTP 为空时使用 10s 超时的默认客户端。
type Client struct {
	Key      string
	BaseURL  string
	Language string
	HTTP     *http.Client
}

// New：按密钥、语言与超时创建客户端
func New(key, baseURL, language string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{Key: key, BaseURL: baseURL, Language: language, HTTP: &http.Client{Timeout: timeout}}
}

// SearchOptions：Text Search 过滤条件
type SearchOptions struct {
	MinRating  float64
	MaxResults int
}

type textSearchResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		PlaceID          string  `json:"place_id"`
		Name             string  `json:"name"`
		Rating           float64 `json:"rating"`
		UserRatingsTotal int     `json:"user_ratings_total"`
		FormattedAddress string  `json:"formatted_address"`
	} `json:"results"`
}

type detailsResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Result       struct {
		Reviews []models.Review `json:"reviews"`
	} `json:"result"`
}

// 文档注释：以文字查询搜索餐厅
// 参数：query 形如「台北市 大安區 餐廳」；评分低于 MinRating 的结果在本地过滤；最多返回 MaxResults 家（<=0 不限）。
// 返回：餐厅清单（评论为空，由 Reviews 另行补齐）。
// 约束：HTTP 非 200 或上游 status 非 OK/ZERO_RESULTS 视为错误。
func (c *Client) SearchText(ctx context.Context, query string, opt SearchOptions) ([]models.Restaurant, error) {
	q := url.Values{}
	q.Set("query", query)
	var r textSearchResponse
	if err := c.get(ctx, "textsearch", q, &r); err != nil {
		return nil, err
	}
	out := make([]models.Restaurant, 0, len(r.Results))
	for _, p := range r.Results {
		if p.Rating < opt.MinRating {
			continue
		}
		out = append(out, models.Restaurant{
			PlaceID:          p.PlaceID,
			Name:             p.Name,
			Rating:           p.Rating,
			UserRatingsTotal: p.UserRatingsTotal,
			FormattedAddress: p.FormattedAddress,
		})
		if opt.MaxResults > 0 && len(out) >= opt.MaxResults {
			break
		}
	}
	logger.L().Info("places_search", "query", query, "raw", len(r.Results), "kept", len(out))
	return out, nil
}

// 文档注释：取得单家餐厅评论（Place Details, fields=reviews）
// 约束：max<=0 时不截断；上游通常最多给 5 则。
func (c *Client) Reviews(ctx context.Context, placeID string, max int) ([]models.Review, error) {
	if placeID == "" {
		return nil, errors.New("places: empty place_id")
	}
	q := url.Values{}
	q.Set("place_id", placeID)
	q.Set("fields", "reviews")
	var r detailsResponse
	if err := c.get(ctx, "details", q, &r); err != nil {
		return nil, err
	}
	reviews := r.Result.Reviews
	if max > 0 && len(reviews) > max {
		reviews = reviews[:max]
	}
	if reviews == nil {
		reviews = []models.Review{}
	}
	return reviews, nil
}

func (c *Client) get(ctx context.Context, op string, q url.Values, dst any) error {
	if c.Key == "" {
		return ErrMissingKey
	}
	base := c.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	q.Set("key", c.Key)
	if c.Language != "" {
		q.Set("language", c.Language)
	}
	u := strings.TrimRight(base, "/") + "/" + op + "/json?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	client := c.HTTP
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	t0 := time.Now()
	metrics.PlacesRequestsTotal.WithLabelValues(op).Inc()
	logger.L().Debug("places_req", "op", op)
	resp, err := client.Do(req)
	if err != nil {
		logger.L().Error("places_http_error", "op", op, "err", err)
		metrics.PlacesFailTotal.WithLabelValues(op).Inc()
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		metrics.PlacesFailTotal.WithLabelValues(op).Inc()
		return fmt.Errorf("%w: HTTP %d: %s", ErrStatus, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.PlacesFailTotal.WithLabelValues(op).Inc()
		return err
	}
	var st struct {
		Status       string `json:"status"`
		ErrorMessage string `json:"error_message"`
	}
	if err := json.Unmarshal(raw, &st); err != nil {
		logger.L().Error("places_decode_error", "op", op, "err", err)
		metrics.PlacesFailTotal.WithLabelValues(op).Inc()
		return err
	}
	dur := time.Since(t0).Milliseconds()
	metrics.PlacesDurationMs.WithLabelValues(op).Observe(float64(dur))
	logger.L().Debug("places_resp", "op", op, "status", st.Status, "duration_ms", dur)
	if st.Status != "" && st.Status != "OK" && st.Status != "ZERO_RESULTS" {
		metrics.PlacesFailTotal.WithLabelValues(op).Inc()
		return fmt.Errorf("%w: %s %s", ErrStatus, st.Status, st.ErrorMessage)
	}
	return json.Unmarshal(raw, dst)
}
