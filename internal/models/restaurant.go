// 包 models：餐厅与评论的输入/输出结构
// 背景：批次数据由 Places 采集工具写出，字段集合随来源变化；
// 核心只读取少数字段，其余字段原样保留并在输出时写回
package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrBatchFormat：批次既不是数组也不是 {"restaurants": [...]}
var ErrBatchFormat = errors.New("models: batch must be an array or an object with a restaurants field")

// Review：单则评论（字段名沿用 Places Details 接口）
// 约束：未识别字段（relative_time_description、profile_photo_url 等）原样保留
type Review struct {
	AuthorName string  `json:"author_name"`
	Rating     float64 `json:"rating"`
	Text       string  `json:"text"`
	Time       int64   `json:"time"`

	fields fieldSet
}

type reviewFields struct {
	AuthorName string  `json:"author_name"`
	Rating     float64 `json:"rating"`
	Text       string  `json:"text"`
	Time       int64   `json:"time"`
}

func (f reviewFields) values() map[string]any {
	return map[string]any{
		"author_name": f.AuthorName,
		"rating":      f.Rating,
		"text":        f.Text,
		"time":        f.Time,
	}
}

func (rv Review) plain() reviewFields {
	return reviewFields{AuthorName: rv.AuthorName, Rating: rv.Rating, Text: rv.Text, Time: rv.Time}
}

func (rv *Review) UnmarshalJSON(data []byte) error {
	var f reviewFields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*rv = Review{AuthorName: f.AuthorName, Rating: f.Rating, Text: f.Text, Time: f.Time}
	return rv.fields.capture(data, f.values())
}

func (rv Review) MarshalJSON() ([]byte, error) {
	out, err := rv.fields.merge(rv.plain().values(), func() ([]byte, error) { return MarshalPlain(rv.plain()) })
	if err != nil {
		return nil, err
	}
	return MarshalPlain(out)
}

// Restaurant：单家餐厅
// 约束：由 JSON 解码得到时，输出以输入的原始字段为底：未识别字段原样写回，
// 未修改的已识别字段保留原始字节，输入中没有的键不会被补上
type Restaurant struct {
	PlaceID          string   `json:"place_id,omitempty"`
	Name             string   `json:"name"`
	Rating           float64  `json:"rating"`
	UserRatingsTotal int      `json:"user_ratings_total,omitempty"`
	FormattedAddress string   `json:"formatted_address"`
	Reviews          []Review `json:"reviews"`

	fields fieldSet
}

// restaurantFields 与 Restaurant 字段保持一致，仅用于避免 (Un)MarshalJSON 递归
type restaurantFields struct {
	PlaceID          string   `json:"place_id,omitempty"`
	Name             string   `json:"name"`
	Rating           float64  `json:"rating"`
	UserRatingsTotal int      `json:"user_ratings_total,omitempty"`
	FormattedAddress string   `json:"formatted_address"`
	Reviews          []Review `json:"reviews"`
}

func (f restaurantFields) values() map[string]any {
	return map[string]any{
		"place_id":           f.PlaceID,
		"name":               f.Name,
		"rating":             f.Rating,
		"user_ratings_total": f.UserRatingsTotal,
		"formatted_address":  f.FormattedAddress,
		"reviews":            f.Reviews,
	}
}

func (r Restaurant) plain() restaurantFields {
	return restaurantFields{
		PlaceID:          r.PlaceID,
		Name:             r.Name,
		Rating:           r.Rating,
		UserRatingsTotal: r.UserRatingsTotal,
		FormattedAddress: r.FormattedAddress,
		Reviews:          r.Reviews,
	}
}

// UnmarshalJSON：解码已识别字段，并保留输入的原始字段
// 约束：rating 等数值字段为 null 时按零值处理
func (r *Restaurant) UnmarshalJSON(data []byte) error {
	var f restaurantFields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*r = Restaurant{
		PlaceID:          f.PlaceID,
		Name:             f.Name,
		Rating:           f.Rating,
		UserRatingsTotal: f.UserRatingsTotal,
		FormattedAddress: f.FormattedAddress,
		Reviews:          f.Reviews,
	}
	return r.fields.capture(data, f.values())
}

// Fields：以原始 JSON 形式返回全部字段（含未识别字段），供输出层追加新字段
func (r Restaurant) Fields() (map[string]json.RawMessage, error) {
	return r.fields.merge(r.plain().values(), func() ([]byte, error) { return MarshalPlain(r.plain()) })
}

// Extra：返回未识别字段的原始值
func (r Restaurant) Extra(key string) (json.RawMessage, bool) {
	v, ok := r.fields.extra[key]
	return v, ok
}

// SetExtra：写入附加字段（键不得与已识别字段冲突）
func (r *Restaurant) SetExtra(key string, value json.RawMessage) error {
	if _, ok := (restaurantFields{}).values()[key]; ok {
		return fmt.Errorf("models: %q is a known field", key)
	}
	r.fields.setExtra(key, value)
	return nil
}

// MarshalJSON：见 Fields
func (r Restaurant) MarshalJSON() ([]byte, error) {
	fields, err := r.Fields()
	if err != nil {
		return nil, err
	}
	return MarshalPlain(fields)
}

// MarshalPlain：与 json.Marshal 相同，但不转义 <、>、&
func MarshalPlain(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// DecodeBatch：读取餐厅批次，接受裸数组或 {"restaurants": [...]}
func DecodeBatch(rd io.Reader) ([]Restaurant, error) {
	data, err := io.ReadAll(rd)
	if err != nil {
		return nil, fmt.Errorf("models: read batch: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, ErrBatchFormat
	}
	switch data[0] {
	case '[':
		var list []Restaurant
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBatchFormat, err)
		}
		return list, nil
	case '{':
		var wrapped struct {
			Restaurants *[]Restaurant `json:"restaurants"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBatchFormat, err)
		}
		if wrapped.Restaurants == nil {
			return nil, ErrBatchFormat
		}
		return *wrapped.Restaurants, nil
	}
	return nil, ErrBatchFormat
}
