package models

import (
	"bytes"
	"encoding/json"
	"reflect"
)

// fieldSet：解码时的原始字段快照
// 约束：raw 为 nil 表示由代码构造；否则输出以输入为底，只覆盖解码后被修改过的已识别字段，
// 输入中不存在且仍为零值的已识别字段不输出
type fieldSet struct {
	raw   map[string]json.RawMessage
	seen  map[string][]byte
	extra map[string]json.RawMessage
}

// capture：记录输入的全部字段；known 为解码后已识别字段的值
func (s *fieldSet) capture(data []byte, known map[string]any) error {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	if all == nil {
		return nil
	}
	s.raw = all
	s.seen = make(map[string][]byte, len(known))
	for k, v := range known {
		if _, ok := all[k]; !ok {
			continue
		}
		b, err := MarshalPlain(v)
		if err != nil {
			return err
		}
		s.seen[k] = b
	}
	for k, v := range all {
		if _, ok := known[k]; ok {
			continue
		}
		s.setExtra(k, v)
	}
	return nil
}

func (s *fieldSet) setExtra(key string, v json.RawMessage) {
	if s.extra == nil {
		s.extra = make(map[string]json.RawMessage)
	}
	s.extra[key] = v
}

// merge：组装输出字段；plain 为代码构造时的默认编码
func (s fieldSet) merge(cur map[string]any, plain func() ([]byte, error)) (map[string]json.RawMessage, error) {
	out := make(map[string]json.RawMessage, len(cur)+len(s.extra))
	if s.raw == nil {
		b, err := plain()
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(b, &out); err != nil {
			return nil, err
		}
	} else {
		for k, v := range cur {
			b, err := MarshalPlain(v)
			if err != nil {
				return nil, err
			}
			raw, had := s.raw[k]
			switch {
			case had && bytes.Equal(b, s.seen[k]):
				out[k] = raw
			case had || !reflect.ValueOf(v).IsZero():
				out[k] = b
			}
		}
	}
	for k, v := range s.extra {
		out[k] = v
	}
	return out, nil
}
