// 包 classify：单则评论的关键词扫描（字面子串匹配，不做分词与词边界判断）
package classify

import (
	"strings"

	"haoshiji/internal/keywords"
)

// Hit：一次关键词命中
type Hit struct {
	Category keywords.Category
	Phrase   string
}

// Tag：命中标签，如 "症狀:嘔吐"
func (h Hit) Tag() string { return keywords.Tag(h.Category, h.Phrase) }

// Verdict：单则评论的判定结果；无状态，每次重新计算
type Verdict struct {
	HasSymptoms     bool     `json:"has_symptoms"`
	HasRawFood      bool     `json:"has_raw_food"`
	MatchedKeywords []string `json:"matched_keywords"`
	Hits            []Hit    `json:"-"`
}

// TagsIn：仅返回指定分类的命中标签（保持命中顺序）
func (v Verdict) TagsIn(cat keywords.Category) []string {
	var out []string
	for _, h := range v.Hits {
		if h.Category == cat {
			out = append(out, h.Tag())
		}
	}
	return out
}

// Review：扫描评论文本
// 约束：文本转小写后逐分类、逐关键词做子串包含判断；每个命中的关键词追加一条标签。
// 空文本返回零值判定（MatchedKeywords 为空切片而非 nil，序列化为 []）。
func Review(cat *keywords.Catalog, text string) Verdict {
	v := Verdict{MatchedKeywords: []string{}}
	if text == "" || cat == nil {
		return v
	}
	lower := strings.ToLower(text)
	cat.Each(func(c keywords.Category, phrase string) bool {
		if !strings.Contains(lower, phrase) {
			return true
		}
		h := Hit{Category: c, Phrase: phrase}
		v.Hits = append(v.Hits, h)
		v.MatchedKeywords = append(v.MatchedKeywords, h.Tag())
		if c.SymptomLike() {
			v.HasSymptoms = true
		} else {
			v.HasRawFood = true
		}
		return true
	})
	return v
}
