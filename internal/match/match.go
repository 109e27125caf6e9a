// 包 match：将 Places 来源的餐厅名称/地址解析到官方名册记录
// 背景：名册与 Places 的命名习惯不同（分店后缀、标点、空白），需要分层的近似匹配；
// 各层按固定优先级依次尝试，首个命中即返回，与本地多级缓存链的查找方式一致
package match

import (
	"strings"
	"unicode/utf8"

	"haoshiji/internal/registry"
)

// Tier：命中层级
type Tier int

const (
	TierNone Tier = iota
	TierExact
	TierNormalized
	TierPartial
)

func (t Tier) String() string {
	switch t {
	case TierExact:
		return "exact"
	case TierNormalized:
		return "normalized"
	case TierPartial:
		return "partial"
	}
	return "none"
}

// DefaultSuffixes：门店后缀，按此顺序逐个做全局删除
var DefaultSuffixes = []string{"餐廳", "店", "門市", "分店", "旗艦店", "本店", "總店"}

// MinPartialRunes：无地址可交叉验证时，两侧清理后名称的最短字数
const MinPartialRunes = 3

// Result：匹配结果；Matched 为 false 时 Record 为零值
type Result struct {
	Record  registry.Record
	Tier    Tier
	Matched bool
}

// query：一次查询的预处理结果，各层共享
type query struct {
	name    string
	address string
	clean   string
}

// strategy：单层匹配策略
type strategy struct {
	tier Tier
	fn   func(m *Matcher, q query, reg *registry.Registry) (registry.Record, bool)
}

// cascade：层级顺序即优先级
var cascade = []strategy{
	{TierExact, (*Matcher).exact},
	{TierNormalized, (*Matcher).normalized},
	{TierPartial, (*Matcher).partial},
}

// Matcher：持有只读的后缀表与行政区表；可在多个 goroutine 间共享
type Matcher struct {
	suffixes  []string
	districts []string
}

// New：使用指定后缀表与行政区表创建匹配器
func New(suffixes, districts []string) *Matcher {
	return &Matcher{
		suffixes:  append([]string(nil), suffixes...),
		districts: append([]string(nil), districts...),
	}
}

// Default：台北市 12 区与默认后缀表
func Default() *Matcher {
	return New(DefaultSuffixes, registry.DistrictNames())
}

// Tiers：按优先级返回层级列表
func (m *Matcher) Tiers() []Tier {
	out := make([]Tier, len(cascade))
	for i, s := range cascade {
		out[i] = s.tier
	}
	return out
}

// Resolve：在名册中查找餐厅
// 约束：名称为空或各层均未命中时返回 Matched=false；不修改名册；相同输入恒得相同结果
func (m *Matcher) Resolve(name, address string, reg *registry.Registry) Result {
	if name == "" || reg.Len() == 0 {
		return Result{}
	}
	q := query{name: name, address: address, clean: m.Clean(name)}
	for _, s := range cascade {
		if rec, ok := s.fn(m, q, reg); ok {
			return Result{Record: rec, Tier: s.tier, Matched: true}
		}
	}
	return Result{}
}

// Clean：去首尾空白后逐个删除门店后缀（出现在任意位置均删除），再去首尾空白
func (m *Matcher) Clean(name string) string {
	s := strings.TrimSpace(name)
	for _, suf := range m.suffixes {
		s = strings.ReplaceAll(s, suf, "")
	}
	return strings.TrimSpace(s)
}

// exact：名称原样作为键查找
func (m *Matcher) exact(q query, reg *registry.Registry) (registry.Record, bool) {
	return reg.Get(q.name)
}

// normalized：清理后的名称完全相同
func (m *Matcher) normalized(q query, reg *registry.Registry) (registry.Record, bool) {
	var hit registry.Record
	found := false
	reg.Each(func(rec registry.Record) bool {
		if m.Clean(rec.Name) == q.clean {
			hit, found = rec, true
			return false
		}
		return true
	})
	return hit, found
}

// partial：名称互相包含（或去掉连字符后包含），再以行政区或名称长度确认
// 约束：按名册插入顺序取第一个满足条件的候选，不做相似度评分
func (m *Matcher) partial(q query, reg *registry.Registry) (registry.Record, bool) {
	var hit registry.Record
	found := false
	reg.Each(func(rec registry.Record) bool {
		ck := m.Clean(rec.Name)
		if !nameOverlap(q.clean, ck) {
			return true
		}
		if q.address != "" && rec.Address != "" {
			if m.sharedDistrict(q.address, rec.Address) {
				hit, found = rec, true
				return false
			}
			return true
		}
		if utf8.RuneCountInString(q.clean) >= MinPartialRunes && utf8.RuneCountInString(ck) >= MinPartialRunes {
			hit, found = rec, true
			return false
		}
		return true
	})
	return hit, found
}

// nameOverlap：任一方包含另一方；去掉 "-" 后同样双向比较
func nameOverlap(a, b string) bool {
	if strings.Contains(b, a) || strings.Contains(a, b) {
		return true
	}
	a = strings.ReplaceAll(a, "-", "")
	b = strings.ReplaceAll(b, "-", "")
	return strings.Contains(b, a) || strings.Contains(a, b)
}

// sharedDistrict：两个地址是否都包含同一个行政区名
func (m *Matcher) sharedDistrict(a, b string) bool {
	for _, d := range m.districts {
		if strings.Contains(a, d) && strings.Contains(b, d) {
			return true
		}
	}
	return false
}
