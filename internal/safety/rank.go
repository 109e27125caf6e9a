package safety

import "sort"

// rankKey：(稽查不合格 1/0, 等级 0/1, 评核 0/1, -评分)，字典序升序
type rankKey struct {
	inspection int
	level      int
	certified  int
	negRating  float64
}

func keyOf(c Classified) rankKey {
	k := rankKey{level: int(c.Safety.Level), certified: 1, negRating: -c.Restaurant.Rating}
	if c.Safety.Inspection != nil {
		k.inspection = 1
	}
	if c.Safety.Certification != nil {
		k.certified = 0
	}
	return k
}

func (a rankKey) less(b rankKey) bool {
	if a.inspection != b.inspection {
		return a.inspection < b.inspection
	}
	if a.level != b.level {
		return a.level < b.level
	}
	if a.certified != b.certified {
		return a.certified < b.certified
	}
	return a.negRating < b.negRating
}

// Rank：原地稳定排序；键完全相同的项保持原相对顺序
func Rank(items []Classified) {
	keys := make([]rankKey, len(items))
	for i := range items {
		keys[i] = keyOf(items[i])
	}
	sort.Stable(byKey{items: items, keys: keys})
}

type byKey struct {
	items []Classified
	keys  []rankKey
}

func (b byKey) Len() int           { return len(b.items) }
func (b byKey) Less(i, j int) bool { return b.keys[i].less(b.keys[j]) }
func (b byKey) Swap(i, j int) {
	b.items[i], b.items[j] = b.items[j], b.items[i]
	b.keys[i], b.keys[j] = b.keys[j], b.keys[i]
}
