package safety

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"hash"

	"haoshiji/internal/keywords"
	"haoshiji/internal/registry"
)

// Fingerprint：判定器内容摘要（关键词目录 + 两份名册，按遍历顺序）
// 约束：内容相同则结果相同；任一关键词或名册记录变化都会改变摘要。每次调用都重新计算
func (a *Analyzer) Fingerprint() string {
	h := sha1.New()
	cat := a.Catalog
	if cat == nil {
		cat = keywords.Default()
	}
	fmt.Fprintf(h, "catalog:%s\n", cat.Version())
	cat.Each(func(c keywords.Category, phrase string) bool {
		fmt.Fprintf(h, "%d\x1f%s\n", c, phrase)
		return true
	})
	writeRegistry(h, "certified", a.Certified)
	writeRegistry(h, "inspection", a.Inspection)
	return hex.EncodeToString(h.Sum(nil))[:16]
}

func writeRegistry(h hash.Hash, label string, r *registry.Registry) {
	fmt.Fprintf(h, "%s:%d\n", label, r.Len())
	r.Each(func(rec registry.Record) bool {
		fmt.Fprintf(h, "%s\x1f%s\x1f%s\x1f%s\x1f%s\n", rec.Name, rec.Address, rec.RegistrationID, rec.DistrictCode, rec.Rating)
		return true
	})
}
