package safety

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"haoshiji/internal/classify"
	"haoshiji/internal/keywords"
	"haoshiji/internal/match"
	"haoshiji/internal/metrics"
	"haoshiji/internal/models"
	"haoshiji/internal/registry"
)

// Analyzer：餐厅聚合器
// 约束：全部字段在构建后只读，可在多个 goroutine 间共享；名册为 nil 时按空名册处理
type Analyzer struct {
	Catalog    *keywords.Catalog
	Matcher    *match.Matcher
	Certified  *registry.Registry
	Inspection *registry.Registry
}

// NewAnalyzer：使用默认关键词目录与默认匹配器
func NewAnalyzer(certified, inspection *registry.Registry) *Analyzer {
	return &Analyzer{
		Catalog:    keywords.Default(),
		Matcher:    match.Default(),
		Certified:  certified,
		Inspection: inspection,
	}
}

// Analyze：单家餐厅判定
func (a *Analyzer) Analyze(r models.Restaurant) Verdict {
	m := a.Matcher
	if m == nil {
		m = match.Default()
	}
	cat := a.Catalog
	if cat == nil {
		cat = keywords.Default()
	}

	inspection := m.Resolve(r.Name, r.FormattedAddress, a.Inspection)
	certified := m.Resolve(r.Name, r.FormattedAddress, a.Certified)
	metrics.RegistryMatchesTotal.WithLabelValues(registry.InspectionFailure.String(), inspection.Tier.String()).Inc()
	metrics.RegistryMatchesTotal.WithLabelValues(registry.Certified.String(), certified.Tier.String()).Inc()

	v := Verdict{
		MatchedKeywords:      []string{},
		TotalReviewsAnalyzed: len(r.Reviews),
		Certification:        newCertification(certified),
		Inspection:           newInspection(inspection),
	}
	seen := make(map[string]bool)
	for _, rv := range r.Reviews {
		cv := classify.Review(cat, rv.Text)
		if cv.HasSymptoms {
			v.SymptomMentions++
			v.FlaggedReviews = append(v.FlaggedReviews, flag(rv, cv))
		}
		if cv.HasRawFood {
			v.RawFoodMentions++
		}
		for _, tag := range cv.MatchedKeywords {
			if !seen[tag] {
				seen[tag] = true
				v.MatchedKeywords = append(v.MatchedKeywords, tag)
			}
		}
	}
	metrics.ReviewsScannedTotal.Add(float64(len(r.Reviews)))

	if v.SymptomMentions > 0 || v.RawFoodMentions > 0 {
		v.Level = Caution
	}
	v.LevelLabel = v.Level.Label()
	metrics.RestaurantsAnalyzedTotal.WithLabelValues(v.Level.String()).Inc()
	return v
}

// flag：被标记评论摘要；关键词仅保留“症狀”分类的标签
func flag(rv models.Review, cv classify.Verdict) FlaggedReview {
	author := rv.AuthorName
	if author == "" {
		author = AnonymousAuthor
	}
	kws := cv.TagsIn(keywords.Symptom)
	if kws == nil {
		kws = []string{}
	}
	return FlaggedReview{
		Type:        FlagTypeSymptom,
		Author:      author,
		TextPreview: preview(rv.Text, PreviewRunes),
		Keywords:    kws,
	}
}

// preview：截取前 n 个字符，超出时追加 "..."
func preview(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos] + "..."
		}
		i++
	}
	return s
}

// Classify：判定并包装为输出结构
func (a *Analyzer) Classify(r models.Restaurant) Classified {
	return Classified{Restaurant: r, Safety: a.Analyze(r)}
}

// AnalyzeAll：批量判定，输出顺序与输入一致
// 约束：workers<=0 时使用 CPU 数；workers=1 时顺序执行；ctx 取消后返回 ctx.Err()
func (a *Analyzer) AnalyzeAll(ctx context.Context, restaurants []models.Restaurant, workers int) ([]Classified, error) {
	out := make([]Classified, len(restaurants))
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers == 1 {
		for i, r := range restaurants {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			out[i] = a.Classify(r)
		}
		return out, nil
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range restaurants {
		if gctx.Err() != nil {
			break
		}
		i := i // per-iteration copy (pre-Go 1.22 loop semantics)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = a.Classify(restaurants[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
