// 包 safety：餐厅级食安判定与排序
// 背景：聚合名册匹配结果与评论扫描结果，得出风险等级；名册标签独立展示，不影响等级
package safety

import (
	"encoding/json"
	"fmt"

	"haoshiji/internal/match"
	"haoshiji/internal/models"
)

// Level：风险等级（封闭枚举）
type Level int

const (
	LowRisk Level = iota
	Caution
)

// String：JSON 与日志中使用的取值
func (l Level) String() string {
	if l == Caution {
		return "caution"
	}
	return "low-risk"
}

// Label：展示文字
func (l Level) Label() string {
	if l == Caution {
		return "注意"
	}
	return "無/低風險"
}

func (l Level) MarshalJSON() ([]byte, error) { return json.Marshal(l.String()) }

func (l *Level) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	switch s {
	case "low-risk":
		*l = LowRisk
	case "caution":
		*l = Caution
	default:
		return fmt.Errorf("safety: unknown level %q", s)
	}
	return nil
}

// 固定展示文字
const (
	FlagTypeSymptom  = "症狀"
	AnonymousAuthor  = "匿名"
	StatusCertified  = "通過評核"
	StatusInspection = "稽查不合格"
	PreviewRunes     = 100
)

// FlaggedReview：被标记评论的摘要
type FlaggedReview struct {
	Type        string   `json:"type"`
	Author      string   `json:"author"`
	TextPreview string   `json:"text_preview"`
	Keywords    []string `json:"keywords"`
}

// Certification：卫生评核匹配结果
type Certification struct {
	Status           string `json:"status"`
	Rating           string `json:"rating"`
	RegistrationID   string `json:"registration_id"`
	CertifiedAddress string `json:"certified_address"`
	District         string `json:"district"`
	DistrictCode     string `json:"district_code"`
	MatchedName      string `json:"matched_name"`
	MatchTier        string `json:"match_tier"`
}

// InspectionStatus：稽查不合格匹配结果
type InspectionStatus struct {
	Status             string `json:"status"`
	RegistrationNumber string `json:"registration_number"`
	FailedAddress      string `json:"failed_address"`
	MatchedName        string `json:"matched_name"`
	MatchTier          string `json:"match_tier"`
}

// Verdict：餐厅级判定（输出中的 safety_analysis）
// 约束：Level 为 Caution 当且仅当 SymptomMentions>0 或 RawFoodMentions>0；
// FlaggedReviews 无标记评论时为 nil（序列化为 null）
type Verdict struct {
	Level                Level             `json:"level"`
	LevelLabel           string            `json:"level_label"`
	SymptomMentions      int               `json:"symptom_mentions"`
	RawFoodMentions      int               `json:"raw_food_mentions"`
	MatchedKeywords      []string          `json:"matched_keywords"`
	TotalReviewsAnalyzed int               `json:"total_reviews_analyzed"`
	FlaggedReviews       []FlaggedReview   `json:"flagged_reviews"`
	Certification        *Certification    `json:"official_certification"`
	Inspection           *InspectionStatus `json:"inspection_status"`
}

// Classified：原始餐厅数据 + 判定
type Classified struct {
	Restaurant models.Restaurant
	Safety     Verdict
}

// MarshalJSON：餐厅原有字段原样输出，追加 safety_analysis
func (c Classified) MarshalJSON() ([]byte, error) {
	fields, err := c.Restaurant.Fields()
	if err != nil {
		return nil, err
	}
	sa, err := models.MarshalPlain(c.Safety)
	if err != nil {
		return nil, err
	}
	fields["safety_analysis"] = sa
	return models.MarshalPlain(fields)
}

// UnmarshalJSON：读回已输出的结果（供存储与报表复用）
func (c *Classified) UnmarshalJSON(b []byte) error {
	var wrap struct {
		Safety Verdict `json:"safety_analysis"`
	}
	if err := json.Unmarshal(b, &wrap); err != nil {
		return err
	}
	var r models.Restaurant
	if err := json.Unmarshal(b, &r); err != nil {
		return err
	}
	c.Restaurant = r
	c.Safety = wrap.Safety
	return nil
}

func newCertification(res match.Result) *Certification {
	if !res.Matched {
		return nil
	}
	rec := res.Record
	return &Certification{
		Status:           StatusCertified,
		Rating:           rec.Rating,
		RegistrationID:   rec.RegistrationID,
		CertifiedAddress: rec.Address,
		District:         rec.District,
		DistrictCode:     rec.DistrictCode,
		MatchedName:      rec.Name,
		MatchTier:        res.Tier.String(),
	}
}

func newInspection(res match.Result) *InspectionStatus {
	if !res.Matched {
		return nil
	}
	rec := res.Record
	return &InspectionStatus{
		Status:             StatusInspection,
		RegistrationNumber: rec.RegistrationID,
		FailedAddress:      rec.Address,
		MatchedName:        rec.Name,
		MatchTier:          res.Tier.String(),
	}
}
