package registry

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"haoshiji/internal/logger"
)

// 评核 CSV 列名
const (
	ColName           = "業者名稱店名"
	ColResult         = "評核結果"
	ColDistrictCode   = "行政區域代碼"
	ColRegistrationID = "食品業者登錄字號"
	ColAddress        = "地址"

	RatingExcellent = "優"
	RatingGood      = "良"
)

var ErrMissingColumn = errors.New("registry: missing column")

// CertifiedStats：评核名册加载统计
type CertifiedStats struct {
	Total     int
	Excellent int
	Good      int
}

// LoadCertifiedCSV：加载评核名册，仅保留评核结果为“優”的业者
// 约束：文件不存在时返回包装了 os.ErrNotExist 的错误，由调用方决定降级
func LoadCertifiedCSV(path string) (*Registry, CertifiedStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, CertifiedStats{}, fmt.Errorf("registry: open certified %s: %w", path, err)
	}
	defer f.Close()
	reg, st, err := ReadCertifiedCSV(f)
	if err != nil {
		return nil, st, err
	}
	logger.L().Info("certified_loaded", "path", path, "total", st.Total, "excellent", st.Excellent, "good_dropped", st.Good)
	return reg, st, nil
}

// ReadCertifiedCSV：从 CSV 流构建评核名册
// 约束：容忍 UTF-8 BOM 与不齐的列数；缺少名称或必要列值的行直接跳过；“良”计数后丢弃，其余等级静默丢弃
func ReadCertifiedCSV(r io.Reader) (*Registry, CertifiedStats, error) {
	var st CertifiedStats
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return New(Certified), st, nil
		}
		return nil, st, fmt.Errorf("registry: read header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		idx[h] = i
	}
	for _, col := range []string{ColName, ColResult} {
		if _, ok := idx[col]; !ok {
			return nil, st, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}
	field := func(row []string, col string) string {
		i, ok := idx[col]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	reg := New(Certified)
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, st, fmt.Errorf("registry: read row %d: %w", st.Total+2, err)
		}
		st.Total++
		name := strings.TrimSpace(field(row, ColName))
		rating := strings.TrimSpace(field(row, ColResult))
		if rating == RatingGood {
			st.Good++
			continue
		}
		if name == "" || rating != RatingExcellent {
			continue
		}
		st.Excellent++
		code := field(row, ColDistrictCode)
		reg.Put(Record{
			Name:           name,
			Address:        field(row, ColAddress),
			RegistrationID: field(row, ColRegistrationID),
			DistrictCode:   code,
			District:       DistrictName(code),
			Rating:         rating,
		})
	}
	return reg, st, nil
}

// inspectionItem：稽查不合格资料的 JSON 结构
type inspectionItem struct {
	CompanyName        string `json:"company_name"`
	Address            string `json:"address"`
	RegistrationNumber string `json:"registration_number"`
}

// LoadInspectionJSON：加载稽查不合格名册；文件不存在时返回空名册且不视为错误
func LoadInspectionJSON(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.L().Info("inspection_missing", "path", path)
			return New(InspectionFailure), nil
		}
		return nil, fmt.Errorf("registry: open inspection %s: %w", path, err)
	}
	defer f.Close()
	reg, err := ReadInspectionJSON(f)
	if err != nil {
		return nil, err
	}
	logger.L().Info("inspection_loaded", "path", path, "count", reg.Len())
	return reg, nil
}

// ReadInspectionJSON：从 JSON 数组构建稽查不合格名册；名称为空的条目跳过
func ReadInspectionJSON(r io.Reader) (*Registry, error) {
	var items []inspectionItem
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		if errors.Is(err, io.EOF) {
			return New(InspectionFailure), nil
		}
		return nil, fmt.Errorf("registry: decode inspection: %w", err)
	}
	reg := New(InspectionFailure)
	for _, it := range items {
		name := strings.TrimSpace(it.CompanyName)
		if name == "" {
			continue
		}
		reg.Put(Record{
			Name:           name,
			Address:        it.Address,
			RegistrationID: it.RegistrationNumber,
		})
	}
	return reg, nil
}
