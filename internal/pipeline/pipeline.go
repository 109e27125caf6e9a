// 包 pipeline：批次分类流程（名册加载 → 批次读取 → 判定 → 排序 → 写出）
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"haoshiji/internal/keywords"
	"haoshiji/internal/logger"
	"haoshiji/internal/match"
	"haoshiji/internal/models"
	"haoshiji/internal/registry"
	"haoshiji/internal/safety"
)

// ErrInputNotFound：餐厅批次文件不存在（批次运行的致命错误）
var ErrInputNotFound = errors.New("pipeline: restaurant batch not found")

// Config：一次批次运行的参数
type Config struct {
	InputPath      string
	OutputPath     string
	CertifiedPath  string
	InspectionPath string
	KeywordFile    string
	Workers        int
}

// Result：批次运行结果
type Result struct {
	Classified     []safety.Classified
	CertifiedStats registry.CertifiedStats
	CertifiedRows  int
	InspectionRows int
	Started        time.Time
	Elapsed        time.Duration
}

// LoadRegistries：加载两份名册
// 约束：评核 CSV 不存在时记录警告并使用空名册；稽查 JSON 不存在时使用空名册
func LoadRegistries(certPath, inspPath string) (*registry.Registry, registry.CertifiedStats, *registry.Registry, error) {
	l := logger.With("pipeline")
	cert, st, err := registry.LoadCertifiedCSV(certPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, st, nil, err
		}
		l.Warn("certified_missing", "path", certPath, "hint", "classification uses review content only")
		cert = registry.New(registry.Certified)
	}
	insp, err := registry.LoadInspectionJSON(inspPath)
	if err != nil {
		return nil, st, nil, err
	}
	return cert, st, insp, nil
}

// LoadCatalog：未配置文件时使用内置目录
func LoadCatalog(path string) (*keywords.Catalog, error) {
	if path == "" {
		return keywords.Default(), nil
	}
	return keywords.LoadFile(path)
}

// BuildAnalyzer：加载关键词目录与两份名册并组装判定器（服务启动与热重载共用）
func BuildAnalyzer(keywordFile, certPath, inspPath string) (*safety.Analyzer, error) {
	cat, err := LoadCatalog(keywordFile)
	if err != nil {
		return nil, err
	}
	cert, _, insp, err := LoadRegistries(certPath, inspPath)
	if err != nil {
		return nil, err
	}
	return &safety.Analyzer{Catalog: cat, Matcher: match.Default(), Certified: cert, Inspection: insp}, nil
}

// LoadBatch：读取餐厅批次
func LoadBatch(path string) ([]models.Restaurant, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrInputNotFound, path)
		}
		return nil, fmt.Errorf("pipeline: open batch: %w", err)
	}
	defer f.Close()
	list, err := models.DecodeBatch(f)
	if err != nil {
		return nil, fmt.Errorf("pipeline: decode %s: %w", path, err)
	}
	return list, nil
}

// Run：执行完整批次流程
func Run(ctx context.Context, cfg Config) (*Result, error) {
	l := logger.With("pipeline")
	res := &Result{Started: time.Now()}

	cat, err := LoadCatalog(cfg.KeywordFile)
	if err != nil {
		return nil, err
	}
	cert, st, insp, err := LoadRegistries(cfg.CertifiedPath, cfg.InspectionPath)
	if err != nil {
		return nil, err
	}
	res.CertifiedStats = st
	res.CertifiedRows = cert.Len()
	res.InspectionRows = insp.Len()

	restaurants, err := LoadBatch(cfg.InputPath)
	if err != nil {
		return nil, err
	}
	l.Info("batch_loaded", "path", cfg.InputPath, "restaurants", len(restaurants))

	a := &safety.Analyzer{Catalog: cat, Matcher: match.Default(), Certified: cert, Inspection: insp}
	classified, err := a.AnalyzeAll(ctx, restaurants, cfg.Workers)
	if err != nil {
		return nil, fmt.Errorf("pipeline: analyze: %w", err)
	}
	safety.Rank(classified)
	res.Classified = classified

	if cfg.OutputPath != "" {
		if err := WriteOutput(cfg.OutputPath, classified); err != nil {
			return nil, err
		}
	}
	res.Elapsed = time.Since(res.Started)
	l.Info("classify_done", "restaurants", len(classified), "output", cfg.OutputPath, "elapsed_ms", res.Elapsed.Milliseconds())
	return res, nil
}

// WriteOutput：写出排序后的结果（缩进两格、不转义 HTML），目录不存在时创建
func WriteOutput(path string, items []safety.Classified) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("pipeline: mkdir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("pipeline: create output: %w", err)
	}
	if err := Encode(f, items); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
