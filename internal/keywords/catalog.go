// 包 keywords：食安风险关键词目录（六个语义分类），进程启动时加载一次，之后只读
package keywords

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed keywords.yaml
var defaultYAML []byte

// Category：关键词分类；取值顺序即扫描顺序
type Category int

const (
	Symptom Category = iota
	QualityDefect
	Undercooked
	ForeignBody
	Environment
	RawDish
	numCategories
)

var categoryMeta = [numCategories]struct{ key, label string }{
	Symptom:       {"symptom", "症狀"},
	QualityDefect: {"quality_defect", "品質缺陷"},
	Undercooked:   {"undercooked", "未煮熟"},
	ForeignBody:   {"foreign_body", "異物"},
	Environment:   {"environment", "環境"},
	RawDish:       {"raw_dish", "生食"},
}

// Categories：按扫描顺序返回全部分类
func Categories() []Category {
	out := make([]Category, 0, numCategories)
	for c := Category(0); c < numCategories; c++ {
		out = append(out, c)
	}
	return out
}

// Key：配置文件中使用的英文键
func (c Category) Key() string {
	if c < 0 || c >= numCategories {
		return "unknown"
	}
	return categoryMeta[c].key
}

// Label：命中标签前缀（如 "症狀"）
func (c Category) Label() string {
	if c < 0 || c >= numCategories {
		return ""
	}
	return categoryMeta[c].label
}

func (c Category) String() string { return c.Key() }

// SymptomLike：除生食外的五类均折叠为“症状类”信号
func (c Category) SymptomLike() bool { return c >= Symptom && c < RawDish }

// CategoryByKey：按英文键查找分类
func CategoryByKey(key string) (Category, bool) {
	for c := Category(0); c < numCategories; c++ {
		if categoryMeta[c].key == key {
			return c, true
		}
	}
	return 0, false
}

// Tag：生成命中标签 "<分类标签>:<关键词>"
func Tag(c Category, phrase string) string { return c.Label() + ":" + phrase }

// ParseTag：拆分命中标签；标签前缀无法识别时返回 false
func ParseTag(tag string) (Category, string, bool) {
	label, phrase, ok := strings.Cut(tag, ":")
	if !ok {
		return 0, "", false
	}
	for c := Category(0); c < numCategories; c++ {
		if categoryMeta[c].label == label {
			return c, phrase, true
		}
	}
	return 0, "", false
}

var (
	ErrUnknownCategory   = errors.New("keywords: unknown category")
	ErrDuplicateCategory = errors.New("keywords: duplicate category")
	ErrEmptyCatalog      = errors.New("keywords: catalog has no phrases")
	ErrLabelMismatch     = errors.New("keywords: label does not match category")
)

// Catalog：只读关键词目录，按指针传入分类器
type Catalog struct {
	version string
	phrases [numCategories][]string
}

type fileFormat struct {
	Version    string `yaml:"version"`
	Categories []struct {
		Key     string   `yaml:"key"`
		Label   string   `yaml:"label"`
		Phrases []string `yaml:"phrases"`
	} `yaml:"categories"`
}

// Parse：解析 YAML 目录
// 约束：关键词去首尾空白并转小写；同一分类内重复与空词被丢弃；缺失的分类视为空列表
func Parse(data []byte) (*Catalog, error) {
	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("keywords: parse: %w", err)
	}
	c := &Catalog{version: f.Version}
	var seenCat [numCategories]bool
	total := 0
	for _, block := range f.Categories {
		cat, ok := CategoryByKey(block.Key)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, block.Key)
		}
		if seenCat[cat] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateCategory, block.Key)
		}
		if block.Label != "" && block.Label != cat.Label() {
			return nil, fmt.Errorf("%w: %q is %q", ErrLabelMismatch, block.Key, cat.Label())
		}
		seenCat[cat] = true
		seen := make(map[string]struct{}, len(block.Phrases))
		for _, p := range block.Phrases {
			p = strings.ToLower(strings.TrimSpace(p))
			if p == "" {
				continue
			}
			if _, dup := seen[p]; dup {
				continue
			}
			seen[p] = struct{}{}
			c.phrases[cat] = append(c.phrases[cat], p)
		}
		total += len(c.phrases[cat])
	}
	if total == 0 {
		return nil, ErrEmptyCatalog
	}
	return c, nil
}

// LoadFile：从文件加载替换目录（KEYWORDS_FILE）
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("keywords: read %s: %w", path, err)
	}
	return Parse(data)
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default：内置目录；内嵌数据损坏属于构建错误，直接 panic
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Parse(defaultYAML)
		if err != nil {
			panic(fmt.Sprintf("load embedded keywords.yaml: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// Version：目录版本号
func (c *Catalog) Version() string { return c.version }

// Phrases：返回某分类的关键词副本（保持目录顺序）
func (c *Catalog) Phrases(cat Category) []string {
	if cat < 0 || cat >= numCategories {
		return nil
	}
	return append([]string(nil), c.phrases[cat]...)
}

// Each：按分类顺序、目录顺序遍历全部关键词；fn 返回 false 时停止
func (c *Catalog) Each(fn func(cat Category, phrase string) bool) {
	for cat := Category(0); cat < numCategories; cat++ {
		for _, p := range c.phrases[cat] {
			if !fn(cat, p) {
				return
			}
		}
	}
}

// Len：关键词总数
func (c *Catalog) Len() int {
	n := 0
	for _, ps := range c.phrases {
		n += len(ps)
	}
	return n
}
