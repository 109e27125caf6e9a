// 包 report：批次结果摘要（等级分布、独立标签统计、警示清单）
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"haoshiji/internal/keywords"
	"haoshiji/internal/safety"
)

// Mode：输出格式
type Mode int

const (
	ASCII Mode = iota
	Markdown
)

// InspectionWarning：稽查不合格餐厅
type InspectionWarning struct {
	Name               string
	Level              safety.Level
	RegistrationNumber string
}

// CautionEntry：注意等级餐厅与其症状类关键词（已去掉分类前缀，不含生食）
type CautionEntry struct {
	Name     string
	Keywords []string
}

// Summary：摘要数据
type Summary struct {
	Total       int
	LowRisk     int
	Caution     int
	Certified   int
	Inspection  int
	Inspections []InspectionWarning
	Cautions    []CautionEntry
}

// Build：按结果顺序汇总
func Build(items []safety.Classified) Summary {
	s := Summary{Total: len(items)}
	for _, c := range items {
		v := c.Safety
		name := c.Restaurant.Name
		if name == "" {
			name = "未知"
		}
		switch v.Level {
		case safety.Caution:
			s.Caution++
			s.Cautions = append(s.Cautions, CautionEntry{Name: name, Keywords: symptomPhrases(v.MatchedKeywords)})
		default:
			s.LowRisk++
		}
		if v.Certification != nil {
			s.Certified++
		}
		if v.Inspection != nil {
			s.Inspection++
			s.Inspections = append(s.Inspections, InspectionWarning{
				Name:               name,
				Level:              v.Level,
				RegistrationNumber: v.Inspection.RegistrationNumber,
			})
		}
	}
	return s
}

func symptomPhrases(tags []string) []string {
	var out []string
	for _, t := range tags {
		cat, phrase, ok := keywords.ParseTag(t)
		if ok && cat.SymptomLike() {
			out = append(out, phrase)
		}
	}
	return out
}

func newTable(m Mode) table.Writer {
	w := table.NewWriter()
	if m == ASCII {
		w.SetStyle(table.StyleLight)
	}
	return w
}

func render(w table.Writer, m Mode) string {
	if m == Markdown {
		return w.RenderMarkdown()
	}
	return w.Render()
}

// Render：写出摘要表格
func (s Summary) Render(out io.Writer, m Mode) error {
	var b strings.Builder

	levels := newTable(m)
	levels.SetTitle("風險等級分布")
	levels.AppendHeader(table.Row{"等級", "家數"})
	levels.AppendRow(table.Row{safety.LowRisk.Label(), s.LowRisk})
	levels.AppendRow(table.Row{safety.Caution.Label(), s.Caution})
	levels.AppendFooter(table.Row{"合計", s.Total})
	levels.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})
	b.WriteString(render(levels, m))
	b.WriteString("\n\n")

	labels := newTable(m)
	labels.SetTitle("獨立標籤統計")
	labels.AppendHeader(table.Row{"標籤", "家數"})
	labels.AppendRow(table.Row{"官方認證優", s.Certified})
	labels.AppendRow(table.Row{"稽核未通過", s.Inspection})
	labels.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})
	b.WriteString(render(labels, m))
	b.WriteString("\n")

	if len(s.Inspections) > 0 {
		t := newTable(m)
		t.SetTitle("稽查不合格餐廳警示")
		t.AppendHeader(table.Row{"餐廳", "等級", "登錄字號"})
		for _, w := range s.Inspections {
			reg := w.RegistrationNumber
			if reg == "" {
				reg = "N/A"
			}
			t.AppendRow(table.Row{w.Name, w.Level.Label(), reg})
		}
		b.WriteString("\n")
		b.WriteString(render(t, m))
		b.WriteString("\n")
	}

	if len(s.Cautions) > 0 {
		t := newTable(m)
		t.SetTitle("注意等級餐廳警示")
		t.AppendHeader(table.Row{"餐廳", "關鍵字"})
		for _, c := range s.Cautions {
			t.AppendRow(table.Row{c.Name, strings.Join(c.Keywords, ", ")})
		}
		t.SetColumnConfigs([]table.ColumnConfig{{Number: 2, WidthMax: 60}})
		b.WriteString("\n")
		b.WriteString(render(t, m))
		b.WriteString("\n")
	}

	if _, err := io.WriteString(out, b.String()); err != nil {
		return fmt.Errorf("report: write: %w", err)
	}
	return nil
}
