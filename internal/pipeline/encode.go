package pipeline

import (
	"encoding/json"
	"fmt"
	"io"

	"haoshiji/internal/safety"
)

// Encode：以缩进 JSON 数组写出结果；空结果写出 []
func Encode(w io.Writer, items []safety.Classified) error {
	if items == nil {
		items = []safety.Classified{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(items); err != nil {
		return fmt.Errorf("pipeline: encode output: %w", err)
	}
	return nil
}
