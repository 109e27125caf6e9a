package keywords

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDefault_Categories(t *testing.T) {
	c := Default()
	if c.Version() == "" {
		t.Error("embedded catalog has no version")
	}
	for _, cat := range Categories() {
		if len(c.Phrases(cat)) == 0 {
			t.Errorf("category %s is empty", cat)
		}
	}
	if got := c.Phrases(RawDish)[0]; got != "生魚片" {
		t.Errorf("first raw-dish phrase = %q", got)
	}
	if Default() != c {
		t.Error("Default must return the same catalog")
	}
}

func TestCategory_Meta(t *testing.T) {
	want := []string{"症狀", "品質缺陷", "未煮熟", "異物", "環境", "生食"}
	var got []string
	for _, cat := range Categories() {
		got = append(got, cat.Label())
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("labels (-want +got):\n%s", diff)
	}
	for _, cat := range Categories() {
		if cat.SymptomLike() == (cat == RawDish) {
			t.Errorf("%s SymptomLike = %v", cat, cat.SymptomLike())
		}
	}
	if Category(42).Label() != "" || Category(42).Key() != "unknown" {
		t.Error("out-of-range category must be inert")
	}
}

func TestTagRoundTrip(t *testing.T) {
	tag := Tag(RawDish, "生魚片")
	if tag != "生食:生魚片" {
		t.Fatalf("Tag = %q", tag)
	}
	cat, phrase, ok := ParseTag(tag)
	if !ok || cat != RawDish || phrase != "生魚片" {
		t.Errorf("ParseTag = %v %q %v", cat, phrase, ok)
	}
	if _, _, ok := ParseTag("其他:x"); ok {
		t.Error("unknown label must not parse")
	}
	if _, _, ok := ParseTag("no-colon"); ok {
		t.Error("missing separator must not parse")
	}
}

func TestParse_NormalizesAndDedups(t *testing.T) {
	yml := `
version: test
categories:
  - key: symptom
    phrases: ["  Food Poisoning ", "food poisoning", "", "嘔吐"]
  - key: raw_dish
    phrases: [Sashimi]
`
	c, err := Parse([]byte(yml))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if diff := cmp.Diff([]string{"food poisoning", "嘔吐"}, c.Phrases(Symptom)); diff != "" {
		t.Errorf("symptom phrases (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"sashimi"}, c.Phrases(RawDish)); diff != "" {
		t.Errorf("raw phrases (-want +got):\n%s", diff)
	}
	if c.Phrases(Environment) != nil {
		t.Error("absent category must be empty")
	}
	if c.Len() != 3 {
		t.Errorf("Len = %d", c.Len())
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		yml  string
		want error
	}{
		{"unknown", "categories:\n  - key: spicy\n    phrases: [x]\n", ErrUnknownCategory},
		{"duplicate", "categories:\n  - key: symptom\n    phrases: [x]\n  - key: symptom\n    phrases: [y]\n", ErrDuplicateCategory},
		{"label", "categories:\n  - key: symptom\n    label: 生食\n    phrases: [x]\n", ErrLabelMismatch},
		{"empty", "categories:\n  - key: symptom\n    phrases: []\n", ErrEmptyCatalog},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yml))
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kw.yaml")
	if err := os.WriteFile(path, []byte("categories:\n  - key: environment\n    phrases: [dirty]\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	var seen []string
	c.Each(func(cat Category, p string) bool {
		seen = append(seen, Tag(cat, p))
		return true
	})
	if diff := cmp.Diff([]string{"環境:dirty"}, seen); diff != "" {
		t.Errorf("Each (-want +got):\n%s", diff)
	}
	if _, err := LoadFile(filepath.Join(t.TempDir(), "none.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file err = %v", err)
	}
}
