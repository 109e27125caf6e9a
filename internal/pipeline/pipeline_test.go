package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"haoshiji/internal/models"
)

const batch = `{"restaurants": [
 {"name": "黑心小吃", "rating": 4.9, "formatted_address": "臺北市中山區南京東路1號", "reviews": []},
 {"name": "某某小館", "rating": 4.0, "reviews": [{"author_name": "甲", "text": "上吐下瀉,食物中毒"}]},
 {"name": "梅子日式料理店", "rating": 4.5, "place_id": "p-1", "reviews": [{"text": "可以吃到生魚片很新鮮"}]},
 {"name": "陽光早午餐", "rating": 4.2, "reviews": [{"text": "服務親切 & 好吃 <推>"}]}
]}`

const certCSV = "業者名稱店名,評核結果,行政區域代碼,食品業者登錄字號,地址\n" +
	"梅子日式料理,優,63000030,A-123,臺北市大安區復興南路一段1號\n" +
	"普通小館,良,63000030,A-124,臺北市大安區\n"

const inspJSON = `[{"company_name": "黑心小吃", "address": "臺北市中山區南京東路1號", "registration_number": "F-1"}]`

func write(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		InputPath:      write(t, dir, "places.json", batch),
		OutputPath:     filepath.Join(dir, "out", "nested", "classified.json"),
		CertifiedPath:  write(t, dir, "cert.csv", certCSV),
		InspectionPath: write(t, dir, "insp.json", inspJSON),
		Workers:        2,
	}
	res, err := Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.CertifiedRows != 1 || res.InspectionRows != 1 || res.CertifiedStats.Good != 1 {
		t.Errorf("registry counts = %d/%d stats %+v", res.CertifiedRows, res.InspectionRows, res.CertifiedStats)
	}

	data, err := os.ReadFile(cfg.OutputPath)
	if err != nil {
		t.Fatalf("output: %v", err)
	}
	if !strings.Contains(string(data), "& 好吃 <推>") {
		t.Errorf("output must not HTML-escape: %s", data)
	}
	if !strings.Contains(string(data), "\n  {") {
		t.Errorf("output must be indented")
	}
	var out []map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, r := range out {
		got = append(got, r["name"].(string))
	}
	want := []string{"陽光早午餐", "梅子日式料理店", "某某小館", "黑心小吃"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ranked names (-want +got):\n%s", diff)
	}
	if out[1]["place_id"] != "p-1" {
		t.Errorf("place_id lost: %v", out[1])
	}
	sa := out[1]["safety_analysis"].(map[string]any)
	if sa["level"] != "caution" || sa["official_certification"] == nil {
		t.Errorf("梅子 analysis = %v", sa)
	}
}

func TestRun_MissingRegistriesAreNotFatal(t *testing.T) {
	dir := t.TempDir()
	res, err := Run(context.Background(), Config{
		InputPath:      write(t, dir, "places.json", `[{"name":"甲乙丙","reviews":[{"text":"拉肚子"}]}]`),
		CertifiedPath:  filepath.Join(dir, "absent.csv"),
		InspectionPath: filepath.Join(dir, "absent.json"),
		Workers:        1,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Classified) != 1 || res.Classified[0].Safety.Certification != nil {
		t.Errorf("result = %+v", res.Classified)
	}
}

func TestRun_MissingInput(t *testing.T) {
	dir := t.TempDir()
	_, err := Run(context.Background(), Config{InputPath: filepath.Join(dir, "none.json")})
	if !errors.Is(err, ErrInputNotFound) {
		t.Errorf("err = %v, want ErrInputNotFound", err)
	}
}

func TestRun_MalformedBatch(t *testing.T) {
	dir := t.TempDir()
	_, err := Run(context.Background(), Config{InputPath: write(t, dir, "bad.json", `{"items": []}`)})
	if !errors.Is(err, models.ErrBatchFormat) {
		t.Errorf("err = %v, want ErrBatchFormat", err)
	}
}

func TestEncode_Empty(t *testing.T) {
	var b strings.Builder
	if err := Encode(&b, nil); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(b.String()) != "[]" {
		t.Errorf("empty output = %q", b.String())
	}
}
