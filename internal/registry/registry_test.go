package registry

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRegistry_InsertionOrderAndOverwrite(t *testing.T) {
	r := New(Certified)
	r.Put(Record{Name: "甲"})
	r.Put(Record{Name: "乙"})
	r.Put(Record{Name: "甲", Address: "新地址"})
	if diff := cmp.Diff([]string{"甲", "乙"}, r.Names()); diff != "" {
		t.Errorf("Names (-want +got):\n%s", diff)
	}
	rec, ok := r.Get("甲")
	if !ok || rec.Address != "新地址" || rec.Kind != Certified {
		t.Errorf("Get = %+v %v", rec, ok)
	}
	var seen []string
	r.Each(func(rec Record) bool {
		seen = append(seen, rec.Name)
		return false
	})
	if len(seen) != 1 {
		t.Errorf("Each must stop early, saw %v", seen)
	}
}

func TestRegistry_NilIsEmpty(t *testing.T) {
	var r *Registry
	if r.Len() != 0 {
		t.Error("nil Len")
	}
	if _, ok := r.Get("x"); ok {
		t.Error("nil Get")
	}
	r.Each(func(Record) bool { t.Error("nil Each called fn"); return true })
}

func TestDistrictName(t *testing.T) {
	if got := DistrictName("63000030"); got != "大安區" {
		t.Errorf("DistrictName = %q", got)
	}
	if got := DistrictName("99999999"); got != UnknownDistrict {
		t.Errorf("unknown code = %q", got)
	}
	if n := len(DistrictNames()); n != 12 {
		t.Errorf("district count = %d", n)
	}
}

const certCSV = "\ufeff業者名稱店名,評核結果,行政區域代碼,食品業者登錄字號,地址\n" +
	"梅子日式料理,優,63000030,A-123,臺北市大安區復興南路一段1號\n" +
	"好吃小館,良,63000020,B-1,臺北市信義區松仁路2號\n" +
	",優,63000030,C-1,臺北市大安區\n" +
	"短列\n" +
	"  阿宗麵線  ,優,00000000,D-9,臺北市萬華區峨眉街8號\n" +
	"普通店,待改善,63000010,E-1,臺北市松山區\n"

func TestReadCertifiedCSV(t *testing.T) {
	reg, st, err := ReadCertifiedCSV(strings.NewReader(certCSV))
	if err != nil {
		t.Fatalf("ReadCertifiedCSV: %v", err)
	}
	if diff := cmp.Diff(CertifiedStats{Total: 6, Excellent: 2, Good: 1}, st); diff != "" {
		t.Errorf("stats (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"梅子日式料理", "阿宗麵線"}, reg.Names()); diff != "" {
		t.Errorf("names (-want +got):\n%s", diff)
	}
	want := Record{
		Kind:           Certified,
		Name:           "梅子日式料理",
		Address:        "臺北市大安區復興南路一段1號",
		RegistrationID: "A-123",
		DistrictCode:   "63000030",
		District:       "大安區",
		Rating:         "優",
	}
	got, _ := reg.Get("梅子日式料理")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("record (-want +got):\n%s", diff)
	}
	if rec, _ := reg.Get("阿宗麵線"); rec.District != UnknownDistrict {
		t.Errorf("unknown code district = %q", rec.District)
	}
}

func TestReadCertifiedCSV_MissingColumn(t *testing.T) {
	_, _, err := ReadCertifiedCSV(strings.NewReader("name,result\nx,優\n"))
	if !errors.Is(err, ErrMissingColumn) {
		t.Errorf("err = %v", err)
	}
}

func TestLoadCertifiedCSV_NotExist(t *testing.T) {
	_, _, err := LoadCertifiedCSV(filepath.Join(t.TempDir(), "none.csv"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want ErrNotExist", err)
	}
}

func TestLoadInspectionJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "food_business_data.json")
	body := `[
 {"company_name": "黑心餐館", "address": "臺北市中山區南京東路1號", "registration_number": "F-1"},
 {"company_name": "  ", "address": "x", "registration_number": "F-2"},
 {"company_name": "問題小吃店", "address": "", "registration_number": "F-3", "extra": 1}
]`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	reg, err := LoadInspectionJSON(path)
	if err != nil {
		t.Fatalf("LoadInspectionJSON: %v", err)
	}
	if reg.Kind() != InspectionFailure {
		t.Errorf("kind = %v", reg.Kind())
	}
	if diff := cmp.Diff([]string{"黑心餐館", "問題小吃店"}, reg.Names()); diff != "" {
		t.Errorf("names (-want +got):\n%s", diff)
	}
	rec, _ := reg.Get("黑心餐館")
	if rec.RegistrationID != "F-1" || rec.Address != "臺北市中山區南京東路1號" {
		t.Errorf("record = %+v", rec)
	}

	empty, err := LoadInspectionJSON(filepath.Join(dir, "absent.json"))
	if err != nil || empty.Len() != 0 {
		t.Errorf("absent file = %v, %v; want empty registry", empty.Len(), err)
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"not": "an array"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadInspectionJSON(bad); err == nil {
		t.Error("object payload must fail")
	}
}
