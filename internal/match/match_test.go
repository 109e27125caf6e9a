package match

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"haoshiji/internal/registry"
)

func certified(recs ...registry.Record) *registry.Registry {
	r := registry.New(registry.Certified)
	for _, rec := range recs {
		r.Put(rec)
	}
	return r
}

func TestClean(t *testing.T) {
	m := Default()
	cases := map[string]string{
		"  梅子餐廳 ":  "梅子",
		"阿宗麵線門市":   "阿宗麵線",
		"鼎泰豐信義店":   "鼎泰豐信義",
		"好吃分店":     "好吃分",
		"旗艦店":      "旗艦",
		"無後綴":      "無後綴",
		"餐廳 本店 總店": "本 總",
	}
	for in, want := range cases {
		if got := m.Clean(in); got != want {
			t.Errorf("Clean(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTiers(t *testing.T) {
	want := []Tier{TierExact, TierNormalized, TierPartial}
	if diff := cmp.Diff(want, Default().Tiers()); diff != "" {
		t.Errorf("Tiers (-want +got):\n%s", diff)
	}
}

func TestResolve(t *testing.T) {
	meizi := registry.Record{Name: "梅子日式料理", Address: "臺北市大安區復興南路一段1號", RegistrationID: "A-1"}
	short := registry.Record{Name: "梅子", Address: "臺北市中山區林森北路2號", RegistrationID: "A-2"}
	dtf := registry.Record{Name: "鼎泰豐-信義", RegistrationID: "A-3"}
	reg := certified(meizi, short, dtf)

	cases := []struct {
		name    string
		query   string
		address string
		want    string
		tier    Tier
	}{
		{"exact", "梅子日式料理", "", "梅子日式料理", TierExact},
		{"exact ignores address", "梅子日式料理", "臺北市北投區", "梅子日式料理", TierExact},
		{"normalized suffix", "梅子餐廳", "", "梅子", TierNormalized},
		{"partial shared district", "梅子日式", "臺北市大安區忠孝東路", "梅子日式料理", TierPartial},
		{"partial district mismatch", "梅子日式", "臺北市信義區松仁路", "", TierNone},
		{"partial by length without address", "梅子日式", "", "梅子日式料理", TierPartial},
		{"partial hyphen stripped", "鼎泰豐信義店", "", "鼎泰豐-信義", TierPartial},
		{"partial hyphen stripped, record inside query", "鼎泰豐信義101", "", "鼎泰豐-信義", TierPartial},
		{"too short without address", "梅", "", "", TierNone},
		{"no overlap", "阿宗麵線", "臺北市萬華區", "", TierNone},
		{"empty name", "", "臺北市大安區", "", TierNone},
	}
	m := Default()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := m.Resolve(tc.query, tc.address, reg)
			if got.Tier != tc.tier {
				t.Errorf("tier = %v, want %v", got.Tier, tc.tier)
			}
			if got.Matched != (tc.want != "") {
				t.Errorf("matched = %v", got.Matched)
			}
			if got.Record.Name != tc.want {
				t.Errorf("record = %q, want %q", got.Record.Name, tc.want)
			}
		})
	}
}

func TestResolve_FirstCandidateInRegistryOrder(t *testing.T) {
	reg := certified(
		registry.Record{Name: "老王牛肉麵大安", Address: "臺北市大安區"},
		registry.Record{Name: "老王牛肉麵", Address: "臺北市大安區"},
	)
	got := Default().Resolve("老王牛肉", "臺北市大安區仁愛路", reg)
	if got.Record.Name != "老王牛肉麵大安" || got.Tier != TierPartial {
		t.Errorf("got %+v", got)
	}
}

func TestResolve_Deterministic(t *testing.T) {
	reg := certified(
		registry.Record{Name: "甲乙丙丁", Address: "臺北市士林區"},
		registry.Record{Name: "甲乙丙", Address: "臺北市士林區"},
	)
	m := Default()
	first := m.Resolve("甲乙丙戊", "臺北市士林區", reg)
	for i := 0; i < 50; i++ {
		if diff := cmp.Diff(first, m.Resolve("甲乙丙戊", "臺北市士林區", reg)); diff != "" {
			t.Fatalf("run %d differs:\n%s", i, diff)
		}
	}
}

func TestResolve_EmptyRegistry(t *testing.T) {
	m := Default()
	if got := m.Resolve("梅子", "", registry.New(registry.Certified)); got.Matched {
		t.Errorf("empty registry matched %+v", got)
	}
	if got := m.Resolve("梅子", "", nil); got.Matched {
		t.Errorf("nil registry matched %+v", got)
	}
}
