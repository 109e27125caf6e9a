package models

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

const sample = `{
  "place_id": "ChIJ123",
  "name": "梅子日式料理店",
  "rating": 4.5,
  "user_ratings_total": 321,
  "formatted_address": "106台北市大安區復興南路一段1號",
  "opening_hours": {"open_now": true},
  "types": ["restaurant", "food"],
  "reviews": [{"author_name": "小明", "rating": 5, "text": "可以吃到生魚片很新鮮 <推>", "time": 1700000000}]
}`

func TestRestaurant_UnmarshalKnownAndExtra(t *testing.T) {
	var r Restaurant
	if err := json.Unmarshal([]byte(sample), &r); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	want := Restaurant{
		PlaceID:          "ChIJ123",
		Name:             "梅子日式料理店",
		Rating:           4.5,
		UserRatingsTotal: 321,
		FormattedAddress: "106台北市大安區復興南路一段1號",
		Reviews:          []Review{{AuthorName: "小明", Rating: 5, Text: "可以吃到生魚片很新鮮 <推>", Time: 1700000000}},
	}
	if diff := cmp.Diff(want, r, cmpopts.IgnoreUnexported(Restaurant{}, Review{})); diff != "" {
		t.Errorf("known fields (-want +got):\n%s", diff)
	}
	raw, ok := r.Extra("types")
	if !ok || string(raw) != `["restaurant", "food"]` {
		t.Errorf("types extra = %s, %v", raw, ok)
	}
	if _, ok := r.Extra("name"); ok {
		t.Error("known field stored as extra")
	}
}

func TestRestaurant_MarshalPreservesExtra(t *testing.T) {
	var r Restaurant
	if err := json.Unmarshal([]byte(sample), &r); err != nil {
		t.Fatal(err)
	}
	out, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var got, want map[string]any
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal([]byte(sample), &want); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip (-want +got):\n%s", diff)
	}
}

func TestMarshalPlain_NoHTMLEscape(t *testing.T) {
	r := Restaurant{Name: "A&B <小吃>"}
	out, err := MarshalPlain(r)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), "A&B <小吃>") {
		t.Errorf("escaped output: %s", out)
	}
	if strings.HasSuffix(string(out), "\n") {
		t.Error("trailing newline kept")
	}
}

func TestRestaurant_MarshalOnlyInputKeys(t *testing.T) {
	cases := []struct {
		name string
		in   string
		edit func(r *Restaurant)
		want string
	}{
		{"absent keys stay absent", `{"name":"x"}`, nil, `{"name":"x"}`},
		{"review extras kept", `{"name":"x","reviews":[{"text":"好吃","language":"zh-Hant","author_url":"http://a"}]}`, nil,
			`{"name":"x","reviews":[{"text":"好吃","language":"zh-Hant","author_url":"http://a"}]}`},
		{"raw number kept", `{"name":"x","rating":4.50}`, nil, `{"name":"x","rating":4.50}`},
		{"edited field rewritten", `{"name":"x","rating":4.50}`, func(r *Restaurant) { r.Rating = 3 }, `{"name":"x","rating":3}`},
		{"new field set in code", `{"name":"x"}`, func(r *Restaurant) { r.Reviews = []Review{} }, `{"name":"x","reviews":[]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var r Restaurant
			if err := json.Unmarshal([]byte(tc.in), &r); err != nil {
				t.Fatal(err)
			}
			if tc.edit != nil {
				tc.edit(&r)
			}
			out, err := MarshalPlain(r)
			if err != nil {
				t.Fatal(err)
			}
			if string(out) != tc.want {
				t.Errorf("got %s, want %s", out, tc.want)
			}
		})
	}
}

func TestRestaurant_BuiltInCodeKeepsDefaultShape(t *testing.T) {
	out, err := MarshalPlain(Restaurant{Name: "x", Reviews: []Review{{Text: "t"}}})
	if err != nil {
		t.Fatal(err)
	}
	want := `{"formatted_address":"","name":"x","rating":0,"reviews":[{"author_name":"","rating":0,"text":"t","time":0}]}`
	if string(out) != want {
		t.Errorf("got %s, want %s", out, want)
	}
}

func TestSetExtra(t *testing.T) {
	var r Restaurant
	if err := r.SetExtra("name", json.RawMessage(`"x"`)); err == nil {
		t.Error("known key accepted")
	}
	if err := r.SetExtra("source", json.RawMessage(`"places"`)); err != nil {
		t.Fatal(err)
	}
	fields, err := r.Fields()
	if err != nil {
		t.Fatal(err)
	}
	if string(fields["source"]) != `"places"` {
		t.Errorf("source = %s", fields["source"])
	}
}

func TestDecodeBatch(t *testing.T) {
	cases := []struct {
		name    string
		in      string
		names   []string
		wantErr bool
	}{
		{"array", `[{"name":"甲"},{"name":"乙"}]`, []string{"甲", "乙"}, false},
		{"wrapped", `{"restaurants":[{"name":"丙"}], "query": "台北市"}`, []string{"丙"}, false},
		{"wrapped empty", `{"restaurants":[]}`, []string{}, false},
		{"object without restaurants", `{"items":[]}`, nil, true},
		{"scalar", `42`, nil, true},
		{"empty", `   `, nil, true},
		{"broken", `[{"name":`, nil, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			list, err := DecodeBatch(strings.NewReader(tc.in))
			if tc.wantErr {
				if !errors.Is(err, ErrBatchFormat) {
					t.Fatalf("err = %v, want ErrBatchFormat", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeBatch: %v", err)
			}
			got := make([]string, 0, len(list))
			for _, r := range list {
				got = append(got, r.Name)
			}
			if diff := cmp.Diff(tc.names, got); diff != "" {
				t.Errorf("names (-want +got):\n%s", diff)
			}
		})
	}
}
