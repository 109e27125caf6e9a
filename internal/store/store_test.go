package store

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"haoshiji/internal/models"
	"haoshiji/internal/safety"
)

func TestSummarize(t *testing.T) {
	items := []safety.Classified{
		{Restaurant: models.Restaurant{Name: "a"}, Safety: safety.Verdict{Level: safety.LowRisk, Certification: &safety.Certification{}}},
		{Restaurant: models.Restaurant{Name: "b"}, Safety: safety.Verdict{Level: safety.Caution}},
		{Restaurant: models.Restaurant{Name: "c"}, Safety: safety.Verdict{Level: safety.Caution, Inspection: &safety.InspectionStatus{}}},
	}
	got := Summarize("batch", "", "2025.12", items)
	want := Run{Source: "batch", Restaurants: 3, Caution: 2, Certified: 1, InspectionFailed: 1, CatalogVersion: "2025.12"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Summarize (-want +got):\n%s", diff)
	}
}

func TestNilStore(t *testing.T) {
	var s *Store
	ctx := context.Background()
	if _, err := s.SaveRun(ctx, Run{}, nil); !errors.Is(err, ErrNoDB) {
		t.Errorf("SaveRun err = %v", err)
	}
	if _, err := s.RecentRuns(ctx, 5); !errors.Is(err, ErrNoDB) {
		t.Errorf("RecentRuns err = %v", err)
	}
	if _, err := s.RunVerdicts(ctx, uuid.New()); !errors.Is(err, ErrNoDB) {
		t.Errorf("RunVerdicts err = %v", err)
	}
	if _, err := s.PruneRuns(ctx, 3, true); !errors.Is(err, ErrNoDB) {
		t.Errorf("PruneRuns err = %v", err)
	}
	s.IncrStats(ctx, "search")
	if err := s.Close(); err != nil {
		t.Errorf("Close = %v", err)
	}
}
