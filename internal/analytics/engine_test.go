package analytics

import (
	"context"
	"testing"

	"github.com/obscura-observatory/scheduler-analytics/internal/domain"
	"github.com/obscura-observatory/scheduler-analytics/internal/infra/memstore"
)

func TestEngine_Populate(t *testing.T) {
	ctx := context.Background()
	repo := memstore.New()

	win := domain.Interval{Start: 60000.1, Stop: 60000.3}
	parsed := domain.ParsedSchedule{
		Name:     "nightly",
		Checksum: "c1",
		Blocks: []domain.ParsedBlock{
			{
				OriginalBlockID:      "b1",
				Target:               domain.Target{RADeg: 10, DecDeg: 20},
				Priority:             5,
				MinObservationSec:    100,
				RequestedDurationSec: 17280, // 4.8h
				VisibilityPeriods:    []domain.Interval{{Start: 60000.0, Stop: 60000.5}},
				Assignment:           &win,
			},
			{
				OriginalBlockID:      "b2",
				Target:               domain.Target{RADeg: 30, DecDeg: -10},
				Priority:             1,
				RequestedDurationSec: 3600,
				VisibilityPeriods:    []domain.Interval{{Start: 60000.0, Stop: 60000.01}},
			},
		},
	}
	scheduleID, _, err := repo.StoreSchedule(ctx, parsed)
	if err != nil {
		t.Fatal(err)
	}

	eng := &Engine{Repo: repo}
	if err := eng.Populate(ctx, scheduleID, PopulateOptions{}); err != nil {
		t.Fatalf("Populate: %v", err)
	}

	rows, err := repo.FetchAnalytics(ctx, scheduleID)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 analytics rows, got %d", len(rows))
	}

	summary, err := repo.FetchSummary(ctx, scheduleID)
	if err != nil {
		t.Fatal(err)
	}
	if summary.TotalCount != 2 || summary.ScheduledCount != 1 {
		t.Errorf("summary wrong: %+v", summary)
	}

	has, err := repo.HasVisibilityBins(ctx, scheduleID)
	if err != nil {
		t.Fatal(err)
	}
	if !has {
		t.Error("expected visibility bins to be populated by default")
	}
}

func TestEngine_Populate_SkipTimeBins(t *testing.T) {
	ctx := context.Background()
	repo := memstore.New()
	parsed := domain.ParsedSchedule{
		Name:     "nightly",
		Checksum: "c2",
		Blocks: []domain.ParsedBlock{
			{
				OriginalBlockID:      "b1",
				Target:               domain.Target{RADeg: 10, DecDeg: 20},
				Priority:             5,
				RequestedDurationSec: 100,
				VisibilityPeriods:    []domain.Interval{{Start: 60000.0, Stop: 60000.5}},
			},
		},
	}
	scheduleID, _, _ := repo.StoreSchedule(ctx, parsed)

	eng := &Engine{Repo: repo}
	if err := eng.Populate(ctx, scheduleID, PopulateOptions{SkipTimeBins: true}); err != nil {
		t.Fatal(err)
	}
	has, _ := repo.HasVisibilityBins(ctx, scheduleID)
	if has {
		t.Error("expected visibility bins to be skipped")
	}
	if has, _ := repo.HasAnalytics(ctx, scheduleID); !has {
		t.Error("expected analytics rows to still be populated")
	}
}

func TestEngine_Populate_IdempotentRepopulation(t *testing.T) {
	ctx := context.Background()
	repo := memstore.New()
	parsed := domain.ParsedSchedule{
		Name:     "nightly",
		Checksum: "c3",
		Blocks: []domain.ParsedBlock{
			{OriginalBlockID: "b1", Target: domain.Target{RADeg: 1, DecDeg: 1}, Priority: 1,
				RequestedDurationSec: 10, VisibilityPeriods: []domain.Interval{{Start: 0, Stop: 1}}},
		},
	}
	scheduleID, _, _ := repo.StoreSchedule(ctx, parsed)
	eng := &Engine{Repo: repo}

	if err := eng.Populate(ctx, scheduleID, PopulateOptions{}); err != nil {
		t.Fatal(err)
	}
	if err := eng.Populate(ctx, scheduleID, PopulateOptions{}); err != nil {
		t.Fatal(err)
	}
	rows, err := repo.FetchAnalytics(ctx, scheduleID)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Errorf("repopulation should replace, not accumulate: got %d rows", len(rows))
	}
}
