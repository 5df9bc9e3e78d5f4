package memstore

import (
	"context"
	"testing"

	"github.com/obscura-observatory/scheduler-analytics/internal/domain"
)

func sampleParsed(checksum string) domain.ParsedSchedule {
	return domain.ParsedSchedule{
		Name:     "nightly",
		Checksum: checksum,
		Blocks: []domain.ParsedBlock{
			{
				OriginalBlockID:      "b1",
				Target:               domain.Target{Name: "M31", RADeg: 10, DecDeg: 41},
				Priority:             5,
				MinObservationSec:    100,
				RequestedDurationSec: 200,
				VisibilityPeriods:    []domain.Interval{{Start: 0, Stop: 1}},
			},
		},
	}
}

func TestStoreSchedule_IdempotentOnChecksum(t *testing.T) {
	s := New()
	ctx := context.Background()

	id1, existed1, err := s.StoreSchedule(ctx, sampleParsed("abc"))
	if err != nil {
		t.Fatal(err)
	}
	if existed1 {
		t.Fatal("first store should not report existed")
	}

	id2, existed2, err := s.StoreSchedule(ctx, sampleParsed("abc"))
	if err != nil {
		t.Fatal(err)
	}
	if !existed2 {
		t.Fatal("second store with same checksum should report existed")
	}
	if id1 != id2 {
		t.Errorf("ids differ: %q != %q", id1, id2)
	}

	all, _ := s.ListSchedules(ctx)
	if len(all) != 1 {
		t.Errorf("expected 1 schedule stored, got %d", len(all))
	}
}

func TestStoreSchedule_GetOrCreateTarget(t *testing.T) {
	s := New()
	ctx := context.Background()

	parsed := sampleParsed("a")
	parsed.Blocks = append(parsed.Blocks, domain.ParsedBlock{
		OriginalBlockID:      "b2",
		Target:               domain.Target{Name: "M31-dup", RADeg: 10, DecDeg: 41}, // same natural key
		Priority:             1,
		RequestedDurationSec: 50,
		VisibilityPeriods:    []domain.Interval{{Start: 0, Stop: 1}},
	})

	scheduleID, _, err := s.StoreSchedule(ctx, parsed)
	if err != nil {
		t.Fatal(err)
	}
	blocks, err := s.GetBlocks(ctx, scheduleID, domain.BlockFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}
	if blocks[0].TargetID != blocks[1].TargetID {
		t.Error("identical natural keys should dedup to the same target id")
	}
}

func TestDeleteSchedule_Cascades(t *testing.T) {
	s := New()
	ctx := context.Background()

	scheduleID, _, err := s.StoreSchedule(ctx, sampleParsed("xyz"))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.StoreAnalytics(ctx, []domain.AnalyticsRow{{ScheduleID: scheduleID}}); err != nil {
		t.Fatal(err)
	}

	if err := s.DeleteSchedule(ctx, scheduleID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetSchedule(ctx, scheduleID); err == nil {
		t.Error("expected schedule to be gone")
	}
	if _, err := s.GetBlocks(ctx, scheduleID, domain.BlockFilter{}); err == nil {
		t.Error("expected blocks to be gone")
	}
	if has, _ := s.HasAnalytics(ctx, scheduleID); has {
		t.Error("expected analytics to be cascaded away")
	}

	// Re-uploading the same content after delete must not be treated as a dup.
	id2, existed, err := s.StoreSchedule(ctx, sampleParsed("xyz"))
	if err != nil {
		t.Fatal(err)
	}
	if existed {
		t.Error("after delete, re-upload should not report existed")
	}
	if id2 == scheduleID {
		t.Error("expected a fresh surrogate id after delete")
	}
}

func TestGetBlocks_FilterByPriority(t *testing.T) {
	s := New()
	ctx := context.Background()
	parsed := sampleParsed("p")
	parsed.Blocks[0].Priority = 2
	parsed.Blocks = append(parsed.Blocks, domain.ParsedBlock{
		OriginalBlockID: "b2", Target: domain.Target{RADeg: 1, DecDeg: 1}, Priority: 9,
		RequestedDurationSec: 10, VisibilityPeriods: []domain.Interval{{Start: 0, Stop: 1}},
	})
	scheduleID, _, _ := s.StoreSchedule(ctx, parsed)

	blocks, err := s.GetBlocks(ctx, scheduleID, domain.BlockFilter{PriorityRange: &domain.Range{Min: 5, Max: 10}})
	if err != nil {
		t.Fatal(err)
	}
	if len(blocks) != 1 || blocks[0].Priority != 9 {
		t.Errorf("expected only the priority=9 block, got %+v", blocks)
	}
}

// The filter carries real priority values (e.g. 7.5–9.0); bins are keyed
// by discretized index, so filtering must go through the priority range
// each index represents.
func TestFetchBins_PriorityFilterUsesRealPriorities(t *testing.T) {
	s := New()
	ctx := context.Background()
	scheduleID, _, err := s.StoreSchedule(ctx, sampleParsed("bins"))
	if err != nil {
		t.Fatal(err)
	}

	// Priority grid [1.0, 9.0] in width-0.8 bins: index 0 covers [1.0,
	// 1.8], index 8 covers [7.4, 8.2], index 9 covers [8.2, 9.0].
	if err := s.StoreVisibilityBins(ctx, []domain.VisibilityBin{{
		ScheduleID: scheduleID, BinIndex: 0, BinStart: 60000.0, BinWidth: 0.5,
		Count:            6,
		ByPriorityBin:    map[int]int{0: 2, 8: 3, 9: 1},
		PriorityMin:      1.0,
		PriorityBinWidth: 0.8,
	}}); err != nil {
		t.Fatal(err)
	}

	bins, err := s.FetchBins(ctx, scheduleID, 60000.0, 60001.0, &domain.Range{Min: 7.5, Max: 9.0})
	if err != nil {
		t.Fatal(err)
	}
	if len(bins) != 1 {
		t.Fatalf("expected 1 bin, got %d", len(bins))
	}
	b := bins[0]
	if b.Count != 4 {
		t.Errorf("Count = %d, want 4 (priority bins overlapping [7.5, 9.0])", b.Count)
	}
	if _, kept := b.ByPriorityBin[0]; kept {
		t.Error("priority bin 0 ([1.0, 1.8]) should be filtered out")
	}
	if b.ByPriorityBin[8] != 3 || b.ByPriorityBin[9] != 1 {
		t.Errorf("ByPriorityBin = %v, want bins 8 and 9 kept", b.ByPriorityBin)
	}
}

func TestHealthCheck(t *testing.T) {
	s := New()
	if !s.HealthCheck(context.Background()) {
		t.Error("in-memory store should always report healthy")
	}
}
