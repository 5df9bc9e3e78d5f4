package analytics

import (
	"testing"

	"github.com/obscura-observatory/scheduler-analytics/internal/domain"
)

// Two blocks whose visibility unions straddle 3 one-day bins starting at
// MJD 60000, overlapping in the middle bin.
func TestVisibilityHistogram_Basic(t *testing.T) {
	blocks := []domain.SchedulingBlock{
		{ID: "b1", Priority: 5, VisibilityPeriods: []domain.Interval{{Start: 60000.2, Stop: 60001.2}}},
		{ID: "b2", Priority: 5, VisibilityPeriods: []domain.Interval{{Start: 60001.5, Stop: 60002.5}}},
	}
	bins := VisibilityHistogram(blocks, VisibilityHistogramParams{T0: 60000, T1: 60003, NumBins: 3})
	if len(bins) != 3 {
		t.Fatalf("expected 3 bins, got %d", len(bins))
	}
	// bin0 [60000,60001): only b1
	if bins[0].Count != 1 {
		t.Errorf("bin0 count = %d, want 1", bins[0].Count)
	}
	// bin1 [60001,60002): both b1 (tail) and b2 (head)
	if bins[1].Count != 2 {
		t.Errorf("bin1 count = %d, want 2", bins[1].Count)
	}
	// bin2 [60002,60003): only b2
	if bins[2].Count != 1 {
		t.Errorf("bin2 count = %d, want 1", bins[2].Count)
	}
}

func TestVisibilityHistogram_Empty(t *testing.T) {
	bins := VisibilityHistogram(nil, VisibilityHistogramParams{T0: 0, T1: 10, NumBins: 5})
	for _, b := range bins {
		if b.Count != 0 {
			t.Errorf("expected all-zero bins for no blocks, got %+v", b)
		}
	}
}

func TestVisibilityHistogram_PriorityFilter(t *testing.T) {
	blocks := []domain.SchedulingBlock{
		{ID: "lo", Priority: 1, VisibilityPeriods: []domain.Interval{{Start: 0, Stop: 1}}},
		{ID: "hi", Priority: 9, VisibilityPeriods: []domain.Interval{{Start: 0, Stop: 1}}},
	}
	bins := VisibilityHistogram(blocks, VisibilityHistogramParams{
		T0: 0, T1: 1, NumBins: 1, PriorityFilter: &domain.Range{Min: 5, Max: 10},
	})
	if bins[0].Count != 1 {
		t.Errorf("expected only the high-priority block to count, got %d", bins[0].Count)
	}
}

func TestTouchedBins_SingleIntervalSpanningMultipleBins(t *testing.T) {
	seq := []domain.Interval{{Start: 0.5, Stop: 2.5}}
	got := touchedBins(seq, 0, 1, 5)
	want := []int{0, 1, 2}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got %v, want %v", got, want)
		}
	}
}
