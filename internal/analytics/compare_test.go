package analytics

import (
	"testing"

	"github.com/obscura-observatory/scheduler-analytics/internal/domain"
)

func TestCompare_Basic(t *testing.T) {
	left := domain.SummaryStats{
		ScheduleID: "s1", TotalCount: 10, SchedulingRate: 0.5, TotalScheduledHours: 5,
		PriorityHistogram: []domain.HistogramBin{{Count: 1}, {Count: 2}},
	}
	right := domain.SummaryStats{
		ScheduleID: "s2", TotalCount: 12, SchedulingRate: 0.75, TotalScheduledHours: 9,
		PriorityHistogram: []domain.HistogramBin{{Count: 3}, {Count: 1}},
	}
	c := Compare(left, right)
	if c.SchedulingRateDelta != 0.25 {
		t.Errorf("SchedulingRateDelta = %v, want 0.25", c.SchedulingRateDelta)
	}
	if c.TotalScheduledHoursDelta != 4 {
		t.Errorf("TotalScheduledHoursDelta = %v, want 4", c.TotalScheduledHoursDelta)
	}
	if c.TotalCountDelta != 2 {
		t.Errorf("TotalCountDelta = %v, want 2", c.TotalCountDelta)
	}
	if len(c.PriorityHistogramDelta) != 2 || c.PriorityHistogramDelta[0] != 2 || c.PriorityHistogramDelta[1] != -1 {
		t.Errorf("PriorityHistogramDelta = %v", c.PriorityHistogramDelta)
	}
	if c.Summary == "" {
		t.Error("expected a non-empty human-readable summary")
	}
}
