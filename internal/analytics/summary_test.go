package analytics

import (
	"testing"

	"github.com/obscura-observatory/scheduler-analytics/internal/domain"
)

func TestSummary_Basic(t *testing.T) {
	rows := []domain.AnalyticsRow{
		{Priority: 1, Scheduled: true, DurationHours: 2, RequestedHours: 2, VisibilityHours: 5},
		{Priority: 9, Scheduled: false, RequestedHours: 3, VisibilityHours: 1},
	}
	s := Summary("sched1", rows, 2)
	if s.TotalCount != 2 || s.ScheduledCount != 1 || s.UnscheduledCount != 1 {
		t.Errorf("counts wrong: %+v", s)
	}
	if s.SchedulingRate != 0.5 {
		t.Errorf("SchedulingRate = %v, want 0.5", s.SchedulingRate)
	}
	if s.TotalScheduledHours != 2 {
		t.Errorf("TotalScheduledHours = %v", s.TotalScheduledHours)
	}
	if len(s.PriorityHistogram) != priorityHistogramBins {
		t.Errorf("expected %d histogram bins, got %d", priorityHistogramBins, len(s.PriorityHistogram))
	}
	total := 0
	for _, b := range s.PriorityHistogram {
		total += b.Count
	}
	if total != 2 {
		t.Errorf("histogram counts sum to %d, want 2", total)
	}
}

func TestSummary_Empty(t *testing.T) {
	s := Summary("sched1", nil, 0)
	if s.TotalCount != 0 {
		t.Errorf("expected empty summary, got %+v", s)
	}
	if len(s.PriorityHistogram) != priorityHistogramBins {
		t.Errorf("expected zeroed histogram of %d bins even when empty", priorityHistogramBins)
	}
}
