package analytics

import (
	"testing"
	"time"

	"github.com/obscura-observatory/scheduler-analytics/internal/domain"
)

func TestBuildTimeline_OrdersByStart(t *testing.T) {
	w1 := domain.Interval{Start: 60002, Stop: 60002.1}
	w2 := domain.Interval{Start: 60001, Stop: 60001.1}
	assignments := []domain.ScheduleAssignment{
		{BlockID: "late", Window: &w1},
		{BlockID: "early", Window: &w2},
		{BlockID: "unscheduled", Window: nil},
	}
	tl := BuildTimeline(assignments, map[string]float64{"late": 1, "early": 2}, nil)
	if len(tl.Entries) != 2 {
		t.Fatalf("expected 2 scheduled entries, got %d", len(tl.Entries))
	}
	if tl.Entries[0].BlockID != "early" {
		t.Errorf("expected early first, got %q", tl.Entries[0].BlockID)
	}
}

func TestSkyMap_Passthrough(t *testing.T) {
	rows := []domain.AnalyticsRow{{BlockID: "a", RADeg: 1, DecDeg: 2, Priority: 3, Scheduled: true}}
	pts := SkyMap(rows)
	if len(pts) != 1 || pts[0].BlockID != "a" || !pts[0].Scheduled {
		t.Errorf("unexpected skymap output: %+v", pts)
	}
}

func TestTrends_OrdersByUploadTime(t *testing.T) {
	t1 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	schedules := []domain.Schedule{
		{ID: "late", UploadTimestamp: t2},
		{ID: "early", UploadTimestamp: t1},
	}
	summaries := map[string]domain.SummaryStats{
		"late":  {SchedulingRate: 0.9},
		"early": {SchedulingRate: 0.1},
	}
	trends := Trends(schedules, summaries)
	if len(trends) != 2 || trends[0].ScheduleID != "early" {
		t.Errorf("expected early schedule first, got %+v", trends)
	}
}
