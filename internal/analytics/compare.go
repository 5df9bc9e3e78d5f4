package analytics

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/obscura-observatory/scheduler-analytics/internal/domain"
)

// Comparison is the diff of two schedules' summary stats — the supplemented
// "compare" operation.
type Comparison struct {
	LeftScheduleID  string
	RightScheduleID string

	SchedulingRateDelta      float64
	TotalScheduledHoursDelta float64
	TotalRequestedHoursDelta float64
	TotalCountDelta          int

	PriorityHistogramDelta []int // right.Count - left.Count, bin-for-bin

	Summary string // human-readable one-line summary
}

// Compare diffs right against left (right - left for every numeric field).
// Callers are expected to pass two SummaryStats computed with the same bin
// count; a mismatched bin count degrades gracefully to the shorter length.
func Compare(left, right domain.SummaryStats) Comparison {
	c := Comparison{
		LeftScheduleID:           left.ScheduleID,
		RightScheduleID:          right.ScheduleID,
		SchedulingRateDelta:      right.SchedulingRate - left.SchedulingRate,
		TotalScheduledHoursDelta: right.TotalScheduledHours - left.TotalScheduledHours,
		TotalRequestedHoursDelta: right.TotalRequestedHours - left.TotalRequestedHours,
		TotalCountDelta:          right.TotalCount - left.TotalCount,
	}

	n := len(left.PriorityHistogram)
	if len(right.PriorityHistogram) < n {
		n = len(right.PriorityHistogram)
	}
	c.PriorityHistogramDelta = make([]int, n)
	for i := 0; i < n; i++ {
		c.PriorityHistogramDelta[i] = right.PriorityHistogram[i].Count - left.PriorityHistogram[i].Count
	}

	sign := "+"
	if c.SchedulingRateDelta < 0 {
		sign = ""
	}
	c.Summary = fmt.Sprintf(
		"scheduling rate %s%.1f%% (%s -> %s scheduled), %s scheduled hours",
		sign, c.SchedulingRateDelta*100,
		humanize.FtoaWithDigits(left.SchedulingRate*100, 1)+"%",
		humanize.FtoaWithDigits(right.SchedulingRate*100, 1)+"%",
		humanizeSignedHours(c.TotalScheduledHoursDelta),
	)
	return c
}

func humanizeSignedHours(hours float64) string {
	if hours >= 0 {
		return "+" + humanize.FtoaWithDigits(hours, 1) + "h"
	}
	return humanize.FtoaWithDigits(hours, 1) + "h"
}
