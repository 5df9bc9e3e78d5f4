package analytics

import "github.com/obscura-observatory/scheduler-analytics/internal/domain"

const priorityHistogramBins = 10

// Summary computes the per-schedule summary for one schedule's analytics
// rows: counts, scheduling rate, unique target count, aggregate hours, a
// 10-bin priority histogram, and the per-bin scheduling rate.
func Summary(scheduleID string, rows []domain.AnalyticsRow, uniqueTargetCount int) domain.SummaryStats {
	s := domain.SummaryStats{ScheduleID: scheduleID, TotalCount: len(rows), UniqueTargetCount: uniqueTargetCount}
	if len(rows) == 0 {
		s.PriorityHistogram = make([]domain.HistogramBin, priorityHistogramBins)
		s.PerBinSchedulingRate = make([]float64, priorityHistogramBins)
		return s
	}

	priorities := make([]float64, len(rows))
	minP, maxP := rows[0].Priority, rows[0].Priority
	for i, r := range rows {
		priorities[i] = r.Priority
		if r.Priority < minP {
			minP = r.Priority
		}
		if r.Priority > maxP {
			maxP = r.Priority
		}
		if r.Scheduled {
			s.ScheduledCount++
			s.TotalScheduledHours += r.DurationHours
		}
		s.TotalRequestedHours += r.RequestedHours
		s.TotalVisibilityHours += r.VisibilityHours
	}
	s.UnscheduledCount = s.TotalCount - s.ScheduledCount
	s.SchedulingRate = float64(s.ScheduledCount) / float64(s.TotalCount)

	width := (maxP - minP) / priorityHistogramBins
	binTotal := make([]int, priorityHistogramBins)
	binScheduled := make([]int, priorityHistogramBins)
	bins := make([]domain.HistogramBin, priorityHistogramBins)
	for i := range bins {
		if width > 0 {
			bins[i] = domain.HistogramBin{Min: minP + float64(i)*width, Max: minP + float64(i+1)*width}
		} else {
			bins[i] = domain.HistogramBin{Min: minP, Max: maxP}
		}
	}
	for _, r := range rows {
		idx := priorityBinIndex(r.Priority, minP, width, priorityHistogramBins)
		binTotal[idx]++
		bins[idx].Count++
		if r.Scheduled {
			binScheduled[idx]++
		}
	}
	s.PriorityHistogram = bins

	rates := make([]float64, priorityHistogramBins)
	for i := range rates {
		if binTotal[i] > 0 {
			rates[i] = float64(binScheduled[i]) / float64(binTotal[i])
		}
	}
	s.PerBinSchedulingRate = rates
	return s
}

// priorityBinIndex maps a priority value into one of numBins equi-width
// bins starting at min; used to keep AnalyticsRow.PriorityBin consistent
// with the SummaryStats histogram it feeds.
func priorityBinIndex(priority, min, width float64, numBins int) int {
	if width <= 0 {
		return 0
	}
	idx := int((priority - min) / width)
	if idx < 0 {
		idx = 0
	}
	if idx >= numBins {
		idx = numBins - 1
	}
	return idx
}
