package analytics

import (
	"github.com/obscura-observatory/scheduler-analytics/internal/domain"
	"github.com/obscura-observatory/scheduler-analytics/internal/infra/dsa"
)

// Insights bundles the top-K lists and correlation coefficients derived
// from one schedule's analytics rows.
type Insights struct {
	TopByPriority             []domain.AnalyticsRow
	TopByRequestedHours       []domain.AnalyticsRow
	CorrPriorityVsRate        float64
	CorrVisibilityVsRate      float64
	CorrElevationVsRate       float64
	HighPriorityUnscheduled   []domain.AnalyticsRow
	SeverelyLimitedVisibility []domain.AnalyticsRow
}

// InsightsParams tunes the thresholds used to build the unscheduled/limited
// lists; zero values fall back to sensible defaults.
type InsightsParams struct {
	TopK                           int
	HighPriorityThreshold          float64 // rows with Priority >= this AND !Scheduled
	SeverelyLimitedVisibilityHours float64 // rows with VisibilityHours <= this
}

const (
	defaultTopK                  = 10
	defaultHighPriorityThreshold = 8.0
	defaultSeverelyLimitedHours  = 1.0
)

// ComputeInsights derives top-K lists and Pearson correlations from a
// schedule's analytics rows. Scheduling rate per row is binary (1 if
// scheduled, 0 otherwise) — correlating against it measures how strongly
// each dimension predicts the scheduling outcome.
func ComputeInsights(rows []domain.AnalyticsRow, p InsightsParams) Insights {
	if p.TopK <= 0 {
		p.TopK = defaultTopK
	}
	if p.HighPriorityThreshold == 0 {
		p.HighPriorityThreshold = defaultHighPriorityThreshold
	}
	if p.SeverelyLimitedVisibilityHours == 0 {
		p.SeverelyLimitedVisibilityHours = defaultSeverelyLimitedHours
	}

	var ins Insights

	byPriority := dsa.NewTopK(p.TopK, func(r domain.AnalyticsRow) float64 { return r.Priority })
	byHours := dsa.NewTopK(p.TopK, func(r domain.AnalyticsRow) float64 { return r.RequestedHours })
	for _, r := range rows {
		byPriority.Push(r)
		byHours.Push(r)
	}
	ins.TopByPriority = byPriority.Sorted()
	ins.TopByRequestedHours = byHours.Sorted()

	priorities := make([]float64, len(rows))
	visibility := make([]float64, len(rows))
	elevation := make([]float64, len(rows))
	scheduled := make([]float64, len(rows))
	for i, r := range rows {
		priorities[i] = r.Priority
		visibility[i] = r.VisibilityHours
		elevation[i] = r.ElevationRange
		if r.Scheduled {
			scheduled[i] = 1
		}
	}
	ins.CorrPriorityVsRate = pearson(priorities, scheduled)
	ins.CorrVisibilityVsRate = pearson(visibility, scheduled)
	ins.CorrElevationVsRate = pearson(elevation, scheduled)

	for _, r := range rows {
		if !r.Scheduled && r.Priority >= p.HighPriorityThreshold {
			ins.HighPriorityUnscheduled = append(ins.HighPriorityUnscheduled, r)
		}
		if r.VisibilityHours <= p.SeverelyLimitedVisibilityHours {
			ins.SeverelyLimitedVisibility = append(ins.SeverelyLimitedVisibility, r)
		}
	}
	return ins
}
