package analytics

import (
	"sort"
	"time"

	"github.com/obscura-observatory/scheduler-analytics/internal/domain"
)

// TrendPoint is one schedule's position on the upload_timestamp axis.
type TrendPoint struct {
	ScheduleID          string
	UploadTimestamp     time.Time
	SchedulingRate      float64
	TotalScheduledHours float64
	TotalRequestedHours float64
}

// Trends orders a set of schedules' summaries by upload time. Callers
// supply schedules alongside their already-computed summaries (one Trends
// computation never recomputes another schedule's summary).
func Trends(schedules []domain.Schedule, summaries map[string]domain.SummaryStats) []TrendPoint {
	out := make([]TrendPoint, 0, len(schedules))
	for _, sch := range schedules {
		sum, ok := summaries[sch.ID]
		if !ok {
			continue
		}
		out = append(out, TrendPoint{
			ScheduleID:          sch.ID,
			UploadTimestamp:     sch.UploadTimestamp,
			SchedulingRate:      sum.SchedulingRate,
			TotalScheduledHours: sum.TotalScheduledHours,
			TotalRequestedHours: sum.TotalRequestedHours,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadTimestamp.Before(out[j].UploadTimestamp) })
	return out
}
