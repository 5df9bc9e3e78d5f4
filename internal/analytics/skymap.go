package analytics

import "github.com/obscura-observatory/scheduler-analytics/internal/domain"

// SkyMapPoint is one plotted block: its sky position, priority, scheduling
// outcome, and requested duration.
type SkyMapPoint struct {
	BlockID        string
	RADeg          float64
	DecDeg         float64
	Priority       float64
	PriorityBin    int
	Scheduled      bool
	RequestedHours float64
}

// SkyMap projects analytics rows into plot-ready points.
func SkyMap(rows []domain.AnalyticsRow) []SkyMapPoint {
	out := make([]SkyMapPoint, len(rows))
	for i, r := range rows {
		out[i] = SkyMapPoint{
			BlockID:        r.BlockID,
			RADeg:          r.RADeg,
			DecDeg:         r.DecDeg,
			Priority:       r.Priority,
			PriorityBin:    r.PriorityBin,
			Scheduled:      r.Scheduled,
			RequestedHours: r.RequestedHours,
		}
	}
	return out
}
