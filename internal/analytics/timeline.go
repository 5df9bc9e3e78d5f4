package analytics

import (
	"sort"

	"github.com/obscura-observatory/scheduler-analytics/internal/domain"
)

// TimelineEntry is one scheduled assignment placed on the MJD axis.
type TimelineEntry struct {
	BlockID  string
	Start    float64
	Stop     float64
	Priority float64
}

// Timeline is the ordered sequence of scheduled assignments alongside the
// schedule's dark-period sequence.
type Timeline struct {
	Entries     []TimelineEntry
	DarkPeriods []domain.Interval
}

// BuildTimeline orders assignments by start time. priorityOf looks up a
// block's priority (typically backed by the analytics rows already fetched
// for the schedule) — unscheduled assignments are skipped.
func BuildTimeline(assignments []domain.ScheduleAssignment, priorityOf map[string]float64, dark []domain.Interval) Timeline {
	entries := make([]TimelineEntry, 0, len(assignments))
	for _, a := range assignments {
		if !a.Scheduled() {
			continue
		}
		entries = append(entries, TimelineEntry{
			BlockID:  a.BlockID,
			Start:    a.Window.Start,
			Stop:     a.Window.Stop,
			Priority: priorityOf[a.BlockID],
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Start < entries[j].Start })
	return Timeline{Entries: entries, DarkPeriods: dark}
}
