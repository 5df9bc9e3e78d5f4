package analytics

import (
	"context"

	"github.com/obscura-observatory/scheduler-analytics/internal/domain"
	"github.com/obscura-observatory/scheduler-analytics/internal/interval"
)

// Engine populates the derived views for one schedule against a Repository.
// It assumes the Validator has already run and persisted issues for the
// schedule.
type Engine struct {
	Repo domain.Repository
}

// PopulateOptions mirrors store_schedule_with_options' analytics knobs.
type PopulateOptions struct {
	SkipTimeBins      bool
	NumVisibilityBins int // 0 => DefaultHistogramBins
}

// Populate computes AnalyticsRows, SummaryStats, and (unless SkipTimeBins)
// the visibility-bin grid for scheduleID, deleting any prior derived rows
// first — the whole operation is idempotent per schedule.
func (e *Engine) Populate(ctx context.Context, scheduleID string, opts PopulateOptions) error {
	sch, err := e.Repo.GetSchedule(ctx, scheduleID)
	if err != nil {
		return err
	}
	blocks, err := e.Repo.GetBlocks(ctx, scheduleID, domain.BlockFilter{})
	if err != nil {
		return err
	}
	assignments, err := e.Repo.ListAssignments(ctx, scheduleID)
	if err != nil {
		return err
	}
	issues, err := e.Repo.FetchValidation(ctx, scheduleID)
	if err != nil {
		return err
	}

	criticalByBlock := make(map[string]bool, len(issues))
	for _, is := range issues {
		if is.Criticality == domain.CriticalityCritical {
			criticalByBlock[is.BlockID] = true
		}
	}
	assignmentByBlock := make(map[string]domain.ScheduleAssignment, len(assignments))
	for _, a := range assignments {
		assignmentByBlock[a.BlockID] = a
	}

	targetKeys := make(map[string]struct{})
	rows := make([]domain.AnalyticsRow, 0, len(blocks))
	for _, b := range blocks {
		target, err := e.Repo.GetTarget(ctx, b.TargetID)
		if err != nil {
			return err
		}
		targetKeys[b.TargetID] = struct{}{}

		var elevationRange float64
		if b.ConstraintsID != "" {
			cons, err := e.Repo.GetConstraints(ctx, b.ConstraintsID)
			if err != nil {
				return err
			}
			if cons.Altitude != nil {
				elevationRange = cons.Altitude.Max - cons.Altitude.Min
			}
		}

		a := assignmentByBlock[b.ID]
		row := domain.AnalyticsRow{
			ScheduleID:      scheduleID,
			BlockID:         b.ID,
			Scheduled:       a.Scheduled(),
			VisibilityHours: toDays(b.VisibilityPeriods) * 24,
			RADeg:           target.RADeg,
			DecDeg:          target.DecDeg,
			Priority:        b.Priority,
			RequestedHours:  b.RequestedDurationSec / 3600,
			ElevationRange:  elevationRange,
			Impossible:      criticalByBlock[b.ID],
		}
		if row.Scheduled {
			row.DurationHours = (a.Window.Stop - a.Window.Start) * 24
		}
		rows = append(rows, row)
	}

	minP, maxP := minMaxPriority(rows)
	width := (maxP - minP) / priorityHistogramBins
	for i := range rows {
		rows[i].PriorityBin = priorityBinIndex(rows[i].Priority, minP, width, priorityHistogramBins)
	}

	if err := e.Repo.DeleteAnalytics(ctx, scheduleID); err != nil {
		return err
	}
	if len(rows) > 0 {
		if err := e.Repo.StoreAnalytics(ctx, rows); err != nil {
			return err
		}
	}

	summary := Summary(scheduleID, rows, len(targetKeys))
	if err := e.Repo.StoreSummary(ctx, summary); err != nil {
		return err
	}

	if err := e.Repo.DeleteVisibilityBins(ctx, scheduleID); err != nil {
		return err
	}
	if !opts.SkipTimeBins && len(blocks) > 0 {
		numBins := opts.NumVisibilityBins
		if numBins <= 0 {
			numBins = DefaultHistogramBins
		}
		t0, t1 := visibilityRange(blocks, sch.DarkPeriods)
		bins := VisibilityHistogram(blocks, VisibilityHistogramParams{T0: t0, T1: t1, NumBins: numBins})
		for i := range bins {
			bins[i].ScheduleID = scheduleID
		}
		if len(bins) > 0 {
			if err := e.Repo.StoreVisibilityBins(ctx, bins); err != nil {
				return err
			}
		}
	}
	return nil
}

func toDays(ivs []domain.Interval) float64 {
	return interval.TotalDurationDays(toIntervalSlice(ivs))
}

func toIntervalSlice(in []domain.Interval) []interval.Interval {
	out := make([]interval.Interval, len(in))
	for i, v := range in {
		out[i] = interval.Interval{Start: v.Start, Stop: v.Stop}
	}
	return out
}

func minMaxPriority(rows []domain.AnalyticsRow) (min, max float64) {
	if len(rows) == 0 {
		return 0, 0
	}
	min, max = rows[0].Priority, rows[0].Priority
	for _, r := range rows {
		if r.Priority < min {
			min = r.Priority
		}
		if r.Priority > max {
			max = r.Priority
		}
	}
	return min, max
}

// visibilityRange spans the earliest visibility-window start to the latest
// visibility-window stop across blocks, falling back to the dark-period
// span if no block has any visibility.
func visibilityRange(blocks []domain.SchedulingBlock, dark []domain.Interval) (t0, t1 float64) {
	first := true
	for _, b := range blocks {
		for _, v := range b.VisibilityPeriods {
			if first || v.Start < t0 {
				t0 = v.Start
			}
			if first || v.Stop > t1 {
				t1 = v.Stop
			}
			first = false
		}
	}
	if first {
		for _, d := range dark {
			if first || d.Start < t0 {
				t0 = d.Start
			}
			if first || d.Stop > t1 {
				t1 = d.Stop
			}
			first = false
		}
	}
	return t0, t1
}
