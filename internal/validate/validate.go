// Package validate implements the per-block validation predicate set.
// Every rule is evaluated independently — validation never short-circuits —
// so a single block can accumulate multiple issues.
package validate

import (
	"fmt"

	"github.com/obscura-observatory/scheduler-analytics/internal/domain"
	"github.com/obscura-observatory/scheduler-analytics/internal/interval"
)

// Context bundles everything one block's validation needs — the block
// itself plus its denormalized Target, optional Constraints, optional
// ScheduleAssignment, and the owning Schedule's dark periods.
type Context struct {
	ScheduleID  string
	Block       domain.SchedulingBlock
	Target      domain.Target
	Constraints *domain.Constraints
	Assignment  *domain.ScheduleAssignment
	DarkPeriods []domain.Interval
}

// Block evaluates every validation rule against ctx,
// returning every failing rule (no short-circuit).
func Block(ctx Context) []domain.ValidationIssue {
	var issues []domain.ValidationIssue
	add := func(cat domain.IssueCategory, crit domain.Criticality, msg string) {
		issues = append(issues, domain.ValidationIssue{
			ScheduleID:  ctx.ScheduleID,
			BlockID:     ctx.Block.ID,
			Category:    cat,
			Criticality: crit,
			Message:     msg,
		})
	}

	vis := toIV(ctx.Block.VisibilityPeriods)

	// ZeroVisibility — critical
	if interval.TotalDurationDays(vis) == 0 {
		add(domain.IssueZeroVisibility, domain.CriticalityCritical,
			"block has zero total visibility")
	}

	// InsufficientVisibility — critical
	if interval.MaxWidthSeconds(vis) < ctx.Block.MinObservationSec {
		add(domain.IssueInsufficientVisibility, domain.CriticalityCritical,
			fmt.Sprintf("longest visibility window (%.1fs) is shorter than min_observation_sec (%.1fs)",
				interval.MaxWidthSeconds(vis), ctx.Block.MinObservationSec))
	}

	// NegativePriority — high
	if ctx.Block.Priority < 0 {
		add(domain.IssueNegativePriority, domain.CriticalityHigh,
			fmt.Sprintf("priority %.2f is negative", ctx.Block.Priority))
	}

	// InvalidDuration — high
	if ctx.Block.RequestedDurationSec <= 0 || ctx.Block.MinObservationSec < 0 {
		add(domain.IssueInvalidDuration, domain.CriticalityHigh,
			fmt.Sprintf("requested_duration_sec=%.1f min_observation_sec=%.1f",
				ctx.Block.RequestedDurationSec, ctx.Block.MinObservationSec))
	}

	// MinGtRequested — high
	if ctx.Block.MinObservationSec > ctx.Block.RequestedDurationSec {
		add(domain.IssueMinGtRequested, domain.CriticalityHigh,
			fmt.Sprintf("min_observation_sec (%.1f) exceeds requested_duration_sec (%.1f)",
				ctx.Block.MinObservationSec, ctx.Block.RequestedDurationSec))
	}

	// OutOfRangeRa — high
	if ctx.Target.RADeg < 0 || ctx.Target.RADeg >= 360 {
		add(domain.IssueOutOfRangeRa, domain.CriticalityHigh,
			fmt.Sprintf("ra_deg %.4f outside [0, 360)", ctx.Target.RADeg))
	}

	// OutOfRangeDec — high
	if ctx.Target.DecDeg < -90 || ctx.Target.DecDeg > 90 {
		add(domain.IssueOutOfRangeDec, domain.CriticalityHigh,
			fmt.Sprintf("dec_deg %.4f outside [-90, 90]", ctx.Target.DecDeg))
	}

	if ctx.Constraints != nil {
		// AltitudeInverted — medium
		if ctx.Constraints.Altitude != nil && ctx.Constraints.Altitude.Min > ctx.Constraints.Altitude.Max {
			add(domain.IssueAltitudeInverted, domain.CriticalityMedium,
				fmt.Sprintf("altitude range inverted: min %.2f > max %.2f",
					ctx.Constraints.Altitude.Min, ctx.Constraints.Altitude.Max))
		}

		// AzimuthInverted — medium. Modular wrap (e.g. 350 -> 10) is NOT
		// supported; see DESIGN.md for the Open Question decision.
		if ctx.Constraints.Azimuth != nil && ctx.Constraints.Azimuth.Min > ctx.Constraints.Azimuth.Max {
			add(domain.IssueAzimuthInverted, domain.CriticalityMedium,
				fmt.Sprintf("azimuth range inverted: min %.2f > max %.2f",
					ctx.Constraints.Azimuth.Min, ctx.Constraints.Azimuth.Max))
		}
	}

	if ctx.Assignment != nil && ctx.Assignment.Scheduled() {
		w := interval.Interval{Start: ctx.Assignment.Window.Start, Stop: ctx.Assignment.Window.Stop}

		// ScheduledOutsideVisibility — critical
		if !interval.Contains(vis, w) {
			add(domain.IssueScheduledOutsideVisibility, domain.CriticalityCritical,
				"assignment window is not fully covered by the block's visibility union")
		}

		// ScheduledOutsideFixedTime — critical
		if ctx.Constraints != nil && ctx.Constraints.FixedWindow != nil {
			fw := interval.Interval{Start: ctx.Constraints.FixedWindow.Start, Stop: ctx.Constraints.FixedWindow.Stop}
			if w.Start < fw.Start || w.Stop > fw.Stop {
				add(domain.IssueScheduledOutsideFixedTime, domain.CriticalityCritical,
					"assignment window falls outside the constraint's fixed time window")
			}
		}
	}

	// VisibilityOutsideDark — low (warning only)
	dark := toIV(ctx.DarkPeriods)
	if len(dark) > 0 && len(interval.Intersect(vis, dark)) == 0 {
		add(domain.IssueVisibilityOutsideDark, domain.CriticalityLow,
			"visibility union does not overlap any dark period")
	}

	return issues
}

func toIV(in []domain.Interval) []interval.Interval {
	out := make([]interval.Interval, len(in))
	for i, v := range in {
		out[i] = interval.Interval{Start: v.Start, Stop: v.Stop}
	}
	return out
}

// IsCritical reports whether issues contains any critical-severity entry —
// the analytics engine's "impossible" flag.
func IsCritical(issues []domain.ValidationIssue) bool {
	for _, is := range issues {
		if is.Criticality == domain.CriticalityCritical {
			return true
		}
	}
	return false
}
