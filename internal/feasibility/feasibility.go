// Package feasibility decides, for a set of blocks, whether every block
// can be assigned a non-overlapping execution window inside its own
// visibility union, and — when it cannot — isolates a minimal infeasible
// subset (MIS).
//
// The solver is a backtracking constraint search over start positions in
// seconds, with most-constrained-variable ordering and deterministic
// tie-breaking. Start positions are continuous float64 seconds; they are
// not rounded to whole seconds.
package feasibility

import (
	"context"
	"sort"

	"github.com/obscura-observatory/scheduler-analytics/internal/domain"
	"github.com/obscura-observatory/scheduler-analytics/internal/interval"
)

// Status is the three-way outcome of a feasibility check.
type Status string

const (
	StatusFeasible   Status = "FEASIBLE"
	StatusInfeasible Status = "INFEASIBLE"
	StatusUnknown    Status = "UNKNOWN"
)

// Block is the solver's view of a scheduling block: just enough to encode
// the disjunctive-domain and non-overlap constraints.
type Block struct {
	ID                string
	Priority          float64
	RequestedDuration float64 // seconds
	Visibility        []domain.Interval
}

// Options mirrors check_feasibility's options bundle.
type Options struct {
	Seed               int64 // reserved for tie-break reproducibility; search is otherwise deterministic
	MaxIterations      int   // bounds the MIS outer loop (default 50)
	RespectDarkPeriods bool
	DarkPeriods        []domain.Interval // forbidden region when RespectDarkPeriods
}

// DefaultMaxIterations bounds the MIS deletion loop by default.
const DefaultMaxIterations = 50

// Assignment is one block's chosen execution window, in MJD.
type Assignment struct {
	BlockID string
	Start   float64
	Stop    float64
}

// Result is check_feasibility's output.
type Result struct {
	Status      Status
	Assignments []Assignment // set iff Status == StatusFeasible
	MIS         []string     // block ids; set when Status == StatusInfeasible, may hold a partial MIS when StatusUnknown
	Exact       bool         // true iff MIS is proven minimal, false if only "locally minimal"
	Infeasible  []string     // blocks individually infeasible (singleton MIS, pre-filtered from the CP search)
}

const secondsPerDay = 86400.0

// domainWindow is one valid range of start times (in seconds) for a block —
// derived by shrinking a visibility window by the block's duration.
type domainWindow struct{ start, stop float64 } // [start, stop], inclusive

// buildDomain converts a block's visibility union (MJD) into its start-time
// domain (seconds): for each visibility window v with width >= duration,
// emits [v.start_sec, v.stop_sec - duration]. A block with an empty domain
// admits no placement and is individually infeasible.
func buildDomain(vis []domain.Interval, duration float64) []domainWindow {
	var out []domainWindow
	for _, v := range vis {
		startSec := v.Start * secondsPerDay
		stopSec := v.Stop * secondsPerDay
		if stopSec-startSec >= duration {
			out = append(out, domainWindow{start: startSec, stop: stopSec - duration})
		}
	}
	return out
}

// Check runs the feasibility search over blocks. It honors ctx
// cancellation and deadline, returning StatusUnknown with whatever partial
// MIS diagnostic had been found so far when the context is done before a
// conclusive answer.
//
// When opts.RespectDarkPeriods is set, every block's visibility union is
// first intersected with the dark-period union; the rest of the search
// never needs to know dark periods exist.
func Check(ctx context.Context, blocks []Block, opts Options) Result {
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = DefaultMaxIterations
	}
	blocks = applyDarkRestriction(blocks, opts)

	feasibleSet, infeasibleSet := partitionIndividuallyInfeasible(blocks)
	if len(feasibleSet) == 0 {
		if len(infeasibleSet) == 0 {
			return Result{Status: StatusFeasible}
		}
		return Result{Status: StatusInfeasible, MIS: ids(infeasibleSet)[:1], Exact: true, Infeasible: ids(infeasibleSet)}
	}

	assignments, ok := solve(ctx, feasibleSet)
	if ctx.Err() != nil {
		return Result{Status: StatusUnknown, Infeasible: ids(infeasibleSet)}
	}
	if ok {
		if len(infeasibleSet) > 0 {
			// Any individually-infeasible block makes the whole set
			// infeasible — report it directly as a singleton MIS rather
			// than running the (redundant) deletion search.
			return Result{Status: StatusInfeasible, MIS: ids(infeasibleSet)[:1], Exact: true, Infeasible: ids(infeasibleSet)}
		}
		return Result{Status: StatusFeasible, Assignments: assignments}
	}

	mis, exact := findMIS(ctx, feasibleSet, opts.MaxIterations)
	if ctx.Err() != nil {
		return Result{Status: StatusUnknown, MIS: ids(mis), Infeasible: ids(infeasibleSet)}
	}
	return Result{Status: StatusInfeasible, MIS: ids(mis), Exact: exact, Infeasible: ids(infeasibleSet)}
}

// applyDarkRestriction intersects each block's visibility with the dark
// union when requested, leaving blocks untouched otherwise.
func applyDarkRestriction(blocks []Block, opts Options) []Block {
	if !opts.RespectDarkPeriods || len(opts.DarkPeriods) == 0 {
		return blocks
	}
	dark := interval.Normalize(toIV(opts.DarkPeriods))
	out := make([]Block, len(blocks))
	for i, b := range blocks {
		out[i] = b
		out[i].Visibility = fromIV(interval.Intersect(toIV(b.Visibility), dark))
	}
	return out
}

func ids(blocks []Block) []string {
	out := make([]string, len(blocks))
	for i, b := range blocks {
		out[i] = b.ID
	}
	return out
}

// partitionIndividuallyInfeasible splits blocks into those with a non-empty
// start-time domain and those that admit no placement at all — the latter
// are pre-marked infeasible and excluded from the CP search.
func partitionIndividuallyInfeasible(blocks []Block) (feasible, infeasible []Block) {
	for _, b := range blocks {
		if len(buildDomain(b.Visibility, b.RequestedDuration)) == 0 {
			infeasible = append(infeasible, b)
			continue
		}
		feasible = append(feasible, b)
	}
	return feasible, infeasible
}

func toIV(in []domain.Interval) []interval.Interval {
	out := make([]interval.Interval, len(in))
	for i, v := range in {
		out[i] = interval.Interval{Start: v.Start, Stop: v.Stop}
	}
	return out
}

func fromIV(in []interval.Interval) []domain.Interval {
	out := make([]domain.Interval, len(in))
	for i, v := range in {
		out[i] = domain.Interval{Start: v.Start, Stop: v.Stop}
	}
	return out
}

func max64(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// sortByMRV orders blocks by most-constrained-variable first (fewest domain
// windows), tie-broken by smallest block ID for determinism.
func sortByMRV(blocks []Block) []Block {
	out := append([]Block(nil), blocks...)
	domainSize := make(map[string]int, len(out))
	for _, b := range out {
		domainSize[b.ID] = len(buildDomain(b.Visibility, b.RequestedDuration))
	}
	sort.Slice(out, func(i, j int) bool {
		di, dj := domainSize[out[i].ID], domainSize[out[j].ID]
		if di != dj {
			return di < dj
		}
		return out[i].ID < out[j].ID
	})
	return out
}
