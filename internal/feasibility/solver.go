package feasibility

import (
	"context"
	"math"
	"sort"

	"github.com/obscura-observatory/scheduler-analytics/internal/interval"
)

// solver carries shared backtracking state for one Check call.
type solver struct {
	ctx     context.Context
	blocks  []Block                   // most-constrained-variable order
	domains map[string][]domainWindow // pre-narrowed (dark-restricted) per block
	placed  []interval.Interval       // already-assigned execution windows, kept sorted
	result  map[string]Assignment
	checks  int // node-expansion counter; ctx is polled every few hundred nodes
}

// solve attempts to place every block in blocks into a disjoint window
// inside its own visibility union (the non-overlap and disjunctive-domain
// constraints). Returns the assignment and true on success, or false if no
// satisfying assignment exists. ctx cancellation aborts the search early;
// callers must check ctx.Err() to distinguish "proven infeasible" from
// "search interrupted".
func solve(ctx context.Context, blocks []Block) (assignments []Assignment, ok bool) {
	s := &solver{
		ctx:     ctx,
		blocks:  sortByMRV(blocks),
		domains: make(map[string][]domainWindow, len(blocks)),
		result:  make(map[string]Assignment, len(blocks)),
	}
	for _, b := range s.blocks {
		s.domains[b.ID] = buildDomain(b.Visibility, b.RequestedDuration)
	}
	if !s.backtrack(0) {
		return nil, false
	}
	assignments = make([]Assignment, 0, len(s.result))
	for _, b := range blocks {
		assignments = append(assignments, s.result[b.ID])
	}
	sort.Slice(assignments, func(i, j int) bool { return assignments[i].Start < assignments[j].Start })
	return assignments, true
}

// backtrack branches on which block is placed next, putting the chosen
// block at the earliest start its domain admits against the already-placed
// intervals, and undoing on failure.
//
// This branching is complete: take any feasible schedule in ascending
// start order. Placing each of its blocks greedily at the earliest
// feasible start only moves the block left of its reference position, and
// every later block's reference start lies at or beyond the stops of all
// earlier blocks, so the left-shifted prefix never collides with the
// remainder. A fixed placement order with earliest-fit is NOT complete —
// a wide block placed first can squat on the only start a pinned block
// has — which is why the block choice itself is a decision point.
func (s *solver) backtrack(placedCount int) bool {
	if placedCount == len(s.blocks) {
		return true
	}
	s.checks++
	if s.checks%256 == 0 && s.ctx.Err() != nil {
		return false
	}

	for _, b := range s.blocks {
		if _, done := s.result[b.ID]; done {
			continue
		}
		start, ok := s.earliestStart(b)
		if !ok {
			continue
		}
		iv := interval.Interval{Start: start / secondsPerDay, Stop: (start + b.RequestedDuration) / secondsPerDay}
		s.placeAt(iv)
		s.result[b.ID] = Assignment{BlockID: b.ID, Start: iv.Start, Stop: iv.Stop}
		if s.backtrack(placedCount + 1) {
			return true
		}
		s.unplace(iv)
		delete(s.result, b.ID)
	}
	return false
}

// earliestStart returns the smallest start (in seconds) at which b fits
// against the placed intervals. Domain windows are ascending and disjoint
// (the visibility union is normalized and every window shrinks by the same
// duration), so the first window holding a free position yields the global
// earliest.
func (s *solver) earliestStart(b Block) (float64, bool) {
	for _, w := range s.domains[b.ID] {
		if start, ok := earliestFreeStart(w, b.RequestedDuration, s.placed); ok {
			return start, true
		}
	}
	return 0, false
}

// earliestFreeStart finds the leftmost position inside domain window w
// (valid start positions, already shrunk by duration in buildDomain) where
// a block of the given duration avoids every placed interval.
//
// A placed interval [pStart,pStop) forbids start positions in the open
// range (pStart-duration, pStop); since interval.Subtract treats its second
// argument as half-open [Start,Stop), the left boundary point
// pStart-duration is (conservatively) excluded too — immaterial at
// continuous-time granularity.
func earliestFreeStart(w domainWindow, duration float64, placed []interval.Interval) (float64, bool) {
	// widen window.Stop by one ulp so a single-instant domain isn't dropped as zero-width
	window := []interval.Interval{{Start: w.start, Stop: math.Nextafter(w.stop, math.Inf(1))}}
	blocked := make([]interval.Interval, 0, len(placed))
	for _, p := range placed {
		pStartSec := p.Start * secondsPerDay
		pStopSec := p.Stop * secondsPerDay
		blocked = append(blocked, interval.Interval{Start: pStartSec - duration, Stop: pStopSec})
	}
	free := interval.Subtract(window, interval.Normalize(blocked))
	for _, f := range free {
		lo := max64(f.Start, w.start)
		if lo <= w.stop {
			return lo, true
		}
	}
	return 0, false
}

func (s *solver) placeAt(iv interval.Interval) {
	s.placed = append(s.placed, iv)
	sort.Slice(s.placed, func(i, j int) bool { return s.placed[i].Start < s.placed[j].Start })
}

func (s *solver) unplace(iv interval.Interval) {
	for i, p := range s.placed {
		if p == iv {
			s.placed = append(s.placed[:i], s.placed[i+1:]...)
			return
		}
	}
}
