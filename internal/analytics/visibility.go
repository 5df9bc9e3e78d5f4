package analytics

import (
	"github.com/obscura-observatory/scheduler-analytics/internal/domain"
)

// VisibilityHistogramParams selects the bin grid for VisibilityHistogram.
// Exactly one of NumBins or BinDurationMinutes should be set; if both are
// zero, NumBins defaults to DefaultHistogramBins.
type VisibilityHistogramParams struct {
	T0                 float64
	T1                 float64
	NumBins            int
	BinDurationMinutes float64
	PriorityFilter     *domain.Range
}

// VisibilityHistogram computes, per bin, the count of distinct blocks whose
// visibility union overlaps the bin.
//
// Algorithm: for each block, compute the first and last bin index its
// (already normalized, sorted, disjoint) visibility union touches via direct
// index arithmetic — no scan over the full bin grid — then mark only those
// bins. Cost is O(B·log N + touched_cells), never the naive O(B·N).
func VisibilityHistogram(blocks []domain.SchedulingBlock, p VisibilityHistogramParams) []domain.VisibilityBin {
	numBins := p.NumBins
	delta := 0.0
	switch {
	case p.BinDurationMinutes > 0:
		delta = p.BinDurationMinutes / (24 * 60)
		numBins = int((p.T1-p.T0)/delta + 0.5)
	case numBins > 0:
		delta = (p.T1 - p.T0) / float64(numBins)
	default:
		numBins = DefaultHistogramBins
		delta = (p.T1 - p.T0) / float64(numBins)
	}
	if numBins <= 0 || delta <= 0 {
		return nil
	}

	var minP, maxP float64
	if len(blocks) > 0 {
		minP, maxP = blocks[0].Priority, blocks[0].Priority
		for _, b := range blocks {
			if b.Priority < minP {
				minP = b.Priority
			}
			if b.Priority > maxP {
				maxP = b.Priority
			}
		}
	}
	width := (maxP - minP) / priorityHistogramBins

	bins := make([]domain.VisibilityBin, numBins)
	for i := range bins {
		bins[i] = domain.VisibilityBin{
			BinIndex:         i,
			BinStart:         p.T0 + float64(i)*delta,
			BinWidth:         delta,
			ByPriorityBin:    make(map[int]int),
			PriorityMin:      minP,
			PriorityBinWidth: width,
		}
	}

	for _, b := range blocks {
		if p.PriorityFilter != nil && (b.Priority < p.PriorityFilter.Min || b.Priority > p.PriorityFilter.Max) {
			continue
		}
		priBin := priorityBinIndex(b.Priority, minP, width, priorityHistogramBins)
		touched := touchedBins(b.VisibilityPeriods, p.T0, delta, numBins)
		for _, idx := range touched {
			bins[idx].Count++
			bins[idx].ByPriorityBin[priBin]++
		}
	}
	return bins
}

// touchedBins returns, for a normalized sorted-disjoint sequence of
// intervals, the distinct bin indices any interval overlaps — each index
// appears at most once even if multiple intervals land in the same bin.
func touchedBins(seq []domain.Interval, t0, delta float64, numBins int) []int {
	var out []int
	lastAdded := -1
	for _, iv := range seq {
		if iv.Stop <= t0 || iv.Start >= t0+float64(numBins)*delta {
			continue
		}
		startIdx := int((iv.Start - t0) / delta)
		if startIdx < 0 {
			startIdx = 0
		}
		stopIdx := int((iv.Stop - t0) / delta)
		if iv.Stop == t0+float64(stopIdx)*delta {
			stopIdx-- // half-open: exactly-on-boundary stop doesn't touch that bin
		}
		if stopIdx >= numBins {
			stopIdx = numBins - 1
		}
		for k := startIdx; k <= stopIdx; k++ {
			if k != lastAdded {
				out = append(out, k)
				lastAdded = k
			}
		}
	}
	return out
}
