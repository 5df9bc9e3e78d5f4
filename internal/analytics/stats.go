// Package analytics implements the derived views over stored schedules:
// summary stats, sky-map, distributions, timeline, visibility histogram,
// insights, trends, and schedule-to-schedule comparison. Every function is a
// deterministic function of the normalized entities the Repository holds —
// no hidden state, no randomness.
package analytics

import (
	"math"
	"sort"

	"github.com/obscura-observatory/scheduler-analytics/internal/domain"
)

// DefaultHistogramBins is the bin count used when a caller doesn't specify one.
const DefaultHistogramBins = 30

// Distribution is the summary of one numeric sample: count, central
// tendency, spread, quartiles, and a histogram.
type Distribution struct {
	N       int
	Mean    float64
	Median  float64
	StdDev  float64
	Min     float64
	Max     float64
	Q1      float64
	Q3      float64
	Buckets []domain.HistogramBin
}

// Summarize computes a Distribution over values using numBins histogram
// buckets (DefaultHistogramBins if numBins <= 0).
func Summarize(values []float64, numBins int) Distribution {
	if numBins <= 0 {
		numBins = DefaultHistogramBins
	}
	if len(values) == 0 {
		return Distribution{}
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	d := Distribution{
		N:   len(sorted),
		Min: sorted[0],
		Max: sorted[len(sorted)-1],
	}

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	d.Mean = sum / float64(d.N)

	var sqDiff float64
	for _, v := range sorted {
		diff := v - d.Mean
		sqDiff += diff * diff
	}
	d.StdDev = math.Sqrt(sqDiff / float64(d.N))

	d.Median = percentile(sorted, 0.5)
	d.Q1 = percentile(sorted, 0.25)
	d.Q3 = percentile(sorted, 0.75)

	d.Buckets = histogram(sorted, d.Min, d.Max, numBins)
	return d
}

// percentile uses linear interpolation between closest ranks (the common
// "R-7" method), operating on an already-sorted slice.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := p * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// histogram bins sorted (equi-width over [lo, hi]) into numBins buckets.
// The top bin is inclusive of hi so the maximum value always lands somewhere.
func histogram(sorted []float64, lo, hi float64, numBins int) []domain.HistogramBin {
	buckets := make([]domain.HistogramBin, numBins)
	width := (hi - lo) / float64(numBins)
	if width <= 0 {
		// Degenerate case: every value identical.
		buckets[0] = domain.HistogramBin{Min: lo, Max: hi, Count: len(sorted)}
		for i := 1; i < numBins; i++ {
			buckets[i] = domain.HistogramBin{Min: hi, Max: hi}
		}
		return buckets
	}
	for i := range buckets {
		buckets[i].Min = lo + float64(i)*width
		buckets[i].Max = lo + float64(i+1)*width
	}
	for _, v := range sorted {
		idx := int((v - lo) / width)
		if idx >= numBins {
			idx = numBins - 1
		}
		if idx < 0 {
			idx = 0
		}
		buckets[idx].Count++
	}
	return buckets
}

// pearson computes the Pearson correlation coefficient between x and y.
// Returns 0 when either series has zero variance (undefined correlation).
func pearson(x, y []float64) float64 {
	n := len(x)
	if n == 0 || n != len(y) {
		return 0
	}
	var sumX, sumY float64
	for i := 0; i < n; i++ {
		sumX += x[i]
		sumY += y[i]
	}
	meanX, meanY := sumX/float64(n), sumY/float64(n)

	var cov, varX, varY float64
	for i := 0; i < n; i++ {
		dx, dy := x[i]-meanX, y[i]-meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return 0
	}
	return cov / math.Sqrt(varX*varY)
}
