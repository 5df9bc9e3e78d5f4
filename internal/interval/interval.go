// Package interval implements MJD interval algebra: the sweep-line
// primitives that every visibility/dark-period/time-bin computation in the
// engine is built from. Every output sequence is sorted ascending by start
// and pairwise disjoint unless stated otherwise.
//
// Mutation is always replacement, never in-place edit — this lets callers
// share a normalized sequence across goroutines without locks.
package interval

import "sort"

// Interval is a half-open MJD range [Start, Stop).
type Interval struct {
	Start float64
	Stop  float64
}

// Width returns the interval's duration in days.
func (iv Interval) Width() float64 { return iv.Stop - iv.Start }

// Normalize sorts seq by Start, drops zero/negative-width intervals, and
// merges overlaps or touches (a.Stop >= b.Start coalesce into one interval).
func Normalize(seq []Interval) []Interval {
	clean := make([]Interval, 0, len(seq))
	for _, iv := range seq {
		if iv.Stop > iv.Start {
			clean = append(clean, iv)
		}
	}
	if len(clean) == 0 {
		return clean
	}
	sort.Slice(clean, func(i, j int) bool { return clean[i].Start < clean[j].Start })

	out := make([]Interval, 0, len(clean))
	cur := clean[0]
	for _, iv := range clean[1:] {
		if iv.Start <= cur.Stop {
			if iv.Stop > cur.Stop {
				cur.Stop = iv.Stop
			}
			continue
		}
		out = append(out, cur)
		cur = iv
	}
	out = append(out, cur)
	return out
}

// Union returns normalize(a ++ b).
func Union(a, b []Interval) []Interval {
	merged := make([]Interval, 0, len(a)+len(b))
	merged = append(merged, a...)
	merged = append(merged, b...)
	return Normalize(merged)
}

// Intersect sweeps both sorted, disjoint sequences with two cursors,
// producing only the overlapping parts. Preserves sortedness.
func Intersect(a, b []Interval) []Interval {
	var out []Interval
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		start := max(a[i].Start, b[j].Start)
		stop := min(a[i].Stop, b[j].Stop)
		if start < stop {
			out = append(out, Interval{Start: start, Stop: stop})
		}
		if a[i].Stop < b[j].Stop {
			i++
		} else {
			j++
		}
	}
	return out
}

// Subtract removes from a every point that lies in b, emitting the
// remaining fragments. a and b must each be sorted and pairwise disjoint.
func Subtract(a, b []Interval) []Interval {
	var out []Interval
	j := 0
	for _, iv := range a {
		cur := iv
		for j < len(b) && b[j].Stop <= cur.Start {
			j++
		}
		k := j
		for k < len(b) && b[k].Start < cur.Stop {
			if b[k].Start > cur.Start {
				out = append(out, Interval{Start: cur.Start, Stop: b[k].Start})
			}
			if b[k].Stop > cur.Start {
				cur.Start = b[k].Stop
			}
			if cur.Start >= cur.Stop {
				break
			}
			k++
		}
		if cur.Start < cur.Stop {
			out = append(out, cur)
		}
	}
	return out
}

// TotalDurationDays returns the sum of (Stop - Start) across seq, in days.
func TotalDurationDays(seq []Interval) float64 {
	var total float64
	for _, iv := range seq {
		total += iv.Width()
	}
	return total
}

// TotalDurationSeconds returns TotalDurationDays(seq) * 86400.
func TotalDurationSeconds(seq []Interval) float64 {
	return TotalDurationDays(seq) * 86400
}

// MaxWidthSeconds returns the widest single interval in seq, in seconds.
func MaxWidthSeconds(seq []Interval) float64 {
	var max float64
	for _, iv := range seq {
		if w := iv.Width() * 86400; w > max {
			max = w
		}
	}
	return max
}

// AnyOverlap reports whether window overlaps any interval in the sorted,
// disjoint seq. Binary search locates the first candidate whose Start <
// window.Stop, then confirms Stop > window.Start. Equal endpoints do not
// overlap (strict inequality throughout).
func AnyOverlap(seq []Interval, window Interval) bool {
	// First interval with Start >= window.Stop bounds the search from above;
	// we want the rightmost interval with Start < window.Stop.
	idx := sort.Search(len(seq), func(i int) bool { return seq[i].Start >= window.Stop })
	if idx == 0 {
		return false
	}
	candidate := seq[idx-1]
	return candidate.Stop > window.Start
}

// Contains reports whether window is fully covered by the union seq
// (sorted, disjoint).
func Contains(seq []Interval, window Interval) bool {
	idx := sort.Search(len(seq), func(i int) bool { return seq[i].Stop > window.Start })
	if idx == len(seq) {
		return false
	}
	return seq[idx].Start <= window.Start && seq[idx].Stop >= window.Stop
}

// BinOverlap computes, for each of N bins [t0+k*delta, t0+(k+1)*delta), the
// overlap length (in days) with seq. Sweeps interval and bin edges together
// in O((N + len(seq)) log(N + len(seq))) rather than the naive O(N*len(seq)).
func BinOverlap(seq []Interval, t0, delta float64, n int) []float64 {
	out := make([]float64, n)
	if n <= 0 || delta <= 0 {
		return out
	}
	for _, iv := range seq {
		if iv.Stop <= t0 || iv.Start >= t0+float64(n)*delta {
			continue
		}
		startIdx := int((iv.Start - t0) / delta)
		if startIdx < 0 {
			startIdx = 0
		}
		stopIdx := int((iv.Stop - t0) / delta)
		if stopIdx >= n {
			stopIdx = n - 1
		}
		for k := startIdx; k <= stopIdx; k++ {
			binStart := t0 + float64(k)*delta
			binStop := binStart + delta
			lo := max(iv.Start, binStart)
			hi := min(iv.Stop, binStop)
			if hi > lo {
				out[k] += hi - lo
			}
		}
	}
	return out
}
