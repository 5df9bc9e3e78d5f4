// Package dsa holds the small data structures the analytics and storage
// layers lean on: a bounded top-K selector and a Bloom filter over upload
// checksums.
package dsa

import "sort"

// ─── Top-K Selector (Bounded Min-Heap) ──────────────────────────────────────
// Selects the K highest-scoring elements from a stream without sorting it.
// The root of the heap is always the smallest retained element, so a new
// element either displaces the root or is discarded.
//
// Operations:
//   Push:   O(log k) — displace-root + sift down, or append + sift up
//   Sorted: O(k log k)
//
// A full pass over n elements costs O(n log k) against the O(n log n) of
// sort-then-truncate; for the insight lists k is tiny and n is every block
// in a schedule.

// TopK retains the k highest-scoring elements pushed into it.
type TopK[T any] struct {
	k     int
	score func(T) float64
	heap  []T
}

// NewTopK creates an empty selector retaining the k highest elements by
// score.
func NewTopK[T any](k int, score func(T) float64) *TopK[T] {
	return &TopK[T]{k: k, score: score}
}

// Push offers v to the selector. O(log k).
func (t *TopK[T]) Push(v T) {
	if t.k <= 0 {
		return
	}
	if len(t.heap) < t.k {
		t.heap = append(t.heap, v)
		t.siftUp(len(t.heap) - 1)
		return
	}
	if t.score(v) <= t.score(t.heap[0]) {
		return
	}
	t.heap[0] = v
	t.siftDown(0)
}

// Len returns the number of retained elements.
func (t *TopK[T]) Len() int { return len(t.heap) }

// Sorted returns the retained elements in descending score order.
func (t *TopK[T]) Sorted() []T {
	out := append([]T(nil), t.heap...)
	sort.Slice(out, func(i, j int) bool { return t.score(out[i]) > t.score(out[j]) })
	return out
}

// less returns true if element i must sit below element j in the min-heap.
func (t *TopK[T]) less(i, j int) bool {
	return t.score(t.heap[i]) < t.score(t.heap[j])
}

// siftUp restores the heap property after insertion.
func (t *TopK[T]) siftUp(idx int) {
	for idx > 0 {
		parent := (idx - 1) / 2
		if t.less(idx, parent) {
			t.heap[idx], t.heap[parent] = t.heap[parent], t.heap[idx]
			idx = parent
		} else {
			break
		}
	}
}

// siftDown restores the heap property after the root is displaced.
func (t *TopK[T]) siftDown(idx int) {
	n := len(t.heap)
	for {
		smallest := idx
		left := 2*idx + 1
		right := 2*idx + 2

		if left < n && t.less(left, smallest) {
			smallest = left
		}
		if right < n && t.less(right, smallest) {
			smallest = right
		}
		if smallest == idx {
			break
		}
		t.heap[idx], t.heap[smallest] = t.heap[smallest], t.heap[idx]
		idx = smallest
	}
}
