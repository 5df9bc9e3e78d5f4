package dsa

import "testing"

func TestTopK_RetainsHighest(t *testing.T) {
	tk := NewTopK(3, func(v int) float64 { return float64(v) })
	for _, v := range []int{5, 1, 9, 3, 7, 2, 8} {
		tk.Push(v)
	}
	got := tk.Sorted()
	want := []int{9, 8, 7}
	if len(got) != len(want) {
		t.Fatalf("Sorted() len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Sorted()[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestTopK_FewerThanK(t *testing.T) {
	tk := NewTopK(10, func(v int) float64 { return float64(v) })
	tk.Push(2)
	tk.Push(1)
	got := tk.Sorted()
	if len(got) != 2 || got[0] != 2 || got[1] != 1 {
		t.Errorf("Sorted() = %v, want [2 1]", got)
	}
}

func TestTopK_ZeroK(t *testing.T) {
	tk := NewTopK(0, func(v int) float64 { return float64(v) })
	tk.Push(1)
	if tk.Len() != 0 {
		t.Errorf("Len() = %d, want 0", tk.Len())
	}
}
