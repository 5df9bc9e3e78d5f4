package interval

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   []Interval
		want []Interval
	}{
		{
			name: "touching intervals merge",
			in:   []Interval{{0, 1}, {1, 2}},
			want: []Interval{{0, 2}},
		},
		{
			name: "overlapping intervals merge",
			in:   []Interval{{0, 2}, {1, 3}},
			want: []Interval{{0, 3}},
		},
		{
			name: "zero-width dropped",
			in:   []Interval{{5, 5}, {0, 1}},
			want: []Interval{{0, 1}},
		},
		{
			name: "negative-width dropped",
			in:   []Interval{{5, 4}, {0, 1}},
			want: []Interval{{0, 1}},
		},
		{
			name: "unsorted input sorted",
			in:   []Interval{{3, 4}, {0, 1}},
			want: []Interval{{0, 1}, {3, 4}},
		},
		{
			name: "empty in, empty out",
			in:   nil,
			want: []Interval{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.in)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Normalize(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestIntersect(t *testing.T) {
	a := []Interval{{0, 10}, {20, 30}}
	b := []Interval{{5, 25}}
	got := Intersect(a, b)
	want := []Interval{{5, 10}, {20, 25}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Intersect = %v, want %v", got, want)
	}
}

func TestSubtract(t *testing.T) {
	a := []Interval{{0, 10}}
	b := []Interval{{3, 5}}
	got := Subtract(a, b)
	want := []Interval{{0, 3}, {5, 10}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Subtract = %v, want %v", got, want)
	}
}

func TestSubtract_FullyCovered(t *testing.T) {
	a := []Interval{{0, 10}}
	b := []Interval{{-5, 20}}
	got := Subtract(a, b)
	if len(got) != 0 {
		t.Errorf("Subtract full cover = %v, want empty", got)
	}
}

func TestTotalDuration(t *testing.T) {
	seq := []Interval{{0, 1}, {2, 2.5}}
	if got := TotalDurationDays(seq); got != 1.5 {
		t.Errorf("TotalDurationDays = %v, want 1.5", got)
	}
	if got := TotalDurationSeconds(seq); got != 1.5*86400 {
		t.Errorf("TotalDurationSeconds = %v, want %v", got, 1.5*86400)
	}
}

func TestAnyOverlap(t *testing.T) {
	seq := []Interval{{0, 10}, {20, 30}}
	tests := []struct {
		window Interval
		want   bool
	}{
		{Interval{5, 15}, true},
		{Interval{10, 20}, false}, // equal endpoints: no overlap
		{Interval{15, 18}, false},
		{Interval{25, 26}, true},
		{Interval{-5, 0}, false},
	}
	for _, tt := range tests {
		if got := AnyOverlap(seq, tt.window); got != tt.want {
			t.Errorf("AnyOverlap(%v, %v) = %v, want %v", seq, tt.window, got, tt.want)
		}
	}
}

func TestAnyOverlap_Empty(t *testing.T) {
	if AnyOverlap(nil, Interval{0, 1}) {
		t.Error("AnyOverlap on empty seq should be false")
	}
}

func TestContains(t *testing.T) {
	seq := []Interval{{0, 10}}
	if !Contains(seq, Interval{2, 8}) {
		t.Error("expected window fully contained")
	}
	if Contains(seq, Interval{5, 15}) {
		t.Error("expected window not fully contained")
	}
}

func TestBinOverlap_Empty(t *testing.T) {
	got := BinOverlap(nil, 0, 1, 5)
	for _, v := range got {
		if v != 0 {
			t.Errorf("BinOverlap on empty seq should be all zeros, got %v", got)
		}
	}
	if len(got) != 5 {
		t.Errorf("expected 5 bins, got %d", len(got))
	}
}

func TestBinOverlap_Basic(t *testing.T) {
	// Two blocks: A [60000, 60001], B [60000.5, 60001.5] — bins of width 0.5
	// covering [60000, 60001.5] in 3 bins.
	seqA := []Interval{{60000.0, 60001.0}}
	seqB := []Interval{{60000.5, 60001.5}}

	binsA := BinOverlap(seqA, 60000.0, 0.5, 3)
	binsB := BinOverlap(seqB, 60000.0, 0.5, 3)

	for k := 0; k < 3; k++ {
		total := binsA[k] + binsB[k]
		if total <= 0 {
			t.Errorf("bin %d: expected some overlap, got %v", k, total)
		}
	}
}
