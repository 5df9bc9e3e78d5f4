package analytics

import "testing"

func TestSummarize_Basic(t *testing.T) {
	d := Summarize([]float64{1, 2, 3, 4, 5}, 5)
	if d.N != 5 {
		t.Errorf("N = %d", d.N)
	}
	if d.Mean != 3 {
		t.Errorf("Mean = %v, want 3", d.Mean)
	}
	if d.Median != 3 {
		t.Errorf("Median = %v, want 3", d.Median)
	}
	if d.Min != 1 || d.Max != 5 {
		t.Errorf("Min/Max = %v/%v", d.Min, d.Max)
	}
	if len(d.Buckets) != 5 {
		t.Errorf("expected 5 buckets, got %d", len(d.Buckets))
	}
	total := 0
	for _, b := range d.Buckets {
		total += b.Count
	}
	if total != 5 {
		t.Errorf("bucket counts sum to %d, want 5", total)
	}
}

func TestSummarize_Empty(t *testing.T) {
	d := Summarize(nil, 10)
	if d.N != 0 {
		t.Errorf("expected N=0 for empty input, got %d", d.N)
	}
}

func TestSummarize_DefaultBins(t *testing.T) {
	d := Summarize([]float64{1, 2}, 0)
	if len(d.Buckets) != DefaultHistogramBins {
		t.Errorf("expected default %d buckets, got %d", DefaultHistogramBins, len(d.Buckets))
	}
}

func TestPearson_PerfectPositive(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	y := []float64{2, 4, 6, 8, 10}
	r := pearson(x, y)
	if r < 0.999 {
		t.Errorf("pearson = %v, want ~1.0", r)
	}
}

func TestPearson_NoVariance(t *testing.T) {
	x := []float64{5, 5, 5}
	y := []float64{1, 2, 3}
	if r := pearson(x, y); r != 0 {
		t.Errorf("pearson = %v, want 0 for zero-variance series", r)
	}
}
