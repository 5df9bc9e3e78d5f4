package dsa

import (
	"fmt"
	"testing"
)

func TestBloomFilter_NoFalseNegatives(t *testing.T) {
	bf := NewBloomFilter(1000, 0.001)
	for i := 0; i < 1000; i++ {
		bf.Add(fmt.Sprintf("checksum-%d", i))
	}
	for i := 0; i < 1000; i++ {
		if !bf.MightContain(fmt.Sprintf("checksum-%d", i)) {
			t.Fatalf("false negative for checksum-%d", i)
		}
	}
}

func TestBloomFilter_FalsePositiveRate(t *testing.T) {
	bf := NewBloomFilter(1000, 0.001)
	for i := 0; i < 1000; i++ {
		bf.Add(fmt.Sprintf("present-%d", i))
	}

	falsePositives := 0
	const probes = 10000
	for i := 0; i < probes; i++ {
		if bf.MightContain(fmt.Sprintf("absent-%d", i)) {
			falsePositives++
		}
	}
	// Sized for 0.1%; allow an order of magnitude of slack.
	if rate := float64(falsePositives) / probes; rate > 0.01 {
		t.Errorf("false positive rate = %.4f, want < 0.01", rate)
	}
}

func TestBloomFilter_EmptyContainsNothing(t *testing.T) {
	bf := NewBloomFilter(100, 0.001)
	if bf.MightContain("anything") {
		t.Error("empty filter reports membership")
	}
	if bf.Count() != 0 {
		t.Errorf("Count() = %d, want 0", bf.Count())
	}
}
