package feasibility

import (
	"context"
	"testing"
	"time"

	"github.com/obscura-observatory/scheduler-analytics/internal/domain"
)

func iv(start, stop float64) domain.Interval { return domain.Interval{Start: start, Stop: stop} }

// S4: three blocks with 3600s duration over disjoint, roomy visibility
// windows — expect FEASIBLE with non-overlapping, visibility-contained
// assignments.
func TestCheck_Feasible(t *testing.T) {
	blocks := []Block{
		{ID: "b1", Priority: 1, RequestedDuration: 3600, Visibility: []domain.Interval{iv(60000.0, 60000.25)}},
		{ID: "b2", Priority: 1, RequestedDuration: 3600, Visibility: []domain.Interval{iv(60000.3, 60000.5)}},
		{ID: "b3", Priority: 1, RequestedDuration: 3600, Visibility: []domain.Interval{iv(60000.6, 60000.8)}},
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res := Check(ctx, blocks, Options{})
	if res.Status != StatusFeasible {
		t.Fatalf("Status = %v, want FEASIBLE", res.Status)
	}
	if len(res.Assignments) != 3 {
		t.Fatalf("len(Assignments) = %d, want 3", len(res.Assignments))
	}

	byID := make(map[string]Assignment, 3)
	for _, a := range res.Assignments {
		byID[a.BlockID] = a
	}
	for _, b := range blocks {
		a, ok := byID[b.ID]
		if !ok {
			t.Fatalf("missing assignment for %s", b.ID)
		}
		v := b.Visibility[0]
		if a.Start < v.Start || a.Stop > v.Stop {
			t.Errorf("%s assignment [%v,%v] not contained in visibility [%v,%v]", b.ID, a.Start, a.Stop, v.Start, v.Stop)
		}
	}
	// Non-overlap.
	for i := 0; i < len(res.Assignments); i++ {
		for j := i + 1; j < len(res.Assignments); j++ {
			a, b := res.Assignments[i], res.Assignments[j]
			if a.Start < b.Stop && b.Start < a.Stop {
				t.Errorf("assignments %s and %s overlap", a.BlockID, b.BlockID)
			}
		}
	}
}

// S5: five blocks each needing 12h whose visibility unions collectively
// cannot cover 60h total — expect INFEASIBLE with a MIS of size <= 5,
// deterministic across repeated runs with the same seed.
func TestCheck_InfeasibleWithMIS(t *testing.T) {
	mkBlocks := func() []Block {
		return []Block{
			{ID: "b1", Priority: 5, RequestedDuration: 43200, Visibility: []domain.Interval{iv(60000.0, 60000.6)}},
			{ID: "b2", Priority: 4, RequestedDuration: 43200, Visibility: []domain.Interval{iv(60000.0, 60000.6)}},
			{ID: "b3", Priority: 3, RequestedDuration: 43200, Visibility: []domain.Interval{iv(60000.0, 60000.6)}},
			{ID: "b4", Priority: 2, RequestedDuration: 43200, Visibility: []domain.Interval{iv(60000.0, 60000.6)}},
			{ID: "b5", Priority: 1, RequestedDuration: 43200, Visibility: []domain.Interval{iv(60000.0, 60000.6)}},
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	res1 := Check(ctx, mkBlocks(), Options{Seed: 0})
	if res1.Status != StatusInfeasible {
		t.Fatalf("Status = %v, want INFEASIBLE", res1.Status)
	}
	if len(res1.MIS) == 0 || len(res1.MIS) > 5 {
		t.Fatalf("len(MIS) = %d, want 1..5", len(res1.MIS))
	}

	// Removing any single block from the MIS (in isolation) must make the
	// remainder feasible — that's what "minimal infeasible" means.
	misOnly := blocksWithIDs(mkBlocks(), res1.MIS)
	for _, removeID := range res1.MIS {
		remaining := without(misOnly, removeID)
		if len(remaining) == 0 {
			continue
		}
		sub := Check(context.Background(), remaining, Options{Seed: 0})
		if sub.Status != StatusFeasible {
			t.Errorf("MIS minus %s should be feasible, got %v", removeID, sub.Status)
		}
	}

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	res2 := Check(ctx2, mkBlocks(), Options{Seed: 0})
	if !sameIDs(res1.MIS, res2.MIS) {
		t.Errorf("MIS not deterministic: %v vs %v", res1.MIS, res2.MIS)
	}
}

// Overlapping-but-jointly-satisfiable windows: one block has a wide
// start-time domain, the other is pinned to (almost) a single start in the
// middle of it. Placing the wide block first at its earliest start squats
// on the pinned block's only position, so the search must recover by
// sequencing the pinned block first. The set is feasible either way, and
// the verdict must not depend on which block id sorts first.
func TestCheck_OverlappingWindows_PinnedBlockForcesReordering(t *testing.T) {
	const duration = 8640 // 0.1 day
	mkBlocks := func(wideID, pinnedID string) []Block {
		return []Block{
			{ID: wideID, Priority: 1, RequestedDuration: duration,
				Visibility: []domain.Interval{iv(60000.0, 60000.3)}},
			// Width 0.101 day: barely more than the duration, pinning the
			// start to a sliver inside the wide block's domain.
			{ID: pinnedID, Priority: 1, RequestedDuration: duration,
				Visibility: []domain.Interval{iv(60000.05, 60000.151)}},
		}
	}

	for _, ids := range [][2]string{{"a-block", "b-block"}, {"z-block", "b-block"}} {
		blocks := mkBlocks(ids[0], ids[1])
		res := Check(context.Background(), blocks, Options{})
		if res.Status != StatusFeasible {
			t.Fatalf("ids %v: Status = %v, want FEASIBLE", ids, res.Status)
		}
		if len(res.Assignments) != 2 {
			t.Fatalf("ids %v: len(Assignments) = %d, want 2", ids, len(res.Assignments))
		}
		for _, a := range res.Assignments {
			var vis domain.Interval
			for _, b := range blocks {
				if b.ID == a.BlockID {
					vis = b.Visibility[0]
				}
			}
			if a.Start < vis.Start || a.Stop > vis.Stop {
				t.Errorf("ids %v: %s assignment [%v,%v] outside visibility [%v,%v]",
					ids, a.BlockID, a.Start, a.Stop, vis.Start, vis.Stop)
			}
		}
		a, b := res.Assignments[0], res.Assignments[1]
		if a.Start < b.Stop && b.Start < a.Stop {
			t.Errorf("ids %v: assignments %s and %s overlap", ids, a.BlockID, b.BlockID)
		}
	}
}

func TestCheck_EmptySet(t *testing.T) {
	res := Check(context.Background(), nil, Options{})
	if res.Status != StatusFeasible {
		t.Errorf("Status = %v, want FEASIBLE for empty block set", res.Status)
	}
}

func TestCheck_IndividuallyInfeasibleBlockIsSingletonMIS(t *testing.T) {
	blocks := []Block{
		{ID: "b1", Priority: 1, RequestedDuration: 3600, Visibility: []domain.Interval{iv(60000.0, 60000.0005)}}, // too short
	}
	res := Check(context.Background(), blocks, Options{})
	if res.Status != StatusInfeasible {
		t.Fatalf("Status = %v, want INFEASIBLE", res.Status)
	}
	if len(res.MIS) != 1 || res.MIS[0] != "b1" {
		t.Errorf("MIS = %v, want [b1]", res.MIS)
	}
	if len(res.Infeasible) != 1 {
		t.Errorf("Infeasible = %v, want [b1]", res.Infeasible)
	}
}

func TestCheck_RespectDarkPeriods(t *testing.T) {
	blocks := []Block{
		{ID: "b1", Priority: 1, RequestedDuration: 3600, Visibility: []domain.Interval{iv(60000.0, 60000.5)}},
	}
	// Dark period covers none of the visibility window.
	res := Check(context.Background(), blocks, Options{
		RespectDarkPeriods: true,
		DarkPeriods:        []domain.Interval{iv(61000.0, 61000.5)},
	})
	if res.Status != StatusInfeasible {
		t.Fatalf("Status = %v, want INFEASIBLE when dark periods exclude all visibility", res.Status)
	}
}

func blocksWithIDs(all []Block, ids []string) []Block {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []Block
	for _, b := range all {
		if want[b.ID] {
			out = append(out, b)
		}
	}
	return out
}

func sameIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
