package feasibility

import (
	"context"
	"sort"
)

// findMIS implements a deletion-based minimal infeasible subset search:
// starting from S = blocks, repeatedly remove the first block
// (in descending-priority order, ties broken by smallest block id) whose
// removal still leaves S infeasible, until no single removal does — S is
// then minimal and is returned with exact=true. Bounded by maxIterations
// outer-loop passes, each removing at most one block; if the budget is
// exhausted before a fixed point, S is returned with exact=false: it is
// still infeasible, but not proven minimal.
func findMIS(ctx context.Context, blocks []Block, maxIterations int) (mis []Block, exact bool) {
	s := append([]Block(nil), blocks...)

	for iter := 0; iter < maxIterations; iter++ {
		if ctx.Err() != nil {
			return s, false
		}
		removedAny := false
		for _, candidate := range descendingPriorityOrder(s) {
			if ctx.Err() != nil {
				return s, false
			}
			reduced := without(s, candidate.ID)
			if len(reduced) == 0 {
				continue // never remove the last block — an empty set is trivially feasible
			}
			_, ok := solve(ctx, reduced)
			if ctx.Err() != nil {
				return s, false
			}
			if !ok {
				// S \ {candidate} is still infeasible: candidate is not
				// load-bearing for the infeasibility — remove it permanently.
				s = reduced
				removedAny = true
				break
			}
		}
		if !removedAny {
			return s, true
		}
	}
	return s, false
}

// descendingPriorityOrder returns blocks sorted by descending Priority,
// ties broken by ascending block ID for determinism.
func descendingPriorityOrder(blocks []Block) []Block {
	out := append([]Block(nil), blocks...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func without(blocks []Block, id string) []Block {
	out := make([]Block, 0, len(blocks)-1)
	for _, b := range blocks {
		if b.ID != id {
			out = append(out, b)
		}
	}
	return out
}
