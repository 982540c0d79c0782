package gen

import "github.com/me/gauntlet/pkg/model"

// anyGen merges children by earliest-ready-wins.
type anyGen struct {
	gens []Gen
}

// Any merges gens: each Next takes the best outcome across all children
// under the order concrete-op < Pending < Exhausted, with ready children
// compared by operation time (ties go to the earlier child). Folds are
// propagated to every child. Any is exhausted only when all children are.
func Any(gens ...Gen) Gen {
	if len(gens) == 0 {
		return nil
	}
	return &anyGen{gens: gens}
}

func (a *anyGen) Next(t *model.Test, ctx Ctx) Outcome {
	best := exhausted()
	bestIdx := -1
	for i, g := range a.gens {
		o := Next(g, t, ctx)
		if bestIdx < 0 || soonestWins(best, o) {
			best = o
			bestIdx = i
		}
	}
	switch best.Status {
	case Ready:
		gens := make([]Gen, len(a.gens))
		copy(gens, a.gens)
		gens[bestIdx] = best.Gen
		return ready(best.Op, &anyGen{gens: gens})
	case Pending:
		return pend(a)
	default:
		return exhausted()
	}
}

func (a *anyGen) Fold(t *model.Test, ctx Ctx, ev model.Op) Gen {
	gens := make([]Gen, len(a.gens))
	for i, g := range a.gens {
		gens[i] = Fold(g, t, ctx, ev)
	}
	return &anyGen{gens: gens}
}
