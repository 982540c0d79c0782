package gen

import "github.com/me/gauntlet/pkg/model"

// mix emits from a shrinking pool of children, chosen uniformly at random.
type mix struct {
	gens []Gen
}

// Mix picks one child uniformly at random per emission. Exhausted children
// are pruned from the pool; Mix is exhausted once the pool is empty. Fold
// is ignored: mixed children are fire-and-forget.
func Mix(gens ...Gen) Gen {
	if len(gens) == 0 {
		return nil
	}
	return &mix{gens: gens}
}

func (m *mix) Next(t *model.Test, ctx Ctx) Outcome {
	pool := m.gens
	for len(pool) > 0 {
		i := t.Rand.Intn(len(pool))
		o := Next(pool[i], t, ctx)
		switch o.Status {
		case Ready:
			gens := make([]Gen, len(pool))
			copy(gens, pool)
			gens[i] = o.Gen
			return ready(o.Op, &mix{gens: gens})
		case Pending:
			return pend(&mix{gens: pool})
		default:
			pruned := make([]Gen, 0, len(pool)-1)
			pruned = append(pruned, pool[:i]...)
			pruned = append(pruned, pool[i+1:]...)
			pool = pruned
		}
	}
	return exhausted()
}

func (m *mix) Fold(t *model.Test, ctx Ctx, ev model.Op) Gen { return m }
