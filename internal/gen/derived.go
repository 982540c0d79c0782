package gen

import "github.com/me/gauntlet/pkg/model"

// flipFlop alternates emissions between two children.
type flipFlop struct {
	gens [2]Gen
	i    int
}

// FlipFlop alternates emissions between a and b, starting with a. Commonly
// used for start/stop fault patterns. Exhausts as soon as either side does.
func FlipFlop(a, b Gen) Gen {
	return &flipFlop{gens: [2]Gen{a, b}}
}

func (f *flipFlop) Next(t *model.Test, ctx Ctx) Outcome {
	o := Next(f.gens[f.i], t, ctx)
	switch o.Status {
	case Ready:
		gens := f.gens
		gens[f.i] = o.Gen
		return ready(o.Op, &flipFlop{gens: gens, i: 1 - f.i})
	case Pending:
		gens := f.gens
		gens[f.i] = o.Gen
		return pend(&flipFlop{gens: gens, i: f.i})
	default:
		return exhausted()
	}
}

func (f *flipFlop) Fold(t *model.Test, ctx Ctx, ev model.Op) Gen {
	gens := f.gens
	gens[f.i] = Fold(gens[f.i], t, ctx, ev)
	return &flipFlop{gens: gens, i: f.i}
}

// processLimit stops once n distinct processes have been used.
type processLimit struct {
	n    int
	seen map[model.Process]bool
	g    Gen
}

// ProcessLimit emits from g while at most n distinct processes are
// involved; an emission that would require an (n+1)th process exhausts the
// generator. Useful for bounding how many crashes a schedule tolerates.
func ProcessLimit(n int, g Gen) Gen {
	return &processLimit{n: n, g: g}
}

func (l *processLimit) Next(t *model.Test, ctx Ctx) Outcome {
	o := Next(l.g, t, ctx)
	switch o.Status {
	case Ready:
		seen := l.seen
		if !seen[o.Op.Process] {
			if len(seen) >= l.n {
				return exhausted()
			}
			seen = make(map[model.Process]bool, len(l.seen)+1)
			for p := range l.seen {
				seen[p] = true
			}
			seen[o.Op.Process] = true
		}
		return ready(o.Op, &processLimit{n: l.n, seen: seen, g: o.Gen})
	case Pending:
		return pend(&processLimit{n: l.n, seen: l.seen, g: o.Gen})
	default:
		return exhausted()
	}
}

func (l *processLimit) Fold(t *model.Test, ctx Ctx, ev model.Op) Gen {
	return &processLimit{n: l.n, seen: l.seen, g: Fold(l.g, t, ctx, ev)}
}

// FMap remaps function tags on emitted operations: an op whose F appears in
// m is rewritten to m[F], others pass through unchanged.
func FMap(m map[string]string, g Gen) Gen {
	return Map(func(op model.Op) model.Op {
		if f, ok := m[op.F]; ok {
			op.F = f
		}
		return op
	}, g)
}
