package gen

import "github.com/me/gauntlet/pkg/model"

// mapGen transforms emitted operations.
type mapGen struct {
	f func(model.Op) model.Op
	g Gen
}

// Map applies f to every operation g emits. Pending and Exhausted pass
// through untouched.
func Map(f func(model.Op) model.Op, g Gen) Gen {
	return &mapGen{f: f, g: g}
}

func (m *mapGen) Next(t *model.Test, ctx Ctx) Outcome {
	o := Next(m.g, t, ctx)
	switch o.Status {
	case Ready:
		return ready(m.f(o.Op), &mapGen{f: m.f, g: o.Gen})
	case Pending:
		return pend(&mapGen{f: m.f, g: o.Gen})
	default:
		return exhausted()
	}
}

func (m *mapGen) Fold(t *model.Test, ctx Ctx, ev model.Op) Gen {
	return &mapGen{f: m.f, g: Fold(m.g, t, ctx, ev)}
}

// filter drops operations failing a predicate.
type filter struct {
	pred func(model.Op) bool
	g    Gen
}

// Filter drops operations for which pred is false, pulling from g until an
// acceptable operation, Pending, or Exhausted turns up.
func Filter(pred func(model.Op) bool, g Gen) Gen {
	return &filter{pred: pred, g: g}
}

func (f *filter) Next(t *model.Test, ctx Ctx) Outcome {
	g := f.g
	for {
		o := Next(g, t, ctx)
		switch o.Status {
		case Ready:
			if f.pred(o.Op) {
				return ready(o.Op, &filter{pred: f.pred, g: o.Gen})
			}
			g = o.Gen
		case Pending:
			return pend(&filter{pred: f.pred, g: o.Gen})
		default:
			return exhausted()
		}
	}
}

func (f *filter) Fold(t *model.Test, ctx Ctx, ev model.Op) Gen {
	return &filter{pred: f.pred, g: Fold(f.g, t, ctx, ev)}
}

// limit stops after n emissions.
type limit struct {
	n int
	g Gen
}

// Limit emits at most n operations from g.
func Limit(n int, g Gen) Gen {
	return &limit{n: n, g: g}
}

func (l *limit) Next(t *model.Test, ctx Ctx) Outcome {
	if l.n <= 0 {
		return exhausted()
	}
	o := Next(l.g, t, ctx)
	switch o.Status {
	case Ready:
		return ready(o.Op, &limit{n: l.n - 1, g: o.Gen})
	case Pending:
		return pend(&limit{n: l.n, g: o.Gen})
	default:
		return exhausted()
	}
}

func (l *limit) Fold(t *model.Test, ctx Ctx, ev model.Op) Gen {
	return &limit{n: l.n, g: Fold(l.g, t, ctx, ev)}
}
