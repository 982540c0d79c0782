package gen

import (
	"time"

	"github.com/me/gauntlet/pkg/model"
)

// timeLimit refuses operations past a lazily anchored cutoff.
type timeLimit struct {
	dt       int64
	deadline int64 // 0 until anchored by the first emission
	g        Gen
}

// TimeLimit emits from g until dt has elapsed. The cutoff is anchored at
// the time of the first emitted operation; once a candidate operation's
// time reaches it, the generator is exhausted forever.
func TimeLimit(dt time.Duration, g Gen) Gen {
	return &timeLimit{dt: dt.Nanoseconds(), g: g}
}

func (l *timeLimit) Next(t *model.Test, ctx Ctx) Outcome {
	o := Next(l.g, t, ctx)
	switch o.Status {
	case Ready:
		deadline := l.deadline
		if deadline == 0 {
			deadline = o.Op.Time + l.dt
		}
		if o.Op.Time >= deadline {
			return exhausted()
		}
		return ready(o.Op, &timeLimit{dt: l.dt, deadline: deadline, g: o.Gen})
	case Pending:
		return pend(&timeLimit{dt: l.dt, deadline: l.deadline, g: o.Gen})
	default:
		return exhausted()
	}
}

func (l *timeLimit) Fold(t *model.Test, ctx Ctx, ev model.Op) Gen {
	return &timeLimit{dt: l.dt, deadline: l.deadline, g: Fold(l.g, t, ctx, ev)}
}

// stagger spaces emissions by independent uniform draws.
type stagger struct {
	dt   int64
	next int64 // 0 until anchored at the first emission
	g    Gen
}

// Stagger spreads g's emissions over time with a mean interval of dt: each
// emission is scheduled an independent Uniform(0, 2dt) draw after the
// previous schedule point. Operations already later than their scheduled
// point keep their own time; an operation ahead of schedule is pushed
// forward, never pulled earlier.
func Stagger(dt time.Duration, g Gen) Gen {
	if dt <= 0 {
		return g
	}
	return &stagger{dt: dt.Nanoseconds(), g: g}
}

func (s *stagger) Next(t *model.Test, ctx Ctx) Outcome {
	o := Next(s.g, t, ctx)
	switch o.Status {
	case Ready:
		next := s.next
		if next == 0 {
			next = ctx.Time
		}
		op := o.Op
		if op.Time < next {
			op.Time = next
		}
		draw := t.Rand.Int63n(2 * s.dt)
		return ready(op, &stagger{dt: s.dt, next: next + draw, g: o.Gen})
	case Pending:
		return pend(&stagger{dt: s.dt, next: s.next, g: o.Gen})
	default:
		return exhausted()
	}
}

func (s *stagger) Fold(t *model.Test, ctx Ctx, ev model.Op) Gen {
	return &stagger{dt: s.dt, next: s.next, g: Fold(s.g, t, ctx, ev)}
}

// grid snaps emission times onto a fixed grid.
type grid struct {
	dt       int64
	anchor   int64
	anchored bool
	g        Gen
}

// Grid delays every operation from g to the next multiple of dt past an
// anchor fixed at the first emission. Unlike Stagger this is a fixed grid,
// not independent jitter: simultaneous candidates land on the same point.
func Grid(dt time.Duration, g Gen) Gen {
	if dt <= 0 {
		return g
	}
	return &grid{dt: dt.Nanoseconds(), g: g}
}

func (d *grid) Next(t *model.Test, ctx Ctx) Outcome {
	o := Next(d.g, t, ctx)
	switch o.Status {
	case Ready:
		anchor := d.anchor
		if !d.anchored {
			anchor = ctx.Time
		}
		op := o.Op
		cand := op.Time
		if cand < anchor {
			cand = anchor
		}
		if rem := (cand - anchor) % d.dt; rem != 0 {
			cand += d.dt - rem
		}
		op.Time = cand
		return ready(op, &grid{dt: d.dt, anchor: anchor, anchored: true, g: o.Gen})
	case Pending:
		return pend(&grid{dt: d.dt, anchor: d.anchor, anchored: d.anchored, g: o.Gen})
	default:
		return exhausted()
	}
}

func (d *grid) Fold(t *model.Test, ctx Ctx, ev model.Op) Gen {
	return &grid{dt: d.dt, anchor: d.anchor, anchored: d.anchored, g: Fold(d.g, t, ctx, ev)}
}
