// Package gen implements the pure, compositional scheduling core: immutable
// Context snapshots and a combinator algebra of Generators that decide which
// operation runs next, on which slot, and when.
//
// Generators are immutable values. Next never mutates its receiver; it
// returns the emitted operation together with a successor generator, and the
// coordinator threads these values through its loop by substitution.
package gen

import (
	"github.com/me/gauntlet/pkg/model"
)

// Status is the resolution of a Next call.
type Status int

const (
	// Ready means a concrete operation is available at or before ctx.Time.
	Ready Status = iota
	// Pending means resolution is uncertain: the generator may yield work
	// once time advances or another actor completes.
	Pending
	// Exhausted means the generator is done forever.
	Exhausted
)

func (s Status) String() string {
	switch s {
	case Ready:
		return "ready"
	case Pending:
		return "pending"
	default:
		return "exhausted"
	}
}

// Outcome is the result of asking a generator for its next operation. Op is
// meaningful only when Status is Ready. Gen is the successor value; it is
// nil once a generator is exhausted, and a nil Gen stays exhausted forever.
type Outcome struct {
	Status Status
	Op     model.Op
	Gen    Gen
}

// Gen is a pure scheduling value: a description of a schedule of operations
// over time and slot availability.
type Gen interface {
	// Next yields the generator's next operation given the context, or
	// Pending/Exhausted, plus the successor generator.
	Next(t *model.Test, ctx Ctx) Outcome

	// Fold incorporates an invoke or completion event, returning the
	// updated generator.
	Fold(t *model.Test, ctx Ctx, ev model.Op) Gen
}

// Next asks g for its next operation, treating nil as exhausted.
func Next(g Gen, t *model.Test, ctx Ctx) Outcome {
	if g == nil {
		return Outcome{Status: Exhausted}
	}
	return g.Next(t, ctx)
}

// Fold folds ev into g, treating nil as exhausted.
func Fold(g Gen, t *model.Test, ctx Ctx, ev model.Op) Gen {
	if g == nil {
		return nil
	}
	return g.Fold(t, ctx, ev)
}

func ready(op model.Op, g Gen) Outcome {
	return Outcome{Status: Ready, Op: op, Gen: g}
}

func pend(g Gen) Outcome {
	return Outcome{Status: Pending, Gen: g}
}

func exhausted() Outcome {
	return Outcome{Status: Exhausted}
}

// soonestWins reports whether b strictly beats a under the merge order
// concrete-op < Pending < Exhausted, with ready outcomes compared by
// operation time. Ties lose; callers scan children in order, which makes
// merges deterministic.
func soonestWins(a, b Outcome) bool {
	if b.Status < a.Status {
		return true
	}
	return a.Status == Ready && b.Status == Ready && b.Op.Time < a.Op.Time
}

// fill completes a leaf emission: the op takes the current context time when
// it carries none, targets the first free slot's process, and defaults to an
// invocation. Reports false when the context has no free slot.
func fill(op model.Op, ctx Ctx) (model.Op, bool) {
	p, ok := ctx.FirstFreeProcess()
	if !ok {
		return op, false
	}
	op.Process = p
	if op.Time == 0 {
		op.Time = ctx.Time
	}
	if op.Type == "" {
		op.Type = model.OpInvoke
	}
	op.Index = -1
	return op, true
}

// once emits a single operation, then exhausts.
type once struct {
	op model.Op
}

// Once yields op exactly once, on the first free slot it sees.
func Once(op model.Op) Gen {
	return &once{op: op}
}

func (g *once) Next(t *model.Test, ctx Ctx) Outcome {
	op, ok := fill(g.op, ctx)
	if !ok {
		return pend(g)
	}
	return ready(op, nil)
}

func (g *once) Fold(t *model.Test, ctx Ctx, ev model.Op) Gen { return g }

// each calls a function for every emission, forever.
type each struct {
	f func() model.Op
}

// Each yields f() per emission, forever.
func Each(f func() model.Op) Gen {
	return &each{f: f}
}

func (g *each) Next(t *model.Test, ctx Ctx) Outcome {
	op, ok := fill(g.f(), ctx)
	if !ok {
		return pend(g)
	}
	return ready(op, g)
}

func (g *each) Fold(t *model.Test, ctx Ctx, ev model.Op) Gen { return g }

// seq runs each child to exhaustion before starting the next.
type seq struct {
	gens []Gen
}

// Seq runs gens in order, moving to the next as each exhausts.
func Seq(gens ...Gen) Gen {
	if len(gens) == 0 {
		return nil
	}
	return &seq{gens: gens}
}

func (g *seq) Next(t *model.Test, ctx Ctx) Outcome {
	rest := g.gens
	for len(rest) > 0 {
		o := Next(rest[0], t, ctx)
		switch o.Status {
		case Ready:
			gens := make([]Gen, len(rest))
			copy(gens, rest)
			gens[0] = o.Gen
			return ready(o.Op, &seq{gens: gens})
		case Pending:
			return pend(&seq{gens: rest})
		default:
			rest = rest[1:]
		}
	}
	return exhausted()
}

func (g *seq) Fold(t *model.Test, ctx Ctx, ev model.Op) Gen {
	if len(g.gens) == 0 {
		return nil
	}
	gens := make([]Gen, len(g.gens))
	copy(gens, g.gens)
	gens[0] = Fold(gens[0], t, ctx, ev)
	return &seq{gens: gens}
}
