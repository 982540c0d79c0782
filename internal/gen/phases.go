package gen

import "github.com/me/gauntlet/pkg/model"

// synchronize holds a child back until every slot is simultaneously free.
type synchronize struct {
	g Gen
}

// Synchronize delays g until all slots in the context are free at once.
// The barrier is checked until the first delegation succeeds; after that
// the child runs unwrapped.
func Synchronize(g Gen) Gen {
	return &synchronize{g: g}
}

func (s *synchronize) Next(t *model.Test, ctx Ctx) Outcome {
	if !ctx.AllFree() {
		return pend(s)
	}
	return Next(s.g, t, ctx)
}

func (s *synchronize) Fold(t *model.Test, ctx Ctx, ev model.Op) Gen {
	return &synchronize{g: Fold(s.g, t, ctx, ev)}
}

// Phases runs each generator to exhaustion before starting the next, with
// a synchronization barrier between phases: a phase may not begin until
// every slot is simultaneously free, not merely once the previous phase
// stops emitting.
func Phases(gens ...Gen) Gen {
	wrapped := make([]Gen, len(gens))
	for i, g := range gens {
		wrapped[i] = Synchronize(g)
	}
	return Seq(wrapped...)
}
