package gen

import "github.com/me/gauntlet/pkg/model"

// eachSlot gives every slot its own independent copy of a prototype.
type eachSlot struct {
	proto Gen
	gens  map[model.Slot]Gen
	done  map[model.Slot]bool
}

// EachSlot lazily instantiates one independent copy of proto the first time
// a slot is seen, letting every slot progress through the schedule at its
// own pace. Each copy only ever sees a context restricted to its slot.
func EachSlot(proto Gen) Gen {
	return &eachSlot{proto: proto}
}

func (e *eachSlot) gen(s model.Slot) Gen {
	if g, ok := e.gens[s]; ok {
		return g
	}
	return e.proto
}

// with returns a copy of e with slot s's generator replaced.
func (e *eachSlot) with(s model.Slot, g Gen) *eachSlot {
	gens := make(map[model.Slot]Gen, len(e.gens)+1)
	for k, v := range e.gens {
		gens[k] = v
	}
	gens[s] = g
	done := e.done
	if g == nil {
		done = make(map[model.Slot]bool, len(e.done)+1)
		for k := range e.done {
			done[k] = true
		}
		done[s] = true
	}
	return &eachSlot{proto: e.proto, gens: gens, done: done}
}

func only(s model.Slot) func(model.Slot) bool {
	return func(x model.Slot) bool { return x == s }
}

func (e *eachSlot) Next(t *model.Test, ctx Ctx) Outcome {
	cur := e
	best := exhausted()
	var bestSlot model.Slot
	found := false
	for _, s := range ctx.FreeSlots() {
		if cur.done[s] {
			continue
		}
		o := Next(cur.gen(s), t, ctx.Restrict(only(s)))
		if o.Status == Exhausted {
			cur = cur.with(s, nil)
			continue
		}
		if !found || soonestWins(best, o) {
			best = o
			bestSlot = s
			found = true
		}
	}
	if best.Status == Ready {
		return ready(best.Op, cur.with(bestSlot, best.Gen))
	}
	if len(cur.done) >= len(ctx.AllSlots()) {
		return exhausted()
	}
	// Busy slots, or slots whose copy found nothing yet, may still yield
	// work later.
	return pend(cur)
}

func (e *eachSlot) Fold(t *model.Test, ctx Ctx, ev model.Op) Gen {
	s, ok := ctx.SlotOf(ev.Process)
	if !ok || e.done[s] {
		return e
	}
	g := Fold(e.gen(s), t, ctx.Restrict(only(s)), ev)
	return e.with(s, g)
}

// Band assigns a count of worker slots to a sub-generator.
type Band struct {
	Slots int
	Gen   Gen
}

// reserve statically partitions slots into disjoint ranges.
type reserve struct {
	bands []Band
	def   Gen
}

// Reserve carves the worker slots into consecutive disjoint bands, one per
// entry, handing each band's generator a context restricted to its own
// slots. Remaining worker slots and the nemesis slot belong to def.
func Reserve(bands []Band, def Gen) Gen {
	return &reserve{bands: bands, def: def}
}

// bandPred returns the slot predicate for band i, or the default range when
// i == len(bands).
func (r *reserve) bandPred(i int) func(model.Slot) bool {
	lo := 0
	for _, b := range r.bands[:i] {
		lo += b.Slots
	}
	if i == len(r.bands) {
		start := lo
		return func(s model.Slot) bool {
			return s == model.NemesisSlot || int(s) >= start
		}
	}
	hi := lo + r.bands[i].Slots
	return func(s model.Slot) bool {
		return s != model.NemesisSlot && int(s) >= lo && int(s) < hi
	}
}

// owner returns the band index owning slot s (len(bands) for the default).
func (r *reserve) owner(s model.Slot) int {
	for i := range r.bands {
		if r.bandPred(i)(s) {
			return i
		}
	}
	return len(r.bands)
}

func (r *reserve) gen(i int) Gen {
	if i == len(r.bands) {
		return r.def
	}
	return r.bands[i].Gen
}

// with returns a copy of r with band i's generator replaced.
func (r *reserve) with(i int, g Gen) *reserve {
	if i == len(r.bands) {
		return &reserve{bands: r.bands, def: g}
	}
	bands := make([]Band, len(r.bands))
	copy(bands, r.bands)
	bands[i].Gen = g
	return &reserve{bands: bands, def: r.def}
}

func (r *reserve) Next(t *model.Test, ctx Ctx) Outcome {
	best := exhausted()
	bestIdx := -1
	for i := 0; i <= len(r.bands); i++ {
		o := Next(r.gen(i), t, ctx.Restrict(r.bandPred(i)))
		if bestIdx < 0 || soonestWins(best, o) {
			best = o
			bestIdx = i
		}
	}
	switch best.Status {
	case Ready:
		return ready(best.Op, r.with(bestIdx, best.Gen))
	case Pending:
		return pend(r)
	default:
		return exhausted()
	}
}

func (r *reserve) Fold(t *model.Test, ctx Ctx, ev model.Op) Gen {
	s, ok := ctx.SlotOf(ev.Process)
	if !ok {
		return r
	}
	i := r.owner(s)
	g := Fold(r.gen(i), t, ctx.Restrict(r.bandPred(i)), ev)
	return r.with(i, g)
}

// route restricts a child to the slots satisfying a predicate.
type route struct {
	pred func(model.Slot) bool
	g    Gen
}

// Route hands g a context restricted to the slots satisfying pred, and only
// folds events originating from those slots.
func Route(pred func(model.Slot) bool, g Gen) Gen {
	return &route{pred: pred, g: g}
}

func (r *route) Next(t *model.Test, ctx Ctx) Outcome {
	o := Next(r.g, t, ctx.Restrict(r.pred))
	switch o.Status {
	case Ready:
		return ready(o.Op, &route{pred: r.pred, g: o.Gen})
	case Pending:
		return pend(&route{pred: r.pred, g: o.Gen})
	default:
		return exhausted()
	}
}

func (r *route) Fold(t *model.Test, ctx Ctx, ev model.Op) Gen {
	s, ok := ctx.SlotOf(ev.Process)
	if !ok || !r.pred(s) {
		return r
	}
	return &route{pred: r.pred, g: Fold(r.g, t, ctx.Restrict(r.pred), ev)}
}

// Clients restricts g to the ordinary worker slots.
func Clients(g Gen) Gen {
	return Route(func(s model.Slot) bool { return s != model.NemesisSlot }, g)
}

// Nemesis restricts g to the fault-injection slot.
func Nemesis(g Gen) Gen {
	return Route(func(s model.Slot) bool { return s == model.NemesisSlot }, g)
}
