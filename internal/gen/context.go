package gen

import (
	"sort"

	"github.com/me/gauntlet/pkg/model"
)

// Ctx is an immutable snapshot of scheduling state: the current relative
// time in nanoseconds, the set of idle slots, and the process occupying
// each slot. Every mutating method returns a fresh value; the maps inside
// are never written after construction, so copies may share them.
//
// The reverse process→slot lookup is a linear scan, which is fine at the
// scale of tens of slots.
type Ctx struct {
	// Time is nanoseconds since run start.
	Time int64

	procs map[model.Slot]model.Process
	free  map[model.Slot]bool
	next  model.Process
}

// NewCtx creates a context with the given number of ordinary worker slots
// plus the nemesis slot. Worker slot i starts occupied by process i; all
// slots start free.
func NewCtx(workers int) Ctx {
	procs := make(map[model.Slot]model.Process, workers+1)
	free := make(map[model.Slot]bool, workers+1)
	for i := 0; i < workers; i++ {
		s := model.Slot(i)
		procs[s] = model.Process(i)
		free[s] = true
	}
	procs[model.NemesisSlot] = model.NemesisProcess
	free[model.NemesisSlot] = true
	return Ctx{procs: procs, free: free, next: model.Process(workers)}
}

// sortSlots orders worker slots ascending with the nemesis slot last.
func sortSlots(slots []model.Slot) {
	sort.Slice(slots, func(i, j int) bool {
		a, b := slots[i], slots[j]
		if a == model.NemesisSlot {
			return false
		}
		if b == model.NemesisSlot {
			return true
		}
		return a < b
	})
}

// AllSlots returns every slot in the context, workers first.
func (c Ctx) AllSlots() []model.Slot {
	slots := make([]model.Slot, 0, len(c.procs))
	for s := range c.procs {
		slots = append(slots, s)
	}
	sortSlots(slots)
	return slots
}

// FreeSlots returns the idle slots, workers first.
func (c Ctx) FreeSlots() []model.Slot {
	slots := make([]model.Slot, 0, len(c.free))
	for s := range c.free {
		slots = append(slots, s)
	}
	sortSlots(slots)
	return slots
}

// IsFree reports whether slot s is idle.
func (c Ctx) IsFree(s model.Slot) bool {
	return c.free[s]
}

// AllFree reports whether every slot in the context is idle.
func (c Ctx) AllFree() bool {
	return len(c.free) == len(c.procs)
}

// Process returns the process currently occupying slot s.
func (c Ctx) Process(s model.Slot) (model.Process, bool) {
	p, ok := c.procs[s]
	return p, ok
}

// SlotOf returns the slot occupied by process p.
func (c Ctx) SlotOf(p model.Process) (model.Slot, bool) {
	for s, sp := range c.procs {
		if sp == p {
			return s, true
		}
	}
	return 0, false
}

// FirstFreeProcess returns the process of the first idle slot, if any.
func (c Ctx) FirstFreeProcess() (model.Process, bool) {
	slots := c.FreeSlots()
	if len(slots) == 0 {
		return 0, false
	}
	return c.procs[slots[0]], true
}

// WithTime returns the context advanced to time t.
func (c Ctx) WithTime(t int64) Ctx {
	c.Time = t
	return c
}

// Busy advances time and marks slot s as occupied.
func (c Ctx) Busy(t int64, s model.Slot) Ctx {
	free := make(map[model.Slot]bool, len(c.free))
	for k := range c.free {
		if k != s {
			free[k] = true
		}
	}
	return Ctx{Time: t, procs: c.procs, free: free, next: c.next}
}

// Free advances time and returns slot s to the idle set. The slot keeps
// its current process; retiring is a separate step.
func (c Ctx) Free(t int64, s model.Slot) Ctx {
	free := make(map[model.Slot]bool, len(c.free)+1)
	for k := range c.free {
		free[k] = true
	}
	free[s] = true
	return Ctx{Time: t, procs: c.procs, free: free, next: c.next}
}

// Retire assigns slot s a fresh, never-reused process id. Called exactly
// when a worker slot's completion is an info (crash), so a restarted slot
// is not mistaken for a continuation of the old process.
func (c Ctx) Retire(s model.Slot) Ctx {
	procs := make(map[model.Slot]model.Process, len(c.procs))
	for k, v := range c.procs {
		procs[k] = v
	}
	procs[s] = c.next
	return Ctx{Time: c.Time, procs: procs, free: c.free, next: c.next + 1}
}

// Restrict returns a view of the context containing only the slots
// satisfying pred. Used by routing combinators to hand sub-generators a
// world that contains nothing but their own slots.
func (c Ctx) Restrict(pred func(model.Slot) bool) Ctx {
	procs := make(map[model.Slot]model.Process, len(c.procs))
	free := make(map[model.Slot]bool, len(c.free))
	for s, p := range c.procs {
		if pred(s) {
			procs[s] = p
		}
	}
	for s := range c.free {
		if pred(s) {
			free[s] = true
		}
	}
	return Ctx{Time: c.Time, procs: procs, free: free, next: c.next}
}
