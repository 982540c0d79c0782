package gen

import (
	"fmt"

	"github.com/me/gauntlet/pkg/model"
)

// validate checks the scheduler contract on every emission.
type validate struct {
	g Gen
}

// Validate wraps g with a contract check: every emitted operation must be
// dispatchable (an invocation or a control op) and must target a known,
// currently free slot. A violation indicates a scheduling defect that would
// corrupt the history's meaning, so it panics with a *model.ContractError
// rather than being tolerated.
func Validate(g Gen) Gen {
	return &validate{g: g}
}

func (v *validate) Next(t *model.Test, ctx Ctx) Outcome {
	o := Next(v.g, t, ctx)
	switch o.Status {
	case Ready:
		check(o.Op, ctx)
		return ready(o.Op, &validate{g: o.Gen})
	case Pending:
		return pend(&validate{g: o.Gen})
	default:
		return exhausted()
	}
}

func (v *validate) Fold(t *model.Test, ctx Ctx, ev model.Op) Gen {
	return &validate{g: Fold(v.g, t, ctx, ev)}
}

func check(op model.Op, ctx Ctx) {
	switch op.Type {
	case model.OpInvoke, model.OpSleep, model.OpLog:
	default:
		panic(&model.ContractError{Op: op, Reason: fmt.Sprintf("emitted type %q is not dispatchable", op.Type)})
	}
	slot, ok := ctx.SlotOf(op.Process)
	if !ok {
		panic(&model.ContractError{Op: op, Reason: fmt.Sprintf("process %d occupies no slot", op.Process)})
	}
	if !ctx.IsFree(slot) {
		panic(&model.ContractError{Op: op, Reason: fmt.Sprintf("slot %s is busy", slot)})
	}
}
