package client

import (
	"context"

	"github.com/me/gauntlet/pkg/model"
)

// Noop is a Client whose operations all succeed instantly, echoing their
// value back. Used by the noop workload and as a stand-in in tests.
type Noop struct{}

func (Noop) Open(ctx context.Context, t *model.Test, slot model.Slot) (Handle, error) {
	return noopHandle{}, nil
}

type noopHandle struct{}

func (noopHandle) Invoke(ctx context.Context, t *model.Test, op model.Op) (model.Op, error) {
	op.Type = model.OpOK
	return op, nil
}

func (noopHandle) Close(ctx context.Context, t *model.Test) error { return nil }
