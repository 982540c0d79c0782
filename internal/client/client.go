// Package client defines the executor protocol the runner dispatches
// operations through, plus the built-in executors: a noop echo, a redis
// register client, and fault-injection (nemesis) executors.
package client

import (
	"context"

	"github.com/me/gauntlet/pkg/model"
)

// Client opens handles against the system under test. One handle serves
// one process: the runner re-opens a worker slot's handle whenever the
// occupying process changes, and keeps a single nemesis handle for the
// whole run.
type Client interface {
	Open(ctx context.Context, t *model.Test, slot model.Slot) (Handle, error)
}

// Handle performs operations. Invoke is synchronous: the returned op must
// carry the same process and function tag as the input, with Type ok, fail,
// or info. An error return means the operation's outcome is unknown and is
// surfaced as an info completion. Invoke must tolerate context cancellation
// during abnormal shutdown.
type Handle interface {
	Invoke(ctx context.Context, t *model.Test, op model.Op) (model.Op, error)
	Close(ctx context.Context, t *model.Test) error
}
