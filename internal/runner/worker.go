package runner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/me/gauntlet/internal/client"
	"github.com/me/gauntlet/pkg/model"
)

// completion carries a finished operation back to the coordinator.
type completion struct {
	slot model.Slot
	op   model.Op
}

// worker owns one scheduling slot: it receives one operation at a time on
// its single-slot inbound channel, executes it through the slot's client
// handle, and pushes the completion onto the shared outbound channel.
type worker struct {
	slot   model.Slot
	cl     client.Client
	in     chan model.Op
	out    chan<- completion
	logger *slog.Logger
}

func newWorker(slot model.Slot, cl client.Client, out chan<- completion, logger *slog.Logger) *worker {
	return &worker{
		slot:   slot,
		cl:     cl,
		in:     make(chan model.Op, 1),
		out:    out,
		logger: logger.With("slot", slot.String()),
	}
}

// run is the worker loop. It exits when ctx is cancelled. The current
// client handle is opened lazily and re-opened whenever the slot's process
// changes; the nemesis slot keeps one handle for the whole run.
func (w *worker) run(ctx context.Context, t *model.Test) {
	var h client.Handle
	var hproc model.Process
	defer func() {
		if h != nil {
			if err := h.Close(context.Background(), t); err != nil {
				w.logger.Warn("close handle", "error", err)
			}
		}
	}()

	for {
		var op model.Op
		select {
		case <-ctx.Done():
			return
		case op = <-w.in:
		}

		var res model.Op
		switch op.Type {
		case model.OpSleep:
			w.sleep(ctx, op)
			res = op
		case model.OpLog:
			w.logger.Info("op log", "message", fmt.Sprint(op.Value))
			res = op
		default:
			res = w.invoke(ctx, t, &h, &hproc, op)
		}

		select {
		case w.out <- completion{slot: w.slot, op: res}:
		case <-ctx.Done():
			return
		}
	}
}

// invoke runs one operation against the slot's handle. Executor errors are
// contained here: open failures are retried once and then surface as fail
// completions; invoke errors and panics become info completions. They never
// abort the run.
func (w *worker) invoke(ctx context.Context, t *model.Test, h *client.Handle, hproc *model.Process, op model.Op) model.Op {
	if *h == nil || *hproc != op.Process {
		if *h != nil {
			if err := (*h).Close(ctx, t); err != nil {
				w.logger.Warn("close handle", "error", err)
			}
			*h = nil
		}
		nh, err := w.cl.Open(ctx, t, w.slot)
		if err != nil {
			w.logger.Warn("open failed, retrying once", "error", err)
			nh, err = w.cl.Open(ctx, t, w.slot)
		}
		if err != nil {
			res := op
			res.Type = model.OpFail
			res.Error = fmt.Sprintf("open: %v", err)
			return res
		}
		*h = nh
		*hproc = op.Process
	}

	res, err := safeInvoke(ctx, *h, t, op)
	if err != nil {
		res = op
		res.Type = model.OpInfo
		res.Error = err.Error()
		return res
	}

	// Completions keep the invocation's process and function tag.
	res.Process = op.Process
	res.F = op.F
	res.Index = -1
	if !res.Completion() {
		res.Error = fmt.Sprintf("client returned non-completion type %q", res.Type)
		res.Type = model.OpInfo
	}
	return res
}

// safeInvoke shields the worker from panicking clients; a panic is an
// unknown outcome, same as an error.
func safeInvoke(ctx context.Context, h client.Handle, t *model.Test, op model.Op) (res model.Op, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("invoke panic: %v", r)
		}
	}()
	return h.Invoke(ctx, t, op)
}

// sleep pauses for the op's value in seconds, cut short by cancellation.
func (w *worker) sleep(ctx context.Context, op model.Op) {
	d := time.Duration(toSeconds(op.Value) * float64(time.Second))
	if d <= 0 {
		return
	}
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}

func toSeconds(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}
