// Package runner drives a generator against a fleet of worker goroutines
// and records the resulting history.
//
// One goroutine per scheduling slot executes operations through the test's
// client; a coordinator goroutine owns the generator, the scheduling
// context, and the journal. Workers never touch shared state: they receive
// operations over per-slot channels and report completions over a single
// shared channel.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/me/gauntlet/internal/client"
	"github.com/me/gauntlet/internal/gen"
	"github.com/me/gauntlet/internal/logging"
	"github.com/me/gauntlet/internal/store"
	"github.com/me/gauntlet/pkg/model"
)

// DefaultPoll is how long the coordinator naps when the generator is
// pending and no completions have arrived.
const DefaultPoll = 10 * time.Millisecond

// Options configures a single run.
type Options struct {
	Test    *model.Test
	Gen     gen.Gen
	Client  client.Client // client for worker slots
	Nemesis client.Client // client for the nemesis slot
	Journal store.Journal
	Logger  *slog.Logger
	Poll    time.Duration
}

// Run executes the generator to exhaustion and returns the complete
// history in journal order. When a journal is configured the returned
// history is re-read from it after close, so callers see exactly what was
// stored. It blocks until every dispatched operation has completed;
// cancelling ctx interrupts in-flight operations and returns early with
// the history recorded so far.
func Run(ctx context.Context, opts Options) (model.History, error) {
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.Poll <= 0 {
		opts.Poll = DefaultPoll
	}
	if opts.Nemesis == nil {
		opts.Nemesis = client.NoopNemesis{}
	}
	t := opts.Test

	wctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	defer func() {
		cancel()
		wg.Wait()
	}()

	out := make(chan completion, t.Workers+1)
	workers := make(map[model.Slot]*worker, t.Workers+1)
	for i := 0; i < t.Workers; i++ {
		workers[model.Slot(i)] = newWorker(model.Slot(i), opts.Client, out, opts.Logger)
	}
	workers[model.NemesisSlot] = newWorker(model.NemesisSlot, opts.Nemesis, out, opts.Logger)
	for _, w := range workers {
		wg.Add(1)
		go func(w *worker) {
			defer wg.Done()
			w.run(wctx, t)
		}(w)
	}

	start := time.Now()
	now := func() int64 { return int64(time.Since(start)) }

	gctx := gen.NewCtx(t.Workers)
	g := opts.Gen
	opts.Gen = nil // the coordinator owns the only live reference now
	nextIndex := 0
	outstanding := 0
	var history model.History

	journalOp := func(op model.Op) (model.Op, error) {
		if op.Control() {
			return op, nil
		}
		op.Index = nextIndex
		nextIndex++
		if opts.Journal != nil {
			if err := opts.Journal.Append(ctx, op); err != nil {
				return op, fmt.Errorf("journal append: %w", err)
			}
		}
		history = append(history, op)
		return op, nil
	}

	// complete folds one finished operation back into the scheduling state.
	// The slot is freed before the fold so generators still see the old
	// process mapping, then crashed worker processes are retired.
	complete := func(c completion) error {
		op := c.op
		op.Time = now()
		op, err := journalOp(op)
		if err != nil {
			return err
		}
		gctx = gctx.Free(op.Time, c.slot)
		g = gen.Fold(g, t, gctx, op)
		if op.Type == model.OpInfo && c.slot != model.NemesisSlot && !op.Control() {
			gctx = gctx.Retire(c.slot)
		}
		outstanding--
		return nil
	}

loop:
	for {
		// Drain completions before asking for more work.
	drain:
		for {
			select {
			case c := <-out:
				if err := complete(c); err != nil {
					return history, err
				}
			default:
				break drain
			}
		}

		gctx = gctx.WithTime(now())
		o := gen.Next(g, t, gctx)

		switch o.Status {
		case gen.Exhausted:
			if outstanding == 0 {
				break loop
			}
			select {
			case c := <-out:
				if err := complete(c); err != nil {
					return history, err
				}
			case <-ctx.Done():
				return history, ctx.Err()
			}

		case gen.Pending:
			g = o.Gen
			select {
			case c := <-out:
				if err := complete(c); err != nil {
					return history, err
				}
			case <-time.After(opts.Poll):
			case <-ctx.Done():
				return history, ctx.Err()
			}

		case gen.Ready:
			op := o.Op
			if wait := op.Time - now(); wait > 0 {
				// Too early. Wait out half the gap and ask again; the
				// successor is discarded so the op is not consumed.
				select {
				case c := <-out:
					if err := complete(c); err != nil {
						return history, err
					}
				case <-time.After(time.Duration(wait/2) + time.Nanosecond):
				case <-ctx.Done():
					return history, ctx.Err()
				}
				continue
			}

			op.Time = now()
			slot, ok := gctx.SlotOf(op.Process)
			if !ok {
				return history, fmt.Errorf("generator emitted op for unknown process %d", op.Process)
			}
			op, err := journalOp(op)
			if err != nil {
				return history, err
			}
			gctx = gctx.Busy(op.Time, slot)
			g = gen.Fold(o.Gen, t, gctx, op)
			workers[slot].in <- op
			outstanding++
		}
	}

	cancel()
	wg.Wait()
	if opts.Journal != nil {
		if err := opts.Journal.Close(ctx); err != nil {
			return history, fmt.Errorf("journal close: %w", err)
		}
		// Re-read the journal so the caller gets the stored history, not
		// the coordinator's working copy.
		stored, err := opts.Journal.History(ctx)
		if err != nil {
			return history, fmt.Errorf("journal history: %w", err)
		}
		return stored, nil
	}
	return history, nil
}
