package client

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/me/gauntlet/pkg/model"
)

// NoopNemesis is a fault-injection executor that injects nothing. Its
// completions are info ops, like any nemesis.
type NoopNemesis struct{}

func (NoopNemesis) Open(ctx context.Context, t *model.Test, slot model.Slot) (Handle, error) {
	return noopNemesisHandle{}, nil
}

type noopNemesisHandle struct{}

func (noopNemesisHandle) Invoke(ctx context.Context, t *model.Test, op model.Op) (model.Op, error) {
	op.Type = model.OpInfo
	return op, nil
}

func (noopNemesisHandle) Close(ctx context.Context, t *model.Test) error { return nil }

// PauseNemesis freezes the target redis server's clients for a fixed window
// on f=start (CLIENT PAUSE) and lifts it on f=stop (CLIENT UNPAUSE),
// simulating a stalled node without killing it.
type PauseNemesis struct {
	Addr   string
	Pause  time.Duration
	Logger *slog.Logger
}

func (n *PauseNemesis) Open(ctx context.Context, t *model.Test, slot model.Slot) (Handle, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        n.Addr,
		DialTimeout: time.Second,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping %s: %w", n.Addr, err)
	}
	return &pauseHandle{rdb: rdb, pause: n.Pause, logger: n.Logger.With("component", "nemesis")}, nil
}

type pauseHandle struct {
	rdb    *redis.Client
	pause  time.Duration
	logger *slog.Logger
}

func (h *pauseHandle) Invoke(ctx context.Context, t *model.Test, op model.Op) (model.Op, error) {
	switch op.F {
	case "start":
		h.logger.Info("pausing clients", "duration", h.pause)
		if err := h.rdb.Do(ctx, "CLIENT", "PAUSE", h.pause.Milliseconds()).Err(); err != nil {
			return op, fmt.Errorf("client pause: %w", err)
		}
	case "stop":
		h.logger.Info("unpausing clients")
		if err := h.rdb.Do(ctx, "CLIENT", "UNPAUSE").Err(); err != nil {
			return op, fmt.Errorf("client unpause: %w", err)
		}
	default:
		return op, fmt.Errorf("unknown nemesis function %q", op.F)
	}
	op.Type = model.OpInfo
	return op, nil
}

func (h *pauseHandle) Close(ctx context.Context, t *model.Test) error {
	return h.rdb.Close()
}
