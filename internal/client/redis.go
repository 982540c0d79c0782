package client

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/me/gauntlet/pkg/model"
)

// casScript compares-and-sets a single key atomically.
const casScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  redis.call("SET", KEYS[1], ARGV[2])
  return 1
end
return 0`

// Redis is a register-workload client over a single redis key. It handles
// f tags read, write, and cas (value [old, new]).
type Redis struct {
	Addr string
	Key  string
}

func (c *Redis) Open(ctx context.Context, t *model.Test, slot model.Slot) (Handle, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        c.Addr,
		DialTimeout: time.Second,
		ReadTimeout: time.Second,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping %s: %w", c.Addr, err)
	}
	return &redisHandle{rdb: rdb, key: c.Key}, nil
}

type redisHandle struct {
	rdb *redis.Client
	key string
}

func (h *redisHandle) Invoke(ctx context.Context, t *model.Test, op model.Op) (model.Op, error) {
	switch op.F {
	case "read":
		v, err := h.rdb.Get(ctx, h.key).Result()
		if err == redis.Nil {
			op.Type = model.OpOK
			op.Value = nil
			return op, nil
		}
		if err != nil {
			// Reads are idempotent, so a failed read is a certain failure.
			op.Type = model.OpFail
			op.Error = err.Error()
			return op, nil
		}
		op.Type = model.OpOK
		op.Value = v
		return op, nil

	case "write":
		if err := h.rdb.Set(ctx, h.key, fmt.Sprint(op.Value), 0).Err(); err != nil {
			return op, fmt.Errorf("set %s: %w", h.key, err)
		}
		op.Type = model.OpOK
		return op, nil

	case "cas":
		expected, desired, err := casArgs(op.Value)
		if err != nil {
			op.Type = model.OpFail
			op.Error = err.Error()
			return op, nil
		}
		n, err := h.rdb.Eval(ctx, casScript, []string{h.key}, expected, desired).Int()
		if err != nil {
			return op, fmt.Errorf("cas %s: %w", h.key, err)
		}
		if n == 0 {
			op.Type = model.OpFail
			return op, nil
		}
		op.Type = model.OpOK
		return op, nil

	default:
		op.Type = model.OpFail
		op.Error = fmt.Sprintf("unknown function %q", op.F)
		return op, nil
	}
}

func (h *redisHandle) Close(ctx context.Context, t *model.Test) error {
	return h.rdb.Close()
}

// casArgs extracts the [old, new] pair from a cas op's value. The pair
// arrives as []any after a journal round-trip, so both forms are accepted.
func casArgs(v any) (string, string, error) {
	switch pair := v.(type) {
	case []any:
		if len(pair) == 2 {
			return fmt.Sprint(pair[0]), fmt.Sprint(pair[1]), nil
		}
	case []int:
		if len(pair) == 2 {
			return fmt.Sprint(pair[0]), fmt.Sprint(pair[1]), nil
		}
	case []string:
		if len(pair) == 2 {
			return pair[0], pair[1], nil
		}
	}
	return "", "", fmt.Errorf("cas value %v is not an [old, new] pair", v)
}
