package gen

import (
	"testing"

	"github.com/me/gauntlet/pkg/model"
)

func TestFlipFlopAlternates(t *testing.T) {
	tst := newTest(1)
	ctx := NewCtx(1)

	g := FlipFlop(
		Limit(2, Each(func() model.Op { return model.Op{F: "start"} })),
		Each(func() model.Op { return model.Op{F: "stop"} }),
	)

	var got []string
	for {
		o := Next(g, tst, ctx)
		if o.Status == Exhausted {
			break
		}
		if o.Status != Ready {
			t.Fatalf("unexpected status %v", o.Status)
		}
		got = append(got, o.Op.F)
		g = o.Gen
	}
	want := []string{"start", "stop", "start", "stop"}
	if len(got) != len(want) {
		t.Fatalf("emitted %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("emission %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestProcessLimit(t *testing.T) {
	tst := newTest(1)
	ctx := NewCtx(1)

	g := ProcessLimit(1, Clients(reads()))

	// Process 0 may emit freely.
	_, g = pull(t, g, tst, ctx)
	_, g = pull(t, g, tst, ctx)

	// After a crash the slot carries a fresh process; a second distinct
	// process exceeds the budget.
	crashed := ctx.Retire(0)
	if o := Next(g, tst, crashed); o.Status != Exhausted {
		t.Errorf("Next after retirement = %v, want exhausted", o.Status)
	}
}

func TestFMap(t *testing.T) {
	tst := newTest(1)
	ctx := NewCtx(1)

	g := FMap(map[string]string{"read": "get"}, Seq(
		Once(model.Op{F: "read"}),
		Once(model.Op{F: "write"}),
	))

	op, g := pull(t, g, tst, ctx)
	if op.F != "get" {
		t.Errorf("first emission = %q, want get", op.F)
	}
	op, _ = pull(t, g, tst, ctx)
	if op.F != "write" {
		t.Errorf("second emission = %q, want write (not remapped)", op.F)
	}
}
