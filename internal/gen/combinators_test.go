package gen

import (
	"testing"

	"github.com/me/gauntlet/pkg/model"
)

func TestMap(t *testing.T) {
	tst := newTest(1)
	ctx := NewCtx(1)

	g := Map(func(op model.Op) model.Op {
		op.F = "renamed"
		return op
	}, Once(model.Op{F: "orig"}))

	op, next := pull(t, g, tst, ctx)
	if op.F != "renamed" {
		t.Errorf("f = %q, want renamed", op.F)
	}
	if o := Next(next, tst, ctx); o.Status != Exhausted {
		t.Errorf("after single emission = %v, want exhausted", o.Status)
	}
}

func TestFilter(t *testing.T) {
	tst := newTest(1)
	ctx := NewCtx(1)

	n := 0
	g := Filter(func(op model.Op) bool {
		v, _ := op.Value.(int)
		return v%2 == 0
	}, Limit(6, Each(func() model.Op {
		n++
		return model.Op{F: "x", Value: n}
	})))

	var got []int
	for {
		o := Next(g, tst, ctx)
		if o.Status != Ready {
			break
		}
		got = append(got, o.Op.Value.(int))
		g = o.Gen
	}
	want := []int{2, 4, 6}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("emission %d = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestLimit(t *testing.T) {
	tst := newTest(1)
	ctx := NewCtx(1)

	g := Limit(3, Each(func() model.Op { return model.Op{F: "read"} }))
	for i := 0; i < 3; i++ {
		_, g = pull(t, g, tst, ctx)
	}
	if o := Next(g, tst, ctx); o.Status != Exhausted {
		t.Errorf("fourth Next = %v, want exhausted", o.Status)
	}
}

func TestLimitZero(t *testing.T) {
	tst := newTest(1)
	ctx := NewCtx(1)

	g := Limit(0, Each(func() model.Op { return model.Op{F: "read"} }))
	if o := Next(g, tst, ctx); o.Status != Exhausted {
		t.Errorf("Limit(0) = %v, want exhausted", o.Status)
	}
}

func TestLimitPassesPendingWithoutCounting(t *testing.T) {
	tst := newTest(1)
	busy := NewCtx(1).Busy(0, 0).Busy(0, model.NemesisSlot)

	g := Limit(1, Each(func() model.Op { return model.Op{F: "read"} }))
	o := Next(g, tst, busy)
	if o.Status != Pending {
		t.Fatalf("Next on busy ctx = %v, want pending", o.Status)
	}
	// The pending round must not consume the budget.
	if _, next := pull(t, o.Gen, tst, NewCtx(1)); next == nil {
		t.Fatal("expected a successor")
	}
}
