package gen

import (
	"testing"
	"time"

	"github.com/me/gauntlet/pkg/model"
)

func reads() Gen {
	return Each(func() model.Op { return model.Op{F: "read"} })
}

func TestStaggerSpacing(t *testing.T) {
	tst := newTest(1)
	ctx := NewCtx(1)

	const n = 200
	mean := time.Second
	g := Stagger(mean, reads())

	var times []int64
	for i := 0; i < n; i++ {
		var op model.Op
		op, g = pull(t, g, tst, ctx)
		times = append(times, op.Time)
		ctx = ctx.WithTime(op.Time)
	}

	prev := int64(0)
	var total int64
	for _, ts := range times {
		if ts < prev {
			t.Fatalf("time went backwards: %d after %d", ts, prev)
		}
		total += ts - prev
		prev = ts
	}
	avg := time.Duration(total / n)
	// Gaps are Uniform(0, 2s) draws; the sample mean over 200 of them
	// stays well inside this band for any seed.
	if avg < mean/2 || avg > 3*mean/2 {
		t.Errorf("mean gap = %v, want within [%v, %v]", avg, mean/2, 3*mean/2)
	}
}

func TestStaggerZeroIsPassthrough(t *testing.T) {
	g := reads()
	if got := Stagger(0, g); got != g {
		t.Error("Stagger(0) should return the child unchanged")
	}
}

func TestTimeLimit(t *testing.T) {
	tst := newTest(1)
	ctx := NewCtx(1)

	g := TimeLimit(5*time.Second, reads())

	first, g := pull(t, g, tst, ctx.WithTime(time.Second.Nanoseconds()))
	deadline := first.Time + 5*time.Second.Nanoseconds()

	// Emissions inside the window flow through.
	_, g = pull(t, g, tst, ctx.WithTime(deadline-1))

	// An emission at or past the cutoff exhausts the generator for good.
	if o := Next(g, tst, ctx.WithTime(deadline)); o.Status != Exhausted {
		t.Errorf("Next at deadline = %v, want exhausted", o.Status)
	}
	if o := Next(g, tst, ctx.WithTime(deadline+time.Hour.Nanoseconds())); o.Status != Exhausted {
		t.Errorf("Next past deadline = %v, want exhausted", o.Status)
	}
}

func TestGridSnapsToGrid(t *testing.T) {
	tst := newTest(1)
	ctx := NewCtx(1)
	dt := 5 * time.Second

	g := Grid(dt, reads())

	// First emission anchors the grid at the context time.
	op, g := pull(t, g, tst, ctx.WithTime(time.Second.Nanoseconds()))
	if op.Time != time.Second.Nanoseconds() {
		t.Fatalf("anchor emission time = %d, want %d", op.Time, time.Second.Nanoseconds())
	}

	// A later candidate gets pushed up to the next grid point.
	op, g = pull(t, g, tst, ctx.WithTime((3 * time.Second).Nanoseconds()))
	want := (6 * time.Second).Nanoseconds() // anchor 1s + 5s
	if op.Time != want {
		t.Errorf("snapped time = %d, want %d", op.Time, want)
	}

	// A candidate exactly on a grid point stays put.
	op, _ = pull(t, g, tst, ctx.WithTime((11 * time.Second).Nanoseconds()))
	if op.Time != (11 * time.Second).Nanoseconds() {
		t.Errorf("on-grid time = %d, want %d", op.Time, (11 * time.Second).Nanoseconds())
	}
}
