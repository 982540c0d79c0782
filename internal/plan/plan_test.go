package plan

import (
	"strings"
	"testing"

	"github.com/me/gauntlet/internal/client"
	"github.com/me/gauntlet/internal/gen"
	"github.com/me/gauntlet/internal/logging"
	"github.com/me/gauntlet/pkg/model"
)

func TestParseDefaults(t *testing.T) {
	p, err := Parse([]byte("op_limit: 100\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if p.Name != "run" || p.Workers != 5 || p.Workload != "noop" {
		t.Errorf("defaults = %+v", p)
	}
	if p.Seed == 0 {
		t.Error("seed should default to a nonzero value")
	}
	if p.Client.Type != "noop" {
		t.Errorf("client type = %q, want noop", p.Client.Type)
	}
	if p.Nemesis.Type != "none" {
		t.Errorf("nemesis type = %q, want none", p.Nemesis.Type)
	}
}

func TestParseRegisterDefaultsToRedis(t *testing.T) {
	p, err := Parse([]byte("workload: register\nop_limit: 10\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if p.Client.Type != "redis" {
		t.Errorf("client type = %q, want redis", p.Client.Type)
	}
	if p.Client.Addr == "" || p.Client.Key == "" {
		t.Errorf("client addr/key should default: %+v", p.Client)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"no limits", "workers: 3\n", "time_limit or an op_limit"},
		{"bad workers", "workers: 0\nop_limit: 1\n", "workers"},
		{"unknown workload", "workload: queue\nop_limit: 1\n", "unknown workload"},
		{"bad yaml", ":\n  - [", "parsing plan"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err, tt.want)
			}
		})
	}
}

func TestBuildNoop(t *testing.T) {
	p, err := Parse([]byte("name: demo\nworkers: 2\nseed: 7\nop_limit: 10\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	tst, g, cl, nem, err := p.Build(logging.Discard())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if tst.Workers != 2 || tst.Seed != 7 || tst.Name != "demo" {
		t.Errorf("test = %+v", tst)
	}
	if g == nil {
		t.Fatal("generator should not be nil")
	}
	if _, ok := cl.(client.Noop); !ok {
		t.Errorf("client = %T, want client.Noop", cl)
	}
	if _, ok := nem.(client.NoopNemesis); !ok {
		t.Errorf("nemesis = %T, want client.NoopNemesis", nem)
	}

	// The built generator emits only on worker slots and honors op_limit.
	ctx := gen.NewCtx(tst.Workers)
	count := 0
	for {
		o := gen.Next(g, tst, ctx)
		if o.Status != gen.Ready {
			break
		}
		if s, _ := ctx.SlotOf(o.Op.Process); s == model.NemesisSlot {
			t.Fatal("noop workload emitted on the nemesis slot")
		}
		count++
		g = o.Gen
	}
	if count != 10 {
		t.Errorf("emitted %d ops, want 10", count)
	}
}

func TestBuildRegisterValues(t *testing.T) {
	p, err := Parse([]byte("workload: register\nseed: 3\nop_limit: 50\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	tst, g, cl, _, err := p.Build(logging.Discard())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if _, ok := cl.(*client.Redis); !ok {
		t.Errorf("client = %T, want *client.Redis", cl)
	}

	ctx := gen.NewCtx(tst.Workers)
	seen := map[string]bool{}
	for {
		o := gen.Next(g, tst, ctx)
		if o.Status != gen.Ready {
			break
		}
		seen[o.Op.F] = true
		switch o.Op.F {
		case "read":
			if o.Op.Value != nil {
				t.Errorf("read carries value %v", o.Op.Value)
			}
		case "write":
			if _, ok := o.Op.Value.(int); !ok {
				t.Errorf("write value = %v, want int", o.Op.Value)
			}
		case "cas":
			pair, ok := o.Op.Value.([]any)
			if !ok || len(pair) != 2 {
				t.Errorf("cas value = %v, want [old, new]", o.Op.Value)
			}
		default:
			t.Errorf("unexpected f %q", o.Op.F)
		}
		g = o.Gen
	}
	for _, f := range []string{"read", "write", "cas"} {
		if !seen[f] {
			t.Errorf("no %s emitted in 50 draws", f)
		}
	}
}

func TestBuildPauseNemesis(t *testing.T) {
	p, err := Parse([]byte("op_limit: 10\nnemesis:\n  type: pause\n  interval: 2s\n  pause: 500ms\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	_, g, _, nem, err := p.Build(logging.Discard())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if _, ok := nem.(*client.PauseNemesis); !ok {
		t.Errorf("nemesis = %T, want *client.PauseNemesis", nem)
	}
	if g == nil {
		t.Fatal("generator should not be nil")
	}
}
