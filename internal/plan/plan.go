// Package plan loads run plans from YAML and turns them into runnable
// tests: a seeded test descriptor, a generator tree, and the clients that
// execute it.
package plan

import (
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/me/gauntlet/internal/client"
	"github.com/me/gauntlet/internal/gen"
	"github.com/me/gauntlet/pkg/model"
)

// Plan is the YAML description of a run.
type Plan struct {
	Name      string        `yaml:"name"`
	Workers   int           `yaml:"workers"`
	Seed      int64         `yaml:"seed"`
	Rate      float64       `yaml:"rate"`       // target invocations per second, 0 = unthrottled
	TimeLimit string        `yaml:"time_limit"` // e.g. "30s", empty = unlimited
	OpLimit   int           `yaml:"op_limit"`   // 0 = unlimited
	Workload  string        `yaml:"workload"`   // "noop" or "register"
	Client    ClientConfig  `yaml:"client"`
	Nemesis   NemesisConfig `yaml:"nemesis"`
}

// ClientConfig selects and configures the worker-slot client.
type ClientConfig struct {
	Type string `yaml:"type"` // "noop" or "redis"
	Addr string `yaml:"addr"`
	Key  string `yaml:"key"`
}

// NemesisConfig selects the fault injector.
type NemesisConfig struct {
	Type     string `yaml:"type"`     // "none" or "pause"
	Interval string `yaml:"interval"` // gap between fault transitions
	Pause    string `yaml:"pause"`    // how long CLIENT PAUSE holds
}

// Load reads and validates a plan file.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading plan: %w", err)
	}
	return Parse(data)
}

// Parse decodes a plan from YAML and applies defaults.
func Parse(data []byte) (*Plan, error) {
	p := &Plan{
		Name:     "run",
		Workers:  5,
		Workload: "noop",
	}
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("parsing plan: %w", err)
	}
	if p.Workers < 1 {
		return nil, fmt.Errorf("plan: workers must be at least 1, got %d", p.Workers)
	}
	if p.Seed == 0 {
		p.Seed = time.Now().UnixNano()
	}
	switch p.Workload {
	case "noop", "register":
	default:
		return nil, fmt.Errorf("plan: unknown workload %q", p.Workload)
	}
	if p.Client.Type == "" {
		if p.Workload == "register" {
			p.Client.Type = "redis"
		} else {
			p.Client.Type = "noop"
		}
	}
	if p.Client.Addr == "" {
		p.Client.Addr = "localhost:6379"
	}
	if p.Client.Key == "" {
		p.Client.Key = "gauntlet:register"
	}
	if p.Nemesis.Type == "" {
		p.Nemesis.Type = "none"
	}
	if p.TimeLimit == "" && p.OpLimit == 0 {
		return nil, fmt.Errorf("plan: need a time_limit or an op_limit, or the run never ends")
	}
	return p, nil
}

// Build assembles the test descriptor, generator tree, and clients for a
// plan. The returned generator is wrapped in contract validation.
func (p *Plan) Build(logger *slog.Logger) (*model.Test, gen.Gen, client.Client, client.Client, error) {
	t := model.NewTest(p.Name, p.Workers, p.Seed)

	workload, err := p.workloadGen()
	if err != nil {
		return nil, nil, nil, nil, err
	}
	if p.Rate > 0 {
		mean := time.Duration(float64(time.Second) / p.Rate)
		workload = gen.Stagger(mean, workload)
	}
	g := gen.Clients(workload)

	nemesis, ngen, err := p.nemesis(logger)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	if ngen != nil {
		g = gen.Any(g, gen.Nemesis(ngen))
	}

	if p.TimeLimit != "" {
		d, err := time.ParseDuration(p.TimeLimit)
		if err != nil {
			return nil, nil, nil, nil, fmt.Errorf("plan: bad time_limit: %w", err)
		}
		g = gen.TimeLimit(d, g)
	}
	if p.OpLimit > 0 {
		g = gen.Limit(p.OpLimit, g)
	}
	g = gen.Validate(g)

	cl, err := p.client()
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return t, g, cl, nemesis, nil
}

// workloadGen builds the worker-slot operation stream.
func (p *Plan) workloadGen() (gen.Gen, error) {
	switch p.Workload {
	case "noop":
		return gen.Each(func() model.Op {
			return model.Op{F: "noop"}
		}), nil
	case "register":
		// Workload values come from their own stream so that the
		// scheduling decisions and the data are independently seeded.
		vr := rand.New(rand.NewSource(p.Seed + 1))
		read := gen.Each(func() model.Op {
			return model.Op{F: "read"}
		})
		write := gen.Each(func() model.Op {
			return model.Op{F: "write", Value: vr.Intn(5)}
		})
		cas := gen.Each(func() model.Op {
			return model.Op{F: "cas", Value: []any{vr.Intn(5), vr.Intn(5)}}
		})
		return gen.Mix(read, write, cas), nil
	default:
		return nil, fmt.Errorf("plan: unknown workload %q", p.Workload)
	}
}

// client builds the worker-slot client.
func (p *Plan) client() (client.Client, error) {
	switch p.Client.Type {
	case "noop":
		return client.Noop{}, nil
	case "redis":
		return &client.Redis{Addr: p.Client.Addr, Key: p.Client.Key}, nil
	default:
		return nil, fmt.Errorf("plan: unknown client type %q", p.Client.Type)
	}
}

// nemesis builds the fault injector and its generator, or nil for none.
func (p *Plan) nemesis(logger *slog.Logger) (client.Client, gen.Gen, error) {
	switch p.Nemesis.Type {
	case "none":
		return client.NoopNemesis{}, nil, nil
	case "pause":
		interval := 5 * time.Second
		if p.Nemesis.Interval != "" {
			d, err := time.ParseDuration(p.Nemesis.Interval)
			if err != nil {
				return nil, nil, fmt.Errorf("plan: bad nemesis interval: %w", err)
			}
			interval = d
		}
		pause := time.Second
		if p.Nemesis.Pause != "" {
			d, err := time.ParseDuration(p.Nemesis.Pause)
			if err != nil {
				return nil, nil, fmt.Errorf("plan: bad nemesis pause: %w", err)
			}
			pause = d
		}
		start := gen.Each(func() model.Op { return model.Op{F: "start"} })
		stop := gen.Each(func() model.Op { return model.Op{F: "stop"} })
		g := gen.Grid(interval, gen.FlipFlop(start, stop))
		cl := &client.PauseNemesis{Addr: p.Client.Addr, Pause: pause, Logger: logger}
		return cl, g, nil
	default:
		return nil, nil, fmt.Errorf("plan: unknown nemesis type %q", p.Nemesis.Type)
	}
}
