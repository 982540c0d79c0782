// Package report computes summary statistics over a recorded history.
package report

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/me/gauntlet/pkg/model"
)

// FuncStats summarizes all operations sharing one function tag.
type FuncStats struct {
	F        string  `json:"f"`
	Count    int     `json:"count"`
	OK       int     `json:"ok"`
	Fail     int     `json:"fail"`
	Info     int     `json:"info"`
	MeanMs   float64 `json:"mean_ms"`
	MedianMs float64 `json:"median_ms"`
	P95Ms    float64 `json:"p95_ms"`
	StdDevMs float64 `json:"stddev_ms"`
}

// Report is the rolled-up result of one run.
type Report struct {
	OpCount    int         `json:"op_count"`
	OKCount    int         `json:"ok_count"`
	FailCount  int         `json:"fail_count"`
	InfoCount  int         `json:"info_count"`
	DurationMs float64     `json:"duration_ms"`
	Throughput float64     `json:"throughput"` // completed invocations per second
	Funcs      []FuncStats `json:"funcs"`
}

// Build pairs invocations with their completions and aggregates latency
// per function tag. Invocations with no completion (crashed at the end of
// the run) count toward info.
func Build(h model.History) Report {
	var r Report
	if len(h) == 0 {
		return r
	}

	pairs := h.Pairs()
	latencies := make(map[string][]float64)
	counts := make(map[string]*FuncStats)

	get := func(f string) *FuncStats {
		fs, ok := counts[f]
		if !ok {
			fs = &FuncStats{F: f}
			counts[f] = fs
		}
		return fs
	}

	for _, p := range pairs {
		fs := get(p.Invoke.F)
		fs.Count++
		switch p.Complete.Type {
		case model.OpOK:
			fs.OK++
			r.OKCount++
		case model.OpFail:
			fs.Fail++
			r.FailCount++
		default:
			fs.Info++
			r.InfoCount++
		}
		ms := float64(p.Complete.Time-p.Invoke.Time) / float64(time.Millisecond)
		latencies[p.Invoke.F] = append(latencies[p.Invoke.F], ms)
	}
	for _, op := range h.Invocations() {
		if !paired(pairs, op) {
			fs := get(op.F)
			fs.Count++
			fs.Info++
			r.InfoCount++
		}
	}
	r.OpCount = len(h)
	r.DurationMs = float64(h[len(h)-1].Time-h[0].Time) / float64(time.Millisecond)
	if r.DurationMs > 0 {
		r.Throughput = float64(len(pairs)) / (r.DurationMs / 1000)
	}

	for f, fs := range counts {
		if xs := latencies[f]; len(xs) > 0 {
			sort.Float64s(xs)
			fs.MeanMs = stat.Mean(xs, nil)
			fs.MedianMs = stat.Quantile(0.5, stat.Empirical, xs, nil)
			fs.P95Ms = stat.Quantile(0.95, stat.Empirical, xs, nil)
			if len(xs) > 1 {
				// StdDev of a single sample is NaN, which JSON cannot encode.
				fs.StdDevMs = stat.StdDev(xs, nil)
			}
		}
		r.Funcs = append(r.Funcs, *fs)
	}
	sort.Slice(r.Funcs, func(i, j int) bool { return r.Funcs[i].F < r.Funcs[j].F })
	return r
}

func paired(pairs []model.OpPair, invoke model.Op) bool {
	for _, p := range pairs {
		if p.Invoke.Index == invoke.Index {
			return true
		}
	}
	return false
}
