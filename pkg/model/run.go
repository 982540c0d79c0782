package model

import "time"

// RunState is the lifecycle state of a recorded run.
type RunState string

const (
	RunStateRunning RunState = "RUNNING"
	RunStateDone    RunState = "DONE"
	RunStateFailed  RunState = "FAILED"
)

// Run is the catalog record for a test run. The operations themselves live
// in the ops journal, keyed by the run id.
type Run struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Workers     int        `json:"workers"`
	Seed        int64      `json:"seed"`
	State       RunState   `json:"state"`
	OpCount     int        `json:"op_count"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}
