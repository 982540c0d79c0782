package model

import "fmt"

// OpType classifies an operation's place in the invoke → completion
// lifecycle, plus the two control types handled by workers directly.
type OpType string

const (
	OpInvoke OpType = "invoke"
	OpOK     OpType = "ok"
	OpFail   OpType = "fail"
	OpInfo   OpType = "info"
	OpSleep  OpType = "sleep"
	OpLog    OpType = "log"
)

// Slot identifies a fixed scheduling position: a numbered worker slot
// (0..N-1) or the single fault-injection slot.
type Slot int

// NemesisSlot is the dedicated fault-injection slot.
const NemesisSlot Slot = -1

func (s Slot) String() string {
	if s == NemesisSlot {
		return "nemesis"
	}
	return fmt.Sprintf("%d", int(s))
}

// Process identifies a logical run of operations occupying a slot. Worker
// processes get a fresh, never-reused id after a crash; the nemesis slot
// keeps a fixed sentinel for the whole run.
type Process int64

// NemesisProcess is the fixed process id of the fault-injection slot.
const NemesisProcess Process = -1

// Op is the atomic unit of scheduled work. F and Value are opaque to the
// scheduler. Time is in nanoseconds relative to run start. Index is -1
// until the coordinator journals the op; control ops keep -1.
type Op struct {
	Index   int     `json:"index"`
	Type    OpType  `json:"type"`
	F       string  `json:"f"`
	Value   any     `json:"value,omitempty"`
	Time    int64   `json:"time"`
	Process Process `json:"process"`
	Error   string  `json:"error,omitempty"`
}

// Control reports whether the op is a control operation (sleep or log).
// Control ops are dispatched to workers but never journaled.
func (o Op) Control() bool {
	return o.Type == OpSleep || o.Type == OpLog
}

// Completion reports whether the op completes an invocation.
func (o Op) Completion() bool {
	return o.Type == OpOK || o.Type == OpFail || o.Type == OpInfo
}

func (o Op) String() string {
	return fmt.Sprintf("{%s %s process=%d time=%d value=%v}", o.Type, o.F, o.Process, o.Time, o.Value)
}
