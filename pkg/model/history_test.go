package model

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func sampleHistory() History {
	return History{
		{Index: 0, Type: OpInvoke, F: "read", Time: 10, Process: 0},
		{Index: 1, Type: OpInvoke, F: "write", Value: 3.0, Time: 12, Process: 1},
		{Index: 2, Type: OpOK, F: "read", Value: 1.0, Time: 20, Process: 0},
		{Index: 3, Type: OpInvoke, F: "read", Time: 25, Process: 0},
		{Index: 4, Type: OpInfo, F: "write", Time: 30, Process: 1, Error: "timeout"},
		{Index: 5, Type: OpFail, F: "read", Time: 35, Process: 0},
		{Index: 6, Type: OpInvoke, F: "cas", Time: 40, Process: 2},
	}
}

func TestHistoryByProcess(t *testing.T) {
	h := sampleHistory()

	got := h.ByProcess(0)
	want := History{h[0], h[2], h[3], h[5]}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ByProcess(0) mismatch (-want +got):\n%s", diff)
	}

	if got := h.ByProcess(99); got != nil {
		t.Errorf("ByProcess(99) = %v, want nil", got)
	}
}

func TestHistoryInvocations(t *testing.T) {
	h := sampleHistory()
	got := h.Invocations()
	want := History{h[0], h[1], h[3], h[6]}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Invocations mismatch (-want +got):\n%s", diff)
	}
}

func TestHistoryPairs(t *testing.T) {
	h := sampleHistory()
	got := h.Pairs()
	want := []OpPair{
		{Invoke: h[0], Complete: h[2]},
		{Invoke: h[1], Complete: h[4]},
		{Invoke: h[3], Complete: h[5]},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Pairs mismatch (-want +got):\n%s", diff)
	}
}

func TestHistoryPairsDropsOutstanding(t *testing.T) {
	h := History{
		{Index: 0, Type: OpInvoke, F: "read", Process: 0},
	}
	if got := h.Pairs(); got != nil {
		t.Errorf("Pairs with no completion = %v, want nil", got)
	}
}
