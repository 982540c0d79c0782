package model

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestOpControl(t *testing.T) {
	tests := []struct {
		typ  OpType
		want bool
	}{
		{OpInvoke, false},
		{OpOK, false},
		{OpFail, false},
		{OpInfo, false},
		{OpSleep, true},
		{OpLog, true},
	}
	for _, tt := range tests {
		if got := (Op{Type: tt.typ}).Control(); got != tt.want {
			t.Errorf("Control(%s) = %v, want %v", tt.typ, got, tt.want)
		}
	}
}

func TestOpCompletion(t *testing.T) {
	tests := []struct {
		typ  OpType
		want bool
	}{
		{OpInvoke, false},
		{OpOK, true},
		{OpFail, true},
		{OpInfo, true},
		{OpSleep, false},
		{OpLog, false},
	}
	for _, tt := range tests {
		if got := (Op{Type: tt.typ}).Completion(); got != tt.want {
			t.Errorf("Completion(%s) = %v, want %v", tt.typ, got, tt.want)
		}
	}
}

func TestSlotString(t *testing.T) {
	if got := Slot(3).String(); got != "3" {
		t.Errorf("Slot(3) = %q, want 3", got)
	}
	if got := NemesisSlot.String(); got != "nemesis" {
		t.Errorf("NemesisSlot = %q, want nemesis", got)
	}
}

func TestOpJSONOmitsEmpty(t *testing.T) {
	data, err := json.Marshal(Op{Index: 2, Type: OpOK, F: "read", Time: 5, Process: 1})
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)
	for _, absent := range []string{"value", "error"} {
		if strings.Contains(s, absent) {
			t.Errorf("marshaled op should omit %q, got %s", absent, s)
		}
	}
}

func TestNewTest(t *testing.T) {
	tst := NewTest("demo", 4, 7)
	if tst.Workers != 4 || tst.Seed != 7 || tst.Name != "demo" {
		t.Errorf("unexpected test fields: %+v", tst)
	}
	if tst.ID == "" || tst.ID[:4] != "run_" {
		t.Errorf("ID = %q, want run_ prefix", tst.ID)
	}
	if tst.Rand == nil {
		t.Fatal("Rand should be seeded")
	}
	// Same seed, same scheduling decisions.
	a := NewTest("a", 1, 7).Rand.Int63()
	b := NewTest("b", 1, 7).Rand.Int63()
	if a != b {
		t.Errorf("seeded rands diverge: %d vs %d", a, b)
	}
}
