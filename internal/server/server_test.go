package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/me/gauntlet/internal/config"
	"github.com/me/gauntlet/internal/logging"
	"github.com/me/gauntlet/internal/store"
	"github.com/me/gauntlet/pkg/model"
)

func newTestServer(t *testing.T) (*Server, store.Store) {
	t.Helper()
	st, err := store.NewSQLiteStore(":memory:", logging.Discard())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	if err := st.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return New(config.DefaultServerConfig(), st, logging.Discard()), st
}

// seedRun inserts a finished run with a small journaled history.
func seedRun(t *testing.T, st store.Store, id string) {
	t.Helper()
	ctx := context.Background()
	run := &model.Run{
		ID:        id,
		Name:      "seeded",
		Workers:   2,
		Seed:      1,
		State:     model.RunStateRunning,
		CreatedAt: time.Now().UTC(),
	}
	if err := st.CreateRun(ctx, run); err != nil {
		t.Fatalf("create run: %v", err)
	}
	j, err := st.OpenJournal(ctx, id)
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	ops := model.History{
		{Index: 0, Type: model.OpInvoke, F: "read", Time: 0, Process: 0},
		{Index: 1, Type: model.OpOK, F: "read", Value: 3.0, Time: 1e6, Process: 0},
	}
	for _, op := range ops {
		if err := j.Append(ctx, op); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	if err := j.Close(ctx); err != nil {
		t.Fatalf("close journal: %v", err)
	}
	if err := st.FinishRun(ctx, id, model.RunStateDone, len(ops)); err != nil {
		t.Fatalf("finish run: %v", err)
	}
}

// get performs a request and decodes the response envelope.
func get(t *testing.T, srv *Server, path string) (int, model.Response) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	var resp model.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode %s: %v (body %s)", path, err, rec.Body.String())
	}
	return rec.Code, resp
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	code, resp := get(t, srv, "/api/v1/health")
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if resp.Status != "ok" {
		t.Errorf("envelope status = %q, want ok", resp.Status)
	}
	data, _ := resp.Data.(map[string]any)
	if data["status"] != "healthy" {
		t.Errorf("health status = %v, want healthy", data["status"])
	}
	if data["store"] != "ok" {
		t.Errorf("store status = %v, want ok", data["store"])
	}
}

func TestRequestIDHeader(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header should be set")
	}
}

func TestListRunsEndpoint(t *testing.T) {
	srv, st := newTestServer(t)
	seedRun(t, st, "run_list0001")

	code, resp := get(t, srv, "/api/v1/runs/")
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	runs, ok := resp.Data.([]any)
	if !ok || len(runs) != 1 {
		t.Fatalf("data = %v, want one run", resp.Data)
	}
}

func TestGetRunEndpoint(t *testing.T) {
	srv, st := newTestServer(t)
	seedRun(t, st, "run_get00001")

	code, resp := get(t, srv, "/api/v1/runs/run_get00001/")
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	data, _ := resp.Data.(map[string]any)
	if data["id"] != "run_get00001" {
		t.Errorf("id = %v, want run_get00001", data["id"])
	}
	if data["state"] != "DONE" {
		t.Errorf("state = %v, want DONE", data["state"])
	}
}

func TestGetRunNotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	code, resp := get(t, srv, "/api/v1/runs/run_missing0/")
	if code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", code)
	}
	if resp.Error == nil || resp.Error.Code != model.ErrNotFound {
		t.Errorf("error = %+v, want NOT_FOUND", resp.Error)
	}
}

func TestHistoryEndpoint(t *testing.T) {
	srv, st := newTestServer(t)
	seedRun(t, st, "run_hist0001")

	code, resp := get(t, srv, "/api/v1/runs/run_hist0001/history")
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	ops, ok := resp.Data.([]any)
	if !ok || len(ops) != 2 {
		t.Fatalf("data = %v, want two ops", resp.Data)
	}
	first, _ := ops[0].(map[string]any)
	if first["type"] != "invoke" || first["f"] != "read" {
		t.Errorf("first op = %v, want read invoke", first)
	}
}

func TestHistoryNotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	code, _ := get(t, srv, "/api/v1/runs/run_missing0/history")
	if code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", code)
	}
}

func TestReportEndpoint(t *testing.T) {
	srv, st := newTestServer(t)
	seedRun(t, st, "run_rept0001")

	code, resp := get(t, srv, "/api/v1/runs/run_rept0001/report")
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	data, _ := resp.Data.(map[string]any)
	if data["op_count"] != 2.0 {
		t.Errorf("op_count = %v, want 2", data["op_count"])
	}
	if data["ok_count"] != 1.0 {
		t.Errorf("ok_count = %v, want 1", data["ok_count"])
	}
}
