package tools

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/solstice-sh/pulse/internal/state"
)

type captureRecorder struct {
	records []state.CallRecord
}

func (c *captureRecorder) Record(r state.CallRecord) {
	c.records = append(c.records, r)
}

func TestExecuteSuccess(t *testing.T) {
	var gotBody executeRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/mcp/execute" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": "success",
			"output": map[string]string{"answer": "42"},
		})
	}))
	defer srv.Close()

	rec := &captureRecorder{}
	e := NewExecutor(srv.URL, rec)

	record, err := e.Execute(context.Background(), "gemini", "web_search", map[string]string{"query": "meaning of life"})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	if record.Status != state.CallSuccess {
		t.Errorf("status = %s, want success", record.Status)
	}
	if record.Server != "gemini" || record.Tool != "web_search" {
		t.Errorf("unexpected record identity: %s:%s", record.Server, record.Tool)
	}
	if record.ID == "" {
		t.Error("record has no id")
	}
	if gotBody.Tool != "mcp__gemini__web_search" {
		t.Errorf("wire tool name = %q, want mcp__gemini__web_search", gotBody.Tool)
	}
	if len(rec.records) != 1 {
		t.Fatalf("expected 1 recorded call, got %d", len(rec.records))
	}
}

func TestExecuteErrorStatusFromGateway(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": "error",
			"output": "tool exploded",
		})
	}))
	defer srv.Close()

	e := NewExecutor(srv.URL, nil)
	record, err := e.Execute(context.Background(), "github", "create_pr", nil)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if record.Status != state.CallError {
		t.Errorf("status = %s, want error", record.Status)
	}
}

func TestExecuteNon2xxResolvesPending(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer srv.Close()

	rec := &captureRecorder{}
	e := NewExecutor(srv.URL, rec)

	record, err := e.Execute(context.Background(), "memory", "recall", map[string]string{"key": "a"})
	if err != nil {
		t.Fatalf("transport failure must not return an error, got %v", err)
	}
	if record.Status != state.CallPending {
		t.Errorf("status = %s, want pending", record.Status)
	}

	var fallback fallbackOutput
	if err := json.Unmarshal(record.Output, &fallback); err != nil {
		t.Fatalf("pending output is not the fallback shape: %v", err)
	}
	if !strings.Contains(fallback.Message, "recall") {
		t.Errorf("fallback message does not name the tool: %q", fallback.Message)
	}
	if len(rec.records) != 1 {
		t.Errorf("pending record must still be recorded, got %d", len(rec.records))
	}
}

func TestExecuteNetworkErrorResolvesPending(t *testing.T) {
	// A closed server guarantees a connection error.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	rec := &captureRecorder{}
	e := NewExecutor(srv.URL, rec)

	record, err := e.Execute(context.Background(), "browser", "open", nil)
	if err != nil {
		t.Fatalf("network error must not return an error, got %v", err)
	}
	if record.Status != state.CallPending {
		t.Errorf("status = %s, want pending", record.Status)
	}
	if len(rec.records) != 1 {
		t.Errorf("pending record must still be recorded, got %d", len(rec.records))
	}
}

func TestExecuteMalformedGatewayReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json at all"))
	}))
	defer srv.Close()

	e := NewExecutor(srv.URL, nil)
	record, err := e.Execute(context.Background(), "scheduler", "cron_add", nil)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if record.Status != state.CallError {
		t.Errorf("status = %s, want error for an unparseable 2xx reply", record.Status)
	}
	var raw string
	if err := json.Unmarshal(record.Output, &raw); err != nil || raw != "not json at all" {
		t.Errorf("raw body not preserved: %s", record.Output)
	}
}

func TestExecuteRecordsInputJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"status": "success"})
	}))
	defer srv.Close()

	e := NewExecutor(srv.URL, nil)
	record, err := e.Execute(context.Background(), "memory", "store", map[string]string{"key": "k", "value": "v"})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	var decoded map[string]string
	if err := json.Unmarshal([]byte(record.Input), &decoded); err != nil {
		t.Fatalf("input is not JSON: %v", err)
	}
	if decoded["key"] != "k" || decoded["value"] != "v" {
		t.Errorf("unexpected input payload: %s", record.Input)
	}
}
