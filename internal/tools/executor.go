// Package tools invokes named tools on the platform's execution gateway
// and records every attempt in the call-history log.
package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/solstice-sh/pulse/internal/constants"
	"github.com/solstice-sh/pulse/internal/state"
)

// Recorder receives every resolved call record. The learning tracker
// implements it.
type Recorder interface {
	Record(state.CallRecord)
}

// Executor sends tool invocations to the execute endpoint.
type Executor struct {
	baseURL    string
	httpClient *http.Client
	recorder   Recorder

	now func() time.Time
}

// NewExecutor creates an executor. recorder may be nil, in which case
// records are not retained anywhere.
func NewExecutor(baseURL string, recorder Recorder) *Executor {
	return &Executor{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: constants.ExecuteTimeout,
		},
		recorder: recorder,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// executeRequest is the wire format of one invocation.
type executeRequest struct {
	ID        string          `json:"id"`
	Tool      string          `json:"tool"`
	Params    json.RawMessage `json:"params"`
	Timestamp time.Time       `json:"timestamp"`
}

// executeResponse is the gateway's reply on a 2xx.
type executeResponse struct {
	Status string          `json:"status"`
	Output json.RawMessage `json:"output"`
}

// fallbackOutput is recorded on a pending call so an operator can finish
// the action by hand.
type fallbackOutput struct {
	Message string `json:"message"`
	Reason  string `json:"reason"`
}

// Execute invokes a tool and resolves to a call record. Transport
// problems (network error, non-2xx) never surface as an error: the call
// resolves to a pending record carrying a manual-completion fallback.
// A non-nil error is returned only when the request cannot be built.
func (e *Executor) Execute(ctx context.Context, serverID, toolName string, params interface{}) (state.CallRecord, error) {
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return state.CallRecord{}, fmt.Errorf("marshal params: %w", err)
	}

	record := state.CallRecord{
		ID:        uuid.New().String(),
		Server:    serverID,
		Tool:      toolName,
		Timestamp: e.now(),
		Input:     string(paramsJSON),
	}

	req := executeRequest{
		ID:        record.ID,
		Tool:      fmt.Sprintf("%s__%s__%s", constants.ToolCallNamespace, serverID, toolName),
		Params:    paramsJSON,
		Timestamp: record.Timestamp,
	}
	body, err := json.Marshal(req)
	if err != nil {
		return state.CallRecord{}, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", e.baseURL+"/api/mcp/execute", bytes.NewReader(body))
	if err != nil {
		return state.CallRecord{}, fmt.Errorf("create http request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	start := e.now()
	httpResp, err := e.httpClient.Do(httpReq)
	record.DurationMs = float64(e.now().Sub(start)) / float64(time.Millisecond)

	if err != nil {
		record = e.pending(record, fmt.Sprintf("network error: %v", err))
		e.resolve(record)
		return record, nil
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		record = e.pending(record, fmt.Sprintf("read response: %v", err))
		e.resolve(record)
		return record, nil
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		record = e.pending(record, fmt.Sprintf("http error %d", httpResp.StatusCode))
		e.resolve(record)
		return record, nil
	}

	var resp executeResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		// The gateway answered but not in the expected shape. Keep the
		// raw body so nothing is lost.
		record.Status = state.CallError
		record.Output, _ = json.Marshal(string(respBody))
	} else {
		if resp.Status == "success" {
			record.Status = state.CallSuccess
		} else {
			record.Status = state.CallError
		}
		record.Output = resp.Output
	}

	e.resolve(record)
	return record, nil
}

// pending marks a record as pending with a human-readable fallback.
func (e *Executor) pending(record state.CallRecord, reason string) state.CallRecord {
	record.Status = state.CallPending
	fallback := fallbackOutput{
		Message: fmt.Sprintf("The %s tool on %s could not be reached. Run it manually from the %s server console and mark this call complete.",
			record.Tool, record.Server, record.Server),
		Reason: reason,
	}
	record.Output, _ = json.Marshal(fallback)
	log.Warn().
		Str("server", record.Server).
		Str("tool", record.Tool).
		Str("reason", reason).
		Msg("Tool execution degraded to pending")
	return record
}

// resolve hands the finished record to the recorder.
func (e *Executor) resolve(record state.CallRecord) {
	if e.recorder != nil {
		e.recorder.Record(record)
	}
}
