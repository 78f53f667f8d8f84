package learning

import (
	"sync"
	"time"

	"github.com/solstice-sh/pulse/internal/state"
)

// Sink receives every recomputed learning state together with the log it
// was derived from. The persistence sidecar implements it.
type Sink interface {
	Persist(ls LearningState, history []state.CallRecord)
}

// Tracker funnels every call-history append through one place so the
// learning state is recomputed on every change to the log.
type Tracker struct {
	store *state.Store
	sink  Sink

	mu      sync.Mutex
	current LearningState

	now func() time.Time
}

// NewTracker creates a tracker bound to a store. sink may be nil.
func NewTracker(store *state.Store, sink Sink) *Tracker {
	return &Tracker{
		store: store,
		sink:  sink,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Record appends a call record to the call-history log and recomputes the
// learning state from the full log.
func (t *Tracker) Record(r state.CallRecord) {
	t.store.AppendToolCall(r)
	t.recompute()
}

// State returns the last computed learning state.
func (t *Tracker) State() LearningState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// Seed installs a reconciled baseline: the call-history log and the
// learning state adopted during bootstrap. The baseline is persisted so
// the local cache is non-empty from then on.
func (t *Tracker) Seed(ls LearningState, history []state.CallRecord) {
	t.store.SetToolCallHistory(history)

	t.mu.Lock()
	t.current = ls
	t.mu.Unlock()

	if t.sink != nil {
		t.sink.Persist(ls, history)
	}
}

func (t *Tracker) recompute() {
	history := t.store.Snapshot().ToolCalls.History.Items()
	ls := Compute(history, t.now())

	t.mu.Lock()
	t.current = ls
	t.mu.Unlock()

	if t.sink != nil {
		t.sink.Persist(ls, history)
	}
}
