// Package ingest maps server events from the streaming transport onto the
// state store's typed mutation surface.
//
// The adapter performs no I/O and never blocks: the transport owns
// connection management and calls ApplyServerEvent from its read loop.
// Events are applied strictly in call order.
package ingest

import (
	"bytes"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/solstice-sh/pulse/internal/state"
)

// Recorder receives tool call records delivered over the stream. Wiring
// records through the learning tracker keeps analytics recomputation on
// every call-history change, whichever path appended the record.
type Recorder interface {
	Record(state.CallRecord)
}

// Adapter is the single entry point the streaming transport drives.
type Adapter struct {
	store    *state.Store
	recorder Recorder
}

// New creates an adapter bound to a store.
func New(store *state.Store) *Adapter {
	return &Adapter{store: store}
}

// SetRecorder routes stream-delivered tool call records through the given
// recorder instead of appending them directly.
func (a *Adapter) SetRecorder(r Recorder) {
	a.recorder = r
}

// SetConnected records transport connectivity on the snapshot.
func (a *Adapter) SetConnected(connected bool) {
	a.store.SetConnected(connected)
}

// ApplyServerEvent applies one server event. Unrecognized event types and
// unparseable payloads are logged and dropped; the snapshot is left
// untouched in both cases.
func (a *Adapter) ApplyServerEvent(eventType string, payload json.RawMessage) {
	switch eventType {
	case "consciousness":
		applyPatch[state.ConsciousnessPatch](a, eventType, payload)
	case "neuromodulation":
		applyPatch[state.NeuromodulationPatch](a, eventType, payload)
	case "kernel":
		applyPatch[state.KernelPatch](a, eventType, payload)
	case "agents":
		applyPatch[state.AgentsPatch](a, eventType, payload)
	case "tasks":
		applyPatch[state.TasksPatch](a, eventType, payload)
	case "economy":
		applyPatch[state.EconomyPatch](a, eventType, payload)
	case "memory":
		applyPatch[state.MemoryPatch](a, eventType, payload)
	case "self_improvement":
		applyPatch[state.SelfImprovementPatch](a, eventType, payload)
	case "daemon":
		applyPatch[state.DaemonPatch](a, eventType, payload)
	case "forecast":
		applyPatch[state.ForecastPatch](a, eventType, payload)
	case "safety":
		applyPatch[state.SafetyPatch](a, eventType, payload)
	case "goals":
		applyPatch[state.GoalsPatch](a, eventType, payload)
	case "network":
		applyPatch[state.NetworkPatch](a, eventType, payload)
	case "resources":
		applyPatch[state.ResourcesPatch](a, eventType, payload)

	case "event":
		var e state.Event
		if !decode(eventType, payload, &e) {
			return
		}
		a.store.AppendEvent(e)
	case "transaction":
		var tx state.Transaction
		if !decode(eventType, payload, &tx) {
			return
		}
		a.store.AppendTransaction(tx)
	case "modification":
		var m state.Modification
		if !decode(eventType, payload, &m) {
			return
		}
		a.store.AppendModification(m)
	case "lesson":
		var l state.Lesson
		if !decode(eventType, payload, &l) {
			return
		}
		a.store.AppendLesson(l)
	case "daemon_task":
		var task state.DaemonTask
		if !decode(eventType, payload, &task) {
			return
		}
		a.store.AppendDaemonTask(task)
	case "prediction":
		var p state.Prediction
		if !decode(eventType, payload, &p) {
			return
		}
		a.store.AppendPrediction(p)
	case "violation":
		var v state.Violation
		if !decode(eventType, payload, &v) {
			return
		}
		a.store.AppendViolation(v)
	case "tool_call":
		var r state.CallRecord
		if !decode(eventType, payload, &r) {
			return
		}
		if a.recorder != nil {
			a.recorder.Record(r)
		} else {
			a.store.AppendToolCall(r)
		}

	case "phi_sample":
		var s sample
		if !decode(eventType, payload, &s) {
			return
		}
		a.store.PushPhiSample(s.Value)
	case "kernel_load":
		var s sample
		if !decode(eventType, payload, &s) {
			return
		}
		a.store.PushKernelLoadSample(s.Value)

	default:
		log.Warn().Str("event_type", eventType).Msg("Unrecognized server event, dropping")
	}
}

type sample struct {
	Value float64 `json:"value"`
}

// applyPatch decodes payload into the patch type strictly and applies it.
func applyPatch[P state.Patch](a *Adapter, eventType string, payload json.RawMessage) {
	var p P
	if !decode(eventType, payload, &p) {
		return
	}
	a.store.Apply(p)
}

// decode is a strict JSON decode: unknown fields are rejected so a
// malformed event can never partially land in a slice.
func decode(eventType string, payload json.RawMessage, v interface{}) bool {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		log.Warn().Str("event_type", eventType).Err(err).Msg("Malformed server event payload, dropping")
		return false
	}
	return true
}
