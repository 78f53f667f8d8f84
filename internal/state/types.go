// Package state holds the canonical snapshot of the agent platform and the
// only legal mutation surface over it.
//
// The snapshot is copy-on-write: writers clone the root, mutate the clone,
// and atomically publish it. Readers always see a complete, immutable
// snapshot and may hold the same reference until the next update.
package state

import (
	"encoding/json"
	"time"

	"github.com/solstice-sh/pulse/internal/constants"
	"github.com/solstice-sh/pulse/internal/ring"
)

// CallStatus is the outcome of one tool invocation attempt.
type CallStatus string

const (
	CallSuccess CallStatus = "success"
	CallError   CallStatus = "error"
	CallPending CallStatus = "pending"
)

// CallRecord is an immutable record of one tool invocation attempt. It is
// created by the tool executor and evicted only by call-history capacity
// pressure.
type CallRecord struct {
	ID         string          `json:"id"`
	Server     string          `json:"server"`
	Tool       string          `json:"tool"`
	Timestamp  time.Time       `json:"timestamp"`
	DurationMs float64         `json:"durationMs"`
	Status     CallStatus      `json:"status"`
	Input      string          `json:"input,omitempty"`
	Output     json.RawMessage `json:"output,omitempty"`
}

// Key returns the pattern key the analytics engine groups this record by.
func (r CallRecord) Key() string {
	return r.Server + ":" + r.Tool
}

// Event is one entry in the snapshot's global event log.
type Event struct {
	Level     string    `json:"level"`
	Source    string    `json:"source"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Transaction is one entry in the economy slice's transaction log.
type Transaction struct {
	ID          string    `json:"id"`
	AmountUSD   float64   `json:"amountUsd"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

// Modification is one entry in the self-improvement modification history.
type Modification struct {
	ID        string    `json:"id"`
	Target    string    `json:"target"`
	Summary   string    `json:"summary"`
	Timestamp time.Time `json:"timestamp"`
}

// Lesson is one entry in the self-improvement lesson log.
type Lesson struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// DaemonTask is one entry in the daemon task log.
type DaemonTask struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// Prediction is one entry in the prediction log.
type Prediction struct {
	ID         string    `json:"id"`
	Subject    string    `json:"subject"`
	Confidence float64   `json:"confidence"`
	Outcome    string    `json:"outcome"`
	Timestamp  time.Time `json:"timestamp"`
}

// Violation is one entry in the safety violation log.
type Violation struct {
	ID        string    `json:"id"`
	Rule      string    `json:"rule"`
	Severity  string    `json:"severity"`
	Timestamp time.Time `json:"timestamp"`
}

// Consciousness tracks the platform's global workspace metrics.
type Consciousness struct {
	Phi        float64                     `json:"phi"`
	Attention  string                      `json:"attention"`
	Arousal    float64                     `json:"arousal"`
	Valence    float64                     `json:"valence"`
	PhiHistory ring.SlidingWindow[float64] `json:"phiHistory"`
}

// Neuromodulation tracks the simulated neuromodulator levels.
type Neuromodulation struct {
	Dopamine      float64 `json:"dopamine"`
	Serotonin     float64 `json:"serotonin"`
	Noradrenaline float64 `json:"noradrenaline"`
	Acetylcholine float64 `json:"acetylcholine"`
	Mode          string  `json:"mode"`
}

// Kernel tracks the platform kernel's load figures.
type Kernel struct {
	Load          float64                     `json:"load"`
	UptimeSeconds int64                       `json:"uptimeSeconds"`
	SyscallRate   float64                     `json:"syscallRate"`
	Goroutines    int                         `json:"goroutines"`
	LoadHistory   ring.SlidingWindow[float64] `json:"loadHistory"`
}

// Agents tracks agent population counts.
type Agents struct {
	Total   int `json:"total"`
	Active  int `json:"active"`
	Idle    int `json:"idle"`
	Errored int `json:"errored"`
}

// Tasks tracks task queue counts.
type Tasks struct {
	Queued    int `json:"queued"`
	Running   int `json:"running"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
}

// Economy tracks the platform's economic figures.
type Economy struct {
	BalanceUSD      float64                    `json:"balanceUsd"`
	BurnRatePerHour float64                    `json:"burnRatePerHour"`
	EarnedTodayUSD  float64                    `json:"earnedTodayUsd"`
	Transactions    ring.EventLog[Transaction] `json:"transactions"`
}

// Memory tracks memory subsystem statistics.
type Memory struct {
	EpisodicCount    int     `json:"episodicCount"`
	SemanticCount    int     `json:"semanticCount"`
	WorkingSetBytes  int64   `json:"workingSetBytes"`
	CompressionRatio float64 `json:"compressionRatio"`
}

// SelfImprovement tracks the self-improvement pipeline.
type SelfImprovement struct {
	Stage         string                      `json:"stage"`
	Iteration     int                         `json:"iteration"`
	Fitness       float64                     `json:"fitness"`
	Modifications ring.EventLog[Modification] `json:"modifications"`
	Lessons       ring.EventLog[Lesson]       `json:"lessons"`
}

// ToolCalls holds the bounded tool call-history log, the analytics
// engine's source of truth.
type ToolCalls struct {
	History ring.EventLog[CallRecord] `json:"history"`
}

// Daemon tracks background daemon activity.
type Daemon struct {
	Heartbeat time.Time                 `json:"heartbeat"`
	Tasks     ring.EventLog[DaemonTask] `json:"tasks"`
}

// Forecast tracks the prediction subsystem.
type Forecast struct {
	Accuracy    float64                   `json:"accuracy"`
	Predictions ring.EventLog[Prediction] `json:"predictions"`
}

// Safety tracks safety-rule enforcement.
type Safety struct {
	ViolationCount int                      `json:"violationCount"`
	Violations     ring.EventLog[Violation] `json:"violations"`
}

// Goals tracks the current top-level goal.
type Goals struct {
	Current        string  `json:"current"`
	Progress       float64 `json:"progress"`
	CompletedToday int     `json:"completedToday"`
}

// Network tracks peer connectivity figures.
type Network struct {
	Peers             int     `json:"peers"`
	LatencyMs         float64 `json:"latencyMs"`
	MessagesPerSecond float64 `json:"messagesPerSecond"`
}

// Resources tracks token and cost consumption.
type Resources struct {
	TokensUsed         int64   `json:"tokensUsed"`
	CostTodayUSD       float64 `json:"costTodayUsd"`
	ContextUtilization float64 `json:"contextUtilization"`
}

// Snapshot is the canonical data tree. All slices are embedded by value so
// a shallow copy of the root clones the whole tree; bounded containers
// share immutable backing arrays across versions.
type Snapshot struct {
	Connected  bool      `json:"connected"`
	LastUpdate time.Time `json:"lastUpdate"`

	Consciousness   Consciousness   `json:"consciousness"`
	Neuromodulation Neuromodulation `json:"neuromodulation"`
	Kernel          Kernel          `json:"kernel"`
	Agents          Agents          `json:"agents"`
	Tasks           Tasks           `json:"tasks"`
	Economy         Economy         `json:"economy"`
	Memory          Memory          `json:"memory"`
	SelfImprovement SelfImprovement `json:"selfImprovement"`
	ToolCalls       ToolCalls       `json:"toolCalls"`
	Daemon          Daemon          `json:"daemon"`
	Forecast        Forecast        `json:"forecast"`
	Safety          Safety          `json:"safety"`
	Goals           Goals           `json:"goals"`
	Network         Network         `json:"network"`
	Resources       Resources       `json:"resources"`

	Events ring.EventLog[Event] `json:"events"`
}

// Defaults returns the documented default snapshot. Reset restores exactly
// this value.
func Defaults() Snapshot {
	return Snapshot{
		Consciousness: Consciousness{
			Attention:  "idle",
			PhiHistory: ring.NewSlidingWindow[float64](constants.PhiHistoryWindow),
		},
		Neuromodulation: Neuromodulation{
			Dopamine:      0.5,
			Serotonin:     0.5,
			Noradrenaline: 0.5,
			Acetylcholine: 0.5,
			Mode:          "baseline",
		},
		Kernel: Kernel{
			LoadHistory: ring.NewSlidingWindow[float64](constants.KernelLoadWindow),
		},
		Economy: Economy{
			Transactions: ring.NewEventLog[Transaction](constants.TransactionCapacity),
		},
		SelfImprovement: SelfImprovement{
			Stage:         "idle",
			Modifications: ring.NewEventLog[Modification](constants.ModificationCapacity),
			Lessons:       ring.NewEventLog[Lesson](constants.LessonCapacity),
		},
		ToolCalls: ToolCalls{
			History: ring.NewEventLog[CallRecord](constants.CallHistoryCapacity),
		},
		Daemon: Daemon{
			Tasks: ring.NewEventLog[DaemonTask](constants.DaemonTaskCapacity),
		},
		Forecast: Forecast{
			Predictions: ring.NewEventLog[Prediction](constants.PredictionCapacity),
		},
		Safety: Safety{
			Violations: ring.NewEventLog[Violation](constants.ViolationCapacity),
		},
		Events: ring.NewEventLog[Event](constants.GlobalEventCapacity),
	}
}
