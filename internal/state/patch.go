package state

import "time"

// ChangeKind names the part of the snapshot a mutation touched.
type ChangeKind string

const (
	ChangeConsciousness   ChangeKind = "consciousness"
	ChangeNeuromodulation ChangeKind = "neuromodulation"
	ChangeKernel          ChangeKind = "kernel"
	ChangeAgents          ChangeKind = "agents"
	ChangeTasks           ChangeKind = "tasks"
	ChangeEconomy         ChangeKind = "economy"
	ChangeMemory          ChangeKind = "memory"
	ChangeSelfImprovement ChangeKind = "self_improvement"
	ChangeToolCalls       ChangeKind = "tool_calls"
	ChangeDaemon          ChangeKind = "daemon"
	ChangeForecast        ChangeKind = "forecast"
	ChangeSafety          ChangeKind = "safety"
	ChangeGoals           ChangeKind = "goals"
	ChangeNetwork         ChangeKind = "network"
	ChangeResources       ChangeKind = "resources"
	ChangeEvents          ChangeKind = "events"
	ChangeConnected       ChangeKind = "connected"
	ChangeReset           ChangeKind = "reset"
)

// Patch is a typed partial update for exactly one slice. Nil fields are
// left untouched; a patch never reaches outside its own slice.
type Patch interface {
	kind() ChangeKind
	apply(*Snapshot)
}

// ConsciousnessPatch partially updates the consciousness slice.
type ConsciousnessPatch struct {
	Phi       *float64 `json:"phi"`
	Attention *string  `json:"attention"`
	Arousal   *float64 `json:"arousal"`
	Valence   *float64 `json:"valence"`
}

func (p ConsciousnessPatch) kind() ChangeKind { return ChangeConsciousness }

func (p ConsciousnessPatch) apply(s *Snapshot) {
	c := s.Consciousness
	if p.Phi != nil {
		c.Phi = *p.Phi
	}
	if p.Attention != nil {
		c.Attention = *p.Attention
	}
	if p.Arousal != nil {
		c.Arousal = *p.Arousal
	}
	if p.Valence != nil {
		c.Valence = *p.Valence
	}
	s.Consciousness = c
}

// NeuromodulationPatch partially updates the neuromodulation slice.
type NeuromodulationPatch struct {
	Dopamine      *float64 `json:"dopamine"`
	Serotonin     *float64 `json:"serotonin"`
	Noradrenaline *float64 `json:"noradrenaline"`
	Acetylcholine *float64 `json:"acetylcholine"`
	Mode          *string  `json:"mode"`
}

func (p NeuromodulationPatch) kind() ChangeKind { return ChangeNeuromodulation }

func (p NeuromodulationPatch) apply(s *Snapshot) {
	n := s.Neuromodulation
	if p.Dopamine != nil {
		n.Dopamine = *p.Dopamine
	}
	if p.Serotonin != nil {
		n.Serotonin = *p.Serotonin
	}
	if p.Noradrenaline != nil {
		n.Noradrenaline = *p.Noradrenaline
	}
	if p.Acetylcholine != nil {
		n.Acetylcholine = *p.Acetylcholine
	}
	if p.Mode != nil {
		n.Mode = *p.Mode
	}
	s.Neuromodulation = n
}

// KernelPatch partially updates the kernel slice.
type KernelPatch struct {
	Load          *float64 `json:"load"`
	UptimeSeconds *int64   `json:"uptimeSeconds"`
	SyscallRate   *float64 `json:"syscallRate"`
	Goroutines    *int     `json:"goroutines"`
}

func (p KernelPatch) kind() ChangeKind { return ChangeKernel }

func (p KernelPatch) apply(s *Snapshot) {
	k := s.Kernel
	if p.Load != nil {
		k.Load = *p.Load
	}
	if p.UptimeSeconds != nil {
		k.UptimeSeconds = *p.UptimeSeconds
	}
	if p.SyscallRate != nil {
		k.SyscallRate = *p.SyscallRate
	}
	if p.Goroutines != nil {
		k.Goroutines = *p.Goroutines
	}
	s.Kernel = k
}

// AgentsPatch partially updates the agents slice.
type AgentsPatch struct {
	Total   *int `json:"total"`
	Active  *int `json:"active"`
	Idle    *int `json:"idle"`
	Errored *int `json:"errored"`
}

func (p AgentsPatch) kind() ChangeKind { return ChangeAgents }

func (p AgentsPatch) apply(s *Snapshot) {
	a := s.Agents
	if p.Total != nil {
		a.Total = *p.Total
	}
	if p.Active != nil {
		a.Active = *p.Active
	}
	if p.Idle != nil {
		a.Idle = *p.Idle
	}
	if p.Errored != nil {
		a.Errored = *p.Errored
	}
	s.Agents = a
}

// TasksPatch partially updates the tasks slice.
type TasksPatch struct {
	Queued    *int `json:"queued"`
	Running   *int `json:"running"`
	Completed *int `json:"completed"`
	Failed    *int `json:"failed"`
}

func (p TasksPatch) kind() ChangeKind { return ChangeTasks }

func (p TasksPatch) apply(s *Snapshot) {
	t := s.Tasks
	if p.Queued != nil {
		t.Queued = *p.Queued
	}
	if p.Running != nil {
		t.Running = *p.Running
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.Failed != nil {
		t.Failed = *p.Failed
	}
	s.Tasks = t
}

// EconomyPatch partially updates the economy slice's scalar fields. The
// transaction log is append-only and not reachable from a patch.
type EconomyPatch struct {
	BalanceUSD      *float64 `json:"balanceUsd"`
	BurnRatePerHour *float64 `json:"burnRatePerHour"`
	EarnedTodayUSD  *float64 `json:"earnedTodayUsd"`
}

func (p EconomyPatch) kind() ChangeKind { return ChangeEconomy }

func (p EconomyPatch) apply(s *Snapshot) {
	e := s.Economy
	if p.BalanceUSD != nil {
		e.BalanceUSD = *p.BalanceUSD
	}
	if p.BurnRatePerHour != nil {
		e.BurnRatePerHour = *p.BurnRatePerHour
	}
	if p.EarnedTodayUSD != nil {
		e.EarnedTodayUSD = *p.EarnedTodayUSD
	}
	s.Economy = e
}

// MemoryPatch partially updates the memory slice.
type MemoryPatch struct {
	EpisodicCount    *int     `json:"episodicCount"`
	SemanticCount    *int     `json:"semanticCount"`
	WorkingSetBytes  *int64   `json:"workingSetBytes"`
	CompressionRatio *float64 `json:"compressionRatio"`
}

func (p MemoryPatch) kind() ChangeKind { return ChangeMemory }

func (p MemoryPatch) apply(s *Snapshot) {
	m := s.Memory
	if p.EpisodicCount != nil {
		m.EpisodicCount = *p.EpisodicCount
	}
	if p.SemanticCount != nil {
		m.SemanticCount = *p.SemanticCount
	}
	if p.WorkingSetBytes != nil {
		m.WorkingSetBytes = *p.WorkingSetBytes
	}
	if p.CompressionRatio != nil {
		m.CompressionRatio = *p.CompressionRatio
	}
	s.Memory = m
}

// SelfImprovementPatch partially updates the self-improvement slice's
// scalar fields.
type SelfImprovementPatch struct {
	Stage     *string  `json:"stage"`
	Iteration *int     `json:"iteration"`
	Fitness   *float64 `json:"fitness"`
}

func (p SelfImprovementPatch) kind() ChangeKind { return ChangeSelfImprovement }

func (p SelfImprovementPatch) apply(s *Snapshot) {
	si := s.SelfImprovement
	if p.Stage != nil {
		si.Stage = *p.Stage
	}
	if p.Iteration != nil {
		si.Iteration = *p.Iteration
	}
	if p.Fitness != nil {
		si.Fitness = *p.Fitness
	}
	s.SelfImprovement = si
}

// DaemonPatch partially updates the daemon slice's scalar fields.
type DaemonPatch struct {
	Heartbeat *time.Time `json:"heartbeat"`
}

func (p DaemonPatch) kind() ChangeKind { return ChangeDaemon }

func (p DaemonPatch) apply(s *Snapshot) {
	d := s.Daemon
	if p.Heartbeat != nil {
		d.Heartbeat = *p.Heartbeat
	}
	s.Daemon = d
}

// ForecastPatch partially updates the forecast slice's scalar fields.
type ForecastPatch struct {
	Accuracy *float64 `json:"accuracy"`
}

func (p ForecastPatch) kind() ChangeKind { return ChangeForecast }

func (p ForecastPatch) apply(s *Snapshot) {
	f := s.Forecast
	if p.Accuracy != nil {
		f.Accuracy = *p.Accuracy
	}
	s.Forecast = f
}

// SafetyPatch partially updates the safety slice's scalar fields.
type SafetyPatch struct {
	ViolationCount *int `json:"violationCount"`
}

func (p SafetyPatch) kind() ChangeKind { return ChangeSafety }

func (p SafetyPatch) apply(s *Snapshot) {
	sa := s.Safety
	if p.ViolationCount != nil {
		sa.ViolationCount = *p.ViolationCount
	}
	s.Safety = sa
}

// GoalsPatch partially updates the goals slice.
type GoalsPatch struct {
	Current        *string  `json:"current"`
	Progress       *float64 `json:"progress"`
	CompletedToday *int     `json:"completedToday"`
}

func (p GoalsPatch) kind() ChangeKind { return ChangeGoals }

func (p GoalsPatch) apply(s *Snapshot) {
	g := s.Goals
	if p.Current != nil {
		g.Current = *p.Current
	}
	if p.Progress != nil {
		g.Progress = *p.Progress
	}
	if p.CompletedToday != nil {
		g.CompletedToday = *p.CompletedToday
	}
	s.Goals = g
}

// NetworkPatch partially updates the network slice.
type NetworkPatch struct {
	Peers             *int     `json:"peers"`
	LatencyMs         *float64 `json:"latencyMs"`
	MessagesPerSecond *float64 `json:"messagesPerSecond"`
}

func (p NetworkPatch) kind() ChangeKind { return ChangeNetwork }

func (p NetworkPatch) apply(s *Snapshot) {
	n := s.Network
	if p.Peers != nil {
		n.Peers = *p.Peers
	}
	if p.LatencyMs != nil {
		n.LatencyMs = *p.LatencyMs
	}
	if p.MessagesPerSecond != nil {
		n.MessagesPerSecond = *p.MessagesPerSecond
	}
	s.Network = n
}

// ResourcesPatch partially updates the resources slice.
type ResourcesPatch struct {
	TokensUsed         *int64   `json:"tokensUsed"`
	CostTodayUSD       *float64 `json:"costTodayUsd"`
	ContextUtilization *float64 `json:"contextUtilization"`
}

func (p ResourcesPatch) kind() ChangeKind { return ChangeResources }

func (p ResourcesPatch) apply(s *Snapshot) {
	r := s.Resources
	if p.TokensUsed != nil {
		r.TokensUsed = *p.TokensUsed
	}
	if p.CostTodayUSD != nil {
		r.CostTodayUSD = *p.CostTodayUSD
	}
	if p.ContextUtilization != nil {
		r.ContextUtilization = *p.ContextUtilization
	}
	s.Resources = r
}
