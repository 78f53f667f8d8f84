package state

import (
	"sync"
	"sync/atomic"
	"time"
)

// Store owns the snapshot and serializes all mutations. Readers get the
// current snapshot without locking; the returned pointer stays valid and
// unchanged forever, a later mutation publishes a new one.
type Store struct {
	mu  sync.Mutex
	cur atomic.Pointer[Snapshot]
	bus *ChangeBus

	// now is swappable for deterministic tests.
	now func() time.Time
}

// New constructs a store seeded with the default snapshot.
func New() *Store {
	s := &Store{
		bus: NewChangeBus(0),
		now: func() time.Time { return time.Now().UTC() },
	}
	def := Defaults()
	s.cur.Store(&def)
	return s
}

// Snapshot returns the current snapshot. The pointee is immutable.
func (s *Store) Snapshot() *Snapshot {
	return s.cur.Load()
}

// Subscribe returns a channel receiving a Change per applied mutation.
func (s *Store) Subscribe() <-chan Change {
	return s.bus.Subscribe()
}

// Unsubscribe removes a subscriber channel.
func (s *Store) Unsubscribe(ch <-chan Change) {
	s.bus.Unsubscribe(ch)
}

// Close shuts down the change bus.
func (s *Store) Close() {
	s.bus.Close()
}

// mutate clones the current snapshot, applies fn to the clone, stamps
// LastUpdate and publishes. Mutations are applied strictly in call order.
func (s *Store) mutate(kind ChangeKind, fn func(*Snapshot)) {
	s.mu.Lock()
	next := *s.cur.Load()
	fn(&next)
	next.LastUpdate = s.now()
	s.cur.Store(&next)
	ts := next.LastUpdate
	s.mu.Unlock()

	s.bus.Publish(Change{Kind: kind, Timestamp: ts})
}

// Apply merges a typed patch into its slice. Idempotent under repeated
// identical input; never touches sibling slices.
func (s *Store) Apply(p Patch) {
	s.mutate(p.kind(), p.apply)
}

// SetConnected records transport connectivity. It does not stamp
// LastUpdate: connectivity is not subsystem data.
func (s *Store) SetConnected(connected bool) {
	s.mu.Lock()
	next := *s.cur.Load()
	next.Connected = connected
	s.cur.Store(&next)
	s.mu.Unlock()

	s.bus.Publish(Change{Kind: ChangeConnected, Timestamp: s.now()})
}

// Reset restores the default snapshot exactly, regardless of prior
// mutation history. Safe to call repeatedly.
func (s *Store) Reset() {
	s.mu.Lock()
	def := Defaults()
	s.cur.Store(&def)
	s.mu.Unlock()

	s.bus.Publish(Change{Kind: ChangeReset, Timestamp: s.now()})
}

// AppendEvent pushes an entry onto the global event log.
func (s *Store) AppendEvent(e Event) {
	s.mutate(ChangeEvents, func(next *Snapshot) {
		next.Events = next.Events.Push(e)
	})
}

// AppendToolCall pushes a call record onto the call-history log.
func (s *Store) AppendToolCall(r CallRecord) {
	s.mutate(ChangeToolCalls, func(next *Snapshot) {
		next.ToolCalls.History = next.ToolCalls.History.Push(r)
	})
}

// SetToolCallHistory replaces the call-history log wholesale. Used only
// when seeding from the persisted log at startup.
func (s *Store) SetToolCallHistory(records []CallRecord) {
	s.mutate(ChangeToolCalls, func(next *Snapshot) {
		log := Defaults().ToolCalls.History
		for i := len(records) - 1; i >= 0; i-- {
			log = log.Push(records[i])
		}
		next.ToolCalls.History = log
	})
}

// AppendTransaction pushes an entry onto the economy transaction log.
func (s *Store) AppendTransaction(t Transaction) {
	s.mutate(ChangeEconomy, func(next *Snapshot) {
		next.Economy.Transactions = next.Economy.Transactions.Push(t)
	})
}

// AppendModification pushes an entry onto the modification history.
func (s *Store) AppendModification(m Modification) {
	s.mutate(ChangeSelfImprovement, func(next *Snapshot) {
		next.SelfImprovement.Modifications = next.SelfImprovement.Modifications.Push(m)
	})
}

// AppendLesson pushes an entry onto the lesson log.
func (s *Store) AppendLesson(l Lesson) {
	s.mutate(ChangeSelfImprovement, func(next *Snapshot) {
		next.SelfImprovement.Lessons = next.SelfImprovement.Lessons.Push(l)
	})
}

// AppendDaemonTask pushes an entry onto the daemon task log.
func (s *Store) AppendDaemonTask(t DaemonTask) {
	s.mutate(ChangeDaemon, func(next *Snapshot) {
		next.Daemon.Tasks = next.Daemon.Tasks.Push(t)
	})
}

// AppendPrediction pushes an entry onto the prediction log.
func (s *Store) AppendPrediction(p Prediction) {
	s.mutate(ChangeForecast, func(next *Snapshot) {
		next.Forecast.Predictions = next.Forecast.Predictions.Push(p)
	})
}

// AppendViolation pushes an entry onto the safety violation log.
func (s *Store) AppendViolation(v Violation) {
	s.mutate(ChangeSafety, func(next *Snapshot) {
		next.Safety.Violations = next.Safety.Violations.Push(v)
		next.Safety.ViolationCount++
	})
}

// PushPhiSample appends to the phi sliding window.
func (s *Store) PushPhiSample(v float64) {
	s.mutate(ChangeConsciousness, func(next *Snapshot) {
		next.Consciousness.PhiHistory = next.Consciousness.PhiHistory.Push(v)
	})
}

// PushKernelLoadSample appends to the kernel load sliding window.
func (s *Store) PushKernelLoadSample(v float64) {
	s.mutate(ChangeKernel, func(next *Snapshot) {
		next.Kernel.LoadHistory = next.Kernel.LoadHistory.Push(v)
	})
}
