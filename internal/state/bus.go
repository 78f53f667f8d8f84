package state

import (
	"sync"
	"time"

	"github.com/solstice-sh/pulse/internal/constants"
)

// Change describes one applied mutation. Subscribers use it to react to
// snapshot updates without polling.
type Change struct {
	Kind      ChangeKind
	Timestamp time.Time
}

// ChangeBus distributes changes to subscribers.
type ChangeBus struct {
	mu          sync.RWMutex
	subscribers []chan Change
	bufferSize  int
}

// NewChangeBus creates a new change bus.
func NewChangeBus(bufferSize int) *ChangeBus {
	if bufferSize < constants.ChangeBusBuffer {
		bufferSize = constants.ChangeBusBuffer
	}
	return &ChangeBus{
		bufferSize: bufferSize,
	}
}

// Subscribe returns a channel that receives changes.
// The caller is responsible for reading from the channel to avoid blocking.
func (b *ChangeBus) Subscribe() <-chan Change {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Change, b.bufferSize)
	b.subscribers = append(b.subscribers, ch)
	return ch
}

// Unsubscribe removes a subscriber channel.
func (b *ChangeBus) Unsubscribe(ch <-chan Change) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, sub := range b.subscribers {
		if sub == ch {
			close(sub)
			b.subscribers = append(b.subscribers[:i], b.subscribers[i+1:]...)
			return
		}
	}
}

// Publish sends a change to all subscribers.
// Non-blocking: drops changes if a subscriber's buffer is full.
func (b *ChangeBus) Publish(change Change) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subscribers {
		select {
		case ch <- change:
		default:
			// Drop change if buffer is full (non-blocking)
		}
	}
}

// Close closes all subscriber channels.
func (b *ChangeBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subscribers {
		close(ch)
	}
	b.subscribers = nil
}
