// Package events is the registry's notification surface. External observers
// (an indexer, the clearing house) subscribe to receive PoolAdded
// notifications without coupling to the registry itself.
package events

import (
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// PoolAdded is published on every successful pool registration.
type PoolAdded struct {
	BaseToken common.Address `json:"baseToken"`
	FeeTier   uint32         `json:"feeTier"`
	Pool      common.Address `json:"pool"`
	At        time.Time      `json:"at"`
}

// Notifier fans PoolAdded notifications out to subscriber channels.
// Publishing never blocks: a subscriber whose buffer is full misses the
// notification rather than stalling the registry's write path.
type Notifier struct {
	mu         sync.RWMutex
	subs       map[uint64]chan PoolAdded
	nextID     uint64
	bufferSize uint
	closed     bool
}

// NewNotifier creates a Notifier whose subscriber channels hold up to
// bufferSize pending notifications. A zero bufferSize gets a default of 16.
func NewNotifier(bufferSize uint) *Notifier {
	if bufferSize == 0 {
		bufferSize = 16
	}
	return &Notifier{
		subs:       make(map[uint64]chan PoolAdded),
		bufferSize: bufferSize,
	}
}

// Subscribe registers a new subscriber and returns its channel along with an
// unsubscribe function. The channel is closed on unsubscribe or on Close.
func (n *Notifier) Subscribe() (<-chan PoolAdded, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		ch := make(chan PoolAdded)
		close(ch)
		return ch, func() {}
	}

	id := n.nextID
	n.nextID++
	ch := make(chan PoolAdded, n.bufferSize)
	n.subs[id] = ch

	unsubscribe := func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		if sub, ok := n.subs[id]; ok {
			delete(n.subs, id)
			close(sub)
		}
	}
	return ch, unsubscribe
}

// Publish delivers the notification to every subscriber that has buffer
// capacity and reports how many subscribers missed it.
func (n *Notifier) Publish(ev PoolAdded) (dropped int) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	if n.closed {
		return 0
	}

	for _, ch := range n.subs {
		select {
		case ch <- ev:
		default:
			dropped++
		}
	}
	return dropped
}

// Close shuts the notifier down and closes all subscriber channels.
// Publish and Subscribe become no-ops afterwards.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return
	}
	n.closed = true
	for id, ch := range n.subs {
		delete(n.subs, id)
		close(ch)
	}
}
