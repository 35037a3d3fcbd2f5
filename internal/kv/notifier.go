package kv

import "sync"

// Event signals that the value stored under Key changed in some execution
// context sharing the same storage.
type Event struct {
	Key string
}

// Notifier fans storage-change events out to subscribers. It plays the role
// the browser's cross-tab storage events play for the web client: every
// context that writes a shared key publishes, every interested context
// subscribes, and all of them converge without polling.
type Notifier struct {
	mu   sync.Mutex
	next int
	subs map[int]chan Event
}

func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[int]chan Event)}
}

// Subscribe registers a listener and returns its channel plus a cancel
// function. Cancel must be called when the listener goes away.
func (n *Notifier) Subscribe() (<-chan Event, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()
	id := n.next
	n.next++
	ch := make(chan Event, 8)
	n.subs[id] = ch
	cancel := func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		if sub, ok := n.subs[id]; ok {
			delete(n.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish delivers the event to every subscriber. Slow subscribers whose
// buffer is full miss the event rather than blocking the writer.
func (n *Notifier) Publish(key string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, sub := range n.subs {
		select {
		case sub <- Event{Key: key}:
		default:
		}
	}
}
