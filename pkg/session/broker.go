package session

import (
	"sync"
	"time"
)

// EventType tells what an Event reports.
type EventType string

const (
	EventNavigate EventType = "navigate"
	EventView     EventType = "view"
)

// Event is published after a committed navigation or a view change.
type Event struct {
	Type      EventType `json:"type"`
	Path      string    `json:"path,omitempty"`
	View      string    `json:"view,omitempty"`
	Previous  string    `json:"previous"`
	Timestamp time.Time `json:"timestamp"`
}

const subscriberBuffer = 16

// broker fans events out to subscribers. Slow subscribers lose events instead
// of blocking the router.
type broker struct {
	mu     sync.Mutex
	subs   map[chan Event]struct{}
	closed bool
}

func newBroker() *broker {
	return &broker{subs: make(map[chan Event]struct{})}
}

func (b *broker) subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, subscriberBuffer)
	if b.closed {
		close(ch)
		return ch, func() {}
	}
	b.subs[ch] = struct{}{}
	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.subs[ch]; ok {
			delete(b.subs, ch)
			close(ch)
		}
	}
}

func (b *broker) publish(ev Event) (dropped int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- ev:
		default:
			dropped++
		}
	}
	return dropped
}

func (b *broker) close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	for ch := range b.subs {
		delete(b.subs, ch)
		close(ch)
	}
}
