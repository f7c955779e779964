package events

import (
	"encoding/json"
	"sync"
)

const (
	// TypeCreated announces a library that just became visible.
	TypeCreated = "Created"
	// TypeRemoved announces a library that was hidden; it fires when the
	// resource is logically gone, which may be long before its rows are
	// physically deleted.
	TypeRemoved = "Removed"
)

// Message is the wire schema push subscribers receive. It is transient and
// never persisted.
type Message struct {
	ResourceID int64  `json:"resourceId"`
	EventType  string `json:"eventType"`
}

func (m Message) Serialize() string {
	raw, err := json.Marshal(m)
	if err != nil {
		return ""
	}
	return string(raw)
}

// Bus fans lifecycle events out to any number of subscribers. Publish is
// fire-and-forget: it never blocks and never fails, whatever the subscriber
// population looks like.
type Bus struct {
	mu     sync.Mutex
	buffer int
	subs   map[*Subscriber]struct{}
	closed bool
}

type Subscriber struct {
	C <-chan Message

	ch chan Message
}

func NewBus(subscriberBuffer int) *Bus {
	if subscriberBuffer < 1 {
		subscriberBuffer = 1
	}
	return &Bus{
		buffer: subscriberBuffer,
		subs:   make(map[*Subscriber]struct{}),
	}
}

func (b *Bus) Subscribe() *Subscriber {
	ch := make(chan Message, b.buffer)
	sub := &Subscriber{C: ch, ch: ch}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return sub
	}
	b.subs[sub] = struct{}{}
	return sub
}

func (b *Bus) Unsubscribe(sub *Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[sub]; !ok {
		return
	}
	delete(b.subs, sub)
	close(sub.ch)
}

// Publish delivers msg to every subscriber whose buffer has room and drops
// it for the rest. The write path must never wait here.
func (b *Bus) Publish(msg Message) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for sub := range b.subs {
		select {
		case sub.ch <- msg:
		default:
		}
	}
}

// Close drops all subscribers. Further Publish calls become no-ops and
// further Subscribe calls return already-closed subscribers.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for sub := range b.subs {
		delete(b.subs, sub)
		close(sub.ch)
	}
}
