// Package realtime implements the live-subscription fan-out that every
// list-bearing view relies on: services publish an event after each
// successful mutation and subscribers receive, per topic, events in the
// order they were published. Cross-topic ordering is not guaranteed.
package realtime

import "sync"

// Event kinds.
const (
	KindCreated = "created"
	KindUpdated = "updated"
	KindDeleted = "deleted"
)

type Event struct {
	Topic string      `json:"topic"`
	Kind  string      `json:"kind"`
	Data  interface{} `json:"data"`
}

// Publisher is the write side of the hub; services depend on this only.
type Publisher interface {
	Publish(e Event)
}

const subscriptionBuffer = 64

type Subscription struct {
	C <-chan Event

	hub    *Hub
	id     int
	topics map[string]bool
	ch     chan Event
	once   sync.Once
}

// Close tears the subscription down. Safe to call more than once; the event
// channel is closed so range loops terminate.
func (sub *Subscription) Close() {
	sub.once.Do(func() {
		sub.hub.remove(sub.id)
		close(sub.ch)
	})
}

type Hub struct {
	mu     sync.RWMutex
	subs   map[int]*Subscription
	nextID int
	closed bool
}

func NewHub() *Hub {
	return &Hub{subs: make(map[int]*Subscription)}
}

// Subscribe registers interest in the given topics; no topics means all.
// The returned subscription must be closed when its owning view goes away.
// Subscribing on a closed hub yields a subscription whose channel is already
// closed, so listeners fail closed instead of hanging.
func (h *Hub) Subscribe(topics ...string) *Subscription {
	tset := make(map[string]bool, len(topics))
	for _, t := range topics {
		tset[t] = true
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, subscriptionBuffer)
	sub := &Subscription{C: ch, hub: h, topics: tset, ch: ch}
	if h.closed {
		close(ch)
		sub.once.Do(func() {}) // neutralize Close
		return sub
	}
	h.nextID++
	sub.id = h.nextID
	h.subs[sub.id] = sub
	return sub
}

// Publish delivers the event to every matching subscriber. A subscriber that
// has fallen subscriptionBuffer events behind is skipped rather than blocking
// the publisher. Publishing on a closed hub is a no-op.
func (h *Hub) Publish(e Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return
	}
	for _, sub := range h.subs {
		if len(sub.topics) > 0 && !sub.topics[e.Topic] {
			continue
		}
		select {
		case sub.ch <- e:
		default: // slow consumer; drop
		}
	}
}

// Close tears down every subscription; used on shutdown and sign-out so no
// listener outlives the session.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	subs := make([]*Subscription, 0, len(h.subs))
	for _, sub := range h.subs {
		subs = append(subs, sub)
	}
	h.subs = make(map[int]*Subscription)
	h.mu.Unlock()

	for _, sub := range subs {
		sub.once.Do(func() { close(sub.ch) })
	}
}

func (h *Hub) remove(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs, id)
}

// NopPublisher discards events; handy default for tests.
type NopPublisher struct{}

func (NopPublisher) Publish(Event) {}
