package realtime

import (
	"log"
	"sync"

	"github.com/google/uuid"
)

// Event is a named payload pushed to subscribers. Delivery is at-most-once:
// nothing is stored, nothing is replayed.
type Event struct {
	Name string      `json:"event"`
	Data interface{} `json:"data"`
}

// Subscription is one connected client. Events arrive on C; a slow client
// whose buffer is full simply misses events.
type Subscription struct {
	ID string
	C  <-chan Event

	ch     chan Event
	topics map[string]bool
}

const subscriberBuffer = 16

type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]*Subscription

	// When a bridge is attached, publishes go out through it and come back
	// via Deliver, so every process sharing the bridge sees every event.
	bridgePublish func(topic string, event Event)
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]*Subscription),
	}
}

// SetBridge routes publishes through an external pub/sub transport. The
// bridge must feed received events back through Deliver.
func (h *Hub) SetBridge(publish func(topic string, event Event)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.bridgePublish = publish
}

// Subscribe registers a client joined to the given topics.
func (h *Hub) Subscribe(topics ...string) *Subscription {
	sub := &Subscription{
		ID:     uuid.NewString(),
		ch:     make(chan Event, subscriberBuffer),
		topics: make(map[string]bool, len(topics)),
	}
	sub.C = sub.ch
	for _, t := range topics {
		sub.topics[t] = true
	}

	h.mu.Lock()
	h.subscribers[sub.ID] = sub
	h.mu.Unlock()

	log.Printf("Client connected: %s (topics: %v)", sub.ID, topics)
	return sub
}

func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	sub, ok := h.subscribers[id]
	if ok {
		delete(h.subscribers, id)
	}
	h.mu.Unlock()

	if ok {
		close(sub.ch)
		log.Printf("Client disconnected: %s", id)
	}
}

// Join adds a topic to an existing subscription. It reports whether the
// subscription is still connected.
func (h *Hub) Join(id, topic string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	sub, ok := h.subscribers[id]
	if ok {
		sub.topics[topic] = true
	}
	return ok
}

// Leave removes a topic from an existing subscription. It reports whether
// the subscription is still connected.
func (h *Hub) Leave(id, topic string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	sub, ok := h.subscribers[id]
	if ok {
		delete(sub.topics, topic)
	}
	return ok
}

// Publish sends an event to every subscriber joined to the topic.
func (h *Hub) Publish(topic string, event Event) {
	h.mu.RLock()
	bridge := h.bridgePublish
	h.mu.RUnlock()

	if bridge != nil {
		bridge(topic, event)
		return
	}
	h.Deliver(topic, event)
}

// Broadcast sends an event to every connected subscriber regardless of
// topic membership.
func (h *Hub) Broadcast(event Event) {
	h.Publish(TopicBroadcast, event)
}

// Deliver fans an event out to local subscribers. Called directly for
// bridgeless hubs and by the bridge receive loop otherwise.
func (h *Hub) Deliver(topic string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, sub := range h.subscribers {
		if topic != TopicBroadcast && !sub.topics[topic] {
			continue
		}
		select {
		case sub.ch <- event:
		default:
			// subscriber too slow, event dropped
		}
	}
}
