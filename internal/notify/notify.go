// Package notify fans follow and publication events out to live streams and, optionally, a queue.
package notify

import (
	"encoding/json"
	"log"
	"sync"

	"socialnet/backend/internal/hub"
)

// Queue is an external sink for events, e.g. a RabbitMQ client.
type Queue interface {
	Publish(body []byte) error
}

// Envelope is the queue message for one event.
type Envelope struct {
	Event      hub.Event `json:"event"`
	Recipients []uint    `json:"recipients"`
}

// Notifier delivers events to the hub and the configured queue.
type Notifier struct {
	hub *hub.Hub

	mu    sync.RWMutex
	queue Queue
}

// Default is the notifier used by the HTTP handlers.
var Default = New(hub.GlobalHub, nil)

// New creates a Notifier. q may be nil.
func New(h *hub.Hub, q Queue) *Notifier {
	return &Notifier{hub: h, queue: q}
}

// SetQueue replaces the queue sink; nil disables it.
func (n *Notifier) SetQueue(q Queue) {
	n.mu.Lock()
	n.queue = q
	n.mu.Unlock()
}

// Emit sends event to recipients. Queue failures are logged, never returned:
// a notification must not fail the request that caused it.
func (n *Notifier) Emit(event hub.Event, recipients ...uint) {
	if len(recipients) == 0 {
		return
	}
	n.hub.Send(event, recipients...)

	n.mu.RLock()
	q := n.queue
	n.mu.RUnlock()
	if q == nil {
		return
	}

	body, err := json.Marshal(Envelope{Event: event, Recipients: recipients})
	if err != nil {
		log.Printf("notify: failed to encode %s event: %v", event.Type, err)
		return
	}
	if err := q.Publish(body); err != nil {
		log.Printf("notify: %v", err)
	}
}
