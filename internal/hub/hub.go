package hub

import (
	"encoding/json"
	"log"
	"sync"
)

// Event types pushed to subscribers.
const (
	EventFollow      = "follow"
	EventUnfollow    = "unfollow"
	EventPublication = "publication"
)

// Event represents a real-time event to be sent to clients.
type Event struct {
	Type    string      `json:"type"`
	ActorID uint        `json:"actor_id"`
	Payload interface{} `json:"payload"`
}

// Client represents a single client connection (one open stream of a user).
// It's essentially a channel that the SSE handler will listen to.
type Client chan []byte

// Hub tracks every open stream per user.
type Hub struct {
	users map[uint]map[Client]bool
	mu    sync.RWMutex
}

// GlobalHub is the singleton instance of our Hub.
var GlobalHub = NewHub()

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		users: make(map[uint]map[Client]bool),
	}
}

// Subscribe registers a new stream for userID.
func (h *Hub) Subscribe(userID uint, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.users[userID]; !ok {
		h.users[userID] = make(map[Client]bool)
	}
	h.users[userID][client] = true
}

// Unsubscribe removes a stream of userID.
func (h *Hub) Unsubscribe(userID uint, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.users[userID]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client) // Close the channel to signal the SSE handler to stop.
			if len(clients) == 0 {
				delete(h.users, userID)
			}
		}
	}
}

// Subscribers returns the number of open streams of userID.
func (h *Hub) Subscribers(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID])
}

// Send delivers an event to every stream of each recipient.
func (h *Hub) Send(event Event, recipients ...uint) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var messageBytes []byte
	for _, userID := range recipients {
		clients, ok := h.users[userID]
		if !ok {
			continue
		}
		if messageBytes == nil {
			b, err := json.Marshal(event)
			if err != nil {
				log.Printf("hub: failed to encode %s event: %v", event.Type, err)
				return
			}
			messageBytes = b
		}

		for client := range clients {
			// Use a non-blocking send to prevent a slow client from blocking the hub.
			select {
			case client <- messageBytes:
			default:
				// Client channel is full; the event is dropped for this stream.
			}
		}
	}
}
