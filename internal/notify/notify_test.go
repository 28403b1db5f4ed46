package notify

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"socialnet/backend/internal/hub"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQueue struct {
	mu       sync.Mutex
	messages [][]byte
	err      error
}

func (q *fakeQueue) Publish(body []byte) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.messages = append(q.messages, body)
	return q.err
}

func TestEmitDeliversToHubAndQueue(t *testing.T) {
	h := hub.NewHub()
	stream := make(hub.Client, 1)
	h.Subscribe(5, stream)

	q := &fakeQueue{}
	n := New(h, q)
	n.Emit(hub.Event{Type: hub.EventFollow, ActorID: 1, Payload: map[string]uint{"followed_id": 5}}, 5)

	assert.Len(t, stream, 1)
	require.Len(t, q.messages, 1)

	var env Envelope
	require.NoError(t, json.Unmarshal(q.messages[0], &env))
	assert.Equal(t, hub.EventFollow, env.Event.Type)
	assert.Equal(t, uint(1), env.Event.ActorID)
	assert.Equal(t, []uint{5}, env.Recipients)
}

func TestEmitWithoutRecipientsIsNoop(t *testing.T) {
	q := &fakeQueue{}
	New(hub.NewHub(), q).Emit(hub.Event{Type: hub.EventPublication})
	assert.Empty(t, q.messages)
}

func TestEmitIgnoresQueueFailures(t *testing.T) {
	h := hub.NewHub()
	stream := make(hub.Client, 1)
	h.Subscribe(5, stream)

	n := New(h, &fakeQueue{err: errors.New("channel closed")})
	assert.NotPanics(t, func() {
		n.Emit(hub.Event{Type: hub.EventUnfollow, ActorID: 1}, 5)
	})
	assert.Len(t, stream, 1)
}

func TestSetQueue(t *testing.T) {
	n := New(hub.NewHub(), nil)
	n.Emit(hub.Event{Type: hub.EventFollow}, 1)

	q := &fakeQueue{}
	n.SetQueue(q)
	n.Emit(hub.Event{Type: hub.EventFollow}, 1)
	assert.Len(t, q.messages, 1)

	n.SetQueue(nil)
	n.Emit(hub.Event{Type: hub.EventFollow}, 1)
	assert.Len(t, q.messages, 1)
}
