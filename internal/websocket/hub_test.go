package websocket

import (
	"testing"
	"time"

	"unimind-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(nil, logger.NewNopLogger())
	go hub.Run()
	return hub
}

func (h *Hub) hasUser(userID uuid.UUID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[userID]
	return ok
}

func TestSendDeliversToRegisteredClient(t *testing.T) {
	hub := newTestHub(t)

	userId := uuid.New()
	client := &Client{Hub: hub, UserID: userId, Send: make(chan []byte, 4)}
	hub.register <- client

	require.Eventually(t, func() bool { return hub.hasUser(userId) }, time.Second, 10*time.Millisecond)

	hub.Send(userId, Push{Type: "direct_message", Data: map[string]string{"content": "hi"}})

	select {
	case data := <-client.Send:
		assert.Contains(t, string(data), "direct_message")
	case <-time.After(time.Second):
		t.Fatal("push was not delivered")
	}
}

func TestSendDropsSlowClientWithoutCrashingHub(t *testing.T) {
	hub := newTestHub(t)

	userId := uuid.New()
	// Unbuffered and never drained: the first push already overflows.
	slow := &Client{Hub: hub, UserID: userId, Send: make(chan []byte)}
	hub.register <- slow

	require.Eventually(t, func() bool { return hub.hasUser(userId) }, time.Second, 10*time.Millisecond)

	hub.Send(userId, Push{Type: "direct_message"})

	// The slow client is unregistered; its channel is closed exactly once, by
	// the unregister path.
	require.Eventually(t, func() bool { return !hub.hasUser(userId) }, time.Second, 10*time.Millisecond)

	select {
	case _, open := <-slow.Send:
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("send channel was never closed")
	}

	// The hub goroutine is still alive and serving other users.
	other := uuid.New()
	healthy := &Client{Hub: hub, UserID: other, Send: make(chan []byte, 1)}
	hub.register <- healthy
	require.Eventually(t, func() bool { return hub.hasUser(other) }, time.Second, 10*time.Millisecond)

	hub.Send(other, Push{Type: "direct_message"})
	select {
	case <-healthy.Send:
	case <-time.After(time.Second):
		t.Fatal("hub stopped delivering after dropping a slow client")
	}
}
