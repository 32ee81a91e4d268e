package realtime

import (
	"context"
	"sync"
	"testing"
	"time"

	"unimind-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShouldDeliver(t *testing.T) {
	local := uuid.New()
	peer := uuid.New()
	other := uuid.New()

	tests := []struct {
		name     string
		ev       InsertEvent
		expected bool
	}{
		{
			name:     "peer to local user",
			ev:       InsertEvent{SenderId: peer, ReceiverId: local},
			expected: true,
		},
		{
			name:     "self-originated echo",
			ev:       InsertEvent{SenderId: local, ReceiverId: peer},
			expected: false,
		},
		{
			name:     "third party to local user",
			ev:       InsertEvent{SenderId: other, ReceiverId: local},
			expected: false,
		},
		{
			name:     "peer to third party",
			ev:       InsertEvent{SenderId: peer, ReceiverId: other},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ShouldDeliver(tt.ev, local, peer))
		})
	}
}

func TestSubscribeDeliversOnlyPeerAuthoredEvents(t *testing.T) {
	feed := NewFeed(logger.NewNopLogger())
	defer feed.Close()

	local := uuid.New()
	peer := uuid.New()

	var mu sync.Mutex
	var received []InsertEvent
	delivered := make(chan struct{}, 8)

	sub, err := feed.Subscribe(context.Background(), local, peer, func(ev InsertEvent) {
		mu.Lock()
		received = append(received, ev)
		mu.Unlock()
		delivered <- struct{}{}
	})
	require.NoError(t, err)
	defer sub.Cancel()

	fromPeer := InsertEvent{MessageId: uuid.New(), SenderId: peer, ReceiverId: local, Content: "hi"}
	echo := InsertEvent{MessageId: uuid.New(), SenderId: local, ReceiverId: peer, Content: "echo"}
	fromOther := InsertEvent{MessageId: uuid.New(), SenderId: uuid.New(), ReceiverId: local, Content: "spam"}

	require.NoError(t, feed.Publish(echo))
	require.NoError(t, feed.Publish(fromOther))
	require.NoError(t, feed.Publish(fromPeer))

	select {
	case <-delivered:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for delivery")
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 1)
	assert.Equal(t, fromPeer.MessageId, received[0].MessageId)
	assert.Equal(t, "hi", received[0].Content)
}

func TestSubscriptionCancelStopsDelivery(t *testing.T) {
	feed := NewFeed(logger.NewNopLogger())
	defer feed.Close()

	local := uuid.New()
	peer := uuid.New()

	var count int
	var mu sync.Mutex
	sub, err := feed.Subscribe(context.Background(), local, peer, func(ev InsertEvent) {
		mu.Lock()
		count++
		mu.Unlock()
	})
	require.NoError(t, err)

	sub.Cancel()

	// Cancel has waited for the pump goroutine, publishing now goes nowhere.
	require.NoError(t, feed.Publish(InsertEvent{
		MessageId:  uuid.New(),
		SenderId:   peer,
		ReceiverId: local,
	}))

	time.Sleep(100 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 0, count)
}
