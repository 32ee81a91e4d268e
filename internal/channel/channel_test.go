package channel

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"unimind-be/internal/entity"
	"unimind-be/internal/pkg/logger"
	"unimind-be/internal/realtime"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu        sync.Mutex
	rows      []*entity.DirectMessage
	failAll   bool
	loadCalls int
}

func (s *fakeStore) Persist(ctx context.Context, message *entity.DirectMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll {
		return errors.New("remote write refused")
	}
	cp := *message
	cp.Delivery = entity.DeliveryConfirmed
	s.rows = append(s.rows, &cp)
	return nil
}

func (s *fakeStore) LoadHistory(ctx context.Context, userA, userB uuid.UUID) ([]*entity.DirectMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadCalls++
	out := make([]*entity.DirectMessage, len(s.rows))
	copy(out, s.rows)
	return out, nil
}

func TestSendAppendsOptimisticallyInCallOrder(t *testing.T) {
	store := &fakeStore{}
	feed := realtime.NewFeed(logger.NewNopLogger())
	defer feed.Close()

	local := uuid.New()
	peer := uuid.New()

	ch, err := Open(context.Background(), local, peer, store, feed, logger.NewNopLogger())
	require.NoError(t, err)
	defer ch.Close()

	first := ch.Send(context.Background(), "first")
	second := ch.Send(context.Background(), "second")

	// Visible immediately, before any remote write completes.
	messages := ch.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, first.Id, messages[0].Id)
	assert.Equal(t, second.Id, messages[1].Id)

	ch.Flush()

	// Confirmed after the writes land; ids never change.
	messages = ch.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, first.Id, messages[0].Id)
	assert.Equal(t, entity.DeliveryConfirmed, messages[0].Delivery)
	assert.Equal(t, entity.DeliveryConfirmed, messages[1].Delivery)
}

func TestSendFailureMarksMessageFailed(t *testing.T) {
	store := &fakeStore{failAll: true}
	feed := realtime.NewFeed(logger.NewNopLogger())
	defer feed.Close()

	ch, err := Open(context.Background(), uuid.New(), uuid.New(), store, feed, logger.NewNopLogger())
	require.NoError(t, err)
	defer ch.Close()

	msg := ch.Send(context.Background(), "doomed")
	ch.Flush()

	messages := ch.Messages()
	require.Len(t, messages, 1)
	assert.Equal(t, msg.Id, messages[0].Id)
	assert.Equal(t, entity.DeliveryFailed, messages[0].Delivery)
}

func TestSentMessageAppearsExactlyOnce(t *testing.T) {
	store := &fakeStore{}
	feed := realtime.NewFeed(logger.NewNopLogger())
	defer feed.Close()

	local := uuid.New()
	peer := uuid.New()

	ch, err := Open(context.Background(), local, peer, store, feed, logger.NewNopLogger())
	require.NoError(t, err)
	defer ch.Close()

	ch.Send(context.Background(), "only once")
	ch.Flush()

	// The publish after the write is filtered out of our own subscription; give
	// it a moment to prove nothing arrives.
	time.Sleep(100 * time.Millisecond)

	messages := ch.Messages()
	assert.Len(t, messages, 1)
}

func TestInboundPeerMessageAppends(t *testing.T) {
	storeA := &fakeStore{}
	storeB := &fakeStore{}
	feed := realtime.NewFeed(logger.NewNopLogger())
	defer feed.Close()

	alice := uuid.New()
	bob := uuid.New()

	aliceCh, err := Open(context.Background(), alice, bob, storeA, feed, logger.NewNopLogger())
	require.NoError(t, err)
	defer aliceCh.Close()

	bobCh, err := Open(context.Background(), bob, alice, storeB, feed, logger.NewNopLogger())
	require.NoError(t, err)
	defer bobCh.Close()

	sent := bobCh.Send(context.Background(), "hello alice")
	bobCh.Flush()

	require.Eventually(t, func() bool {
		return len(aliceCh.Messages()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	got := aliceCh.Messages()[0]
	assert.Equal(t, sent.Id, got.Id)
	assert.Equal(t, "hello alice", got.Content)
	assert.Equal(t, entity.DeliveryConfirmed, got.Delivery)

	// Bob's own projection holds the message exactly once.
	assert.Len(t, bobCh.Messages(), 1)
}

func TestOpenLoadsHistoryBeforeLiveEvents(t *testing.T) {
	local := uuid.New()
	peer := uuid.New()

	store := &fakeStore{rows: []*entity.DirectMessage{
		{Id: uuid.New(), SenderId: peer, ReceiverId: local, Content: "old one", Delivery: entity.DeliveryConfirmed, CreatedAt: time.Now().Add(-time.Hour)},
		{Id: uuid.New(), SenderId: local, ReceiverId: peer, Content: "old two", Delivery: entity.DeliveryConfirmed, CreatedAt: time.Now().Add(-time.Minute)},
	}}
	feed := realtime.NewFeed(logger.NewNopLogger())
	defer feed.Close()

	ch, err := Open(context.Background(), local, peer, store, feed, logger.NewNopLogger())
	require.NoError(t, err)
	defer ch.Close()

	messages := ch.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, "old one", messages[0].Content)
	assert.Equal(t, "old two", messages[1].Content)
}

func TestRegistryOneChannelPerUser(t *testing.T) {
	store := &fakeStore{}
	feed := realtime.NewFeed(logger.NewNopLogger())
	defer feed.Close()

	registry := NewRegistry(store, feed, logger.NewNopLogger())

	user := uuid.New()
	peerA := uuid.New()
	peerB := uuid.New()

	first, err := registry.Open(context.Background(), user, peerA)
	require.NoError(t, err)

	// Same peer: same channel back.
	again, err := registry.Open(context.Background(), user, peerA)
	require.NoError(t, err)
	assert.Same(t, first, again)

	// Switching peers replaces the channel.
	second, err := registry.Open(context.Background(), user, peerB)
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.Equal(t, peerB, second.Peer())

	registry.Close(user)
}

func TestRegistryConcurrentOpensShareOneChannel(t *testing.T) {
	store := &fakeStore{}
	feed := realtime.NewFeed(logger.NewNopLogger())
	defer feed.Close()

	registry := NewRegistry(store, feed, logger.NewNopLogger())

	user := uuid.New()
	peer := uuid.New()

	const openers = 8
	channels := make([]*Channel, openers)
	var wg sync.WaitGroup
	for i := 0; i < openers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ch, err := registry.Open(context.Background(), user, peer)
			assert.NoError(t, err)
			channels[i] = ch
		}(i)
	}
	wg.Wait()

	// Exactly one channel was built; every racer got the same one back.
	for i := 1; i < openers; i++ {
		assert.Same(t, channels[0], channels[i])
	}
	store.mu.Lock()
	assert.Equal(t, 1, store.loadCalls)
	store.mu.Unlock()

	registry.Close(user)
}
