package channel

import (
	"context"
	"sync"
	"time"

	"unimind-be/internal/entity"
	"unimind-be/internal/pkg/logger"
	"unimind-be/internal/realtime"

	"github.com/google/uuid"
)

// Store is the remote side of the channel: history loads and message writes.
type Store interface {
	Persist(ctx context.Context, message *entity.DirectMessage) error
	LoadHistory(ctx context.Context, userA, userB uuid.UUID) ([]*entity.DirectMessage, error)
}

// Channel is one open peer conversation: a locally-ordered projection fed by
// optimistic writes on the send side and the filtered realtime feed on the
// receive side.
//
// Ordering: locally-sent messages appear in call order; inbound events append
// in arrival order and never precede messages already shown. Self-originated
// echoes are excluded by the feed's sender filter, so a sent message exists
// in the projection exactly once.
type Channel struct {
	localUser uuid.UUID
	peer      uuid.UUID

	store  Store
	feed   *realtime.Feed
	logger logger.ILogger

	mu         sync.Mutex
	projection []*entity.DirectMessage

	sub     *realtime.Subscription
	writeWG sync.WaitGroup
}

// Open loads the full ordered history for the peer pair and starts the feed
// subscription. The caller owns the returned channel and must Close it when
// the conversation view closes or the active peer changes.
func Open(ctx context.Context, localUser, peer uuid.UUID, store Store, feed *realtime.Feed, log logger.ILogger) (*Channel, error) {
	history, err := store.LoadHistory(ctx, localUser, peer)
	if err != nil {
		return nil, err
	}

	c := &Channel{
		localUser:  localUser,
		peer:       peer,
		store:      store,
		feed:       feed,
		logger:     log,
		projection: history,
	}

	sub, err := feed.Subscribe(ctx, localUser, peer, c.onInbound)
	if err != nil {
		return nil, err
	}
	c.sub = sub

	return c, nil
}

func (c *Channel) Peer() uuid.UUID {
	return c.peer
}

func (c *Channel) onInbound(ev realtime.InsertEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.projection = append(c.projection, &entity.DirectMessage{
		Id:         ev.MessageId,
		SenderId:   ev.SenderId,
		ReceiverId: ev.ReceiverId,
		Content:    ev.Content,
		Delivery:   entity.DeliveryConfirmed,
		CreatedAt:  ev.CreatedAt,
	})
}

// Send appends the message optimistically and returns immediately; the remote
// write runs asynchronously. A failed write marks the projection entry Failed
// instead of leaving it looking sent.
func (c *Channel) Send(ctx context.Context, text string) *entity.DirectMessage {
	msg := &entity.DirectMessage{
		Id:         uuid.New(), // locally-assigned, never reconciled
		SenderId:   c.localUser,
		ReceiverId: c.peer,
		Content:    text,
		Delivery:   entity.DeliveryPending,
		CreatedAt:  time.Now(),
	}

	c.mu.Lock()
	c.projection = append(c.projection, msg)
	c.mu.Unlock()

	c.writeWG.Add(1)
	go func() {
		defer c.writeWG.Done()
		c.persist(ctx, msg)
	}()

	return msg
}

func (c *Channel) persist(ctx context.Context, msg *entity.DirectMessage) {
	remote := *msg
	if err := c.store.Persist(ctx, &remote); err != nil {
		c.logger.Error("DirectMessageChannel", "Remote write failed, message marked failed", map[string]interface{}{
			"message_id": msg.Id,
			"peer_id":    c.peer,
			"error":      err.Error(),
		})
		c.setDelivery(msg.Id, entity.DeliveryFailed)
		return
	}

	c.setDelivery(msg.Id, entity.DeliveryConfirmed)

	// The sender filter keeps this echo out of our own subscription; only the
	// peer's open channel sees it.
	if err := c.feed.Publish(realtime.InsertEvent{
		MessageId:  remote.Id,
		SenderId:   remote.SenderId,
		ReceiverId: remote.ReceiverId,
		Content:    remote.Content,
		CreatedAt:  remote.CreatedAt,
	}); err != nil {
		c.logger.Warn("DirectMessageChannel", "Feed publish failed", map[string]interface{}{
			"message_id": msg.Id,
			"error":      err.Error(),
		})
	}
}

func (c *Channel) setDelivery(id uuid.UUID, state entity.DeliveryState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, m := range c.projection {
		if m.Id == id {
			m.Delivery = state
			return
		}
	}
}

// Messages returns a snapshot of the projection in display order.
func (c *Channel) Messages() []*entity.DirectMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*entity.DirectMessage, len(c.projection))
	for i, m := range c.projection {
		cp := *m
		out[i] = &cp
	}
	return out
}

// Flush waits for in-flight remote writes. Used on Close and in tests.
func (c *Channel) Flush() {
	c.writeWG.Wait()
}

// Close cancels the feed subscription and waits for pending writes.
func (c *Channel) Close() {
	if c.sub != nil {
		c.sub.Cancel()
	}
	c.writeWG.Wait()
}
