package realtime

import (
	"context"
	"encoding/json"
	"time"

	"unimind-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// TopicDirectMessageInserted carries one event per persisted direct-message
// row, in insert order.
const TopicDirectMessageInserted = "direct_messages.inserted"

// InsertEvent is the change-feed payload for one direct-message insert.
type InsertEvent struct {
	MessageId  uuid.UUID `json:"message_id"`
	SenderId   uuid.UUID `json:"sender_id"`
	ReceiverId uuid.UUID `json:"receiver_id"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

// ShouldDeliver is the sender filter: an inbound event is delivered only when
// it was authored by the watched peer for the local user. Self-originated
// echoes never pass, so optimistic local writes need no deduplication.
func ShouldDeliver(ev InsertEvent, localUser, peer uuid.UUID) bool {
	return ev.SenderId == peer && ev.ReceiverId == localUser
}

// Feed is the in-process insert-event stream on direct_messages. Publishing
// happens after a successful remote write; subscriptions are scoped to one
// peer relationship and cancellable.
type Feed struct {
	pubSub *gochannel.GoChannel
	logger logger.ILogger
}

func NewFeed(log logger.ILogger) *Feed {
	wmLogger := watermill.NewStdLogger(false, false)
	return &Feed{
		pubSub: gochannel.NewGoChannel(gochannel.Config{}, wmLogger),
		logger: log,
	}
}

func (f *Feed) Publish(ev InsertEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	return f.pubSub.Publish(TopicDirectMessageInserted, msg)
}

// Subscription is a cancellable handle on the feed. Exactly one active
// subscription exists per open conversation; switching peers cancels the
// prior one before starting the next.
type Subscription struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func (s *Subscription) Cancel() {
	s.cancel()
	<-s.done
}

// Subscribe delivers filtered insert events for the (localUser, peer) pair to
// fn, in arrival order, until the subscription is cancelled.
func (f *Feed) Subscribe(ctx context.Context, localUser, peer uuid.UUID, fn func(InsertEvent)) (*Subscription, error) {
	subCtx, cancel := context.WithCancel(ctx)

	messages, err := f.pubSub.Subscribe(subCtx, TopicDirectMessageInserted)
	if err != nil {
		cancel()
		return nil, err
	}

	sub := &Subscription{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(sub.done)
		for msg := range messages {
			var ev InsertEvent
			if err := json.Unmarshal(msg.Payload, &ev); err != nil {
				f.logger.Warn("RealtimeFeed", "Dropping malformed feed event", map[string]interface{}{
					"error": err.Error(),
				})
				msg.Ack()
				continue
			}
			msg.Ack()

			if !ShouldDeliver(ev, localUser, peer) {
				continue
			}
			fn(ev)
		}
	}()

	return sub, nil
}

// Close shuts the underlying pub/sub down; outstanding subscriptions drain.
func (f *Feed) Close() error {
	return f.pubSub.Close()
}
