package service

import (
	"context"
	"fmt"

	"unimind-be/internal/pkg/logger"
	"unimind-be/internal/websocket"
	"unimind-be/pkg/events"
	pktNats "unimind-be/pkg/nats"

	"github.com/google/uuid"
)

// PushService bridges durable events to the websocket hub: new direct
// messages reach the receiver, command outcomes reach the command's owner.
type PushService struct {
	subscriber *pktNats.Subscriber
	hub        *websocket.Hub
	logger     logger.ILogger
}

func NewPushService(sub *pktNats.Subscriber, hub *websocket.Hub, log logger.ILogger) *PushService {
	return &PushService{
		subscriber: sub,
		hub:        hub,
		logger:     log,
	}
}

// Start registers the durable consumers. Durable names survive restarts, so
// events published while the service was down are still delivered.
func (s *PushService) Start() error {
	if err := s.subscriber.Subscribe(
		"events."+events.TypeDirectMessageCreated,
		"dm-push-worker",
		s.handleDirectMessage,
	); err != nil {
		return err
	}

	if err := s.subscriber.Subscribe(
		"events."+events.TypeCommandResolved,
		"command-resolved-push-worker",
		s.handleCommandOutcome,
	); err != nil {
		return err
	}

	return s.subscriber.Subscribe(
		"events."+events.TypeCommandFailed,
		"command-failed-push-worker",
		s.handleCommandOutcome,
	)
}

func (s *PushService) handleDirectMessage(ctx context.Context, event events.Event) error {
	payload := event.Payload()

	receiverId, err := payloadUUID(payload, "receiver_id")
	if err != nil {
		// Malformed events are dropped, not retried.
		s.logger.Warn("PushService", "Dropping malformed message event", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}

	s.hub.Send(receiverId, websocket.Push{
		Type: "direct_message",
		Data: payload,
	})
	return nil
}

func (s *PushService) handleCommandOutcome(ctx context.Context, event events.Event) error {
	payload := event.Payload()

	userId, err := payloadUUID(payload, "user_id")
	if err != nil {
		s.logger.Warn("PushService", "Dropping malformed command event", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}

	s.hub.Send(userId, websocket.Push{
		Type: "command_outcome",
		Data: payload,
	})
	return nil
}

func payloadUUID(payload map[string]interface{}, key string) (uuid.UUID, error) {
	raw, ok := payload[key].(string)
	if !ok {
		return uuid.Nil, fmt.Errorf("payload field %q missing or not a string", key)
	}
	return uuid.Parse(raw)
}
