package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "DIRECT_MESSAGE_CREATED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Event codes published by this service.
const (
	TypeDirectMessageCreated = "DIRECT_MESSAGE_CREATED"
	TypeCommandResolved      = "COMMAND_RESOLVED"
	TypeCommandFailed        = "COMMAND_FAILED"
)

func NewDirectMessageCreated(messageId, senderId, receiverId, content string, createdAt time.Time) Event {
	return BaseEvent{
		Type: TypeDirectMessageCreated,
		Data: map[string]interface{}{
			"message_id":  messageId,
			"sender_id":   senderId,
			"receiver_id": receiverId,
			"content":     content,
			"created_at":  createdAt.Format(time.RFC3339Nano),
		},
		OccurredAt: createdAt,
	}
}

func NewCommandOutcome(resolved bool, sessionId, userId, kind, summary string) Event {
	t := TypeCommandResolved
	if !resolved {
		t = TypeCommandFailed
	}
	return BaseEvent{
		Type: t,
		Data: map[string]interface{}{
			"session_id": sessionId,
			"user_id":    userId,
			"kind":       kind,
			"summary":    summary,
		},
		OccurredAt: time.Now(),
	}
}
