package assistant

import "github.com/google/uuid"

// Citation is an opaque pass-through source reference from the assistant.
type Citation struct {
	Name string `json:"name"`
	Url  string `json:"url"`
}

// CommandKind is the closed set of side-effecting actions the assistant may
// propose. Adding a kind means adding a handler to the dispatcher table.
type CommandKind string

const (
	KindScheduleExternalEvent CommandKind = "schedule_external_event"
)

// EventDetails is the payload of a schedule_external_event command.
type EventDetails struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
}

// Command is the structured action attached to an Answer.
type Command struct {
	Kind         CommandKind   `json:"kind"`
	EventDetails *EventDetails `json:"event_details,omitempty"`
}

// AskContext identifies the conversation an answer belongs to. It is threaded
// through every call explicitly, never read from ambient state.
type AskContext struct {
	UserID    uuid.UUID
	SessionID uuid.UUID
}

// Answer is the terminal response for one user question. Every Ask returns
// exactly one Answer, synthetic on transport failure, so the caller's
// "awaiting reply" state always clears.
type Answer struct {
	Text    string
	Sources []Citation
	Command *Command

	// SessionID tags the conversation the answer was issued for. Callers
	// discard answers whose tag no longer matches the active conversation.
	SessionID uuid.UUID

	// Err carries the underlying transport failure for logging. The Text is
	// already the user-facing fallback when Err is set.
	Err error
}
