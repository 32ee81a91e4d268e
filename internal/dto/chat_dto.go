package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateSessionResponse struct {
	Id    uuid.UUID `json:"id"`
	Title string    `json:"title"`
}

type GetAllSessionsResponse struct {
	Id        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type CitationDTO struct {
	Name string `json:"name"`
	Url  string `json:"url"`
}

type GetChatHistoryResponse struct {
	Id        uuid.UUID     `json:"id"`
	Role      string        `json:"role"`
	Text      string        `json:"text"`
	CreatedAt time.Time     `json:"created_at"`
	Sources   []CitationDTO `json:"sources,omitempty"`
}

type AskRequest struct {
	ChatSessionId uuid.UUID `json:"chat_session_id" validate:"required"`
	Question      string    `json:"question" validate:"required"`
}

type AskResponseMessage struct {
	Id        uuid.UUID     `json:"id"`
	Text      string        `json:"text"`
	Role      string        `json:"role"`
	CreatedAt time.Time     `json:"created_at"`
	Sources   []CitationDTO `json:"sources,omitempty"`
}

type AskResponse struct {
	ChatSessionId    uuid.UUID           `json:"chat_session_id"`
	ChatSessionTitle string              `json:"title"`
	Sent             *AskResponseMessage `json:"sent"`
	Reply            *AskResponseMessage `json:"reply"`
	// CommandPending signals the client that a consent step is required
	// before the proposed action runs.
	CommandPending bool   `json:"command_pending,omitempty"`
	CommandKind    string `json:"command_kind,omitempty"`
	ConsentURL     string `json:"consent_url,omitempty"`
}

type UploadResponse struct {
	ChatSessionId uuid.UUID           `json:"chat_session_id"`
	Ingested      bool                `json:"ingested"`
	Reply         *AskResponseMessage `json:"reply"`
}
