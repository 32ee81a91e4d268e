package dto

import "github.com/google/uuid"

type ConsentURLResponse struct {
	ChatSessionId uuid.UUID `json:"chat_session_id"`
	ConsentURL    string    `json:"consent_url"`
}

type ConsentCallbackRequest struct {
	ChatSessionId uuid.UUID `json:"chat_session_id" validate:"required"`
	Code          string    `json:"code" validate:"required"`
}

type ConsentDenyRequest struct {
	ChatSessionId uuid.UUID `json:"chat_session_id" validate:"required"`
}

type CommandOutcomeResponse struct {
	ChatSessionId uuid.UUID `json:"chat_session_id"`
	Status        string    `json:"status"`
	Message       string    `json:"message"`
}
