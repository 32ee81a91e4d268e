package dto

import (
	"time"

	"github.com/google/uuid"
)

type ConnectionResponse struct {
	ConnectionId uuid.UUID `json:"connection_id"`
	PeerId       uuid.UUID `json:"peer_id"`
}

type SendDirectMessageRequest struct {
	ReceiverId uuid.UUID `json:"receiver_id" validate:"required"`
	Content    string    `json:"content" validate:"required,max=4000"`
}

type DirectMessageResponse struct {
	Id         uuid.UUID `json:"id"`
	SenderId   uuid.UUID `json:"sender_id"`
	ReceiverId uuid.UUID `json:"receiver_id"`
	Content    string    `json:"content"`
	Delivery   string    `json:"delivery"`
	CreatedAt  time.Time `json:"created_at"`
}
