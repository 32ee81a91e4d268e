package entity

import (
	"time"

	"github.com/google/uuid"
)

type Message struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	SessionId uuid.UUID
	Text      string
	Role      string
	CreatedAt time.Time
}

type ChatCitation struct {
	Id        uuid.UUID
	MessageId uuid.UUID
	Name      string
	Url       string
	CreatedAt time.Time
}
