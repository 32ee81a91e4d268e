package model

import (
	"time"

	"github.com/google/uuid"
)

// DirectMessage rows are written exactly once, by their sender. There is no
// soft delete: the peer thread is the shared source of truth for both parties.
type DirectMessage struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SenderId   uuid.UUID `gorm:"type:uuid;not null;index"`
	ReceiverId uuid.UUID `gorm:"type:uuid;not null;index"`
	Content    string    `gorm:"type:text;not null"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

func (DirectMessage) TableName() string {
	return "direct_messages"
}
