package model

import (
	"time"

	"github.com/google/uuid"
)

// Connection is owned by the network feature; this service only reads rows
// with status "accepted" to build the set of eligible direct-message peers.
type Connection struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RequesterId uuid.UUID `gorm:"type:uuid;not null;index"`
	ReceiverId  uuid.UUID `gorm:"type:uuid;not null;index"`
	Status      string    `gorm:"type:varchar(20);not null"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

func (Connection) TableName() string {
	return "connections"
}
