package entity

import (
	"time"

	"github.com/google/uuid"
)

type CommandAudit struct {
	Id        uuid.UUID
	SessionId uuid.UUID
	UserId    uuid.UUID
	Kind      string
	Payload   []byte
	Status    string
	CreatedAt time.Time
}
