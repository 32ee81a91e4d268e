package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// CommandAudit records the terminal outcome of an assistant command. The live
// pending state itself is in-memory only (pkg/command).
type CommandAudit struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId uuid.UUID      `gorm:"type:uuid;not null;index"`
	UserId    uuid.UUID      `gorm:"type:uuid;not null;index"`
	Kind      string         `gorm:"type:varchar(50);not null"`
	Payload   datatypes.JSON `gorm:"type:jsonb"`
	Status    string         `gorm:"type:varchar(20);not null"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
}

func (CommandAudit) TableName() string {
	return "command_audits"
}
