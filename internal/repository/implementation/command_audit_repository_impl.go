package implementation

import (
	"context"

	"unimind-be/internal/entity"
	"unimind-be/internal/model"
	"unimind-be/internal/repository/contract"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CommandAuditRepositoryImpl struct {
	db *gorm.DB
}

func NewCommandAuditRepository(db *gorm.DB) contract.CommandAuditRepository {
	return &CommandAuditRepositoryImpl{db: db}
}

func (r *CommandAuditRepositoryImpl) Create(ctx context.Context, audit *entity.CommandAudit) error {
	m := &model.CommandAudit{
		Id:        audit.Id,
		SessionId: audit.SessionId,
		UserId:    audit.UserId,
		Kind:      audit.Kind,
		Payload:   datatypes.JSON(audit.Payload),
		Status:    audit.Status,
		CreatedAt: audit.CreatedAt,
	}
	return r.db.WithContext(ctx).Create(m).Error
}
