package contract

import (
	"context"

	"unimind-be/internal/entity"
)

type CommandAuditRepository interface {
	Create(ctx context.Context, audit *entity.CommandAudit) error
}
