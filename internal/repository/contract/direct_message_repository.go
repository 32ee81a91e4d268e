package contract

import (
	"context"

	"unimind-be/internal/entity"
	"unimind-be/internal/repository/specification"
)

type DirectMessageRepository interface {
	Create(ctx context.Context, message *entity.DirectMessage) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DirectMessage, error)
}

// ConnectionRepository is read-only: the connection graph is written by the
// network feature, this service only consumes it.
type ConnectionRepository interface {
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Connection, error)
}
