package contract

import (
	"context"

	"unimind-be/internal/entity"
	"unimind-be/internal/repository/specification"

	"github.com/google/uuid"
)

type MessageRepository interface {
	Create(ctx context.Context, message *entity.Message) error
	// UpdateText overwrites the text of one message in place. The log is
	// otherwise append-only; this exists solely for the upload placeholder.
	UpdateText(ctx context.Context, id uuid.UUID, text string) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Message, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Message, error)
	// FindLastBySession returns the most recently created message of a
	// session, or nil when the session is empty.
	FindLastBySession(ctx context.Context, sessionId uuid.UUID) (*entity.Message, error)
}

type ChatCitationRepository interface {
	CreateBulk(ctx context.Context, citations []*entity.ChatCitation) error
	FindAllByMessageIds(ctx context.Context, messageIds []uuid.UUID) ([]*entity.ChatCitation, error)
}
