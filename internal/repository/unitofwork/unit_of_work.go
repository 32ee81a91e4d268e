package unitofwork

import (
	"context"

	"unimind-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ChatSessionRepository() contract.ChatSessionRepository
	MessageRepository() contract.MessageRepository
	ChatCitationRepository() contract.ChatCitationRepository
	DirectMessageRepository() contract.DirectMessageRepository
	ConnectionRepository() contract.ConnectionRepository
	CommandAuditRepository() contract.CommandAuditRepository
}
