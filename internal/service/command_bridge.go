package service

import (
	"context"
	"time"

	"unimind-be/internal/constant"
	"unimind-be/internal/entity"
	"unimind-be/internal/pkg/logger"
	"unimind-be/internal/repository/unitofwork"
	"unimind-be/pkg/command"
	"unimind-be/pkg/events"
	pktNats "unimind-be/pkg/nats"

	"github.com/google/uuid"
)

// CommandBridge gives the dispatcher its two outward edges: follow-up
// messages into the conversation log and terminal outcomes into the audit
// table plus the event bus.
type CommandBridge struct {
	uowFactory unitofwork.RepositoryFactory
	publisher  *pktNats.Publisher
	logger     logger.ILogger
}

func NewCommandBridge(uowFactory unitofwork.RepositoryFactory, pub *pktNats.Publisher, log logger.ILogger) *CommandBridge {
	return &CommandBridge{
		uowFactory: uowFactory,
		publisher:  pub,
		logger:     log,
	}
}

func (b *CommandBridge) AppendAssistantMessage(ctx context.Context, session command.SessionRef, text string) error {
	uow := b.uowFactory.NewUnitOfWork(ctx)
	msg := entity.Message{
		Id:        uuid.New(),
		UserId:    session.UserID,
		SessionId: session.SessionID,
		Text:      text,
		Role:      constant.MessageRoleAssistant,
		CreatedAt: time.Now(),
	}
	return uow.MessageRepository().Create(ctx, &msg)
}

func (b *CommandBridge) RecordCommandOutcome(ctx context.Context, session command.SessionRef, kind string, payload []byte, status command.Status) error {
	uow := b.uowFactory.NewUnitOfWork(ctx)
	audit := entity.CommandAudit{
		Id:        uuid.New(),
		SessionId: session.SessionID,
		UserId:    session.UserID,
		Kind:      kind,
		Payload:   payload,
		Status:    string(status),
		CreatedAt: time.Now(),
	}
	if err := uow.CommandAuditRepository().Create(ctx, &audit); err != nil {
		return err
	}

	if b.publisher != nil {
		ev := events.NewCommandOutcome(status == command.StatusResolved,
			session.SessionID.String(), session.UserID.String(), kind, "")
		if err := b.publisher.Publish(ctx, ev); err != nil {
			b.logger.Warn("CommandBridge", "Failed to publish command outcome event", map[string]interface{}{
				"session_id": session.SessionID,
				"error":      err.Error(),
			})
		}
	}
	return nil
}
