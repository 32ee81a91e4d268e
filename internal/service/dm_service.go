package service

import (
	"context"
	"fmt"

	"unimind-be/internal/channel"
	"unimind-be/internal/dto"
	"unimind-be/internal/entity"
	"unimind-be/internal/pkg/logger"
	"unimind-be/internal/repository/specification"
	"unimind-be/internal/repository/unitofwork"
	"unimind-be/pkg/events"
	pktNats "unimind-be/pkg/nats"

	"github.com/google/uuid"
)

// IDirectMessageService is the peer-to-peer conversation surface.
type IDirectMessageService interface {
	GetConnections(ctx context.Context, userId uuid.UUID) ([]*dto.ConnectionResponse, error)
	GetHistory(ctx context.Context, userId uuid.UUID, peerId uuid.UUID) ([]*dto.DirectMessageResponse, error)
	Send(ctx context.Context, userId uuid.UUID, request *dto.SendDirectMessageRequest) (*dto.DirectMessageResponse, error)
	CloseChannel(userId uuid.UUID)
}

// directMessageStore is the remote side of a channel: database writes plus a
// durable event per stored message for the push worker.
type directMessageStore struct {
	uowFactory unitofwork.RepositoryFactory
	publisher  *pktNats.Publisher
	logger     logger.ILogger
}

func NewDirectMessageStore(uowFactory unitofwork.RepositoryFactory, pub *pktNats.Publisher, log logger.ILogger) channel.Store {
	return &directMessageStore{
		uowFactory: uowFactory,
		publisher:  pub,
		logger:     log,
	}
}

// Persist writes the message once, by its sender, then emits the event the
// push worker fans out to the receiver's sockets.
func (s *directMessageStore) Persist(ctx context.Context, message *entity.DirectMessage) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.DirectMessageRepository().Create(ctx, message); err != nil {
		return err
	}

	if s.publisher != nil {
		ev := events.NewDirectMessageCreated(
			message.Id.String(),
			message.SenderId.String(),
			message.ReceiverId.String(),
			message.Content,
			message.CreatedAt,
		)
		if err := s.publisher.Publish(ctx, ev); err != nil {
			s.logger.Warn("DirectMessageStore", "Failed to publish message event", map[string]interface{}{
				"message_id": message.Id,
				"error":      err.Error(),
			})
		}
	}
	return nil
}

// LoadHistory returns the union of both directions of the pair, ascending by
// creation time.
func (s *directMessageStore) LoadHistory(ctx context.Context, userA, userB uuid.UUID) ([]*entity.DirectMessage, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.DirectMessageRepository().FindAll(ctx,
		specification.BetweenUsers{UserA: userA, UserB: userB},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
}

type directMessageService struct {
	uowFactory unitofwork.RepositoryFactory
	registry   *channel.Registry
	logger     logger.ILogger
}

func NewDirectMessageService(
	uowFactory unitofwork.RepositoryFactory,
	registry *channel.Registry,
	log logger.ILogger,
) IDirectMessageService {
	return &directMessageService{
		uowFactory: uowFactory,
		registry:   registry,
		logger:     log,
	}
}

// GetConnections lists accepted connections normalized to "the other person".
func (s *directMessageService) GetConnections(ctx context.Context, userId uuid.UUID) ([]*dto.ConnectionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	connections, err := uow.ConnectionRepository().FindAll(ctx,
		specification.AcceptedConnectionsOf{UserID: userId},
	)
	if err != nil {
		return nil, err
	}

	resp := make([]*dto.ConnectionResponse, 0, len(connections))
	for _, c := range connections {
		resp = append(resp, &dto.ConnectionResponse{
			ConnectionId: c.Id,
			PeerId:       c.Peer(userId),
		})
	}
	return resp, nil
}

// GetHistory opens (or reuses) the user's channel for the peer and returns
// its projection. Opening loads the full two-direction history ascending and
// starts the peer-scoped feed subscription.
func (s *directMessageService) GetHistory(ctx context.Context, userId uuid.UUID, peerId uuid.UUID) ([]*dto.DirectMessageResponse, error) {
	if err := s.verifyConnected(ctx, userId, peerId); err != nil {
		return nil, err
	}

	ch, err := s.registry.Open(ctx, userId, peerId)
	if err != nil {
		return nil, err
	}

	messages := ch.Messages()
	resp := make([]*dto.DirectMessageResponse, 0, len(messages))
	for _, m := range messages {
		resp = append(resp, toDirectMessageDTO(m))
	}
	return resp, nil
}

// Send writes through the open channel: the optimistic projection entry is
// returned immediately, the remote write completes asynchronously.
func (s *directMessageService) Send(ctx context.Context, userId uuid.UUID, request *dto.SendDirectMessageRequest) (*dto.DirectMessageResponse, error) {
	if err := s.verifyConnected(ctx, userId, request.ReceiverId); err != nil {
		return nil, err
	}

	ch, err := s.registry.Open(ctx, userId, request.ReceiverId)
	if err != nil {
		return nil, err
	}

	// The write must outlive the request.
	msg := ch.Send(context.WithoutCancel(ctx), request.Content)
	return toDirectMessageDTO(msg), nil
}

func (s *directMessageService) CloseChannel(userId uuid.UUID) {
	s.registry.Close(userId)
}

func (s *directMessageService) verifyConnected(ctx context.Context, userId, peerId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	connections, err := uow.ConnectionRepository().FindAll(ctx,
		specification.AcceptedConnectionsOf{UserID: userId},
	)
	if err != nil {
		return err
	}
	for _, c := range connections {
		if c.Peer(userId) == peerId {
			return nil
		}
	}
	return fmt.Errorf("no accepted connection with user %s", peerId)
}

func toDirectMessageDTO(m *entity.DirectMessage) *dto.DirectMessageResponse {
	return &dto.DirectMessageResponse{
		Id:         m.Id,
		SenderId:   m.SenderId,
		ReceiverId: m.ReceiverId,
		Content:    m.Content,
		Delivery:   string(m.Delivery),
		CreatedAt:  m.CreatedAt,
	}
}
