package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"unimind-be/internal/constant"
	"unimind-be/internal/dto"
	"unimind-be/internal/entity"
	"unimind-be/internal/pkg/logger"
	"unimind-be/internal/repository/specification"
	"unimind-be/internal/repository/unitofwork"
	"unimind-be/pkg/assistant"
	"unimind-be/pkg/command"

	"github.com/google/uuid"
)

// IChatService is the assistant conversation surface: session lifecycle,
// message log, the ask round trip and document ingestion.
type IChatService interface {
	CreateSession(ctx context.Context, userId uuid.UUID) (*dto.CreateSessionResponse, error)
	GetAllSessions(ctx context.Context, userId uuid.UUID) ([]*dto.GetAllSessionsResponse, error)
	GetChatHistory(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) ([]*dto.GetChatHistoryResponse, error)
	Ask(ctx context.Context, userId uuid.UUID, request *dto.AskRequest) (*dto.AskResponse, error)
	UploadDocument(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, filename string, content io.Reader) (*dto.UploadResponse, error)
}

// AnswerSource is the assistant gateway contract the service depends on.
// Mocked in tests.
type AnswerSource interface {
	Ask(ctx context.Context, question string, askCtx assistant.AskContext) *assistant.Answer
	Ingest(ctx context.Context, filename string, content io.Reader) error
}

// CommandReceiver is the dispatcher side the ask path hands commands to.
type CommandReceiver interface {
	Receive(ctx context.Context, session command.SessionRef, cmd *assistant.Command) (string, error)
}

type chatService struct {
	uowFactory unitofwork.RepositoryFactory
	gateway    AnswerSource
	dispatcher CommandReceiver
	logger     logger.ILogger
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	gateway AnswerSource,
	dispatcher CommandReceiver,
	log logger.ILogger,
) IChatService {
	return &chatService{
		uowFactory: uowFactory,
		gateway:    gateway,
		dispatcher: dispatcher,
		logger:     log,
	}
}

func (cs *chatService) CreateSession(ctx context.Context, userId uuid.UUID) (*dto.CreateSessionResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	session := entity.ChatSession{
		Id:        uuid.New(),
		UserId:    userId,
		Title:     constant.DefaultSessionTitle,
		CreatedAt: time.Now(),
	}

	if err := uow.ChatSessionRepository().Create(ctx, &session); err != nil {
		return nil, err
	}

	return &dto.CreateSessionResponse{Id: session.Id, Title: session.Title}, nil
}

func (cs *chatService) GetAllSessions(ctx context.Context, userId uuid.UUID) ([]*dto.GetAllSessionsResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	sessions, err := uow.ChatSessionRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	response := make([]*dto.GetAllSessionsResponse, 0, len(sessions))
	for _, s := range sessions {
		response = append(response, &dto.GetAllSessionsResponse{
			Id:        s.Id,
			Title:     s.Title,
			CreatedAt: s.CreatedAt,
			UpdatedAt: s.UpdatedAt,
		})
	}

	return response, nil
}

func (cs *chatService) GetChatHistory(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) ([]*dto.GetChatHistoryResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	session, err := cs.verifySession(ctx, uow, userId, sessionId)
	if err != nil {
		return nil, err
	}

	messages, err := uow.MessageRepository().FindAll(ctx,
		specification.BySessionID{SessionID: session.Id},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	messageIds := make([]uuid.UUID, len(messages))
	for i, msg := range messages {
		messageIds[i] = msg.Id
	}

	citations, err := uow.ChatCitationRepository().FindAllByMessageIds(ctx, messageIds)
	if err != nil {
		return nil, err
	}

	citationsByMsgId := make(map[uuid.UUID][]dto.CitationDTO)
	for _, c := range citations {
		citationsByMsgId[c.MessageId] = append(citationsByMsgId[c.MessageId], dto.CitationDTO{
			Name: c.Name,
			Url:  c.Url,
		})
	}

	resp := make([]*dto.GetChatHistoryResponse, 0, len(messages))
	for _, msg := range messages {
		resp = append(resp, &dto.GetChatHistoryResponse{
			Id:        msg.Id,
			Role:      msg.Role,
			Text:      msg.Text,
			CreatedAt: msg.CreatedAt,
			Sources:   citationsByMsgId[msg.Id],
		})
	}

	return resp, nil
}

// Ask runs one full round trip: append the user message, rename the session
// if its title is still a placeholder, issue exactly one assistant call, and
// append the terminal reply. The message append and the title rename are two
// independent writes; a crash between them leaves the title stale until the
// next successful message.
func (cs *chatService) Ask(ctx context.Context, userId uuid.UUID, request *dto.AskRequest) (*dto.AskResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	session, err := cs.verifySession(ctx, uow, userId, request.ChatSessionId)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	userMessage := entity.Message{
		Id:        uuid.New(),
		UserId:    userId,
		SessionId: session.Id,
		Text:      request.Question,
		Role:      constant.MessageRoleUser,
		CreatedAt: now,
	}
	if err := uow.MessageRepository().Create(ctx, &userMessage); err != nil {
		return nil, err
	}

	if err := cs.renameIfDefault(ctx, uow, session, request.Question); err != nil {
		// Not fatal: the title self-heals on the next message.
		cs.logger.Warn("ChatService", "Session rename failed", map[string]interface{}{
			"session_id": session.Id,
			"error":      err.Error(),
		})
	}

	answer := cs.gateway.Ask(ctx, request.Question, assistant.AskContext{
		UserID:    userId,
		SessionID: session.Id,
	})
	if answer.Err != nil {
		cs.logger.Error("ChatService", "Assistant transport failed, synthetic reply used", map[string]interface{}{
			"session_id": session.Id,
			"error":      answer.Err.Error(),
		})
	}

	// Discard answers tagged for another conversation; the reply must land in
	// the session the question was asked in.
	if answer.SessionID != session.Id {
		return nil, fmt.Errorf("stale assistant answer discarded: tagged for session %s", answer.SessionID)
	}

	reply := entity.Message{
		Id:        uuid.New(),
		UserId:    userId,
		SessionId: session.Id,
		Text:      answer.Text,
		Role:      constant.MessageRoleAssistant,
		CreatedAt: time.Now(),
	}
	if err := uow.MessageRepository().Create(ctx, &reply); err != nil {
		return nil, err
	}

	sources := make([]dto.CitationDTO, 0, len(answer.Sources))
	if len(answer.Sources) > 0 {
		citationEntities := make([]*entity.ChatCitation, len(answer.Sources))
		for i, src := range answer.Sources {
			citationEntities[i] = &entity.ChatCitation{
				Id:        uuid.New(),
				MessageId: reply.Id,
				Name:      src.Name,
				Url:       src.Url,
				CreatedAt: reply.CreatedAt,
			}
			sources = append(sources, dto.CitationDTO{Name: src.Name, Url: src.Url})
		}
		if err := uow.ChatCitationRepository().CreateBulk(ctx, citationEntities); err != nil {
			return nil, err
		}
	}

	resp := &dto.AskResponse{
		ChatSessionId:    session.Id,
		ChatSessionTitle: session.Title,
		Sent: &dto.AskResponseMessage{
			Id:        userMessage.Id,
			Text:      userMessage.Text,
			Role:      userMessage.Role,
			CreatedAt: userMessage.CreatedAt,
		},
		Reply: &dto.AskResponseMessage{
			Id:        reply.Id,
			Text:      reply.Text,
			Role:      reply.Role,
			CreatedAt: reply.CreatedAt,
			Sources:   sources,
		},
	}

	// The answer text is already in the log; the command outcome is
	// independent of it.
	if answer.Command != nil {
		consentURL, err := cs.dispatcher.Receive(ctx, command.SessionRef{
			SessionID: session.Id,
			UserID:    userId,
		}, answer.Command)
		if err != nil {
			cs.logger.Warn("ChatService", "Command rejected", map[string]interface{}{
				"session_id": session.Id,
				"kind":       answer.Command.Kind,
				"error":      err.Error(),
			})
			busy := entity.Message{
				Id:        uuid.New(),
				UserId:    userId,
				SessionId: session.Id,
				Text:      constant.CommandBusyReply,
				Role:      constant.MessageRoleAssistant,
				CreatedAt: time.Now(),
			}
			if appendErr := uow.MessageRepository().Create(ctx, &busy); appendErr != nil {
				return nil, appendErr
			}
		} else {
			// Tell the user in the conversation itself that consent is needed;
			// the URL travels out of band in the response.
			prompt := entity.Message{
				Id:        uuid.New(),
				UserId:    userId,
				SessionId: session.Id,
				Text:      constant.CommandConsentPrompt,
				Role:      constant.MessageRoleAssistant,
				CreatedAt: time.Now(),
			}
			if appendErr := uow.MessageRepository().Create(ctx, &prompt); appendErr != nil {
				return nil, appendErr
			}
			resp.CommandPending = true
			resp.CommandKind = string(answer.Command.Kind)
			resp.ConsentURL = consentURL
		}
	}

	return resp, nil
}

// UploadDocument implements the placeholder/replace-last progress pattern: a
// bot message "Reading *file*..." is appended, the upload runs, and the same
// message's text is overwritten in place with the final result. This is the
// only in-place mutation the log permits.
func (cs *chatService) UploadDocument(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, filename string, content io.Reader) (*dto.UploadResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	session, err := cs.verifySession(ctx, uow, userId, sessionId)
	if err != nil {
		return nil, err
	}

	if err := cs.renameIfDefault(ctx, uow, session, constant.UploadTitlePrefix+filename); err != nil {
		cs.logger.Warn("ChatService", "Session rename failed", map[string]interface{}{
			"session_id": session.Id,
			"error":      err.Error(),
		})
	}

	placeholder := entity.Message{
		Id:        uuid.New(),
		UserId:    userId,
		SessionId: session.Id,
		Text:      fmt.Sprintf(constant.UploadPendingReply, filename),
		Role:      constant.MessageRoleAssistant,
		CreatedAt: time.Now(),
	}
	if err := uow.MessageRepository().Create(ctx, &placeholder); err != nil {
		return nil, err
	}

	ingested := true
	finalText := fmt.Sprintf(constant.UploadSuccessReply, filename)
	if err := cs.gateway.Ingest(ctx, filename, content); err != nil {
		ingested = false
		finalText = fmt.Sprintf(constant.UploadFailureReply, filename)
		cs.logger.Error("ChatService", "Document ingestion failed", map[string]interface{}{
			"session_id": session.Id,
			"filename":   filename,
			"error":      err.Error(),
		})
	}

	// If this write fails the placeholder keeps its last known text; the
	// remote write is not retried.
	if err := cs.replaceLast(ctx, uow, session.Id, finalText); err != nil {
		cs.logger.Error("ChatService", "Placeholder replacement failed", map[string]interface{}{
			"session_id": session.Id,
			"error":      err.Error(),
		})
	} else {
		placeholder.Text = finalText
	}

	return &dto.UploadResponse{
		ChatSessionId: session.Id,
		Ingested:      ingested,
		Reply: &dto.AskResponseMessage{
			Id:        placeholder.Id,
			Text:      placeholder.Text,
			Role:      placeholder.Role,
			CreatedAt: placeholder.CreatedAt,
		},
	}, nil
}

func (cs *chatService) verifySession(ctx context.Context, uow unitofwork.UnitOfWork, userId, sessionId uuid.UUID) (*entity.ChatSession, error) {
	session, err := uow.ChatSessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fmt.Errorf("session not found or access denied")
	}
	return session, nil
}

// renameIfDefault applies a candidate title only while the current title is
// still a placeholder, so a meaningful title is never overwritten by later
// messages.
func (cs *chatService) renameIfDefault(ctx context.Context, uow unitofwork.UnitOfWork, session *entity.ChatSession, candidate string) error {
	if !isPlaceholderTitle(session.Title) {
		return nil
	}
	session.Title = truncateTitle(candidate)
	return uow.ChatSessionRepository().Update(ctx, session)
}

func isPlaceholderTitle(title string) bool {
	if title == constant.DefaultSessionTitle {
		return true
	}
	prefix := constant.UploadTitlePrefix
	return len(title) >= len(prefix) && title[:len(prefix)] == prefix
}

func truncateTitle(candidate string) string {
	runes := []rune(candidate)
	if len(runes) <= constant.SessionTitleMaxRunes {
		return candidate
	}
	return string(runes[:constant.SessionTitleMaxRunes]) + "…"
}

// replaceLast overwrites the text of the most recently appended message of a
// session, leaving every earlier message untouched.
func (cs *chatService) replaceLast(ctx context.Context, uow unitofwork.UnitOfWork, sessionId uuid.UUID, newText string) error {
	last, err := uow.MessageRepository().FindLastBySession(ctx, sessionId)
	if err != nil {
		return err
	}
	if last == nil {
		return fmt.Errorf("no message to replace in session %s", sessionId)
	}
	return uow.MessageRepository().UpdateText(ctx, last.Id, newText)
}
