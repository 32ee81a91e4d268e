package mapper

import (
	"time"

	"unimind-be/internal/constant"
	"unimind-be/internal/entity"
	"unimind-be/internal/model"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

// Session Mappers

func (m *ChatMapper) ChatSessionToEntity(s *model.ChatSession) *entity.ChatSession {
	if s == nil {
		return nil
	}

	var updatedAt *time.Time
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		updatedAt = &t
	}

	return &entity.ChatSession{
		Id:        s.Id,
		UserId:    s.UserId,
		Title:     s.Title,
		CreatedAt: s.CreatedAt,
		UpdatedAt: updatedAt,
	}
}

func (m *ChatMapper) ChatSessionToModel(s *entity.ChatSession) *model.ChatSession {
	if s == nil {
		return nil
	}

	var updatedAt time.Time
	if s.UpdatedAt != nil {
		updatedAt = *s.UpdatedAt
	}

	return &model.ChatSession{
		Id:        s.Id,
		UserId:    s.UserId,
		Title:     s.Title,
		CreatedAt: s.CreatedAt,
		UpdatedAt: updatedAt,
	}
}

// Message Mappers
// The wire schema stores the role as an is_bot flag; the entity carries the
// role name.

func (m *ChatMapper) MessageToEntity(msg *model.Message) *entity.Message {
	if msg == nil {
		return nil
	}

	role := constant.MessageRoleUser
	if msg.IsBot {
		role = constant.MessageRoleAssistant
	}

	return &entity.Message{
		Id:        msg.Id,
		UserId:    msg.UserId,
		SessionId: msg.SessionId,
		Text:      msg.Text,
		Role:      role,
		CreatedAt: msg.CreatedAt,
	}
}

func (m *ChatMapper) MessageToModel(msg *entity.Message) *model.Message {
	if msg == nil {
		return nil
	}

	return &model.Message{
		Id:        msg.Id,
		UserId:    msg.UserId,
		SessionId: msg.SessionId,
		Text:      msg.Text,
		IsBot:     msg.Role == constant.MessageRoleAssistant,
		CreatedAt: msg.CreatedAt,
	}
}

func (m *ChatMapper) CitationToEntity(c *model.ChatCitation) *entity.ChatCitation {
	if c == nil {
		return nil
	}

	return &entity.ChatCitation{
		Id:        c.Id,
		MessageId: c.MessageId,
		Name:      c.Name,
		Url:       c.Url,
		CreatedAt: c.CreatedAt,
	}
}

func (m *ChatMapper) CitationToModel(c *entity.ChatCitation) *model.ChatCitation {
	if c == nil {
		return nil
	}

	return &model.ChatCitation{
		Id:        c.Id,
		MessageId: c.MessageId,
		Name:      c.Name,
		Url:       c.Url,
		CreatedAt: c.CreatedAt,
	}
}
