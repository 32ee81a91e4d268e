package mapper

import (
	"unimind-be/internal/entity"
	"unimind-be/internal/model"
)

type DirectMessageMapper struct{}

func NewDirectMessageMapper() *DirectMessageMapper {
	return &DirectMessageMapper{}
}

func (m *DirectMessageMapper) ToEntity(dm *model.DirectMessage) *entity.DirectMessage {
	if dm == nil {
		return nil
	}

	return &entity.DirectMessage{
		Id:         dm.Id,
		SenderId:   dm.SenderId,
		ReceiverId: dm.ReceiverId,
		Content:    dm.Content,
		Delivery:   entity.DeliveryConfirmed,
		CreatedAt:  dm.CreatedAt,
	}
}

func (m *DirectMessageMapper) ToModel(dm *entity.DirectMessage) *model.DirectMessage {
	if dm == nil {
		return nil
	}

	return &model.DirectMessage{
		Id:         dm.Id,
		SenderId:   dm.SenderId,
		ReceiverId: dm.ReceiverId,
		Content:    dm.Content,
		CreatedAt:  dm.CreatedAt,
	}
}

func (m *DirectMessageMapper) ConnectionToEntity(c *model.Connection) *entity.Connection {
	if c == nil {
		return nil
	}

	return &entity.Connection{
		Id:          c.Id,
		RequesterId: c.RequesterId,
		ReceiverId:  c.ReceiverId,
		Status:      c.Status,
	}
}
