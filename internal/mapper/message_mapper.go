package mapper

import (
	"blog-autowriter-be/internal/entity"
	"blog-autowriter-be/internal/model"
)

type MessageMapper struct{}

func NewMessageMapper() *MessageMapper {
	return &MessageMapper{}
}

func (m *MessageMapper) ToEntity(msg *model.SupportMessage) *entity.SupportMessage {
	if msg == nil {
		return nil
	}
	return &entity.SupportMessage{
		Id:           msg.Id,
		ProfileId:    msg.ProfileId,
		UserEmail:    msg.UserEmail,
		Subject:      msg.Subject,
		Content:      msg.Content,
		ReplyContent: msg.ReplyContent,
		Status:       entity.MessageStatus(msg.Status),
		UserRead:     msg.UserRead,
		CreatedAt:    msg.CreatedAt,
		RepliedAt:    msg.RepliedAt,
	}
}

func (m *MessageMapper) ToModel(msg *entity.SupportMessage) *model.SupportMessage {
	if msg == nil {
		return nil
	}
	return &model.SupportMessage{
		Id:           msg.Id,
		ProfileId:    msg.ProfileId,
		UserEmail:    msg.UserEmail,
		Subject:      msg.Subject,
		Content:      msg.Content,
		ReplyContent: msg.ReplyContent,
		Status:       string(msg.Status),
		UserRead:     msg.UserRead,
		CreatedAt:    msg.CreatedAt,
		RepliedAt:    msg.RepliedAt,
	}
}

func (m *MessageMapper) ToEntities(msgs []*model.SupportMessage) []*entity.SupportMessage {
	entities := make([]*entity.SupportMessage, len(msgs))
	for i, msg := range msgs {
		entities[i] = m.ToEntity(msg)
	}
	return entities
}
