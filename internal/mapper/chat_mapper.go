package mapper

import (
	"time"

	"github.com/rvemuri2/helix-backend/internal/entity"
	"github.com/rvemuri2/helix-backend/internal/model"

	"gorm.io/gorm"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

func (m *ChatMapper) ChatMessageToEntity(msg *model.ChatMessage) *entity.ChatMessage {
	if msg == nil {
		return nil
	}

	var deletedAt *time.Time
	if msg.DeletedAt.Valid {
		t := msg.DeletedAt.Time
		deletedAt = &t
	}

	return &entity.ChatMessage{
		Id:        msg.Id,
		UserId:    msg.UserId,
		Message:   msg.Message,
		Sender:    msg.Sender,
		CreatedAt: msg.CreatedAt,
		DeletedAt: deletedAt,
		IsDeleted: msg.DeletedAt.Valid,
	}
}

func (m *ChatMapper) ChatMessageToModel(msg *entity.ChatMessage) *model.ChatMessage {
	if msg == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if msg.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *msg.DeletedAt, Valid: true}
	} else if msg.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	return &model.ChatMessage{
		Id:        msg.Id,
		UserId:    msg.UserId,
		Message:   msg.Message,
		Sender:    msg.Sender,
		CreatedAt: msg.CreatedAt,
		DeletedAt: deletedAt,
	}
}
