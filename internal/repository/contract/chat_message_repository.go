package contract

import (
	"context"

	"github.com/rvemuri2/helix-backend/internal/entity"
	"github.com/rvemuri2/helix-backend/internal/repository/specification"
)

type ChatMessageRepository interface {
	Create(ctx context.Context, message *entity.ChatMessage) error
	DeleteAllByUserId(ctx context.Context, userId string) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
