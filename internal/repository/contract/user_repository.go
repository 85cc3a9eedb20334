package contract

import (
	"context"

	"github.com/rvemuri2/helix-backend/internal/entity"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindById(ctx context.Context, id string) (*entity.User, error)
}
