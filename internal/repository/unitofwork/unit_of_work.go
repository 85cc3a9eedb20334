package unitofwork

import (
	"context"

	"github.com/rvemuri2/helix-backend/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	SequenceRepository() contract.SequenceRepository
	SequenceStepRepository() contract.SequenceStepRepository
	ChatMessageRepository() contract.ChatMessageRepository
}
