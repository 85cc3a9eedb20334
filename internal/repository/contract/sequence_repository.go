package contract

import (
	"context"

	"github.com/rvemuri2/helix-backend/internal/entity"
	"github.com/rvemuri2/helix-backend/internal/repository/specification"

	"github.com/google/uuid"
)

type SequenceRepository interface {
	Create(ctx context.Context, sequence *entity.Sequence) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteAllByUserId(ctx context.Context, userId string) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Sequence, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Sequence, error)
}

type SequenceStepRepository interface {
	Create(ctx context.Context, step *entity.SequenceStep) error
	Update(ctx context.Context, step *entity.SequenceStep) error
	DeleteBySequenceId(ctx context.Context, sequenceId uuid.UUID) error
	DeleteAllByUserId(ctx context.Context, userId string) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.SequenceStep, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SequenceStep, error)
}
