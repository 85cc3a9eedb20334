package implementation

import (
	"context"
	"errors"

	"github.com/rvemuri2/helix-backend/internal/entity"
	"github.com/rvemuri2/helix-backend/internal/mapper"
	"github.com/rvemuri2/helix-backend/internal/model"
	"github.com/rvemuri2/helix-backend/internal/repository/contract"
	"github.com/rvemuri2/helix-backend/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SequenceRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SequenceMapper
}

func NewSequenceRepository(db *gorm.DB) contract.SequenceRepository {
	return &SequenceRepositoryImpl{
		db:     db,
		mapper: mapper.NewSequenceMapper(),
	}
}

func (r *SequenceRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *SequenceRepositoryImpl) Create(ctx context.Context, sequence *entity.Sequence) error {
	m := r.mapper.SequenceToModel(sequence)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*sequence = *r.mapper.SequenceToEntity(m)
	return nil
}

func (r *SequenceRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Sequence{}, id).Error
}

func (r *SequenceRepositoryImpl) DeleteAllByUserId(ctx context.Context, userId string) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userId).Delete(&model.Sequence{}).Error
}

func (r *SequenceRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Sequence, error) {
	var m model.Sequence
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.SequenceToEntity(&m), nil
}

func (r *SequenceRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Sequence, error) {
	var models []*model.Sequence
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Sequence, len(models))
	for i, m := range models {
		entities[i] = r.mapper.SequenceToEntity(m)
	}
	return entities, nil
}
