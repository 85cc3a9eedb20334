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

type SequenceStepRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SequenceMapper
}

func NewSequenceStepRepository(db *gorm.DB) contract.SequenceStepRepository {
	return &SequenceStepRepositoryImpl{
		db:     db,
		mapper: mapper.NewSequenceMapper(),
	}
}

func (r *SequenceStepRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *SequenceStepRepositoryImpl) Create(ctx context.Context, step *entity.SequenceStep) error {
	m := r.mapper.StepToModel(step)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*step = *r.mapper.StepToEntity(m)
	return nil
}

func (r *SequenceStepRepositoryImpl) Update(ctx context.Context, step *entity.SequenceStep) error {
	m := r.mapper.StepToModel(step)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*step = *r.mapper.StepToEntity(m)
	return nil
}

func (r *SequenceStepRepositoryImpl) DeleteBySequenceId(ctx context.Context, sequenceId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("sequence_id = ?", sequenceId).Delete(&model.SequenceStep{}).Error
}

func (r *SequenceStepRepositoryImpl) DeleteAllByUserId(ctx context.Context, userId string) error {
	// Subquery to find sequence IDs for the user
	subQuery := r.db.Table("sequences").Select("id").Where("user_id = ?", userId)
	return r.db.WithContext(ctx).Where("sequence_id IN (?)", subQuery).Delete(&model.SequenceStep{}).Error
}

func (r *SequenceStepRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.SequenceStep, error) {
	var m model.SequenceStep
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.StepToEntity(&m), nil
}

func (r *SequenceStepRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SequenceStep, error) {
	var models []*model.SequenceStep
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.SequenceStep, len(models))
	for i, m := range models {
		entities[i] = r.mapper.StepToEntity(m)
	}
	return entities, nil
}
